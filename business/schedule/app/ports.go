package app

import (
	"context"

	rewardsApp "github.com/fd1az/rewards-distributor/business/rewards/app"
)

// DistributionRunner runs one distribution.
type DistributionRunner interface {
	Run(ctx context.Context) (*rewardsApp.RunResult, error)
}
