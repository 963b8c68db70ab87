// Package app contains the distribution pipeline services of the rewards context.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/rewards-distributor/business/rewards/domain"
)

// RewardsContract is the ABI-level view of the rewards contract.
type RewardsContract interface {
	Address() common.Address

	// DistributeCalldata returns the calldata of distributeDailyRewards().
	DistributeCalldata() []byte

	// ReadStatus reads the status views best-effort; failed reads are left nil.
	ReadStatus(ctx context.Context) domain.ContractStatus
}
