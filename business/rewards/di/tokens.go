// Package di contains dependency injection tokens for the rewards context.
package di

import (
	"github.com/fd1az/rewards-distributor/business/rewards/app"
	"github.com/fd1az/rewards-distributor/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Contract    = di.NewToken[app.RewardsContract]("rewards.Contract")
	Gateway     = di.NewToken[*app.Gateway]("rewards.Gateway")
	Tracker     = di.NewToken[*app.Tracker]("rewards.Tracker")
	Distributor = di.NewToken[*app.Distributor]("rewards.Distributor")
	Diagnostics = di.NewToken[*app.Diagnostics]("rewards.Diagnostics")
)

// Helper functions for type-safe access
func GetDistributor(c di.ServiceRegistry) *app.Distributor {
	return di.GetToken(c, Distributor)
}

func GetDiagnostics(c di.ServiceRegistry) *app.Diagnostics {
	return di.GetToken(c, Diagnostics)
}

func GetGateway(c di.ServiceRegistry) *app.Gateway {
	return di.GetToken(c, Gateway)
}
