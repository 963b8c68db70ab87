// Package di contains dependency injection tokens for the chain context.
package di

import (
	"github.com/fd1az/rewards-distributor/business/chain/app"
	"github.com/fd1az/rewards-distributor/business/chain/domain"
	"github.com/fd1az/rewards-distributor/internal/di"
)

// Public service tokens - exposed to other modules
var (
	ChainClient = di.NewToken[app.ChainClient]("chain.ChainClient")
	Network     = di.NewToken[domain.Network]("chain.Network")
)

// Helper functions for type-safe access
func GetChainClient(c di.ServiceRegistry) app.ChainClient {
	return di.GetToken(c, ChainClient)
}

func GetNetwork(c di.ServiceRegistry) domain.Network {
	return di.GetToken(c, Network)
}
