// Package chain implements the chain access bounded context.
package chain

import (
	"context"

	"github.com/fd1az/rewards-distributor/business/chain/app"
	chainDI "github.com/fd1az/rewards-distributor/business/chain/di"
	"github.com/fd1az/rewards-distributor/business/chain/domain"
	"github.com/fd1az/rewards-distributor/business/chain/infra/ethereum"
	"github.com/fd1az/rewards-distributor/internal/apperror"
	"github.com/fd1az/rewards-distributor/internal/config"
	"github.com/fd1az/rewards-distributor/internal/di"
	"github.com/fd1az/rewards-distributor/internal/logger"
	"github.com/fd1az/rewards-distributor/internal/monolith"
)

// Module implements the chain bounded context.
type Module struct{}

// RegisterServices registers the network profile and dials the node. A bad
// key or RPC URL fails registration with CodeConfigurationError.
func (m *Module) RegisterServices(c di.Container) error {
	cfg := c.Get("config").(*config.Config)
	log := c.Get("logger").(logger.LoggerInterface)

	di.RegisterToken(c, chainDI.Network, func(sr di.ServiceRegistry) domain.Network {
		return domain.NewNetwork(cfg.Ethereum.ChainID)
	})

	client, err := dialClient(cfg, log)
	if err != nil {
		return err
	}
	di.RegisterValue[app.ChainClient](c, chainDI.ChainClient, client)
	return nil
}

func dialClient(cfg *config.Config, log logger.LoggerInterface) (*ethereum.Client, error) {
	key, err := cfg.Ethereum.SigningKey()
	if err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext("invalid signing key"))
	}

	clientCfg := ethereum.DefaultClientConfig(cfg.Ethereum.RPCURL, cfg.Ethereum.ChainID)
	if cfg.Ethereum.DialTimeout > 0 {
		clientCfg.DialTimeout = cfg.Ethereum.DialTimeout
	}
	clientCfg.RequestsPerSecond = cfg.Ethereum.RequestsPerSecond

	client, err := ethereum.Dial(context.Background(), clientCfg, key, log)
	if err != nil {
		if apperror.HasCode(err, apperror.CodeConfigurationError) {
			return nil, err
		}
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext("cannot connect to "+cfg.Ethereum.RPCURL))
	}
	return client, nil
}

// Startup verifies the node is reachable and serves the configured chain.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	client := chainDI.GetChainClient(mono.Services())
	network := chainDI.GetNetwork(mono.Services())

	id, err := client.ChainID(ctx)
	if err != nil {
		// Not fatal: the node may come up later and every run re-checks.
		log.Warn(ctx, "chain id query failed", "error", err)
	} else if id != network.ChainID() {
		log.Warn(ctx, "node chain id differs from configuration",
			"node_chain_id", id, "configured_chain_id", network.ChainID())
	}

	if c, ok := client.(interface{ Close() }); ok {
		mono.OnClose(monolith.CloserFunc(func() error {
			c.Close()
			return nil
		}))
	}

	log.Info(ctx, "chain module started",
		"signer", client.Address().Hex(),
		"chain_id", network.ChainID(),
		"network", network.Name())
	return nil
}
