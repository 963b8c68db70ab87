// Package rewards implements the daily rewards distribution bounded context.
package rewards

import (
	"context"

	"github.com/raulk/clock"

	chainDI "github.com/fd1az/rewards-distributor/business/chain/di"
	"github.com/fd1az/rewards-distributor/business/rewards/app"
	rewardsDI "github.com/fd1az/rewards-distributor/business/rewards/di"
	"github.com/fd1az/rewards-distributor/business/rewards/domain"
	"github.com/fd1az/rewards-distributor/business/rewards/infra/contract"
	"github.com/fd1az/rewards-distributor/internal/asset"
	"github.com/fd1az/rewards-distributor/internal/config"
	"github.com/fd1az/rewards-distributor/internal/di"
	"github.com/fd1az/rewards-distributor/internal/logger"
	"github.com/fd1az/rewards-distributor/internal/monolith"
)

// Module implements the rewards bounded context.
type Module struct {
	// Clock defaults to the wall clock.
	Clock clock.Clock
}

// RegisterServices registers all rewards services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	clk := m.Clock
	if clk == nil {
		clk = clock.New()
	}

	di.RegisterToken(c, rewardsDI.Contract, func(sr di.ServiceRegistry) app.RewardsContract {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		b, err := contract.NewBinding(cfg.Ethereum.ContractAddressHex(), chainDI.GetChainClient(sr), log)
		if err != nil {
			panic("failed to create contract binding: " + err.Error())
		}
		return b
	})

	di.RegisterToken(c, rewardsDI.Gateway, func(sr di.ServiceRegistry) *app.Gateway {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		mode, err := domain.ParsePreflightMode(cfg.Preflight.Mode)
		if err != nil {
			panic(err.Error())
		}

		g, err := app.NewGateway(
			chainDI.GetChainClient(sr),
			di.GetToken(sr, rewardsDI.Contract),
			app.GatewayConfig{
				Network: chainDI.GetNetwork(sr),
				Policy: domain.GasPolicy{
					GasLimit: cfg.Ethereum.GasLimit,
					GasPrice: cfg.Ethereum.GasPriceWei(),
				},
				Mode: mode,
			},
			clk, log)
		if err != nil {
			panic("failed to create gateway: " + err.Error())
		}
		return g
	})

	di.RegisterToken(c, rewardsDI.Tracker, func(sr di.ServiceRegistry) *app.Tracker {
		log := sr.Get("logger").(logger.LoggerInterface)
		t, err := app.NewTracker(chainDI.GetChainClient(sr), chainDI.GetNetwork(sr), clk, log)
		if err != nil {
			panic("failed to create tracker: " + err.Error())
		}
		return t
	})

	di.RegisterToken(c, rewardsDI.Distributor, func(sr di.ServiceRegistry) *app.Distributor {
		log := sr.Get("logger").(logger.LoggerInterface)
		d, err := app.NewDistributor(
			di.GetToken(sr, rewardsDI.Gateway),
			di.GetToken(sr, rewardsDI.Tracker),
			clk, log)
		if err != nil {
			panic("failed to create distributor: " + err.Error())
		}
		return d
	})

	di.RegisterToken(c, rewardsDI.Diagnostics, func(sr di.ServiceRegistry) *app.Diagnostics {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewDiagnostics(rewardsDI.GetDistributor(sr), clk, log)
	})

	return nil
}

// Startup logs the effective submission settings.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	g := rewardsDI.GetGateway(mono.Services())
	n := g.Network()

	gasPrice := "live"
	if p := mono.Config().Ethereum.GasPriceWei(); p != nil {
		gasPrice = asset.FormatGwei(p)
	}

	mono.Logger().Info(ctx, "rewards module started",
		"contract", g.ContractAddress().Hex(),
		"network", n.Name(),
		"gas_limit", g.GasLimit(),
		"gas_price", gasPrice,
		"preflight_mode", string(g.Mode()),
		"confirmation_timeout", n.ConfirmationTimeout().String())
	return nil
}
