// Package schedule triggers the daily distribution.
package schedule

import (
	"context"
	"time"

	rewardsDI "github.com/fd1az/rewards-distributor/business/rewards/di"
	"github.com/fd1az/rewards-distributor/business/schedule/app"
	scheduleDI "github.com/fd1az/rewards-distributor/business/schedule/di"
	"github.com/fd1az/rewards-distributor/internal/apperror"
	"github.com/fd1az/rewards-distributor/internal/config"
	"github.com/fd1az/rewards-distributor/internal/di"
	"github.com/fd1az/rewards-distributor/internal/logger"
	"github.com/fd1az/rewards-distributor/internal/monolith"
)

const shutdownTimeout = 30 * time.Second

// Module implements the schedule bounded context.
type Module struct{}

// RegisterServices builds the cron driver. An invalid expression or timezone
// fails registration with CodeConfigurationError.
func (m *Module) RegisterServices(c di.Container) error {
	cfg := c.Get("config").(*config.Config)
	log := c.Get("logger").(logger.LoggerInterface)

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext("invalid schedule timezone "+cfg.Schedule.Timezone))
	}

	d, err := app.NewDriver(app.DriverConfig{
		Expression: cfg.Schedule.Expression,
		Location:   loc,
		RunTimeout: cfg.Schedule.RunTimeout,
	}, rewardsDI.GetDistributor(c), log)
	if err != nil {
		return err
	}
	di.RegisterValue(c, scheduleDI.Driver, d)
	return nil
}

// Startup starts the scheduler and stops it when the monolith closes.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	d := scheduleDI.GetDriver(mono.Services())
	d.Start(ctx)
	mono.OnClose(monolith.CloserFunc(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return d.Stop(ctx)
	}))
	return nil
}
