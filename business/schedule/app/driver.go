package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/rewards-distributor/internal/apm"
	"github.com/fd1az/rewards-distributor/internal/apperror"
	"github.com/fd1az/rewards-distributor/internal/logger"
)

const (
	tracerName = "github.com/fd1az/rewards-distributor/business/schedule/app"
	meterName  = "github.com/fd1az/rewards-distributor/business/schedule/app"
)

// DriverConfig holds the trigger settings.
type DriverConfig struct {
	Expression string // six fields, seconds first
	Location   *time.Location
	RunTimeout time.Duration
}

// Driver fires the distribution on a cron schedule. Overlapping fires are
// skipped and a panicking run is recovered.
type Driver struct {
	cron    *cron.Cron
	entry   cron.EntryID
	runner  DistributionRunner
	cfg     DriverConfig
	logger  logger.LoggerInterface
	baseCtx context.Context

	tracer apm.Tracer
	fires  metric.Int64Counter
}

// NewDriver validates the expression and registers the job. Call Start to run it.
func NewDriver(cfg DriverConfig, runner DistributionRunner, log logger.LoggerInterface) (*Driver, error) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.RunTimeout <= 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("run timeout must be positive"))
	}

	fires, err := otel.Meter(meterName).Int64Counter(
		"schedule_fires_total",
		metric.WithDescription("Scheduled distribution fires"),
	)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	d := &Driver{
		cron:    c,
		runner:  runner,
		cfg:     cfg,
		logger:  log,
		baseCtx: context.Background(),
		tracer:  apm.NewTracer(tracerName),
		fires:   fires,
	}

	d.entry, err = c.AddFunc(cfg.Expression, d.fire)
	if err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("invalid schedule expression %q", cfg.Expression)))
	}
	return d, nil
}

// Start runs the scheduler in the background. Runs derive from ctx, so
// cancelling it aborts an in-flight confirmation wait.
func (d *Driver) Start(ctx context.Context) {
	d.baseCtx = ctx
	d.cron.Start()
	d.logger.Info(ctx, "scheduler started",
		"expression", d.cfg.Expression,
		"timezone", d.cfg.Location.String(),
		"next_run", d.Next().Format(time.RFC3339))
}

// Stop stops scheduling and waits for a running job, or for ctx.
func (d *Driver) Stop(ctx context.Context) error {
	done := d.cron.Stop()
	select {
	case <-done.Done():
		d.logger.Info(ctx, "scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next fire time, or the zero time before Start.
func (d *Driver) Next() time.Time {
	return d.cron.Entry(d.entry).Next
}

func (d *Driver) fire() {
	ctx, cancel := context.WithTimeout(d.baseCtx, d.cfg.RunTimeout)
	defer cancel()

	ctx, span := d.tracer.StartSpanFromContext(ctx, "schedule.fire")
	defer span.End()

	d.logger.Info(ctx, "scheduled distribution triggered")

	res, err := d.runner.Run(ctx)
	outcome := "in_progress"
	if res != nil {
		outcome = string(res.Outcome)
	}
	d.fires.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	if err != nil {
		span.NoticeError(err)
		d.logger.Error(ctx, "scheduled distribution failed", "outcome", outcome, "error", err)
	}

	if next := d.Next(); !next.IsZero() {
		d.logger.Info(ctx, "next distribution scheduled", "next_run", next.Format(time.RFC3339))
	}
}
