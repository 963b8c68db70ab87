package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/raulk/clock"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	chain "github.com/fd1az/rewards-distributor/business/chain/domain"
	"github.com/fd1az/rewards-distributor/internal/apm"
	"github.com/fd1az/rewards-distributor/internal/apperror"
	"github.com/fd1az/rewards-distributor/internal/logger"
)

// RunOutcome classifies how a distribution run ended.
type RunOutcome string

const (
	OutcomeConfirmed           RunOutcome = "confirmed"
	OutcomeOnChainRevert       RunOutcome = "onchain_revert"
	OutcomePreflightFailed     RunOutcome = "preflight_failed"
	OutcomeSimulationRejected  RunOutcome = "simulation_rejected"
	OutcomeSubmissionFailed    RunOutcome = "submission_failed"
	OutcomeConfirmationTimeout RunOutcome = "confirmation_timeout"
	OutcomeInProgress          RunOutcome = "in_progress"
	OutcomeCancelled           RunOutcome = "cancelled"
	OutcomeError               RunOutcome = "error"
)

// RunResult records one distribution attempt.
type RunResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    RunOutcome
	TxHash     common.Hash // zero if nothing was broadcast
	Receipt    *chain.Receipt
	Err        error
}

// Succeeded reports whether the distribution was mined with status 1.
func (r *RunResult) Succeeded() bool {
	return r != nil && r.Outcome == OutcomeConfirmed
}

// Distributor runs submit-then-confirm with at most one run in flight.
type Distributor struct {
	gateway *Gateway
	tracker *Tracker
	clock   clock.Clock
	logger  logger.LoggerInterface

	running atomic.Bool
	last    atomic.Pointer[RunResult]

	tracer  apm.Tracer
	metrics *pipelineMetrics
}

// NewDistributor creates a Distributor.
func NewDistributor(gateway *Gateway, tracker *Tracker, clk clock.Clock, log logger.LoggerInterface) (*Distributor, error) {
	m, err := newPipelineMetrics()
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return &Distributor{
		gateway: gateway,
		tracker: tracker,
		clock:   clk,
		logger:  log,
		tracer:  apm.NewTracer(tracerName),
		metrics: m,
	}, nil
}

// Run performs one distribution. A concurrent call fails fast with
// CodeRunInProgress and does not touch the chain. A transaction mined with
// a failed status returns CodeOnChainRevert together with the receipt.
func (d *Distributor) Run(ctx context.Context) (*RunResult, error) {
	if !d.running.CompareAndSwap(false, true) {
		d.metrics.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(OutcomeInProgress))))
		d.logger.Warn(ctx, "distribution already in progress, skipping")
		return nil, apperror.New(apperror.CodeRunInProgress)
	}
	defer d.running.Store(false)

	ctx, span := d.tracer.StartSpanFromContext(ctx, "rewards.run")
	defer span.End()

	res := &RunResult{StartedAt: d.clock.Now()}
	d.logger.Info(ctx, "distribution run started",
		"contract", d.gateway.ContractAddress().Hex(),
		"network", d.gateway.Network().Name(),
		"chain_id", d.gateway.Network().ChainID())

	res.Err = d.run(ctx, res)
	res.FinishedAt = d.clock.Now()
	res.Outcome = outcomeOf(res.Err)
	d.last.Store(res)

	d.metrics.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(res.Outcome))))
	span.SetAttributes(attribute.String("outcome", string(res.Outcome)))

	args := []any{
		"outcome", string(res.Outcome),
		"duration", res.FinishedAt.Sub(res.StartedAt).String(),
	}
	if res.TxHash != (common.Hash{}) {
		args = append(args, "tx_hash", res.TxHash.Hex())
	}
	if res.Receipt != nil {
		args = append(args, "block_number", res.Receipt.BlockNumber, "gas_used", res.Receipt.GasUsed)
	}

	if res.Err != nil {
		span.NoticeError(res.Err)
		args = append(args, "error_code", string(apperror.GetCode(res.Err)), "error", res.Err)
		d.logger.Error(ctx, "distribution run failed", args...)
		return res, res.Err
	}

	span.SetStatus(codes.Ok, "confirmed")
	d.logger.Info(ctx, "distribution run completed", args...)
	return res, nil
}

func (d *Distributor) run(ctx context.Context, res *RunResult) error {
	hash, err := d.gateway.SubmitDistribution(ctx)
	if err != nil {
		return err
	}
	res.TxHash = hash

	receipt, err := d.tracker.AwaitConfirmation(ctx, hash)
	if err != nil {
		return err
	}
	res.Receipt = receipt

	if !receipt.Succeeded() {
		return apperror.New(apperror.CodeOnChainRevert,
			apperror.WithContext(fmt.Sprintf("tx %s mined in block %d with status %d",
				hash.Hex(), receipt.BlockNumber, receipt.Status)))
	}
	return nil
}

// LastRun returns the most recent completed run, or nil before the first.
func (d *Distributor) LastRun() *RunResult {
	return d.last.Load()
}

// HealthCheck reports whether the most recent run succeeded. No run yet is
// healthy. It has the shape of a health.CheckFunc.
func (d *Distributor) HealthCheck(ctx context.Context) (bool, string) {
	last := d.LastRun()
	if last == nil {
		return true, "no run yet"
	}
	return last.Succeeded(), fmt.Sprintf("%s at %s", last.Outcome, last.FinishedAt.UTC().Format(time.RFC3339))
}

// InFlight reports whether a run is currently executing.
func (d *Distributor) InFlight() bool {
	return d.running.Load()
}

// Gateway returns the underlying gateway.
func (d *Distributor) Gateway() *Gateway {
	return d.gateway
}

func outcomeOf(err error) RunOutcome {
	if err == nil {
		return OutcomeConfirmed
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return OutcomeCancelled
	}

	switch apperror.GetCode(err) {
	case apperror.CodeOnChainRevert:
		return OutcomeOnChainRevert
	case apperror.CodePreflightFailed:
		return OutcomePreflightFailed
	case apperror.CodeSimulationRejected:
		return OutcomeSimulationRejected
	case apperror.CodeSubmissionFailed:
		return OutcomeSubmissionFailed
	case apperror.CodeConfirmationTimeout:
		return OutcomeConfirmationTimeout
	default:
		return OutcomeError
	}
}
