package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/raulk/clock"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	chainApp "github.com/fd1az/rewards-distributor/business/chain/app"
	chain "github.com/fd1az/rewards-distributor/business/chain/domain"
	"github.com/fd1az/rewards-distributor/internal/apm"
	"github.com/fd1az/rewards-distributor/internal/apperror"
	"github.com/fd1az/rewards-distributor/internal/logger"
)

// Tracker polls for a transaction receipt until it is mined or times out.
type Tracker struct {
	client  chainApp.ChainClient
	network chain.Network
	clock   clock.Clock
	logger  logger.LoggerInterface

	tracer  apm.Tracer
	metrics *pipelineMetrics
}

// NewTracker creates a Tracker using the network's poll interval and timeout.
func NewTracker(client chainApp.ChainClient, network chain.Network, clk clock.Clock, log logger.LoggerInterface) (*Tracker, error) {
	m, err := newPipelineMetrics()
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return &Tracker{
		client:  client,
		network: network,
		clock:   clk,
		logger:  log,
		tracer:  apm.NewTracer(tracerName),
		metrics: m,
	}, nil
}

// AwaitConfirmation returns the receipt once mined, whatever its status.
// Lookup errors are logged and polling continues until the timeout. The
// timeout also cuts off a lookup that is still in flight.
func (t *Tracker) AwaitConfirmation(ctx context.Context, hash common.Hash) (*chain.Receipt, error) {
	ctx, span := t.tracer.StartSpanFromContext(ctx, "rewards.await_confirmation")
	defer span.End()
	span.SetAttributes(attribute.String("tx_hash", hash.Hex()))

	interval := t.network.PollInterval()
	timeout := t.network.ConfirmationTimeout()
	start := t.clock.Now()

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	deadline := t.clock.AfterFunc(timeout, cancel)
	defer deadline.Stop()

	t.logger.Info(ctx, "waiting for confirmation",
		"tx_hash", hash.Hex(), "interval", interval.String(), "timeout", timeout.String())

	timedOut := func() error {
		t.record(ctx, "timeout", start)
		err := apperror.New(apperror.CodeConfirmationTimeout,
			apperror.WithContext(fmt.Sprintf("tx %s not mined after %s", hash.Hex(), timeout)))
		span.NoticeError(err)
		return err
	}
	stopped := func() error {
		if ctx.Err() != nil {
			span.NoticeError(ctx.Err())
			return ctx.Err()
		}
		return timedOut()
	}

	for attempt := 1; ; attempt++ {
		if t.clock.Since(start) >= timeout {
			return nil, timedOut()
		}

		receipt, err := t.client.Receipt(pollCtx, hash)
		switch {
		case err != nil:
			if pollCtx.Err() != nil {
				return nil, stopped()
			}
			t.logger.Warn(ctx, "receipt lookup failed, will retry",
				"tx_hash", hash.Hex(), "attempt", attempt, "error", err)
		case receipt != nil:
			t.record(ctx, receipt.StatusLabel(), start)
			span.SetAttributes(
				attribute.Int64("block_number", int64(receipt.BlockNumber)),
				attribute.Int("attempts", attempt),
			)
			if receipt.Succeeded() {
				t.logger.Info(ctx, "transaction confirmed",
					"tx_hash", hash.Hex(),
					"block_number", receipt.BlockNumber,
					"gas_used", receipt.GasUsed)
				span.SetStatus(codes.Ok, "confirmed")
			} else {
				t.logger.Error(ctx, "transaction failed on chain",
					"tx_hash", hash.Hex(),
					"status", receipt.Status,
					"block_number", receipt.BlockNumber,
					"gas_used", receipt.GasUsed)
				span.SetStatus(codes.Error, "reverted")
			}
			return receipt, nil
		default:
			t.logger.Debug(ctx, "transaction pending", "tx_hash", hash.Hex(), "attempt", attempt)
		}

		select {
		case <-pollCtx.Done():
			return nil, stopped()
		case <-t.clock.After(interval):
		}
	}
}

func (t *Tracker) record(ctx context.Context, status string, start time.Time) {
	t.metrics.confirmations.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	t.metrics.confirmationWait.Record(ctx, t.clock.Since(start).Seconds())
}
