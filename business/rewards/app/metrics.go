package app

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	tracerName = "github.com/fd1az/rewards-distributor/business/rewards/app"
	meterName  = "github.com/fd1az/rewards-distributor/business/rewards/app"
)

// pipelineMetrics holds OTEL metric instruments shared by the pipeline services.
type pipelineMetrics struct {
	submissions          metric.Int64Counter
	simulationRejections metric.Int64Counter
	estimateFallbacks    metric.Int64Counter
	gasPriceGwei         metric.Float64Gauge
	confirmations        metric.Int64Counter
	confirmationWait     metric.Float64Histogram
	runs                 metric.Int64Counter
}

func newPipelineMetrics() (*pipelineMetrics, error) {
	meter := otel.Meter(meterName)
	m := &pipelineMetrics{}
	var err error

	m.submissions, err = meter.Int64Counter(
		"distribution_submissions_total",
		metric.WithDescription("Distribution submissions by result"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	m.simulationRejections, err = meter.Int64Counter(
		"distribution_simulation_rejections_total",
		metric.WithDescription("Simulations rejected by the contract, by reason"),
		metric.WithUnit("{rejection}"),
	)
	if err != nil {
		return nil, err
	}

	m.estimateFallbacks, err = meter.Int64Counter(
		"distribution_gas_estimate_fallbacks_total",
		metric.WithDescription("Gas estimations that fell back to the configured limit"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		return nil, err
	}

	m.gasPriceGwei, err = meter.Float64Gauge(
		"distribution_gas_price_gwei",
		metric.WithDescription("Gas price of the last submitted distribution"),
		metric.WithUnit("gwei"),
	)
	if err != nil {
		return nil, err
	}

	m.confirmations, err = meter.Int64Counter(
		"distribution_confirmations_total",
		metric.WithDescription("Confirmation outcomes by status"),
		metric.WithUnit("{confirmation}"),
	)
	if err != nil {
		return nil, err
	}

	m.confirmationWait, err = meter.Float64Histogram(
		"distribution_confirmation_wait_seconds",
		metric.WithDescription("Time from broadcast to terminal confirmation state"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.runs, err = meter.Int64Counter(
		"distribution_runs_total",
		metric.WithDescription("Distribution runs by outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}
