package app

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/raulk/clock"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	chainApp "github.com/fd1az/rewards-distributor/business/chain/app"
	chain "github.com/fd1az/rewards-distributor/business/chain/domain"
	"github.com/fd1az/rewards-distributor/business/rewards/domain"
	"github.com/fd1az/rewards-distributor/internal/apm"
	"github.com/fd1az/rewards-distributor/internal/apperror"
	"github.com/fd1az/rewards-distributor/internal/asset"
	"github.com/fd1az/rewards-distributor/internal/logger"
)

// GatewayConfig holds the submission settings.
type GatewayConfig struct {
	Network chain.Network
	Policy  domain.GasPolicy
	Mode    domain.PreflightMode
}

// Gateway turns one distribution request into a broadcast transaction.
type Gateway struct {
	client   chainApp.ChainClient
	contract RewardsContract
	network  chain.Network
	policy   domain.GasPolicy
	mode     domain.PreflightMode
	clock    clock.Clock
	logger   logger.LoggerInterface

	tracer  apm.Tracer
	metrics *pipelineMetrics
}

// NewGateway creates a Gateway.
func NewGateway(client chainApp.ChainClient, contract RewardsContract, cfg GatewayConfig, clk clock.Clock, log logger.LoggerInterface) (*Gateway, error) {
	if cfg.Policy.GasLimit == 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("gas limit must be positive"))
	}
	if cfg.Mode == "" {
		cfg.Mode = domain.PreflightAdvisory
	}

	m, err := newPipelineMetrics()
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return &Gateway{
		client:   client,
		contract: contract,
		network:  cfg.Network,
		policy:   cfg.Policy,
		mode:     cfg.Mode,
		clock:    clk,
		logger:   log,
		tracer:   apm.NewTracer(tracerName),
		metrics:  m,
	}, nil
}

// SubmitDistribution runs pre-flight, simulation, gas and nonce selection,
// then signs and broadcasts distributeDailyRewards(). It never retries.
func (g *Gateway) SubmitDistribution(ctx context.Context) (common.Hash, error) {
	ctx, span := g.tracer.StartSpanFromContext(ctx, "rewards.submit_distribution")
	defer span.End()

	hash, result, err := g.submit(ctx)
	g.metrics.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	if err != nil {
		span.NoticeError(err)
		return common.Hash{}, err
	}

	span.SetAttributes(attribute.String("tx_hash", hash.Hex()))
	span.SetStatus(codes.Ok, "sent")
	return hash, nil
}

func (g *Gateway) submit(ctx context.Context) (common.Hash, string, error) {
	if err := g.preflight(ctx); err != nil {
		return common.Hash{}, "preflight_failed", err
	}

	if err := g.Simulate(ctx); err != nil {
		return common.Hash{}, "simulation_rejected", err
	}

	estimated := g.estimateGas(ctx)
	gasLimit := domain.BufferGasLimit(g.network, estimated)

	gasPrice := g.resolveGasPrice(ctx)

	nonce, err := g.client.PendingNonce(ctx)
	if err != nil {
		return common.Hash{}, "submission_failed", submissionErr(err, "failed to read pending nonce")
	}

	req, err := chain.NewTransactionRequest(g.contract.Address(), g.contract.DistributeCalldata(),
		gasLimit, gasPrice, nonce, g.network.ChainID())
	if err != nil {
		return common.Hash{}, "submission_failed", submissionErr(err, "failed to build transaction")
	}

	g.logger.Info(ctx, "submitting distribution",
		"to", req.To().Hex(),
		"from", g.client.Address().Hex(),
		"nonce", req.Nonce(),
		"gas_limit", req.GasLimit(),
		"gas_price", asset.FormatGwei(req.GasPrice()),
		"data_len", len(req.Data()),
	)

	hash, err := g.client.Send(ctx, req)
	if err != nil {
		return common.Hash{}, "submission_failed", submissionErr(err, "failed to send transaction")
	}

	g.logger.Info(ctx, "distribution transaction sent", "tx_hash", hash.Hex())
	return hash, "sent", nil
}

// preflight reads the contract status and applies the configured mode.
func (g *Gateway) preflight(ctx context.Context) error {
	ctx, span := g.tracer.StartSpanFromContext(ctx, "rewards.preflight")
	defer span.End()

	status := g.contract.ReadStatus(ctx)
	g.logger.Info(ctx, "contract status",
		"active", fmtBool(status.Active),
		"paused", fmtBool(status.Paused),
		"can_distribute", fmtBool(status.CanDistribute),
		"rewards_pool", fmtUint(status.RewardsPool),
		"last_distribution", fmtUint(status.LastDistribution),
		"signer", g.client.Address().Hex(),
	)

	issues := domain.EvaluatePreflight(status, g.network, g.clock.Now())
	for _, issue := range issues {
		g.logger.Warn(ctx, "pre-flight condition failed",
			"condition", issue.Condition, "detail", issue.Detail, "mode", string(g.mode))
	}
	span.SetAttributes(attribute.Int("preflight.issues", len(issues)))

	if g.mode == domain.PreflightEnforce && len(issues) > 0 {
		details := make([]string, 0, len(issues))
		for _, issue := range issues {
			details = append(details, issue.String())
		}
		err := apperror.New(apperror.CodePreflightFailed,
			apperror.WithContext(strings.Join(details, "; ")))
		span.NoticeError(err)
		return err
	}
	return nil
}

// Simulate dry-runs distributeDailyRewards() as the signer with zero value.
// A nil result means the call would currently succeed.
func (g *Gateway) Simulate(ctx context.Context) error {
	ctx, span := g.tracer.StartSpanFromContext(ctx, "rewards.simulate")
	defer span.End()

	req := chain.CallRequest{
		From: g.client.Address(),
		To:   g.contract.Address(),
		Data: g.contract.DistributeCalldata(),
		Gas:  g.policy.GasLimit,
	}
	if g.policy.HasFixedPrice() {
		req.GasPrice = g.policy.GasPrice
	}

	if _, err := g.client.Call(ctx, req); err != nil {
		raw := chain.RevertReasonOf(err)
		reason, known := domain.ClassifyRevert(raw)

		label := reason.Label()
		detail := raw
		if known {
			detail = reason.String()
		} else if !apperror.HasCode(err, apperror.CodeExecutionReverted) {
			label = "transport"
		}

		g.metrics.simulationRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", label)))
		g.logger.Error(ctx, "simulation failed", "reason", detail, "raw", raw, "error", err)

		rejected := apperror.New(apperror.CodeSimulationRejected,
			apperror.WithCause(err),
			apperror.WithContext(detail))
		span.NoticeError(rejected)
		return rejected
	}

	g.logger.Info(ctx, "simulation succeeded")
	span.SetStatus(codes.Ok, "simulated")
	return nil
}

// estimateGas never fails; it falls back to the configured limit.
func (g *Gateway) estimateGas(ctx context.Context) uint64 {
	gas, err := g.client.EstimateGas(ctx, chain.CallRequest{
		From: g.client.Address(),
		To:   g.contract.Address(),
		Data: g.contract.DistributeCalldata(),
	})
	if err != nil || gas == 0 {
		g.metrics.estimateFallbacks.Add(ctx, 1)
		g.logger.Warn(ctx, "gas estimation failed, using configured limit",
			"gas_limit", g.policy.GasLimit, "error", err)
		return g.policy.GasLimit
	}

	g.logger.Debug(ctx, "gas estimated", "gas", gas)
	return gas
}

func (g *Gateway) resolveGasPrice(ctx context.Context) *big.Int {
	price, source, err := domain.ResolveGasPrice(ctx, g.network, g.policy, g.client.GasPrice)
	if source == domain.PriceFallback {
		g.logger.Warn(ctx, "live gas price unavailable, using network default",
			"gas_price", asset.FormatGwei(price), "error", err)
	}

	gwei, _ := asset.NewAmount(asset.Gwei, price).ToDecimal().Float64()
	g.metrics.gasPriceGwei.Record(ctx, gwei)
	g.logger.Debug(ctx, "gas price resolved", "gas_price", asset.FormatGwei(price), "source", string(source))
	return price
}

// SignerAddress returns the signing account.
func (g *Gateway) SignerAddress() common.Address { return g.client.Address() }

// ContractAddress returns the rewards contract address.
func (g *Gateway) ContractAddress() common.Address { return g.contract.Address() }

// GasLimit returns the configured fallback gas limit.
func (g *Gateway) GasLimit() uint64 { return g.policy.GasLimit }

// Network returns the configured network.
func (g *Gateway) Network() chain.Network { return g.network }

// Mode returns the pre-flight mode.
func (g *Gateway) Mode() domain.PreflightMode { return g.mode }

// NetworkInfo reads the chain id and head block and resolves the gas price
// a submission would use now.
func (g *Gateway) NetworkInfo(ctx context.Context) (domain.NetworkInfo, error) {
	info := domain.NetworkInfo{IsLocalDev: g.network.IsLocalDev()}

	var errs error
	id, err := g.client.ChainID(ctx)
	errs = multierr.Append(errs, err)
	info.ChainID = id

	block, err := g.client.BlockNumber(ctx)
	errs = multierr.Append(errs, err)
	info.BlockNumber = block

	info.GasPrice, _, _ = domain.ResolveGasPrice(ctx, g.network, g.policy, g.client.GasPrice)
	return info, errs
}

// Balance returns the signer balance in wei.
func (g *Gateway) Balance(ctx context.Context) (*big.Int, error) {
	return g.client.Balance(ctx, g.client.Address())
}

// ContractStatus reads a fresh status snapshot.
func (g *Gateway) ContractStatus(ctx context.Context) domain.ContractStatus {
	return g.contract.ReadStatus(ctx)
}

// ContractCode returns the deployed bytecode at the contract address.
func (g *Gateway) ContractCode(ctx context.Context) ([]byte, error) {
	return g.client.Code(ctx, g.contract.Address())
}

func submissionErr(err error, msg string) error {
	if apperror.HasCode(err, apperror.CodeSubmissionFailed) {
		return err
	}
	return apperror.New(apperror.CodeSubmissionFailed,
		apperror.WithCause(err),
		apperror.WithContext(msg))
}

func fmtBool(v *bool) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%t", *v)
}

func fmtUint(v *big.Int) string {
	if v == nil {
		return "unknown"
	}
	return v.String()
}
