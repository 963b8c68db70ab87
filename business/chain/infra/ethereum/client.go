// Package ethereum provides the go-ethereum adapter for the chain context.
package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/rewards-distributor/business/chain/app"
	"github.com/fd1az/rewards-distributor/business/chain/domain"
	"github.com/fd1az/rewards-distributor/internal/apperror"
	"github.com/fd1az/rewards-distributor/internal/circuitbreaker"
	"github.com/fd1az/rewards-distributor/internal/logger"
	"github.com/fd1az/rewards-distributor/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/rewards-distributor/business/chain/infra/ethereum"
	meterName  = "github.com/fd1az/rewards-distributor/business/chain/infra/ethereum"
)

var _ app.ChainClient = (*Client)(nil)

// ClientConfig holds configuration for the RPC client.
type ClientConfig struct {
	RPCURL            string
	ChainID           uint64
	DialTimeout       time.Duration
	RequestsPerSecond float64
	Burst             int
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(rpcURL string, chainID uint64) ClientConfig {
	return ClientConfig{
		RPCURL:            rpcURL,
		ChainID:           chainID,
		DialTimeout:       10 * time.Second,
		RequestsPerSecond: 10,
		Burst:             5,
	}
}

// clientMetrics holds OTEL metric instruments.
type clientMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

// Client implements app.ChainClient over ethclient with a single signing key.
type Client struct {
	config ClientConfig
	logger logger.LoggerInterface

	rpc     *ethclient.Client
	key     *ecdsa.PrivateKey
	address common.Address
	signer  types.Signer

	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[any]

	// Observability
	tracer  trace.Tracer
	metrics *clientMetrics
}

// Dial connects to cfg.RPCURL and returns a ready Client.
func Dial(ctx context.Context, cfg ClientConfig, key *ecdsa.PrivateKey, log logger.LoggerInterface) (*Client, error) {
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	rc, err := rpc.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, apperror.New(apperror.CodeTransportError,
			apperror.WithCause(err),
			apperror.WithContext("failed to dial "+cfg.RPCURL))
	}
	return NewClient(cfg, rc, key, log)
}

// NewClient wraps an existing rpc.Client.
func NewClient(cfg ClientConfig, rc *rpc.Client, key *ecdsa.PrivateKey, log logger.LoggerInterface) (*Client, error) {
	if key == nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("signing key is required"))
	}
	if cfg.ChainID == 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("chain id is required"))
	}

	c := &Client{
		config:  cfg,
		logger:  log,
		rpc:     ethclient.NewClient(rc),
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		signer:  types.NewEIP155Signer(new(big.Int).SetUint64(cfg.ChainID)),
		limiter: ratelimit.New(cfg.RequestsPerSecond, cfg.Burst),
		tracer:  otel.Tracer(tracerName),
	}

	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	c.initCircuitBreaker()

	return c, nil
}

// initMetrics initializes OTEL metric instruments.
func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.requests, err = meter.Int64Counter(
		"chain_rpc_requests_total",
		metric.WithDescription("Total JSON-RPC requests by operation and status"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	c.metrics.latency, err = meter.Float64Histogram(
		"chain_rpc_latency_ms",
		metric.WithDescription("JSON-RPC request latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// initCircuitBreaker initializes the circuit breaker. Reverts and missing
// receipts are answers from a healthy node and do not trip it.
func (c *Client) initCircuitBreaker() {
	cfg := circuitbreaker.DefaultConfig("chain-rpc")
	cfg.IsSuccessful = func(err error) bool {
		if err == nil {
			return true
		}
		if errors.Is(err, ethereum.NotFound) || errors.Is(err, context.Canceled) {
			return true
		}
		_, reverted := revertFromError(err)
		return reverted
	}
	cfg.OnStateChange = func(name, from, to string) {
		c.logger.Warn(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from, "to", to)
	}
	c.cb = circuitbreaker.New[any](cfg)
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// Address returns the signer address.
func (c *Client) Address() common.Address {
	return c.address
}

// ChainID queries eth_chainId.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	id, err := call(ctx, c, "chain_id", func(ctx context.Context) (*big.Int, error) {
		return c.rpc.ChainID(ctx)
	})
	if err != nil {
		return 0, transportErr("chain_id", err)
	}
	return id.Uint64(), nil
}

// BlockNumber queries eth_blockNumber.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := call(ctx, c, "block_number", c.rpc.BlockNumber)
	if err != nil {
		return 0, transportErr("block_number", err)
	}
	return n, nil
}

// Balance queries eth_getBalance at the latest block.
func (c *Client) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	bal, err := call(ctx, c, "balance", func(ctx context.Context) (*big.Int, error) {
		return c.rpc.BalanceAt(ctx, addr, nil)
	})
	if err != nil {
		return nil, transportErr("balance", err)
	}
	return bal, nil
}

// PendingNonce queries eth_getTransactionCount(pending) for the signer.
func (c *Client) PendingNonce(ctx context.Context) (uint64, error) {
	n, err := call(ctx, c, "pending_nonce", func(ctx context.Context) (uint64, error) {
		return c.rpc.PendingNonceAt(ctx, c.address)
	})
	if err != nil {
		return 0, transportErr("pending_nonce", err)
	}
	return n, nil
}

// GasPrice queries eth_gasPrice.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	p, err := call(ctx, c, "gas_price", c.rpc.SuggestGasPrice)
	if err != nil {
		return nil, transportErr("gas_price", err)
	}
	return p, nil
}

// Code queries eth_getCode at the latest block.
func (c *Client) Code(ctx context.Context, addr common.Address) ([]byte, error) {
	code, err := call(ctx, c, "code", func(ctx context.Context) ([]byte, error) {
		return c.rpc.CodeAt(ctx, addr, nil)
	})
	if err != nil {
		return nil, transportErr("code", err)
	}
	return code, nil
}

// Call executes eth_call against the latest block.
func (c *Client) Call(ctx context.Context, req domain.CallRequest) ([]byte, error) {
	out, err := call(ctx, c, "call", func(ctx context.Context) ([]byte, error) {
		return c.rpc.CallContract(ctx, toCallMsg(req), nil)
	})
	if err != nil {
		return nil, callErr("call", err)
	}
	return out, nil
}

// EstimateGas executes eth_estimateGas.
func (c *Client) EstimateGas(ctx context.Context, req domain.CallRequest) (uint64, error) {
	gas, err := call(ctx, c, "estimate_gas", func(ctx context.Context) (uint64, error) {
		return c.rpc.EstimateGas(ctx, toCallMsg(req))
	})
	if err != nil {
		return 0, callErr("estimate_gas", err)
	}
	return gas, nil
}

// Send signs req as an EIP-155 legacy transaction and broadcasts it.
func (c *Client) Send(ctx context.Context, req *domain.TransactionRequest) (common.Hash, error) {
	if req.ChainID() != c.config.ChainID {
		return common.Hash{}, apperror.New(apperror.CodeInvalidTransaction,
			apperror.WithContext(fmt.Sprintf("request chain id %d does not match signer chain id %d",
				req.ChainID(), c.config.ChainID)))
	}

	to := req.To()
	tx, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    req.Nonce(),
		GasPrice: req.GasPrice(),
		Gas:      req.GasLimit(),
		To:       &to,
		Value:    req.Value(),
		Data:     req.Data(),
	}), c.signer, c.key)
	if err != nil {
		return common.Hash{}, apperror.New(apperror.CodeSubmissionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to sign transaction"))
	}

	_, err = call(ctx, c, "send", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.rpc.SendTransaction(ctx, tx)
	})
	if err != nil {
		return common.Hash{}, apperror.New(apperror.CodeSubmissionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to broadcast transaction"))
	}

	c.logger.Debug(ctx, "transaction broadcast",
		"tx_hash", tx.Hash().Hex(), "nonce", req.Nonce(), "gas", req.GasLimit())
	return tx.Hash(), nil
}

// Receipt queries eth_getTransactionReceipt. It returns (nil, nil) while pending.
func (c *Client) Receipt(ctx context.Context, hash common.Hash) (*domain.Receipt, error) {
	r, err := call(ctx, c, "receipt", func(ctx context.Context) (*types.Receipt, error) {
		return c.rpc.TransactionReceipt(ctx, hash)
	})
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, transportErr("receipt", err)
	}

	out := &domain.Receipt{
		TxHash:            r.TxHash,
		Status:            r.Status,
		GasUsed:           r.GasUsed,
		EffectiveGasPrice: r.EffectiveGasPrice,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out, nil
}

// call runs fn under the limiter and breaker, with a span and metrics.
func call[T any](ctx context.Context, c *Client, op string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := c.tracer.Start(ctx, "chain."+op,
		trace.WithAttributes(attribute.String("rpc.op", op)),
	)
	defer span.End()

	var zero T
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		c.record(ctx, op, start, "rate_limited")
		span.RecordError(err)
		span.SetStatus(codes.Error, "rate limited")
		return zero, err
	}

	res, err := c.cb.Execute(func() (any, error) {
		return fn(ctx)
	})
	if err != nil {
		status := "error"
		if errors.Is(err, ethereum.NotFound) {
			status = "not_found"
		} else if _, ok := revertFromError(err); ok {
			status = "reverted"
		}
		c.record(ctx, op, start, status)
		if status == "error" {
			span.RecordError(err)
			span.SetStatus(codes.Error, op+" failed")
		}
		return zero, err
	}

	c.record(ctx, op, start, "ok")
	span.SetStatus(codes.Ok, "")
	return res.(T), nil
}

func (c *Client) record(ctx context.Context, op string, start time.Time, status string) {
	c.metrics.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("status", status),
	))
	c.metrics.latency.Record(ctx, float64(time.Since(start).Microseconds())/1000.0,
		metric.WithAttributes(attribute.String("op", op)))
}

func toCallMsg(req domain.CallRequest) ethereum.CallMsg {
	to := req.To
	msg := ethereum.CallMsg{
		From:  req.From,
		To:    &to,
		Data:  req.Data,
		Value: big.NewInt(0),
		Gas:   req.Gas,
	}
	if req.GasPrice != nil {
		msg.GasPrice = req.GasPrice
	}
	return msg
}

// revertFromError recognises a revert in a JSON-RPC error. Nodes report it
// with error code 3 and revert data, or only as an "execution reverted" message.
func revertFromError(err error) (*domain.RevertError, bool) {
	var de rpc.DataError
	hasData := errors.As(err, &de) && de.ErrorData() != nil

	var re rpc.Error
	code3 := errors.As(err, &re) && re.ErrorCode() == 3

	if !hasData && !code3 && !strings.Contains(strings.ToLower(err.Error()), "revert") {
		return nil, false
	}

	out := &domain.RevertError{Reason: err.Error()}
	if hasData {
		out.Reason = de.Error()
		if s, ok := de.ErrorData().(string); ok {
			if data, derr := hexutil.Decode(s); derr == nil {
				out.Data = data
				if reason, uerr := abi.UnpackRevert(data); uerr == nil {
					out.Reason = reason
				}
			}
		}
	}
	return out, true
}

func callErr(op string, err error) error {
	if re, ok := revertFromError(err); ok {
		return apperror.New(apperror.CodeExecutionReverted,
			apperror.WithCause(re),
			apperror.WithContext(op))
	}
	return transportErr(op, err)
}

func transportErr(op string, err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.New(apperror.CodeTransportError,
		apperror.WithCause(err),
		apperror.WithContext(op))
}
