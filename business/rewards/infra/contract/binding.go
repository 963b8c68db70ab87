package contract

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	chainApp "github.com/fd1az/rewards-distributor/business/chain/app"
	chainDomain "github.com/fd1az/rewards-distributor/business/chain/domain"
	"github.com/fd1az/rewards-distributor/business/rewards/domain"
	"github.com/fd1az/rewards-distributor/internal/apperror"
	"github.com/fd1az/rewards-distributor/internal/logger"
)

const tracerName = "github.com/fd1az/rewards-distributor/business/rewards/infra/contract"

// Binding encodes calls to the rewards contract and decodes its views.
type Binding struct {
	abi     abi.ABI
	address common.Address
	client  chainApp.ChainClient
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewBinding creates a binding for the contract at address.
func NewBinding(address common.Address, client chainApp.ChainClient, log logger.LoggerInterface) (*Binding, error) {
	parsed, err := abi.JSON(strings.NewReader(rewardsABI))
	if err != nil {
		return nil, apperror.New(apperror.CodeInternalError,
			apperror.WithCause(err),
			apperror.WithContext("parse rewards ABI"))
	}

	return &Binding{
		abi:     parsed,
		address: address,
		client:  client,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// Address returns the contract address.
func (b *Binding) Address() common.Address {
	return b.address
}

// DistributeCalldata returns the 4-byte selector of distributeDailyRewards().
func (b *Binding) DistributeCalldata() []byte {
	return append([]byte(nil), b.abi.Methods[methodDistribute].ID...)
}

// ReadStatus reads every status view. Failed reads leave the field nil.
func (b *Binding) ReadStatus(ctx context.Context) domain.ContractStatus {
	ctx, span := b.tracer.Start(ctx, "contract.read_status",
		trace.WithAttributes(attribute.String("contract", b.address.Hex())),
	)
	defer span.End()

	var s domain.ContractStatus
	s.Active = readBool(ctx, b, methodIsActive)
	s.Owner = readAddress(ctx, b, methodOwner)
	s.LastDistribution = readUint(ctx, b, methodLastDistribution)
	s.Paused = readBool(ctx, b, methodPaused)
	s.CanDistribute = readBool(ctx, b, methodCanDistribute)
	s.RewardsPool = readUint(ctx, b, methodRewardsPool)
	s.TotalRewards = readUint(ctx, b, methodTotalRewards)
	s.RewardsPerDay = readUint(ctx, b, methodRewardsPerDay)

	span.SetAttributes(attribute.Bool("status.known", s.Known()))
	return s
}

// view calls method and returns its single decoded output.
func (b *Binding) view(ctx context.Context, method string) (interface{}, error) {
	data, err := b.abi.Pack(method)
	if err != nil {
		return nil, err
	}

	out, err := b.client.Call(ctx, chainDomain.CallRequest{
		From: b.client.Address(),
		To:   b.address,
		Data: data,
	})
	if err != nil {
		return nil, err
	}

	values, err := b.abi.Unpack(method, out)
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext("decode "+method))
	}
	if len(values) != 1 {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext(fmt.Sprintf("%s returned %d values", method, len(values))))
	}
	return values[0], nil
}

func readBool(ctx context.Context, b *Binding, method string) *bool {
	v, ok := read[bool](ctx, b, method)
	if !ok {
		return nil
	}
	return &v
}

func readAddress(ctx context.Context, b *Binding, method string) *common.Address {
	v, ok := read[common.Address](ctx, b, method)
	if !ok {
		return nil
	}
	return &v
}

func readUint(ctx context.Context, b *Binding, method string) *big.Int {
	v, ok := read[*big.Int](ctx, b, method)
	if !ok || v == nil {
		return nil
	}
	return v
}

func read[T any](ctx context.Context, b *Binding, method string) (T, bool) {
	var zero T
	raw, err := b.view(ctx, method)
	if err != nil {
		b.logger.Debug(ctx, "contract view unavailable", "method", method, "error", err)
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		b.logger.Debug(ctx, "contract view returned unexpected type",
			"method", method, "type", fmt.Sprintf("%T", raw))
		return zero, false
	}
	return v, true
}
