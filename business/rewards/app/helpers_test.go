package app_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/raulk/clock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/rewards-distributor/business/chain/chaintest"
	chain "github.com/fd1az/rewards-distributor/business/chain/domain"
	"github.com/fd1az/rewards-distributor/business/rewards/app"
	"github.com/fd1az/rewards-distributor/business/rewards/domain"
	"github.com/fd1az/rewards-distributor/internal/logger"
)

var (
	signer       = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	contractAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	calldata     = []byte{0xde, 0xad, 0xbe, 0xef}
	txHash       = common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111")
)

// autoClock advances the mock clock whenever something waits on it.
type autoClock struct {
	*clock.Mock
}

func (c *autoClock) After(d time.Duration) <-chan time.Time {
	ch := c.Mock.After(d)
	c.Mock.Add(d)
	return ch
}

func newAutoClock() *autoClock {
	m := clock.NewMock()
	m.Set(time.Unix(1_700_000_000, 0))
	return &autoClock{Mock: m}
}

// fakeContract is an in-memory RewardsContract.
type fakeContract struct {
	status  domain.ContractStatus
	entered chan struct{} // closed on first ReadStatus when set
	release chan struct{} // ReadStatus blocks on it when set
}

func (f *fakeContract) Address() common.Address    { return contractAddr }
func (f *fakeContract) DistributeCalldata() []byte { return append([]byte(nil), calldata...) }

func (f *fakeContract) ReadStatus(ctx context.Context) domain.ContractStatus {
	if f.entered != nil {
		close(f.entered)
		f.entered = nil
	}
	if f.release != nil {
		<-f.release
	}
	return f.status
}

type harness struct {
	client      *chaintest.MockChainClient
	contract    *fakeContract
	clock       *autoClock
	gateway     *app.Gateway
	tracker     *app.Tracker
	distributor *app.Distributor
}

func newHarness(t *testing.T, chainID uint64, policy domain.GasPolicy, mode domain.PreflightMode) *harness {
	t.Helper()

	h := &harness{
		client:   &chaintest.MockChainClient{},
		contract: &fakeContract{},
		clock:    newAutoClock(),
	}
	h.client.On("Address").Return(signer).Maybe()

	network := chain.NewNetwork(chainID)
	log := logger.NewNop()

	var err error
	h.gateway, err = app.NewGateway(h.client, h.contract, app.GatewayConfig{
		Network: network,
		Policy:  policy,
		Mode:    mode,
	}, h.clock, log)
	require.NoError(t, err)

	h.tracker, err = app.NewTracker(h.client, network, h.clock, log)
	require.NoError(t, err)

	h.distributor, err = app.NewDistributor(h.gateway, h.tracker, h.clock, log)
	require.NoError(t, err)
	return h
}

func defaultPolicy() domain.GasPolicy {
	return domain.GasPolicy{GasLimit: 500000}
}

func isDistributeCall(req chain.CallRequest) bool {
	return req.From == signer && req.To == contractAddr && string(req.Data) == string(calldata)
}

// expectSubmission wires a successful simulate/estimate/price/nonce/send path
// and returns a pointer that receives the sent request.
func (h *harness) expectSubmission(estimate uint64, livePrice *big.Int) **chain.TransactionRequest {
	var sent *chain.TransactionRequest
	h.client.On("Call", mock.Anything, mock.MatchedBy(isDistributeCall)).Return([]byte{}, nil)
	h.client.On("EstimateGas", mock.Anything, mock.MatchedBy(isDistributeCall)).Return(estimate, nil)
	if livePrice != nil {
		h.client.On("GasPrice", mock.Anything).Return(livePrice, nil)
	}
	h.client.On("PendingNonce", mock.Anything).Return(uint64(3), nil)
	h.client.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*chain.TransactionRequest)
	}).Return(txHash, nil)
	return &sent
}

func ptr[T any](v T) *T { return &v }
