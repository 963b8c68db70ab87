package ethereum_test

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/rewards-distributor/business/chain/domain"
	"github.com/fd1az/rewards-distributor/business/chain/infra/ethereum"
	"github.com/fd1az/rewards-distributor/internal/apperror"
	"github.com/fd1az/rewards-distributor/internal/logger"
)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var (
	testContract = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	revertSig    = []byte{0x08, 0xc3, 0x79, 0xa0}
)

// revertErr mimics a node's JSON-RPC revert error.
type revertErr struct {
	msg  string
	data string
}

func (e *revertErr) Error() string          { return e.msg }
func (e *revertErr) ErrorCode() int         { return 3 }
func (e *revertErr) ErrorData() interface{} { return e.data }

// fakeEth serves the subset of the eth namespace the client uses.
type fakeEth struct {
	mu       sync.Mutex
	chainID  uint64
	revert   error
	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
}

func (f *fakeEth) ChainId() *hexutil.Big {
	return (*hexutil.Big)(new(big.Int).SetUint64(f.chainID))
}

func (f *fakeEth) BlockNumber() hexutil.Uint64 { return 42 }

func (f *fakeEth) GasPrice() *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(7_000_000_000))
}

func (f *fakeEth) GetBalance(addr common.Address, block string) *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(1e18))
}

func (f *fakeEth) GetTransactionCount(addr common.Address, block string) hexutil.Uint64 {
	if block == "pending" {
		return 5
	}
	return 4
}

func (f *fakeEth) GetCode(addr common.Address, block string) hexutil.Bytes {
	if addr == testContract {
		return hexutil.Bytes{0x60, 0x80}
	}
	return hexutil.Bytes{}
}

func (f *fakeEth) Call(args map[string]interface{}, block string) (hexutil.Bytes, error) {
	if f.revert != nil {
		return nil, f.revert
	}
	return hexutil.Bytes{0x01}, nil
}

func (f *fakeEth) EstimateGas(args map[string]interface{}, block *string) (hexutil.Uint64, error) {
	if f.revert != nil {
		return 0, f.revert
	}
	return 200000, nil
}

func (f *fakeEth) SendRawTransaction(raw hexutil.Bytes) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	f.mu.Lock()
	f.sent = append(f.sent, tx)
	f.mu.Unlock()
	return tx.Hash(), nil
}

func (f *fakeEth) GetTransactionReceipt(hash common.Hash) *types.Receipt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipts[hash]
}

func newTestClient(t *testing.T, svc *fakeEth) *ethereum.Client {
	t.Helper()

	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", svc))
	t.Cleanup(server.Stop)

	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)

	cfg := ethereum.DefaultClientConfig("inproc", svc.chainID)
	cfg.RequestsPerSecond = 0
	c, err := ethereum.NewClient(cfg, rpc.DialInProc(server), key, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestClient_Reads(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, &fakeEth{chainID: 31337})

	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), c.Address())

	id, err := c.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(31337), id)

	n, err := c.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)

	nonce, err := c.PendingNonce(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), nonce)

	price, err := c.GasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7_000_000_000), price.Int64())

	bal, err := c.Balance(ctx, c.Address())
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", bal.String())

	code, err := c.Code(ctx, testContract)
	require.NoError(t, err)
	assert.Len(t, code, 2)

	gas, err := c.EstimateGas(ctx, domain.CallRequest{From: c.Address(), To: testContract})
	require.NoError(t, err)
	assert.Equal(t, uint64(200000), gas)
}

func TestClient_CallRevertDecodesReason(t *testing.T) {
	str, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: str}}.Pack("Ownable: caller is not the owner")
	require.NoError(t, err)
	data := append(append([]byte{}, revertSig...), packed...)

	svc := &fakeEth{
		chainID: 1,
		revert:  &revertErr{msg: "execution reverted", data: hexutil.Encode(data)},
	}
	c := newTestClient(t, svc)

	_, err = c.Call(context.Background(), domain.CallRequest{From: c.Address(), To: testContract})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeExecutionReverted, apperror.GetCode(err))
	assert.Equal(t, "Ownable: caller is not the owner", domain.RevertReasonOf(err))

	_, err = c.EstimateGas(context.Background(), domain.CallRequest{From: c.Address(), To: testContract})
	assert.Equal(t, apperror.CodeExecutionReverted, apperror.GetCode(err))
}

func TestClient_SendSignsLegacyEIP155(t *testing.T) {
	svc := &fakeEth{chainID: 31337, receipts: map[common.Hash]*types.Receipt{}}
	c := newTestClient(t, svc)
	ctx := context.Background()

	req, err := domain.NewTransactionRequest(testContract, []byte{0xaa, 0xbb, 0xcc, 0xdd},
		300000, big.NewInt(20_000_000_000), 5, 31337)
	require.NoError(t, err)

	hash, err := c.Send(ctx, req)
	require.NoError(t, err)
	require.Len(t, svc.sent, 1)

	tx := svc.sent[0]
	assert.Equal(t, hash, tx.Hash())
	assert.Equal(t, uint8(types.LegacyTxType), tx.Type())
	assert.Equal(t, uint64(300000), tx.Gas())
	assert.Equal(t, uint64(5), tx.Nonce())
	assert.Equal(t, int64(0), tx.Value().Int64())
	assert.Equal(t, int64(31337), tx.ChainId().Int64())

	from, err := types.Sender(types.NewEIP155Signer(big.NewInt(31337)), tx)
	require.NoError(t, err)
	assert.Equal(t, c.Address(), from)

	// Not mined yet.
	r, err := c.Receipt(ctx, hash)
	require.NoError(t, err)
	assert.Nil(t, r)

	svc.mu.Lock()
	svc.receipts[hash] = &types.Receipt{
		Status:            types.ReceiptStatusSuccessful,
		CumulativeGasUsed: 21000,
		GasUsed:           21000,
		Logs:              []*types.Log{},
		TxHash:            hash,
		BlockNumber:       big.NewInt(43),
		EffectiveGasPrice: big.NewInt(20_000_000_000),
	}
	svc.mu.Unlock()

	r, err = c.Receipt(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, r.Succeeded())
	assert.Equal(t, uint64(43), r.BlockNumber)
	assert.Equal(t, uint64(21000), r.GasUsed)
}

func TestClient_SendRejectsChainMismatch(t *testing.T) {
	c := newTestClient(t, &fakeEth{chainID: 1})

	req, err := domain.NewTransactionRequest(testContract, nil, 21000, big.NewInt(1), 0, 5)
	require.NoError(t, err)

	_, err = c.Send(context.Background(), req)
	assert.Equal(t, apperror.CodeInvalidTransaction, apperror.GetCode(err))
}
