package app_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/rewards-distributor/business/rewards/app"
	"github.com/fd1az/rewards-distributor/business/rewards/domain"
	"github.com/fd1az/rewards-distributor/internal/apperror"
	"github.com/fd1az/rewards-distributor/internal/asset"
	"github.com/fd1az/rewards-distributor/internal/logger"
)

func (h *harness) expectReads(chainID uint64) {
	h.client.On("Code", mock.Anything, contractAddr).Return([]byte{0x60, 0x80, 0x60}, nil)
	h.client.On("ChainID", mock.Anything).Return(chainID, nil)
	h.client.On("BlockNumber", mock.Anything).Return(uint64(1234), nil)
	h.client.On("GasPrice", mock.Anything).Return(asset.GweiToWei(2), nil)
	h.client.On("Balance", mock.Anything, signer).Return(big.NewInt(2e18), nil)
}

func healthyStatus(now time.Time) domain.ContractStatus {
	return domain.ContractStatus{
		Active:           ptr(true),
		Paused:           ptr(false),
		CanDistribute:    ptr(true),
		Owner:            ptr(signer),
		LastDistribution: big.NewInt(now.Add(-25 * time.Hour).Unix()),
		RewardsPool:      big.NewInt(1000),
		TotalRewards:     big.NewInt(5000),
		RewardsPerDay:    big.NewInt(100),
	}
}

func checkStatus(t *testing.T, r *app.Report, name string) app.CheckStatus {
	t.Helper()
	c, ok := r.Check(name)
	require.True(t, ok, "missing check %q", name)
	return c.Status
}

func TestDiagnostics_Healthy(t *testing.T) {
	h := newHarness(t, 31337, defaultPolicy(), domain.PreflightAdvisory)
	h.contract.status = healthyStatus(h.clock.Now())
	h.expectReads(31337)
	h.client.On("Call", mock.Anything, mock.Anything).Return([]byte{}, nil)

	d := app.NewDiagnostics(h.distributor, h.clock, logger.NewNop())
	r := d.Diagnose(context.Background())

	require.NoError(t, r.Err)
	assert.False(t, r.Failed())
	for _, name := range []string{"connectivity", "balance", "active", "paused", "can_distribute", "permission", "timing", "pool", "simulation"} {
		assert.Equal(t, app.CheckPass, checkStatus(t, r, name), name)
	}
	assert.Equal(t, app.CheckInfo, checkStatus(t, r, "network"))
	_, mismatch := r.Check("chain_id")
	assert.False(t, mismatch)

	bal, _ := r.Check("balance")
	assert.Equal(t, "2.000000 ETH", bal.Detail)

	h.client.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDiagnostics_Problems(t *testing.T) {
	h := newHarness(t, 1, defaultPolicy(), domain.PreflightAdvisory)
	now := h.clock.Now()
	other := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	h.contract.status = domain.ContractStatus{
		Paused:           ptr(true),
		Owner:            &other,
		LastDistribution: big.NewInt(now.Add(-2 * time.Hour).Unix()),
		RewardsPool:      big.NewInt(50),
		RewardsPerDay:    big.NewInt(100),
	}
	h.client.On("Code", mock.Anything, contractAddr).Return([]byte{}, nil)
	h.client.On("ChainID", mock.Anything).Return(uint64(5), nil)
	h.client.On("BlockNumber", mock.Anything).Return(uint64(1), nil)
	h.client.On("GasPrice", mock.Anything).Return(asset.GweiToWei(2), nil)
	h.client.On("Balance", mock.Anything, signer).Return(nil, errors.New("balance unavailable"))
	h.client.On("Call", mock.Anything, mock.Anything).Return(nil, apperror.New(apperror.CodeExecutionReverted,
		apperror.WithContext("Ownable: caller is not the owner")))

	d := app.NewDiagnostics(h.distributor, h.clock, logger.NewNop())
	r := d.Diagnose(context.Background())

	assert.True(t, r.Failed())
	require.Error(t, r.Err)
	assert.Contains(t, r.Err.Error(), "balance unavailable")

	assert.Equal(t, app.CheckFail, checkStatus(t, r, "connectivity"))
	assert.Equal(t, app.CheckWarn, checkStatus(t, r, "chain_id"))
	assert.Equal(t, app.CheckFail, checkStatus(t, r, "balance"))
	assert.Equal(t, app.CheckInfo, checkStatus(t, r, "active"))
	assert.Equal(t, app.CheckFail, checkStatus(t, r, "paused"))
	assert.Equal(t, app.CheckFail, checkStatus(t, r, "permission"))
	assert.Equal(t, app.CheckWarn, checkStatus(t, r, "pool"))
	assert.Equal(t, app.CheckFail, checkStatus(t, r, "simulation"))

	timing, _ := r.Check("timing")
	assert.Equal(t, app.CheckWarn, timing.Status)
	assert.Contains(t, timing.Detail, "21 hours remaining")

	sim, _ := r.Check("simulation")
	assert.Contains(t, sim.Detail, domain.RevertNotOwner.String())
}

func TestDiagnostics_ManualTrigger(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		h := newHarness(t, 31337, defaultPolicy(), domain.PreflightAdvisory)
		h.expectSubmission(100000, asset.GweiToWei(1))
		h.client.On("Receipt", mock.Anything, txHash).Return(minedReceipt(1), nil)

		r := app.NewDiagnostics(h.distributor, h.clock, logger.NewNop()).ManualTrigger(context.Background())
		require.NoError(t, r.Err)
		assert.Equal(t, app.CheckPass, checkStatus(t, r, string(app.OutcomeConfirmed)))
		assert.Equal(t, app.CheckInfo, checkStatus(t, r, "tx_hash"))
		assert.Equal(t, app.CheckInfo, checkStatus(t, r, "receipt"))
		assert.NotNil(t, h.distributor.LastRun())
	})

	t.Run("rejected", func(t *testing.T) {
		h := newHarness(t, 31337, defaultPolicy(), domain.PreflightAdvisory)
		h.client.On("Call", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused"))

		r := app.NewDiagnostics(h.distributor, h.clock, logger.NewNop()).ManualTrigger(context.Background())
		assert.True(t, r.Failed())
		assert.Equal(t, apperror.CodeSimulationRejected, apperror.GetCode(r.Err))
		assert.Equal(t, app.CheckFail, checkStatus(t, r, string(app.OutcomeSimulationRejected)))
		_, sent := r.Check("tx_hash")
		assert.False(t, sent)
	})
}
