package domain_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chain "github.com/fd1az/rewards-distributor/business/chain/domain"
	"github.com/fd1az/rewards-distributor/business/rewards/domain"
	"github.com/fd1az/rewards-distributor/internal/asset"
)

func TestBufferGasLimit(t *testing.T) {
	tests := []struct {
		name    string
		chainID uint64
		gas     uint64
		want    uint64
	}{
		{name: "dev", chainID: 31337, gas: 200000, want: 300000},
		{name: "dev_rounds_down", chainID: 1337, gas: 33333, want: 49999},
		{name: "production", chainID: 1, gas: 200000, want: 240000},
		{name: "production_fallback", chainID: 1, gas: 500000, want: 600000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.BufferGasLimit(chain.NewNetwork(tt.chainID), tt.gas)
			assert.Equal(t, tt.want, got)
		})
	}
}

func livePrice(p *big.Int, err error) (domain.LivePriceFunc, *int) {
	calls := 0
	return func(context.Context) (*big.Int, error) {
		calls++
		return p, err
	}, &calls
}

func TestResolveGasPrice(t *testing.T) {
	errRPC := errors.New("rpc down")

	tests := []struct {
		name    string
		chainID uint64
		live    *big.Int
		liveErr error
		want    *big.Int
		source  domain.PriceSource
	}{
		{name: "dev_capped", chainID: 31337, live: asset.GweiToWei(100), want: asset.GweiToWei(20), source: domain.PriceLive},
		{name: "dev_below_cap", chainID: 31337, live: asset.GweiToWei(2), want: asset.GweiToWei(2), source: domain.PriceLive},
		{name: "production_premium", chainID: 1, live: asset.GweiToWei(10), want: asset.GweiToWei(11), source: domain.PriceLive},
		{name: "production_premium_truncates", chainID: 1, live: big.NewInt(15), want: big.NewInt(16), source: domain.PriceLive},
		{name: "dev_failure", chainID: 31337, liveErr: errRPC, want: asset.GweiToWei(20), source: domain.PriceFallback},
		{name: "production_failure", chainID: 1, liveErr: errRPC, want: asset.GweiToWei(30), source: domain.PriceFallback},
		{name: "zero_live_price", chainID: 1, live: big.NewInt(0), want: asset.GweiToWei(30), source: domain.PriceFallback},
		{name: "nil_live_price", chainID: 1337, want: asset.GweiToWei(20), source: domain.PriceFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, calls := livePrice(tt.live, tt.liveErr)
			got, source, err := domain.ResolveGasPrice(context.Background(),
				chain.NewNetwork(tt.chainID), domain.GasPolicy{GasLimit: 500000}, fn)

			assert.Equal(t, tt.want.String(), got.String())
			assert.Equal(t, tt.source, source)
			assert.Equal(t, 1, *calls)
			if tt.liveErr != nil {
				assert.ErrorIs(t, err, tt.liveErr)
			}
			assert.Positive(t, got.Sign())
		})
	}
}

func TestResolveGasPrice_FixedSkipsLiveQuery(t *testing.T) {
	fixed := big.NewInt(15_000_000_000)
	fn, calls := livePrice(asset.GweiToWei(100), nil)

	for _, id := range []uint64{1, 31337} {
		got, source, err := domain.ResolveGasPrice(context.Background(),
			chain.NewNetwork(id), domain.GasPolicy{GasLimit: 500000, GasPrice: fixed}, fn)
		require.NoError(t, err)
		assert.Equal(t, fixed.String(), got.String())
		assert.Equal(t, domain.PriceFixed, source)
	}
	assert.Equal(t, 0, *calls)

	got, _, _ := domain.ResolveGasPrice(context.Background(), chain.NewNetwork(1),
		domain.GasPolicy{GasPrice: fixed}, fn)
	got.SetInt64(1)
	assert.Equal(t, int64(15_000_000_000), fixed.Int64())
}
