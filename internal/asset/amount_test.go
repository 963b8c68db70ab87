package asset_test

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/rewards-distributor/internal/asset"
)

func TestAmount_Basic(t *testing.T) {
	oneETH := asset.NewAmount(asset.ETH, big.NewInt(1e18))

	assert.False(t, oneETH.IsZero())
	assert.True(t, oneETH.ToDecimal().Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "1 ETH", oneETH.String())
	assert.Equal(t, "1.0000 ETH", oneETH.StringFixed(4))
}

func TestAmount_RawIsCopied(t *testing.T) {
	raw := big.NewInt(42)
	a := asset.NewAmount(asset.ETH, raw)
	raw.SetInt64(7)

	assert.Equal(t, int64(42), a.Raw().Int64())

	out := a.Raw()
	out.SetInt64(1)
	assert.Equal(t, int64(42), a.Raw().Int64())
}

func TestAmount_Cmp(t *testing.T) {
	one := asset.NewAmount(asset.ETH, big.NewInt(1))
	two := asset.NewAmount(asset.ETH, big.NewInt(2))

	c, err := one.Cmp(two)
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	_, err = one.Cmp(asset.NewAmount(asset.POL, big.NewInt(1)))
	assert.ErrorIs(t, err, asset.ErrAssetMismatch)
}

func TestAmount_NegativePanics(t *testing.T) {
	assert.Panics(t, func() { asset.NewAmount(asset.ETH, big.NewInt(-1)) })
}

func TestParseString(t *testing.T) {
	a, err := asset.ParseString(asset.ETH, "0.5")
	require.NoError(t, err)
	assert.Equal(t, "500000000000000000", a.Raw().String())

	_, err = asset.ParseString(asset.Gwei, "1.0000000001")
	assert.ErrorIs(t, err, asset.ErrTooManyDecimals)

	_, err = asset.ParseString(asset.ETH, "-1")
	assert.ErrorIs(t, err, asset.ErrNegativeAmount)
}

func TestGwei(t *testing.T) {
	assert.Equal(t, "20000000000", asset.GweiToWei(20).String())
	assert.Equal(t, "20 gwei", asset.FormatGwei(asset.GweiToWei(20)))
	assert.Equal(t, "22.5 gwei", asset.FormatGwei(big.NewInt(22_500_000_000)))
	assert.Equal(t, "0 gwei", asset.FormatGwei(nil))
}

func TestNativeCoin(t *testing.T) {
	assert.Equal(t, asset.ETH, asset.NativeCoin(1))
	assert.Equal(t, asset.ETH, asset.NativeCoin(31337))
	assert.Equal(t, asset.POL, asset.NativeCoin(asset.ChainIDPolygon))
}
