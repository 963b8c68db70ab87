package asset

import "math/big"

// Chain IDs
const (
	ChainIDEthereum = 1
	ChainIDSepolia  = 11155111
	ChainIDPolygon  = 137
	ChainIDArbitrum = 42161
	ChainIDOptimism = 10
	ChainIDBase     = 8453
	ChainIDBSC      = 56
)

// Well-known native coins and display units.
var (
	ETH  = NewAssetWithName("ETH", "Ether", 18)
	POL  = NewAssetWithName("POL", "Polygon", 18)
	BNB  = NewAssetWithName("BNB", "BNB", 18)
	Gwei = NewAssetWithName("gwei", "Gigawei", 9)
)

var weiPerGwei = big.NewInt(1_000_000_000)

// NativeCoin returns the native coin for chainID. Unknown chains, including
// local test nodes, are treated as ETH-denominated.
func NativeCoin(chainID uint64) *Asset {
	switch chainID {
	case ChainIDPolygon:
		return POL
	case ChainIDBSC:
		return BNB
	default:
		return ETH
	}
}

// GweiToWei converts a whole gwei value to wei.
func GweiToWei(gwei int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(gwei), weiPerGwei)
}

// FormatGwei renders a wei value in gwei, e.g. "20 gwei".
func FormatGwei(wei *big.Int) string {
	if wei == nil {
		return "0 gwei"
	}
	return NewAmount(Gwei, wei).String()
}
