package domain

import "math/big"

// NetworkInfo summarises the connected chain for diagnostics.
type NetworkInfo struct {
	ChainID     uint64
	BlockNumber uint64
	GasPrice    *big.Int
	IsLocalDev  bool
}
