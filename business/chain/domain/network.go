// Package domain contains the core domain types for the chain context.
package domain

import (
	"math/big"
	"time"

	"github.com/fd1az/rewards-distributor/internal/asset"
)

// Local development chain ids (ganache, hardhat, anvil variants).
var devChainIDs = map[uint64]struct{}{
	1337:  {},
	31337: {},
	1338:  {},
	5777:  {},
}

// Network captures the chain-dependent tuning of the pipeline.
type Network struct {
	chainID uint64
}

// NewNetwork creates a Network for chainID.
func NewNetwork(chainID uint64) Network {
	return Network{chainID: chainID}
}

// ChainID returns the chain id.
func (n Network) ChainID() uint64 {
	return n.chainID
}

// ChainIDBig returns the chain id as a big.Int for signing.
func (n Network) ChainIDBig() *big.Int {
	return new(big.Int).SetUint64(n.chainID)
}

// IsLocalDev reports whether the chain id belongs to a local test node.
func (n Network) IsLocalDev() bool {
	_, ok := devChainIDs[n.chainID]
	return ok
}

// Name returns "development" or "production".
func (n Network) Name() string {
	if n.IsLocalDev() {
		return "development"
	}
	return "production"
}

// GasBuffer returns the gas-limit multiplier as numerator/denominator.
func (n Network) GasBuffer() (num, den uint64) {
	if n.IsLocalDev() {
		return 150, 100
	}
	return 120, 100
}

// DevGasPriceCeiling is the maximum gas price used on local nodes.
func (n Network) DevGasPriceCeiling() *big.Int {
	return asset.GweiToWei(20)
}

// GasPricePremium returns the production price multiplier as numerator/denominator.
func (n Network) GasPricePremium() (num, den int64) {
	return 110, 100
}

// FallbackGasPrice is used when the live price cannot be read.
func (n Network) FallbackGasPrice() *big.Int {
	if n.IsLocalDev() {
		return asset.GweiToWei(20)
	}
	return asset.GweiToWei(30)
}

// PollInterval is the wait between receipt lookups.
func (n Network) PollInterval() time.Duration {
	if n.IsLocalDev() {
		return time.Second
	}
	return 5 * time.Second
}

// ConfirmationTimeout bounds the total time spent waiting for a receipt.
func (n Network) ConfirmationTimeout() time.Duration {
	if n.IsLocalDev() {
		return 60 * time.Second
	}
	return 300 * time.Second
}

// NativeCoin returns the coin balances are denominated in.
func (n Network) NativeCoin() *asset.Asset {
	return asset.NativeCoin(n.chainID)
}
