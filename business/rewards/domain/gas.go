package domain

import (
	"context"
	"math/big"

	chain "github.com/fd1az/rewards-distributor/business/chain/domain"
)

// GasPolicy holds the configured gas settings.
type GasPolicy struct {
	GasLimit uint64   // fallback when estimation fails
	GasPrice *big.Int // fixed price; nil means derive from the live price
}

// HasFixedPrice reports whether a fixed gas price is configured.
func (p GasPolicy) HasFixedPrice() bool {
	return p.GasPrice != nil && p.GasPrice.Sign() > 0
}

// PriceSource describes where a resolved gas price came from.
type PriceSource string

const (
	PriceFixed    PriceSource = "fixed"
	PriceLive     PriceSource = "live"
	PriceFallback PriceSource = "fallback"
)

// BufferGasLimit scales gas by the network buffer with integer arithmetic.
func BufferGasLimit(n chain.Network, gas uint64) uint64 {
	num, den := n.GasBuffer()
	return gas * num / den
}

// LivePriceFunc queries the node's current gas price.
type LivePriceFunc func(ctx context.Context) (*big.Int, error)

// ResolveGasPrice picks the transaction gas price. A fixed price wins and
// live is never called. Otherwise the live price is capped at the dev ceiling
// on local networks or raised by the production premium. A failed query, or a
// nil or non-positive live price, falls back to the network default and the
// query error (if any) is returned alongside for logging.
func ResolveGasPrice(ctx context.Context, n chain.Network, p GasPolicy, live LivePriceFunc) (*big.Int, PriceSource, error) {
	if p.HasFixedPrice() {
		return new(big.Int).Set(p.GasPrice), PriceFixed, nil
	}

	price, err := live(ctx)
	if err != nil || price == nil || price.Sign() <= 0 {
		return n.FallbackGasPrice(), PriceFallback, err
	}

	if n.IsLocalDev() {
		ceiling := n.DevGasPriceCeiling()
		if price.Cmp(ceiling) > 0 {
			return ceiling, PriceLive, nil
		}
		return new(big.Int).Set(price), PriceLive, nil
	}

	num, den := n.GasPricePremium()
	out := new(big.Int).Mul(price, big.NewInt(num))
	out.Div(out, big.NewInt(den))
	return out, PriceLive, nil
}
