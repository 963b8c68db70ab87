// Package domain contains the core domain types for the rewards context.
package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ContractStatus is a best-effort snapshot of the rewards contract. A nil
// field means the read failed or the contract does not expose it.
type ContractStatus struct {
	Active           *bool
	Paused           *bool
	CanDistribute    *bool
	Owner            *common.Address
	LastDistribution *big.Int // unix seconds
	RewardsPool      *big.Int
	TotalRewards     *big.Int
	RewardsPerDay    *big.Int
}

func (s ContractStatus) IsActive() bool { return s.Active != nil && *s.Active }
func (s ContractStatus) IsPaused() bool { return s.Paused != nil && *s.Paused }
func (s ContractStatus) CanDistributeNow() bool { return s.CanDistribute != nil && *s.CanDistribute }

// OwnerAddress returns the owner or the zero address when unknown.
func (s ContractStatus) OwnerAddress() common.Address {
	if s.Owner == nil {
		return common.Address{}
	}
	return *s.Owner
}

// Pool returns the rewards pool or zero when unknown.
func (s ContractStatus) Pool() *big.Int { return orZero(s.RewardsPool) }

// Total returns total rewards distributed or zero when unknown.
func (s ContractStatus) Total() *big.Int { return orZero(s.TotalRewards) }

// PerDay returns the daily rewards amount or zero when unknown.
func (s ContractStatus) PerDay() *big.Int { return orZero(s.RewardsPerDay) }

// LastDistributionTime returns the last distribution time and whether it is
// known. A zero timestamp means the contract has never distributed.
func (s ContractStatus) LastDistributionTime() (time.Time, bool) {
	if s.LastDistribution == nil || !s.LastDistribution.IsInt64() {
		return time.Time{}, false
	}
	return time.Unix(s.LastDistribution.Int64(), 0), true
}

// Known reports whether at least one field was read.
func (s ContractStatus) Known() bool {
	return s.Active != nil || s.Paused != nil || s.CanDistribute != nil || s.Owner != nil ||
		s.LastDistribution != nil || s.RewardsPool != nil || s.TotalRewards != nil || s.RewardsPerDay != nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
