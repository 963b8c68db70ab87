package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Receipt status values.
const (
	ReceiptStatusFailed  uint64 = 0
	ReceiptStatusSuccess uint64 = 1
)

// Receipt is the mined outcome of a transaction.
type Receipt struct {
	TxHash            common.Hash
	Status            uint64
	BlockNumber       uint64
	GasUsed           uint64
	EffectiveGasPrice *big.Int
}

// Succeeded is true only for status 1.
func (r *Receipt) Succeeded() bool {
	return r != nil && r.Status == ReceiptStatusSuccess
}

// StatusLabel returns "success" or "failed" for logs and metrics.
func (r *Receipt) StatusLabel() string {
	if r.Succeeded() {
		return "success"
	}
	return "failed"
}
