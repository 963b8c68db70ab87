// Package app contains port definitions for the chain context.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/rewards-distributor/business/chain/domain"
)

// ChainClient is the leaf adapter over an EVM JSON-RPC endpoint and a single signer.
type ChainClient interface {
	// Address returns the signer address.
	Address() common.Address

	ChainID(ctx context.Context) (uint64, error)
	BlockNumber(ctx context.Context) (uint64, error)
	Balance(ctx context.Context, addr common.Address) (*big.Int, error)

	// PendingNonce returns the signer's transaction count including pending transactions.
	PendingNonce(ctx context.Context) (uint64, error)

	GasPrice(ctx context.Context) (*big.Int, error)
	Code(ctx context.Context, addr common.Address) ([]byte, error)

	// Call executes a read-only eth_call against the latest block.
	Call(ctx context.Context, req domain.CallRequest) ([]byte, error)

	EstimateGas(ctx context.Context, req domain.CallRequest) (uint64, error)

	// Send signs and broadcasts req. It does not wait for inclusion.
	Send(ctx context.Context, req *domain.TransactionRequest) (common.Hash, error)

	// Receipt returns (nil, nil) while the transaction is not yet mined.
	Receipt(ctx context.Context, hash common.Hash) (*domain.Receipt, error)
}
