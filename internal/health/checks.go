package health

import (
	"context"
	"fmt"
)

// BlockNumberReader is the part of the chain client the rpc check needs.
type BlockNumberReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// RPCCheck reports whether the node answers eth_blockNumber.
func RPCCheck(c BlockNumberReader) CheckFunc {
	return func(ctx context.Context) (bool, string) {
		n, err := c.BlockNumber(ctx)
		if err != nil {
			return false, err.Error()
		}
		return true, fmt.Sprintf("block %d", n)
	}
}
