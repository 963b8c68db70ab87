package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/rewards-distributor/internal/apperror"
)

// CallRequest describes a read-only call or a gas estimation.
type CallRequest struct {
	From     common.Address
	To       common.Address
	Data     []byte
	Gas      uint64   // 0 means unset
	GasPrice *big.Int // nil means unset
}

// TransactionRequest is a fully specified legacy transaction ready to be signed.
// Value is always zero.
type TransactionRequest struct {
	to       common.Address
	data     []byte
	gasLimit uint64
	gasPrice *big.Int
	nonce    uint64
	chainID  uint64
}

// NewTransactionRequest validates and builds a TransactionRequest.
func NewTransactionRequest(to common.Address, data []byte, gasLimit uint64, gasPrice *big.Int, nonce, chainID uint64) (*TransactionRequest, error) {
	if gasLimit == 0 {
		return nil, apperror.New(apperror.CodeInvalidTransaction,
			apperror.WithContext("gas limit must be positive"))
	}
	if gasPrice == nil || gasPrice.Sign() <= 0 {
		return nil, apperror.New(apperror.CodeInvalidTransaction,
			apperror.WithContext("gas price must be positive"))
	}
	if chainID == 0 {
		return nil, apperror.New(apperror.CodeInvalidTransaction,
			apperror.WithContext("chain id must be positive"))
	}

	return &TransactionRequest{
		to:       to,
		data:     append([]byte(nil), data...),
		gasLimit: gasLimit,
		gasPrice: new(big.Int).Set(gasPrice),
		nonce:    nonce,
		chainID:  chainID,
	}, nil
}

func (r *TransactionRequest) To() common.Address { return r.to }
func (r *TransactionRequest) Data() []byte       { return append([]byte(nil), r.data...) }
func (r *TransactionRequest) GasLimit() uint64   { return r.gasLimit }
func (r *TransactionRequest) GasPrice() *big.Int { return new(big.Int).Set(r.gasPrice) }
func (r *TransactionRequest) Nonce() uint64      { return r.nonce }
func (r *TransactionRequest) ChainID() uint64    { return r.chainID }

// Value is always zero.
func (r *TransactionRequest) Value() *big.Int { return big.NewInt(0) }
