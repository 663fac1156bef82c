package types

import (
	"fmt"
	"math/big"
)

// Authorization status values returned by the contract's createTransaction
// method. Anything other than StatusAuthorized means the proposed stage
// transition was rejected by the authoritative ledger.
const (
	StatusRejected   uint64 = 0
	StatusAuthorized uint64 = 1
)

// Receipt is the on-chain evidence returned after a successful write.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
}

// CreateTransactionResult carries the contract's answer to a transaction
// candidate. TransactionID and Receipt are only meaningful when Status is
// StatusAuthorized; a rejected candidate leaves no trace on the ledger.
type CreateTransactionResult struct {
	Status        uint64
	TransactionID uint64
	Receipt       Receipt
}

// GatewayError wraps any transport or ABI failure on a ledger read or call.
// The outcome of the underlying operation is unknown to the caller; retry
// policy belongs to the layers above, never to the gateway itself.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("ledger gateway: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// NewGatewayError wraps err with the failing gateway operation name.
func NewGatewayError(op string, err error) *GatewayError {
	return &GatewayError{Op: op, Err: err}
}

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// EtherToWei converts a display-unit decimal amount ("0.01") to the ledger's
// base unit. Amounts must be non-negative and representable in wei.
func EtherToWei(amount string) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(amount)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	if r.Sign() < 0 {
		return nil, fmt.Errorf("amount %q is negative", amount)
	}
	r.Mul(r, new(big.Rat).SetInt(weiPerEther))
	if !r.IsInt() {
		return nil, fmt.Errorf("amount %q has more than 18 decimal places", amount)
	}
	return new(big.Int).Set(r.Num()), nil
}

// WeiToEther renders a base-unit value as a display-unit decimal string.
func WeiToEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	r := new(big.Rat).SetFrac(wei, weiPerEther)
	return r.FloatString(18)
}
