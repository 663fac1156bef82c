package wallet

import (
	"context"

	"chaintrack/ledger/types"
)

// Wallet moves native value from the connected account. The transfer is the
// second, non-atomic phase of a submission: by the time it runs, the ledger
// may already hold a durable authorization record.
type Wallet interface {
	// Transfer sends amount (display unit, e.g. "0.01") to the given
	// address and returns the transfer reference once it is final.
	Transfer(ctx context.Context, toAddress, amount string) (types.Receipt, error)

	// Address returns the connected account's address.
	Address() string

	// Close releases the underlying connection.
	Close() error
}
