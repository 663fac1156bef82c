package wallet

import (
	"context"
	"fmt"
	"log"
	"sync"

	"chaintrack/ledger/types"
)

// TransferRecord is one transfer issued through the mock wallet.
type TransferRecord struct {
	To     string
	Amount string
}

// MockWallet records transfers instead of moving value. TransferErr, when
// set, makes every transfer fail, which is how tests exercise the
// authorized-but-not-transferred path.
type MockWallet struct {
	address string
	logger  *log.Logger

	mu        sync.Mutex
	transfers []TransferRecord
	seq       uint64

	TransferErr error
}

// NewMockWallet creates a mock wallet for the given identity.
func NewMockWallet(address string, logger *log.Logger) *MockWallet {
	return &MockWallet{address: address, logger: logger}
}

// Address returns the connected account's address.
func (w *MockWallet) Address() string { return w.address }

func (w *MockWallet) Transfer(ctx context.Context, toAddress, amount string) (types.Receipt, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.TransferErr != nil {
		return types.Receipt{}, w.TransferErr
	}
	if _, err := types.EtherToWei(amount); err != nil {
		return types.Receipt{}, fmt.Errorf("invalid transfer amount: %w", err)
	}
	w.seq++
	w.transfers = append(w.transfers, TransferRecord{To: toAddress, Amount: amount})
	w.logger.Printf("[MockWallet] Transferred %s to %s", amount, toAddress)
	return types.Receipt{
		TxHash:      fmt.Sprintf("0xtransfer%08x", w.seq),
		BlockNumber: w.seq,
	}, nil
}

// Transfers returns a copy of all recorded transfers.
func (w *MockWallet) Transfers() []TransferRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]TransferRecord, len(w.transfers))
	copy(out, w.transfers)
	return out
}

func (w *MockWallet) Close() error { return nil }

var _ Wallet = (*MockWallet)(nil)
