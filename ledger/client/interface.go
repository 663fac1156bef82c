package ledger

import (
	"context"
	"math/big"

	"chaintrack/internal/models"
	"chaintrack/ledger/types"
)

// Client is the typed call/read interface to the external ledger contract.
// Implementations own no state and perform no retries: a failed read or call
// is reported as a *types.GatewayError and retry policy belongs to the
// synchronization engine and the orchestrator.
type Client interface {
	// GetAllParties reads every registered party.
	GetAllParties(ctx context.Context) ([]models.Party, error)

	// GetParty reads the party registered under the given account address.
	GetParty(ctx context.Context, address string) (models.Party, error)

	// GetAllProducts reads the products visible to the given account.
	GetAllProducts(ctx context.Context, address string) ([]models.Product, error)

	// GetProduct reads a single product by its ledger-assigned id.
	GetProduct(ctx context.Context, productID uint64) (models.Product, error)

	// GetProductHistory reads the coarse tracking events for a product.
	GetProductHistory(ctx context.Context, productID uint64) ([]models.HistoryEvent, error)

	// GetTransactionHistory reads a product's accepted transactions,
	// append-ordered by ledger timestamp.
	GetTransactionHistory(ctx context.Context, productID uint64) ([]models.Transaction, error)

	// IsNewParty reports whether the address has never been registered.
	IsNewParty(ctx context.Context, address string) (bool, error)

	// CreateParty registers a party at a fixed stage.
	CreateParty(ctx context.Context, name, location string, stage models.Stage, address string) (types.Receipt, error)

	// CreateProduct creates a product held by its creator.
	CreateProduct(ctx context.Context, creator, name string, quantity uint64) (types.Receipt, error)

	// CreateTransaction submits a transaction candidate for authorization.
	// The ledger re-runs the stage-ordering check against its own state and
	// answers with a status; a rejected candidate is never durably recorded.
	CreateTransaction(ctx context.Context, sender, receiver string, productID uint64, priceWei *big.Int, memo string) (types.CreateTransactionResult, error)

	// Close releases the underlying connection.
	Close() error
}
