package models

import (
	"math/big"
	"time"
)

// Party is a registered participant, keyed by its ledger account address.
// The stage is fixed at registration time.
type Party struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Stage    Stage  `json:"stage"`
}

// Product is a tracked item. CurrentStage only ever advances, one step at a
// time, through an accepted transaction; Creator never changes.
type Product struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Quantity      uint64 `json:"quantity"`
	CurrentStage  Stage  `json:"current_stage"`
	CurrentHolder string `json:"current_holder"`
	Creator       string `json:"creator"`
}

// Transaction is a ledger-recorded custody/value exchange. Price is in the
// ledger's base unit (wei). Immutable once read back from the ledger.
type Transaction struct {
	ID        uint64    `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	ProductID uint64    `json:"product_id"`
	Price     *big.Int  `json:"price"`
	Memo      string    `json:"memo,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryEvent is a coarse, human-readable tracking entry for a product.
type HistoryEvent struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}
