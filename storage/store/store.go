// Package store persists submission attempts so that authorization ids
// survive the process. A transfer that fails after authorization, or a
// gateway failure with unknown outcome, stays reconcilable from here.
package store

import (
	"context"
	"errors"
	"time"
)

// AttemptStatus is the journal-side state of one submission attempt.
type AttemptStatus string

const (
	StatusAuthorizing    AttemptStatus = "AUTHORIZING"
	StatusRejected       AttemptStatus = "REJECTED"
	StatusUnknown        AttemptStatus = "UNKNOWN"
	StatusAuthorized     AttemptStatus = "AUTHORIZED"
	StatusCompleted      AttemptStatus = "COMPLETED"
	StatusTransferFailed AttemptStatus = "TRANSFER_FAILED"
)

// ErrAttemptNotFound is returned when no attempt exists for the given id.
var ErrAttemptNotFound = errors.New("attempt not found")

// Attempt is the journal record of one submission.
type Attempt struct {
	ID              string
	Sender          string
	Receiver        string
	ProductID       uint64
	PriceWei        string
	Memo            string
	Status          AttemptStatus
	AuthorizationID uint64
	AuthorizationTx string
	TransferRef     string
	LastError       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Store is the journal interface. Implementations must tolerate being called
// from concurrent submissions.
type Store interface {
	// InsertAttempt records a new attempt entering the authorizing phase.
	InsertAttempt(ctx context.Context, a *Attempt) error

	// MarkAuthorized records the ledger's durable authorization.
	MarkAuthorized(ctx context.Context, id string, authorizationID uint64, authorizationTx string) error

	// MarkRejected records an explicit ledger rejection.
	MarkRejected(ctx context.Context, id, reason string) error

	// MarkUnknown records a gateway failure with unknown outcome.
	MarkUnknown(ctx context.Context, id, reason string) error

	// MarkCompleted records a successful value transfer.
	MarkCompleted(ctx context.Context, id, transferRef string) error

	// MarkTransferFailed records an authorization whose value transfer did
	// not happen; such attempts need manual reconciliation.
	MarkTransferFailed(ctx context.Context, id, reason string) error

	// GetAttempt returns one attempt by id.
	GetAttempt(ctx context.Context, id string) (*Attempt, error)

	// ListUnreconciled returns attempts whose outcome needs operator
	// attention (transfer failed or unknown).
	ListUnreconciled(ctx context.Context) ([]*Attempt, error)

	// Close releases the underlying resources.
	Close()
}
