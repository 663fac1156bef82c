package producer

import (
	"context"

	"chaintrack/internal/models"
)

// Producer publishes terminal submission outcomes for downstream consumers
// (audit, analytics). Publishing is best-effort from the orchestrator's point
// of view: a failed publish never changes a submission's outcome.
type Producer interface {
	// Publish sends a single outcome event.
	Publish(ctx context.Context, event *models.OutcomeEvent) error

	// Close closes the producer connection.
	Close() error
}
