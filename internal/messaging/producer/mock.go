package producer

import (
	"context"
	"log"
	"sync"

	"chaintrack/internal/models"
)

// MockProducer records published events in memory, used for local runs and
// tests.
type MockProducer struct {
	logger *log.Logger

	mu     sync.Mutex
	events []models.OutcomeEvent

	// PublishErr, when set, is returned by every Publish.
	PublishErr error
}

// NewMockProducer creates an empty MockProducer.
func NewMockProducer(logger *log.Logger) *MockProducer {
	return &MockProducer{logger: logger}
}

// Publish records the event.
func (m *MockProducer) Publish(ctx context.Context, event *models.OutcomeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.events = append(m.events, *event)
	m.logger.Printf("[MockProducer] Published outcome: attempt=%s state=%s", event.AttemptID, event.State)
	return nil
}

// Events returns a copy of all recorded events.
func (m *MockProducer) Events() []models.OutcomeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.OutcomeEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Close is a no-op.
func (m *MockProducer) Close() error { return nil }

var _ Producer = (*MockProducer)(nil)
