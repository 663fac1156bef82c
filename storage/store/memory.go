package store

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

// MemoryStore is the in-process journal used for local runs and tests.
type MemoryStore struct {
	logger *log.Logger

	mu       sync.Mutex
	attempts map[string]*Attempt
}

// NewMemoryStore creates an empty in-process journal.
func NewMemoryStore(logger *log.Logger) *MemoryStore {
	return &MemoryStore{
		logger:   logger,
		attempts: make(map[string]*Attempt),
	}
}

func (s *MemoryStore) InsertAttempt(ctx context.Context, a *Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *a
	stored.UpdatedAt = stored.CreatedAt
	s.attempts[a.ID] = &stored
	return nil
}

func (s *MemoryStore) update(id string, fn func(a *Attempt)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return ErrAttemptNotFound
	}
	fn(a)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) MarkAuthorized(ctx context.Context, id string, authorizationID uint64, authorizationTx string) error {
	return s.update(id, func(a *Attempt) {
		a.Status = StatusAuthorized
		a.AuthorizationID = authorizationID
		a.AuthorizationTx = authorizationTx
	})
}

func (s *MemoryStore) MarkRejected(ctx context.Context, id, reason string) error {
	return s.update(id, func(a *Attempt) {
		a.Status = StatusRejected
		a.LastError = reason
	})
}

func (s *MemoryStore) MarkUnknown(ctx context.Context, id, reason string) error {
	return s.update(id, func(a *Attempt) {
		a.Status = StatusUnknown
		a.LastError = reason
	})
}

func (s *MemoryStore) MarkCompleted(ctx context.Context, id, transferRef string) error {
	return s.update(id, func(a *Attempt) {
		a.Status = StatusCompleted
		a.TransferRef = transferRef
	})
}

func (s *MemoryStore) MarkTransferFailed(ctx context.Context, id, reason string) error {
	return s.update(id, func(a *Attempt) {
		a.Status = StatusTransferFailed
		a.LastError = reason
	})
}

func (s *MemoryStore) GetAttempt(ctx context.Context, id string) (*Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	out := *a
	return &out, nil
}

func (s *MemoryStore) ListUnreconciled(ctx context.Context) ([]*Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var attempts []*Attempt
	for _, a := range s.attempts {
		if a.Status == StatusTransferFailed || a.Status == StatusUnknown {
			out := *a
			attempts = append(attempts, &out)
		}
	}
	sort.Slice(attempts, func(i, j int) bool {
		return attempts[i].CreatedAt.Before(attempts[j].CreatedAt)
	})
	return attempts, nil
}

func (s *MemoryStore) Close() {}

var _ Store = (*MemoryStore)(nil)
