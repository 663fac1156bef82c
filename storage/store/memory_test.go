package store

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"
)

func newTestStore() *MemoryStore {
	return NewMemoryStore(log.New(io.Discard, "", 0))
}

func insertAttempt(t *testing.T, s *MemoryStore, id string, createdAt time.Time) {
	t.Helper()
	err := s.InsertAttempt(context.Background(), &Attempt{
		ID:        id,
		Sender:    "0x00000000000000000000000000000000000000a1",
		Receiver:  "0x00000000000000000000000000000000000000b2",
		ProductID: 1,
		PriceWei:  "1000000000000000000",
		Status:    StatusAuthorizing,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("InsertAttempt failed: %v", err)
	}
}

func TestAttemptLifecycle(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	insertAttempt(t, s, "attempt-1", time.Now().UTC())

	if err := s.MarkAuthorized(ctx, "attempt-1", 42, "0xabc"); err != nil {
		t.Fatalf("MarkAuthorized failed: %v", err)
	}
	a, err := s.GetAttempt(ctx, "attempt-1")
	if err != nil {
		t.Fatalf("GetAttempt failed: %v", err)
	}
	if a.Status != StatusAuthorized || a.AuthorizationID != 42 || a.AuthorizationTx != "0xabc" {
		t.Errorf("unexpected attempt after MarkAuthorized: %+v", a)
	}

	if err := s.MarkCompleted(ctx, "attempt-1", "0xdef"); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	a, _ = s.GetAttempt(ctx, "attempt-1")
	if a.Status != StatusCompleted || a.TransferRef != "0xdef" {
		t.Errorf("unexpected attempt after MarkCompleted: %+v", a)
	}
}

func TestGetAttemptNotFound(t *testing.T) {
	s := newTestStore()
	if _, err := s.GetAttempt(context.Background(), "missing"); !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("GetAttempt error = %v, want ErrAttemptNotFound", err)
	}
	if err := s.MarkRejected(context.Background(), "missing", "nope"); !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("MarkRejected error = %v, want ErrAttemptNotFound", err)
	}
}

func TestListUnreconciled(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	base := time.Now().UTC()

	insertAttempt(t, s, "completed", base)
	insertAttempt(t, s, "failed-late", base.Add(2*time.Second))
	insertAttempt(t, s, "unknown-early", base.Add(1*time.Second))

	if err := s.MarkCompleted(ctx, "completed", "0x1"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkTransferFailed(ctx, "failed-late", "rpc down"); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkUnknown(ctx, "unknown-early", "timeout"); err != nil {
		t.Fatal(err)
	}

	attempts, err := s.ListUnreconciled(ctx)
	if err != nil {
		t.Fatalf("ListUnreconciled failed: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("ListUnreconciled returned %d attempts, want 2", len(attempts))
	}
	if attempts[0].ID != "unknown-early" || attempts[1].ID != "failed-late" {
		t.Errorf("unexpected order: %s, %s", attempts[0].ID, attempts[1].ID)
	}
}

func TestGetAttemptReturnsCopy(t *testing.T) {
	s := newTestStore()
	insertAttempt(t, s, "attempt-1", time.Now().UTC())

	a, _ := s.GetAttempt(context.Background(), "attempt-1")
	a.Status = StatusCompleted

	fresh, _ := s.GetAttempt(context.Background(), "attempt-1")
	if fresh.Status != StatusAuthorizing {
		t.Error("mutating a returned attempt leaked into the store")
	}
}
