package orchestrator

import (
	"fmt"
	"sort"
	"strings"
)

// FieldValidationError reports candidate fields that failed local validation,
// keyed by field name. Nothing was sent to the ledger.
type FieldValidationError struct {
	Fields map[string]string
}

func (e *FieldValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid candidate: " + strings.Join(parts, "; ")
}

// TransferFailure reports a value transfer that failed after the ledger had
// already authorized the transaction. The authorization is durable; only the
// payment needs reconciliation.
type TransferFailure struct {
	AttemptID       string
	AuthorizationID uint64
	Err             error
}

func (e *TransferFailure) Error() string {
	return fmt.Sprintf("transfer failed for authorized transaction %d (attempt %s): %v",
		e.AuthorizationID, e.AttemptID, e.Err)
}

func (e *TransferFailure) Unwrap() error { return e.Err }
