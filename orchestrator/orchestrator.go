// Package orchestrator drives the two-phase submission flow: authorization on
// the ledger followed by the value transfer. Every attempt is journaled
// before the first external call so a crash between the phases stays
// reconcilable.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"time"

	"chaintrack/internal/messaging/producer"
	"chaintrack/internal/models"
	ledger "chaintrack/ledger/client"
	"chaintrack/ledger/types"
	"chaintrack/storage/cache"
	"chaintrack/storage/store"
	"chaintrack/validator"
	"chaintrack/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// State is the lifecycle position of one submission attempt.
type State string

const (
	StateDraft          State = "DRAFT"
	StateAuthorizing    State = "AUTHORIZING"
	StateAuthorized     State = "AUTHORIZED"
	StateRejected       State = "REJECTED"
	StateUnknown        State = "UNKNOWN"
	StateTransferring   State = "TRANSFERRING"
	StateCompleted      State = "COMPLETED"
	StateTransferFailed State = "TRANSFER_FAILED"
)

// Candidate is a proposed transaction as received from the presentation
// boundary. ProductID and Price arrive as strings and are validated here.
type Candidate struct {
	Sender    string
	Receiver  string
	ProductID string
	Price     string // display unit, e.g. "0.01"
	Memo      string
}

// Outcome is the terminal result of one Submit call.
type Outcome struct {
	AttemptID       string
	State           State
	AuthorizationID uint64
	AuthorizationTx string
	TransferRef     string
	Err             error
}

// ErrPartyExists is returned when registering an address that already holds a
// party record.
var ErrPartyExists = errors.New("party already registered for this address")

// Orchestrator coordinates the ledger client, the wallet, the attempt
// journal, and the outcome producer for all write operations.
type Orchestrator struct {
	client   ledger.Client
	wallet   wallet.Wallet
	cache    *cache.Cache
	journal  store.Store
	producer producer.Producer
	logger   *log.Logger
}

// New creates an Orchestrator.
func New(client ledger.Client, w wallet.Wallet, c *cache.Cache, journal store.Store, p producer.Producer, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		client:   client,
		wallet:   w,
		cache:    c,
		journal:  journal,
		producer: p,
		logger:   logger,
	}
}

// Submit runs a candidate through the full two-phase flow and returns its
// terminal outcome. The returned Outcome always carries the attempt id once
// the candidate passed local validation; Outcome.Err describes non-completed
// terminal states.
func (o *Orchestrator) Submit(ctx context.Context, c Candidate) (Outcome, error) {
	productID, priceWei, err := o.validate(c)
	if err != nil {
		return Outcome{State: StateDraft, Err: err}, err
	}

	// Local pre-check against the cached snapshot. A miss on any entity is
	// not an error, the ledger re-runs the same rule authoritatively.
	if err := o.precheck(productID, c.Sender, c.Receiver); err != nil {
		o.logger.Printf("Candidate rejected locally (product %d, %s -> %s): %v",
			productID, c.Sender, c.Receiver, err)
		return Outcome{State: StateRejected, Err: err}, err
	}

	attempt := &store.Attempt{
		ID:        uuid.New().String(),
		Sender:    c.Sender,
		Receiver:  c.Receiver,
		ProductID: productID,
		PriceWei:  priceWei.String(),
		Memo:      c.Memo,
		Status:    store.StatusAuthorizing,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.journal.InsertAttempt(ctx, attempt); err != nil {
		return Outcome{State: StateDraft, Err: err}, fmt.Errorf("failed to journal attempt: %w", err)
	}

	result, err := o.client.CreateTransaction(ctx, c.Sender, c.Receiver, productID, priceWei, c.Memo)
	if err != nil {
		// Transport or ABI failure: the ledger may or may not have recorded
		// the transaction. Never retried automatically.
		reason := fmt.Sprintf("ledger outcome unknown: %v", err)
		if markErr := o.journal.MarkUnknown(ctx, attempt.ID, reason); markErr != nil {
			o.logger.Printf("CRITICAL: MarkUnknown failed for attempt %s: %v", attempt.ID, markErr)
		}
		outcomeErr := fmt.Errorf("ledger outcome unknown, check the ledger before retrying: %w", err)
		out := Outcome{AttemptID: attempt.ID, State: StateUnknown, Err: outcomeErr}
		o.publish(ctx, attempt, out)
		return out, outcomeErr
	}

	if result.Status != types.StatusAuthorized {
		violation := &validator.OrderingViolation{
			ProductID: productID,
			Reason:    "rejected by the authoritative ledger",
		}
		if markErr := o.journal.MarkRejected(ctx, attempt.ID, violation.Error()); markErr != nil {
			o.logger.Printf("CRITICAL: MarkRejected failed for attempt %s: %v", attempt.ID, markErr)
		}
		out := Outcome{AttemptID: attempt.ID, State: StateRejected, Err: violation}
		o.publish(ctx, attempt, out)
		return out, violation
	}

	if err := o.journal.MarkAuthorized(ctx, attempt.ID, result.TransactionID, result.Receipt.TxHash); err != nil {
		o.logger.Printf("CRITICAL: MarkAuthorized failed for attempt %s (authorization %d): %v",
			attempt.ID, result.TransactionID, err)
	}
	o.logger.Printf("Transaction %d authorized (attempt %s, tx %s), transferring %s to %s",
		result.TransactionID, attempt.ID, result.Receipt.TxHash, c.Price, c.Receiver)

	receipt, err := o.wallet.Transfer(ctx, c.Receiver, c.Price)
	if err != nil {
		failure := &TransferFailure{AttemptID: attempt.ID, AuthorizationID: result.TransactionID, Err: err}
		if markErr := o.journal.MarkTransferFailed(ctx, attempt.ID, err.Error()); markErr != nil {
			o.logger.Printf("CRITICAL: MarkTransferFailed failed for attempt %s: %v", attempt.ID, markErr)
		}
		out := Outcome{
			AttemptID:       attempt.ID,
			State:           StateTransferFailed,
			AuthorizationID: result.TransactionID,
			AuthorizationTx: result.Receipt.TxHash,
			Err:             failure,
		}
		o.publish(ctx, attempt, out)
		return out, failure
	}

	if err := o.journal.MarkCompleted(ctx, attempt.ID, receipt.TxHash); err != nil {
		o.logger.Printf("CRITICAL: MarkCompleted failed for attempt %s: %v", attempt.ID, err)
	}
	out := Outcome{
		AttemptID:       attempt.ID,
		State:           StateCompleted,
		AuthorizationID: result.TransactionID,
		AuthorizationTx: result.Receipt.TxHash,
		TransferRef:     receipt.TxHash,
	}
	o.publish(ctx, attempt, out)
	return out, nil
}

// RegisterParty registers a new party on the ledger after guarding against a
// duplicate registration for the same address.
func (o *Orchestrator) RegisterParty(ctx context.Context, name, location string, stage models.Stage, address string) (types.Receipt, error) {
	fields := make(map[string]string)
	if name == "" {
		fields["name"] = "must not be empty"
	}
	if !common.IsHexAddress(address) {
		fields["address"] = "not a valid account address"
	}
	if !stage.Valid() {
		fields["role"] = "unknown supply chain role"
	}
	if len(fields) > 0 {
		return types.Receipt{}, &FieldValidationError{Fields: fields}
	}

	isNew, err := o.client.IsNewParty(ctx, address)
	if err != nil {
		return types.Receipt{}, fmt.Errorf("failed to check existing registration: %w", err)
	}
	if !isNew {
		return types.Receipt{}, ErrPartyExists
	}
	return o.client.CreateParty(ctx, name, location, stage, address)
}

// CreateProduct creates a product held by its creator.
func (o *Orchestrator) CreateProduct(ctx context.Context, creator, name string, quantity uint64) (types.Receipt, error) {
	fields := make(map[string]string)
	if !common.IsHexAddress(creator) {
		fields["creator"] = "not a valid account address"
	}
	if name == "" {
		fields["name"] = "must not be empty"
	}
	if quantity == 0 {
		fields["quantity"] = "must be greater than zero"
	}
	if len(fields) > 0 {
		return types.Receipt{}, &FieldValidationError{Fields: fields}
	}
	return o.client.CreateProduct(ctx, creator, name, quantity)
}

// ProductHistory reads a product's coarse tracking events from the ledger.
func (o *Orchestrator) ProductHistory(ctx context.Context, productID uint64) ([]models.HistoryEvent, error) {
	return o.client.GetProductHistory(ctx, productID)
}

// Attempt returns one journaled attempt by id.
func (o *Orchestrator) Attempt(ctx context.Context, id string) (*store.Attempt, error) {
	return o.journal.GetAttempt(ctx, id)
}

// Unreconciled returns attempts needing operator attention.
func (o *Orchestrator) Unreconciled(ctx context.Context) ([]*store.Attempt, error) {
	return o.journal.ListUnreconciled(ctx)
}

func (o *Orchestrator) validate(c Candidate) (uint64, *big.Int, error) {
	fields := make(map[string]string)
	if !common.IsHexAddress(c.Sender) {
		fields["sender"] = "not a valid account address"
	}
	if !common.IsHexAddress(c.Receiver) {
		fields["receiver"] = "not a valid account address"
	}

	productID, err := strconv.ParseUint(c.ProductID, 10, 64)
	if err != nil {
		fields["productID"] = "not a valid product id"
	}

	priceWei, err := types.EtherToWei(c.Price)
	if err != nil {
		fields["price"] = err.Error()
	} else if priceWei.Sign() == 0 {
		fields["price"] = "must be greater than zero"
	}

	if len(fields) > 0 {
		return 0, nil, &FieldValidationError{Fields: fields}
	}
	return productID, priceWei, nil
}

// precheck runs the stage-ordering rule against the cached snapshot.
func (o *Orchestrator) precheck(productID uint64, sender, receiver string) error {
	product, ok := o.cache.Product(productID)
	if !ok {
		return nil
	}
	senderParty, ok := o.cache.Party(sender)
	if !ok {
		return nil
	}
	receiverParty, ok := o.cache.Party(receiver)
	if !ok {
		return nil
	}
	return validator.Check(product, senderParty, receiverParty)
}

// publish emits the terminal outcome event. Best-effort: a failed publish is
// logged and never changes the outcome.
func (o *Orchestrator) publish(ctx context.Context, attempt *store.Attempt, out Outcome) {
	event := &models.OutcomeEvent{
		AttemptID:       out.AttemptID,
		State:           string(out.State),
		Sender:          attempt.Sender,
		Receiver:        attempt.Receiver,
		ProductID:       attempt.ProductID,
		AuthorizationID: out.AuthorizationID,
		TransferRef:     out.TransferRef,
		Timestamp:       time.Now().UTC().Format(time.RFC3339Nano),
	}
	if out.Err != nil {
		event.Error = out.Err.Error()
	}
	if err := o.producer.Publish(ctx, event); err != nil {
		o.logger.Printf("Failed to publish outcome event (attempt %s): %v", out.AttemptID, err)
	}
}
