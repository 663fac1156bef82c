// Package http is the JSON presentation boundary. Reads are served from the
// local cache; writes go through the orchestrator and report the attempt's
// terminal state.
package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"chaintrack/internal/models"
	"chaintrack/orchestrator"
	"chaintrack/storage/cache"
	"chaintrack/storage/store"
	"chaintrack/syncer"
	"chaintrack/validator"
)

// Handler encapsulates the logic for handling HTTP requests.
type Handler struct {
	orch   *orchestrator.Orchestrator
	cache  *cache.Cache
	engine *syncer.Engine
	logger *log.Logger
}

// NewHandler creates a new Handler.
func NewHandler(o *orchestrator.Orchestrator, c *cache.Cache, e *syncer.Engine, l *log.Logger) *Handler {
	return &Handler{orch: o, cache: c, engine: e, logger: l}
}

// Parties handles GET and POST /v1/parties requests.
func (h *Handler) Parties(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.respondJSON(w, map[string]interface{}{"parties": h.cache.Parties()}, http.StatusOK)

	case http.MethodPost:
		var reqPayload struct {
			Name     string `json:"name"`
			Location string `json:"location"`
			Role     string `json:"role"`
			Address  string `json:"address"`
		}
		if err := json.NewDecoder(r.Body).Decode(&reqPayload); err != nil {
			h.respondError(w, "Bad Request: Invalid JSON format", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		stage, err := models.ParseStage(reqPayload.Role)
		if err != nil {
			h.respondError(w, err.Error(), http.StatusBadRequest)
			return
		}

		receipt, err := h.orch.RegisterParty(r.Context(), reqPayload.Name, reqPayload.Location, stage, reqPayload.Address)
		if err != nil {
			h.logger.Printf("HTTP Handler: Party registration failed: %v", err)
			h.respondError(w, err.Error(), registrationStatusCode(err))
			return
		}

		h.respondJSON(w, map[string]interface{}{
			"tx_hash":      receipt.TxHash,
			"block_number": receipt.BlockNumber,
		}, http.StatusCreated)

	default:
		h.respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// Products handles GET and POST /v1/products requests.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.respondJSON(w, map[string]interface{}{"products": h.cache.Products()}, http.StatusOK)

	case http.MethodPost:
		var reqPayload struct {
			Creator  string `json:"creator,omitempty"`
			Name     string `json:"name"`
			Quantity uint64 `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&reqPayload); err != nil {
			h.respondError(w, "Bad Request: Invalid JSON format", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		creator := reqPayload.Creator
		if creator == "" {
			creator = h.engine.Identity()
		}

		receipt, err := h.orch.CreateProduct(r.Context(), creator, reqPayload.Name, reqPayload.Quantity)
		if err != nil {
			h.logger.Printf("HTTP Handler: Product creation failed: %v", err)
			h.respondError(w, err.Error(), registrationStatusCode(err))
			return
		}

		h.respondJSON(w, map[string]interface{}{
			"tx_hash":      receipt.TxHash,
			"block_number": receipt.BlockNumber,
		}, http.StatusCreated)

	default:
		h.respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// ProductHistory handles GET /v1/history?product_id=N requests. The history
// is read on demand so a caller that just completed a transaction sees it
// reflected; only watched products stay cached.
func (h *Handler) ProductHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	productID, err := strconv.ParseUint(r.URL.Query().Get("product_id"), 10, 64)
	if err != nil {
		h.respondError(w, "product_id must be a valid product id", http.StatusBadRequest)
		return
	}

	respPayload := map[string]interface{}{
		"product_id":   productID,
		"transactions": h.engine.History(r.Context(), productID),
	}
	// Coarse tracking events are read through, not cached.
	if events, err := h.orch.ProductHistory(r.Context(), productID); err != nil {
		h.logger.Printf("HTTP Handler: Failed to read tracking events for product %d: %v", productID, err)
	} else {
		respPayload["events"] = events
	}
	h.respondJSON(w, respPayload, http.StatusOK)
}

// SubmitTransaction handles POST /v1/transactions requests. The response
// status reflects the attempt's terminal state.
func (h *Handler) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.ContentLength > 1*1024*1024 {
		h.respondError(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	var reqPayload struct {
		Sender    string `json:"sender,omitempty"`
		Receiver  string `json:"receiver"`
		ProductID string `json:"product_id"`
		Price     string `json:"price"`
		Memo      string `json:"memo,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqPayload); err != nil {
		h.respondError(w, "Bad Request: Invalid JSON format", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	sender := reqPayload.Sender
	if sender == "" {
		sender = h.engine.Identity()
	}

	outcome, err := h.orch.Submit(r.Context(), orchestrator.Candidate{
		Sender:    sender,
		Receiver:  reqPayload.Receiver,
		ProductID: reqPayload.ProductID,
		Price:     reqPayload.Price,
		Memo:      reqPayload.Memo,
	})

	respPayload := map[string]interface{}{
		"attempt_id": outcome.AttemptID,
		"state":      string(outcome.State),
	}
	if outcome.AuthorizationID != 0 {
		respPayload["authorization_id"] = outcome.AuthorizationID
		respPayload["authorization_tx"] = outcome.AuthorizationTx
	}
	if outcome.TransferRef != "" {
		respPayload["transfer_ref"] = outcome.TransferRef
	}
	if err != nil {
		h.logger.Printf("HTTP Handler: Submission ended in state %s: %v", outcome.State, err)
		respPayload["error"] = err.Error()
		h.respondJSON(w, respPayload, submissionStatusCode(outcome.State, err))
		return
	}

	h.respondJSON(w, respPayload, http.StatusOK)
}

// Attempts handles GET /v1/attempts requests: a single attempt when ?id= is
// given, otherwise the unreconciled list.
func (h *Handler) Attempts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		attempt, err := h.orch.Attempt(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrAttemptNotFound) {
				h.respondError(w, "attempt not found", http.StatusNotFound)
				return
			}
			h.respondError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.respondJSON(w, attempt, http.StatusOK)
		return
	}

	attempts, err := h.orch.Unreconciled(r.Context())
	if err != nil {
		h.respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.respondJSON(w, map[string]interface{}{"attempts": attempts}, http.StatusOK)
}

// HealthCheck handles GET /health requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := map[string]interface{}{
		"status":    "healthy",
		"identity":  h.engine.Identity(),
		"timestamp": time.Now().Format(time.RFC3339Nano),
		"service":   "chaintrack",
	}
	h.respondJSON(w, resp, http.StatusOK)
}

func registrationStatusCode(err error) int {
	var fieldErr *orchestrator.FieldValidationError
	switch {
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest
	case errors.Is(err, orchestrator.ErrPartyExists):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func submissionStatusCode(state orchestrator.State, err error) int {
	var fieldErr *orchestrator.FieldValidationError
	var violation *validator.OrderingViolation
	switch {
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest
	case errors.As(err, &violation):
		return http.StatusConflict
	case state == orchestrator.StateUnknown:
		return http.StatusBadGateway
	case state == orchestrator.StateTransferFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON sends JSON response.
func (h *Handler) respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("HTTP Handler: Failed to encode JSON response: %v", err)
	}
}

// respondError sends error response.
func (h *Handler) respondError(w http.ResponseWriter, message string, statusCode int) {
	errorResp := map[string]interface{}{
		"error":   message,
		"status":  statusCode,
		"message": http.StatusText(statusCode),
	}
	h.respondJSON(w, errorResp, statusCode)
}
