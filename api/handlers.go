/*
handlers.go - HTTP handlers over a live ledger

PURPOSE:
  Exposes the payments engine over REST. Handles HTTP request/response and
  JSON serialization, delegates every decision to the engine.

ENDPOINTS:
  POST /api/transactions        Submit one transaction
  GET  /api/accounts            All account snapshots, sorted by client id
  GET  /api/accounts/{client}   One account snapshot
  GET  /api/health              Liveness

ERROR HANDLING:
  - 400: body or field that cannot be coerced into a transaction
  - 404: unknown client id
  - 422: a well-formed transaction the rule engine rejected
  - 500: anything else

CONCURRENCY:
  Transaction order within a client is significant, so the handler
  serializes all folds through one mutex: a single logical processor, the
  same model as the CLI run.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/warp/payments-engine/engine"
)

// Handler holds the live ledger behind the HTTP surface.
type Handler struct {
	mu     sync.Mutex
	ledger *engine.Ledger
}

// NewHandler wraps a ledger. Pass engine.NewLedger() for an empty one, or a
// ledger preloaded from a stored transaction stream.
func NewHandler(ledger *engine.Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// SubmitTransaction folds one transaction into the ledger and returns the
// owning account's snapshot.
func (h *Handler) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	tx, err := req.toTransaction()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ledger.Process(tx); err != nil {
		if engine.IsRuleViolation(err) {
			writeError(w, http.StatusUnprocessableEntity, "transaction rejected", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "processing failed", err)
		return
	}

	acct, _ := h.ledger.Account(tx.Client)
	writeJSON(w, http.StatusCreated, toAccountDTO(acct.Snapshot()))
}

// ListAccounts returns every account's snapshot, sorted by client id.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	snaps := h.ledger.Snapshots()
	h.mu.Unlock()

	dtos := make([]AccountDTO, 0, len(snaps))
	for _, s := range snaps {
		dtos = append(dtos, toAccountDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAccount returns one account's snapshot.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	client, err := strconv.ParseUint(chi.URLParam(r, "client"), 10, 16)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client id", err)
		return
	}

	h.mu.Lock()
	acct, ok := h.ledger.Account(engine.ClientID(client))
	var snap engine.Snapshot
	if ok {
		snap = acct.Snapshot()
	}
	h.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "account not found", errors.New("no transactions for client"))
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(snap))
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
