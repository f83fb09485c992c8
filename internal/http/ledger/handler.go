package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/leadbroker/internal/auth"
	"github.com/MrJamesThe3rd/leadbroker/internal/ledger"
	"github.com/MrJamesThe3rd/leadbroker/internal/terms"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", h.record)
		r.Get("/{id}", h.get)
		r.Post("/{id}/complete", h.complete)
		r.Post("/{id}/fail", h.fail)
		r.Post("/{id}/reverse", h.reverse)
	})

	r.Route("/accounts/{id}", func(r chi.Router) {
		r.Get("/transactions", h.history)
		r.Get("/balance", h.balance)
	})
}

type recordRequest struct {
	Type         ledger.Type   `json:"type"`
	Status       ledger.Status `json:"status,omitempty"`
	Amount       int64         `json:"amount"`
	FeeAmount    int64         `json:"fee_amount"`
	FromAccount  *uuid.UUID    `json:"from_account,omitempty"`
	ToAccount    *uuid.UUID    `json:"to_account,omitempty"`
	LeadID       *uuid.UUID    `json:"lead_id,omitempty"`
	ConnectionID *uuid.UUID    `json:"connection_id,omitempty"`
	Description  string        `json:"description,omitempty"`
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.IdentityFromContext(r.Context()); !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Record(r.Context(), ledger.RecordParams{
		Type:         req.Type,
		Status:       req.Status,
		Amount:       req.Amount,
		FeeAmount:    req.FeeAmount,
		FromAccount:  req.FromAccount,
		ToAccount:    req.ToAccount,
		LeadID:       req.LeadID,
		ConnectionID: req.ConnectionID,
		Description:  req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, toResponse(tx))
}

// history lists an account's transactions. Accounts never see each other's
// ledgers, so a foreign id reads as not found.
func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	if id != actor.AccountID {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	txs, err := h.svc.History(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if !party(tx, actor.AccountID) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	respond(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	_, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Complete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toResponse(tx))
}

type failRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request) {
	_, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var req failRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Fail(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toResponse(tx))
}

type reverseRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) reverse(w http.ResponseWriter, r *http.Request) {
	_, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var req reverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reversal, err := h.svc.Reverse(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, toResponse(reversal))
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	if id != actor.AccountID {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	balance, err := h.svc.Balance(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toBalanceResponse(balance))
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (auth.Identity, uuid.UUID, bool) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Identity{}, uuid.Nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return auth.Identity{}, uuid.Nil, false
	}

	return actor, id, true
}

func party(tx *ledger.Transaction, accountID uuid.UUID) bool {
	return (tx.FromAccount != nil && *tx.FromAccount == accountID) ||
		(tx.ToAccount != nil && *tx.ToAccount == accountID)
}

func writeError(w http.ResponseWriter, err error) {
	var vErr *terms.ValidationError

	switch {
	case errors.As(err, &vErr):
		respond(w, http.StatusUnprocessableEntity, map[string]string{
			"error": vErr.Message,
			"field": vErr.Field,
		})
	case errors.Is(err, ledger.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ledger.ErrStateConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("ledger handler error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
