package connection

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/leadbroker/internal/auth"
	"github.com/MrJamesThe3rd/leadbroker/internal/connection"
	"github.com/MrJamesThe3rd/leadbroker/internal/terms"
)

type Handler struct {
	svc *connection.Service
}

func NewHandler(svc *connection.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/requests", func(r chi.Router) {
		r.Post("/", h.createRequest)
		r.Get("/", h.listRequests)
		r.Get("/{id}", h.getRequest)
		r.Patch("/{id}/terms", h.setTerms)
		r.Post("/{id}/accept", h.accept)
		r.Post("/{id}/decline", h.decline)
		r.Post("/{id}/reject", h.reject)
	})

	r.Route("/connections", func(r chi.Router) {
		r.Get("/", h.listConnections)
		r.Get("/{id}", h.getConnection)
		r.Patch("/{id}/terms", h.updateTerms)
		r.Post("/{id}/terminate", h.terminate)
		r.Post("/{id}/leads", h.submitLead)
	})
}

type createRequestRequest struct {
	CounterpartyID uuid.UUID            `json:"counterparty_id"`
	Message        string               `json:"message"`
	ProposedTerms  *terms.ContractTerms `json:"proposed_terms,omitempty"`
}

func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.svc.RequestConnection(r.Context(), actor, connection.RequestParams{
		CounterpartyID: req.CounterpartyID,
		Message:        req.Message,
		ProposedTerms:  req.ProposedTerms,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, toRequestResponse(created))
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	reqs, err := h.svc.ListRequests(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toRequestResponseList(reqs))
}

func (h *Handler) getRequest(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	req, err := h.svc.GetRequest(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toRequestResponse(req))
}

func (h *Handler) setTerms(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var t terms.ContractTerms
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.svc.SetTerms(r.Context(), actor, id, t)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toRequestResponse(updated))
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	conn, err := h.svc.Accept(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, toConnectionResponse(conn))
}

func (h *Handler) decline(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	req, err := h.svc.Decline(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toRequestResponse(req))
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	req, err := h.svc.Reject(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toRequestResponse(req))
}

func (h *Handler) listConnections(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conns, err := h.svc.ListConnections(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toConnectionResponseList(conns))
}

func (h *Handler) getConnection(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	conn, err := h.svc.GetConnection(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toConnectionResponse(conn))
}

func (h *Handler) updateTerms(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var t terms.ContractTerms
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.svc.UpdateTerms(r.Context(), actor, id, t)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toConnectionResponse(updated))
}

type terminateRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) terminate(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var req terminateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.svc.Terminate(r.Context(), actor, id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, toConnectionResponse(conn))
}

func (h *Handler) submitLead(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	result, err := h.svc.SubmitLead(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusCreated, toSubmissionResponse(result))
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

type capExceededResponse struct {
	Error            string `json:"error"`
	WeeklyRemaining  *int   `json:"weekly_remaining,omitempty"`
	MonthlyRemaining *int   `json:"monthly_remaining,omitempty"`
	ResetHint        string `json:"reset_hint,omitempty"`
}

type validationErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

func writeError(w http.ResponseWriter, err error) {
	var (
		vErr   *terms.ValidationError
		capErr *connection.CapExceededError
	)

	switch {
	case errors.As(err, &capErr):
		respond(w, http.StatusTooManyRequests, capExceededResponse{
			Error:            "lead cap exceeded",
			WeeklyRemaining:  capErr.WeeklyRemaining,
			MonthlyRemaining: capErr.MonthlyRemaining,
			ResetHint:        capErr.ResetHint,
		})
	case errors.As(err, &vErr):
		respond(w, http.StatusUnprocessableEntity, validationErrorResponse{
			Error: vErr.Message,
			Field: vErr.Field,
		})
	case errors.Is(err, connection.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, connection.ErrStateConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("connection handler error", "error", err)
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
