package connection

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/leadbroker/internal/auth"
	"github.com/MrJamesThe3rd/leadbroker/internal/capwindow"
	"github.com/MrJamesThe3rd/leadbroker/internal/ledger"
	"github.com/MrJamesThe3rd/leadbroker/internal/metrics"
	"github.com/MrJamesThe3rd/leadbroker/internal/notify"
	"github.com/MrJamesThe3rd/leadbroker/internal/terms"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=connection
type Repository interface {
	CreateRequest(ctx context.Context, req *Request) error
	GetRequest(ctx context.Context, id uuid.UUID) (*Request, error)

	// FindPendingRequest returns the open request for the pair, or nil when
	// none exists.
	FindPendingRequest(ctx context.Context, providerID, buyerID uuid.UUID) (*Request, error)

	// SetRequestTerms attaches terms and moves the request to
	// pending_provider_accept, guarded on pending_buyer_review.
	SetRequestTerms(ctx context.Context, id uuid.UUID, t terms.ContractTerms, reviewedAt time.Time) (*Request, error)

	// CloseRequest moves the request from one status to a terminal one with
	// a status-guarded update.
	CloseRequest(ctx context.Context, id uuid.UUID, from, to RequestStatus, respondedAt time.Time) (*Request, error)

	// AcceptRequest closes the request and creates the connection in a
	// single storage transaction, so the two can never drift apart.
	AcceptRequest(ctx context.Context, requestID uuid.UUID, conn *Connection, respondedAt time.Time) (*Connection, error)

	GetConnection(ctx context.Context, id uuid.UUID) (*Connection, error)
	UpdateConnectionTerms(ctx context.Context, id uuid.UUID, t terms.ContractTerms) (*Connection, error)
	TerminateConnection(ctx context.Context, id, by uuid.UUID, reason string, at time.Time) (*Connection, error)

	ListRequestsForAccount(ctx context.Context, accountID uuid.UUID) ([]*Request, error)
	ListConnectionsForAccount(ctx context.Context, accountID uuid.UUID) ([]*Connection, error)

	// BeginSubmission locks the connection row for one lead submission so
	// the cap check and counter update are atomic.
	BeginSubmission(ctx context.Context, connectionID uuid.UUID) (SubmissionTx, error)
}

// SubmissionTx is a per-connection write transaction holding the row lock.
type SubmissionTx interface {
	Connection() *Connection
	UpdateStats(ctx context.Context, stats Stats) error
	Commit() error
	Rollback() error
}

// PayoutRecorder is the slice of the ledger the registry depends on.
type PayoutRecorder interface {
	RecordLeadPayout(ctx context.Context, params ledger.LeadPayoutParams) (*ledger.Transaction, error)
}

type Service struct {
	repo     Repository
	payouts  PayoutRecorder
	notifier notify.Notifier
	now      func() time.Time
}

type Option func(*Service)

// WithNow overrides the service clock.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, payouts PayoutRecorder, notifier notify.Notifier, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		payouts:  payouts,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RequestParams describes a new connection request.
type RequestParams struct {
	CounterpartyID uuid.UUID
	Message        string
	ProposedTerms  *terms.ContractTerms
}

// RequestConnection opens a negotiation between the actor and the
// counterparty. A buyer-initiated invitation carries terms and skips straight
// to provider review. Repeated calls while a request is pending return the
// existing request.
func (s *Service) RequestConnection(ctx context.Context, actor auth.Identity, params RequestParams) (*Request, error) {
	req := &Request{
		Initiator: actor.Role,
		Message:   params.Message,
	}

	switch actor.Role {
	case auth.RoleProvider:
		req.ProviderID = actor.AccountID
		req.BuyerID = params.CounterpartyID
		req.Status = RequestPendingBuyerReview
	case auth.RoleBuyer:
		req.ProviderID = params.CounterpartyID
		req.BuyerID = actor.AccountID
		req.Status = RequestPendingProviderAccept

		if params.ProposedTerms == nil {
			return nil, &terms.ValidationError{Field: "proposed_terms", Message: "buyer invitations must include terms"}
		}

		if err := terms.Validate(*params.ProposedTerms); err != nil {
			return nil, err
		}

		req.ProposedTerms = params.ProposedTerms
	default:
		return nil, fmt.Errorf("unknown role %q: %w", actor.Role, ErrStateConflict)
	}

	if req.ProviderID == req.BuyerID {
		return nil, &terms.ValidationError{Field: "counterparty_id", Message: "cannot request a connection with yourself"}
	}

	existing, err := s.repo.FindPendingRequest(ctx, req.ProviderID, req.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("checking pending request: %w", err)
	}

	if existing != nil {
		return existing, nil
	}

	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return req, nil
}

// SetTerms attaches the buyer's terms to a request under review and moves it
// to provider acceptance.
func (s *Service) SetTerms(ctx context.Context, actor auth.Identity, requestID uuid.UUID, t terms.ContractTerms) (*Request, error) {
	if err := terms.Validate(t); err != nil {
		return nil, err
	}

	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("loading request %s: %w", requestID, err)
	}

	if actor.Role != auth.RoleBuyer || actor.AccountID != req.BuyerID {
		return nil, fmt.Errorf("only the request's buyer may set terms: %w", ErrStateConflict)
	}

	updated, err := s.repo.SetRequestTerms(ctx, requestID, t, s.now())
	if err != nil {
		return nil, fmt.Errorf("setting terms on request %s: %w", requestID, err)
	}

	s.dispatch(notify.Event{
		Type:      notify.EventTermsProposed,
		AccountID: req.ProviderID,
		RequestID: &req.ID,
	})

	return updated, nil
}

// Accept consummates the request: the request closes and the connection is
// created active with zeroed stats and current window keys, atomically.
func (s *Service) Accept(ctx context.Context, actor auth.Identity, requestID uuid.UUID) (*Connection, error) {
	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("loading request %s: %w", requestID, err)
	}

	if actor.Role != auth.RoleProvider || actor.AccountID != req.ProviderID {
		return nil, fmt.Errorf("only the request's provider may accept: %w", ErrStateConflict)
	}

	if req.Status != RequestPendingProviderAccept {
		return nil, fmt.Errorf("accepting request in status %s: %w", req.Status, ErrStateConflict)
	}

	if req.ProposedTerms == nil {
		return nil, fmt.Errorf("request %s has no terms attached: %w", requestID, ErrStateConflict)
	}

	now := s.now()

	conn := &Connection{
		ProviderID:  req.ProviderID,
		BuyerID:     req.BuyerID,
		Status:      StatusActive,
		Terms:       *req.ProposedTerms,
		RequestedAt: req.CreatedAt,
		AcceptedAt:  now,
		Stats: Stats{
			WeekStart:  capwindow.WeekStart(now),
			MonthStart: capwindow.MonthStart(now),
		},
	}

	created, err := s.repo.AcceptRequest(ctx, requestID, conn, now)
	if err != nil {
		return nil, fmt.Errorf("accepting request %s: %w", requestID, err)
	}

	s.dispatch(notify.Event{
		Type:         notify.EventConnectionAccepted,
		AccountID:    req.BuyerID,
		ConnectionID: &created.ID,
	})

	return created, nil
}

// Decline lets the provider turn down a buyer's terms. Terminal.
func (s *Service) Decline(ctx context.Context, actor auth.Identity, requestID uuid.UUID) (*Request, error) {
	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("loading request %s: %w", requestID, err)
	}

	if actor.Role != auth.RoleProvider || actor.AccountID != req.ProviderID {
		return nil, fmt.Errorf("only the request's provider may decline: %w", ErrStateConflict)
	}

	updated, err := s.repo.CloseRequest(ctx, requestID, RequestPendingProviderAccept, RequestDeclinedByProvider, s.now())
	if err != nil {
		return nil, fmt.Errorf("declining request %s: %w", requestID, err)
	}

	return updated, nil
}

// Reject lets the buyer turn down a provider's request before terms. Terminal.
func (s *Service) Reject(ctx context.Context, actor auth.Identity, requestID uuid.UUID) (*Request, error) {
	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("loading request %s: %w", requestID, err)
	}

	if actor.Role != auth.RoleBuyer || actor.AccountID != req.BuyerID {
		return nil, fmt.Errorf("only the request's buyer may reject: %w", ErrStateConflict)
	}

	updated, err := s.repo.CloseRequest(ctx, requestID, RequestPendingBuyerReview, RequestRejectedByBuyer, s.now())
	if err != nil {
		return nil, fmt.Errorf("rejecting request %s: %w", requestID, err)
	}

	return updated, nil
}

// UpdateTerms replaces an active connection's terms wholesale. Stats and
// window keys are untouched.
func (s *Service) UpdateTerms(ctx context.Context, actor auth.Identity, connectionID uuid.UUID, t terms.ContractTerms) (*Connection, error) {
	if err := terms.Validate(t); err != nil {
		return nil, err
	}

	conn, err := s.repo.GetConnection(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("loading connection %s: %w", connectionID, err)
	}

	if actor.Role != auth.RoleBuyer || actor.AccountID != conn.BuyerID {
		return nil, fmt.Errorf("only the connection's buyer may update terms: %w", ErrStateConflict)
	}

	updated, err := s.repo.UpdateConnectionTerms(ctx, connectionID, t)
	if err != nil {
		return nil, fmt.Errorf("updating terms on connection %s: %w", connectionID, err)
	}

	s.dispatch(notify.Event{
		Type:         notify.EventTermsUpdated,
		AccountID:    conn.ProviderID,
		ConnectionID: &conn.ID,
	})

	return updated, nil
}

// Terminate ends an active connection. One-way; either party may call it.
func (s *Service) Terminate(ctx context.Context, actor auth.Identity, connectionID uuid.UUID, reason string) (*Connection, error) {
	conn, err := s.repo.GetConnection(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("loading connection %s: %w", connectionID, err)
	}

	if actor.AccountID != conn.ProviderID && actor.AccountID != conn.BuyerID {
		return nil, fmt.Errorf("only a party to the connection may terminate it: %w", ErrStateConflict)
	}

	updated, err := s.repo.TerminateConnection(ctx, connectionID, actor.AccountID, reason, s.now())
	if err != nil {
		return nil, fmt.Errorf("terminating connection %s: %w", connectionID, err)
	}

	counterparty := conn.ProviderID
	if actor.AccountID == conn.ProviderID {
		counterparty = conn.BuyerID
	}

	s.dispatch(notify.Event{
		Type:         notify.EventConnectionTerminated,
		AccountID:    counterparty,
		ConnectionID: &conn.ID,
		Detail:       reason,
	})

	return updated, nil
}

// CapStatus reports remaining capacity after an accepted submission.
type CapStatus struct {
	WeeklyRemaining  *int
	MonthlyRemaining *int
}

// SubmissionResult is the outcome of an accepted lead submission.
type SubmissionResult struct {
	LeadID     uuid.UUID
	Connection *Connection
	CapStatus  CapStatus
	Payout     *ledger.Transaction
}

// SubmitLead authorizes one lead against the connection's caps and, if
// allowed, counts it and records the buyer's payout obligation. The cap
// check and the counter update happen under the connection's row lock, so
// concurrent submissions cannot oversubscribe a window.
func (s *Service) SubmitLead(ctx context.Context, actor auth.Identity, connectionID uuid.UUID) (*SubmissionResult, error) {
	stx, err := s.repo.BeginSubmission(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("beginning submission on %s: %w", connectionID, err)
	}
	defer stx.Rollback()

	conn := stx.Connection()

	if actor.Role != auth.RoleProvider || actor.AccountID != conn.ProviderID {
		return nil, fmt.Errorf("only the connection's provider may submit leads: %w", ErrStateConflict)
	}

	if conn.Status != StatusActive {
		return nil, fmt.Errorf("submitting lead on %s connection: %w", conn.Status, ErrStateConflict)
	}

	now := s.now()

	usage := capwindow.Usage{
		LeadsThisWeek:  conn.Stats.LeadsThisWeek,
		LeadsThisMonth: conn.Stats.LeadsThisMonth,
		WeekStart:      conn.Stats.WeekStart,
		MonthStart:     conn.Stats.MonthStart,
	}

	decision := capwindow.Evaluate(usage, conn.Terms.LeadCaps, now)
	if !decision.Allowed {
		metrics.LeadSubmissions.WithLabelValues("denied").Inc()

		s.dispatch(notify.Event{
			Type:         notify.EventCapExceeded,
			AccountID:    conn.BuyerID,
			ConnectionID: &conn.ID,
			Detail:       decision.ResetHint,
		})

		return nil, &CapExceededError{
			WeeklyRemaining:  decision.WeeklyRemaining,
			MonthlyRemaining: decision.MonthlyRemaining,
			ResetHint:        decision.ResetHint,
		}
	}

	stats := conn.Stats
	stats.TotalLeads++
	stats.TotalPaid += conn.Terms.RatePerLead
	stats.WeekStart = decision.WeekStart
	stats.MonthStart = decision.MonthStart

	// Physical window reset happens here, atomically with the increment.
	if decision.ResetWeekly {
		stats.LeadsThisWeek = 1
	} else {
		stats.LeadsThisWeek++
	}

	if decision.ResetMonthly {
		stats.LeadsThisMonth = 1
	} else {
		stats.LeadsThisMonth++
	}

	if err := stx.UpdateStats(ctx, stats); err != nil {
		return nil, fmt.Errorf("updating stats on %s: %w", connectionID, err)
	}

	if err := stx.Commit(); err != nil {
		return nil, fmt.Errorf("committing submission on %s: %w", connectionID, err)
	}

	metrics.LeadSubmissions.WithLabelValues("allowed").Inc()

	leadID := uuid.New()

	payout, err := s.payouts.RecordLeadPayout(ctx, ledger.LeadPayoutParams{
		ConnectionID: conn.ID,
		LeadID:       leadID,
		BuyerID:      conn.BuyerID,
		ProviderID:   conn.ProviderID,
		Amount:       conn.Terms.RatePerLead,
		Description:  fmt.Sprintf("lead payout for connection %s", conn.ID),
	})
	if err != nil {
		// The lead is already counted; surface the ledger failure so the
		// operator can reconcile by lead id.
		slog.Error("lead counted but payout not recorded",
			"connection_id", conn.ID, "lead_id", leadID, "error", err)

		return nil, fmt.Errorf("recording payout for lead %s: %w", leadID, err)
	}

	conn.Stats = stats

	return &SubmissionResult{
		LeadID:     leadID,
		Connection: conn,
		CapStatus: CapStatus{
			WeeklyRemaining:  decision.WeeklyRemaining,
			MonthlyRemaining: decision.MonthlyRemaining,
		},
		Payout: payout,
	}, nil
}

// GetRequest returns a request visible to the actor.
func (s *Service) GetRequest(ctx context.Context, actor auth.Identity, id uuid.UUID) (*Request, error) {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.AccountID != req.ProviderID && actor.AccountID != req.BuyerID {
		return nil, ErrNotFound
	}

	return req, nil
}

// GetConnection returns a connection visible to the actor.
func (s *Service) GetConnection(ctx context.Context, actor auth.Identity, id uuid.UUID) (*Connection, error) {
	conn, err := s.repo.GetConnection(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.AccountID != conn.ProviderID && actor.AccountID != conn.BuyerID {
		return nil, ErrNotFound
	}

	return conn, nil
}

// ListRequests returns the actor's requests, newest first.
func (s *Service) ListRequests(ctx context.Context, actor auth.Identity) ([]*Request, error) {
	return s.repo.ListRequestsForAccount(ctx, actor.AccountID)
}

// ListConnections returns the actor's connections, newest first.
func (s *Service) ListConnections(ctx context.Context, actor auth.Identity) ([]*Connection, error) {
	return s.repo.ListConnectionsForAccount(ctx, actor.AccountID)
}

func (s *Service) dispatch(ev notify.Event) {
	if s.notifier == nil {
		return
	}

	// Fire and forget; notification failures never block the operation.
	go s.notifier.Notify(context.Background(), ev)
}
