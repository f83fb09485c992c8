package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/leadbroker/internal/metrics"
	"github.com/MrJamesThe3rd/leadbroker/internal/terms"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	Insert(ctx context.Context, tx *Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Transaction, error)

	// MarkCompleted and MarkFailed transition a pending transaction with a
	// status-guarded single-statement update.
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) (*Transaction, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, at time.Time) (*Transaction, error)

	// Reverse atomically marks the original reversed and appends the
	// compensating adjustment. It fails with ErrStateConflict if the
	// original is no longer completed.
	Reverse(ctx context.Context, originalID uuid.UUID, reason string, reversal *Transaction, at time.Time) (*Transaction, error)

	GetBalance(ctx context.Context, accountID uuid.UUID) (*AccountBalance, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

// WithNow overrides the service clock.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RecordParams describes a new ledger entry. Status defaults to pending.
type RecordParams struct {
	Type         Type
	Status       Status
	Amount       int64
	FeeAmount    int64
	FromAccount  *uuid.UUID
	ToAccount    *uuid.UUID
	LeadID       *uuid.UUID
	ConnectionID *uuid.UUID
	Description  string
}

// Record appends a new transaction. Past entries are never mutated.
func (s *Service) Record(ctx context.Context, params RecordParams) (*Transaction, error) {
	if params.Status == "" {
		params.Status = StatusPending
	}

	if err := validateRecord(params); err != nil {
		return nil, err
	}

	tx := &Transaction{
		Type:         params.Type,
		Status:       params.Status,
		Amount:       params.Amount,
		FeeAmount:    params.FeeAmount,
		NetAmount:    params.Amount - params.FeeAmount,
		FromAccount:  params.FromAccount,
		ToAccount:    params.ToAccount,
		LeadID:       params.LeadID,
		ConnectionID: params.ConnectionID,
		Description:  params.Description,
	}

	if err := s.repo.Insert(ctx, tx); err != nil {
		return nil, fmt.Errorf("recording transaction: %w", err)
	}

	metrics.Transactions.WithLabelValues(string(tx.Type)).Inc()

	return tx, nil
}

func validateRecord(params RecordParams) error {
	switch params.Type {
	case TypeLeadPayout, TypePolicyCommission, TypePlatformFee, TypeRefund, TypeAdjustment:
	default:
		return &terms.ValidationError{Field: "type", Message: fmt.Sprintf("unknown transaction type %q", params.Type)}
	}

	switch params.Status {
	case StatusPending, StatusCompleted, StatusFailed:
	default:
		return &terms.ValidationError{Field: "status", Message: fmt.Sprintf("cannot record a transaction as %q", params.Status)}
	}

	if params.Type == TypeLeadPayout {
		if params.Amount <= 0 {
			return &terms.ValidationError{Field: "amount", Message: fmt.Sprintf("lead_payout amount must be positive, got %d", params.Amount)}
		}

		// Current fee-free model: the provider is paid the full rate.
		if params.FeeAmount != 0 {
			return &terms.ValidationError{Field: "fee_amount", Message: "lead_payout fee must be zero"}
		}
	}

	if params.Type == TypePlatformFee && params.ToAccount != nil {
		return &terms.ValidationError{Field: "to_account", Message: "platform_fee must not have a to-account"}
	}

	return nil
}

// LeadPayoutParams identifies the payout obligation created by an accepted
// lead submission.
type LeadPayoutParams struct {
	ConnectionID uuid.UUID
	LeadID       uuid.UUID
	BuyerID      uuid.UUID
	ProviderID   uuid.UUID
	Amount       int64
	Description  string
}

// RecordLeadPayout appends the pending buyer-to-provider payout for one
// accepted lead. The payment processor integration completes or fails it.
func (s *Service) RecordLeadPayout(ctx context.Context, params LeadPayoutParams) (*Transaction, error) {
	return s.Record(ctx, RecordParams{
		Type:         TypeLeadPayout,
		Amount:       params.Amount,
		FromAccount:  &params.BuyerID,
		ToAccount:    &params.ProviderID,
		LeadID:       &params.LeadID,
		ConnectionID: &params.ConnectionID,
		Description:  params.Description,
	})
}

// Complete marks a pending transaction completed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	tx, err := s.repo.MarkCompleted(ctx, id, s.now())
	if err != nil {
		return nil, fmt.Errorf("completing transaction %s: %w", id, err)
	}

	return tx, nil
}

// Fail marks a pending transaction failed, recording the processor's reason.
func (s *Service) Fail(ctx context.Context, id uuid.UUID, reason string) (*Transaction, error) {
	tx, err := s.repo.MarkFailed(ctx, id, reason, s.now())
	if err != nil {
		return nil, fmt.Errorf("failing transaction %s: %w", id, err)
	}

	return tx, nil
}

// Reverse compensates a completed transaction: it appends an adjustment with
// the negated amount and swapped accounts, and marks the original reversed.
// The returned transaction is the new adjustment.
func (s *Service) Reverse(ctx context.Context, id uuid.UUID, reason string) (*Transaction, error) {
	original, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading transaction %s: %w", id, err)
	}

	if original.Status != StatusCompleted {
		return nil, fmt.Errorf("reversing transaction %s from %s: %w", id, original.Status, ErrStateConflict)
	}

	reversal := &Transaction{
		Type:                  TypeAdjustment,
		Status:                StatusPending,
		Amount:                -original.Amount,
		FeeAmount:             0,
		NetAmount:             -original.Amount,
		FromAccount:           original.ToAccount,
		ToAccount:             original.FromAccount,
		LeadID:                original.LeadID,
		ConnectionID:          original.ConnectionID,
		Description:           fmt.Sprintf("reversal of %s: %s", original.ID, reason),
		OriginalTransactionID: &original.ID,
	}

	// The repository re-checks the original's status inside its own
	// transaction, so a concurrent transition loses cleanly.
	reversal, err = s.repo.Reverse(ctx, original.ID, reason, reversal, s.now())
	if err != nil {
		return nil, fmt.Errorf("reversing transaction %s: %w", id, err)
	}

	return reversal, nil
}

// Get returns a single transaction.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.Get(ctx, id)
}

// History lists every transaction touching the account, newest first.
func (s *Service) History(ctx context.Context, accountID uuid.UUID) ([]*Transaction, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

// Balance derives the account's balance view from the ledger at a single
// consistent snapshot.
func (s *Service) Balance(ctx context.Context, accountID uuid.UUID) (*AccountBalance, error) {
	balance, err := s.repo.GetBalance(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("deriving balance for %s: %w", accountID, err)
	}

	return balance, nil
}
