package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type categorizes a money movement.
type Type string

const (
	TypeLeadPayout       Type = "lead_payout"
	TypePolicyCommission Type = "policy_commission"
	TypePlatformFee      Type = "platform_fee"
	TypeRefund           Type = "refund"
	TypeAdjustment       Type = "adjustment"
)

// Status is the lifecycle state of a transaction. Completed, failed and
// reversed entries are immutable.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusReversed  Status = "reversed"
)

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrStateConflict = errors.New("transaction not in required status")
)

// Transaction is a single entry in the append-only ledger. Amounts are in
// cents; NetAmount is Amount minus FeeAmount.
type Transaction struct {
	ID           uuid.UUID
	Type         Type
	Status       Status
	Amount       int64
	FeeAmount    int64
	NetAmount    int64
	FromAccount  *uuid.UUID
	ToAccount    *uuid.UUID
	LeadID       *uuid.UUID
	ConnectionID *uuid.UUID
	Description  string

	// Reversal linkage. A reversed original points at its compensating
	// adjustment; the adjustment points back at the original.
	OriginalTransactionID *uuid.UUID
	ReversalTransactionID *uuid.UUID
	ReversalReason        string

	FailureReason string

	CreatedAt   time.Time
	CompletedAt *time.Time
	ReversedAt  *time.Time
}

// AccountBalance is derived from the ledger on every read, never stored.
type AccountBalance struct {
	AccountID        uuid.UUID
	AvailableBalance int64
	PendingBalance   int64
	TotalEarnings    int64
	TotalPayouts     int64
}
