package connection

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/leadbroker/internal/auth"
	"github.com/MrJamesThe3rd/leadbroker/internal/terms"
)

// RequestStatus is the state of an unconsummated negotiation.
type RequestStatus string

const (
	RequestPendingBuyerReview    RequestStatus = "pending_buyer_review"
	RequestPendingProviderAccept RequestStatus = "pending_provider_accept"
	RequestAccepted              RequestStatus = "accepted"
	RequestDeclinedByProvider    RequestStatus = "declined_by_provider"
	RequestRejectedByBuyer       RequestStatus = "rejected_by_buyer"
)

// Terminal reports whether no further transition is possible from s.
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestAccepted, RequestDeclinedByProvider, RequestRejectedByBuyer:
		return true
	}

	return false
}

// Status is the state of an accepted connection.
type Status string

const (
	StatusActive     Status = "active"
	StatusTerminated Status = "terminated"
)

var (
	ErrNotFound      = errors.New("connection not found")
	ErrStateConflict = errors.New("operation not allowed in current state")
)

// CapExceededError is returned when a lead submission is denied by the
// connection's caps. Remaining counts are nil for unlimited windows.
type CapExceededError struct {
	WeeklyRemaining  *int
	MonthlyRemaining *int
	ResetHint        string
}

func (e *CapExceededError) Error() string {
	parts := []string{"lead cap exceeded"}

	if e.WeeklyRemaining != nil {
		parts = append(parts, fmt.Sprintf("weekly remaining %d", *e.WeeklyRemaining))
	}

	if e.MonthlyRemaining != nil {
		parts = append(parts, fmt.Sprintf("monthly remaining %d", *e.MonthlyRemaining))
	}

	if e.ResetHint != "" {
		parts = append(parts, e.ResetHint)
	}

	return strings.Join(parts, ": ")
}

// Request is the negotiation phase of a provider-buyer relationship.
type Request struct {
	ID            uuid.UUID
	ProviderID    uuid.UUID
	BuyerID       uuid.UUID
	Initiator     auth.Role
	Message       string
	ProposedTerms *terms.ContractTerms
	Status        RequestStatus
	CreatedAt     time.Time
	ReviewedAt    *time.Time
	RespondedAt   *time.Time
}

// Stats tracks lifetime and per-window submission counters. The window
// counters are only meaningful together with their window keys; a key from
// an earlier window means the counter is stale and conceptually zero.
type Stats struct {
	TotalLeads     int
	TotalPaid      int64 // cents, accrued at submission
	LeadsThisWeek  int
	LeadsThisMonth int
	WeekStart      time.Time
	MonthStart     time.Time
}

// Connection is the active phase: an accepted relationship governed by
// contract terms. It is mutated only through Service operations.
type Connection struct {
	ID                uuid.UUID
	ProviderID        uuid.UUID
	BuyerID           uuid.UUID
	Status            Status
	Terms             terms.ContractTerms
	Stats             Stats
	RequestedAt       time.Time
	AcceptedAt        time.Time
	TerminatedAt      *time.Time
	TerminatedBy      *uuid.UUID
	TerminationReason string
}
