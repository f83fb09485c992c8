// Package notify is the outbound notification contract. Delivery is fire
// and forget; the core never waits on it.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// EventType identifies what happened.
type EventType string

const (
	EventTermsProposed        EventType = "terms_proposed"
	EventTermsUpdated         EventType = "terms_updated"
	EventConnectionAccepted   EventType = "connection_accepted"
	EventConnectionTerminated EventType = "connection_terminated"
	EventCapExceeded          EventType = "cap_exceeded"
)

// Event is a single notification addressed to one account.
type Event struct {
	Type         EventType
	AccountID    uuid.UUID
	RequestID    *uuid.UUID
	ConnectionID *uuid.UUID
	Detail       string
}

// Notifier delivers events to the external sender.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// LogNotifier writes events to the structured log. It stands in for the
// external email/notification sender.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}

	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, ev Event) {
	attrs := []any{"type", ev.Type, "account_id", ev.AccountID}

	if ev.RequestID != nil {
		attrs = append(attrs, "request_id", *ev.RequestID)
	}

	if ev.ConnectionID != nil {
		attrs = append(attrs, "connection_id", *ev.ConnectionID)
	}

	if ev.Detail != "" {
		attrs = append(attrs, "detail", ev.Detail)
	}

	n.log.Info("notification", attrs...)
}
