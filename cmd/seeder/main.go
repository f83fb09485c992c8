// Command seeder creates the schema and a demo provider-buyer pair for
// local development.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/leadbroker/internal/capwindow"
	"github.com/MrJamesThe3rd/leadbroker/internal/config"
	"github.com/MrJamesThe3rd/leadbroker/internal/database"
	"github.com/MrJamesThe3rd/leadbroker/internal/terms"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS connection_requests (
	id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	provider_id    UUID NOT NULL,
	buyer_id       UUID NOT NULL,
	initiator      TEXT NOT NULL,
	message        TEXT NOT NULL DEFAULT '',
	proposed_terms JSONB,
	status         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	reviewed_at    TIMESTAMPTZ,
	responded_at   TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_requests_provider ON connection_requests (provider_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_requests_buyer ON connection_requests (buyer_id, created_at DESC);

-- One open negotiation per pair; backs the idempotent request check.
CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_pending_pair
	ON connection_requests (provider_id, buyer_id)
	WHERE status IN ('pending_buyer_review', 'pending_provider_accept');

CREATE TABLE IF NOT EXISTS connections (
	id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	provider_id        UUID NOT NULL,
	buyer_id           UUID NOT NULL,
	status             TEXT NOT NULL,
	terms              JSONB NOT NULL,
	total_leads        INTEGER NOT NULL DEFAULT 0,
	total_paid         BIGINT NOT NULL DEFAULT 0,
	leads_this_week    INTEGER NOT NULL DEFAULT 0,
	leads_this_month   INTEGER NOT NULL DEFAULT 0,
	week_start         TIMESTAMPTZ NOT NULL,
	month_start        TIMESTAMPTZ NOT NULL,
	requested_at       TIMESTAMPTZ NOT NULL,
	accepted_at        TIMESTAMPTZ NOT NULL,
	terminated_at      TIMESTAMPTZ,
	terminated_by      UUID,
	termination_reason TEXT
);

CREATE INDEX IF NOT EXISTS idx_connections_provider ON connections (provider_id, accepted_at DESC);
CREATE INDEX IF NOT EXISTS idx_connections_buyer ON connections (buyer_id, accepted_at DESC);

CREATE TABLE IF NOT EXISTS ledger_transactions (
	id                      UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	type                    TEXT NOT NULL,
	status                  TEXT NOT NULL,
	amount                  BIGINT NOT NULL,
	fee_amount              BIGINT NOT NULL DEFAULT 0,
	net_amount              BIGINT NOT NULL,
	from_account            UUID,
	to_account              UUID,
	lead_id                 UUID,
	connection_id           UUID,
	description             TEXT NOT NULL DEFAULT '',
	original_transaction_id UUID,
	reversal_transaction_id UUID,
	reversal_reason         TEXT,
	failure_reason          TEXT,
	created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at            TIMESTAMPTZ,
	reversed_at             TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_ledger_from ON ledger_transactions (from_account, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_ledger_to ON ledger_transactions (to_account, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_ledger_connection ON ledger_transactions (connection_id);
`

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		slog.Error("failed to create schema", "error", err)
		os.Exit(1)
	}

	slog.Info("schema ready")

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM connections").Scan(&count); err != nil {
		slog.Error("failed to check connections", "error", err)
		os.Exit(1)
	}

	if count > 0 {
		slog.Info("database already seeded", "connections", count)
		return
	}

	providerID := uuid.New()
	buyerID := uuid.New()
	now := time.Now().UTC()

	demoTerms := terms.ContractTerms{
		RatePerLead:           7500,
		PaymentTiming:         terms.TimingPerLead,
		LeadTypes:             []string{"auto", "home"},
		TerminationNoticeDays: 14,
		LeadCaps:              &terms.LeadCaps{WeeklyLimit: ptr(25)},
		LicensedStates:        []string{"TX", "OK"},
		AgreementVersion:      "2024-01",
	}

	termsJSON, err := json.Marshal(demoTerms)
	if err != nil {
		slog.Error("failed to encode terms", "error", err)
		os.Exit(1)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO connection_requests
			(provider_id, buyer_id, initiator, message, proposed_terms, status, created_at, reviewed_at, responded_at)
		VALUES ($1, $2, 'provider', 'demo provider looking for a buyer', $3, 'accepted', $4, $4, $4)
	`, providerID, buyerID, termsJSON, now)
	if err != nil {
		slog.Error("failed to seed request", "error", err)
		os.Exit(1)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO connections
			(provider_id, buyer_id, status, terms,
			 total_leads, total_paid, leads_this_week, leads_this_month, week_start, month_start,
			 requested_at, accepted_at)
		VALUES ($1, $2, 'active', $3, 0, 0, 0, 0, $4, $5, $6, $6)
	`, providerID, buyerID, termsJSON, capwindow.WeekStart(now), capwindow.MonthStart(now), now)
	if err != nil {
		slog.Error("failed to seed connection", "error", err)
		os.Exit(1)
	}

	slog.Info("seeded demo accounts",
		"provider_id", providerID,
		"buyer_id", buyerID,
		"rate_per_lead_cents", demoTerms.RatePerLead,
	)
}

func ptr[T any](v T) *T { return &v }
