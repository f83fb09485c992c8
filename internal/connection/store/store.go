package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/leadbroker/internal/auth"
	"github.com/MrJamesThe3rd/leadbroker/internal/connection"
	"github.com/MrJamesThe3rd/leadbroker/internal/terms"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectRequestColumns = `
	id, provider_id, buyer_id, initiator, message, proposed_terms, status,
	created_at, reviewed_at, responded_at
`

func scanRequest(s scanner) (*connection.Request, error) {
	var req connection.Request

	var initiator, status string

	var termsJSON []byte

	if err := s.Scan(
		&req.ID, &req.ProviderID, &req.BuyerID, &initiator, &req.Message, &termsJSON,
		&status, &req.CreatedAt, &req.ReviewedAt, &req.RespondedAt,
	); err != nil {
		return nil, err
	}

	req.Initiator = auth.Role(initiator)
	req.Status = connection.RequestStatus(status)

	if len(termsJSON) > 0 {
		var t terms.ContractTerms
		if err := json.Unmarshal(termsJSON, &t); err != nil {
			return nil, fmt.Errorf("decoding proposed terms: %w", err)
		}

		req.ProposedTerms = &t
	}

	return &req, nil
}

const selectConnectionColumns = `
	id, provider_id, buyer_id, status, terms,
	total_leads, total_paid, leads_this_week, leads_this_month, week_start, month_start,
	requested_at, accepted_at, terminated_at, terminated_by, termination_reason
`

func scanConnection(s scanner) (*connection.Connection, error) {
	var conn connection.Connection

	var status string

	var termsJSON []byte

	var terminationReason sql.NullString

	if err := s.Scan(
		&conn.ID, &conn.ProviderID, &conn.BuyerID, &status, &termsJSON,
		&conn.Stats.TotalLeads, &conn.Stats.TotalPaid,
		&conn.Stats.LeadsThisWeek, &conn.Stats.LeadsThisMonth,
		&conn.Stats.WeekStart, &conn.Stats.MonthStart,
		&conn.RequestedAt, &conn.AcceptedAt,
		&conn.TerminatedAt, &conn.TerminatedBy, &terminationReason,
	); err != nil {
		return nil, err
	}

	conn.Status = connection.Status(status)
	conn.TerminationReason = terminationReason.String

	if err := json.Unmarshal(termsJSON, &conn.Terms); err != nil {
		return nil, fmt.Errorf("decoding terms: %w", err)
	}

	conn.Stats.WeekStart = conn.Stats.WeekStart.UTC()
	conn.Stats.MonthStart = conn.Stats.MonthStart.UTC()

	return &conn, nil
}

func encodeTerms(t *terms.ContractTerms) ([]byte, error) {
	if t == nil {
		return nil, nil
	}

	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encoding terms: %w", err)
	}

	return data, nil
}

func (s *Store) CreateRequest(ctx context.Context, req *connection.Request) error {
	termsJSON, err := encodeTerms(req.ProposedTerms)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO connection_requests
			(provider_id, buyer_id, initiator, message, proposed_terms, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		req.ProviderID,
		req.BuyerID,
		req.Initiator,
		req.Message,
		termsJSON,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	return nil
}

func (s *Store) GetRequest(ctx context.Context, id uuid.UUID) (*connection.Request, error) {
	query := `SELECT ` + selectRequestColumns + ` FROM connection_requests WHERE id = $1`

	req, err := scanRequest(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, connection.ErrNotFound
		}

		return nil, fmt.Errorf("getting request: %w", err)
	}

	return req, nil
}

func (s *Store) FindPendingRequest(ctx context.Context, providerID, buyerID uuid.UUID) (*connection.Request, error) {
	query := `SELECT ` + selectRequestColumns + `
		FROM connection_requests
		WHERE provider_id = $1 AND buyer_id = $2
		AND status IN ($3, $4)
		ORDER BY created_at DESC
		LIMIT 1`

	req, err := scanRequest(s.db.QueryRowContext(ctx, query, providerID, buyerID,
		connection.RequestPendingBuyerReview, connection.RequestPendingProviderAccept))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("finding pending request: %w", err)
	}

	return req, nil
}

func (s *Store) SetRequestTerms(ctx context.Context, id uuid.UUID, t terms.ContractTerms, reviewedAt time.Time) (*connection.Request, error) {
	termsJSON, err := encodeTerms(&t)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE connection_requests
		SET proposed_terms = $1, status = $2, reviewed_at = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + selectRequestColumns

	req, err := scanRequest(s.db.QueryRowContext(ctx, query,
		termsJSON, connection.RequestPendingProviderAccept, reviewedAt,
		id, connection.RequestPendingBuyerReview))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, s.requestConflict(ctx, id)
		}

		return nil, fmt.Errorf("setting request terms: %w", err)
	}

	return req, nil
}

func (s *Store) CloseRequest(ctx context.Context, id uuid.UUID, from, to connection.RequestStatus, respondedAt time.Time) (*connection.Request, error) {
	query := `
		UPDATE connection_requests
		SET status = $1, responded_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + selectRequestColumns

	req, err := scanRequest(s.db.QueryRowContext(ctx, query, to, respondedAt, id, from))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, s.requestConflict(ctx, id)
		}

		return nil, fmt.Errorf("closing request: %w", err)
	}

	return req, nil
}

func (s *Store) requestConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool

	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM connection_requests WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking request: %w", err)
	}

	if !exists {
		return connection.ErrNotFound
	}

	return connection.ErrStateConflict
}

// AcceptRequest closes the request and creates the connection in one
// database transaction, so a crash cannot leave the two out of step.
func (s *Store) AcceptRequest(ctx context.Context, requestID uuid.UUID, conn *connection.Connection, respondedAt time.Time) (*connection.Connection, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning accept: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, `
		UPDATE connection_requests
		SET status = $1, responded_at = $2
		WHERE id = $3 AND status = $4
	`, connection.RequestAccepted, respondedAt, requestID, connection.RequestPendingProviderAccept)
	if err != nil {
		return nil, fmt.Errorf("closing accepted request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking accept update: %w", err)
	}

	if affected == 0 {
		return nil, s.requestConflict(ctx, requestID)
	}

	termsJSON, err := encodeTerms(&conn.Terms)
	if err != nil {
		return nil, err
	}

	err = dbTx.QueryRowContext(ctx, `
		INSERT INTO connections
			(provider_id, buyer_id, status, terms,
			 total_leads, total_paid, leads_this_week, leads_this_month, week_start, month_start,
			 requested_at, accepted_at)
		VALUES ($1, $2, $3, $4, 0, 0, 0, 0, $5, $6, $7, $8)
		RETURNING id
	`,
		conn.ProviderID,
		conn.BuyerID,
		conn.Status,
		termsJSON,
		conn.Stats.WeekStart,
		conn.Stats.MonthStart,
		conn.RequestedAt,
		conn.AcceptedAt,
	).Scan(&conn.ID)
	if err != nil {
		return nil, fmt.Errorf("creating connection: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing accept: %w", err)
	}

	return conn, nil
}

func (s *Store) GetConnection(ctx context.Context, id uuid.UUID) (*connection.Connection, error) {
	query := `SELECT ` + selectConnectionColumns + ` FROM connections WHERE id = $1`

	conn, err := scanConnection(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, connection.ErrNotFound
		}

		return nil, fmt.Errorf("getting connection: %w", err)
	}

	return conn, nil
}

func (s *Store) UpdateConnectionTerms(ctx context.Context, id uuid.UUID, t terms.ContractTerms) (*connection.Connection, error) {
	termsJSON, err := encodeTerms(&t)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE connections
		SET terms = $1
		WHERE id = $2 AND status = $3
		RETURNING ` + selectConnectionColumns

	conn, err := scanConnection(s.db.QueryRowContext(ctx, query, termsJSON, id, connection.StatusActive))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, s.connectionConflict(ctx, id)
		}

		return nil, fmt.Errorf("updating connection terms: %w", err)
	}

	return conn, nil
}

func (s *Store) TerminateConnection(ctx context.Context, id, by uuid.UUID, reason string, at time.Time) (*connection.Connection, error) {
	query := `
		UPDATE connections
		SET status = $1, terminated_at = $2, terminated_by = $3, termination_reason = $4
		WHERE id = $5 AND status = $6
		RETURNING ` + selectConnectionColumns

	conn, err := scanConnection(s.db.QueryRowContext(ctx, query,
		connection.StatusTerminated, at, by, reason, id, connection.StatusActive))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, s.connectionConflict(ctx, id)
		}

		return nil, fmt.Errorf("terminating connection: %w", err)
	}

	return conn, nil
}

func (s *Store) connectionConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool

	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM connections WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking connection: %w", err)
	}

	if !exists {
		return connection.ErrNotFound
	}

	return connection.ErrStateConflict
}

func (s *Store) ListRequestsForAccount(ctx context.Context, accountID uuid.UUID) ([]*connection.Request, error) {
	query := `SELECT ` + selectRequestColumns + `
		FROM connection_requests
		WHERE provider_id = $1 OR buyer_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	var reqs []*connection.Request

	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}

		reqs = append(reqs, req)
	}

	return reqs, rows.Err()
}

func (s *Store) ListConnectionsForAccount(ctx context.Context, accountID uuid.UUID) ([]*connection.Connection, error) {
	query := `SELECT ` + selectConnectionColumns + `
		FROM connections
		WHERE provider_id = $1 OR buyer_id = $1
		ORDER BY accepted_at DESC`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing connections: %w", err)
	}
	defer rows.Close()

	var conns []*connection.Connection

	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning connection: %w", err)
		}

		conns = append(conns, conn)
	}

	return conns, rows.Err()
}

type submissionTx struct {
	tx   *sql.Tx
	conn *connection.Connection
}

// BeginSubmission opens a transaction and locks the connection row, giving
// the caller an atomic check-and-increment window.
func (s *Store) BeginSubmission(ctx context.Context, connectionID uuid.UUID) (connection.SubmissionTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning submission tx: %w", err)
	}

	query := `SELECT ` + selectConnectionColumns + ` FROM connections WHERE id = $1 FOR UPDATE`

	conn, err := scanConnection(dbTx.QueryRowContext(ctx, query, connectionID))
	if err != nil {
		dbTx.Rollback()

		if err == sql.ErrNoRows {
			return nil, connection.ErrNotFound
		}

		return nil, fmt.Errorf("locking connection: %w", err)
	}

	return &submissionTx{tx: dbTx, conn: conn}, nil
}

func (stx *submissionTx) Connection() *connection.Connection { return stx.conn }

func (stx *submissionTx) UpdateStats(ctx context.Context, stats connection.Stats) error {
	query := `
		UPDATE connections
		SET total_leads = $1, total_paid = $2,
			leads_this_week = $3, leads_this_month = $4,
			week_start = $5, month_start = $6
		WHERE id = $7
	`

	_, err := stx.tx.ExecContext(ctx, query,
		stats.TotalLeads,
		stats.TotalPaid,
		stats.LeadsThisWeek,
		stats.LeadsThisMonth,
		stats.WeekStart,
		stats.MonthStart,
		stx.conn.ID,
	)
	if err != nil {
		return fmt.Errorf("updating stats: %w", err)
	}

	return nil
}

func (stx *submissionTx) Commit() error   { return stx.tx.Commit() }
func (stx *submissionTx) Rollback() error { return stx.tx.Rollback() }
