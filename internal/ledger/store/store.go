package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/leadbroker/internal/ledger"
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

const selectTransactionColumns = `
	id, type, status, amount, fee_amount, net_amount, from_account, to_account,
	lead_id, connection_id, description, original_transaction_id,
	reversal_transaction_id, reversal_reason, failure_reason,
	created_at, completed_at, reversed_at
`

// scanTransaction reads a ledger row in selectTransactionColumns order.
func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction

	var typeStr, statusStr string

	var reversalReason, failureReason sql.NullString

	if err := s.Scan(
		&tx.ID, &typeStr, &statusStr, &tx.Amount, &tx.FeeAmount, &tx.NetAmount,
		&tx.FromAccount, &tx.ToAccount,
		&tx.LeadID, &tx.ConnectionID, &tx.Description, &tx.OriginalTransactionID,
		&tx.ReversalTransactionID, &reversalReason, &failureReason,
		&tx.CreatedAt, &tx.CompletedAt, &tx.ReversedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = ledger.Type(typeStr)
	tx.Status = ledger.Status(statusStr)
	tx.ReversalReason = reversalReason.String
	tx.FailureReason = failureReason.String

	return &tx, nil
}

func (s *Store) Insert(ctx context.Context, tx *ledger.Transaction) error {
	query := `
		INSERT INTO ledger_transactions
			(type, status, amount, fee_amount, net_amount, from_account, to_account,
			 lead_id, connection_id, description, original_transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		tx.Type,
		tx.Status,
		tx.Amount,
		tx.FeeAmount,
		tx.NetAmount,
		tx.FromAccount,
		tx.ToAccount,
		tx.LeadID,
		tx.ConnectionID,
		tx.Description,
		tx.OriginalTransactionID,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM ledger_transactions WHERE id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM ledger_transactions
		WHERE from_account = $1 OR to_account = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*ledger.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

// MarkCompleted transitions pending -> completed in a single guarded
// statement; two racing callers cannot both succeed.
func (s *Store) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) (*ledger.Transaction, error) {
	query := `
		UPDATE ledger_transactions
		SET status = $1, completed_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + selectTransactionColumns

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query,
		ledger.StatusCompleted, at, id, ledger.StatusPending))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, s.transitionConflict(ctx, id)
		}

		return nil, fmt.Errorf("completing transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, reason string, at time.Time) (*ledger.Transaction, error) {
	query := `
		UPDATE ledger_transactions
		SET status = $1, failure_reason = $2, completed_at = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + selectTransactionColumns

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query,
		ledger.StatusFailed, reason, at, id, ledger.StatusPending))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, s.transitionConflict(ctx, id)
		}

		return nil, fmt.Errorf("failing transaction: %w", err)
	}

	return tx, nil
}

// transitionConflict distinguishes an unknown id from a guarded update that
// found the row in the wrong status.
func (s *Store) transitionConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool

	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM ledger_transactions WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking transaction: %w", err)
	}

	if !exists {
		return ledger.ErrNotFound
	}

	return ledger.ErrStateConflict
}

// Reverse marks the original reversed and appends the compensating
// adjustment in one database transaction. The status guard on the original
// makes concurrent reversals lose cleanly.
func (s *Store) Reverse(ctx context.Context, originalID uuid.UUID, reason string, reversal *ledger.Transaction, at time.Time) (*ledger.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning reversal: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, `
		UPDATE ledger_transactions
		SET status = $1, reversal_reason = $2, reversed_at = $3
		WHERE id = $4 AND status = $5
	`, ledger.StatusReversed, reason, at, originalID, ledger.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("marking transaction reversed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking reversal update: %w", err)
	}

	if affected == 0 {
		return nil, s.transitionConflict(ctx, originalID)
	}

	err = dbTx.QueryRowContext(ctx, `
		INSERT INTO ledger_transactions
			(type, status, amount, fee_amount, net_amount, from_account, to_account,
			 lead_id, connection_id, description, original_transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING id, created_at
	`,
		reversal.Type,
		reversal.Status,
		reversal.Amount,
		reversal.FeeAmount,
		reversal.NetAmount,
		reversal.FromAccount,
		reversal.ToAccount,
		reversal.LeadID,
		reversal.ConnectionID,
		reversal.Description,
		reversal.OriginalTransactionID,
	).Scan(&reversal.ID, &reversal.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting reversal: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx,
		"UPDATE ledger_transactions SET reversal_transaction_id = $1 WHERE id = $2",
		reversal.ID, originalID); err != nil {
		return nil, fmt.Errorf("linking reversal: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing reversal: %w", err)
	}

	return reversal, nil
}

// GetBalance derives the balance view in one aggregation statement, which
// gives the single-snapshot read the balance view requires.
func (s *Store) GetBalance(ctx context.Context, accountID uuid.UUID) (*ledger.AccountBalance, error) {
	query := `
		SELECT
			COALESCE(SUM(net_amount) FILTER (WHERE status = 'completed' AND to_account = $1), 0) AS earnings,
			COALESCE(SUM(amount)     FILTER (WHERE status = 'completed' AND from_account = $1), 0) AS payouts,
			COALESCE(SUM(net_amount) FILTER (WHERE status = 'pending'   AND to_account = $1), 0) AS pending
		FROM ledger_transactions
		WHERE from_account = $1 OR to_account = $1
	`

	balance := &ledger.AccountBalance{AccountID: accountID}

	err := s.db.QueryRowContext(ctx, query, accountID).Scan(
		&balance.TotalEarnings, &balance.TotalPayouts, &balance.PendingBalance)
	if err != nil {
		return nil, fmt.Errorf("aggregating balance: %w", err)
	}

	balance.AvailableBalance = balance.TotalEarnings - balance.TotalPayouts

	return balance, nil
}
