package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/leadbroker/internal/ledger"
)

type transactionResponse struct {
	ID                    uuid.UUID     `json:"id"`
	Type                  ledger.Type   `json:"type"`
	Status                ledger.Status `json:"status"`
	Amount                int64         `json:"amount"`
	FeeAmount             int64         `json:"fee_amount"`
	NetAmount             int64         `json:"net_amount"`
	FromAccount           *uuid.UUID    `json:"from_account,omitempty"`
	ToAccount             *uuid.UUID    `json:"to_account,omitempty"`
	LeadID                *uuid.UUID    `json:"lead_id,omitempty"`
	ConnectionID          *uuid.UUID    `json:"connection_id,omitempty"`
	Description           string        `json:"description,omitempty"`
	FailureReason         string        `json:"failure_reason,omitempty"`
	ReversalReason        string        `json:"reversal_reason,omitempty"`
	OriginalTransactionID *uuid.UUID    `json:"original_transaction_id,omitempty"`
	ReversalTransactionID *uuid.UUID    `json:"reversal_transaction_id,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
	CompletedAt           *time.Time    `json:"completed_at,omitempty"`
	ReversedAt            *time.Time    `json:"reversed_at,omitempty"`
}

type balanceResponse struct {
	AccountID        uuid.UUID `json:"account_id"`
	AvailableBalance int64     `json:"available_balance"`
	PendingBalance   int64     `json:"pending_balance"`
	TotalEarnings    int64     `json:"total_earnings"`
	TotalPayouts     int64     `json:"total_payouts"`
}

func toResponse(tx *ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:                    tx.ID,
		Type:                  tx.Type,
		Status:                tx.Status,
		Amount:                tx.Amount,
		FeeAmount:             tx.FeeAmount,
		NetAmount:             tx.NetAmount,
		FromAccount:           tx.FromAccount,
		ToAccount:             tx.ToAccount,
		LeadID:                tx.LeadID,
		ConnectionID:          tx.ConnectionID,
		Description:           tx.Description,
		FailureReason:         tx.FailureReason,
		ReversalReason:        tx.ReversalReason,
		OriginalTransactionID: tx.OriginalTransactionID,
		ReversalTransactionID: tx.ReversalTransactionID,
		CreatedAt:             tx.CreatedAt,
		CompletedAt:           tx.CompletedAt,
		ReversedAt:            tx.ReversedAt,
	}
}

func toResponseList(txs []*ledger.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

func toBalanceResponse(b *ledger.AccountBalance) balanceResponse {
	return balanceResponse{
		AccountID:        b.AccountID,
		AvailableBalance: b.AvailableBalance,
		PendingBalance:   b.PendingBalance,
		TotalEarnings:    b.TotalEarnings,
		TotalPayouts:     b.TotalPayouts,
	}
}
