package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/leadbroker/internal/ledger"
	"github.com/MrJamesThe3rd/leadbroker/internal/terms"
)

// memRepo is an in-memory Repository with the same status-guard semantics
// as the Postgres store.
type memRepo struct {
	mu  sync.Mutex
	txs map[uuid.UUID]*ledger.Transaction
}

func newMemRepo() *memRepo {
	return &memRepo{txs: make(map[uuid.UUID]*ledger.Transaction)}
}

func (r *memRepo) Insert(_ context.Context, tx *ledger.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx.ID = uuid.New()
	tx.CreatedAt = time.Now().UTC()

	cp := *tx
	r.txs[tx.ID] = &cp

	return nil
}

func (r *memRepo) Get(_ context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.txs[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}

	cp := *tx

	return &cp, nil
}

func (r *memRepo) ListByAccount(_ context.Context, accountID uuid.UUID) ([]*ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var txs []*ledger.Transaction

	for _, tx := range r.txs {
		if touches(tx, accountID) {
			cp := *tx
			txs = append(txs, &cp)
		}
	}

	return txs, nil
}

func touches(tx *ledger.Transaction, accountID uuid.UUID) bool {
	return (tx.FromAccount != nil && *tx.FromAccount == accountID) ||
		(tx.ToAccount != nil && *tx.ToAccount == accountID)
}

func (r *memRepo) MarkCompleted(_ context.Context, id uuid.UUID, at time.Time) (*ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.txs[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}

	if tx.Status != ledger.StatusPending {
		return nil, ledger.ErrStateConflict
	}

	tx.Status = ledger.StatusCompleted
	tx.CompletedAt = &at

	cp := *tx

	return &cp, nil
}

func (r *memRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string, at time.Time) (*ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.txs[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}

	if tx.Status != ledger.StatusPending {
		return nil, ledger.ErrStateConflict
	}

	tx.Status = ledger.StatusFailed
	tx.FailureReason = reason
	tx.CompletedAt = &at

	cp := *tx

	return &cp, nil
}

func (r *memRepo) Reverse(_ context.Context, originalID uuid.UUID, reason string, reversal *ledger.Transaction, at time.Time) (*ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	original, ok := r.txs[originalID]
	if !ok {
		return nil, ledger.ErrNotFound
	}

	if original.Status != ledger.StatusCompleted {
		return nil, ledger.ErrStateConflict
	}

	reversal.ID = uuid.New()
	reversal.CreatedAt = time.Now().UTC()

	cp := *reversal
	r.txs[reversal.ID] = &cp

	original.Status = ledger.StatusReversed
	original.ReversalReason = reason
	original.ReversalTransactionID = &reversal.ID
	original.ReversedAt = &at

	return reversal, nil
}

func (r *memRepo) GetBalance(_ context.Context, accountID uuid.UUID) (*ledger.AccountBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	balance := &ledger.AccountBalance{AccountID: accountID}

	for _, tx := range r.txs {
		if tx.Status == ledger.StatusCompleted && tx.ToAccount != nil && *tx.ToAccount == accountID {
			balance.TotalEarnings += tx.NetAmount
		}

		if tx.Status == ledger.StatusCompleted && tx.FromAccount != nil && *tx.FromAccount == accountID {
			balance.TotalPayouts += tx.Amount
		}

		if tx.Status == ledger.StatusPending && tx.ToAccount != nil && *tx.ToAccount == accountID {
			balance.PendingBalance += tx.NetAmount
		}
	}

	balance.AvailableBalance = balance.TotalEarnings - balance.TotalPayouts

	return balance, nil
}

func TestService_Record(t *testing.T) {
	buyer := uuid.New()
	provider := uuid.New()

	type testCase struct {
		name      string
		params    ledger.RecordParams
		wantField string
	}

	tests := []testCase{
		{
			name: "LeadPayout",
			params: ledger.RecordParams{
				Type:        ledger.TypeLeadPayout,
				Amount:      7500,
				FromAccount: &buyer,
				ToAccount:   &provider,
			},
		},
		{
			name: "ZeroAmountPayout",
			params: ledger.RecordParams{
				Type:        ledger.TypeLeadPayout,
				Amount:      0,
				FromAccount: &buyer,
				ToAccount:   &provider,
			},
			wantField: "amount",
		},
		{
			name: "NegativePayout",
			params: ledger.RecordParams{
				Type:        ledger.TypeLeadPayout,
				Amount:      -100,
				FromAccount: &buyer,
				ToAccount:   &provider,
			},
			wantField: "amount",
		},
		{
			name: "PayoutWithFee",
			params: ledger.RecordParams{
				Type:        ledger.TypeLeadPayout,
				Amount:      7500,
				FeeAmount:   100,
				FromAccount: &buyer,
				ToAccount:   &provider,
			},
			wantField: "fee_amount",
		},
		{
			name: "PlatformFeeWithToAccount",
			params: ledger.RecordParams{
				Type:        ledger.TypePlatformFee,
				Amount:      200,
				FromAccount: &buyer,
				ToAccount:   &provider,
			},
			wantField: "to_account",
		},
		{
			name:      "UnknownType",
			params:    ledger.RecordParams{Type: "gift", Amount: 100},
			wantField: "type",
		},
		{
			name: "CannotRecordAsReversed",
			params: ledger.RecordParams{
				Type:   ledger.TypeRefund,
				Status: ledger.StatusReversed,
				Amount: 100,
			},
			wantField: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := ledger.NewService(newMemRepo())

			tx, err := svc.Record(context.Background(), tt.params)
			if tt.wantField != "" {
				var vErr *terms.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantField, vErr.Field)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, tx.ID)
			assert.Equal(t, ledger.StatusPending, tx.Status)
			assert.Equal(t, tt.params.Amount-tt.params.FeeAmount, tx.NetAmount)
		})
	}
}

func TestService_CompleteAndFail(t *testing.T) {
	repo := newMemRepo()
	svc := ledger.NewService(repo)
	ctx := context.Background()

	buyer, provider := uuid.New(), uuid.New()

	tx, err := svc.Record(ctx, ledger.RecordParams{
		Type: ledger.TypeLeadPayout, Amount: 5000,
		FromAccount: &buyer, ToAccount: &provider,
	})
	require.NoError(t, err)

	completed, err := svc.Complete(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	_, err = svc.Complete(ctx, tx.ID)
	assert.ErrorIs(t, err, ledger.ErrStateConflict)

	_, err = svc.Fail(ctx, tx.ID, "processor declined")
	assert.ErrorIs(t, err, ledger.ErrStateConflict)

	_, err = svc.Complete(ctx, uuid.New())
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	tx2, err := svc.Record(ctx, ledger.RecordParams{
		Type: ledger.TypeLeadPayout, Amount: 5000,
		FromAccount: &buyer, ToAccount: &provider,
	})
	require.NoError(t, err)

	failed, err := svc.Fail(ctx, tx2.ID, "insufficient funds")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusFailed, failed.Status)
	assert.Equal(t, "insufficient funds", failed.FailureReason)
}

func TestService_Reverse(t *testing.T) {
	repo := newMemRepo()
	svc := ledger.NewService(repo)
	ctx := context.Background()

	buyer, provider := uuid.New(), uuid.New()

	// $50 payout from buyer to provider.
	tx, err := svc.Record(ctx, ledger.RecordParams{
		Type: ledger.TypeLeadPayout, Amount: 5000,
		FromAccount: &buyer, ToAccount: &provider,
	})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, tx.ID)
	require.NoError(t, err)

	before, err := svc.Balance(ctx, provider)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), before.AvailableBalance)

	reversal, err := svc.Reverse(ctx, tx.ID, "lead disputed")
	require.NoError(t, err)

	assert.Equal(t, ledger.TypeAdjustment, reversal.Type)
	assert.Equal(t, int64(-5000), reversal.Amount)
	require.NotNil(t, reversal.FromAccount)
	assert.Equal(t, provider, *reversal.FromAccount)
	require.NotNil(t, reversal.ToAccount)
	assert.Equal(t, buyer, *reversal.ToAccount)
	require.NotNil(t, reversal.OriginalTransactionID)
	assert.Equal(t, tx.ID, *reversal.OriginalTransactionID)

	original, err := svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusReversed, original.Status)
	assert.Equal(t, "lead disputed", original.ReversalReason)
	require.NotNil(t, original.ReversalTransactionID)
	assert.Equal(t, reversal.ID, *original.ReversalTransactionID)
	assert.NotNil(t, original.ReversedAt)

	// The reversed original drops out of the completed sum, so the
	// provider is back at the pre-payout value.
	after, err := svc.Balance(ctx, provider)
	require.NoError(t, err)
	assert.Equal(t, int64(0), after.AvailableBalance)

	buyerBalance, err := svc.Balance(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(0), buyerBalance.AvailableBalance)

	// Reversing twice conflicts.
	_, err = svc.Reverse(ctx, tx.ID, "again")
	assert.ErrorIs(t, err, ledger.ErrStateConflict)

	// Reversing a pending transaction conflicts.
	pending, err := svc.Record(ctx, ledger.RecordParams{
		Type: ledger.TypeLeadPayout, Amount: 1000,
		FromAccount: &buyer, ToAccount: &provider,
	})
	require.NoError(t, err)

	_, err = svc.Reverse(ctx, pending.ID, "too soon")
	assert.ErrorIs(t, err, ledger.ErrStateConflict)
}

// TestService_BalanceReplay checks that the derived balance always equals an
// independent replay of the transaction history.
func TestService_BalanceReplay(t *testing.T) {
	repo := newMemRepo()
	svc := ledger.NewService(repo)
	ctx := context.Background()

	buyer, provider := uuid.New(), uuid.New()

	var completedIDs []uuid.UUID

	for i := 0; i < 8; i++ {
		tx, err := svc.Record(ctx, ledger.RecordParams{
			Type: ledger.TypeLeadPayout, Amount: int64(1000 * (i + 1)),
			FromAccount: &buyer, ToAccount: &provider,
		})
		require.NoError(t, err)

		switch i % 3 {
		case 0:
			_, err = svc.Complete(ctx, tx.ID)
			require.NoError(t, err)

			completedIDs = append(completedIDs, tx.ID)
		case 1:
			_, err = svc.Fail(ctx, tx.ID, "declined")
			require.NoError(t, err)
		}
	}

	// Reverse one completed payout.
	_, err := svc.Reverse(ctx, completedIDs[0], "dispute")
	require.NoError(t, err)

	for _, account := range []uuid.UUID{buyer, provider} {
		balance, err := svc.Balance(ctx, account)
		require.NoError(t, err)

		history, err := svc.History(ctx, account)
		require.NoError(t, err)

		var available, pending int64

		for _, tx := range history {
			if tx.Status == ledger.StatusCompleted {
				if tx.ToAccount != nil && *tx.ToAccount == account {
					available += tx.NetAmount
				}

				if tx.FromAccount != nil && *tx.FromAccount == account {
					available -= tx.Amount
				}
			}

			if tx.Status == ledger.StatusPending && tx.ToAccount != nil && *tx.ToAccount == account {
				pending += tx.NetAmount
			}
		}

		assert.Equal(t, available, balance.AvailableBalance, "available for %s", account)
		assert.Equal(t, pending, balance.PendingBalance, "pending for %s", account)
	}
}

// TestService_CompleteRace checks that two callers racing to transition the
// same pending transaction cannot both succeed.
func TestService_CompleteRace(t *testing.T) {
	repo := newMemRepo()
	svc := ledger.NewService(repo)
	ctx := context.Background()

	buyer, provider := uuid.New(), uuid.New()

	tx, err := svc.Record(ctx, ledger.RecordParams{
		Type: ledger.TypeLeadPayout, Amount: 5000,
		FromAccount: &buyer, ToAccount: &provider,
	})
	require.NoError(t, err)

	const racers = 8

	var wg sync.WaitGroup

	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		i := i
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, errs[i] = svc.Complete(ctx, tx.ID)
		}()
	}

	wg.Wait()

	var succeeded int

	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ledger.ErrStateConflict)
		}
	}

	assert.Equal(t, 1, succeeded)
}

func TestService_RecordLeadPayout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	connID, leadID := uuid.New(), uuid.New()
	buyer, provider := uuid.New(), uuid.New()

	repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *ledger.Transaction) error {
			assert.Equal(t, ledger.TypeLeadPayout, tx.Type)
			assert.Equal(t, ledger.StatusPending, tx.Status)
			assert.Equal(t, int64(7500), tx.Amount)
			assert.Equal(t, int64(7500), tx.NetAmount)
			assert.Equal(t, buyer, *tx.FromAccount)
			assert.Equal(t, provider, *tx.ToAccount)
			assert.Equal(t, leadID, *tx.LeadID)
			assert.Equal(t, connID, *tx.ConnectionID)

			tx.ID = uuid.New()
			tx.CreatedAt = time.Now()

			return nil
		})

	payout, err := svc.RecordLeadPayout(context.Background(), ledger.LeadPayoutParams{
		ConnectionID: connID,
		LeadID:       leadID,
		BuyerID:      buyer,
		ProviderID:   provider,
		Amount:       7500,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, payout.ID)
}

func TestService_RecordRepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(errors.New("db error"))

	_, err := svc.Record(context.Background(), ledger.RecordParams{
		Type:   ledger.TypeAdjustment,
		Amount: 100,
	})
	assert.Error(t, err)
}
