package wallet

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmith/BadgeForge_Go/internal/concurrency"
	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/memstore"
)

func newTestService(allowNegative bool) (*Service, *memstore.WalletStore) {
	store := memstore.NewWalletStore()
	return NewService(store, concurrency.NewLockManager(), allowNegative), store
}

func TestCredit_BumpsBalance(t *testing.T) {
	// ARRANGE
	svc, _ := newTestService(false)
	ctx := context.Background()

	// ACT
	tx, err := svc.Credit(ctx, "user-1", "gold", 100, domain.TxEarn, "quest reward", "", nil)

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, int64(100), tx.Amount)
	assert.NotEmpty(t, tx.ID)

	balance, err := svc.GetBalance(ctx, "user-1", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
}

func TestCredit_RejectsInvalidInput(t *testing.T) {
	svc, store := newTestService(false)
	ctx := context.Background()

	// CASE 1: zero amount
	_, err := svc.Credit(ctx, "user-1", "gold", 0, domain.TxEarn, "", "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// CASE 2: spend is not a credit type
	_, err = svc.Credit(ctx, "user-1", "gold", 100, domain.TxSpend, "", "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// CASE 3: negative amount on a non-penalty type
	_, err = svc.Credit(ctx, "user-1", "gold", -50, domain.TxEarn, "", "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, 0, store.TransactionCount())
}

func TestCredit_PenaltyClampsAtZero(t *testing.T) {
	// ARRANGE: user holds 30 points and the category is bounded
	svc, _ := newTestService(false)
	ctx := context.Background()
	_, err := svc.Credit(ctx, "user-1", "gold", 30, domain.TxEarn, "", "", nil)
	require.NoError(t, err)

	// ACT: a penalty larger than the balance
	tx, err := svc.Credit(ctx, "user-1", "gold", -50, domain.TxPenalty, "cheating", "", nil)

	// ASSERT: clamped to the available balance
	require.NoError(t, err)
	assert.Equal(t, int64(-30), tx.Amount)

	balance, err := svc.GetBalance(ctx, "user-1", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestCredit_PenaltyOnEmptyWallet_WritesNothing(t *testing.T) {
	svc, store := newTestService(false)
	ctx := context.Background()

	tx, err := svc.Credit(ctx, "user-1", "gold", -50, domain.TxPenalty, "", "", nil)

	require.NoError(t, err)
	assert.Zero(t, tx.Amount)
	assert.Equal(t, 0, store.TransactionCount())
}

func TestCredit_PenaltyUnbounded_GoesNegative(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := context.Background()

	_, err := svc.Credit(ctx, "user-1", "gold", -50, domain.TxPenalty, "", "", nil)
	require.NoError(t, err)

	balance, err := svc.GetBalance(ctx, "user-1", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(-50), balance)
}

func TestCredit_DuplicateReference_Conflicts(t *testing.T) {
	svc, store := newTestService(false)
	ctx := context.Background()

	_, err := svc.Credit(ctx, "user-1", "gold", 100, domain.TxEarn, "", "evt-1:rule-1:0", nil)
	require.NoError(t, err)

	// Same (user, category, reference, type) must be rejected.
	_, err = svc.Credit(ctx, "user-1", "gold", 100, domain.TxEarn, "", "evt-1:rule-1:0", nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
	assert.Equal(t, 1, store.TransactionCount())

	balance, err := svc.GetBalance(ctx, "user-1", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
}

func TestDebit_SpendsAndRecordsNegativeEntry(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()
	_, err := svc.Credit(ctx, "user-1", "gold", 100, domain.TxEarn, "", "", nil)
	require.NoError(t, err)

	tx, err := svc.Debit(ctx, "user-1", "gold", 40, "shop purchase", "", nil)

	require.NoError(t, err)
	assert.Equal(t, domain.TxSpend, tx.Type)
	assert.Equal(t, int64(-40), tx.Amount)

	balance, err := svc.GetBalance(ctx, "user-1", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(60), balance)
}

func TestDebit_InsufficientBalance(t *testing.T) {
	svc, store := newTestService(false)
	ctx := context.Background()
	_, err := svc.Credit(ctx, "user-1", "gold", 30, domain.TxEarn, "", "", nil)
	require.NoError(t, err)

	_, err = svc.Debit(ctx, "user-1", "gold", 31, "", "", nil)

	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, 1, store.TransactionCount())
}

func TestDebit_ExactBalance_Succeeds(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()
	_, err := svc.Credit(ctx, "user-1", "gold", 30, domain.TxEarn, "", "", nil)
	require.NoError(t, err)

	_, err = svc.Debit(ctx, "user-1", "gold", 30, "", "", nil)
	require.NoError(t, err)

	balance, err := svc.GetBalance(ctx, "user-1", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestDebit_RejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()

	_, err := svc.Debit(ctx, "user-1", "gold", 0, "", "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Debit(ctx, "user-1", "gold", -5, "", "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_ConservesTotal(t *testing.T) {
	// ARRANGE
	svc, _ := newTestService(false)
	ctx := context.Background()
	_, err := svc.Credit(ctx, "alice", "gold", 100, domain.TxEarn, "", "", nil)
	require.NoError(t, err)

	// ACT
	out, in, err := svc.Transfer(ctx, "alice", "bob", "gold", 40, "gift", "", nil)

	// ASSERT: pair shares reference and timestamp, total is conserved
	require.NoError(t, err)
	assert.Equal(t, domain.TxTransferOut, out.Type)
	assert.Equal(t, domain.TxTransferIn, in.Type)
	assert.Equal(t, int64(-40), out.Amount)
	assert.Equal(t, int64(40), in.Amount)
	assert.Equal(t, out.ReferenceID, in.ReferenceID)
	assert.NotEmpty(t, out.ReferenceID)
	assert.True(t, out.Timestamp.Equal(in.Timestamp))

	aliceBal, err := svc.GetBalance(ctx, "alice", "gold")
	require.NoError(t, err)
	bobBal, err := svc.GetBalance(ctx, "bob", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(60), aliceBal)
	assert.Equal(t, int64(40), bobBal)
	assert.Equal(t, int64(100), aliceBal+bobBal)
}

func TestTransfer_SelfTransferRejected(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()

	_, _, err := svc.Transfer(ctx, "alice", "alice", "gold", 10, "", "", nil)

	assert.ErrorIs(t, err, domain.ErrSelfTransfer)
}

func TestTransfer_InsufficientBalance_WritesNothing(t *testing.T) {
	svc, store := newTestService(false)
	ctx := context.Background()

	_, _, err := svc.Transfer(ctx, "alice", "bob", "gold", 10, "", "", nil)

	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, 0, store.TransactionCount())
}

func TestTransfer_DuplicateReference_RejectsWholePair(t *testing.T) {
	svc, store := newTestService(false)
	ctx := context.Background()
	_, err := svc.Credit(ctx, "alice", "gold", 100, domain.TxEarn, "", "", nil)
	require.NoError(t, err)

	_, _, err = svc.Transfer(ctx, "alice", "bob", "gold", 10, "", "ref-1", nil)
	require.NoError(t, err)

	_, _, err = svc.Transfer(ctx, "alice", "bob", "gold", 10, "", "ref-1", nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)

	// First transfer's pair only.
	assert.Equal(t, 3, store.TransactionCount())

	aliceBal, err := svc.GetBalance(ctx, "alice", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(90), aliceBal)
}

func TestTransfer_ConcurrentOppositeDirections_NoDeadlock(t *testing.T) {
	// ARRANGE: both directions run concurrently; canonical lock ordering
	// keeps them from deadlocking.
	svc, _ := newTestService(false)
	ctx := context.Background()
	_, err := svc.Credit(ctx, "alice", "gold", 1000, domain.TxEarn, "", "", nil)
	require.NoError(t, err)
	_, err = svc.Credit(ctx, "bob", "gold", 1000, domain.TxEarn, "", "", nil)
	require.NoError(t, err)

	// ACT
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, err := svc.Transfer(ctx, "alice", "bob", "gold", 1, "", "", nil)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, _, err := svc.Transfer(ctx, "bob", "alice", "gold", 1, "", "", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// ASSERT: totals conserved
	aliceBal, err := svc.GetBalance(ctx, "alice", "gold")
	require.NoError(t, err)
	bobBal, err := svc.GetBalance(ctx, "bob", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), aliceBal+bobBal)
}

func TestGetTransactions_LedgerMatchesBalance(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()
	_, err := svc.Credit(ctx, "user-1", "gold", 100, domain.TxEarn, "", "", nil)
	require.NoError(t, err)
	_, err = svc.Debit(ctx, "user-1", "gold", 30, "", "", nil)
	require.NoError(t, err)
	_, err = svc.Credit(ctx, "user-1", "gold", -20, domain.TxPenalty, "", "", nil)
	require.NoError(t, err)

	txs, err := svc.GetTransactions(ctx, "user-1", "gold", nil, nil)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	var sum int64
	for _, tx := range txs {
		sum += tx.Amount
	}
	balance, err := svc.GetBalance(ctx, "user-1", "gold")
	require.NoError(t, err)
	assert.Equal(t, balance, sum)
}
