package repository

import (
	"context"
	"time"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// Wallet defines the interface for the wallet ledger. The ledger is the
// system of record; the balance rows are a materialization kept in step with
// ledger writes inside the same transaction.
type Wallet interface {
	// RecordTransaction appends one ledger entry and bumps the balance
	// atomically. When the entry carries a reference id and another entry
	// with the same (userId, categoryId, referenceId, type) exists, it fails
	// with domain.ErrDuplicateReference and writes nothing.
	RecordTransaction(ctx context.Context, tx domain.WalletTransaction) error

	// RecordTransfer appends the transfer-out/transfer-in pair and adjusts
	// both balances in a single transaction. Duplicate reference ids fail
	// the whole pair with domain.ErrDuplicateReference.
	RecordTransfer(ctx context.Context, out, in domain.WalletTransaction) error

	// GetBalance returns the materialized balance, zero for unseen pairs.
	GetBalance(ctx context.Context, userID, categoryID string) (int64, error)

	// GetTransactions returns ledger entries for a pair ordered by timestamp
	// ascending, optionally bounded by [from, to].
	GetTransactions(ctx context.Context, userID, categoryID string, from, to *time.Time) ([]domain.WalletTransaction, error)

	// ListBalances returns every balance row for a category.
	ListBalances(ctx context.Context, categoryID string) ([]domain.WalletBalance, error)

	// ListBalancesByUser returns every balance row for a user.
	ListBalancesByUser(ctx context.Context, userID string) ([]domain.WalletBalance, error)

	// SumByTypeInWindow aggregates ledger amounts of one type per user over
	// [start, end). The leaderboard projector uses it for windowed ranges.
	SumByTypeInWindow(ctx context.Context, categoryID, txType string, start, end time.Time) ([]domain.UserAmount, error)
}
