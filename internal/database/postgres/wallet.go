package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

type walletRepository struct {
	db *pgxpool.Pool
}

// NewWalletRepository creates a new PostgreSQL wallet ledger repository
func NewWalletRepository(db *pgxpool.Pool) repository.Wallet {
	return &walletRepository{db: db}
}

// RecordTransaction appends one ledger entry and bumps the materialized
// balance in a single transaction. Duplicate reference ids fail with
// domain.ErrDuplicateReference and write nothing.
func (r *walletRepository) RecordTransaction(ctx context.Context, tx domain.WalletTransaction) error {
	dbTx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, dbTx)

	if err := insertLedgerEntry(ctx, dbTx, tx); err != nil {
		return err
	}
	if err := bumpBalance(ctx, dbTx, tx); err != nil {
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err)
	}
	return nil
}

// RecordTransfer appends the transfer-out/transfer-in pair and adjusts both
// balances atomically
func (r *walletRepository) RecordTransfer(ctx context.Context, out, in domain.WalletTransaction) error {
	dbTx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, dbTx)

	for _, entry := range []domain.WalletTransaction{out, in} {
		if err := insertLedgerEntry(ctx, dbTx, entry); err != nil {
			return err
		}
		if err := bumpBalance(ctx, dbTx, entry); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToCommitTransaction, err)
	}
	return nil
}

// GetBalance returns the materialized balance, zero for unseen pairs
func (r *walletRepository) GetBalance(ctx context.Context, userID, categoryID string) (int64, error) {
	query := `
		SELECT COALESCE(
			(SELECT balance FROM wallet_balances WHERE user_id = $1 AND category_id = $2),
			0
		)
	`
	var balance int64
	if err := r.db.QueryRow(ctx, query, userID, categoryID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToGetBalance, err)
	}
	return balance, nil
}

// GetTransactions returns ledger entries for a pair ordered by timestamp
// ascending, optionally bounded by [from, to]
func (r *walletRepository) GetTransactions(ctx context.Context, userID, categoryID string, from, to *time.Time) ([]domain.WalletTransaction, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT tx_id, user_id, category_id, tx_type, amount, description, reference_id, metadata, ts
		FROM wallet_transactions
		WHERE user_id = $1 AND category_id = $2`)

	args := []any{userID, categoryID}
	argNum := 3

	if from != nil {
		fmt.Fprintf(&queryBuilder, " AND ts >= $%d", argNum)
		args = append(args, *from)
		argNum++
	}
	if to != nil {
		fmt.Fprintf(&queryBuilder, " AND ts <= $%d", argNum)
		args = append(args, *to)
	}

	queryBuilder.WriteString(" ORDER BY ts ASC, tx_id ASC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryTransactions, err)
	}
	defer rows.Close()

	txs := []domain.WalletTransaction{}
	for rows.Next() {
		var tx domain.WalletTransaction
		var metadata []byte
		err := rows.Scan(&tx.ID, &tx.UserID, &tx.CategoryID, &tx.Type, &tx.Amount,
			&tx.Description, &tx.ReferenceID, &metadata, &tx.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryTransactions, err)
		}
		if err := unmarshalJSONB(metadata, &tx.Metadata); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryTransactions, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryTransactions, err)
	}
	return txs, nil
}

// ListBalances returns every balance row for a category
func (r *walletRepository) ListBalances(ctx context.Context, categoryID string) ([]domain.WalletBalance, error) {
	query := `
		SELECT user_id, category_id, balance, updated_at
		FROM wallet_balances
		WHERE category_id = $1
		ORDER BY user_id ASC
	`
	return r.scanBalances(r.db.Query(ctx, query, categoryID))
}

// ListBalancesByUser returns every balance row for a user
func (r *walletRepository) ListBalancesByUser(ctx context.Context, userID string) ([]domain.WalletBalance, error) {
	query := `
		SELECT user_id, category_id, balance, updated_at
		FROM wallet_balances
		WHERE user_id = $1
		ORDER BY category_id ASC
	`
	return r.scanBalances(r.db.Query(ctx, query, userID))
}

// SumByTypeInWindow aggregates ledger amounts of one type per user over
// [start, end)
func (r *walletRepository) SumByTypeInWindow(ctx context.Context, categoryID, txType string, start, end time.Time) ([]domain.UserAmount, error) {
	query := `
		SELECT user_id, COALESCE(SUM(amount), 0)
		FROM wallet_transactions
		WHERE category_id = $1 AND tx_type = $2 AND ts >= $3 AND ts < $4
		GROUP BY user_id
		ORDER BY user_id ASC
	`
	rows, err := r.db.Query(ctx, query, categoryID, txType, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToSumLedgerWindow, err)
	}
	defer rows.Close()

	sums := []domain.UserAmount{}
	for rows.Next() {
		var ua domain.UserAmount
		if err := rows.Scan(&ua.UserID, &ua.Amount); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToSumLedgerWindow, err)
		}
		sums = append(sums, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToSumLedgerWindow, err)
	}
	return sums, nil
}

func (r *walletRepository) scanBalances(rows pgx.Rows, err error) ([]domain.WalletBalance, error) {
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryBalances, err)
	}
	defer rows.Close()

	balances := []domain.WalletBalance{}
	for rows.Next() {
		var b domain.WalletBalance
		if err := rows.Scan(&b.UserID, &b.CategoryID, &b.Balance, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryBalances, err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryBalances, err)
	}
	return balances, nil
}

func insertLedgerEntry(ctx context.Context, dbTx pgx.Tx, tx domain.WalletTransaction) error {
	query := `
		INSERT INTO wallet_transactions (tx_id, user_id, category_id, tx_type, amount, description, reference_id, metadata, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	metadata, err := marshalJSONB(tx.Metadata)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertLedgerEntry, err)
	}

	_, err = dbTx.Exec(ctx, query, tx.ID, tx.UserID, tx.CategoryID, tx.Type, tx.Amount,
		tx.Description, tx.ReferenceID, metadata, tx.Timestamp)
	if err != nil {
		if isUniqueViolation(err, ConstraintWalletTxReference) {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertLedgerEntry, err)
	}
	return nil
}

func bumpBalance(ctx context.Context, dbTx pgx.Tx, tx domain.WalletTransaction) error {
	query := `
		INSERT INTO wallet_balances (user_id, category_id, balance, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, category_id) DO UPDATE SET
			balance = wallet_balances.balance + EXCLUDED.balance,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := dbTx.Exec(ctx, query, tx.UserID, tx.CategoryID, tx.Amount, tx.Timestamp); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateBalance, err)
	}
	return nil
}
