// Package wallet implements the point ledger service. The ledger is the
// authority; balances are a materialization the repository keeps in step.
package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osmith/BadgeForge_Go/internal/concurrency"
	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/logger"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

// Service serializes wallet mutations per user on top of the ledger
// repository. Transfers take both user locks in canonical order.
type Service struct {
	repo          repository.Wallet
	locks         *concurrency.LockManager
	allowNegative bool
}

// NewService creates a wallet service. When allowNegative is false, debits
// fail on underfunded wallets and penalties clamp at zero.
func NewService(repo repository.Wallet, locks *concurrency.LockManager, allowNegative bool) *Service {
	return &Service{
		repo:          repo,
		locks:         locks,
		allowNegative: allowNegative,
	}
}

// Credit records a signed ledger entry and bumps the balance. Positive
// amounts require one of the credit entry types. Negative amounts are the
// penalty path; when the category is bounded they clamp so the balance never
// goes below zero, and a fully clamped penalty writes nothing.
func (s *Service) Credit(ctx context.Context, userID, categoryID string, amount int64, txType, description, referenceID string, metadata map[string]any) (domain.WalletTransaction, error) {
	if amount == 0 {
		return domain.WalletTransaction{}, fmt.Errorf("%w: amount must not be zero", domain.ErrInvalidInput)
	}
	if !domain.CreditTxType(txType) {
		return domain.WalletTransaction{}, fmt.Errorf("%w: %q is not a credit transaction type", domain.ErrInvalidInput, txType)
	}
	if amount < 0 && txType != domain.TxPenalty && txType != domain.TxAdjustment {
		return domain.WalletTransaction{}, fmt.Errorf("%w: negative amount requires penalty or adjustment type", domain.ErrInvalidInput)
	}

	var (
		tx  domain.WalletTransaction
		err error
	)
	s.locks.WithLock(userID, func() {
		applied := amount
		if applied < 0 && !s.allowNegative {
			var balance int64
			balance, err = s.repo.GetBalance(ctx, userID, categoryID)
			if err != nil {
				return
			}
			if balance+applied < 0 {
				applied = -balance
			}
		}
		if applied == 0 {
			logger.FromContext(ctx).Debug("penalty fully clamped, nothing to record",
				"userId", userID, "categoryId", categoryID)
			return
		}
		tx = s.newTransaction(userID, categoryID, txType, applied, description, referenceID, metadata)
		err = s.repo.RecordTransaction(ctx, tx)
	})
	if err != nil {
		return domain.WalletTransaction{}, err
	}
	return tx, nil
}

// Debit records a spend. The amount parameter is strictly positive; the
// ledger entry carries it negated. Underfunded wallets fail with
// domain.ErrInsufficientBalance unless negative balances are allowed.
func (s *Service) Debit(ctx context.Context, userID, categoryID string, amount int64, description, referenceID string, metadata map[string]any) (domain.WalletTransaction, error) {
	if amount <= 0 {
		return domain.WalletTransaction{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}

	var (
		tx  domain.WalletTransaction
		err error
	)
	s.locks.WithLock(userID, func() {
		if !s.allowNegative {
			var balance int64
			balance, err = s.repo.GetBalance(ctx, userID, categoryID)
			if err != nil {
				return
			}
			if balance < amount {
				err = fmt.Errorf("%w: balance %d, requested %d", domain.ErrInsufficientBalance, balance, amount)
				return
			}
		}
		tx = s.newTransaction(userID, categoryID, domain.TxSpend, -amount, description, referenceID, metadata)
		err = s.repo.RecordTransaction(ctx, tx)
	})
	if err != nil {
		return domain.WalletTransaction{}, err
	}
	return tx, nil
}

// Transfer moves points between two users as an atomic transfer-out and
// transfer-in pair sharing a reference id and timestamp. Both entries persist
// together or not at all.
func (s *Service) Transfer(ctx context.Context, fromUserID, toUserID, categoryID string, amount int64, description, referenceID string, metadata map[string]any) (out, in domain.WalletTransaction, err error) {
	if amount <= 0 {
		return domain.WalletTransaction{}, domain.WalletTransaction{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	if fromUserID == toUserID {
		return domain.WalletTransaction{}, domain.WalletTransaction{}, domain.ErrSelfTransfer
	}
	if referenceID == "" {
		referenceID = uuid.NewString()
	}

	unlock := s.locks.LockPair(fromUserID, toUserID)
	defer unlock()

	if !s.allowNegative {
		balance, balErr := s.repo.GetBalance(ctx, fromUserID, categoryID)
		if balErr != nil {
			return domain.WalletTransaction{}, domain.WalletTransaction{}, balErr
		}
		if balance < amount {
			return domain.WalletTransaction{}, domain.WalletTransaction{},
				fmt.Errorf("%w: balance %d, requested %d", domain.ErrInsufficientBalance, balance, amount)
		}
	}

	now := time.Now().UTC()
	out = s.newTransaction(fromUserID, categoryID, domain.TxTransferOut, -amount, description, referenceID, metadata)
	in = s.newTransaction(toUserID, categoryID, domain.TxTransferIn, amount, description, referenceID, metadata)
	out.Timestamp = now
	in.Timestamp = now

	if err := s.repo.RecordTransfer(ctx, out, in); err != nil {
		return domain.WalletTransaction{}, domain.WalletTransaction{}, err
	}
	return out, in, nil
}

// GetBalance returns the materialized balance, zero for unseen pairs.
func (s *Service) GetBalance(ctx context.Context, userID, categoryID string) (int64, error) {
	return s.repo.GetBalance(ctx, userID, categoryID)
}

// GetTransactions returns ledger entries ordered by timestamp ascending,
// optionally bounded by [from, to].
func (s *Service) GetTransactions(ctx context.Context, userID, categoryID string, from, to *time.Time) ([]domain.WalletTransaction, error) {
	return s.repo.GetTransactions(ctx, userID, categoryID, from, to)
}

// ListBalances returns every balance row for a user across categories.
func (s *Service) ListBalances(ctx context.Context, userID string) ([]domain.WalletBalance, error) {
	return s.repo.ListBalancesByUser(ctx, userID)
}

func (s *Service) newTransaction(userID, categoryID, txType string, amount int64, description, referenceID string, metadata map[string]any) domain.WalletTransaction {
	return domain.WalletTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		CategoryID:  categoryID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		ReferenceID: referenceID,
		Metadata:    metadata,
		Timestamp:   time.Now().UTC(),
	}
}
