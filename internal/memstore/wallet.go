package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

type pairKey struct {
	userID     string
	categoryID string
}

type refKey struct {
	userID      string
	categoryID  string
	referenceID string
	txType      string
}

// WalletStore is an in-memory repository.Wallet. Balances are materialized
// alongside ledger appends, mirroring the Postgres implementation.
type WalletStore struct {
	mu           sync.RWMutex
	transactions []domain.WalletTransaction
	balances     map[pairKey]*domain.WalletBalance
	references   map[refKey]struct{}
}

// NewWalletStore creates an empty wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		balances:   make(map[pairKey]*domain.WalletBalance),
		references: make(map[refKey]struct{}),
	}
}

func (s *WalletStore) refTaken(tx domain.WalletTransaction) bool {
	if tx.ReferenceID == "" {
		return false
	}
	_, ok := s.references[refKey{tx.UserID, tx.CategoryID, tx.ReferenceID, tx.Type}]
	return ok
}

func (s *WalletStore) appendLocked(tx domain.WalletTransaction) {
	s.transactions = append(s.transactions, tx)
	if tx.ReferenceID != "" {
		s.references[refKey{tx.UserID, tx.CategoryID, tx.ReferenceID, tx.Type}] = struct{}{}
	}
	key := pairKey{tx.UserID, tx.CategoryID}
	bal, ok := s.balances[key]
	if !ok {
		bal = &domain.WalletBalance{UserID: tx.UserID, CategoryID: tx.CategoryID}
		s.balances[key] = bal
	}
	bal.Balance += tx.Amount
	bal.UpdatedAt = tx.Timestamp
}

// RecordTransaction appends one entry, rejecting duplicate reference ids.
func (s *WalletStore) RecordTransaction(_ context.Context, tx domain.WalletTransaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refTaken(tx) {
		return domain.ErrDuplicateReference
	}
	s.appendLocked(tx)
	return nil
}

// RecordTransfer appends the out/in pair atomically.
func (s *WalletStore) RecordTransfer(_ context.Context, out, in domain.WalletTransaction) error {
	if err := out.Validate(); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refTaken(out) || s.refTaken(in) {
		return domain.ErrDuplicateReference
	}
	s.appendLocked(out)
	s.appendLocked(in)
	return nil
}

// GetBalance returns the materialized balance, zero for unseen pairs.
func (s *WalletStore) GetBalance(_ context.Context, userID, categoryID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if bal, ok := s.balances[pairKey{userID, categoryID}]; ok {
		return bal.Balance, nil
	}
	return 0, nil
}

// GetTransactions returns ledger entries ordered by timestamp ascending.
func (s *WalletStore) GetTransactions(_ context.Context, userID, categoryID string, from, to *time.Time) ([]domain.WalletTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.WalletTransaction
	for _, tx := range s.transactions {
		if tx.UserID != userID || tx.CategoryID != categoryID {
			continue
		}
		if from != nil && tx.Timestamp.Before(*from) {
			continue
		}
		if to != nil && tx.Timestamp.After(*to) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// ListBalances returns every balance row for a category.
func (s *WalletStore) ListBalances(_ context.Context, categoryID string) ([]domain.WalletBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.WalletBalance
	for _, bal := range s.balances {
		if bal.CategoryID == categoryID {
			out = append(out, *bal)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// ListBalancesByUser returns every balance row for a user.
func (s *WalletStore) ListBalancesByUser(_ context.Context, userID string) ([]domain.WalletBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.WalletBalance
	for _, bal := range s.balances {
		if bal.UserID == userID {
			out = append(out, *bal)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

// SumByTypeInWindow aggregates amounts of one type per user over [start, end).
func (s *WalletStore) SumByTypeInWindow(_ context.Context, categoryID, txType string, start, end time.Time) ([]domain.UserAmount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sums := make(map[string]int64)
	for _, tx := range s.transactions {
		if tx.CategoryID != categoryID || tx.Type != txType {
			continue
		}
		if tx.Timestamp.Before(start) || !tx.Timestamp.Before(end) {
			continue
		}
		sums[tx.UserID] += tx.Amount
	}
	out := make([]domain.UserAmount, 0, len(sums))
	for userID, amount := range sums {
		out = append(out, domain.UserAmount{UserID: userID, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// TransactionCount returns the total ledger length, used by isolation tests.
func (s *WalletStore) TransactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}
