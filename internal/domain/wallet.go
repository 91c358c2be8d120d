package domain

import (
	"fmt"
	"time"
)

// Wallet transaction types. The ledger is the system of record; the balance
// column is a cached materialization of its sum.
const (
	TxEarn        = "earn"
	TxSpend       = "spend"
	TxTransferIn  = "transfer-in"
	TxTransferOut = "transfer-out"
	TxRefund      = "refund"
	TxPenalty     = "penalty"
	TxAdjustment  = "adjustment"
)

// CreditTxType reports whether t is a valid type for a credit entry.
func CreditTxType(t string) bool {
	switch t {
	case TxEarn, TxTransferIn, TxRefund, TxAdjustment, TxPenalty:
		return true
	}
	return false
}

// WalletBalance is the materialized balance for one (user, category) pair.
type WalletBalance struct {
	UserID     string    `json:"userId"`
	CategoryID string    `json:"categoryId"`
	Balance    int64     `json:"balance"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// WalletTransaction is one ledger entry. A transfer-out has exactly one
// matching transfer-in sharing ReferenceID and Timestamp.
type WalletTransaction struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	CategoryID  string         `json:"categoryId"`
	Type        string         `json:"type"`
	Amount      int64          `json:"amount"`
	Description string         `json:"description,omitempty"`
	ReferenceID string         `json:"referenceId,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Validate checks the structural transaction invariants.
func (t WalletTransaction) Validate() error {
	if t.UserID == "" || t.CategoryID == "" {
		return fmt.Errorf("%w: userId and categoryId are required", ErrInvalidInput)
	}
	if t.Amount == 0 {
		return fmt.Errorf("%w: amount must not be zero", ErrInvalidInput)
	}
	return nil
}

// UserAmount pairs a user with an aggregated signed amount, used by
// leaderboard window queries.
type UserAmount struct {
	UserID string
	Amount int64
}

// UserCount pairs a user with an achievement count.
type UserCount struct {
	UserID string
	Count  int64
}
