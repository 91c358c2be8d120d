package repository

import (
	"context"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// Rule defines the interface for rule persistence.
type Rule interface {
	// Create fails with domain.ErrDuplicateID when the id exists.
	Create(ctx context.Context, rule domain.Rule) error

	// Update fails with domain.ErrRuleNotFound when the id does not exist.
	Update(ctx context.Context, rule domain.Rule) error

	// Delete is idempotent.
	Delete(ctx context.Context, ruleID string) error

	// GetByID returns the rule or domain.ErrRuleNotFound.
	GetByID(ctx context.Context, ruleID string) (*domain.Rule, error)

	// List returns all rules ordered by id ascending. activeOnly filters to
	// active rules.
	List(ctx context.Context, activeOnly bool) ([]domain.Rule, error)

	// ListByTrigger returns active rules whose trigger set contains
	// eventType, ordered by id ascending for deterministic evaluation.
	ListByTrigger(ctx context.Context, eventType string) ([]domain.Rule, error)

	// SetActive toggles a rule, returning domain.ErrRuleNotFound when absent.
	SetActive(ctx context.Context, ruleID string, active bool) error
}
