package repository

import (
	"context"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// UserState defines the interface for user state persistence.
type UserState interface {
	// GetByUser returns the user's state, or a fresh empty state when the
	// user has never been seen.
	GetByUser(ctx context.Context, userID string) (*domain.UserState, error)

	// Save persists the full state atomically. Callers hold the per-user
	// lock, so a plain read-modify-write is safe.
	Save(ctx context.Context, state *domain.UserState) error

	// ListBadgeCounts returns badge counts for every user with at least one
	// badge.
	ListBadgeCounts(ctx context.Context) ([]domain.UserCount, error)

	// ListTrophyCounts returns trophy counts for every user with at least one
	// trophy.
	ListTrophyCounts(ctx context.Context) ([]domain.UserCount, error)
}
