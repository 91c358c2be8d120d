package repository

import (
	"context"
	"time"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// RewardHistory defines the interface for the append-only reward history.
type RewardHistory interface {
	// Append stores one execution record.
	Append(ctx context.Context, entry domain.RewardHistory) error

	// Exists reports whether a record for the idempotency triple is present.
	Exists(ctx context.Context, triggerEventID, ruleID string, position int) (bool, error)

	// GetByUser returns the user's history ordered by awardedAt descending,
	// with 1-based pagination.
	GetByUser(ctx context.Context, userID string, page, pageSize int) ([]domain.RewardHistory, error)

	// CountByTypeInWindow counts successful executions of one reward type per
	// user over [start, end). Used by windowed badge/trophy leaderboards.
	CountByTypeInWindow(ctx context.Context, rewardType string, start, end time.Time) ([]domain.UserCount, error)
}
