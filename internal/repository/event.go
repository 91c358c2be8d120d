package repository

import (
	"context"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// MaxEventPageSize bounds event pagination.
const MaxEventPageSize = 1000

// Event defines the interface for the append-only event store.
type Event interface {
	// Store persists an event. Idempotent on event ID: storing a duplicate
	// is a successful no-op.
	Store(ctx context.Context, event domain.Event) error

	// GetByID returns the event or domain.ErrEventNotFound.
	GetByID(ctx context.Context, eventID string) (*domain.Event, error)

	// GetByUser returns the user's events ordered by occurredAt ascending.
	GetByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Event, error)

	// GetByType returns events of one type ordered by occurredAt ascending.
	GetByType(ctx context.Context, eventType string, limit, offset int) ([]domain.Event, error)

	// GetByUserAndType returns up to limit most recent events of one type for
	// a user, ordered by occurredAt ascending. The rule evaluator uses this
	// to load condition history slices.
	GetByUserAndType(ctx context.Context, userID, eventType string, limit int) ([]domain.Event, error)
}
