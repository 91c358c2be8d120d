package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

type eventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new PostgreSQL event store repository
func NewEventRepository(db *pgxpool.Pool) repository.Event {
	return &eventRepository{db: db}
}

// Store persists an event. Duplicate event ids are a successful no-op.
func (r *eventRepository) Store(ctx context.Context, event domain.Event) error {
	query := `
		INSERT INTO events (event_id, event_type, user_id, occurred_at, attributes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING
	`

	attrs, err := marshalJSONB(event.Attributes)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToMarshalEventData, err)
	}

	if _, err := r.db.Exec(ctx, query, event.ID, event.Type, event.UserID, event.OccurredAt, attrs); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertEvent, err)
	}
	return nil
}

// GetByID retrieves a single event
func (r *eventRepository) GetByID(ctx context.Context, eventID string) (*domain.Event, error) {
	query := `
		SELECT event_id, event_type, user_id, occurred_at, attributes
		FROM events
		WHERE event_id = $1
	`

	ev, err := scanEvent(r.db.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetEvent, err)
	}
	return ev, nil
}

// GetByUser retrieves a user's events ordered by occurrence time
func (r *eventRepository) GetByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Event, error) {
	query := `
		SELECT event_id, event_type, user_id, occurred_at, attributes
		FROM events
		WHERE user_id = $1
		ORDER BY occurred_at ASC, event_id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, clampLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryEvents, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetByType retrieves events of one type ordered by occurrence time
func (r *eventRepository) GetByType(ctx context.Context, eventType string, limit, offset int) ([]domain.Event, error) {
	query := `
		SELECT event_id, event_type, user_id, occurred_at, attributes
		FROM events
		WHERE event_type = $1
		ORDER BY occurred_at ASC, event_id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, eventType, clampLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryEvents, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetByUserAndType retrieves up to limit most recent matching events,
// returned in ascending order for condition evaluation.
func (r *eventRepository) GetByUserAndType(ctx context.Context, userID, eventType string, limit int) ([]domain.Event, error) {
	query := `
		SELECT event_id, event_type, user_id, occurred_at, attributes
		FROM (
			SELECT event_id, event_type, user_id, occurred_at, attributes
			FROM events
			WHERE user_id = $1 AND event_type = $2
			ORDER BY occurred_at DESC, event_id DESC
			LIMIT $3
		) recent
		ORDER BY occurred_at ASC, event_id ASC
	`

	rows, err := r.db.Query(ctx, query, userID, eventType, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryEvents, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > repository.MaxEventPageSize {
		return repository.MaxEventPageSize
	}
	return limit
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var ev domain.Event
	var attrs []byte
	if err := row.Scan(&ev.ID, &ev.Type, &ev.UserID, &ev.OccurredAt, &attrs); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(attrs, &ev.Attributes); err != nil {
		return nil, err
	}
	return &ev, nil
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	events := []domain.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryEvents, err)
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryEvents, err)
	}
	return events, nil
}
