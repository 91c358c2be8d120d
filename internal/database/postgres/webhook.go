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

type webhookRepository struct {
	db *pgxpool.Pool
}

// NewWebhookRepository creates a new PostgreSQL webhook registry repository
func NewWebhookRepository(db *pgxpool.Pool) repository.Webhook {
	return &webhookRepository{db: db}
}

func (r *webhookRepository) Create(ctx context.Context, hook domain.Webhook) error {
	query := `
		INSERT INTO webhooks (webhook_id, url, event_types, secret, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	eventTypes, err := marshalEventTypes(hook.EventTypes)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertWebhook, err)
	}
	_, err = r.db.Exec(ctx, query, hook.ID, hook.URL, eventTypes, hook.Secret, hook.Active, hook.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertWebhook, err)
	}
	return nil
}

func (r *webhookRepository) Update(ctx context.Context, hook domain.Webhook) error {
	query := `
		UPDATE webhooks
		SET url = $2, event_types = $3, secret = $4, active = $5
		WHERE webhook_id = $1
	`
	eventTypes, err := marshalEventTypes(hook.EventTypes)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateWebhook, err)
	}
	tag, err := r.db.Exec(ctx, query, hook.ID, hook.URL, eventTypes, hook.Secret, hook.Active)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateWebhook, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWebhookNotFound
	}
	return nil
}

func (r *webhookRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM webhooks WHERE webhook_id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToDeleteWebhook, err)
	}
	return nil
}

func (r *webhookRepository) GetByID(ctx context.Context, id string) (*domain.Webhook, error) {
	query := `
		SELECT webhook_id, url, event_types, secret, active, created_at
		FROM webhooks
		WHERE webhook_id = $1
	`
	hook, err := scanWebhook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWebhookNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetWebhook, err)
	}
	return hook, nil
}

func (r *webhookRepository) List(ctx context.Context) ([]domain.Webhook, error) {
	query := `
		SELECT webhook_id, url, event_types, secret, active, created_at
		FROM webhooks
		ORDER BY webhook_id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryWebhooks, err)
	}
	defer rows.Close()

	hooks := []domain.Webhook{}
	for rows.Next() {
		hook, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryWebhooks, err)
		}
		hooks = append(hooks, *hook)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryWebhooks, err)
	}
	return hooks, nil
}

func marshalEventTypes(types []string) ([]byte, error) {
	if len(types) == 0 {
		return nil, nil
	}
	return marshalJSONB(types)
}

func scanWebhook(row pgx.Row) (*domain.Webhook, error) {
	var hook domain.Webhook
	var eventTypes []byte
	err := row.Scan(&hook.ID, &hook.URL, &eventTypes, &hook.Secret, &hook.Active, &hook.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(eventTypes, &hook.EventTypes); err != nil {
		return nil, err
	}
	return &hook, nil
}
