package repository

import (
	"context"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// Webhook defines the interface for webhook registration storage.
type Webhook interface {
	Create(ctx context.Context, hook domain.Webhook) error
	Update(ctx context.Context, hook domain.Webhook) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Webhook, error)
	List(ctx context.Context) ([]domain.Webhook, error)
}
