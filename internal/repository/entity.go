package repository

import (
	"context"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// Entity defines the interface for the badge/trophy/level/point-category/
// event-definition catalog tables. Creates fail with domain.ErrDuplicateID on
// duplicates, updates with a not-found error when absent, deletes are
// idempotent.
type Entity interface {
	CreateBadge(ctx context.Context, badge domain.Badge) error
	UpdateBadge(ctx context.Context, badge domain.Badge) error
	DeleteBadge(ctx context.Context, id string) error
	GetBadge(ctx context.Context, id string) (*domain.Badge, error)
	ListBadges(ctx context.Context, visibleOnly bool) ([]domain.Badge, error)

	CreateTrophy(ctx context.Context, trophy domain.Trophy) error
	UpdateTrophy(ctx context.Context, trophy domain.Trophy) error
	DeleteTrophy(ctx context.Context, id string) error
	GetTrophy(ctx context.Context, id string) (*domain.Trophy, error)
	ListTrophies(ctx context.Context, visibleOnly bool) ([]domain.Trophy, error)

	CreateLevel(ctx context.Context, level domain.Level) error
	UpdateLevel(ctx context.Context, level domain.Level) error
	DeleteLevel(ctx context.Context, id string) error
	GetLevel(ctx context.Context, id string) (*domain.Level, error)
	ListLevels(ctx context.Context) ([]domain.Level, error)
	ListLevelsByCategory(ctx context.Context, category string) ([]domain.Level, error)

	CreatePointCategory(ctx context.Context, category domain.PointCategory) error
	UpdatePointCategory(ctx context.Context, category domain.PointCategory) error
	DeletePointCategory(ctx context.Context, id string) error
	GetPointCategory(ctx context.Context, id string) (*domain.PointCategory, error)
	ListPointCategories(ctx context.Context) ([]domain.PointCategory, error)

	CreateEventDefinition(ctx context.Context, def domain.EventDefinition) error
	UpdateEventDefinition(ctx context.Context, def domain.EventDefinition) error
	DeleteEventDefinition(ctx context.Context, id string) error
	GetEventDefinition(ctx context.Context, id string) (*domain.EventDefinition, error)
	ListEventDefinitions(ctx context.Context) ([]domain.EventDefinition, error)
}
