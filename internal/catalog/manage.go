package catalog

import (
	"context"
	"fmt"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/logger"
)

// Management operations write through to the repository, rebuild the
// snapshot, and notify change listeners so dependent caches can evict.

// CreateBadge adds a badge to the catalog.
func (c *Catalog) CreateBadge(ctx context.Context, badge domain.Badge) error {
	if badge.ID == "" {
		return fmt.Errorf("%w: badge id is required", domain.ErrInvalidInput)
	}
	if err := c.repo.CreateBadge(ctx, badge); err != nil {
		return err
	}
	return c.refresh(ctx, "")
}

// UpdateBadge replaces a badge.
func (c *Catalog) UpdateBadge(ctx context.Context, badge domain.Badge) error {
	if err := c.repo.UpdateBadge(ctx, badge); err != nil {
		return err
	}
	return c.refresh(ctx, "")
}

// DeleteBadge removes a badge. Idempotent.
func (c *Catalog) DeleteBadge(ctx context.Context, id string) error {
	if err := c.repo.DeleteBadge(ctx, id); err != nil {
		return err
	}
	return c.refresh(ctx, "")
}

// CreateTrophy adds a trophy to the catalog.
func (c *Catalog) CreateTrophy(ctx context.Context, trophy domain.Trophy) error {
	if trophy.ID == "" {
		return fmt.Errorf("%w: trophy id is required", domain.ErrInvalidInput)
	}
	if err := c.repo.CreateTrophy(ctx, trophy); err != nil {
		return err
	}
	return c.refresh(ctx, "")
}

// UpdateTrophy replaces a trophy.
func (c *Catalog) UpdateTrophy(ctx context.Context, trophy domain.Trophy) error {
	if err := c.repo.UpdateTrophy(ctx, trophy); err != nil {
		return err
	}
	return c.refresh(ctx, "")
}

// DeleteTrophy removes a trophy. Idempotent.
func (c *Catalog) DeleteTrophy(ctx context.Context, id string) error {
	if err := c.repo.DeleteTrophy(ctx, id); err != nil {
		return err
	}
	return c.refresh(ctx, "")
}

// CreateLevel adds a level. Within a category MinPoints values must stay
// strictly increasing, so a duplicate threshold is rejected.
func (c *Catalog) CreateLevel(ctx context.Context, level domain.Level) error {
	if err := level.Validate(); err != nil {
		return err
	}
	if _, ok := c.PointCategory(level.Category); !ok {
		return fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, level.Category)
	}
	for _, existing := range c.LevelsForCategory(level.Category) {
		if existing.MinPoints == level.MinPoints {
			return fmt.Errorf("%w: level %q already uses minPoints %d in category %q",
				domain.ErrInvalidInput, existing.ID, level.MinPoints, level.Category)
		}
	}
	if err := c.repo.CreateLevel(ctx, level); err != nil {
		return err
	}
	return c.refresh(ctx, level.Category)
}

// UpdateLevel replaces a level, keeping per-category thresholds distinct.
func (c *Catalog) UpdateLevel(ctx context.Context, level domain.Level) error {
	if err := level.Validate(); err != nil {
		return err
	}
	for _, existing := range c.LevelsForCategory(level.Category) {
		if existing.ID != level.ID && existing.MinPoints == level.MinPoints {
			return fmt.Errorf("%w: level %q already uses minPoints %d in category %q",
				domain.ErrInvalidInput, existing.ID, level.MinPoints, level.Category)
		}
	}
	if err := c.repo.UpdateLevel(ctx, level); err != nil {
		return err
	}
	return c.refresh(ctx, level.Category)
}

// DeleteLevel removes a level. Idempotent.
func (c *Catalog) DeleteLevel(ctx context.Context, id string) error {
	level, hadLevel := c.Level(id)
	if err := c.repo.DeleteLevel(ctx, id); err != nil {
		return err
	}
	category := ""
	if hadLevel {
		category = level.Category
	}
	return c.refresh(ctx, category)
}

// CreatePointCategory adds a category.
func (c *Catalog) CreatePointCategory(ctx context.Context, category domain.PointCategory) error {
	if err := category.Validate(); err != nil {
		return err
	}
	if err := c.repo.CreatePointCategory(ctx, category); err != nil {
		return err
	}
	return c.refresh(ctx, category.ID)
}

// UpdatePointCategory replaces a category.
func (c *Catalog) UpdatePointCategory(ctx context.Context, category domain.PointCategory) error {
	if err := category.Validate(); err != nil {
		return err
	}
	if err := c.repo.UpdatePointCategory(ctx, category); err != nil {
		return err
	}
	return c.refresh(ctx, category.ID)
}

// DeletePointCategory removes a category. Idempotent.
func (c *Catalog) DeletePointCategory(ctx context.Context, id string) error {
	if err := c.repo.DeletePointCategory(ctx, id); err != nil {
		return err
	}
	return c.refresh(ctx, id)
}

// CreateEventDefinition adds an event definition.
func (c *Catalog) CreateEventDefinition(ctx context.Context, def domain.EventDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("%w: event definition id is required", domain.ErrInvalidInput)
	}
	if err := c.repo.CreateEventDefinition(ctx, def); err != nil {
		return err
	}
	return c.refresh(ctx, "")
}

// UpdateEventDefinition replaces an event definition.
func (c *Catalog) UpdateEventDefinition(ctx context.Context, def domain.EventDefinition) error {
	if err := c.repo.UpdateEventDefinition(ctx, def); err != nil {
		return err
	}
	return c.refresh(ctx, "")
}

// DeleteEventDefinition removes an event definition. Idempotent.
func (c *Catalog) DeleteEventDefinition(ctx context.Context, id string) error {
	if err := c.repo.DeleteEventDefinition(ctx, id); err != nil {
		return err
	}
	return c.refresh(ctx, "")
}

func (c *Catalog) refresh(ctx context.Context, category string) error {
	if err := c.Reload(ctx); err != nil {
		logger.FromContext(ctx).Error("Failed to reload catalog snapshot", "error", err)
		return err
	}
	c.notify(category)
	return nil
}
