// Package catalog maintains a read-mostly, copy-on-write view over the
// entity tables: point categories, badges, trophies, levels and event
// definitions. Readers always see a consistent immutable snapshot; mutations
// write through to the repository, rebuild the snapshot and swap it
// atomically.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

// ChangeListener is notified after a catalog mutation, with the affected
// point category when the change is category-scoped ("" otherwise). The
// leaderboard projector hooks this to evict its caches.
type ChangeListener func(category string)

type snapshot struct {
	badges           map[string]domain.Badge
	trophies         map[string]domain.Trophy
	levels           map[string]domain.Level
	levelsByCategory map[string][]domain.Level
	categories       map[string]domain.PointCategory
	definitions      map[string]domain.EventDefinition
}

// Catalog is the in-memory entity view plus its management operations.
type Catalog struct {
	repo      repository.Entity
	snap      atomic.Pointer[snapshot]
	listeners []ChangeListener
}

// New creates a catalog and loads the initial snapshot.
func New(ctx context.Context, repo repository.Entity) (*Catalog, error) {
	c := &Catalog{repo: repo}
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// OnChange registers a listener fired after every mutation.
func (c *Catalog) OnChange(fn ChangeListener) {
	c.listeners = append(c.listeners, fn)
}

func (c *Catalog) notify(category string) {
	for _, fn := range c.listeners {
		fn(category)
	}
}

// Reload rebuilds the snapshot from the repository and swaps it in.
func (c *Catalog) Reload(ctx context.Context) error {
	badges, err := c.repo.ListBadges(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to load badges: %w", err)
	}
	trophies, err := c.repo.ListTrophies(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to load trophies: %w", err)
	}
	levels, err := c.repo.ListLevels(ctx)
	if err != nil {
		return fmt.Errorf("failed to load levels: %w", err)
	}
	categories, err := c.repo.ListPointCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load point categories: %w", err)
	}
	definitions, err := c.repo.ListEventDefinitions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load event definitions: %w", err)
	}

	s := &snapshot{
		badges:           make(map[string]domain.Badge, len(badges)),
		trophies:         make(map[string]domain.Trophy, len(trophies)),
		levels:           make(map[string]domain.Level, len(levels)),
		levelsByCategory: make(map[string][]domain.Level),
		categories:       make(map[string]domain.PointCategory, len(categories)),
		definitions:      make(map[string]domain.EventDefinition, len(definitions)),
	}
	for _, b := range badges {
		s.badges[b.ID] = b
	}
	for _, t := range trophies {
		s.trophies[t.ID] = t
	}
	for _, l := range levels {
		s.levels[l.ID] = l
		s.levelsByCategory[l.Category] = append(s.levelsByCategory[l.Category], l)
	}
	for cat := range s.levelsByCategory {
		sort.Slice(s.levelsByCategory[cat], func(i, j int) bool {
			return s.levelsByCategory[cat][i].MinPoints < s.levelsByCategory[cat][j].MinPoints
		})
	}
	for _, pc := range categories {
		s.categories[pc.ID] = pc
	}
	for _, d := range definitions {
		s.definitions[d.ID] = d
	}

	c.snap.Store(s)
	return nil
}

func (c *Catalog) current() *snapshot {
	return c.snap.Load()
}

// Badge returns the badge or false.
func (c *Catalog) Badge(id string) (domain.Badge, bool) {
	b, ok := c.current().badges[id]
	return b, ok
}

// Trophy returns the trophy or false.
func (c *Catalog) Trophy(id string) (domain.Trophy, bool) {
	t, ok := c.current().trophies[id]
	return t, ok
}

// Level returns the level or false.
func (c *Catalog) Level(id string) (domain.Level, bool) {
	l, ok := c.current().levels[id]
	return l, ok
}

// LevelsForCategory returns the category's levels sorted ascending by
// MinPoints. The returned slice is shared; callers must not mutate it.
func (c *Catalog) LevelsForCategory(category string) []domain.Level {
	return c.current().levelsByCategory[category]
}

// CurrentLevel returns the level with the greatest MinPoints not exceeding
// balance, or false when the category has no reachable level.
func (c *Catalog) CurrentLevel(category string, balance int64) (domain.Level, bool) {
	levels := c.LevelsForCategory(category)
	var best domain.Level
	found := false
	for _, l := range levels {
		if l.MinPoints > balance {
			break
		}
		best = l
		found = true
	}
	return best, found
}

// PointCategory returns the category or false.
func (c *Catalog) PointCategory(id string) (domain.PointCategory, bool) {
	pc, ok := c.current().categories[id]
	return pc, ok
}

// PointCategories returns all categories.
func (c *Catalog) PointCategories() []domain.PointCategory {
	s := c.current()
	out := make([]domain.PointCategory, 0, len(s.categories))
	for _, pc := range s.categories {
		out = append(out, pc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EventDefinition returns the definition or false.
func (c *Catalog) EventDefinition(id string) (domain.EventDefinition, bool) {
	d, ok := c.current().definitions[id]
	return d, ok
}

// EventDefinitions returns every known event definition.
func (c *Catalog) EventDefinitions() []domain.EventDefinition {
	s := c.current()
	out := make([]domain.EventDefinition, 0, len(s.definitions))
	for _, d := range s.definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// KnownEventType reports whether eventType has a definition.
func (c *Catalog) KnownEventType(eventType string) bool {
	_, ok := c.current().definitions[eventType]
	return ok
}
