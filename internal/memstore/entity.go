package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// EntityStore is an in-memory repository.Entity.
type EntityStore struct {
	mu          sync.RWMutex
	badges      map[string]domain.Badge
	trophies    map[string]domain.Trophy
	levels      map[string]domain.Level
	categories  map[string]domain.PointCategory
	definitions map[string]domain.EventDefinition
}

// NewEntityStore creates an empty entity store.
func NewEntityStore() *EntityStore {
	return &EntityStore{
		badges:      make(map[string]domain.Badge),
		trophies:    make(map[string]domain.Trophy),
		levels:      make(map[string]domain.Level),
		categories:  make(map[string]domain.PointCategory),
		definitions: make(map[string]domain.EventDefinition),
	}
}

func (s *EntityStore) CreateBadge(_ context.Context, badge domain.Badge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.badges[badge.ID]; ok {
		return domain.ErrDuplicateID
	}
	s.badges[badge.ID] = badge
	return nil
}

func (s *EntityStore) UpdateBadge(_ context.Context, badge domain.Badge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.badges[badge.ID]; !ok {
		return domain.ErrEntityNotFound
	}
	s.badges[badge.ID] = badge
	return nil
}

func (s *EntityStore) DeleteBadge(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.badges, id)
	return nil
}

func (s *EntityStore) GetBadge(_ context.Context, id string) (*domain.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.badges[id]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	return &b, nil
}

func (s *EntityStore) ListBadges(_ context.Context, visibleOnly bool) ([]domain.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Badge
	for _, b := range s.badges {
		if visibleOnly && !b.Visible {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *EntityStore) CreateTrophy(_ context.Context, trophy domain.Trophy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trophies[trophy.ID]; ok {
		return domain.ErrDuplicateID
	}
	s.trophies[trophy.ID] = trophy
	return nil
}

func (s *EntityStore) UpdateTrophy(_ context.Context, trophy domain.Trophy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trophies[trophy.ID]; !ok {
		return domain.ErrEntityNotFound
	}
	s.trophies[trophy.ID] = trophy
	return nil
}

func (s *EntityStore) DeleteTrophy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trophies, id)
	return nil
}

func (s *EntityStore) GetTrophy(_ context.Context, id string) (*domain.Trophy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trophies[id]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	return &t, nil
}

func (s *EntityStore) ListTrophies(_ context.Context, visibleOnly bool) ([]domain.Trophy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Trophy
	for _, t := range s.trophies {
		if visibleOnly && !t.Visible {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *EntityStore) CreateLevel(_ context.Context, level domain.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.levels[level.ID]; ok {
		return domain.ErrDuplicateID
	}
	s.levels[level.ID] = level
	return nil
}

func (s *EntityStore) UpdateLevel(_ context.Context, level domain.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.levels[level.ID]; !ok {
		return domain.ErrEntityNotFound
	}
	s.levels[level.ID] = level
	return nil
}

func (s *EntityStore) DeleteLevel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.levels, id)
	return nil
}

func (s *EntityStore) GetLevel(_ context.Context, id string) (*domain.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.levels[id]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	return &l, nil
}

func (s *EntityStore) ListLevels(_ context.Context) ([]domain.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Level
	for _, l := range s.levels {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *EntityStore) ListLevelsByCategory(_ context.Context, category string) ([]domain.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Level
	for _, l := range s.levels {
		if l.Category == category {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MinPoints < out[j].MinPoints })
	return out, nil
}

func (s *EntityStore) CreatePointCategory(_ context.Context, category domain.PointCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[category.ID]; ok {
		return domain.ErrDuplicateID
	}
	s.categories[category.ID] = category
	return nil
}

func (s *EntityStore) UpdatePointCategory(_ context.Context, category domain.PointCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[category.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	s.categories[category.ID] = category
	return nil
}

func (s *EntityStore) DeletePointCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories, id)
	return nil
}

func (s *EntityStore) GetPointCategory(_ context.Context, id string) (*domain.PointCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return &c, nil
}

func (s *EntityStore) ListPointCategories(_ context.Context) ([]domain.PointCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.PointCategory
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *EntityStore) CreateEventDefinition(_ context.Context, def domain.EventDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.definitions[def.ID]; ok {
		return domain.ErrDuplicateID
	}
	s.definitions[def.ID] = def
	return nil
}

func (s *EntityStore) UpdateEventDefinition(_ context.Context, def domain.EventDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.definitions[def.ID]; !ok {
		return domain.ErrEntityNotFound
	}
	s.definitions[def.ID] = def
	return nil
}

func (s *EntityStore) DeleteEventDefinition(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.definitions, id)
	return nil
}

func (s *EntityStore) GetEventDefinition(_ context.Context, id string) (*domain.EventDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.definitions[id]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	return &d, nil
}

func (s *EntityStore) ListEventDefinitions(_ context.Context) ([]domain.EventDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.EventDefinition
	for _, d := range s.definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
