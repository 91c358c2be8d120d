// Package memstore provides in-memory implementations of the repository
// interfaces. Tests across the engine share them in place of Postgres; they
// honor the same error contracts as the pgx implementations.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

// EventStore is an in-memory repository.Event.
type EventStore struct {
	mu     sync.RWMutex
	events []domain.Event
	byID   map[string]int
}

// NewEventStore creates an empty event store.
func NewEventStore() *EventStore {
	return &EventStore{byID: make(map[string]int)}
}

// Store appends the event; duplicates by ID are a no-op.
func (s *EventStore) Store(_ context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[event.ID]; ok {
		return nil
	}
	s.byID[event.ID] = len(s.events)
	s.events = append(s.events, event)
	return nil
}

// GetByID returns the event or domain.ErrEventNotFound.
func (s *EventStore) GetByID(_ context.Context, eventID string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	ev := s.events[idx]
	return &ev, nil
}

func (s *EventStore) selectSorted(filter func(domain.Event) bool) []domain.Event {
	var out []domain.Event
	for _, ev := range s.events {
		if filter(ev) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out
}

func paginate(events []domain.Event, limit, offset int) []domain.Event {
	if limit <= 0 || limit > repository.MaxEventPageSize {
		limit = repository.MaxEventPageSize
	}
	if offset >= len(events) {
		return []domain.Event{}
	}
	end := offset + limit
	if end > len(events) {
		end = len(events)
	}
	return events[offset:end]
}

// GetByUser returns the user's events ordered by occurredAt ascending.
func (s *EventStore) GetByUser(_ context.Context, userID string, limit, offset int) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return paginate(s.selectSorted(func(e domain.Event) bool { return e.UserID == userID }), limit, offset), nil
}

// GetByType returns events of one type ordered by occurredAt ascending.
func (s *EventStore) GetByType(_ context.Context, eventType string, limit, offset int) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return paginate(s.selectSorted(func(e domain.Event) bool { return e.Type == eventType }), limit, offset), nil
}

// GetByUserAndType returns up to limit most recent matching events, ordered
// ascending.
func (s *EventStore) GetByUserAndType(_ context.Context, userID, eventType string, limit int) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.selectSorted(func(e domain.Event) bool { return e.UserID == userID && e.Type == eventType })
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched, nil
}

// Len returns the number of stored events, used by dry-run isolation tests.
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
