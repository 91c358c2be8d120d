package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// UserStateStore is an in-memory repository.UserState.
type UserStateStore struct {
	mu     sync.RWMutex
	states map[string]*domain.UserState
}

// NewUserStateStore creates an empty user state store.
func NewUserStateStore() *UserStateStore {
	return &UserStateStore{states: make(map[string]*domain.UserState)}
}

// GetByUser returns a copy of the user's state, creating an empty one for
// unseen users.
func (s *UserStateStore) GetByUser(_ context.Context, userID string) (*domain.UserState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.states[userID]; ok {
		return state.Clone(), nil
	}
	return domain.NewUserState(userID), nil
}

// Save stores a copy of the state.
func (s *UserStateStore) Save(_ context.Context, state *domain.UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.UserID] = state.Clone()
	return nil
}

// ListBadgeCounts returns badge counts for users holding badges.
func (s *UserStateStore) ListBadgeCounts(_ context.Context) ([]domain.UserCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.UserCount
	for _, state := range s.states {
		if len(state.Badges) > 0 {
			out = append(out, domain.UserCount{UserID: state.UserID, Count: int64(len(state.Badges))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// ListTrophyCounts returns trophy counts for users holding trophies.
func (s *UserStateStore) ListTrophyCounts(_ context.Context) ([]domain.UserCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.UserCount
	for _, state := range s.states {
		if len(state.Trophies) > 0 {
			out = append(out, domain.UserCount{UserID: state.UserID, Count: int64(len(state.Trophies))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
