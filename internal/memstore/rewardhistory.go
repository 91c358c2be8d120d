package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

type executionKey struct {
	triggerEventID string
	ruleID         string
	position       int
}

// RewardHistoryStore is an in-memory repository.RewardHistory.
type RewardHistoryStore struct {
	mu      sync.RWMutex
	entries []domain.RewardHistory
	keys    map[executionKey]struct{}
}

// NewRewardHistoryStore creates an empty reward history store.
func NewRewardHistoryStore() *RewardHistoryStore {
	return &RewardHistoryStore{keys: make(map[executionKey]struct{})}
}

// Append stores one execution record.
func (s *RewardHistoryStore) Append(_ context.Context, entry domain.RewardHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	s.keys[executionKey{entry.TriggerEventID, entry.RuleID, entry.Position}] = struct{}{}
	return nil
}

// Exists reports whether the idempotency triple is present.
func (s *RewardHistoryStore) Exists(_ context.Context, triggerEventID, ruleID string, position int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[executionKey{triggerEventID, ruleID, position}]
	return ok, nil
}

// GetByUser returns the user's history newest first, 1-based pagination.
func (s *RewardHistoryStore) GetByUser(_ context.Context, userID string, page, pageSize int) ([]domain.RewardHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []domain.RewardHistory
	for _, e := range s.entries {
		if e.UserID == userID {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].AwardedAt.After(matched[j].AwardedAt) })
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return []domain.RewardHistory{}, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

// CountByTypeInWindow counts successful executions per user over [start, end).
func (s *RewardHistoryStore) CountByTypeInWindow(_ context.Context, rewardType string, start, end time.Time) ([]domain.UserCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, e := range s.entries {
		if e.RewardType != rewardType || !e.Success {
			continue
		}
		if e.AwardedAt.Before(start) || !e.AwardedAt.Before(end) {
			continue
		}
		counts[e.UserID]++
	}
	out := make([]domain.UserCount, 0, len(counts))
	for userID, n := range counts {
		out = append(out, domain.UserCount{UserID: userID, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Len returns the total history length, used by isolation tests.
func (s *RewardHistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// All returns a copy of every entry, oldest first.
func (s *RewardHistoryStore) All() []domain.RewardHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RewardHistory, len(s.entries))
	copy(out, s.entries)
	return out
}
