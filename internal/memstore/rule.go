package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// RuleStore is an in-memory repository.Rule.
type RuleStore struct {
	mu    sync.RWMutex
	rules map[string]domain.Rule
}

// NewRuleStore creates an empty rule store.
func NewRuleStore() *RuleStore {
	return &RuleStore{rules: make(map[string]domain.Rule)}
}

// Create fails with domain.ErrDuplicateID when the id exists.
func (s *RuleStore) Create(_ context.Context, rule domain.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[rule.ID]; ok {
		return domain.ErrDuplicateID
	}
	s.rules[rule.ID] = rule
	return nil
}

// Update fails with domain.ErrRuleNotFound when the id does not exist.
func (s *RuleStore) Update(_ context.Context, rule domain.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[rule.ID]; !ok {
		return domain.ErrRuleNotFound
	}
	s.rules[rule.ID] = rule
	return nil
}

// Delete is idempotent.
func (s *RuleStore) Delete(_ context.Context, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rules, ruleID)
	return nil
}

// GetByID returns the rule or domain.ErrRuleNotFound.
func (s *RuleStore) GetByID(_ context.Context, ruleID string) (*domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rule, ok := s.rules[ruleID]
	if !ok {
		return nil, domain.ErrRuleNotFound
	}
	return &rule, nil
}

// List returns rules ordered by id ascending.
func (s *RuleStore) List(_ context.Context, activeOnly bool) ([]domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Rule
	for _, rule := range s.rules {
		if activeOnly && !rule.IsActive {
			continue
		}
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListByTrigger returns active rules matching eventType, ordered by id.
func (s *RuleStore) ListByTrigger(_ context.Context, eventType string) ([]domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Rule
	for _, rule := range s.rules {
		if rule.IsActive && rule.TriggeredBy(eventType) {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SetActive toggles a rule.
func (s *RuleStore) SetActive(_ context.Context, ruleID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule, ok := s.rules[ruleID]
	if !ok {
		return domain.ErrRuleNotFound
	}
	rule.IsActive = active
	s.rules[ruleID] = rule
	return nil
}
