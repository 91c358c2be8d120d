package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// WebhookStore is an in-memory repository.Webhook.
type WebhookStore struct {
	mu    sync.RWMutex
	hooks map[string]domain.Webhook
}

// NewWebhookStore creates an empty webhook store.
func NewWebhookStore() *WebhookStore {
	return &WebhookStore{hooks: make(map[string]domain.Webhook)}
}

func (s *WebhookStore) Create(_ context.Context, hook domain.Webhook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hooks[hook.ID]; ok {
		return domain.ErrDuplicateID
	}
	s.hooks[hook.ID] = hook
	return nil
}

func (s *WebhookStore) Update(_ context.Context, hook domain.Webhook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hooks[hook.ID]; !ok {
		return domain.ErrWebhookNotFound
	}
	s.hooks[hook.ID] = hook
	return nil
}

func (s *WebhookStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hooks, id)
	return nil
}

func (s *WebhookStore) GetByID(_ context.Context, id string) (*domain.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hooks[id]
	if !ok {
		return nil, domain.ErrWebhookNotFound
	}
	return &h, nil
}

func (s *WebhookStore) List(_ context.Context) ([]domain.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Webhook
	for _, h := range s.hooks {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
