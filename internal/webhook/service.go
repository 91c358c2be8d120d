// Package webhook manages the webhook registry and the synchronous test
// ping. Live event delivery is out of scope; the registry exists so outside
// consumers can be wired up and verified.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/logger"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

const (
	signatureHeader = "X-Badgeforge-Signature"
	testTimeout     = 5 * time.Second
	testAttempts    = 2
)

// Service wraps the webhook repository with validation and the test ping.
type Service struct {
	repo   repository.Webhook
	client *http.Client
}

// NewService creates a webhook service.
func NewService(repo repository.Webhook) *Service {
	return &Service{
		repo:   repo,
		client: &http.Client{Timeout: testTimeout},
	}
}

// Create registers a webhook, assigning an id when the caller supplied none.
func (s *Service) Create(ctx context.Context, hook domain.Webhook) (domain.Webhook, error) {
	if err := hook.Validate(); err != nil {
		return domain.Webhook{}, err
	}
	if hook.ID == "" {
		hook.ID = uuid.NewString()
	}
	hook.CreatedAt = time.Now().UTC()
	if err := s.repo.Create(ctx, hook); err != nil {
		return domain.Webhook{}, err
	}
	return hook, nil
}

// Update replaces a registered webhook.
func (s *Service) Update(ctx context.Context, hook domain.Webhook) error {
	if err := hook.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, hook)
}

// Delete removes a webhook. Deleting an absent id is a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Get returns a webhook or domain.ErrWebhookNotFound.
func (s *Service) Get(ctx context.Context, id string) (*domain.Webhook, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every registered webhook.
func (s *Service) List(ctx context.Context) ([]domain.Webhook, error) {
	return s.repo.List(ctx)
}

// TestResult reports the outcome of a test ping.
type TestResult struct {
	Delivered  bool   `json:"delivered"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
}

// testPayload is the sample body sent by the test ping.
type testPayload struct {
	WebhookID string    `json:"webhookId"`
	Test      bool      `json:"test"`
	Timestamp time.Time `json:"timestamp"`
}

// Test sends one signed sample POST to the webhook URL, retrying once on
// failure. A non-2xx response counts as undelivered.
func (s *Service) Test(ctx context.Context, id string) (TestResult, error) {
	hook, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return TestResult{}, err
	}

	body, err := json.Marshal(testPayload{
		WebhookID: hook.ID,
		Test:      true,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return TestResult{}, fmt.Errorf("failed to build test payload: %w", err)
	}

	log := logger.FromContext(ctx)
	var lastErr error
	var status int
	for attempt := 1; attempt <= testAttempts; attempt++ {
		status, lastErr = s.post(ctx, hook, body)
		if lastErr == nil && status >= 200 && status < 300 {
			return TestResult{Delivered: true, StatusCode: status}, nil
		}
		log.Warn("webhook test delivery failed",
			"webhookId", hook.ID, "attempt", attempt, "status", status, "error", lastErr)
	}

	result := TestResult{Delivered: false, StatusCode: status}
	if lastErr != nil {
		result.Error = lastErr.Error()
	}
	return result, nil
}

func (s *Service) post(ctx context.Context, hook *domain.Webhook, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if hook.Secret != "" {
		req.Header.Set(signatureHeader, sign(hook.Secret, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// sign computes the hex HMAC-SHA256 of the body under the webhook secret.
func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
