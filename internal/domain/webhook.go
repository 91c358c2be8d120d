package domain

import (
	"fmt"
	"strings"
	"time"
)

// Webhook is a registered HTTP subscription to engine events. Delivery of
// live events is handled outside the core; the engine keeps the registry and
// supports a synchronous test ping.
type Webhook struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	EventTypes []string  `json:"eventTypes,omitempty"`
	Secret     string    `json:"secret,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate checks the webhook invariants.
func (w Webhook) Validate() error {
	if w.URL == "" {
		return fmt.Errorf("%w: webhook url is required", ErrInvalidInput)
	}
	if !strings.HasPrefix(w.URL, "http://") && !strings.HasPrefix(w.URL, "https://") {
		return fmt.Errorf("%w: webhook url must be http or https", ErrInvalidInput)
	}
	return nil
}
