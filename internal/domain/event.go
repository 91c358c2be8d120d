package domain

import (
	"fmt"
	"time"
)

// Event is an immutable domain fact ingested from the outside world.
// Attributes carry arbitrary JSON scalars, arrays or objects keyed by name.
type Event struct {
	ID         string         `json:"eventId"`
	Type       string         `json:"eventType"`
	UserID     string         `json:"userId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Validate checks the event invariants: eventId, eventType and userId must be
// non-empty.
func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: eventId is required", ErrInvalidInput)
	}
	if e.Type == "" {
		return fmt.Errorf("%w: eventType is required", ErrInvalidInput)
	}
	if e.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	return nil
}

// EventDefinition is a catalog entry describing a known event type and the
// expected shape of its attributes.
type EventDefinition struct {
	ID            string            `json:"id"`
	Description   string            `json:"description,omitempty"`
	PayloadSchema map[string]string `json:"payloadSchema,omitempty"`
}
