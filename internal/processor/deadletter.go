package processor

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/logger"
)

// DeadLetterSchemaVersion is the current version of the dead-letter log format
// Increment this when changing the DeadLetterEntry structure
const DeadLetterSchemaVersion = "1.0"

const deadLetterFilePermissions = 0644

// DeadLetterWriter appends events that exhausted the retry budget to a JSONL
// file so they can be replayed later.
type DeadLetterWriter struct {
	file *os.File
	mu   sync.Mutex
}

// DeadLetterEntry represents an event that failed processing after all retries
type DeadLetterEntry struct {
	SchemaVersion string       `json:"schema_version"` // Format version for future migrations
	Timestamp     time.Time    `json:"timestamp"`
	Event         domain.Event `json:"event"`
	Attempts      int          `json:"attempts"`
	LastError     string       `json:"last_error,omitempty"`
}

// NewDeadLetterWriter creates a new DeadLetterWriter
func NewDeadLetterWriter(path string) (*DeadLetterWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, deadLetterFilePermissions)
	if err != nil {
		return nil, err
	}
	return &DeadLetterWriter{file: f}, nil
}

// Write appends one failed event to the dead-letter file
func (dlw *DeadLetterWriter) Write(event domain.Event, attempts int, lastError error) error {
	dlw.mu.Lock()
	defer dlw.mu.Unlock()

	lastErrMsg := ""
	if lastError != nil {
		lastErrMsg = lastError.Error()
	}

	log := logger.FromContext(context.Background())
	log.Warn("event_dead_lettered",
		"event_type", event.Type,
		"event_id", event.ID,
		"attempts", attempts,
		"error", lastErrMsg)

	entry := DeadLetterEntry{
		SchemaVersion: DeadLetterSchemaVersion,
		Timestamp:     time.Now(),
		Event:         event,
		Attempts:      attempts,
		LastError:     lastErrMsg,
	}

	data, _ := json.Marshal(entry)
	_, err := dlw.file.Write(append(data, '\n'))
	return err
}

// Close closes the dead-letter file
func (dlw *DeadLetterWriter) Close() error {
	return dlw.file.Close()
}
