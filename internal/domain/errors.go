package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Validation errors
	ErrMsgInvalidInput = "invalid input"

	// Not-found errors
	ErrMsgEventNotFound    = "event not found"
	ErrMsgRuleNotFound     = "rule not found"
	ErrMsgEntityNotFound   = "entity not found"
	ErrMsgCategoryNotFound = "point category not found"
	ErrMsgWebhookNotFound  = "webhook not found"

	// Conflict errors
	ErrMsgDuplicateID        = "duplicate id"
	ErrMsgDuplicateReference = "duplicate reference id"

	// Wallet errors
	ErrMsgInsufficientBalance = "insufficient balance"
	ErrMsgSelfTransfer        = "cannot transfer to the same user"

	// Queue errors
	ErrMsgQueueFull   = "event queue is full"
	ErrMsgQueueClosed = "event queue is closed"

	// Catalog errors
	ErrMsgUnknownEventType = "unknown event type"

	// Feature errors
	ErrMsgSimulationDisabled = "simulation is disabled"

	// Storage errors
	ErrMsgEventStorage   = "event storage failure"
	ErrMsgEventRetrieval = "event retrieval failure"
)

// Common domain errors
// These errors should be used consistently across all layers of the engine.
// Wrap with fmt.Errorf("%w: %s", domain.ErrXxx, details) for context.
var (
	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)

	// Not-found errors
	ErrEventNotFound    = errors.New(ErrMsgEventNotFound)
	ErrRuleNotFound     = errors.New(ErrMsgRuleNotFound)
	ErrEntityNotFound   = errors.New(ErrMsgEntityNotFound)
	ErrCategoryNotFound = errors.New(ErrMsgCategoryNotFound)
	ErrWebhookNotFound  = errors.New(ErrMsgWebhookNotFound)

	// Conflict errors
	ErrDuplicateID        = errors.New(ErrMsgDuplicateID)
	ErrDuplicateReference = errors.New(ErrMsgDuplicateReference)

	// Wallet errors
	ErrInsufficientBalance = errors.New(ErrMsgInsufficientBalance)
	ErrSelfTransfer        = errors.New(ErrMsgSelfTransfer)

	// Queue errors
	ErrQueueFull   = errors.New(ErrMsgQueueFull)
	ErrQueueClosed = errors.New(ErrMsgQueueClosed)

	// Catalog errors
	ErrUnknownEventType = errors.New(ErrMsgUnknownEventType)

	// Feature errors
	ErrSimulationDisabled = errors.New(ErrMsgSimulationDisabled)

	// Storage errors - fatal for the event being processed; the processor
	// retries with backoff and eventually dead-letters.
	ErrEventStorage   = errors.New(ErrMsgEventStorage)
	ErrEventRetrieval = errors.New(ErrMsgEventRetrieval)
)
