package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/osmith/BadgeForge_Go/internal/catalog"
	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/evaluator"
	"github.com/osmith/BadgeForge_Go/internal/logger"
	"github.com/osmith/BadgeForge_Go/internal/metrics"
	"github.com/osmith/BadgeForge_Go/internal/queue"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

// IngestEventRequest represents an event submitted for processing.
type IngestEventRequest struct {
	EventID    string         `json:"eventId"`
	EventType  string         `json:"eventType" validate:"required"`
	UserID     string         `json:"userId" validate:"required"`
	OccurredAt *time.Time     `json:"occurredAt"`
	Attributes map[string]any `json:"attributes"`
}

func (req IngestEventRequest) toDomain() domain.Event {
	event := domain.Event{
		ID:         req.EventID,
		Type:       req.EventType,
		UserID:     req.UserID,
		Attributes: req.Attributes,
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if req.OccurredAt != nil {
		event.OccurredAt = req.OccurredAt.UTC()
	} else {
		event.OccurredAt = time.Now().UTC()
	}
	return event
}

// HandleIngestEvent accepts an event and enqueues it for asynchronous
// processing.
// @Summary Ingest an event
// @Description Validates the event, assigns an id and timestamp when absent and enqueues it for rule evaluation.
// @Tags events
// @Accept json
// @Produce json
// @Param request body IngestEventRequest true "Event to ingest"
// @Success 201 {object} domain.Event
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/events [post]
func HandleIngestEvent(q *queue.Queue, cat *catalog.Catalog, strictCatalog bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req IngestEventRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Ingest event"); err != nil {
			return
		}

		if strictCatalog && !cat.KnownEventType(req.EventType) {
			log.Warn("Rejected event of unknown type", "event_type", req.EventType)
			respondError(w, http.StatusBadRequest, domain.ErrMsgUnknownEventType)
			return
		}

		event := req.toDomain()
		if err := q.Enqueue(r.Context(), event); err != nil {
			log.Error("Failed to enqueue event", "event_id", event.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		log.Debug("Event accepted", "event_id", event.ID, "event_type", event.Type, "user_id", event.UserID)
		respondJSON(w, http.StatusCreated, event)
	}
}

// HandleGetEvent returns a stored event by id.
// @Summary Get event by id
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} domain.Event
// @Failure 404 {object} ErrorResponse
// @Router /api/events/{id} [get]
func HandleGetEvent(events repository.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "id")

		event, err := events.GetByID(r.Context(), eventID)
		if err != nil {
			logger.FromContext(r.Context()).Warn("Failed to get event", "event_id", eventID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, event)
	}
}

// HandleGetEventsByUser returns a user's events ordered by occurrence time.
// @Summary List events for a user
// @Tags events
// @Produce json
// @Param userId path string true "User ID"
// @Param limit query int false "Page size" default(100)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} domain.Event
// @Failure 400 {object} ErrorResponse
// @Router /api/events/user/{userId} [get]
func HandleGetEventsByUser(events repository.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")

		limit, offset, err := limitOffset(r)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		list, err := events.GetByUser(r.Context(), userID, limit, offset)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list events by user", "user_id", userID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, list)
	}
}

// HandleGetEventsByType returns events of a given type ordered by occurrence
// time.
// @Summary List events by type
// @Tags events
// @Produce json
// @Param eventType path string true "Event type"
// @Param limit query int false "Page size" default(100)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} domain.Event
// @Failure 400 {object} ErrorResponse
// @Router /api/events/type/{eventType} [get]
func HandleGetEventsByType(events repository.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventType := chi.URLParam(r, "eventType")

		limit, offset, err := limitOffset(r)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		list, err := events.GetByType(r.Context(), eventType, limit, offset)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list events by type", "event_type", eventType, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, list)
	}
}

// HandleEventCatalog returns the known event type definitions.
// @Summary List event definitions
// @Tags events
// @Produce json
// @Success 200 {array} domain.EventDefinition
// @Router /api/events/catalog [get]
func HandleEventCatalog(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, cat.EventDefinitions())
	}
}

// HandleDryRun evaluates an event against the active rules without
// persisting anything.
// @Summary Dry-run an event
// @Description Predicts which rules would fire and what rewards would be issued, without side effects. Returns 404 when the sandbox is disabled.
// @Tags events
// @Accept json
// @Produce json
// @Param request body IngestEventRequest true "Event to simulate"
// @Success 200 {object} domain.DryRunResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/events/sandbox/dry-run [post]
func HandleDryRun(ev *evaluator.Evaluator, cat *catalog.Catalog, strictCatalog, enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		if !enabled {
			respondServiceError(w, domain.ErrSimulationDisabled)
			return
		}

		var req IngestEventRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Dry-run"); err != nil {
			return
		}

		if strictCatalog && !cat.KnownEventType(req.EventType) {
			log.Warn("Rejected dry-run of unknown event type", "event_type", req.EventType)
			respondError(w, http.StatusBadRequest, domain.ErrMsgUnknownEventType)
			return
		}

		metrics.DryRunsPerformed.Inc()

		result, err := ev.DryRun(r.Context(), req.toDomain())
		if err != nil {
			log.Error("Dry-run failed", "event_type", req.EventType, "user_id", req.UserID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}
