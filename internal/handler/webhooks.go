package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/logger"
	"github.com/osmith/BadgeForge_Go/internal/webhook"
)

// HandleCreateWebhook registers a webhook.
// @Summary Register a webhook
// @Tags webhooks
// @Accept json
// @Produce json
// @Param request body domain.Webhook true "Webhook definition"
// @Success 201 {object} domain.Webhook
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/webhooks [post]
func HandleCreateWebhook(hooks *webhook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var hook domain.Webhook
		if err := DecodeAndValidateRequest(r, w, &hook, "Create webhook"); err != nil {
			return
		}

		created, err := hooks.Create(r.Context(), hook)
		if err != nil {
			log.Error("Failed to create webhook", "webhook_id", hook.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		log.Info("Webhook registered", "webhook_id", created.ID, "url", created.URL)
		respondJSON(w, http.StatusCreated, created)
	}
}

// HandleUpdateWebhook replaces a registered webhook.
// @Summary Update a webhook
// @Tags webhooks
// @Accept json
// @Produce json
// @Param id path string true "Webhook ID"
// @Param request body domain.Webhook true "Webhook definition"
// @Success 200 {object} domain.Webhook
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/webhooks/{id} [put]
func HandleUpdateWebhook(hooks *webhook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var hook domain.Webhook
		if err := DecodeAndValidateRequest(r, w, &hook, "Update webhook"); err != nil {
			return
		}
		hook.ID = chi.URLParam(r, "id")

		if err := hooks.Update(r.Context(), hook); err != nil {
			logger.FromContext(r.Context()).Error("Failed to update webhook", "webhook_id", hook.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, hook)
	}
}

// HandleDeleteWebhook removes a webhook.
// @Summary Delete a webhook
// @Tags webhooks
// @Param id path string true "Webhook ID"
// @Success 204
// @Router /api/webhooks/{id} [delete]
func HandleDeleteWebhook(hooks *webhook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := hooks.Delete(r.Context(), id); err != nil {
			logger.FromContext(r.Context()).Error("Failed to delete webhook", "webhook_id", id, "error", err)
			respondServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleGetWebhook returns a webhook by id.
// @Summary Get webhook by id
// @Tags webhooks
// @Produce json
// @Param id path string true "Webhook ID"
// @Success 200 {object} domain.Webhook
// @Failure 404 {object} ErrorResponse
// @Router /api/webhooks/{id} [get]
func HandleGetWebhook(hooks *webhook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		hook, err := hooks.Get(r.Context(), id)
		if err != nil {
			logger.FromContext(r.Context()).Warn("Failed to get webhook", "webhook_id", id, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, hook)
	}
}

// HandleListWebhooks lists every registered webhook.
// @Summary List webhooks
// @Tags webhooks
// @Produce json
// @Success 200 {array} domain.Webhook
// @Router /api/webhooks [get]
func HandleListWebhooks(hooks *webhook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := hooks.List(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list webhooks", "error", err)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// HandleTestWebhook sends one signed sample delivery to the webhook URL.
// @Summary Test a webhook
// @Tags webhooks
// @Produce json
// @Param id path string true "Webhook ID"
// @Success 200 {object} webhook.TestResult
// @Failure 404 {object} ErrorResponse
// @Router /api/webhooks/{id}/test [post]
func HandleTestWebhook(hooks *webhook.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		result, err := hooks.Test(r.Context(), id)
		if err != nil {
			logger.FromContext(r.Context()).Warn("Webhook test failed", "webhook_id", id, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}
