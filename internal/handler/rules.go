package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/logger"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

// HandleCreateRule registers a new rule.
// @Summary Create a rule
// @Tags rules
// @Accept json
// @Produce json
// @Param request body domain.Rule true "Rule definition"
// @Success 201 {object} domain.Rule
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/rules [post]
func HandleCreateRule(rules repository.Rule) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var rule domain.Rule
		if err := DecodeAndValidateRequest(r, w, &rule, "Create rule"); err != nil {
			return
		}

		if err := rule.Validate(); err != nil {
			log.Warn("Invalid rule", "rule_id", rule.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		if err := rules.Create(r.Context(), rule); err != nil {
			log.Error("Failed to create rule", "rule_id", rule.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		log.Info("Rule created", "rule_id", rule.ID, "triggers", rule.Triggers)
		respondJSON(w, http.StatusCreated, rule)
	}
}

// HandleUpdateRule replaces an existing rule. The path id wins over any id in
// the body.
// @Summary Update a rule
// @Tags rules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param request body domain.Rule true "Rule definition"
// @Success 200 {object} domain.Rule
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/rules/{id} [put]
func HandleUpdateRule(rules repository.Rule) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var rule domain.Rule
		if err := DecodeAndValidateRequest(r, w, &rule, "Update rule"); err != nil {
			return
		}
		rule.ID = chi.URLParam(r, "id")

		if err := rule.Validate(); err != nil {
			log.Warn("Invalid rule", "rule_id", rule.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		if err := rules.Update(r.Context(), rule); err != nil {
			log.Error("Failed to update rule", "rule_id", rule.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, rule)
	}
}

// HandleDeleteRule removes a rule. Deleting an unknown rule succeeds.
// @Summary Delete a rule
// @Tags rules
// @Param id path string true "Rule ID"
// @Success 204
// @Router /api/rules/{id} [delete]
func HandleDeleteRule(rules repository.Rule) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID := chi.URLParam(r, "id")

		if err := rules.Delete(r.Context(), ruleID); err != nil {
			logger.FromContext(r.Context()).Error("Failed to delete rule", "rule_id", ruleID, "error", err)
			respondServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleGetRule returns a rule by id.
// @Summary Get rule by id
// @Tags rules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} domain.Rule
// @Failure 404 {object} ErrorResponse
// @Router /api/rules/{id} [get]
func HandleGetRule(rules repository.Rule) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID := chi.URLParam(r, "id")

		rule, err := rules.GetByID(r.Context(), ruleID)
		if err != nil {
			logger.FromContext(r.Context()).Warn("Failed to get rule", "rule_id", ruleID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, rule)
	}
}

// HandleListRules lists rules, optionally filtered to active ones or to a
// trigger event type.
// @Summary List rules
// @Tags rules
// @Produce json
// @Param active query bool false "Only active rules"
// @Param trigger query string false "Only rules triggered by this event type"
// @Success 200 {array} domain.Rule
// @Router /api/rules [get]
func HandleListRules(rules repository.Rule) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		if trigger := r.URL.Query().Get("trigger"); trigger != "" {
			list, err := rules.ListByTrigger(r.Context(), trigger)
			if err != nil {
				log.Error("Failed to list rules by trigger", "trigger", trigger, "error", err)
				respondServiceError(w, err)
				return
			}
			respondJSON(w, http.StatusOK, list)
			return
		}

		activeOnly := r.URL.Query().Get("active") == "true"
		list, err := rules.List(r.Context(), activeOnly)
		if err != nil {
			log.Error("Failed to list rules", "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, list)
	}
}

// HandleSetRuleActive flips a rule's active flag.
// @Summary Activate or deactivate a rule
// @Tags rules
// @Param id path string true "Rule ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/rules/{id}/activate [post]
func HandleSetRuleActive(rules repository.Rule, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID := chi.URLParam(r, "id")

		if err := rules.SetActive(r.Context(), ruleID, active); err != nil {
			logger.FromContext(r.Context()).Warn("Failed to set rule active flag", "rule_id", ruleID, "active", active, "error", err)
			respondServiceError(w, err)
			return
		}

		logger.FromContext(r.Context()).Info("Rule active flag changed", "rule_id", ruleID, "active", active)
		w.WriteHeader(http.StatusNoContent)
	}
}
