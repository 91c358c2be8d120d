package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osmith/BadgeForge_Go/internal/catalog"
	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/logger"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

func requireIDAndName(id, name string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	if name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	return nil
}

// --- Badges ---

// HandleCreateBadge registers a new badge.
// @Summary Create a badge
// @Tags entities
// @Accept json
// @Produce json
// @Param request body domain.Badge true "Badge definition"
// @Success 201 {object} domain.Badge
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/badges [post]
func HandleCreateBadge(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var badge domain.Badge
		if err := DecodeAndValidateRequest(r, w, &badge, "Create badge"); err != nil {
			return
		}
		if err := requireIDAndName(badge.ID, badge.Name); err != nil {
			respondServiceError(w, err)
			return
		}

		if err := cat.CreateBadge(r.Context(), badge); err != nil {
			log.Error("Failed to create badge", "badge_id", badge.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, badge)
	}
}

// HandleUpdateBadge replaces an existing badge.
// @Summary Update a badge
// @Tags entities
// @Accept json
// @Produce json
// @Param id path string true "Badge ID"
// @Param request body domain.Badge true "Badge definition"
// @Success 200 {object} domain.Badge
// @Failure 404 {object} ErrorResponse
// @Router /api/badges/{id} [put]
func HandleUpdateBadge(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var badge domain.Badge
		if err := DecodeAndValidateRequest(r, w, &badge, "Update badge"); err != nil {
			return
		}
		badge.ID = chi.URLParam(r, "id")
		if err := requireIDAndName(badge.ID, badge.Name); err != nil {
			respondServiceError(w, err)
			return
		}

		if err := cat.UpdateBadge(r.Context(), badge); err != nil {
			logger.FromContext(r.Context()).Error("Failed to update badge", "badge_id", badge.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, badge)
	}
}

// HandleDeleteBadge removes a badge.
// @Summary Delete a badge
// @Tags entities
// @Param id path string true "Badge ID"
// @Success 204
// @Router /api/badges/{id} [delete]
func HandleDeleteBadge(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := cat.DeleteBadge(r.Context(), id); err != nil {
			logger.FromContext(r.Context()).Error("Failed to delete badge", "badge_id", id, "error", err)
			respondServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleGetBadge returns a badge by id.
// @Summary Get badge by id
// @Tags entities
// @Produce json
// @Param id path string true "Badge ID"
// @Success 200 {object} domain.Badge
// @Failure 404 {object} ErrorResponse
// @Router /api/badges/{id} [get]
func HandleGetBadge(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		badge, ok := cat.Badge(id)
		if !ok {
			respondServiceError(w, domain.ErrEntityNotFound)
			return
		}
		respondJSON(w, http.StatusOK, badge)
	}
}

// HandleListBadges lists badges, optionally only the visible ones.
// @Summary List badges
// @Tags entities
// @Produce json
// @Success 200 {array} domain.Badge
// @Router /api/badges [get]
func HandleListBadges(entities repository.Entity, visibleOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := entities.ListBadges(r.Context(), visibleOnly)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list badges", "error", err)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// --- Trophies ---

// HandleCreateTrophy registers a new trophy.
// @Summary Create a trophy
// @Tags entities
// @Accept json
// @Produce json
// @Param request body domain.Trophy true "Trophy definition"
// @Success 201 {object} domain.Trophy
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/trophies [post]
func HandleCreateTrophy(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var trophy domain.Trophy
		if err := DecodeAndValidateRequest(r, w, &trophy, "Create trophy"); err != nil {
			return
		}
		if err := requireIDAndName(trophy.ID, trophy.Name); err != nil {
			respondServiceError(w, err)
			return
		}

		if err := cat.CreateTrophy(r.Context(), trophy); err != nil {
			logger.FromContext(r.Context()).Error("Failed to create trophy", "trophy_id", trophy.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, trophy)
	}
}

// HandleUpdateTrophy replaces an existing trophy.
// @Summary Update a trophy
// @Tags entities
// @Accept json
// @Produce json
// @Param id path string true "Trophy ID"
// @Param request body domain.Trophy true "Trophy definition"
// @Success 200 {object} domain.Trophy
// @Failure 404 {object} ErrorResponse
// @Router /api/trophies/{id} [put]
func HandleUpdateTrophy(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var trophy domain.Trophy
		if err := DecodeAndValidateRequest(r, w, &trophy, "Update trophy"); err != nil {
			return
		}
		trophy.ID = chi.URLParam(r, "id")
		if err := requireIDAndName(trophy.ID, trophy.Name); err != nil {
			respondServiceError(w, err)
			return
		}

		if err := cat.UpdateTrophy(r.Context(), trophy); err != nil {
			logger.FromContext(r.Context()).Error("Failed to update trophy", "trophy_id", trophy.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, trophy)
	}
}

// HandleDeleteTrophy removes a trophy.
// @Summary Delete a trophy
// @Tags entities
// @Param id path string true "Trophy ID"
// @Success 204
// @Router /api/trophies/{id} [delete]
func HandleDeleteTrophy(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := cat.DeleteTrophy(r.Context(), id); err != nil {
			logger.FromContext(r.Context()).Error("Failed to delete trophy", "trophy_id", id, "error", err)
			respondServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleGetTrophy returns a trophy by id.
// @Summary Get trophy by id
// @Tags entities
// @Produce json
// @Param id path string true "Trophy ID"
// @Success 200 {object} domain.Trophy
// @Failure 404 {object} ErrorResponse
// @Router /api/trophies/{id} [get]
func HandleGetTrophy(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		trophy, ok := cat.Trophy(id)
		if !ok {
			respondServiceError(w, domain.ErrEntityNotFound)
			return
		}
		respondJSON(w, http.StatusOK, trophy)
	}
}

// HandleListTrophies lists trophies, optionally only the visible ones.
// @Summary List trophies
// @Tags entities
// @Produce json
// @Success 200 {array} domain.Trophy
// @Router /api/trophies [get]
func HandleListTrophies(entities repository.Entity, visibleOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := entities.ListTrophies(r.Context(), visibleOnly)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list trophies", "error", err)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// --- Levels ---

// HandleCreateLevel registers a new level.
// @Summary Create a level
// @Tags entities
// @Accept json
// @Produce json
// @Param request body domain.Level true "Level definition"
// @Success 201 {object} domain.Level
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/levels [post]
func HandleCreateLevel(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var level domain.Level
		if err := DecodeAndValidateRequest(r, w, &level, "Create level"); err != nil {
			return
		}
		if err := level.Validate(); err != nil {
			respondServiceError(w, err)
			return
		}

		if err := cat.CreateLevel(r.Context(), level); err != nil {
			logger.FromContext(r.Context()).Error("Failed to create level", "level_id", level.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, level)
	}
}

// HandleUpdateLevel replaces an existing level.
// @Summary Update a level
// @Tags entities
// @Accept json
// @Produce json
// @Param id path string true "Level ID"
// @Param request body domain.Level true "Level definition"
// @Success 200 {object} domain.Level
// @Failure 404 {object} ErrorResponse
// @Router /api/levels/{id} [put]
func HandleUpdateLevel(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var level domain.Level
		if err := DecodeAndValidateRequest(r, w, &level, "Update level"); err != nil {
			return
		}
		level.ID = chi.URLParam(r, "id")
		if err := level.Validate(); err != nil {
			respondServiceError(w, err)
			return
		}

		if err := cat.UpdateLevel(r.Context(), level); err != nil {
			logger.FromContext(r.Context()).Error("Failed to update level", "level_id", level.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, level)
	}
}

// HandleDeleteLevel removes a level.
// @Summary Delete a level
// @Tags entities
// @Param id path string true "Level ID"
// @Success 204
// @Router /api/levels/{id} [delete]
func HandleDeleteLevel(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := cat.DeleteLevel(r.Context(), id); err != nil {
			logger.FromContext(r.Context()).Error("Failed to delete level", "level_id", id, "error", err)
			respondServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleGetLevel returns a level by id.
// @Summary Get level by id
// @Tags entities
// @Produce json
// @Param id path string true "Level ID"
// @Success 200 {object} domain.Level
// @Failure 404 {object} ErrorResponse
// @Router /api/levels/{id} [get]
func HandleGetLevel(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		level, ok := cat.Level(id)
		if !ok {
			respondServiceError(w, domain.ErrEntityNotFound)
			return
		}
		respondJSON(w, http.StatusOK, level)
	}
}

// HandleListLevels lists every level.
// @Summary List levels
// @Tags entities
// @Produce json
// @Success 200 {array} domain.Level
// @Router /api/levels [get]
func HandleListLevels(entities repository.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := entities.ListLevels(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list levels", "error", err)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// HandleListLevelsByCategory lists a category's ladder ordered by threshold.
// @Summary List levels for a point category
// @Tags entities
// @Produce json
// @Param category path string true "Point category"
// @Success 200 {array} domain.Level
// @Router /api/levels/category/{category} [get]
func HandleListLevelsByCategory(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := chi.URLParam(r, "category")
		respondJSON(w, http.StatusOK, cat.LevelsForCategory(category))
	}
}

// --- Point categories ---

// HandleCreatePointCategory registers a new point category.
// @Summary Create a point category
// @Tags entities
// @Accept json
// @Produce json
// @Param request body domain.PointCategory true "Point category definition"
// @Success 201 {object} domain.PointCategory
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/point-categories [post]
func HandleCreatePointCategory(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var category domain.PointCategory
		if err := DecodeAndValidateRequest(r, w, &category, "Create point category"); err != nil {
			return
		}
		if err := category.Validate(); err != nil {
			respondServiceError(w, err)
			return
		}

		if err := cat.CreatePointCategory(r.Context(), category); err != nil {
			logger.FromContext(r.Context()).Error("Failed to create point category", "category_id", category.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, category)
	}
}

// HandleUpdatePointCategory replaces an existing point category.
// @Summary Update a point category
// @Tags entities
// @Accept json
// @Produce json
// @Param id path string true "Point category ID"
// @Param request body domain.PointCategory true "Point category definition"
// @Success 200 {object} domain.PointCategory
// @Failure 404 {object} ErrorResponse
// @Router /api/point-categories/{id} [put]
func HandleUpdatePointCategory(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var category domain.PointCategory
		if err := DecodeAndValidateRequest(r, w, &category, "Update point category"); err != nil {
			return
		}
		category.ID = chi.URLParam(r, "id")
		if err := category.Validate(); err != nil {
			respondServiceError(w, err)
			return
		}

		if err := cat.UpdatePointCategory(r.Context(), category); err != nil {
			logger.FromContext(r.Context()).Error("Failed to update point category", "category_id", category.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, category)
	}
}

// HandleDeletePointCategory removes a point category.
// @Summary Delete a point category
// @Tags entities
// @Param id path string true "Point category ID"
// @Success 204
// @Router /api/point-categories/{id} [delete]
func HandleDeletePointCategory(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := cat.DeletePointCategory(r.Context(), id); err != nil {
			logger.FromContext(r.Context()).Error("Failed to delete point category", "category_id", id, "error", err)
			respondServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleGetPointCategory returns a point category by id.
// @Summary Get point category by id
// @Tags entities
// @Produce json
// @Param id path string true "Point category ID"
// @Success 200 {object} domain.PointCategory
// @Failure 404 {object} ErrorResponse
// @Router /api/point-categories/{id} [get]
func HandleGetPointCategory(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		category, ok := cat.PointCategory(id)
		if !ok {
			respondServiceError(w, domain.ErrCategoryNotFound)
			return
		}
		respondJSON(w, http.StatusOK, category)
	}
}

// HandleListPointCategories lists every point category.
// @Summary List point categories
// @Tags entities
// @Produce json
// @Success 200 {array} domain.PointCategory
// @Router /api/point-categories [get]
func HandleListPointCategories(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, cat.PointCategories())
	}
}

// --- Event definitions ---

// HandleCreateEventDefinition registers a new event definition.
// @Summary Create an event definition
// @Tags entities
// @Accept json
// @Produce json
// @Param request body domain.EventDefinition true "Event definition"
// @Success 201 {object} domain.EventDefinition
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/event-definitions [post]
func HandleCreateEventDefinition(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var def domain.EventDefinition
		if err := DecodeAndValidateRequest(r, w, &def, "Create event definition"); err != nil {
			return
		}
		if def.ID == "" {
			respondServiceError(w, fmt.Errorf("%w: id is required", domain.ErrInvalidInput))
			return
		}

		if err := cat.CreateEventDefinition(r.Context(), def); err != nil {
			logger.FromContext(r.Context()).Error("Failed to create event definition", "definition_id", def.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, def)
	}
}

// HandleUpdateEventDefinition replaces an existing event definition.
// @Summary Update an event definition
// @Tags entities
// @Accept json
// @Produce json
// @Param id path string true "Event definition ID"
// @Param request body domain.EventDefinition true "Event definition"
// @Success 200 {object} domain.EventDefinition
// @Failure 404 {object} ErrorResponse
// @Router /api/event-definitions/{id} [put]
func HandleUpdateEventDefinition(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var def domain.EventDefinition
		if err := DecodeAndValidateRequest(r, w, &def, "Update event definition"); err != nil {
			return
		}
		def.ID = chi.URLParam(r, "id")

		if err := cat.UpdateEventDefinition(r.Context(), def); err != nil {
			logger.FromContext(r.Context()).Error("Failed to update event definition", "definition_id", def.ID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, def)
	}
}

// HandleDeleteEventDefinition removes an event definition.
// @Summary Delete an event definition
// @Tags entities
// @Param id path string true "Event definition ID"
// @Success 204
// @Router /api/event-definitions/{id} [delete]
func HandleDeleteEventDefinition(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := cat.DeleteEventDefinition(r.Context(), id); err != nil {
			logger.FromContext(r.Context()).Error("Failed to delete event definition", "definition_id", id, "error", err)
			respondServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
