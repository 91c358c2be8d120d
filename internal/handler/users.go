package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osmith/BadgeForge_Go/internal/catalog"
	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/logger"
	"github.com/osmith/BadgeForge_Go/internal/repository"
	"github.com/osmith/BadgeForge_Go/internal/wallet"
)

// UserBadgeResponse pairs a held badge id with its catalog entry when one
// still exists.
type UserBadgeResponse struct {
	ID    string        `json:"id"`
	Badge *domain.Badge `json:"badge,omitempty"`
}

// UserTrophyResponse pairs a held trophy id with its catalog entry when one
// still exists.
type UserTrophyResponse struct {
	ID     string         `json:"id"`
	Trophy *domain.Trophy `json:"trophy,omitempty"`
}

// UserLevelResponse resolves a user's level in one category.
type UserLevelResponse struct {
	Category string        `json:"category"`
	LevelID  string        `json:"levelId,omitempty"`
	Level    *domain.Level `json:"level,omitempty"`
}

// CategoryBalanceResponse is a single category balance.
type CategoryBalanceResponse struct {
	Category string `json:"category"`
	Balance  int64  `json:"balance"`
}

// HandleGetUserState returns the full per-user projection.
// @Summary Get user state
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} domain.UserState
// @Router /api/users/{userId}/state [get]
func HandleGetUserState(states repository.UserState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")

		state, err := states.GetByUser(r.Context(), userID)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to get user state", "user_id", userID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, state)
	}
}

// HandleGetUserPoints returns every category balance for a user.
// @Summary Get user point balances
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} domain.WalletBalance
// @Router /api/users/{userId}/points [get]
func HandleGetUserPoints(wallets *wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")

		balances, err := wallets.ListBalances(r.Context(), userID)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list user balances", "user_id", userID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, balances)
	}
}

// HandleGetUserPointsByCategory returns one category balance, zero for
// categories the user has never touched.
// @Summary Get user point balance for a category
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Param category path string true "Point category"
// @Success 200 {object} CategoryBalanceResponse
// @Router /api/users/{userId}/points/{category} [get]
func HandleGetUserPointsByCategory(wallets *wallet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		category := chi.URLParam(r, "category")

		balance, err := wallets.GetBalance(r.Context(), userID, category)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to get user balance", "user_id", userID, "category", category, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, CategoryBalanceResponse{Category: category, Balance: balance})
	}
}

// HandleGetUserBadges returns the user's badges resolved against the catalog.
// @Summary Get user badges
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} UserBadgeResponse
// @Router /api/users/{userId}/badges [get]
func HandleGetUserBadges(states repository.UserState, cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")

		state, err := states.GetByUser(r.Context(), userID)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to get user state", "user_id", userID, "error", err)
			respondServiceError(w, err)
			return
		}

		resp := make([]UserBadgeResponse, 0, len(state.Badges))
		for _, id := range state.Badges {
			entry := UserBadgeResponse{ID: id}
			if badge, ok := cat.Badge(id); ok {
				entry.Badge = &badge
			}
			resp = append(resp, entry)
		}

		respondJSON(w, http.StatusOK, resp)
	}
}

// HandleGetUserTrophies returns the user's trophies resolved against the
// catalog.
// @Summary Get user trophies
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} UserTrophyResponse
// @Router /api/users/{userId}/trophies [get]
func HandleGetUserTrophies(states repository.UserState, cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")

		state, err := states.GetByUser(r.Context(), userID)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to get user state", "user_id", userID, "error", err)
			respondServiceError(w, err)
			return
		}

		resp := make([]UserTrophyResponse, 0, len(state.Trophies))
		for _, id := range state.Trophies {
			entry := UserTrophyResponse{ID: id}
			if trophy, ok := cat.Trophy(id); ok {
				entry.Trophy = &trophy
			}
			resp = append(resp, entry)
		}

		respondJSON(w, http.StatusOK, resp)
	}
}

// HandleGetUserLevels returns the user's level in every category it has one.
// @Summary Get user levels
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} UserLevelResponse
// @Router /api/users/{userId}/levels [get]
func HandleGetUserLevels(states repository.UserState, cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")

		state, err := states.GetByUser(r.Context(), userID)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to get user state", "user_id", userID, "error", err)
			respondServiceError(w, err)
			return
		}

		resp := make([]UserLevelResponse, 0, len(state.LevelByCategory))
		for category, levelID := range state.LevelByCategory {
			entry := UserLevelResponse{Category: category, LevelID: levelID}
			if level, ok := cat.Level(levelID); ok {
				entry.Level = &level
			}
			resp = append(resp, entry)
		}

		respondJSON(w, http.StatusOK, resp)
	}
}

// HandleGetUserLevelByCategory resolves the user's level in one category.
// @Summary Get user level for a category
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Param category path string true "Point category"
// @Success 200 {object} UserLevelResponse
// @Router /api/users/{userId}/levels/{category} [get]
func HandleGetUserLevelByCategory(states repository.UserState, cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		category := chi.URLParam(r, "category")

		state, err := states.GetByUser(r.Context(), userID)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to get user state", "user_id", userID, "error", err)
			respondServiceError(w, err)
			return
		}

		entry := UserLevelResponse{Category: category, LevelID: state.LevelByCategory[category]}
		if entry.LevelID != "" {
			if level, ok := cat.Level(entry.LevelID); ok {
				entry.Level = &level
			}
		}

		respondJSON(w, http.StatusOK, entry)
	}
}

// HandleGetUserRewardHistory returns the user's reward history, newest first.
// @Summary Get user reward history
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {array} domain.RewardHistory
// @Failure 400 {object} ErrorResponse
// @Router /api/users/{userId}/rewards/history [get]
func HandleGetUserRewardHistory(history repository.RewardHistory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")

		page, pageSize, err := pagination(r)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		entries, err := history.GetByUser(r.Context(), userID, page, pageSize)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to get reward history", "user_id", userID, "error", err)
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, entries)
	}
}
