package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/leaderboard"
	"github.com/osmith/BadgeForge_Go/internal/logger"
)

// LeaderboardPageResponse is one page of a ranked board.
type LeaderboardPageResponse struct {
	Kind        domain.LeaderboardKind    `json:"kind"`
	Category    string                    `json:"category,omitempty"`
	TimeRange   domain.TimeRange          `json:"timeRange"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"pageSize"`
	Total       int                       `json:"total"`
	Entries     []domain.LeaderboardEntry `json:"entries"`
	GeneratedAt string                    `json:"generatedAt"`
}

// UserRankResponse is a single user's position on a board.
type UserRankResponse struct {
	Kind      domain.LeaderboardKind   `json:"kind"`
	Category  string                   `json:"category,omitempty"`
	TimeRange domain.TimeRange         `json:"timeRange"`
	Ranked    bool                     `json:"ranked"`
	Entry     *domain.LeaderboardEntry `json:"entry,omitempty"`
}

func parseBoardQuery(r *http.Request) (domain.LeaderboardKind, string, domain.TimeRange, error) {
	kind := domain.LeaderboardKind(r.URL.Query().Get("type"))
	if kind == "" {
		kind = domain.LeaderboardPoints
	}
	if !domain.ValidLeaderboardKind(kind) {
		return "", "", "", fmt.Errorf("%w: unknown leaderboard type %q", domain.ErrInvalidInput, kind)
	}

	timeRange := domain.TimeRange(r.URL.Query().Get("timeRange"))
	if timeRange == "" {
		timeRange = domain.RangeAllTime
	}
	if !domain.ValidTimeRange(timeRange) {
		return "", "", "", fmt.Errorf("%w: unknown time range %q", domain.ErrInvalidInput, timeRange)
	}

	return kind, r.URL.Query().Get("category"), timeRange, nil
}

func respondBoardPage(w http.ResponseWriter, r *http.Request, p *leaderboard.Projector, kind domain.LeaderboardKind, category string, timeRange domain.TimeRange) {
	page, pageSize, err := pagination(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	board, err := p.Get(r.Context(), kind, category, timeRange)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to build leaderboard", "kind", kind, "category", category, "time_range", timeRange, "error", err)
		respondServiceError(w, err)
		return
	}

	entries, total := board.Page(page, pageSize)
	respondJSON(w, http.StatusOK, LeaderboardPageResponse{
		Kind:        board.Kind,
		Category:    board.Category,
		TimeRange:   board.TimeRange,
		Page:        page,
		PageSize:    pageSize,
		Total:       total,
		Entries:     entries,
		GeneratedAt: board.GeneratedAt.Format(time.RFC3339),
	})
}

// HandleQueryLeaderboard serves a board selected by query parameters.
// @Summary Query a leaderboard
// @Tags leaderboards
// @Produce json
// @Param type query string false "Board kind (points, badges, trophies, level)" default(points)
// @Param category query string false "Point category (points and level boards)"
// @Param timeRange query string false "daily, weekly, monthly or alltime" default(alltime)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} LeaderboardPageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/leaderboards [get]
func HandleQueryLeaderboard(p *leaderboard.Projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, category, timeRange, err := parseBoardQuery(r)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondBoardPage(w, r, p, kind, category, timeRange)
	}
}

// HandleGetLeaderboard serves a board whose kind is fixed by the route.
// @Summary Get a leaderboard by kind
// @Tags leaderboards
// @Produce json
// @Param kind path string true "Board kind"
// @Param category path string false "Point category"
// @Param timeRange query string false "daily, weekly, monthly or alltime" default(alltime)
// @Success 200 {object} LeaderboardPageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/leaderboards/{kind}/{category} [get]
func HandleGetLeaderboard(p *leaderboard.Projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := domain.LeaderboardKind(chi.URLParam(r, "kind"))
		if !domain.ValidLeaderboardKind(kind) {
			respondServiceError(w, fmt.Errorf("%w: unknown leaderboard type %q", domain.ErrInvalidInput, kind))
			return
		}

		timeRange := domain.TimeRange(r.URL.Query().Get("timeRange"))
		if timeRange == "" {
			timeRange = domain.RangeAllTime
		}
		if !domain.ValidTimeRange(timeRange) {
			respondServiceError(w, fmt.Errorf("%w: unknown time range %q", domain.ErrInvalidInput, timeRange))
			return
		}

		respondBoardPage(w, r, p, kind, chi.URLParam(r, "category"), timeRange)
	}
}

// HandleGetUserRank returns a user's position on a board.
// @Summary Get a user's leaderboard rank
// @Tags leaderboards
// @Produce json
// @Param userId path string true "User ID"
// @Param type query string false "Board kind" default(points)
// @Param category query string false "Point category"
// @Param timeRange query string false "Time range" default(alltime)
// @Success 200 {object} UserRankResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/leaderboards/user/{userId}/rank [get]
func HandleGetUserRank(p *leaderboard.Projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")

		kind, category, timeRange, err := parseBoardQuery(r)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		entry, ranked, err := p.UserRank(r.Context(), kind, category, timeRange, userID)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to resolve user rank", "user_id", userID, "kind", kind, "error", err)
			respondServiceError(w, err)
			return
		}

		resp := UserRankResponse{Kind: kind, Category: category, TimeRange: timeRange, Ranked: ranked}
		if ranked {
			resp.Entry = &entry
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// HandleRefreshLeaderboards evicts cached boards. With no parameters the
// whole cache is purged; with parameters only the matching tuple is evicted.
// @Summary Refresh leaderboard caches
// @Tags leaderboards
// @Param type query string false "Board kind"
// @Param category query string false "Point category"
// @Param timeRange query string false "Time range"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Router /api/leaderboards/refresh [post]
func HandleRefreshLeaderboards(p *leaderboard.Projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		q := r.URL.Query()

		if q.Get("type") == "" && q.Get("category") == "" && q.Get("timeRange") == "" {
			p.InvalidateCategory("")
			log.Info("Leaderboard cache purged")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		kind, category, timeRange, err := parseBoardQuery(r)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		p.Refresh(kind, category, timeRange)
		log.Info("Leaderboard refreshed", "kind", kind, "category", category, "time_range", timeRange)
		w.WriteHeader(http.StatusNoContent)
	}
}
