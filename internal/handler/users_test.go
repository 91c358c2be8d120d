package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmith/BadgeForge_Go/internal/catalog"
	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/memstore"
)

func userFixtures(t *testing.T) (*memstore.UserStateStore, *catalog.Catalog) {
	t.Helper()

	entities := memstore.NewEntityStore()
	require.NoError(t, entities.CreateBadge(context.Background(), domain.Badge{
		ID: "first-login", Name: "First Login", Visible: true,
	}))
	cat, err := catalog.New(context.Background(), entities)
	require.NoError(t, err)

	states := memstore.NewUserStateStore()
	state := domain.NewUserState("user1")
	state.AddPoints("xp", 120)
	state.GrantBadge("first-login")
	state.GrantBadge("ghost-badge")
	require.NoError(t, states.Save(context.Background(), state))

	return states, cat
}

func TestHandleGetUserState(t *testing.T) {
	// ARRANGE
	states, _ := userFixtures(t)
	r := chi.NewRouter()
	r.Get("/users/{userId}/state", HandleGetUserState(states))

	// ACT
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/users/user1/state", nil))

	// ASSERT
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"xp":120`)
	assert.Contains(t, w.Body.String(), `"first-login"`)

	// CASE: unseen users get an empty state, not an error
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/users/stranger/state", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":"stranger"`)
}

func TestHandleGetUserBadges(t *testing.T) {
	// ARRANGE
	states, cat := userFixtures(t)
	r := chi.NewRouter()
	r.Get("/users/{userId}/badges", HandleGetUserBadges(states, cat))

	// ACT
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/users/user1/badges", nil))

	// ASSERT: catalog entry resolved when present, bare id otherwise
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"First Login"`)
	assert.Contains(t, w.Body.String(), `"id":"ghost-badge"`)
}

func TestHandleGetUserRewardHistory(t *testing.T) {
	// ARRANGE
	history := memstore.NewRewardHistoryStore()
	for i, id := range []string{"h1", "h2", "h3"} {
		require.NoError(t, history.Append(context.Background(), domain.RewardHistory{
			ID: id, UserID: "user1", RewardType: domain.RewardPoints,
			TriggerEventID: "ev1", RuleID: "r1", Position: i,
			AwardedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
			Success:   true,
		}))
	}

	r := chi.NewRouter()
	r.Get("/users/{userId}/rewards/history", HandleGetUserRewardHistory(history))

	// ACT
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/users/user1/rewards/history?page=1&pageSize=2", nil))

	// ASSERT: newest first, page bounded
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"h3"`)
	assert.NotContains(t, w.Body.String(), `"id":"h1"`)

	// CASE: out-of-range page size rejected
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/users/user1/rewards/history?pageSize=5000", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
