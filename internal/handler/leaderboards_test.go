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

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/leaderboard"
	"github.com/osmith/BadgeForge_Go/internal/memstore"
)

func boardRouter(t *testing.T) *chi.Mux {
	t.Helper()

	wallets := memstore.NewWalletStore()
	states := memstore.NewUserStateStore()
	history := memstore.NewRewardHistoryStore()

	for i, tx := range []domain.WalletTransaction{
		{UserID: "alice", CategoryID: "xp", Type: domain.TxEarn, Amount: 300},
		{UserID: "bob", CategoryID: "xp", Type: domain.TxEarn, Amount: 100},
		{UserID: "carol", CategoryID: "xp", Type: domain.TxEarn, Amount: 200},
	} {
		tx.ID = string(rune('a' + i))
		tx.Timestamp = time.Now().UTC()
		require.NoError(t, wallets.RecordTransaction(context.Background(), tx))
	}

	boards := leaderboard.New(wallets, states, history, testCatalog(t), time.Minute)

	r := chi.NewRouter()
	r.Get("/leaderboards", HandleQueryLeaderboard(boards))
	r.Post("/leaderboards/refresh", HandleRefreshLeaderboards(boards))
	r.Get("/leaderboards/user/{userId}/rank", HandleGetUserRank(boards))
	r.Get("/leaderboards/{kind}", HandleGetLeaderboard(boards))
	r.Get("/leaderboards/{kind}/{category}", HandleGetLeaderboard(boards))
	return r
}

func TestHandleQueryLeaderboard(t *testing.T) {
	// ARRANGE
	router := boardRouter(t)

	// ACT
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/leaderboards?type=points&category=xp", nil))

	// ASSERT
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":3`)
	assert.Contains(t, w.Body.String(), `"userId":"alice"`)

	// CASE: unknown kind rejected
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/leaderboards?type=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleQueryLeaderboard_Pagination(t *testing.T) {
	// ARRANGE
	router := boardRouter(t)

	// ACT
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET",
		"/leaderboards?type=points&category=xp&page=2&pageSize=2", nil))

	// ASSERT: page 2 holds only the third-ranked user
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":"bob"`)
	assert.NotContains(t, w.Body.String(), `"userId":"alice"`)
}

func TestHandleGetUserRank(t *testing.T) {
	// ARRANGE
	router := boardRouter(t)

	// ACT
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET",
		"/leaderboards/user/carol/rank?type=points&category=xp", nil))

	// ASSERT
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ranked":true`)
	assert.Contains(t, w.Body.String(), `"rank":2`)

	// CASE: unranked user
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET",
		"/leaderboards/user/nobody/rank?type=points&category=xp", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ranked":false`)
}

func TestHandleRefreshLeaderboards(t *testing.T) {
	// ARRANGE
	router := boardRouter(t)

	// ACT: no parameters purges everything
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/leaderboards/refresh", nil))

	// ASSERT
	assert.Equal(t, http.StatusNoContent, w.Code)

	// CASE: targeted refresh with a bad kind is rejected
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/leaderboards/refresh?type=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
