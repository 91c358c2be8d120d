package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmith/BadgeForge_Go/internal/catalog"
	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/memstore"
	"github.com/osmith/BadgeForge_Go/internal/queue"
)

func TestMain(m *testing.M) {
	InitValidator()
	os.Exit(m.Run())
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	entities := memstore.NewEntityStore()
	require.NoError(t, entities.CreateEventDefinition(context.Background(), domain.EventDefinition{
		ID: "login", Description: "User logged in",
	}))
	require.NoError(t, entities.CreatePointCategory(context.Background(), domain.PointCategory{
		ID: "xp", Name: "Experience", Aggregation: domain.AggregationSum,
	}))

	cat, err := catalog.New(context.Background(), entities)
	require.NoError(t, err)
	return cat
}

func TestHandleIngestEvent(t *testing.T) {
	t.Run("accepts known event and assigns id", func(t *testing.T) {
		// ARRANGE
		q := queue.New(4)
		h := HandleIngestEvent(q, testCatalog(t), true)

		req := httptest.NewRequest("POST", "/api/events",
			strings.NewReader(`{"eventType":"login","userId":"user1"}`))
		w := httptest.NewRecorder()

		// ACT
		h.ServeHTTP(w, req)

		// ASSERT
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"eventType":"login"`)
		assert.Contains(t, w.Body.String(), `"eventId"`)
		assert.Equal(t, 1, q.Size())
	})

	t.Run("rejects unknown type in strict mode", func(t *testing.T) {
		// ARRANGE
		q := queue.New(4)
		h := HandleIngestEvent(q, testCatalog(t), true)

		req := httptest.NewRequest("POST", "/api/events",
			strings.NewReader(`{"eventType":"mystery","userId":"user1"}`))
		w := httptest.NewRecorder()

		// ACT
		h.ServeHTTP(w, req)

		// ASSERT
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), domain.ErrMsgUnknownEventType)
		assert.Equal(t, 0, q.Size())
	})

	t.Run("accepts unknown type when strict mode is off", func(t *testing.T) {
		// ARRANGE
		q := queue.New(4)
		h := HandleIngestEvent(q, testCatalog(t), false)

		req := httptest.NewRequest("POST", "/api/events",
			strings.NewReader(`{"eventType":"mystery","userId":"user1"}`))
		w := httptest.NewRecorder()

		// ACT
		h.ServeHTTP(w, req)

		// ASSERT
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, q.Size())
	})

	t.Run("rejects missing user id", func(t *testing.T) {
		// ARRANGE
		q := queue.New(4)
		h := HandleIngestEvent(q, testCatalog(t), false)

		req := httptest.NewRequest("POST", "/api/events",
			strings.NewReader(`{"eventType":"login"}`))
		w := httptest.NewRecorder()

		// ACT
		h.ServeHTTP(w, req)

		// ASSERT
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		// ARRANGE
		q := queue.New(4)
		h := HandleIngestEvent(q, testCatalog(t), false)

		req := httptest.NewRequest("POST", "/api/events", strings.NewReader(`{not json`))
		w := httptest.NewRecorder()

		// ACT
		h.ServeHTTP(w, req)

		// ASSERT
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgInvalidBodyError)
	})
}

func TestHandleDryRun_Disabled(t *testing.T) {
	// ARRANGE
	h := HandleDryRun(nil, testCatalog(t), false, false)

	req := httptest.NewRequest("POST", "/api/events/sandbox/dry-run",
		strings.NewReader(`{"eventType":"login","userId":"user1"}`))
	w := httptest.NewRecorder()

	// ACT
	h.ServeHTTP(w, req)

	// ASSERT
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrMsgSimulationDisabled)
}

func TestHandleEventCatalog(t *testing.T) {
	// ARRANGE
	h := HandleEventCatalog(testCatalog(t))

	req := httptest.NewRequest("GET", "/api/events/catalog", nil)
	w := httptest.NewRecorder()

	// ACT
	h.ServeHTTP(w, req)

	// ASSERT
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"login"`)
}
