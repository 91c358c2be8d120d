package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	// ARRANGE
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/users/{userId}/state", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ACT - two distinct user ids hit the same route
	for _, path := range []string{"/api/users/alice/state", "/api/users/bob/state"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	// ASSERT - both requests land on the one pattern label, not one per user
	pattern := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/users/{userId}/state", "200")
	assert.Equal(t, float64(2), testutil.ToFloat64(pattern))

	raw := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/users/alice/state", "200")
	assert.Equal(t, float64(0), testutil.ToFloat64(raw))
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	// ARRANGE
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// ACT
	req := httptest.NewRequest(http.MethodGet, "/no/such/route", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	// ASSERT
	unmatched := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	assert.Equal(t, float64(1), testutil.ToFloat64(unmatched))
}
