package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/memstore"
)

func ruleRouter(rules *memstore.RuleStore) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/rules", HandleCreateRule(rules))
	r.Get("/rules", HandleListRules(rules))
	r.Get("/rules/{id}", HandleGetRule(rules))
	r.Put("/rules/{id}", HandleUpdateRule(rules))
	r.Delete("/rules/{id}", HandleDeleteRule(rules))
	r.Post("/rules/{id}/activate", HandleSetRuleActive(rules, true))
	r.Post("/rules/{id}/deactivate", HandleSetRuleActive(rules, false))
	return r
}

const ruleBody = `{
	"id": "r1",
	"name": "Login points",
	"isActive": true,
	"triggers": ["login"],
	"rewards": [{"type": "points", "category": "xp", "amount": 10}]
}`

func TestRuleHandlers_CRUD(t *testing.T) {
	// ARRANGE
	rules := memstore.NewRuleStore()
	router := ruleRouter(rules)

	// ACT: create
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/rules", strings.NewReader(ruleBody)))

	// ASSERT
	require.Equal(t, http.StatusCreated, w.Code)

	// CASE 1: duplicate create conflicts
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/rules", strings.NewReader(ruleBody)))
	assert.Equal(t, http.StatusConflict, w.Code)

	// CASE 2: get returns the rule
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/rules/r1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Login points"`)

	// CASE 3: deactivate hides the rule from the active listing
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/rules/r1/deactivate", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/rules?active=true", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"id":"r1"`)

	// CASE 4: delete then get reports not found
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/rules/r1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/rules/r1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRuleHandlers_ListByTrigger(t *testing.T) {
	// ARRANGE
	rules := memstore.NewRuleStore()
	require.NoError(t, rules.Create(context.Background(), domain.Rule{
		ID: "r-login", Name: "On login", IsActive: true, Triggers: []string{"login"},
		Rewards: []domain.Reward{{Type: domain.RewardPoints, Category: "xp", Amount: 5}},
	}))
	require.NoError(t, rules.Create(context.Background(), domain.Rule{
		ID: "r-purchase", Name: "On purchase", IsActive: true, Triggers: []string{"purchase"},
		Rewards: []domain.Reward{{Type: domain.RewardPoints, Category: "xp", Amount: 50}},
	}))
	router := ruleRouter(rules)

	// ACT
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/rules?trigger=login", nil))

	// ASSERT
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"r-login"`)
	assert.NotContains(t, w.Body.String(), `"id":"r-purchase"`)
}

func TestRuleHandlers_UpdateMissing(t *testing.T) {
	// ARRANGE
	router := ruleRouter(memstore.NewRuleStore())

	// ACT
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("PUT", "/rules/r1", strings.NewReader(ruleBody)))

	// ASSERT
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrMsgRuleNotFound)
}
