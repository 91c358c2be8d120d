package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/memstore"
)

func seededStore(t *testing.T) *memstore.EntityStore {
	t.Helper()
	ctx := context.Background()
	store := memstore.NewEntityStore()

	require.NoError(t, store.CreatePointCategory(ctx, domain.PointCategory{
		ID: "xp", Name: "Experience", Aggregation: domain.AggregationSum,
	}))
	require.NoError(t, store.CreateBadge(ctx, domain.Badge{ID: "b1", Name: "Starter", Visible: true}))
	for _, level := range []domain.Level{
		{ID: "bronze", Name: "Bronze", Category: "xp", MinPoints: 0},
		{ID: "silver", Name: "Silver", Category: "xp", MinPoints: 100},
		{ID: "gold", Name: "Gold", Category: "xp", MinPoints: 500},
	} {
		require.NoError(t, store.CreateLevel(ctx, level))
	}
	require.NoError(t, store.CreateEventDefinition(ctx, domain.EventDefinition{ID: "login"}))
	return store
}

func TestCatalog_Lookups(t *testing.T) {
	// ARRANGE
	cat, err := New(context.Background(), seededStore(t))
	require.NoError(t, err)

	// ASSERT
	badge, ok := cat.Badge("b1")
	assert.True(t, ok)
	assert.Equal(t, "Starter", badge.Name)

	_, ok = cat.Badge("missing")
	assert.False(t, ok)

	assert.True(t, cat.KnownEventType("login"))
	assert.False(t, cat.KnownEventType("logout"))

	ladder := cat.LevelsForCategory("xp")
	require.Len(t, ladder, 3)
	assert.Equal(t, "bronze", ladder[0].ID)
	assert.Equal(t, "gold", ladder[2].ID)
}

func TestCatalog_CurrentLevel(t *testing.T) {
	// ARRANGE
	cat, err := New(context.Background(), seededStore(t))
	require.NoError(t, err)

	// CASE 1: balance between thresholds resolves to the lower level
	level, ok := cat.CurrentLevel("xp", 250)
	require.True(t, ok)
	assert.Equal(t, "silver", level.ID)

	// CASE 2: exact threshold counts
	level, ok = cat.CurrentLevel("xp", 500)
	require.True(t, ok)
	assert.Equal(t, "gold", level.ID)

	// CASE 3: category without a ladder has no level
	_, ok = cat.CurrentLevel("karma", 1000)
	assert.False(t, ok)
}

func TestCatalog_WriteThrough(t *testing.T) {
	// ARRANGE
	ctx := context.Background()
	store := seededStore(t)
	cat, err := New(ctx, store)
	require.NoError(t, err)

	var notified []string
	cat.OnChange(func(category string) { notified = append(notified, category) })

	// ACT: create lands in both the store and the snapshot
	require.NoError(t, cat.CreateBadge(ctx, domain.Badge{ID: "b2", Name: "Veteran"}))

	// ASSERT
	_, ok := cat.Badge("b2")
	assert.True(t, ok)
	stored, err := store.GetBadge(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, "Veteran", stored.Name)

	// CASE: level changes notify listeners with the ladder's category
	require.NoError(t, cat.CreateLevel(ctx, domain.Level{
		ID: "platinum", Name: "Platinum", Category: "xp", MinPoints: 1000,
	}))
	assert.Contains(t, notified, "xp")
}

func TestCatalog_ReloadPicksUpExternalWrites(t *testing.T) {
	// ARRANGE
	ctx := context.Background()
	store := seededStore(t)
	cat, err := New(ctx, store)
	require.NoError(t, err)

	// Write behind the catalog's back, as a second engine instance would.
	require.NoError(t, store.CreateBadge(ctx, domain.Badge{ID: "b9", Name: "Outsider"}))
	_, ok := cat.Badge("b9")
	require.False(t, ok)

	// ACT
	require.NoError(t, cat.Reload(ctx))

	// ASSERT
	_, ok = cat.Badge("b9")
	assert.True(t, ok)
}
