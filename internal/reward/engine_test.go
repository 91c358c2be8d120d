package reward

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmith/BadgeForge_Go/internal/catalog"
	"github.com/osmith/BadgeForge_Go/internal/concurrency"
	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/memstore"
	"github.com/osmith/BadgeForge_Go/internal/wallet"
)

type fixture struct {
	engine  *Engine
	wallets *memstore.WalletStore
	states  *memstore.UserStateStore
	history *memstore.RewardHistoryStore
	catalog *catalog.Catalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	entities := memstore.NewEntityStore()
	require.NoError(t, entities.CreatePointCategory(ctx, domain.PointCategory{ID: "xp", Name: "Experience", Aggregation: domain.AggregationSum}))
	require.NoError(t, entities.CreateBadge(ctx, domain.Badge{ID: "first-login", Name: "First Login", Visible: true}))
	require.NoError(t, entities.CreateTrophy(ctx, domain.Trophy{ID: "champion", Name: "Champion", Visible: true}))
	require.NoError(t, entities.CreateLevel(ctx, domain.Level{ID: "bronze", Name: "Bronze", Category: "xp", MinPoints: 0, Visible: true}))
	require.NoError(t, entities.CreateLevel(ctx, domain.Level{ID: "silver", Name: "Silver", Category: "xp", MinPoints: 100, Visible: true}))
	require.NoError(t, entities.CreateLevel(ctx, domain.Level{ID: "gold", Name: "Gold", Category: "xp", MinPoints: 500, Visible: true}))

	cat, err := catalog.New(ctx, entities)
	require.NoError(t, err)

	wallets := memstore.NewWalletStore()
	states := memstore.NewUserStateStore()
	history := memstore.NewRewardHistoryStore()
	walletSvc := wallet.NewService(wallets, concurrency.NewLockManager(), false)

	return &fixture{
		engine:  NewEngine(walletSvc, states, history, cat, concurrency.NewLockManager()),
		wallets: wallets,
		states:  states,
		history: history,
		catalog: cat,
	}
}

func testTrigger(id string) domain.Event {
	return domain.Event{
		ID:         id,
		Type:       "login",
		UserID:     "user-1",
		OccurredAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testRule(id string) domain.Rule {
	return domain.Rule{ID: id, Name: id, IsActive: true, Triggers: []string{"login"}}
}

func TestExecute_PointsReward(t *testing.T) {
	// ARRANGE
	f := newFixture(t)
	ctx := context.Background()
	trigger := testTrigger("evt-1")
	rule := testRule("rule-1")

	// ACT
	outcome, err := f.engine.Execute(ctx, trigger, rule, 0, domain.Reward{Type: domain.RewardPoints, Category: "xp", Amount: 50})

	// ASSERT: ledger, state and history all reflect the credit
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, int64(50), outcome.Amount)

	balance, err := f.wallets.GetBalance(ctx, "user-1", "xp")
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	state, err := f.states.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), state.PointsByCategory["xp"])
	assert.Equal(t, "bronze", state.LevelByCategory["xp"])

	assert.Equal(t, 2, f.history.Len()) // points entry plus the bronze level entry
}

func TestExecute_PointsReward_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trigger := testTrigger("evt-1")
	rule := testRule("rule-1")
	rw := domain.Reward{Type: domain.RewardPoints, Category: "xp", Amount: 50}

	first, err := f.engine.Execute(ctx, trigger, rule, 0, rw)
	require.NoError(t, err)
	require.True(t, first.Success)
	recorded := f.history.Len()

	// Replaying the same slot is a no-op on every store.
	second, err := f.engine.Execute(ctx, trigger, rule, 0, rw)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, "already executed", second.Message)

	balance, err := f.wallets.GetBalance(ctx, "user-1", "xp")
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)
	assert.Equal(t, recorded, f.history.Len())
}

func TestExecute_PointsReward_LevelUpChains(t *testing.T) {
	// ARRANGE: a credit that crosses the silver threshold
	f := newFixture(t)
	ctx := context.Background()

	// ACT
	outcome, err := f.engine.Execute(ctx, testTrigger("evt-1"), testRule("rule-1"), 0,
		domain.Reward{Type: domain.RewardPoints, Category: "xp", Amount: 150})

	// ASSERT: level recomputed and a synthetic level entry appended
	require.NoError(t, err)
	assert.True(t, outcome.Success)

	state, err := f.states.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "silver", state.LevelByCategory["xp"])

	var levelEntries int
	for _, e := range f.history.All() {
		if e.RewardType == domain.RewardLevel {
			levelEntries++
			assert.Equal(t, "silver", e.RewardID)
			assert.True(t, e.Success)
		}
	}
	assert.Equal(t, 1, levelEntries)
}

func TestExecute_PointsReward_UnknownCategoryFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outcome, err := f.engine.Execute(ctx, testTrigger("evt-1"), testRule("rule-1"), 0,
		domain.Reward{Type: domain.RewardPoints, Category: "nope", Amount: 50})

	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "unknown point category")

	// Failure is still recorded.
	assert.Equal(t, 1, f.history.Len())
}

func TestExecute_BadgeReward_IdempotentGrant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rw := domain.Reward{Type: domain.RewardBadge, BadgeID: "first-login"}

	// CASE 1: first grant
	outcome, err := f.engine.Execute(ctx, testTrigger("evt-1"), testRule("rule-1"), 0, rw)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Empty(t, outcome.Message)

	// CASE 2: re-grant from a different event is a successful no-op
	outcome, err = f.engine.Execute(ctx, testTrigger("evt-2"), testRule("rule-1"), 0, rw)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "already held", outcome.Message)

	state, err := f.states.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first-login"}, state.Badges)

	// Both executions are in the history.
	assert.Equal(t, 2, f.history.Len())
}

func TestExecute_BadgeReward_UnknownBadge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outcome, err := f.engine.Execute(ctx, testTrigger("evt-1"), testRule("rule-1"), 0,
		domain.Reward{Type: domain.RewardBadge, BadgeID: "nope"})

	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "unknown badge")
}

func TestExecute_TrophyReward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outcome, err := f.engine.Execute(ctx, testTrigger("evt-1"), testRule("rule-1"), 0,
		domain.Reward{Type: domain.RewardTrophy, TrophyID: "champion"})

	require.NoError(t, err)
	assert.True(t, outcome.Success)

	state, err := f.states.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, state.HasTrophy("champion"))
}

func TestExecute_LevelReward_ThresholdEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// CASE 1: threshold not met
	outcome, err := f.engine.Execute(ctx, testTrigger("evt-1"), testRule("rule-1"), 0,
		domain.Reward{Type: domain.RewardLevel, LevelID: "silver"})
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, "threshold not met", outcome.Message)

	// CASE 2: met after earning enough
	_, err = f.engine.Execute(ctx, testTrigger("evt-2"), testRule("rule-2"), 0,
		domain.Reward{Type: domain.RewardPoints, Category: "xp", Amount: 120})
	require.NoError(t, err)

	outcome, err = f.engine.Execute(ctx, testTrigger("evt-3"), testRule("rule-1"), 0,
		domain.Reward{Type: domain.RewardLevel, LevelID: "silver"})
	require.NoError(t, err)
	assert.True(t, outcome.Success)

	state, err := f.states.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "silver", state.LevelByCategory["xp"])
}

func TestExecute_PenaltyPoints_ClampsAtZero(t *testing.T) {
	// ARRANGE: user has 30 xp
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.engine.Execute(ctx, testTrigger("evt-1"), testRule("rule-earn"), 0,
		domain.Reward{Type: domain.RewardPoints, Category: "xp", Amount: 30})
	require.NoError(t, err)

	// ACT: a 100 point penalty
	outcome, err := f.engine.Execute(ctx, testTrigger("evt-2"), testRule("rule-penalty"), 0,
		domain.Reward{Type: domain.RewardPenalty, PenaltyType: domain.PenaltyPoints, Category: "xp", Amount: 100})

	// ASSERT: bounded category never goes negative
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, int64(-30), outcome.Amount)

	balance, err := f.wallets.GetBalance(ctx, "user-1", "xp")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	state, err := f.states.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.PointsByCategory["xp"])
}

func TestExecute_PenaltyBadge_Revokes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.engine.Execute(ctx, testTrigger("evt-1"), testRule("rule-grant"), 0,
		domain.Reward{Type: domain.RewardBadge, BadgeID: "first-login"})
	require.NoError(t, err)

	outcome, err := f.engine.Execute(ctx, testTrigger("evt-2"), testRule("rule-revoke"), 0,
		domain.Reward{Type: domain.RewardPenalty, PenaltyType: domain.PenaltyBadge, TargetID: "first-login"})

	require.NoError(t, err)
	assert.True(t, outcome.Success)

	state, err := f.states.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, state.HasBadge("first-login"))
}

func TestExecute_PenaltyUnknownType_RecordedAsFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outcome, err := f.engine.Execute(ctx, testTrigger("evt-1"), testRule("rule-1"), 0,
		domain.Reward{Type: domain.RewardPenalty, PenaltyType: "exile"})

	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "unknown penalty type")
	assert.Equal(t, 1, f.history.Len())
}

func TestExecute_UnknownRewardType_RecordedAsFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outcome, err := f.engine.Execute(ctx, testTrigger("evt-1"), testRule("rule-1"), 0,
		domain.Reward{Type: "confetti"})

	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, "unknown reward type")
}

func TestExecuteSpending_SpendAndTransfer(t *testing.T) {
	// ARRANGE: fund the user
	f := newFixture(t)
	ctx := context.Background()
	trigger := testTrigger("evt-1")
	_, err := f.engine.Execute(ctx, trigger, testRule("rule-earn"), 0,
		domain.Reward{Type: domain.RewardPoints, Category: "xp", Amount: 100})
	require.NoError(t, err)

	// CASE 1: spend
	outcome, err := f.engine.ExecuteSpending(ctx, trigger, testRule("rule-1"), 0,
		domain.Spending{Type: domain.SpendingSpend, Category: "xp", Amount: 30})
	require.NoError(t, err)
	assert.True(t, outcome.Success)

	// CASE 2: transfer
	outcome, err = f.engine.ExecuteSpending(ctx, trigger, testRule("rule-1"), 1,
		domain.Spending{Type: domain.SpendingTransfer, Category: "xp", Amount: 20, DestinationUserID: "user-2"})
	require.NoError(t, err)
	assert.True(t, outcome.Success)

	srcBal, err := f.wallets.GetBalance(ctx, "user-1", "xp")
	require.NoError(t, err)
	dstBal, err := f.wallets.GetBalance(ctx, "user-2", "xp")
	require.NoError(t, err)
	assert.Equal(t, int64(50), srcBal)
	assert.Equal(t, int64(20), dstBal)
}

func TestExecuteSpending_InsufficientBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outcome, err := f.engine.ExecuteSpending(ctx, testTrigger("evt-1"), testRule("rule-1"), 0,
		domain.Spending{Type: domain.SpendingSpend, Category: "xp", Amount: 10})

	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Message, domain.ErrMsgInsufficientBalance)
}
