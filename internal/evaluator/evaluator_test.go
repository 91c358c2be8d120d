package evaluator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmith/BadgeForge_Go/internal/catalog"
	"github.com/osmith/BadgeForge_Go/internal/concurrency"
	"github.com/osmith/BadgeForge_Go/internal/condition"
	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/memstore"
	"github.com/osmith/BadgeForge_Go/internal/reward"
	"github.com/osmith/BadgeForge_Go/internal/wallet"
)

type fixture struct {
	evaluator *Evaluator
	events    *memstore.EventStore
	rules     *memstore.RuleStore
	states    *memstore.UserStateStore
	wallets   *memstore.WalletStore
	history   *memstore.RewardHistoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	entities := memstore.NewEntityStore()
	require.NoError(t, entities.CreatePointCategory(ctx, domain.PointCategory{ID: "xp", Name: "Experience", Aggregation: domain.AggregationSum}))
	require.NoError(t, entities.CreateBadge(ctx, domain.Badge{ID: "first-comment", Name: "First Comment", Visible: true}))
	require.NoError(t, entities.CreateLevel(ctx, domain.Level{ID: "beginner", Name: "Beginner", Category: "xp", MinPoints: 0, Visible: true}))
	require.NoError(t, entities.CreateLevel(ctx, domain.Level{ID: "intermediate", Name: "Intermediate", Category: "xp", MinPoints: 100, Visible: true}))
	require.NoError(t, entities.CreateLevel(ctx, domain.Level{ID: "advanced", Name: "Advanced", Category: "xp", MinPoints: 500, Visible: true}))

	cat, err := catalog.New(ctx, entities)
	require.NoError(t, err)

	f := &fixture{
		events:  memstore.NewEventStore(),
		rules:   memstore.NewRuleStore(),
		states:  memstore.NewUserStateStore(),
		wallets: memstore.NewWalletStore(),
		history: memstore.NewRewardHistoryStore(),
	}
	walletSvc := wallet.NewService(f.wallets, concurrency.NewLockManager(), false)
	rewards := reward.NewEngine(walletSvc, f.states, f.history, cat, concurrency.NewLockManager())
	f.evaluator = New(f.rules, f.events, f.wallets, f.states, cat, condition.NewEngine(), rewards, 1000, false)
	return f
}

// ingest stores the event and evaluates it, the way the processor does.
func (f *fixture) ingest(t *testing.T, ev domain.Event) domain.RuleEvaluationResult {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.events.Store(ctx, ev))
	result, err := f.evaluator.Execute(ctx, ev)
	require.NoError(t, err)
	return result
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}

func TestExecute_FirstCommentBadge(t *testing.T) {
	// ARRANGE
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.rules.Create(ctx, domain.Rule{
		ID: "R1", Name: "First comment", IsActive: true,
		Triggers:   []string{"USER_COMMENTED"},
		Conditions: []domain.Condition{{ID: "c1", Type: domain.ConditionFirstOccurrence}},
		Rewards:    []domain.Reward{{Type: domain.RewardBadge, BadgeID: "first-comment"}},
	}))
	ev := domain.Event{ID: "e1", Type: "USER_COMMENTED", UserID: "u1", OccurredAt: at(10, 0)}

	// ACT
	result := f.ingest(t, ev)

	// ASSERT
	assert.Equal(t, []string{"R1"}, result.MatchedRuleIDs)
	state, err := f.states.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first-comment"}, state.Badges)
	assert.Equal(t, 1, f.history.Len())

	// Re-ingesting the same event id changes nothing.
	recorded := f.history.Len()
	f.ingest(t, ev)
	state, err = f.states.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first-comment"}, state.Badges)
	assert.Equal(t, recorded, f.history.Len())
}

func TestExecute_DailyLoginCap(t *testing.T) {
	// ARRANGE: at most one award per UTC day, modeled as count < 2 in window
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.rules.Create(ctx, domain.Rule{
		ID: "R2", Name: "Daily login", IsActive: true,
		Triggers: []string{"USER_LOGIN"},
		Conditions: []domain.Condition{{ID: "c1", Type: domain.ConditionCount, Parameters: map[string]any{
			"eventType":         "USER_LOGIN",
			"minCount":          1,
			"maxCount":          1,
			"timeWindowMinutes": 1440,
		}}},
		Rewards: []domain.Reward{{Type: domain.RewardPoints, Category: "xp", Amount: 20}},
	}))

	// ACT: two logins the same day
	first := f.ingest(t, domain.Event{ID: "e1", Type: "USER_LOGIN", UserID: "u2", OccurredAt: at(8, 0)})
	second := f.ingest(t, domain.Event{ID: "e2", Type: "USER_LOGIN", UserID: "u2", OccurredAt: at(18, 0)})

	// ASSERT: only the first fires
	assert.Equal(t, []string{"R2"}, first.MatchedRuleIDs)
	assert.Empty(t, second.MatchedRuleIDs)

	balance, err := f.wallets.GetBalance(ctx, "u2", "xp")
	require.NoError(t, err)
	assert.Equal(t, int64(20), balance)
}

func TestExecute_PurchaseThreshold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.rules.Create(ctx, domain.Rule{
		ID: "R3", Name: "Big spender", IsActive: true,
		Triggers: []string{"USER_PURCHASED_PRODUCT"},
		Conditions: []domain.Condition{{ID: "c1", Type: domain.ConditionThreshold, Parameters: map[string]any{
			"attributeName": "amount",
			"threshold":     100,
			"operation":     ">=",
		}}},
		Rewards: []domain.Reward{{Type: domain.RewardPoints, Category: "xp", Amount: 50}},
	}))

	// CASE 1: amount over the threshold
	f.ingest(t, domain.Event{ID: "e1", Type: "USER_PURCHASED_PRODUCT", UserID: "u1", OccurredAt: at(10, 0),
		Attributes: map[string]any{"amount": float64(150)}})
	balance, err := f.wallets.GetBalance(ctx, "u1", "xp")
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	// CASE 2: amount under the threshold leaves the balance unchanged
	result := f.ingest(t, domain.Event{ID: "e2", Type: "USER_PURCHASED_PRODUCT", UserID: "u1", OccurredAt: at(11, 0),
		Attributes: map[string]any{"amount": float64(99)}})
	assert.Empty(t, result.MatchedRuleIDs)
	balance, err = f.wallets.GetBalance(ctx, "u1", "xp")
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)
}

func TestExecute_LevelUpOnPoints(t *testing.T) {
	// ARRANGE: user sits at 90 xp, one point short of intermediate
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.rules.Create(ctx, domain.Rule{
		ID: "R5", Name: "Quest points", IsActive: true,
		Triggers: []string{"QUEST_DONE"},
		Rewards:  []domain.Reward{{Type: domain.RewardPoints, Category: "xp", Amount: 15}},
	}))
	seed := domain.Rule{
		ID: "seed", Name: "seed", IsActive: true,
		Triggers: []string{"SEED"},
		Rewards:  []domain.Reward{{Type: domain.RewardPoints, Category: "xp", Amount: 90}},
	}
	require.NoError(t, f.rules.Create(ctx, seed))
	f.ingest(t, domain.Event{ID: "e0", Type: "SEED", UserID: "u1", OccurredAt: at(9, 0)})

	// ACT
	f.ingest(t, domain.Event{ID: "e1", Type: "QUEST_DONE", UserID: "u1", OccurredAt: at(10, 0)})

	// ASSERT: balance 105, level recomputed, synthetic level entry present
	balance, err := f.wallets.GetBalance(ctx, "u1", "xp")
	require.NoError(t, err)
	assert.Equal(t, int64(105), balance)

	state, err := f.states.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "intermediate", state.LevelByCategory["xp"])

	var pointEntries, levelEntries int
	for _, e := range f.history.All() {
		switch e.RewardType {
		case domain.RewardPoints:
			pointEntries++
		case domain.RewardLevel:
			if e.RewardID == "intermediate" {
				levelEntries++
			}
		}
	}
	assert.Equal(t, 2, pointEntries)
	assert.Equal(t, 1, levelEntries)
}

func TestExecute_RulesEvaluatedInIDOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"b-rule", "a-rule", "c-rule"} {
		require.NoError(t, f.rules.Create(ctx, domain.Rule{
			ID: id, Name: id, IsActive: true,
			Triggers: []string{"PING"},
			Rewards:  []domain.Reward{{Type: domain.RewardPoints, Category: "xp", Amount: 1}},
		}))
	}

	result := f.ingest(t, domain.Event{ID: "e1", Type: "PING", UserID: "u1", OccurredAt: at(10, 0)})

	assert.Equal(t, []string{"a-rule", "b-rule", "c-rule"}, result.MatchedRuleIDs)
}

func TestExecute_InactiveRulesIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.rules.Create(ctx, domain.Rule{
		ID: "R1", Name: "off", IsActive: false,
		Triggers: []string{"PING"},
		Rewards:  []domain.Reward{{Type: domain.RewardPoints, Category: "xp", Amount: 10}},
	}))

	result := f.ingest(t, domain.Event{ID: "e1", Type: "PING", UserID: "u1", OccurredAt: at(10, 0)})

	assert.Empty(t, result.MatchedRuleIDs)
}

func TestExecute_ConditionShortCircuit(t *testing.T) {
	// A failing first condition keeps the rule from firing even though the
	// second would pass.
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.rules.Create(ctx, domain.Rule{
		ID: "R1", Name: "guarded", IsActive: true,
		Triggers: []string{"PING"},
		Conditions: []domain.Condition{
			{ID: "c1", Type: domain.ConditionAttributeEquals, Parameters: map[string]any{
				"attributeName": "tier", "expectedValue": "gold",
			}},
			{ID: "c2", Type: domain.ConditionAlwaysTrue},
		},
		Rewards: []domain.Reward{{Type: domain.RewardPoints, Category: "xp", Amount: 10}},
	}))

	result := f.ingest(t, domain.Event{ID: "e1", Type: "PING", UserID: "u1", OccurredAt: at(10, 0)})

	assert.Empty(t, result.MatchedRuleIDs)
	balance, err := f.wallets.GetBalance(ctx, "u1", "xp")
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestExecute_SpendingFailure_PartialCommit(t *testing.T) {
	// ARRANGE: the rule awards 10 xp but then tries to spend 100
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.rules.Create(ctx, domain.Rule{
		ID: "R1", Name: "greedy", IsActive: true,
		Triggers: []string{"PING"},
		Rewards:  []domain.Reward{{Type: domain.RewardPoints, Category: "xp", Amount: 10}},
		Spendings: []domain.Spending{
			{Type: domain.SpendingSpend, Category: "xp", Amount: 100},
			{Type: domain.SpendingSpend, Category: "xp", Amount: 1},
		},
	}))

	// ACT
	result := f.ingest(t, domain.Event{ID: "e1", Type: "PING", UserID: "u1", OccurredAt: at(10, 0)})

	// ASSERT: reward committed, first spending failed, second never ran
	require.Len(t, result.ExecutedRewards, 1)
	assert.True(t, result.ExecutedRewards[0].Success)
	require.Len(t, result.ExecutedSpendings, 1)
	assert.False(t, result.ExecutedSpendings[0].Success)

	balance, err := f.wallets.GetBalance(ctx, "u1", "xp")
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)
}

func TestExecute_RewardFailure_SkipsSpendings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.rules.Create(ctx, domain.Rule{
		ID: "R1", Name: "broken", IsActive: true,
		Triggers: []string{"PING"},
		Rewards: []domain.Reward{
			{Type: domain.RewardBadge, BadgeID: "no-such-badge"},
			{Type: domain.RewardPoints, Category: "xp", Amount: 5},
		},
		Spendings: []domain.Spending{{Type: domain.SpendingSpend, Category: "xp", Amount: 1}},
	}))

	result := f.ingest(t, domain.Event{ID: "e1", Type: "PING", UserID: "u1", OccurredAt: at(10, 0)})

	// Rewards are independent: the second still runs after the first fails.
	require.Len(t, result.ExecutedRewards, 2)
	assert.False(t, result.ExecutedRewards[0].Success)
	assert.True(t, result.ExecutedRewards[1].Success)
	// Spendings only run when every reward succeeded.
	assert.Empty(t, result.ExecutedSpendings)
}

func TestDryRun_Isolation(t *testing.T) {
	// ARRANGE: scenario 3's rule, a fresh user
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.rules.Create(ctx, domain.Rule{
		ID: "R3", Name: "Big spender", IsActive: true,
		Triggers: []string{"USER_PURCHASED_PRODUCT"},
		Conditions: []domain.Condition{{ID: "c1", Type: domain.ConditionThreshold, Parameters: map[string]any{
			"attributeName": "amount",
			"threshold":     100,
			"operation":     ">=",
		}}},
		Rewards: []domain.Reward{{Type: domain.RewardPoints, Category: "xp", Amount: 50}},
	}))
	ev := domain.Event{ID: "e1", Type: "USER_PURCHASED_PRODUCT", UserID: "u3", OccurredAt: at(10, 0),
		Attributes: map[string]any{"amount": float64(150)}}

	// ACT
	response, err := f.evaluator.DryRun(ctx, ev)
	require.NoError(t, err)

	// ASSERT: trace matches and predicts +50 with resulting balance
	assert.Equal(t, 1, response.Summary.TotalMatched)
	require.Len(t, response.EvaluatedRules, 1)
	evaluated := response.EvaluatedRules[0]
	assert.Equal(t, "R3", evaluated.RuleID)
	assert.True(t, evaluated.Matched)
	require.Len(t, evaluated.PredictedRewards, 1)
	assert.Equal(t, int64(50), evaluated.PredictedRewards[0].Amount)
	require.NotNil(t, evaluated.PredictedRewards[0].ResultingBalance)
	assert.Equal(t, int64(50), *evaluated.PredictedRewards[0].ResultingBalance)
	assert.Equal(t, int64(50), response.Summary.TotalPredictedPoints["xp"])

	// Nothing was persisted anywhere.
	assert.Equal(t, 0, f.events.Len())
	assert.Equal(t, 0, f.wallets.TransactionCount())
	assert.Equal(t, 0, f.history.Len())
	balance, err := f.wallets.GetBalance(ctx, "u3", "xp")
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestDryRun_Deterministic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.rules.Create(ctx, domain.Rule{
		ID: "R1", Name: "first", IsActive: true,
		Triggers:   []string{"SIGNUP"},
		Conditions: []domain.Condition{{ID: "c1", Type: domain.ConditionFirstOccurrence}},
		Rewards:    []domain.Reward{{Type: domain.RewardBadge, BadgeID: "first-comment"}},
	}))
	ev := domain.Event{ID: "e1", Type: "SIGNUP", UserID: "u1", OccurredAt: at(10, 0)}

	first, err := f.evaluator.DryRun(ctx, ev)
	require.NoError(t, err)
	second, err := f.evaluator.DryRun(ctx, ev)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 0, f.events.Len())
}

func TestDryRun_ConditionTraces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.rules.Create(ctx, domain.Rule{
		ID: "R1", Name: "guarded", IsActive: true,
		Triggers: []string{"PING"},
		Conditions: []domain.Condition{
			{ID: "c1", Type: domain.ConditionAlwaysTrue},
			{ID: "c2", Type: domain.ConditionAttributeEquals, Parameters: map[string]any{
				"attributeName": "tier", "expectedValue": "gold",
			}},
		},
		Rewards: []domain.Reward{{Type: domain.RewardPoints, Category: "xp", Amount: 10}},
	}))

	response, err := f.evaluator.DryRun(ctx, domain.Event{ID: "e1", Type: "PING", UserID: "u1", OccurredAt: at(10, 0)})
	require.NoError(t, err)

	require.Len(t, response.EvaluatedRules, 1)
	evaluated := response.EvaluatedRules[0]
	assert.False(t, evaluated.Matched)
	require.Len(t, evaluated.ConditionResults, 2)
	assert.True(t, evaluated.ConditionResults[0].Result)
	assert.False(t, evaluated.ConditionResults[1].Result)
	assert.NotEmpty(t, evaluated.ConditionResults[1].Reason)
	assert.Empty(t, evaluated.PredictedRewards)
}

func TestDryRun_PredictsSpendingFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.rules.Create(ctx, domain.Rule{
		ID: "R1", Name: "greedy", IsActive: true,
		Triggers:  []string{"PING"},
		Rewards:   []domain.Reward{{Type: domain.RewardPoints, Category: "xp", Amount: 10}},
		Spendings: []domain.Spending{{Type: domain.SpendingSpend, Category: "xp", Amount: 100}},
	}))

	response, err := f.evaluator.DryRun(ctx, domain.Event{ID: "e1", Type: "PING", UserID: "u1", OccurredAt: at(10, 0)})
	require.NoError(t, err)

	require.Len(t, response.EvaluatedRules, 1)
	require.Len(t, response.EvaluatedRules[0].PredictedSpendings, 1)
	predicted := response.EvaluatedRules[0].PredictedSpendings[0]
	assert.False(t, predicted.WouldSucceed)
	assert.Contains(t, predicted.Reason, domain.ErrMsgInsufficientBalance)
}
