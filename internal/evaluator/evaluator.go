// Package evaluator matches trigger events against active rules and drives
// reward execution. The same matching path serves live processing and the
// dry-run sandbox; only the effect stage differs.
package evaluator

import (
	"context"
	"fmt"
	"sort"

	"github.com/osmith/BadgeForge_Go/internal/catalog"
	"github.com/osmith/BadgeForge_Go/internal/condition"
	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/logger"
	"github.com/osmith/BadgeForge_Go/internal/repository"
	"github.com/osmith/BadgeForge_Go/internal/reward"
)

// Evaluator evaluates rules against trigger events.
type Evaluator struct {
	rules         repository.Rule
	events        repository.Event
	wallets       repository.Wallet
	states        repository.UserState
	catalog       *catalog.Catalog
	conditions    *condition.Engine
	rewards       *reward.Engine
	historyWindow int
	allowNegative bool
}

// New creates an evaluator. historyWindow caps the events loaded per type
// when conditions need history.
func New(rules repository.Rule, events repository.Event, wallets repository.Wallet, states repository.UserState, cat *catalog.Catalog, conditions *condition.Engine, rewards *reward.Engine, historyWindow int, allowNegative bool) *Evaluator {
	if historyWindow <= 0 {
		historyWindow = 1000
	}
	return &Evaluator{
		rules:         rules,
		events:        events,
		wallets:       wallets,
		states:        states,
		catalog:       cat,
		conditions:    conditions,
		rewards:       rewards,
		historyWindow: historyWindow,
		allowNegative: allowNegative,
	}
}

// historyLoader fetches and caches per-type history slices for one
// evaluation. The trigger event is always part of its own type's slice, so
// execute (trigger already stored) and dry run (trigger never stored) see
// identical history.
type historyLoader struct {
	events  repository.Event
	trigger domain.Event
	window  int
	cache   map[string][]domain.Event
}

func newHistoryLoader(events repository.Event, trigger domain.Event, window int) *historyLoader {
	return &historyLoader{
		events:  events,
		trigger: trigger,
		window:  window,
		cache:   make(map[string][]domain.Event),
	}
}

func (l *historyLoader) slice(ctx context.Context, eventType string) ([]domain.Event, error) {
	if cached, ok := l.cache[eventType]; ok {
		return cached, nil
	}
	events, err := l.events.GetByUserAndType(ctx, l.trigger.UserID, eventType, l.window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEventRetrieval, err)
	}
	if eventType == l.trigger.Type {
		present := false
		for _, ev := range events {
			if ev.ID == l.trigger.ID {
				present = true
				break
			}
		}
		if !present {
			events = append(events, l.trigger)
		}
	}
	l.cache[eventType] = events
	return events, nil
}

// forCondition merges the slices a condition declares into one history
// ordered by occurredAt ascending.
func (l *historyLoader) forCondition(ctx context.Context, needs []condition.HistoryNeed) ([]domain.Event, error) {
	types := make(map[string]struct{}, len(needs))
	for _, need := range needs {
		types[need.EventType] = struct{}{}
	}
	var merged []domain.Event
	seen := make(map[string]struct{})
	for eventType := range types {
		slice, err := l.slice(ctx, eventType)
		if err != nil {
			return nil, err
		}
		for _, ev := range slice {
			if _, dup := seen[ev.ID]; dup {
				continue
			}
			seen[ev.ID] = struct{}{}
			merged = append(merged, ev)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].OccurredAt.Before(merged[j].OccurredAt) })
	return merged, nil
}

// matchRule evaluates a rule's conditions in declared order, short-circuiting
// on the first failure. Traces are complete up to the failing condition.
func (e *Evaluator) matchRule(ctx context.Context, rule domain.Rule, trigger domain.Event, loader *historyLoader) (bool, []domain.ConditionTrace, error) {
	traces := make([]domain.ConditionTrace, 0, len(rule.Conditions))
	for _, cond := range rule.Conditions {
		needs := e.conditions.Needs(cond, trigger.Type)
		history, err := loader.forCondition(ctx, needs)
		if err != nil {
			return false, nil, err
		}
		result := e.conditions.Evaluate(cond, history, trigger)
		traces = append(traces, domain.ConditionTrace{
			ConditionType: cond.Type,
			Parameters:    cond.Parameters,
			Result:        result.Passed,
			Reason:        result.Reason,
		})
		if !result.Passed {
			return false, traces, nil
		}
	}
	return true, traces, nil
}

// Execute evaluates every active rule triggered by the event and runs the
// effects of the matching ones. Individual reward failures are recorded and
// do not stop the run; a spending failure aborts the remaining spendings of
// its rule only. Repository failures propagate so the processor can retry.
func (e *Evaluator) Execute(ctx context.Context, trigger domain.Event) (domain.RuleEvaluationResult, error) {
	log := logger.FromContext(ctx)
	result := domain.RuleEvaluationResult{
		TriggerEventID:    trigger.ID,
		UserID:            trigger.UserID,
		MatchedRuleIDs:    []string{},
		ExecutedRewards:   []domain.ExecutedReward{},
		ExecutedSpendings: []domain.ExecutedSpending{},
	}

	rules, err := e.rules.ListByTrigger(ctx, trigger.Type)
	if err != nil {
		return result, fmt.Errorf("failed to list rules for trigger %q: %w", trigger.Type, err)
	}
	loader := newHistoryLoader(e.events, trigger, e.historyWindow)

	for _, rule := range rules {
		matched, _, err := e.matchRule(ctx, rule, trigger, loader)
		if err != nil {
			return result, err
		}
		if !matched {
			continue
		}
		result.MatchedRuleIDs = append(result.MatchedRuleIDs, rule.ID)
		log.Debug("rule matched", "ruleId", rule.ID, "eventId", trigger.ID)

		allRewardsSucceeded := true
		for i, rw := range rule.Rewards {
			outcome, err := e.rewards.Execute(ctx, trigger, rule, i, rw)
			if err != nil {
				return result, err
			}
			if !outcome.Success {
				allRewardsSucceeded = false
				log.Warn("reward execution failed",
					"ruleId", rule.ID, "position", i, "message", outcome.Message)
			}
			result.ExecutedRewards = append(result.ExecutedRewards, outcome)
		}

		// Spendings run only after every reward of the rule succeeded. A
		// failed spending aborts the rest of this rule's spendings; the
		// reward side stays committed.
		if !allRewardsSucceeded {
			continue
		}
		for i, sp := range rule.Spendings {
			outcome, err := e.rewards.ExecuteSpending(ctx, trigger, rule, i, sp)
			if err != nil {
				return result, err
			}
			result.ExecutedSpendings = append(result.ExecutedSpendings, outcome)
			if !outcome.Success {
				log.Warn("spending failed, aborting remaining spendings",
					"ruleId", rule.ID, "position", i, "message", outcome.Message)
				break
			}
		}
	}
	return result, nil
}
