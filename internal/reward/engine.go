// Package reward executes the state-mutating effects of fired rules: point
// credits, badge and trophy grants, level changes, penalties and spendings.
// Every execution attempt appends a history record keyed by
// (triggerEventId, ruleId, position) so that replays are no-ops.
package reward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osmith/BadgeForge_Go/internal/catalog"
	"github.com/osmith/BadgeForge_Go/internal/concurrency"
	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/logger"
	"github.com/osmith/BadgeForge_Go/internal/repository"
	"github.com/osmith/BadgeForge_Go/internal/wallet"
)

// Chained level entries synthesized by a points reward use a negative
// position so they never collide with declared reward slots.
func chainedPosition(position int) int { return -1 - position }

// Engine executes rewards and spendings against the wallet, user state and
// reward history. State read-modify-writes are serialized per user with a
// lock manager separate from the wallet's.
type Engine struct {
	wallet  *wallet.Service
	states  repository.UserState
	history repository.RewardHistory
	catalog *catalog.Catalog
	locks   *concurrency.LockManager
}

// NewEngine creates a reward engine.
func NewEngine(w *wallet.Service, states repository.UserState, history repository.RewardHistory, cat *catalog.Catalog, locks *concurrency.LockManager) *Engine {
	return &Engine{
		wallet:  w,
		states:  states,
		history: history,
		catalog: cat,
		locks:   locks,
	}
}

// referenceID builds the ledger idempotency key for one reward slot.
func referenceID(triggerEventID, ruleID string, position int) string {
	return fmt.Sprintf("%s:%s:%d", triggerEventID, ruleID, position)
}

// Execute runs one reward slot of a fired rule. Already-executed slots are
// skipped without a second history entry. Repository failures propagate;
// domain-level failures come back as an unsuccessful outcome.
func (e *Engine) Execute(ctx context.Context, trigger domain.Event, rule domain.Rule, position int, rw domain.Reward) (domain.ExecutedReward, error) {
	done, err := e.history.Exists(ctx, trigger.ID, rule.ID, position)
	if err != nil {
		return domain.ExecutedReward{}, fmt.Errorf("failed to check reward history: %w", err)
	}
	if done {
		logger.FromContext(ctx).Debug("reward slot already executed",
			"eventId", trigger.ID, "ruleId", rule.ID, "position", position)
		return domain.ExecutedReward{
			RuleID:   rule.ID,
			Position: position,
			Type:     rw.Type,
			Success:  true,
			Message:  "already executed",
		}, nil
	}

	var outcome domain.ExecutedReward
	switch rw.Type {
	case domain.RewardPoints:
		outcome, err = e.executePoints(ctx, trigger, rule, position, rw.Category, rw.Amount, domain.TxEarn)
	case domain.RewardBadge:
		outcome, err = e.executeBadge(ctx, trigger, rule, position, rw.BadgeID)
	case domain.RewardTrophy:
		outcome, err = e.executeTrophy(ctx, trigger, rule, position, rw.TrophyID)
	case domain.RewardLevel:
		outcome, err = e.executeLevel(ctx, trigger, rule, position, rw.LevelID)
	case domain.RewardPenalty:
		outcome, err = e.executePenalty(ctx, trigger, rule, position, rw)
	default:
		outcome = domain.ExecutedReward{
			RuleID:   rule.ID,
			Position: position,
			Type:     rw.Type,
			Success:  false,
			Message:  fmt.Sprintf("unknown reward type %q", rw.Type),
		}
	}
	if err != nil {
		return domain.ExecutedReward{}, err
	}

	entry := domain.RewardHistory{
		ID:             uuid.NewString(),
		UserID:         trigger.UserID,
		RewardType:     outcome.Type,
		TriggerEventID: trigger.ID,
		RuleID:         rule.ID,
		Position:       position,
		AwardedAt:      time.Now().UTC(),
		Success:        outcome.Success,
		Message:        outcome.Message,
	}
	if outcome.Target != "" {
		entry.RewardID = outcome.Target
	}
	if err := e.history.Append(ctx, entry); err != nil {
		return domain.ExecutedReward{}, fmt.Errorf("failed to append reward history: %w", err)
	}
	return outcome, nil
}

func (e *Engine) executePoints(ctx context.Context, trigger domain.Event, rule domain.Rule, position int, category string, amount int64, txType string) (domain.ExecutedReward, error) {
	outcome := domain.ExecutedReward{
		RuleID:   rule.ID,
		Position: position,
		Type:     domain.RewardPoints,
		Target:   category,
		Amount:   amount,
	}
	if txType == domain.TxPenalty {
		outcome.Type = domain.RewardPenalty
	}
	if _, ok := e.catalog.PointCategory(category); !ok {
		outcome.Message = fmt.Sprintf("unknown point category %q", category)
		return outcome, nil
	}
	if amount == 0 {
		outcome.Message = "amount must not be zero"
		return outcome, nil
	}
	if amount < 0 {
		txType = domain.TxPenalty
		outcome.Type = domain.RewardPenalty
	}

	ref := referenceID(trigger.ID, rule.ID, position)
	desc := fmt.Sprintf("rule %s", rule.ID)
	tx, err := e.wallet.Credit(ctx, trigger.UserID, category, amount, txType, desc, ref, nil)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			// A previous attempt got the ledger write in before failing.
			outcome.Success = true
			outcome.Message = "already recorded"
			return outcome, nil
		}
		if errors.Is(err, domain.ErrInsufficientBalance) || errors.Is(err, domain.ErrInvalidInput) {
			outcome.Message = err.Error()
			return outcome, nil
		}
		return domain.ExecutedReward{}, err
	}
	applied := tx.Amount
	outcome.Amount = applied

	var chained *domain.Level
	err = e.withState(ctx, trigger.UserID, func(state *domain.UserState) {
		state.AddPoints(category, applied)
		prev := state.LevelByCategory[category]
		level, ok := e.catalog.CurrentLevel(category, state.PointsByCategory[category])
		if !ok || level.ID == prev {
			return
		}
		state.SetLevel(category, level.ID)
		if prevLevel, held := e.catalog.Level(prev); !held || level.MinPoints > prevLevel.MinPoints {
			chained = &level
		}
	})
	if err != nil {
		return domain.ExecutedReward{}, err
	}

	if chained != nil {
		// One chained level grant at most; the level reward itself never
		// chains further.
		entry := domain.RewardHistory{
			ID:             uuid.NewString(),
			UserID:         trigger.UserID,
			RewardID:       chained.ID,
			RewardType:     domain.RewardLevel,
			TriggerEventID: trigger.ID,
			RuleID:         rule.ID,
			Position:       chainedPosition(position),
			AwardedAt:      time.Now().UTC(),
			Success:        true,
			Message:        fmt.Sprintf("reached %s", chained.Name),
			Details:        map[string]any{"category": category, "minPoints": chained.MinPoints},
		}
		if err := e.history.Append(ctx, entry); err != nil {
			return domain.ExecutedReward{}, fmt.Errorf("failed to append reward history: %w", err)
		}
	}

	outcome.Success = true
	return outcome, nil
}

func (e *Engine) executeBadge(ctx context.Context, trigger domain.Event, rule domain.Rule, position int, badgeID string) (domain.ExecutedReward, error) {
	outcome := domain.ExecutedReward{
		RuleID:   rule.ID,
		Position: position,
		Type:     domain.RewardBadge,
		Target:   badgeID,
	}
	if _, ok := e.catalog.Badge(badgeID); !ok {
		outcome.Message = fmt.Sprintf("unknown badge %q", badgeID)
		return outcome, nil
	}

	granted := false
	err := e.withState(ctx, trigger.UserID, func(state *domain.UserState) {
		granted = state.GrantBadge(badgeID)
	})
	if err != nil {
		return domain.ExecutedReward{}, err
	}

	outcome.Success = true
	if !granted {
		outcome.Message = "already held"
	}
	return outcome, nil
}

func (e *Engine) executeTrophy(ctx context.Context, trigger domain.Event, rule domain.Rule, position int, trophyID string) (domain.ExecutedReward, error) {
	outcome := domain.ExecutedReward{
		RuleID:   rule.ID,
		Position: position,
		Type:     domain.RewardTrophy,
		Target:   trophyID,
	}
	if _, ok := e.catalog.Trophy(trophyID); !ok {
		outcome.Message = fmt.Sprintf("unknown trophy %q", trophyID)
		return outcome, nil
	}

	granted := false
	err := e.withState(ctx, trigger.UserID, func(state *domain.UserState) {
		granted = state.GrantTrophy(trophyID)
	})
	if err != nil {
		return domain.ExecutedReward{}, err
	}

	outcome.Success = true
	if !granted {
		outcome.Message = "already held"
	}
	return outcome, nil
}

func (e *Engine) executeLevel(ctx context.Context, trigger domain.Event, rule domain.Rule, position int, levelID string) (domain.ExecutedReward, error) {
	outcome := domain.ExecutedReward{
		RuleID:   rule.ID,
		Position: position,
		Type:     domain.RewardLevel,
		Target:   levelID,
	}
	level, ok := e.catalog.Level(levelID)
	if !ok {
		outcome.Message = fmt.Sprintf("unknown level %q", levelID)
		return outcome, nil
	}

	met := false
	err := e.withState(ctx, trigger.UserID, func(state *domain.UserState) {
		if state.PointsByCategory[level.Category] < level.MinPoints {
			return
		}
		met = true
		state.SetLevel(level.Category, level.ID)
	})
	if err != nil {
		return domain.ExecutedReward{}, err
	}

	if !met {
		outcome.Message = "threshold not met"
		return outcome, nil
	}
	outcome.Success = true
	return outcome, nil
}

func (e *Engine) executePenalty(ctx context.Context, trigger domain.Event, rule domain.Rule, position int, rw domain.Reward) (domain.ExecutedReward, error) {
	switch rw.PenaltyType {
	case domain.PenaltyPoints:
		amount := rw.Amount
		if amount > 0 {
			amount = -amount
		}
		return e.executePoints(ctx, trigger, rule, position, rw.Category, amount, domain.TxPenalty)
	case domain.PenaltyBadge:
		return e.revokeBadge(ctx, trigger, rule, position, rw.TargetID)
	default:
		return domain.ExecutedReward{
			RuleID:   rule.ID,
			Position: position,
			Type:     domain.RewardPenalty,
			Success:  false,
			Message:  fmt.Sprintf("unknown penalty type %q", rw.PenaltyType),
		}, nil
	}
}

func (e *Engine) revokeBadge(ctx context.Context, trigger domain.Event, rule domain.Rule, position int, badgeID string) (domain.ExecutedReward, error) {
	outcome := domain.ExecutedReward{
		RuleID:   rule.ID,
		Position: position,
		Type:     domain.RewardPenalty,
		Target:   badgeID,
	}

	revoked := false
	err := e.withState(ctx, trigger.UserID, func(state *domain.UserState) {
		revoked = state.RevokeBadge(badgeID)
	})
	if err != nil {
		return domain.ExecutedReward{}, err
	}

	outcome.Success = true
	if !revoked {
		outcome.Message = "not held"
	}
	return outcome, nil
}

// ExecuteSpending runs one spending slot. Insufficient balance is a
// recorded failure; the caller aborts remaining spendings for the rule.
func (e *Engine) ExecuteSpending(ctx context.Context, trigger domain.Event, rule domain.Rule, position int, sp domain.Spending) (domain.ExecutedSpending, error) {
	outcome := domain.ExecutedSpending{
		RuleID:            rule.ID,
		Position:          position,
		Type:              sp.Type,
		Category:          sp.Category,
		Amount:            sp.Amount,
		DestinationUserID: sp.DestinationUserID,
	}
	if err := sp.Validate(); err != nil {
		outcome.Message = err.Error()
		return outcome, nil
	}

	ref := fmt.Sprintf("%s:%s:spend:%d", trigger.ID, rule.ID, position)
	desc := fmt.Sprintf("rule %s", rule.ID)

	var err error
	switch sp.Type {
	case domain.SpendingSpend:
		_, err = e.wallet.Debit(ctx, trigger.UserID, sp.Category, sp.Amount, desc, ref, nil)
	case domain.SpendingTransfer:
		_, _, err = e.wallet.Transfer(ctx, trigger.UserID, sp.DestinationUserID, sp.Category, sp.Amount, desc, ref, nil)
	}
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			outcome.Success = true
			outcome.Message = "already recorded"
			return outcome, nil
		}
		if errors.Is(err, domain.ErrInsufficientBalance) || errors.Is(err, domain.ErrSelfTransfer) || errors.Is(err, domain.ErrInvalidInput) {
			outcome.Message = err.Error()
			return outcome, nil
		}
		return domain.ExecutedSpending{}, err
	}
	outcome.Success = true
	return outcome, nil
}

// withState runs fn over the user's state under the state lock and persists
// the result.
func (e *Engine) withState(ctx context.Context, userID string, fn func(*domain.UserState)) error {
	var err error
	e.locks.WithLock(userID, func() {
		var state *domain.UserState
		state, err = e.states.GetByUser(ctx, userID)
		if err != nil {
			return
		}
		fn(state)
		err = e.states.Save(ctx, state)
	})
	return err
}
