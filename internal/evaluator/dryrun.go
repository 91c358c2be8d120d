package evaluator

import (
	"context"
	"fmt"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// sandbox previews reward effects against copies of the user's balances and
// state. Nothing here touches a repository write path.
type sandbox struct {
	ev       *Evaluator
	userID   string
	balances map[string]int64
	state    *domain.UserState
}

func (e *Evaluator) newSandbox(ctx context.Context, userID string) (*sandbox, error) {
	state, err := e.states.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user state: %w", err)
	}
	return &sandbox{
		ev:       e,
		userID:   userID,
		balances: make(map[string]int64),
		state:    state.Clone(),
	}, nil
}

func (s *sandbox) balance(ctx context.Context, category string) (int64, error) {
	if bal, ok := s.balances[category]; ok {
		return bal, nil
	}
	bal, err := s.ev.wallets.GetBalance(ctx, s.userID, category)
	if err != nil {
		return 0, fmt.Errorf("failed to load balance: %w", err)
	}
	s.balances[category] = bal
	return bal, nil
}

// previewPoints applies the same clamp rules as the live path and returns
// the applied delta plus the resulting balance.
func (s *sandbox) previewPoints(ctx context.Context, category string, amount int64) (int64, int64, error) {
	bal, err := s.balance(ctx, category)
	if err != nil {
		return 0, 0, err
	}
	applied := amount
	if applied < 0 && !s.ev.allowNegative && bal+applied < 0 {
		applied = -bal
	}
	bal += applied
	s.balances[category] = bal
	s.state.AddPoints(category, applied)
	return applied, bal, nil
}

func (s *sandbox) previewReward(ctx context.Context, rw domain.Reward) (domain.PredictedReward, error) {
	switch rw.Type {
	case domain.RewardPoints:
		predicted := domain.PredictedReward{Type: domain.RewardPoints, Target: rw.Category, Amount: rw.Amount}
		if _, ok := s.ev.catalog.PointCategory(rw.Category); !ok {
			return predicted, nil
		}
		applied, bal, err := s.previewPoints(ctx, rw.Category, rw.Amount)
		if err != nil {
			return domain.PredictedReward{}, err
		}
		predicted.Amount = applied
		predicted.ResultingBalance = &bal
		return predicted, nil

	case domain.RewardBadge:
		s.state.GrantBadge(rw.BadgeID)
		return domain.PredictedReward{Type: domain.RewardBadge, Target: rw.BadgeID}, nil

	case domain.RewardTrophy:
		s.state.GrantTrophy(rw.TrophyID)
		return domain.PredictedReward{Type: domain.RewardTrophy, Target: rw.TrophyID}, nil

	case domain.RewardLevel:
		if level, ok := s.ev.catalog.Level(rw.LevelID); ok {
			if s.state.PointsByCategory[level.Category] >= level.MinPoints {
				s.state.SetLevel(level.Category, level.ID)
			}
		}
		return domain.PredictedReward{Type: domain.RewardLevel, Target: rw.LevelID}, nil

	case domain.RewardPenalty:
		if rw.PenaltyType == domain.PenaltyPoints {
			amount := rw.Amount
			if amount > 0 {
				amount = -amount
			}
			predicted := domain.PredictedReward{Type: domain.RewardPenalty, Target: rw.Category, Amount: amount}
			if _, ok := s.ev.catalog.PointCategory(rw.Category); !ok {
				return predicted, nil
			}
			applied, bal, err := s.previewPoints(ctx, rw.Category, amount)
			if err != nil {
				return domain.PredictedReward{}, err
			}
			predicted.Amount = applied
			predicted.ResultingBalance = &bal
			return predicted, nil
		}
		if rw.PenaltyType == domain.PenaltyBadge {
			s.state.RevokeBadge(rw.TargetID)
		}
		return domain.PredictedReward{Type: domain.RewardPenalty, Target: rw.TargetID}, nil
	}
	return domain.PredictedReward{Type: rw.Type}, nil
}

func (s *sandbox) previewSpending(ctx context.Context, sp domain.Spending) (domain.PredictedSpending, error) {
	predicted := domain.PredictedSpending{
		Type:              sp.Type,
		Category:          sp.Category,
		Amount:            sp.Amount,
		DestinationUserID: sp.DestinationUserID,
	}
	if err := sp.Validate(); err != nil {
		predicted.Reason = err.Error()
		return predicted, nil
	}
	if sp.Type == domain.SpendingTransfer && sp.DestinationUserID == s.userID {
		predicted.Reason = domain.ErrMsgSelfTransfer
		return predicted, nil
	}

	bal, err := s.balance(ctx, sp.Category)
	if err != nil {
		return domain.PredictedSpending{}, err
	}
	if bal < sp.Amount && !s.ev.allowNegative {
		predicted.Reason = fmt.Sprintf("%s: balance %d, requested %d", domain.ErrMsgInsufficientBalance, bal, sp.Amount)
		return predicted, nil
	}
	s.balances[sp.Category] = bal - sp.Amount
	predicted.WouldSucceed = true
	return predicted, nil
}

// DryRun evaluates the trigger event without persisting anything: not the
// event, not the wallet entries, not the user state. Conditions see history
// exactly as the live path would, with the trigger included in its own type.
func (e *Evaluator) DryRun(ctx context.Context, trigger domain.Event) (domain.DryRunResponse, error) {
	response := domain.DryRunResponse{
		EventID:        trigger.ID,
		EventType:      trigger.Type,
		UserID:         trigger.UserID,
		OccurredAt:     trigger.OccurredAt,
		EvaluatedRules: []domain.EvaluatedRule{},
		Summary: domain.DryRunSummary{
			TotalPredictedPoints: make(map[string]int64),
		},
	}

	rules, err := e.rules.ListByTrigger(ctx, trigger.Type)
	if err != nil {
		return response, fmt.Errorf("failed to list rules for trigger %q: %w", trigger.Type, err)
	}
	loader := newHistoryLoader(e.events, trigger, e.historyWindow)
	sb, err := e.newSandbox(ctx, trigger.UserID)
	if err != nil {
		return response, err
	}

	for _, rule := range rules {
		matched, traces, err := e.matchRule(ctx, rule, trigger, loader)
		if err != nil {
			return response, err
		}
		evaluated := domain.EvaluatedRule{
			RuleID:           rule.ID,
			RuleName:         rule.Name,
			Matched:          matched,
			ConditionResults: traces,
		}
		if matched {
			response.Summary.TotalMatched++
			for _, rw := range rule.Rewards {
				alreadyBadge := rw.Type == domain.RewardBadge && sb.state.HasBadge(rw.BadgeID)
				predicted, err := sb.previewReward(ctx, rw)
				if err != nil {
					return response, err
				}
				evaluated.PredictedRewards = append(evaluated.PredictedRewards, predicted)
				switch predicted.Type {
				case domain.RewardPoints, domain.RewardPenalty:
					if predicted.ResultingBalance != nil {
						response.Summary.TotalPredictedPoints[predicted.Target] += predicted.Amount
					}
				case domain.RewardBadge:
					if !alreadyBadge {
						response.Summary.TotalPredictedBadges++
					}
				}
			}
			for _, sp := range rule.Spendings {
				predicted, err := sb.previewSpending(ctx, sp)
				if err != nil {
					return response, err
				}
				evaluated.PredictedSpendings = append(evaluated.PredictedSpendings, predicted)
				if !predicted.WouldSucceed {
					break
				}
			}
		}
		response.EvaluatedRules = append(response.EvaluatedRules, evaluated)
	}
	return response, nil
}
