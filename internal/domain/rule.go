package domain

import (
	"fmt"
	"slices"
)

// Built-in condition type tags. Plugins register additional tags at startup.
const (
	ConditionAlwaysTrue         = "alwaysTrue"
	ConditionAttributeEquals    = "attributeEquals"
	ConditionCount              = "count"
	ConditionThreshold          = "threshold"
	ConditionSequence           = "sequence"
	ConditionTimeSinceLastEvent = "timeSinceLastEvent"
	ConditionFirstOccurrence    = "firstOccurrence"
)

// Reward type tags.
const (
	RewardPoints  = "points"
	RewardBadge   = "badge"
	RewardTrophy  = "trophy"
	RewardLevel   = "level"
	RewardPenalty = "penalty"
)

// Penalty shapes behind the penalty reward tag.
const (
	PenaltyPoints = "points"
	PenaltyBadge  = "badge"
)

// Spending types.
const (
	SpendingSpend    = "spend"
	SpendingTransfer = "transfer"
)

// Condition is a tagged predicate over (user history, trigger event).
// Parameters are interpreted by the evaluator registered for Type.
type Condition struct {
	ID         string         `json:"conditionId"`
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Reward is a tagged state-mutating effect of a fired rule. Only the fields
// relevant to Type carry meaning.
type Reward struct {
	Type        string         `json:"type"`
	Category    string         `json:"category,omitempty"`
	Amount      int64          `json:"amount,omitempty"`
	BadgeID     string         `json:"badgeId,omitempty"`
	TrophyID    string         `json:"trophyId,omitempty"`
	LevelID     string         `json:"levelId,omitempty"`
	PenaltyType string         `json:"penaltyType,omitempty"`
	TargetID    string         `json:"targetId,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Spending debits the wallet ledger when a rule fires. Distinct from a
// negative points reward: spendings go through the spend/transfer path with
// balance enforcement.
type Spending struct {
	Category          string `json:"category"`
	Amount            int64  `json:"amount"`
	DestinationUserID string `json:"destinationUserId,omitempty"`
	Type              string `json:"type"`
}

// Validate checks the spending invariants.
func (s Spending) Validate() error {
	if s.Category == "" {
		return fmt.Errorf("%w: spending category is required", ErrInvalidInput)
	}
	if s.Amount <= 0 {
		return fmt.Errorf("%w: spending amount must be positive", ErrInvalidInput)
	}
	switch s.Type {
	case SpendingSpend:
	case SpendingTransfer:
		if s.DestinationUserID == "" {
			return fmt.Errorf("%w: transfer spending requires destinationUserId", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown spending type %q", ErrInvalidInput, s.Type)
	}
	return nil
}

// Rule fires when one of its triggers matches the event type and every
// condition evaluates true. Rewards then spendings execute in listed order.
type Rule struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	IsActive    bool        `json:"isActive"`
	Triggers    []string    `json:"triggers"`
	Conditions  []Condition `json:"conditions,omitempty"`
	Rewards     []Reward    `json:"rewards,omitempty"`
	Spendings   []Spending  `json:"spendings,omitempty"`
}

// TriggeredBy reports whether the rule's trigger set contains eventType.
func (r Rule) TriggeredBy(eventType string) bool {
	return slices.Contains(r.Triggers, eventType)
}

// Validate checks the structural rule invariants.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: rule id is required", ErrInvalidInput)
	}
	if len(r.Triggers) == 0 {
		return fmt.Errorf("%w: rule requires at least one trigger", ErrInvalidInput)
	}
	for _, sp := range r.Spendings {
		if err := sp.Validate(); err != nil {
			return err
		}
	}
	return nil
}
