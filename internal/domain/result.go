package domain

import "time"

// ExecutedReward is the per-reward outcome inside a rule evaluation.
type ExecutedReward struct {
	RuleID   string `json:"ruleId"`
	Position int    `json:"position"`
	Type     string `json:"type"`
	Target   string `json:"target,omitempty"`
	Amount   int64  `json:"amount,omitempty"`
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
}

// ExecutedSpending is the per-spending outcome inside a rule evaluation.
type ExecutedSpending struct {
	RuleID            string `json:"ruleId"`
	Position          int    `json:"position"`
	Type              string `json:"type"`
	Category          string `json:"category"`
	Amount            int64  `json:"amount"`
	DestinationUserID string `json:"destinationUserId,omitempty"`
	Success           bool   `json:"success"`
	Message           string `json:"message,omitempty"`
}

// RuleEvaluationResult is the execute-mode outcome for one trigger event.
// Partial outcomes are normal: individual rewards or spendings may fail while
// the rest proceed.
type RuleEvaluationResult struct {
	TriggerEventID    string             `json:"triggerEventId"`
	UserID            string             `json:"userId"`
	MatchedRuleIDs    []string           `json:"matchedRuleIds"`
	ExecutedRewards   []ExecutedReward   `json:"executedRewards"`
	ExecutedSpendings []ExecutedSpending `json:"executedSpendings"`
}

// ConditionTrace records one condition evaluation in a dry run.
type ConditionTrace struct {
	ConditionType string         `json:"conditionType"`
	Parameters    map[string]any `json:"parameters,omitempty"`
	Result        bool           `json:"result"`
	Reason        string         `json:"reason,omitempty"`
}

// PredictedReward describes a reward that would fire, with a post-state
// balance preview where applicable.
type PredictedReward struct {
	Type             string `json:"type"`
	Target           string `json:"target,omitempty"`
	Amount           int64  `json:"amount,omitempty"`
	ResultingBalance *int64 `json:"resultingBalance,omitempty"`
}

// PredictedSpending describes a spending that would execute.
type PredictedSpending struct {
	Type              string `json:"type"`
	Category          string `json:"category"`
	Amount            int64  `json:"amount"`
	DestinationUserID string `json:"destinationUserId,omitempty"`
	WouldSucceed      bool   `json:"wouldSucceed"`
	Reason            string `json:"reason,omitempty"`
}

// EvaluatedRule is the per-rule section of a dry-run trace.
type EvaluatedRule struct {
	RuleID             string              `json:"ruleId"`
	RuleName           string              `json:"ruleName"`
	Matched            bool                `json:"matched"`
	ConditionResults   []ConditionTrace    `json:"conditionResults"`
	PredictedRewards   []PredictedReward   `json:"predictedRewards,omitempty"`
	PredictedSpendings []PredictedSpending `json:"predictedSpendings,omitempty"`
}

// DryRunSummary aggregates a dry-run trace.
type DryRunSummary struct {
	TotalMatched         int              `json:"totalMatched"`
	TotalPredictedPoints map[string]int64 `json:"totalPredictedPoints"`
	TotalPredictedBadges int              `json:"totalPredictedBadges"`
}

// DryRunResponse is the full trace returned by the sandbox. Producing it
// must not mutate any repository.
type DryRunResponse struct {
	EventID        string          `json:"eventId"`
	EventType      string          `json:"eventType"`
	UserID         string          `json:"userId"`
	OccurredAt     time.Time       `json:"occurredAt"`
	EvaluatedRules []EvaluatedRule `json:"evaluatedRules"`
	Summary        DryRunSummary   `json:"summary"`
}
