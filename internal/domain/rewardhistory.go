package domain

import "time"

// RewardHistory is an append-only record of one reward execution attempt.
// The triple (TriggerEventID, RuleID, Position) keys idempotency: the reward
// engine refuses to execute the same slot twice.
type RewardHistory struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	RewardID       string         `json:"rewardId,omitempty"`
	RewardType     string         `json:"rewardType"`
	TriggerEventID string         `json:"triggerEventId"`
	RuleID         string         `json:"ruleId"`
	Position       int            `json:"position"`
	AwardedAt      time.Time      `json:"awardedAt"`
	Success        bool           `json:"success"`
	Message        string         `json:"message,omitempty"`
	Details        map[string]any `json:"details,omitempty"`
}
