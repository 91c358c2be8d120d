package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

type rewardHistoryRepository struct {
	db *pgxpool.Pool
}

// NewRewardHistoryRepository creates a new PostgreSQL reward history repository
func NewRewardHistoryRepository(db *pgxpool.Pool) repository.RewardHistory {
	return &rewardHistoryRepository{db: db}
}

// Append stores one execution record
func (r *rewardHistoryRepository) Append(ctx context.Context, entry domain.RewardHistory) error {
	query := `
		INSERT INTO reward_history (entry_id, user_id, reward_id, reward_type, trigger_event_id, rule_id, position, awarded_at, success, message, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	details, err := marshalJSONB(entry.Details)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToAppendHistory, err)
	}

	_, err = r.db.Exec(ctx, query, entry.ID, entry.UserID, entry.RewardID, entry.RewardType,
		entry.TriggerEventID, entry.RuleID, entry.Position, entry.AwardedAt,
		entry.Success, entry.Message, details)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToAppendHistory, err)
	}
	return nil
}

// Exists reports whether a record for the idempotency triple is present
func (r *rewardHistoryRepository) Exists(ctx context.Context, triggerEventID, ruleID string, position int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reward_history
			WHERE trigger_event_id = $1 AND rule_id = $2 AND position = $3
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, triggerEventID, ruleID, position).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToCheckHistory, err)
	}
	return exists, nil
}

// GetByUser returns the user's history newest first with 1-based pagination
func (r *rewardHistoryRepository) GetByUser(ctx context.Context, userID string, page, pageSize int) ([]domain.RewardHistory, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = repository.MaxEventPageSize
	}

	query := `
		SELECT entry_id, user_id, reward_id, reward_type, trigger_event_id, rule_id, position, awarded_at, success, message, details
		FROM reward_history
		WHERE user_id = $1
		ORDER BY awarded_at DESC, entry_id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryHistory, err)
	}
	defer rows.Close()

	entries := []domain.RewardHistory{}
	for rows.Next() {
		var entry domain.RewardHistory
		var details []byte
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.RewardID, &entry.RewardType,
			&entry.TriggerEventID, &entry.RuleID, &entry.Position, &entry.AwardedAt,
			&entry.Success, &entry.Message, &details)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryHistory, err)
		}
		if err := unmarshalJSONB(details, &entry.Details); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryHistory, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryHistory, err)
	}
	return entries, nil
}

// CountByTypeInWindow counts successful executions of one reward type per
// user over [start, end)
func (r *rewardHistoryRepository) CountByTypeInWindow(ctx context.Context, rewardType string, start, end time.Time) ([]domain.UserCount, error) {
	query := `
		SELECT user_id, COUNT(*)
		FROM reward_history
		WHERE reward_type = $1 AND success = TRUE AND awarded_at >= $2 AND awarded_at < $3
		GROUP BY user_id
		ORDER BY user_id ASC
	`

	rows, err := r.db.Query(ctx, query, rewardType, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCountHistory, err)
	}
	defer rows.Close()

	counts := []domain.UserCount{}
	for rows.Next() {
		var c domain.UserCount
		if err := rows.Scan(&c.UserID, &c.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCountHistory, err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCountHistory, err)
	}
	return counts, nil
}
