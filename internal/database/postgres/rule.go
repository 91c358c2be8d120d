package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

type ruleRepository struct {
	db *pgxpool.Pool
}

// NewRuleRepository creates a new PostgreSQL rule repository
func NewRuleRepository(db *pgxpool.Pool) repository.Rule {
	return &ruleRepository{db: db}
}

// Create inserts a rule, failing on duplicate ids
func (r *ruleRepository) Create(ctx context.Context, rule domain.Rule) error {
	query := `
		INSERT INTO rules (rule_id, name, description, is_active, triggers, conditions, rewards, spendings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	cols, err := marshalRuleColumns(rule)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, rule.ID, rule.Name, rule.Description, rule.IsActive,
		cols.triggers, cols.conditions, cols.rewards, cols.spendings)
	if err != nil {
		if isUniqueViolation(err, "") {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertRule, err)
	}
	return nil
}

// Update replaces a rule, failing when the id is absent
func (r *ruleRepository) Update(ctx context.Context, rule domain.Rule) error {
	query := `
		UPDATE rules
		SET name = $2, description = $3, is_active = $4, triggers = $5, conditions = $6, rewards = $7, spendings = $8
		WHERE rule_id = $1
	`

	cols, err := marshalRuleColumns(rule)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, query, rule.ID, rule.Name, rule.Description, rule.IsActive,
		cols.triggers, cols.conditions, cols.rewards, cols.spendings)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateRule, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

// Delete removes a rule. Deleting an absent id is a no-op.
func (r *ruleRepository) Delete(ctx context.Context, ruleID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM rules WHERE rule_id = $1`, ruleID); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToDeleteRule, err)
	}
	return nil
}

// GetByID retrieves a rule
func (r *ruleRepository) GetByID(ctx context.Context, ruleID string) (*domain.Rule, error) {
	query := `
		SELECT rule_id, name, description, is_active, triggers, conditions, rewards, spendings
		FROM rules
		WHERE rule_id = $1
	`

	rule, err := scanRule(r.db.QueryRow(ctx, query, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRuleNotFound
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetRule, err)
	}
	return rule, nil
}

// List returns rules ordered by id ascending
func (r *ruleRepository) List(ctx context.Context, activeOnly bool) ([]domain.Rule, error) {
	query := `
		SELECT rule_id, name, description, is_active, triggers, conditions, rewards, spendings
		FROM rules
	`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY rule_id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryRules, err)
	}
	defer rows.Close()

	return scanRules(rows)
}

// ListByTrigger returns active rules triggered by eventType, ordered by id
// ascending so evaluation order is deterministic.
func (r *ruleRepository) ListByTrigger(ctx context.Context, eventType string) ([]domain.Rule, error) {
	query := `
		SELECT rule_id, name, description, is_active, triggers, conditions, rewards, spendings
		FROM rules
		WHERE is_active = TRUE AND triggers @> jsonb_build_array($1::text)
		ORDER BY rule_id ASC
	`

	rows, err := r.db.Query(ctx, query, eventType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryRules, err)
	}
	defer rows.Close()

	return scanRules(rows)
}

// SetActive toggles a rule's active flag
func (r *ruleRepository) SetActive(ctx context.Context, ruleID string, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE rules SET is_active = $2 WHERE rule_id = $1`, ruleID, active)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToUpdateRule, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

type ruleColumns struct {
	triggers, conditions, rewards, spendings []byte
}

func marshalRuleColumns(rule domain.Rule) (ruleColumns, error) {
	var cols ruleColumns
	var err error
	if cols.triggers, err = json.Marshal(rule.Triggers); err != nil {
		return cols, fmt.Errorf("%s: %w", ErrMsgFailedToMarshalRule, err)
	}
	if len(rule.Conditions) > 0 {
		if cols.conditions, err = json.Marshal(rule.Conditions); err != nil {
			return cols, fmt.Errorf("%s: %w", ErrMsgFailedToMarshalRule, err)
		}
	}
	if len(rule.Rewards) > 0 {
		if cols.rewards, err = json.Marshal(rule.Rewards); err != nil {
			return cols, fmt.Errorf("%s: %w", ErrMsgFailedToMarshalRule, err)
		}
	}
	if len(rule.Spendings) > 0 {
		if cols.spendings, err = json.Marshal(rule.Spendings); err != nil {
			return cols, fmt.Errorf("%s: %w", ErrMsgFailedToMarshalRule, err)
		}
	}
	return cols, nil
}

func scanRule(row pgx.Row) (*domain.Rule, error) {
	var rule domain.Rule
	var triggers, conditions, rewards, spendings []byte
	err := row.Scan(&rule.ID, &rule.Name, &rule.Description, &rule.IsActive,
		&triggers, &conditions, &rewards, &spendings)
	if err != nil {
		return nil, err
	}

	for _, pair := range []struct {
		data []byte
		out  any
	}{
		{triggers, &rule.Triggers},
		{conditions, &rule.Conditions},
		{rewards, &rule.Rewards},
		{spendings, &rule.Spendings},
	} {
		if err := unmarshalJSONB(pair.data, pair.out); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeRule, err)
		}
	}
	return &rule, nil
}

func scanRules(rows pgx.Rows) ([]domain.Rule, error) {
	rules := []domain.Rule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryRules, err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryRules, err)
	}
	return rules, nil
}
