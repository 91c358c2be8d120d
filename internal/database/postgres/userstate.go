package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

type userStateRepository struct {
	db *pgxpool.Pool
}

// NewUserStateRepository creates a new PostgreSQL user state repository
func NewUserStateRepository(db *pgxpool.Pool) repository.UserState {
	return &userStateRepository{db: db}
}

// GetByUser returns the stored state, or a fresh empty state for unseen users
func (r *userStateRepository) GetByUser(ctx context.Context, userID string) (*domain.UserState, error) {
	query := `
		SELECT points_by_category, badges, trophies, level_by_category
		FROM user_states
		WHERE user_id = $1
	`

	var points, badges, trophies, levels []byte
	err := r.db.QueryRow(ctx, query, userID).Scan(&points, &badges, &trophies, &levels)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewUserState(userID), nil
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetUserState, err)
	}

	state := domain.NewUserState(userID)
	for _, pair := range []struct {
		data []byte
		out  any
	}{
		{points, &state.PointsByCategory},
		{badges, &state.Badges},
		{trophies, &state.Trophies},
		{levels, &state.LevelByCategory},
	} {
		if err := unmarshalJSONB(pair.data, pair.out); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeUserState, err)
		}
	}
	return state, nil
}

// Save upserts the full state row. Callers serialize per user, so the plain
// overwrite is safe.
func (r *userStateRepository) Save(ctx context.Context, state *domain.UserState) error {
	query := `
		INSERT INTO user_states (user_id, points_by_category, badges, trophies, level_by_category, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			points_by_category = EXCLUDED.points_by_category,
			badges = EXCLUDED.badges,
			trophies = EXCLUDED.trophies,
			level_by_category = EXCLUDED.level_by_category,
			updated_at = EXCLUDED.updated_at
	`

	points, err := json.Marshal(state.PointsByCategory)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToMarshalUserState, err)
	}
	badges, err := json.Marshal(state.Badges)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToMarshalUserState, err)
	}
	trophies, err := json.Marshal(state.Trophies)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToMarshalUserState, err)
	}
	levels, err := json.Marshal(state.LevelByCategory)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToMarshalUserState, err)
	}

	_, err = r.db.Exec(ctx, query, state.UserID, points, badges, trophies, levels, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToSaveUserState, err)
	}
	return nil
}

// ListBadgeCounts returns badge counts for users holding at least one badge
func (r *userStateRepository) ListBadgeCounts(ctx context.Context) ([]domain.UserCount, error) {
	return r.listCounts(ctx, "badges")
}

// ListTrophyCounts returns trophy counts for users holding at least one trophy
func (r *userStateRepository) ListTrophyCounts(ctx context.Context) ([]domain.UserCount, error) {
	return r.listCounts(ctx, "trophies")
}

func (r *userStateRepository) listCounts(ctx context.Context, column string) ([]domain.UserCount, error) {
	// column is one of the fixed jsonb array columns above, never user input
	query := fmt.Sprintf(`
		SELECT user_id, jsonb_array_length(%s)
		FROM user_states
		WHERE jsonb_array_length(%s) > 0
		ORDER BY user_id ASC
	`, column, column)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryStateCounts, err)
	}
	defer rows.Close()

	counts := []domain.UserCount{}
	for rows.Next() {
		var c domain.UserCount
		if err := rows.Scan(&c.UserID, &c.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryStateCounts, err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryStateCounts, err)
	}
	return counts, nil
}
