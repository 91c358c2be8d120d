package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

// achievementTable names. Badges and trophies share one row shape; the table
// name selects the entity set. Never user input.
const (
	tableBadges   = "badges"
	tableTrophies = "trophies"
)

type entityRepository struct {
	db *pgxpool.Pool
}

// NewEntityRepository creates a new PostgreSQL entity catalog repository
func NewEntityRepository(db *pgxpool.Pool) repository.Entity {
	return &entityRepository{db: db}
}

// ---- Badges ----

func (r *entityRepository) CreateBadge(ctx context.Context, badge domain.Badge) error {
	return r.createAchievement(ctx, tableBadges, badge.ID, badge.Name, badge.Description, badge.Image, badge.Visible)
}

func (r *entityRepository) UpdateBadge(ctx context.Context, badge domain.Badge) error {
	return r.updateAchievement(ctx, tableBadges, badge.ID, badge.Name, badge.Description, badge.Image, badge.Visible)
}

func (r *entityRepository) DeleteBadge(ctx context.Context, id string) error {
	return r.deleteByID(ctx, tableBadges, "badge_id", id)
}

func (r *entityRepository) GetBadge(ctx context.Context, id string) (*domain.Badge, error) {
	var b domain.Badge
	err := r.getAchievement(ctx, tableBadges, "badge_id", id, &b.ID, &b.Name, &b.Description, &b.Image, &b.Visible)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *entityRepository) ListBadges(ctx context.Context, visibleOnly bool) ([]domain.Badge, error) {
	rows, err := r.listAchievements(ctx, tableBadges, "badge_id", visibleOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	badges := []domain.Badge{}
	for rows.Next() {
		var b domain.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Image, &b.Visible); err != nil {
			return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", tableBadges, err)
		}
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", tableBadges, err)
	}
	return badges, nil
}

// ---- Trophies ----

func (r *entityRepository) CreateTrophy(ctx context.Context, trophy domain.Trophy) error {
	return r.createAchievement(ctx, tableTrophies, trophy.ID, trophy.Name, trophy.Description, trophy.Image, trophy.Visible)
}

func (r *entityRepository) UpdateTrophy(ctx context.Context, trophy domain.Trophy) error {
	return r.updateAchievement(ctx, tableTrophies, trophy.ID, trophy.Name, trophy.Description, trophy.Image, trophy.Visible)
}

func (r *entityRepository) DeleteTrophy(ctx context.Context, id string) error {
	return r.deleteByID(ctx, tableTrophies, "trophy_id", id)
}

func (r *entityRepository) GetTrophy(ctx context.Context, id string) (*domain.Trophy, error) {
	var t domain.Trophy
	err := r.getAchievement(ctx, tableTrophies, "trophy_id", id, &t.ID, &t.Name, &t.Description, &t.Image, &t.Visible)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *entityRepository) ListTrophies(ctx context.Context, visibleOnly bool) ([]domain.Trophy, error) {
	rows, err := r.listAchievements(ctx, tableTrophies, "trophy_id", visibleOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trophies := []domain.Trophy{}
	for rows.Next() {
		var t domain.Trophy
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Image, &t.Visible); err != nil {
			return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", tableTrophies, err)
		}
		trophies = append(trophies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", tableTrophies, err)
	}
	return trophies, nil
}

// ---- Levels ----

func (r *entityRepository) CreateLevel(ctx context.Context, level domain.Level) error {
	query := `
		INSERT INTO levels (level_id, name, description, image, visible, category, min_points)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, level.ID, level.Name, level.Description, level.Image,
		level.Visible, level.Category, level.MinPoints)
	if err != nil {
		if isUniqueViolation(err, "") {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf(ErrMsgFailedToInsertEntity+": %w", "level", err)
	}
	return nil
}

func (r *entityRepository) UpdateLevel(ctx context.Context, level domain.Level) error {
	query := `
		UPDATE levels
		SET name = $2, description = $3, image = $4, visible = $5, category = $6, min_points = $7
		WHERE level_id = $1
	`
	tag, err := r.db.Exec(ctx, query, level.ID, level.Name, level.Description, level.Image,
		level.Visible, level.Category, level.MinPoints)
	if err != nil {
		return fmt.Errorf(ErrMsgFailedToUpdateEntity+": %w", "level", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntityNotFound
	}
	return nil
}

func (r *entityRepository) DeleteLevel(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "levels", "level_id", id)
}

func (r *entityRepository) GetLevel(ctx context.Context, id string) (*domain.Level, error) {
	query := `
		SELECT level_id, name, description, image, visible, category, min_points
		FROM levels
		WHERE level_id = $1
	`
	var l domain.Level
	err := r.db.QueryRow(ctx, query, id).Scan(&l.ID, &l.Name, &l.Description, &l.Image,
		&l.Visible, &l.Category, &l.MinPoints)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntityNotFound
		}
		return nil, fmt.Errorf(ErrMsgFailedToGetEntity+": %w", "level", err)
	}
	return &l, nil
}

func (r *entityRepository) ListLevels(ctx context.Context) ([]domain.Level, error) {
	query := `
		SELECT level_id, name, description, image, visible, category, min_points
		FROM levels
		ORDER BY level_id ASC
	`
	return r.scanLevels(r.db.Query(ctx, query))
}

func (r *entityRepository) ListLevelsByCategory(ctx context.Context, category string) ([]domain.Level, error) {
	query := `
		SELECT level_id, name, description, image, visible, category, min_points
		FROM levels
		WHERE category = $1
		ORDER BY min_points ASC
	`
	return r.scanLevels(r.db.Query(ctx, query, category))
}

func (r *entityRepository) scanLevels(rows pgx.Rows, err error) ([]domain.Level, error) {
	if err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", "levels", err)
	}
	defer rows.Close()

	levels := []domain.Level{}
	for rows.Next() {
		var l domain.Level
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Image, &l.Visible, &l.Category, &l.MinPoints); err != nil {
			return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", "levels", err)
		}
		levels = append(levels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", "levels", err)
	}
	return levels, nil
}

// ---- Point Categories ----

func (r *entityRepository) CreatePointCategory(ctx context.Context, category domain.PointCategory) error {
	query := `
		INSERT INTO point_categories (category_id, name, description, aggregation)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.Name, category.Description, string(category.Aggregation))
	if err != nil {
		if isUniqueViolation(err, "") {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf(ErrMsgFailedToInsertEntity+": %w", "point category", err)
	}
	return nil
}

func (r *entityRepository) UpdatePointCategory(ctx context.Context, category domain.PointCategory) error {
	query := `
		UPDATE point_categories
		SET name = $2, description = $3, aggregation = $4
		WHERE category_id = $1
	`
	tag, err := r.db.Exec(ctx, query, category.ID, category.Name, category.Description, string(category.Aggregation))
	if err != nil {
		return fmt.Errorf(ErrMsgFailedToUpdateEntity+": %w", "point category", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (r *entityRepository) DeletePointCategory(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "point_categories", "category_id", id)
}

func (r *entityRepository) GetPointCategory(ctx context.Context, id string) (*domain.PointCategory, error) {
	query := `
		SELECT category_id, name, description, aggregation
		FROM point_categories
		WHERE category_id = $1
	`
	var c domain.PointCategory
	var aggregation string
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &aggregation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf(ErrMsgFailedToGetEntity+": %w", "point category", err)
	}
	c.Aggregation = domain.Aggregation(aggregation)
	return &c, nil
}

func (r *entityRepository) ListPointCategories(ctx context.Context) ([]domain.PointCategory, error) {
	query := `
		SELECT category_id, name, description, aggregation
		FROM point_categories
		ORDER BY category_id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", "point_categories", err)
	}
	defer rows.Close()

	categories := []domain.PointCategory{}
	for rows.Next() {
		var c domain.PointCategory
		var aggregation string
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &aggregation); err != nil {
			return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", "point_categories", err)
		}
		c.Aggregation = domain.Aggregation(aggregation)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", "point_categories", err)
	}
	return categories, nil
}

// ---- Event Definitions ----

func (r *entityRepository) CreateEventDefinition(ctx context.Context, def domain.EventDefinition) error {
	query := `
		INSERT INTO event_definitions (event_type, description, payload_schema)
		VALUES ($1, $2, $3)
	`
	schema, err := marshalJSONB(def.PayloadSchema)
	if err != nil {
		return fmt.Errorf(ErrMsgFailedToInsertEntity+": %w", "event definition", err)
	}
	if _, err := r.db.Exec(ctx, query, def.ID, def.Description, schema); err != nil {
		if isUniqueViolation(err, "") {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf(ErrMsgFailedToInsertEntity+": %w", "event definition", err)
	}
	return nil
}

func (r *entityRepository) UpdateEventDefinition(ctx context.Context, def domain.EventDefinition) error {
	query := `
		UPDATE event_definitions
		SET description = $2, payload_schema = $3
		WHERE event_type = $1
	`
	schema, err := marshalJSONB(def.PayloadSchema)
	if err != nil {
		return fmt.Errorf(ErrMsgFailedToUpdateEntity+": %w", "event definition", err)
	}
	tag, err := r.db.Exec(ctx, query, def.ID, def.Description, schema)
	if err != nil {
		return fmt.Errorf(ErrMsgFailedToUpdateEntity+": %w", "event definition", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntityNotFound
	}
	return nil
}

func (r *entityRepository) DeleteEventDefinition(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "event_definitions", "event_type", id)
}

func (r *entityRepository) GetEventDefinition(ctx context.Context, id string) (*domain.EventDefinition, error) {
	query := `
		SELECT event_type, description, payload_schema
		FROM event_definitions
		WHERE event_type = $1
	`
	var def domain.EventDefinition
	var schema []byte
	err := r.db.QueryRow(ctx, query, id).Scan(&def.ID, &def.Description, &schema)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntityNotFound
		}
		return nil, fmt.Errorf(ErrMsgFailedToGetEntity+": %w", "event definition", err)
	}
	if err := unmarshalJSONB(schema, &def.PayloadSchema); err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToGetEntity+": %w", "event definition", err)
	}
	return &def, nil
}

func (r *entityRepository) ListEventDefinitions(ctx context.Context) ([]domain.EventDefinition, error) {
	query := `
		SELECT event_type, description, payload_schema
		FROM event_definitions
		ORDER BY event_type ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", "event_definitions", err)
	}
	defer rows.Close()

	defs := []domain.EventDefinition{}
	for rows.Next() {
		var def domain.EventDefinition
		var schema []byte
		if err := rows.Scan(&def.ID, &def.Description, &schema); err != nil {
			return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", "event_definitions", err)
		}
		if err := unmarshalJSONB(schema, &def.PayloadSchema); err != nil {
			return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", "event_definitions", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", "event_definitions", err)
	}
	return defs, nil
}

// ---- Shared helpers ----

func (r *entityRepository) createAchievement(ctx context.Context, table, id, name, description, image string, visible bool) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s_id, name, description, image, visible)
		VALUES ($1, $2, $3, $4, $5)
	`, table, achievementColumn(table))
	if _, err := r.db.Exec(ctx, query, id, name, description, image, visible); err != nil {
		if isUniqueViolation(err, "") {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf(ErrMsgFailedToInsertEntity+": %w", table, err)
	}
	return nil
}

func (r *entityRepository) updateAchievement(ctx context.Context, table, id, name, description, image string, visible bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, description = $3, image = $4, visible = $5
		WHERE %s_id = $1
	`, table, achievementColumn(table))
	tag, err := r.db.Exec(ctx, query, id, name, description, image, visible)
	if err != nil {
		return fmt.Errorf(ErrMsgFailedToUpdateEntity+": %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntityNotFound
	}
	return nil
}

func (r *entityRepository) getAchievement(ctx context.Context, table, idColumn, id string, dest ...any) error {
	query := fmt.Sprintf(`
		SELECT %s, name, description, image, visible
		FROM %s
		WHERE %s = $1
	`, idColumn, table, idColumn)
	if err := r.db.QueryRow(ctx, query, id).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEntityNotFound
		}
		return fmt.Errorf(ErrMsgFailedToGetEntity+": %w", table, err)
	}
	return nil
}

func (r *entityRepository) listAchievements(ctx context.Context, table, idColumn string, visibleOnly bool) (pgx.Rows, error) {
	query := fmt.Sprintf(`
		SELECT %s, name, description, image, visible
		FROM %s
	`, idColumn, table)
	if visibleOnly {
		query += ` WHERE visible = TRUE`
	}
	query += fmt.Sprintf(` ORDER BY %s ASC`, idColumn)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgFailedToQueryEntities+": %w", table, err)
	}
	return rows, nil
}

func (r *entityRepository) deleteByID(ctx context.Context, table, idColumn, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, idColumn)
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf(ErrMsgFailedToDeleteEntity+": %w", table, err)
	}
	return nil
}

func achievementColumn(table string) string {
	if table == tableTrophies {
		return "trophy"
	}
	return "badge"
}
