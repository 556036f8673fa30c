package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shuttlenet/racquet-rankings/models"
)

var ErrPointConfigNotFound = errors.New("point config not found")

type PointConfigRepository interface {
	// FindPoints resolves the configured point value for an achievement.
	// A category-specific active row wins over the category-NULL default.
	// ErrPointConfigNotFound is returned when neither row exists.
	FindPoints(ctx context.Context, exec SQLExecutor, achievementType models.AchievementType, achievementKey string, category *models.Category) (int, error)
	// ListActive returns every active config row, defaults first.
	ListActive(ctx context.Context, exec SQLExecutor) ([]*models.PointConfig, error)
}

type postgresPointConfigRepository struct {
	db *sql.DB
}

func NewPostgresPointConfigRepository(db *sql.DB) PointConfigRepository {
	return &postgresPointConfigRepository{db: db}
}

func (r *postgresPointConfigRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPointConfigRepository) FindPoints(ctx context.Context, exec SQLExecutor, achievementType models.AchievementType, achievementKey string, category *models.Category) (int, error) {
	executor := r.getExecutor(exec)

	if category != nil {
		query := `
			SELECT points
			FROM ranking_point_config
			WHERE achievement_type = $1 AND achievement_key = $2
			  AND category = $3 AND active = TRUE`
		var points int
		err := executor.QueryRowContext(ctx, query, achievementType, achievementKey, *category).Scan(&points)
		if err == nil {
			return points, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("failed to look up %s/%s points for category %s: %w", achievementType, achievementKey, *category, err)
		}
	}

	query := `
		SELECT points
		FROM ranking_point_config
		WHERE achievement_type = $1 AND achievement_key = $2
		  AND category IS NULL AND active = TRUE`
	var points int
	err := executor.QueryRowContext(ctx, query, achievementType, achievementKey).Scan(&points)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrPointConfigNotFound
		}
		return 0, fmt.Errorf("failed to look up default %s/%s points: %w", achievementType, achievementKey, err)
	}
	return points, nil
}

func (r *postgresPointConfigRepository) ListActive(ctx context.Context, exec SQLExecutor) ([]*models.PointConfig, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, achievement_type, achievement_key, category, points, active
		FROM ranking_point_config
		WHERE active = TRUE
		ORDER BY achievement_type ASC, achievement_key ASC, category ASC NULLS FIRST`

	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query point config: %w", err)
	}
	defer rows.Close()

	configs := make([]*models.PointConfig, 0)
	for rows.Next() {
		var c models.PointConfig
		if scanErr := rows.Scan(&c.ID, &c.AchievementType, &c.AchievementKey, &c.Category, &c.Points, &c.Active); scanErr != nil {
			return nil, fmt.Errorf("failed to scan point config row: %w", scanErr)
		}
		configs = append(configs, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during point config rows iteration: %w", err)
	}
	return configs, nil
}
