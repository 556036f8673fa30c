package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/shuttlenet/racquet-rankings/models"
)

type RankingHistoryRepository interface {
	// UpsertSnapshot records today's rank and points for one player and
	// category. Reruns on the same calendar day overwrite the existing
	// snapshot instead of appending a duplicate.
	UpsertSnapshot(ctx context.Context, exec SQLExecutor, playerID int, category models.Category, rank int, totalPoints int) error
	// ListByPlayer returns a player's snapshots, newest first, optionally
	// restricted to one category.
	ListByPlayer(ctx context.Context, exec SQLExecutor, playerID int, category *models.Category, limit int) ([]*models.RankingSnapshot, error)
}

type postgresRankingHistoryRepository struct {
	db *sql.DB
}

func NewPostgresRankingHistoryRepository(db *sql.DB) RankingHistoryRepository {
	return &postgresRankingHistoryRepository{db: db}
}

func (r *postgresRankingHistoryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRankingHistoryRepository) UpsertSnapshot(ctx context.Context, exec SQLExecutor, playerID int, category models.Category, rank int, totalPoints int) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO ranking_history (player_id, category, rank, total_points, recorded_at)
		VALUES ($1, $2, $3, $4, CURRENT_DATE)
		ON CONFLICT (player_id, category, recorded_at)
		DO UPDATE SET
			rank = EXCLUDED.rank,
			total_points = EXCLUDED.total_points`

	_, err := executor.ExecContext(ctx, query, playerID, category, rank, totalPoints)
	if err != nil {
		return fmt.Errorf("failed to upsert ranking snapshot for player %d category %s: %w", playerID, category, err)
	}
	return nil
}

func (r *postgresRankingHistoryRepository) ListByPlayer(ctx context.Context, exec SQLExecutor, playerID int, category *models.Category, limit int) ([]*models.RankingSnapshot, error) {
	executor := r.getExecutor(exec)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, player_id, category, rank, total_points, recorded_at
		FROM ranking_history
		WHERE player_id = $1`)

	args := []interface{}{playerID}
	placeholderIndex := 2

	if category != nil {
		queryBuilder.WriteString(" AND category = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *category)
		placeholderIndex++
	}

	queryBuilder.WriteString(" ORDER BY recorded_at DESC, category ASC")

	if limit > 0 {
		queryBuilder.WriteString(" LIMIT $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, limit)
	}

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking history for player %d: %w", playerID, err)
	}
	defer rows.Close()

	snapshots := make([]*models.RankingSnapshot, 0)
	for rows.Next() {
		var s models.RankingSnapshot
		if scanErr := rows.Scan(&s.ID, &s.PlayerID, &s.Category, &s.Rank, &s.TotalPoints, &s.RecordedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan ranking snapshot row: %w", scanErr)
		}
		snapshots = append(snapshots, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during ranking history rows iteration: %w", err)
	}
	return snapshots, nil
}
