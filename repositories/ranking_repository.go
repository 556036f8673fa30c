package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shuttlenet/racquet-rankings/models"
)

var ErrPlayerRankingNotFound = errors.New("player ranking not found")

type PlayerRankingRepository interface {
	// UpsertTotals overwrites the cumulative fields of one (player,
	// category) ranking row with freshly summed totals. Rank fields are
	// left untouched; UpdateRankPosition owns them.
	UpsertTotals(ctx context.Context, exec SQLExecutor, playerID int, category models.Category, totals *models.RankingTotals) error
	// ListByCategory returns the category's ranking rows in tie-break
	// order: total points, then tournaments played, then matches won, all
	// descending. Rows tied on all three keys come back in storage order;
	// no further tie-break is defined.
	ListByCategory(ctx context.Context, exec SQLExecutor, category models.Category) ([]*models.PlayerRanking, error)
	// UpdateRankPosition writes the new rank, shifts the old current_rank
	// into previous_rank, and advances peak_rank/peak_rank_date only when
	// the new rank is an improvement.
	UpdateRankPosition(ctx context.Context, exec SQLExecutor, playerID int, category models.Category, previousRank *int, newRank int) error
	// ListByPlayer returns all of a player's ranking rows.
	ListByPlayer(ctx context.Context, exec SQLExecutor, playerID int) ([]*models.PlayerRanking, error)
}

type postgresPlayerRankingRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRankingRepository(db *sql.DB) PlayerRankingRepository {
	return &postgresPlayerRankingRepository{db: db}
}

func (r *postgresPlayerRankingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRankingRepository) UpsertTotals(ctx context.Context, exec SQLExecutor, playerID int, category models.Category, totals *models.RankingTotals) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO player_rankings
			(player_id, category, total_points, tournament_points, match_points,
			 set_points, tournaments_played, matches_won, matches_lost, sets_won,
			 sets_lost, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, CURRENT_TIMESTAMP)
		ON CONFLICT (player_id, category)
		DO UPDATE SET
			total_points = EXCLUDED.total_points,
			tournament_points = EXCLUDED.tournament_points,
			match_points = EXCLUDED.match_points,
			set_points = EXCLUDED.set_points,
			tournaments_played = EXCLUDED.tournaments_played,
			matches_won = EXCLUDED.matches_won,
			matches_lost = EXCLUDED.matches_lost,
			sets_won = EXCLUDED.sets_won,
			sets_lost = EXCLUDED.sets_lost,
			last_updated = CURRENT_TIMESTAMP`

	_, err := executor.ExecContext(ctx, query,
		playerID, category, totals.TotalPoints, totals.TournamentPoints,
		totals.MatchPoints, totals.SetPoints, totals.TournamentsPlayed,
		totals.MatchesWon, totals.MatchesLost, totals.SetsWon, totals.SetsLost,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ranking for player %d category %s: %w", playerID, category, err)
	}
	return nil
}

func (r *postgresPlayerRankingRepository) scanRanking(rowScanner interface{ Scan(...interface{}) error }) (*models.PlayerRanking, error) {
	var pr models.PlayerRanking
	err := rowScanner.Scan(
		&pr.ID, &pr.PlayerID, &pr.Category, &pr.TotalPoints, &pr.TournamentPoints,
		&pr.MatchPoints, &pr.SetPoints, &pr.TournamentsPlayed, &pr.MatchesWon,
		&pr.MatchesLost, &pr.SetsWon, &pr.SetsLost, &pr.CurrentRank,
		&pr.PreviousRank, &pr.PeakRank, &pr.PeakRankDate, &pr.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerRankingNotFound
		}
		return nil, err
	}
	return &pr, nil
}

const playerRankingColumns = `
	id, player_id, category, total_points, tournament_points, match_points,
	set_points, tournaments_played, matches_won, matches_lost, sets_won,
	sets_lost, current_rank, previous_rank, peak_rank, peak_rank_date, last_updated`

func (r *postgresPlayerRankingRepository) ListByCategory(ctx context.Context, exec SQLExecutor, category models.Category) ([]*models.PlayerRanking, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + playerRankingColumns + `
		FROM player_rankings
		WHERE category = $1
		ORDER BY total_points DESC, tournaments_played DESC, matches_won DESC`

	rows, err := executor.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query rankings for category %s: %w", category, err)
	}
	defer rows.Close()

	rankings := make([]*models.PlayerRanking, 0)
	for rows.Next() {
		pr, scanErr := r.scanRanking(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", scanErr)
		}
		rankings = append(rankings, pr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during ranking rows iteration: %w", err)
	}
	return rankings, nil
}

func (r *postgresPlayerRankingRepository) UpdateRankPosition(ctx context.Context, exec SQLExecutor, playerID int, category models.Category, previousRank *int, newRank int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE player_rankings
		SET previous_rank = $1,
		    current_rank = $2,
		    peak_rank = CASE
		        WHEN peak_rank IS NULL OR $2 < peak_rank THEN $2
		        ELSE peak_rank
		    END,
		    peak_rank_date = CASE
		        WHEN peak_rank IS NULL OR $2 < peak_rank THEN CURRENT_DATE
		        ELSE peak_rank_date
		    END
		WHERE player_id = $3 AND category = $4`

	result, err := executor.ExecContext(ctx, query, previousRank, newRank, playerID, category)
	if err != nil {
		return fmt.Errorf("failed to update rank for player %d category %s: %w", playerID, category, err)
	}
	return checkAffectedRows(result, ErrPlayerRankingNotFound)
}

func (r *postgresPlayerRankingRepository) ListByPlayer(ctx context.Context, exec SQLExecutor, playerID int) ([]*models.PlayerRanking, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + playerRankingColumns + `
		FROM player_rankings
		WHERE player_id = $1
		ORDER BY category ASC`

	rows, err := executor.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rankings for player %d: %w", playerID, err)
	}
	defer rows.Close()

	rankings := make([]*models.PlayerRanking, 0)
	for rows.Next() {
		pr, scanErr := r.scanRanking(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", scanErr)
		}
		rankings = append(rankings, pr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during ranking rows iteration: %w", err)
	}
	return rankings, nil
}
