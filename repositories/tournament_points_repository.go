package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shuttlenet/racquet-rankings/models"
)

var (
	ErrTournamentPointsPlayerInvalid     = errors.New("tournament points player conflict or invalid")
	ErrTournamentPointsTournamentInvalid = errors.New("tournament points tournament conflict or invalid")
)

type TournamentPointsRepository interface {
	// Upsert writes one breakdown row keyed by (tournament, player,
	// category), overwriting every field of an existing row. awarded_at is
	// refreshed by the statement on both paths.
	Upsert(ctx context.Context, exec SQLExecutor, points *models.TournamentPlayerPoints) error
	// SumForPlayerCategory re-sums all of a player/category's rows across
	// every tournament into cumulative totals.
	SumForPlayerCategory(ctx context.Context, exec SQLExecutor, playerID int, category models.Category) (*models.RankingTotals, error)
	// ListByTournament returns the persisted breakdown of one tournament,
	// ordered by category then total points.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.TournamentPlayerPoints, error)
}

type postgresTournamentPointsRepository struct {
	db *sql.DB
}

func NewPostgresTournamentPointsRepository(db *sql.DB) TournamentPointsRepository {
	return &postgresTournamentPointsRepository{db: db}
}

func (r *postgresTournamentPointsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentPointsRepository) Upsert(ctx context.Context, exec SQLExecutor, points *models.TournamentPlayerPoints) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_player_points
			(tournament_id, player_id, category, placement_points, match_win_points,
			 set_win_points, total_points, matches_played, matches_won, sets_won,
			 sets_lost, final_placement, awarded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, CURRENT_TIMESTAMP)
		ON CONFLICT (tournament_id, player_id, category)
		DO UPDATE SET
			placement_points = EXCLUDED.placement_points,
			match_win_points = EXCLUDED.match_win_points,
			set_win_points = EXCLUDED.set_win_points,
			total_points = EXCLUDED.total_points,
			matches_played = EXCLUDED.matches_played,
			matches_won = EXCLUDED.matches_won,
			sets_won = EXCLUDED.sets_won,
			sets_lost = EXCLUDED.sets_lost,
			final_placement = EXCLUDED.final_placement,
			awarded_at = CURRENT_TIMESTAMP
		RETURNING id, awarded_at`

	err := executor.QueryRowContext(ctx, query,
		points.TournamentID, points.PlayerID, points.Category,
		points.PlacementPoints, points.MatchWinPoints, points.SetWinPoints,
		points.TotalPoints, points.MatchesPlayed, points.MatchesWon,
		points.SetsWon, points.SetsLost, points.FinalPlacement,
	).Scan(&points.ID, &points.AwardedAt)

	return r.handleTournamentPointsError(err)
}

func (r *postgresTournamentPointsRepository) SumForPlayerCategory(ctx context.Context, exec SQLExecutor, playerID int, category models.Category) (*models.RankingTotals, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT
			COALESCE(SUM(total_points), 0) AS total_points,
			COALESCE(SUM(placement_points), 0) AS tournament_points,
			COALESCE(SUM(match_win_points), 0) AS match_points,
			COALESCE(SUM(set_win_points), 0) AS set_points,
			COUNT(DISTINCT tournament_id) AS tournaments_played,
			COALESCE(SUM(matches_won), 0) AS matches_won,
			COALESCE(SUM(matches_played) - SUM(matches_won), 0) AS matches_lost,
			COALESCE(SUM(sets_won), 0) AS sets_won,
			COALESCE(SUM(sets_lost), 0) AS sets_lost
		FROM tournament_player_points
		WHERE player_id = $1 AND category = $2`

	totals := &models.RankingTotals{}
	err := executor.QueryRowContext(ctx, query, playerID, category).Scan(
		&totals.TotalPoints, &totals.TournamentPoints, &totals.MatchPoints,
		&totals.SetPoints, &totals.TournamentsPlayed, &totals.MatchesWon,
		&totals.MatchesLost, &totals.SetsWon, &totals.SetsLost,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sum points for player %d category %s: %w", playerID, category, err)
	}
	return totals, nil
}

func (r *postgresTournamentPointsRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.TournamentPlayerPoints, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, player_id, category, placement_points,
		       match_win_points, set_win_points, total_points, matches_played,
		       matches_won, sets_won, sets_lost, final_placement, awarded_at
		FROM tournament_player_points
		WHERE tournament_id = $1
		ORDER BY category ASC, total_points DESC, player_id ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournament points for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	results := make([]*models.TournamentPlayerPoints, 0)
	for rows.Next() {
		var p models.TournamentPlayerPoints
		if scanErr := rows.Scan(
			&p.ID, &p.TournamentID, &p.PlayerID, &p.Category, &p.PlacementPoints,
			&p.MatchWinPoints, &p.SetWinPoints, &p.TotalPoints, &p.MatchesPlayed,
			&p.MatchesWon, &p.SetsWon, &p.SetsLost, &p.FinalPlacement, &p.AwardedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament points row: %w", scanErr)
		}
		results = append(results, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament points rows iteration: %w", err)
	}
	return results, nil
}

func (r *postgresTournamentPointsRepository) handleTournamentPointsError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "tournament_player_points_player_id_fkey":
			return ErrTournamentPointsPlayerInvalid
		case "tournament_player_points_tournament_id_fkey":
			return ErrTournamentPointsTournamentInvalid
		}
	}
	return err
}
