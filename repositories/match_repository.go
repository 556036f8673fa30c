package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shuttlenet/racquet-rankings/models"
)

type MatchRepository interface {
	// ListByTournament returns every individual match of the tournament,
	// reached via its ties and groups, with doubles rosters attached.
	// Pass decidedOnly to restrict to matches with a recorded winner.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, decidedOnly bool) ([]*models.IndividualMatch, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, decidedOnly bool) ([]*models.IndividualMatch, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT im.id, im.tie_id, im.category, im.match_type,
		       im.player_1_id, im.player_2_id, im.winner_id,
		       im.set_1_score, im.set_2_score, im.set_3_score, im.created_at
		FROM individual_matches im
		JOIN match_ties mt ON im.tie_id = mt.id
		JOIN tournament_groups tg ON mt.group_id = tg.id
		WHERE tg.tournament_id = $1`
	if decidedOnly {
		query += " AND im.winner_id IS NOT NULL"
	}
	query += " ORDER BY im.id ASC"

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.IndividualMatch, 0)
	for rows.Next() {
		var m models.IndividualMatch
		if scanErr := rows.Scan(
			&m.ID, &m.TieID, &m.Category, &m.MatchType,
			&m.Player1ID, &m.Player2ID, &m.WinnerID,
			&m.Set1Score, &m.Set2Score, &m.Set3Score, &m.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}

	if err = r.attachDoublesRosters(ctx, executor, matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) attachDoublesRosters(ctx context.Context, executor SQLExecutor, matches []*models.IndividualMatch) error {
	byMatch := make(map[int]*models.IndividualMatch)
	ids := make([]int, 0, len(matches))
	for _, m := range matches {
		if m.MatchType == models.MatchTypeDoubles {
			byMatch[m.ID] = m
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	query := `
		SELECT mdp.match_id, mdp.player_id, mdp.team_side
		FROM match_doubles_players mdp
		WHERE mdp.match_id = ANY($1)
		ORDER BY mdp.match_id ASC, mdp.team_side ASC, mdp.player_id ASC`

	rows, err := executor.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query doubles rosters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.DoublesAssignment
		if scanErr := rows.Scan(&a.MatchID, &a.PlayerID, &a.TeamSide); scanErr != nil {
			return fmt.Errorf("failed to scan doubles roster row: %w", scanErr)
		}
		if m, ok := byMatch[a.MatchID]; ok {
			m.DoublesPlayers = append(m.DoublesPlayers, a)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error during doubles roster rows iteration: %w", err)
	}
	return nil
}
