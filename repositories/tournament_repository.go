package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shuttlenet/racquet-rankings/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	// GetWithWinners loads one non-deleted tournament together with its
	// podium, if any has been recorded.
	GetWithWinners(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// ListAll returns every non-deleted tournament ordered by start date,
	// then id, which fixes the processing order of a full rebuild.
	ListAll(ctx context.Context, exec SQLExecutor) ([]*models.Tournament, error)
	// LineupCategories maps each player registered in the tournament's
	// lineup to the distinct categories they compete in. Doubles partners
	// (player_2_id) count as lineup members of the same category.
	LineupCategories(ctx context.Context, exec SQLExecutor, tournamentID int) (map[int][]models.Category, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) GetWithWinners(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT t.id, t.name, t.slug, t.start_date, t.end_date, t.status, t.created_at,
		       tw.first_place_player_id, tw.second_place_player_id, tw.third_place_player_id
		FROM tournaments t
		LEFT JOIN tournament_winners tw ON tw.tournament_id = t.id
		WHERE t.id = $1 AND t.deleted_at IS NULL`

	t := &models.Tournament{}
	var first, second, third *int
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Slug, &t.StartDate, &t.EndDate, &t.Status, &t.CreatedAt,
		&first, &second, &third,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}

	if first != nil || second != nil || third != nil {
		t.Winners = &models.TournamentWinners{
			TournamentID:        t.ID,
			FirstPlacePlayerID:  first,
			SecondPlacePlayerID: second,
			ThirdPlacePlayerID:  third,
		}
	}
	return t, nil
}

func (r *postgresTournamentRepository) ListAll(ctx context.Context, exec SQLExecutor) ([]*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, slug, start_date, end_date, status, created_at
		FROM tournaments
		WHERE deleted_at IS NULL
		ORDER BY start_date ASC, id ASC`

	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.StartDate, &t.EndDate, &t.Status, &t.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) LineupCategories(ctx context.Context, exec SQLExecutor, tournamentID int) (map[int][]models.Category, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT tl.player_id, tl.player_2_id, tl.category
		FROM tournament_lineups tl
		WHERE tl.tournament_id = $1`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lineup for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	byPlayer := make(map[int][]models.Category)
	add := func(playerID int, category models.Category) {
		for _, existing := range byPlayer[playerID] {
			if existing == category {
				return
			}
		}
		byPlayer[playerID] = append(byPlayer[playerID], category)
	}

	for rows.Next() {
		var playerID int
		var player2ID *int
		var category models.Category
		if scanErr := rows.Scan(&playerID, &player2ID, &category); scanErr != nil {
			return nil, fmt.Errorf("failed to scan lineup row: %w", scanErr)
		}
		add(playerID, category)
		if player2ID != nil {
			add(*player2ID, category)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during lineup rows iteration: %w", err)
	}
	return byPlayer, nil
}
