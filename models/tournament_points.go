package models

import "time"

// TournamentPlayerPoints is the persisted per-tournament breakdown for one
// (tournament, player, category). Rows are always fully overwritten on
// recalculation, never incremented, which is what keeps reruns idempotent.
type TournamentPlayerPoints struct {
	ID              int       `json:"id" db:"id"`
	TournamentID    int       `json:"tournament_id" db:"tournament_id"`
	PlayerID        int       `json:"player_id" db:"player_id"`
	Category        Category  `json:"category" db:"category"`
	PlacementPoints int       `json:"placement_points" db:"placement_points"`
	MatchWinPoints  int       `json:"match_win_points" db:"match_win_points"`
	SetWinPoints    int       `json:"set_win_points" db:"set_win_points"`
	TotalPoints     int       `json:"total_points" db:"total_points"`
	MatchesPlayed   int       `json:"matches_played" db:"matches_played"`
	MatchesWon      int       `json:"matches_won" db:"matches_won"`
	SetsWon         int       `json:"sets_won" db:"sets_won"`
	SetsLost        int       `json:"sets_lost" db:"sets_lost"`
	FinalPlacement  *string   `json:"final_placement,omitempty" db:"final_placement"`
	AwardedAt       time.Time `json:"awarded_at" db:"awarded_at"`
}

// NewTournamentPlayerPoints builds a row with TotalPoints derived from the
// three components. TotalPoints must never be set independently.
func NewTournamentPlayerPoints(tournamentID, playerID int, category Category) *TournamentPlayerPoints {
	return &TournamentPlayerPoints{
		TournamentID: tournamentID,
		PlayerID:     playerID,
		Category:     category,
	}
}

// RecomputeTotal restores the invariant total = placement + match + set.
// Call it after any mutation of the component fields.
func (p *TournamentPlayerPoints) RecomputeTotal() {
	p.TotalPoints = p.PlacementPoints + p.MatchWinPoints + p.SetWinPoints
}
