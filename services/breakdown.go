package services

import "github.com/shuttlenet/racquet-rankings/models"

// CategoryTally accumulates one player's results within one category of a
// single tournament. The three scoring phases mutate it in turn; the writer
// derives total_points from the three point components when persisting.
type CategoryTally struct {
	PlacementPoints int     `json:"placement_points"`
	MatchWinPoints  int     `json:"match_win_points"`
	SetWinPoints    int     `json:"set_win_points"`
	TotalPoints     int     `json:"total_points"`
	MatchesPlayed   int     `json:"matches_played"`
	MatchesWon      int     `json:"matches_won"`
	SetsWon         int     `json:"sets_won"`
	SetsLost        int     `json:"sets_lost"`
	FinalPlacement  *string `json:"final_placement,omitempty"`
}

// Breakdown is the in-memory accumulator threaded through the scoring
// phases, keyed by player then category.
type Breakdown map[int]map[models.Category]*CategoryTally

// tally returns the entry for (playerID, category), creating a zeroed one
// on first access.
func (b Breakdown) tally(playerID int, category models.Category) *CategoryTally {
	byCategory, ok := b[playerID]
	if !ok {
		byCategory = make(map[models.Category]*CategoryTally)
		b[playerID] = byCategory
	}
	t, ok := byCategory[category]
	if !ok {
		t = &CategoryTally{}
		byCategory[category] = t
	}
	return t
}

// finalizeTotals restores total = placement + match + set on every tally.
func (b Breakdown) finalizeTotals() {
	for _, byCategory := range b {
		for _, t := range byCategory {
			t.TotalPoints = t.PlacementPoints + t.MatchWinPoints + t.SetWinPoints
		}
	}
}
