package models

import "time"

type MatchType string

const (
	MatchTypeSingles MatchType = "singles"
	MatchTypeDoubles MatchType = "doubles"
)

// SetNotPlayed is the sentinel stored in a set score column when the set
// was never played (walkover, retirement before the set).
const SetNotPlayed = "[default]"

// IndividualMatch is one singles or doubles match inside a tie. The engine
// reads it via the tie → group → tournament chain and never writes it.
type IndividualMatch struct {
	ID        int       `json:"id" db:"id"`
	TieID     int       `json:"tie_id" db:"tie_id"`
	Category  Category  `json:"category" db:"category"`
	MatchType MatchType `json:"match_type" db:"match_type"`
	Player1ID *int      `json:"player_1_id,omitempty" db:"player_1_id"`
	Player2ID *int      `json:"player_2_id,omitempty" db:"player_2_id"`
	WinnerID  *int      `json:"winner_id,omitempty" db:"winner_id"`
	Set1Score *string   `json:"set_1_score,omitempty" db:"set_1_score"`
	Set2Score *string   `json:"set_2_score,omitempty" db:"set_2_score"`
	Set3Score *string   `json:"set_3_score,omitempty" db:"set_3_score"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Doubles roster, populated by the repository for doubles matches.
	DoublesPlayers []DoublesAssignment `json:"doubles_players,omitempty" db:"-"`
}

// SetScores returns the up-to-three recorded set columns in order.
func (m *IndividualMatch) SetScores() []*string {
	return []*string{m.Set1Score, m.Set2Score, m.Set3Score}
}

// DoublesAssignment places one player on team side 1 or 2 of a doubles match.
type DoublesAssignment struct {
	MatchID  int `json:"match_id" db:"match_id"`
	PlayerID int `json:"player_id" db:"player_id"`
	TeamSide int `json:"team_side" db:"team_side"`
}
