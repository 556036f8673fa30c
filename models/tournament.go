package models

import "time"

// TournamentStatus mirrors the ENUM in the DB.
type TournamentStatus string

const (
	StatusDraft     TournamentStatus = "DRAFT"
	StatusPublished TournamentStatus = "PUBLISHED"
	StatusActive    TournamentStatus = "ACTIVE"
	StatusCompleted TournamentStatus = "COMPLETED"
	StatusCanceled  TournamentStatus = "CANCELED"
)

// Tournament is read-only from the ranking engine's perspective;
// creation and lifecycle are owned by the registry's tournament management.
type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Slug      string           `json:"slug" db:"slug"`
	StartDate time.Time        `json:"start_date" db:"start_date"`
	EndDate   time.Time        `json:"end_date" db:"end_date"`
	Status    TournamentStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	DeletedAt *time.Time       `json:"-" db:"deleted_at"`

	// Optional linked data, populated by the repository when requested.
	Winners *TournamentWinners `json:"winners,omitempty" db:"-"`
}

// TournamentWinners holds the podium for one tournament. Any slot may be
// unassigned (e.g. third place not played out).
type TournamentWinners struct {
	TournamentID        int  `json:"tournament_id" db:"tournament_id"`
	FirstPlacePlayerID  *int `json:"first_place_player_id,omitempty" db:"first_place_player_id"`
	SecondPlacePlayerID *int `json:"second_place_player_id,omitempty" db:"second_place_player_id"`
	ThirdPlacePlayerID  *int `json:"third_place_player_id,omitempty" db:"third_place_player_id"`
}

// LineupEntry registers a player (and, for doubles, a partner) for one
// category of a tournament. Lineup membership is the source of truth for
// which categories a podium finisher is credited in.
type LineupEntry struct {
	ID           int      `json:"id" db:"id"`
	TournamentID int      `json:"tournament_id" db:"tournament_id"`
	Category     Category `json:"category" db:"category"`
	PlayerID     int      `json:"player_id" db:"player_id"`
	Player2ID    *int     `json:"player_2_id,omitempty" db:"player_2_id"`
}
