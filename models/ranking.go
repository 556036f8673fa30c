package models

import "time"

// PlayerRanking is the global cumulative standing for one (player, category).
// Totals are always recomputed from tournament_player_points, never mutated
// independently.
type PlayerRanking struct {
	ID                int        `json:"id" db:"id"`
	PlayerID          int        `json:"player_id" db:"player_id"`
	Category          Category   `json:"category" db:"category"`
	TotalPoints       int        `json:"total_points" db:"total_points"`
	TournamentPoints  int        `json:"tournament_points" db:"tournament_points"`
	MatchPoints       int        `json:"match_points" db:"match_points"`
	SetPoints         int        `json:"set_points" db:"set_points"`
	TournamentsPlayed int        `json:"tournaments_played" db:"tournaments_played"`
	MatchesWon        int        `json:"matches_won" db:"matches_won"`
	MatchesLost       int        `json:"matches_lost" db:"matches_lost"`
	SetsWon           int        `json:"sets_won" db:"sets_won"`
	SetsLost          int        `json:"sets_lost" db:"sets_lost"`
	CurrentRank       *int       `json:"current_rank,omitempty" db:"current_rank"`
	PreviousRank      *int       `json:"previous_rank,omitempty" db:"previous_rank"`
	PeakRank          *int       `json:"peak_rank,omitempty" db:"peak_rank"`
	PeakRankDate      *time.Time `json:"peak_rank_date,omitempty" db:"peak_rank_date"`
	LastUpdated       time.Time  `json:"last_updated" db:"last_updated"`
}

// RankChange classifies the movement between previous and current rank,
// for presentation consumers.
func (r *PlayerRanking) RankChange() string {
	switch {
	case r.CurrentRank == nil:
		return "unranked"
	case r.PreviousRank == nil:
		return "new"
	case *r.CurrentRank < *r.PreviousRank:
		return "up"
	case *r.CurrentRank > *r.PreviousRank:
		return "down"
	default:
		return "same"
	}
}

// RankingTotals is the aggregate the Global Ranking Aggregator re-sums from
// all of a player/category's tournament_player_points rows.
type RankingTotals struct {
	TotalPoints       int `json:"total_points" db:"total_points"`
	TournamentPoints  int `json:"tournament_points" db:"tournament_points"`
	MatchPoints       int `json:"match_points" db:"match_points"`
	SetPoints         int `json:"set_points" db:"set_points"`
	TournamentsPlayed int `json:"tournaments_played" db:"tournaments_played"`
	MatchesWon        int `json:"matches_won" db:"matches_won"`
	MatchesLost       int `json:"matches_lost" db:"matches_lost"`
	SetsWon           int `json:"sets_won" db:"sets_won"`
	SetsLost          int `json:"sets_lost" db:"sets_lost"`
}

// RankingSnapshot is one point of a player's rank trajectory. At most one
// snapshot exists per (player, category, day); same-day reruns overwrite.
type RankingSnapshot struct {
	ID          int       `json:"id" db:"id"`
	PlayerID    int       `json:"player_id" db:"player_id"`
	Category    Category  `json:"category" db:"category"`
	Rank        int       `json:"rank" db:"rank"`
	TotalPoints int       `json:"total_points" db:"total_points"`
	RecordedAt  time.Time `json:"recorded_at" db:"recorded_at"`
}
