package models

// AchievementType mirrors the ENUM in the DB.
type AchievementType string

const (
	AchievementPlacement AchievementType = "placement"
	AchievementMatchWin  AchievementType = "match_win"
	AchievementSetWin    AchievementType = "set_win"
)

// Placement achievement keys.
const (
	PlacementFirst  = "1st_place"
	PlacementSecond = "2nd_place"
	PlacementThird  = "3rd_place"
)

// PointConfig is one row of the externally administered point table.
// A NULL category marks the default value; a category-specific row
// overrides it. The engine only reads active rows.
type PointConfig struct {
	ID              int             `json:"id" db:"id"`
	AchievementType AchievementType `json:"achievement_type" db:"achievement_type"`
	AchievementKey  string          `json:"achievement_key" db:"achievement_key"`
	Category        *Category       `json:"category,omitempty" db:"category"`
	Points          int             `json:"points" db:"points"`
	Active          bool            `json:"active" db:"active"`
}
