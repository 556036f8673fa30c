package services

import "errors"

// Shared errors used across services and the HTTP mapping layer.
var (
	// Generic not-found (per-entity variants below carry more context).
	ErrNotFound = errors.New("requested resource not found")

	ErrTournamentNotFound = errors.New("tournament not found")
	ErrPlayerNotFound     = errors.New("player not found")

	ErrInvalidCategory = errors.New("invalid category")
)
