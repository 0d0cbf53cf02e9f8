package model

import "errors"

// Common errors used across the application
var (
	// Lookup errors
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player is not in this game")

	// Registration errors
	ErrGameFull          = errors.New("game is full")
	ErrAlreadyInGame     = errors.New("player is already in this game")
	ErrInvalidGameConfig = errors.New("invalid game configuration")

	// Move errors
	ErrInvalidMove = errors.New("paddle is not available to this player")

	// Lifecycle errors
	ErrGameNotInProgress = errors.New("game is not in progress")

	// ErrConsistencyViolation means stored state disagreed with a check the
	// caller made under lock, e.g. a join that would overshoot max players.
	ErrConsistencyViolation = errors.New("consistency violation")
)
