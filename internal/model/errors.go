package model

import "errors"

// Common errors used across the application
var (
	// Move errors. Every rejected placement wraps ErrInvalidMove.
	ErrInvalidMove   = errors.New("invalid move")
	ErrGameOver      = errors.New("game is already over")
	ErrNotPlayerTurn = errors.New("not this player's turn")
	ErrNoStonesLeft  = errors.New("player has no stones left")
	ErrOutOfBounds   = errors.New("placement is outside the play area")
	ErrOverlap       = errors.New("placement overlaps an existing stone")
	ErrUnknownPlayer = errors.New("unknown player")

	// Stone construction errors
	ErrInvalidRadius = errors.New("stone radius must be positive")

	// Room errors
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrNotInRoom     = errors.New("connection is not in a room")
	ErrAlreadyInRoom = errors.New("connection is already in a room")
	ErrRoomNotActive = errors.New("room has no game in progress")
	ErrInvalidSeat   = errors.New("seat token does not match")
	ErrSeatOccupied  = errors.New("seat is still connected")

	// Snapshot errors
	ErrInvalidSnapshot = errors.New("snapshot violates game invariants")

	// Configuration errors
	ErrInvalidRuleset = errors.New("invalid ruleset")
)
