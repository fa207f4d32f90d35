package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")

	// Game errors
	ErrGameNotFound       = errors.New("game not found")
	ErrGameNotInProgress  = errors.New("game is not in progress")
	ErrNotPlayerTurn      = errors.New("not this player's turn")
	ErrNotInGame          = errors.New("player is not in this game")
	ErrFleetAlreadyPlaced = errors.New("fleet already submitted")
	ErrInvalidFleet       = errors.New("invalid fleet layout")

	// Bot errors
	ErrPlacementFailed = errors.New("bot fleet placement failed")
)
