package storage

import (
	"context"

	"github.com/dstrelkov/seabattle/internal/model"
)

// Storage defines the interface for the canonical game data collections.
// It is the single source of truth for users, rooms, games and winners.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByName(ctx context.Context, name string) (*model.User, error)

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	// AvailableRooms lists rooms with a free seat, oldest first
	AvailableRooms(ctx context.Context) ([]*model.Room, error)
	// RoomForUser returns the room holding the user, or ErrRoomNotFound
	RoomForUser(ctx context.Context, id model.UserID) (*model.Room, error)

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	// GameForUser returns the game the user plays in, or ErrGameNotFound
	GameForUser(ctx context.Context, id model.UserID) (*model.Game, error)

	// Winner operations
	// AddWin increments the win count for the name, creating it at 1
	AddWin(ctx context.Context, name string) error
	// Winners lists the leaderboard, most wins first, ties by name
	Winners(ctx context.Context) ([]*model.Winner, error)
}
