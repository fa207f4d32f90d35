// Package lobby manages pre-game rooms and their promotion to games.
package lobby

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dstrelkov/seabattle/internal/dependencies/clock"
	"github.com/dstrelkov/seabattle/internal/dependencies/ident"
	"github.com/dstrelkov/seabattle/internal/model"
	"github.com/dstrelkov/seabattle/internal/services/match"
	"github.com/dstrelkov/seabattle/internal/storage"
)

// Controller manages room membership. A user belongs to at most one
// room at any time.
type Controller struct {
	storage storage.Storage
	match   *match.Controller
	ident   ident.Generator
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new lobby Controller
func NewController(
	storage storage.Storage,
	matchController *match.Controller,
	ident ident.Generator,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		match:   matchController,
		ident:   ident,
		clock:   clock,
		logger:  logger,
	}
}

// CreateRoom opens a room owned by the user. Creating while already in
// a room is a no-op that returns the existing room.
func (c *Controller) CreateRoom(ctx context.Context, userID model.UserID) (*model.Room, error) {
	existing, err := c.storage.RoomForUser(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, model.ErrRoomNotFound) {
		return nil, err
	}

	now := c.clock.Now()
	room := &model.Room{
		ID:        model.RoomID(c.ident.NewID()),
		Users:     []model.UserID{userID},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("room created",
		slog.String("room_id", string(room.ID)),
		slog.String("user_id", string(userID)),
	)

	return room, nil
}

// JoinRoom adds the user to a room, moving them out of any room they
// currently occupy. When the room fills it is promoted: removed from
// availability and a game is created for its two users. The returned
// game is nil unless promotion happened.
func (c *Controller) JoinRoom(ctx context.Context, roomID model.RoomID, userID model.UserID) (*model.Room, *model.Game, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}

	if room.HasUser(userID) {
		return room, nil, nil
	}
	if room.IsFull() {
		return nil, nil, model.ErrRoomFull
	}

	// At most one room membership
	if err := c.LeaveRooms(ctx, userID); err != nil {
		return nil, nil, err
	}

	room.Users = append(room.Users, userID)
	room.UpdatedAt = c.clock.Now()

	if !room.IsFull() {
		if err := c.storage.SaveRoom(ctx, room); err != nil {
			return nil, nil, err
		}
		return room, nil, nil
	}

	// Promotion: the room leaves the pool and becomes a game
	if err := c.storage.DeleteRoom(ctx, room.ID); err != nil {
		return nil, nil, err
	}

	game, err := c.match.CreateGame(ctx, room.Users, "")
	if err != nil {
		return nil, nil, err
	}

	c.logger.Info("room promoted",
		slog.String("room_id", string(room.ID)),
		slog.String("game_id", string(game.ID)),
	)

	return room, game, nil
}

// LeaveRooms removes the user from whatever room they occupy, deleting
// the room if it empties
func (c *Controller) LeaveRooms(ctx context.Context, userID model.UserID) error {
	room, err := c.storage.RoomForUser(ctx, userID)
	if errors.Is(err, model.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	for i, u := range room.Users {
		if u == userID {
			room.Users = append(room.Users[:i], room.Users[i+1:]...)
			break
		}
	}

	if len(room.Users) == 0 {
		return c.storage.DeleteRoom(ctx, room.ID)
	}

	room.UpdatedAt = c.clock.Now()
	return c.storage.SaveRoom(ctx, room)
}

// AvailableRooms lists rooms with a free seat, oldest first
func (c *Controller) AvailableRooms(ctx context.Context) ([]*model.Room, error) {
	return c.storage.AvailableRooms(ctx)
}
