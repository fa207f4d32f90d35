package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/dstrelkov/seabattle/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour
	cfg.GameTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// User tests

func (s *StorageSuite) TestSaveAndGetUser() {
	user := &model.User{
		ID:           "user-1",
		Name:         "alice",
		PasswordHash: "hashed",
		CreatedAt:    time.Now().UTC(),
	}

	err := s.storage.SaveUser(s.ctx, user)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(user.Name, retrieved.Name)
	s.Equal(user.PasswordHash, retrieved.PasswordHash)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestGetUserByName() {
	_ = s.storage.SaveUser(s.ctx, &model.User{ID: "user-1", Name: "alice"})

	retrieved, err := s.storage.GetUserByName(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), retrieved.ID)

	_, err = s.storage.GetUserByName(s.ctx, "bob")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := &model.Room{
		ID:        "room-1",
		Users:     []model.UserID{"user-1"},
		CreatedAt: time.Now().UTC(),
	}

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Equal(room.Users, retrieved.Users)
}

func (s *StorageSuite) TestDeleteRoom() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "room-1"})

	err := s.storage.DeleteRoom(s.ctx, "room-1")
	s.Require().NoError(err)

	_, err = s.storage.GetRoom(s.ctx, "room-1")
	s.ErrorIs(err, model.ErrRoomNotFound)

	rooms, err := s.storage.AvailableRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *StorageSuite) TestAvailableRoomsOrderAndFiltering() {
	base := time.Now().UTC()
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "room-1", CreatedAt: base})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{
		ID:        "room-2",
		Users:     []model.UserID{"a", "b"},
		CreatedAt: base.Add(time.Second),
	})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "room-3", CreatedAt: base.Add(2 * time.Second)})

	rooms, err := s.storage.AvailableRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 2)
	s.Equal(model.RoomID("room-1"), rooms[0].ID)
	s.Equal(model.RoomID("room-3"), rooms[1].ID)
}

func (s *StorageSuite) TestRoomForUser() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{
		ID:        "room-1",
		Users:     []model.UserID{"user-1"},
		CreatedAt: time.Now().UTC(),
	})

	room, err := s.storage.RoomForUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(model.RoomID("room-1"), room.ID)

	_, err = s.storage.RoomForUser(s.ctx, "user-2")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestExpiredRoomDroppedFromIndex() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "room-1", CreatedAt: time.Now().UTC()})

	s.mini.FastForward(2 * time.Hour)

	rooms, err := s.storage.AvailableRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGameRoundTripsFleets() {
	game := &model.Game{
		ID:      "game-1",
		State:   model.GameStateInProgress,
		Players: []model.UserID{"user-1", "user-2"},
		Turn:    "user-1",
		Fleets: map[model.UserID]*model.Fleet{
			"user-1": {
				PlayerID: "user-1",
				Ships: []*model.ShipState{
					{
						Ship: model.Ship{
							Position: model.Position{X: 0, Y: 0},
							Length:   1,
							Type:     model.ShipSmall,
						},
						Cells:  []model.Position{{X: 0, Y: 0}},
						Buffer: []model.Position{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}},
					},
				},
			},
		},
	}

	err := s.storage.SaveGame(s.ctx, game)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.GameStateInProgress, retrieved.State)
	s.Require().NotNil(retrieved.Fleets["user-1"])
	s.Require().Len(retrieved.Fleets["user-1"].Ships, 1)
	s.Equal([]model.Position{{X: 0, Y: 0}}, retrieved.Fleets["user-1"].Ships[0].Cells)
}

func (s *StorageSuite) TestGameForUser() {
	_ = s.storage.SaveGame(s.ctx, &model.Game{
		ID:      "game-1",
		Players: []model.UserID{"user-1", "user-2"},
	})

	game, err := s.storage.GameForUser(s.ctx, "user-2")
	s.Require().NoError(err)
	s.Equal(model.GameID("game-1"), game.ID)

	_, err = s.storage.GameForUser(s.ctx, "user-3")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestDeleteGame() {
	_ = s.storage.SaveGame(s.ctx, &model.Game{
		ID:      "game-1",
		Players: []model.UserID{"user-1", "user-2"},
	})

	err := s.storage.DeleteGame(s.ctx, "game-1")
	s.Require().NoError(err)

	_, err = s.storage.GetGame(s.ctx, "game-1")
	s.ErrorIs(err, model.ErrGameNotFound)

	_, err = s.storage.GameForUser(s.ctx, "user-1")
	s.ErrorIs(err, model.ErrGameNotFound)
}

// Winner tests

func (s *StorageSuite) TestAddWinAndLeaderboardOrder() {
	s.Require().NoError(s.storage.AddWin(s.ctx, "alice"))
	s.Require().NoError(s.storage.AddWin(s.ctx, "alice"))
	s.Require().NoError(s.storage.AddWin(s.ctx, "carol"))
	s.Require().NoError(s.storage.AddWin(s.ctx, "bob"))

	winners, err := s.storage.Winners(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(winners, 3)
	s.Equal(&model.Winner{Name: "alice", Wins: 2}, winners[0])
	s.Equal(&model.Winner{Name: "bob", Wins: 1}, winners[1])
	s.Equal(&model.Winner{Name: "carol", Wins: 1}, winners[2])
}
