package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dstrelkov/seabattle/internal/model"
	"github.com/dstrelkov/seabattle/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Pipeline for atomic save + name index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	pipe.Set(ctx, nameIndexKey(user.Name), string(user.ID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	idStr, err := s.client.Get(ctx, nameIndexKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.UserID(idStr))
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, roomKey(room.ID), data, s.cfg.RoomTTL)
	pipe.ZAddNX(ctx, roomIndexKey(), redis.Z{
		Score:  float64(room.CreatedAt.UnixNano()),
		Member: string(room.ID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, roomKey(id))
	pipe.ZRem(ctx, roomIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

// listRooms loads every indexed room, oldest first, dropping index
// entries whose room key has expired
func (s *Storage) listRooms(ctx context.Context) ([]*model.Room, error) {
	ids, err := s.client.ZRange(ctx, roomIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	rooms := []*model.Room{}
	for _, id := range ids {
		room, err := s.GetRoom(ctx, model.RoomID(id))
		if errors.Is(err, model.ErrRoomNotFound) {
			_ = s.client.ZRem(ctx, roomIndexKey(), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (s *Storage) AvailableRooms(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.listRooms(ctx)
	if err != nil {
		return nil, err
	}

	available := []*model.Room{}
	for _, room := range rooms {
		if !room.IsFull() {
			available = append(available, room)
		}
	}
	return available, nil
}

func (s *Storage) RoomForUser(ctx context.Context, id model.UserID) (*model.Room, error) {
	rooms, err := s.listRooms(ctx)
	if err != nil {
		return nil, err
	}

	for _, room := range rooms {
		if room.HasUser(id) {
			return room, nil
		}
	}
	return nil, model.ErrRoomNotFound
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, gameKey(game.ID), data, s.cfg.GameTTL)
	pipe.SAdd(ctx, gameIndexKey(), string(game.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, gameKey(id))
	pipe.SRem(ctx, gameIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GameForUser(ctx context.Context, id model.UserID) (*model.Game, error) {
	ids, err := s.client.SMembers(ctx, gameIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	for _, gid := range ids {
		game, err := s.GetGame(ctx, model.GameID(gid))
		if errors.Is(err, model.ErrGameNotFound) {
			_ = s.client.SRem(ctx, gameIndexKey(), gid)
			continue
		}
		if err != nil {
			return nil, err
		}
		if game.HasPlayer(id) {
			return game, nil
		}
	}
	return nil, model.ErrGameNotFound
}

// Winner operations

func (s *Storage) AddWin(ctx context.Context, name string) error {
	return s.client.ZIncrBy(ctx, winnersKey(), 1, name).Err()
}

func (s *Storage) Winners(ctx context.Context) ([]*model.Winner, error) {
	entries, err := s.client.ZRangeWithScores(ctx, winnersKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	winners := make([]*model.Winner, 0, len(entries))
	for _, e := range entries {
		name, _ := e.Member.(string)
		winners = append(winners, &model.Winner{Name: name, Wins: int(e.Score)})
	}
	sort.Slice(winners, func(i, j int) bool {
		if winners[i].Wins != winners[j].Wins {
			return winners[i].Wins > winners[j].Wins
		}
		return winners[i].Name < winners[j].Name
	})
	return winners, nil
}
