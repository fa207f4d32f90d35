package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dstrelkov/seabattle/internal/model"
	"github.com/dstrelkov/seabattle/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users     map[model.UserID]*model.User
	nameIndex map[string]model.UserID
	rooms     map[model.RoomID]*model.Room
	roomOrder []model.RoomID // creation order
	games     map[model.GameID]*model.Game
	wins      map[string]int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:     make(map[model.UserID]*model.User),
		nameIndex: make(map[string]model.UserID),
		rooms:     make(map[model.RoomID]*model.Room),
		games:     make(map[model.GameID]*model.Game),
		wins:      make(map[string]int),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	s.nameIndex[user.Name] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *Storage) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nameIndex[name]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; !ok {
		s.roomOrder = append(s.roomOrder, room.ID)
	}
	s.rooms[room.ID] = room
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	for i, rid := range s.roomOrder {
		if rid == id {
			s.roomOrder = append(s.roomOrder[:i], s.roomOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Storage) AvailableRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := []*model.Room{}
	for _, id := range s.roomOrder {
		room := s.rooms[id]
		if room != nil && !room.IsFull() {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}

func (s *Storage) RoomForUser(ctx context.Context, id model.UserID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rid := range s.roomOrder {
		if room := s.rooms[rid]; room != nil && room.HasUser(id) {
			return room, nil
		}
	}
	return nil, model.ErrRoomNotFound
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	return nil
}

func (s *Storage) GameForUser(ctx context.Context, id model.UserID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, game := range s.games {
		if game.HasPlayer(id) {
			return game, nil
		}
	}
	return nil, model.ErrGameNotFound
}

// Winner operations

func (s *Storage) AddWin(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wins[name]++
	return nil
}

func (s *Storage) Winners(ctx context.Context) ([]*model.Winner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	winners := make([]*model.Winner, 0, len(s.wins))
	for name, wins := range s.wins {
		winners = append(winners, &model.Winner{Name: name, Wins: wins})
	}
	sort.Slice(winners, func(i, j int) bool {
		if winners[i].Wins != winners[j].Wins {
			return winners[i].Wins > winners[j].Wins
		}
		return winners[i].Name < winners[j].Name
	})
	return winners, nil
}
