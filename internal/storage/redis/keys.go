package redis

import (
	"fmt"

	"github.com/dstrelkov/seabattle/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "seabattle"

// Key generation functions for each entity type

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// nameIndexKey returns the Redis key for the name -> user_id index
func nameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:name:%s", keyPrefix, name)
}

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomIndexKey returns the Redis key for the ZSET of room ids,
// scored by creation time
func roomIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gameIndexKey returns the Redis key for the SET of live game ids
func gameIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}

// winnersKey returns the Redis key for the win-count ZSET
func winnersKey() string {
	return fmt.Sprintf("%s:winners", keyPrefix)
}
