package model

import "time"

// RoomID uniquely identifies a pre-game room
type RoomID string

// RoomCapacity is the number of users a room holds before it is
// promoted to a game
const RoomCapacity = 2

// Room is a pre-game lobby holding up to two users
type Room struct {
	ID        RoomID
	Users     []UserID // ordered by join time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasUser returns true if the user is a member of the room
func (r *Room) HasUser(id UserID) bool {
	for _, u := range r.Users {
		if u == id {
			return true
		}
	}
	return false
}

// IsFull returns true once the room holds enough users to start a game
func (r *Room) IsFull() bool {
	return len(r.Users) >= RoomCapacity
}
