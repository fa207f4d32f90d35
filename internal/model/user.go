package model

import "time"

// UserID uniquely identifies a user across the system
type UserID string

// User represents a registered participant
type User struct {
	ID           UserID
	Name         string
	PasswordHash string // bcrypt hash; empty for bots
	IsBot        bool
	CreatedAt    time.Time
}
