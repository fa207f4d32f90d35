package ident

import "github.com/google/uuid"

// Generator produces unique identifiers for users, rooms and games.
// Identifiers are never reused within a process lifetime.
type Generator interface {
	NewID() string
}

// UUIDGenerator implements Generator with random UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a fresh random UUID string
func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}
