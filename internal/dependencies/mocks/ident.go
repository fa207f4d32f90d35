package mocks

import (
	"fmt"

	"github.com/dstrelkov/seabattle/internal/dependencies/ident"
)

// MockIdent is a mock implementation of ident.Generator for testing.
// It returns queued ids first, then falls back to a deterministic sequence.
type MockIdent struct {
	// IDResults is a queue of ids to return from NewID
	IDResults []string
	index     int
	serial    int
}

// Ensure MockIdent implements Generator
var _ ident.Generator = (*MockIdent)(nil)

// NewMockIdent creates a new MockIdent
func NewMockIdent() *MockIdent {
	return &MockIdent{}
}

// NewID returns the next queued id, or "id-N" once the queue is drained
func (g *MockIdent) NewID() string {
	if g.index < len(g.IDResults) {
		result := g.IDResults[g.index]
		g.index++
		return result
	}
	g.serial++
	return fmt.Sprintf("id-%d", g.serial)
}

// QueueID adds values to the id result queue
func (g *MockIdent) QueueID(values ...string) {
	g.IDResults = append(g.IDResults, values...)
}
