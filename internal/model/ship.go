package model

// BoardSize is the side length of the square battle grid
const BoardSize = 10

// Position is a cell coordinate on the grid, both axes in [0, BoardSize)
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds returns true if the position lies on the board
func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < BoardSize && p.Y >= 0 && p.Y < BoardSize
}

// ShipClass is the wire name for a ship size
type ShipClass string

const (
	ShipSmall  ShipClass = "small"  // length 1
	ShipMedium ShipClass = "medium" // length 2
	ShipLarge  ShipClass = "large"  // length 3
	ShipHuge   ShipClass = "huge"   // length 4
)

// ClassForLength maps a ship length to its wire class name
func ClassForLength(length int) (ShipClass, bool) {
	switch length {
	case 1:
		return ShipSmall, true
	case 2:
		return ShipMedium, true
	case 3:
		return ShipLarge, true
	case 4:
		return ShipHuge, true
	default:
		return "", false
	}
}

// Ship is a placement descriptor in its wire format.
// Direction true means the ship grows along the y axis.
type Ship struct {
	Position  Position  `json:"position"`
	Direction bool      `json:"direction"`
	Length    int       `json:"length"`
	Type      ShipClass `json:"type"`
}

// ShipState tracks one placed ship's geometry and hits for a game.
// It is derived once at fleet submission and mutated only by the
// attack resolution engine.
type ShipState struct {
	Ship Ship

	// Cells are the occupied cells in growth order
	Cells []Position
	// Buffer is the surrounding ring no other ship may occupy,
	// in deterministic generation order
	Buffer []Position
	// Shots are the occupied cells hit so far, in insertion order
	Shots []Position
	// Played are the cells (occupied or buffer) already reported
	// to the players
	Played []Position
	// Destroyed is true once Shots covers Cells
	Destroyed bool
}

// Occupies returns true if the cell is covered by this ship
func (s *ShipState) Occupies(p Position) bool {
	return containsPosition(s.Cells, p)
}

// WasPlayed returns true if the cell has already been reported for this ship
func (s *ShipState) WasPlayed(p Position) bool {
	return containsPosition(s.Played, p)
}

func containsPosition(cells []Position, p Position) bool {
	for _, c := range cells {
		if c == p {
			return true
		}
	}
	return false
}

// FleetSize is the number of ships in a complete fleet
const FleetSize = 10

// FleetComposition lists the ship lengths a valid fleet must contain:
// one size-4, two size-3, three size-2 and four size-1 ships.
var FleetComposition = []int{4, 3, 3, 2, 2, 2, 1, 1, 1, 1}

// Fleet is a player's ten ships with per-ship hit tracking for one game
type Fleet struct {
	PlayerID UserID
	Ships    []*ShipState
}

// ShipAt returns the ship occupying the cell, or nil
func (f *Fleet) ShipAt(p Position) *ShipState {
	for _, s := range f.Ships {
		if s.Occupies(p) {
			return s
		}
	}
	return nil
}

// PlayedAt returns true if any ship has already reported the cell
func (f *Fleet) PlayedAt(p Position) bool {
	for _, s := range f.Ships {
		if s.WasPlayed(p) {
			return true
		}
	}
	return false
}

// AllDestroyed returns true once every ship in the fleet is destroyed
func (f *Fleet) AllDestroyed() bool {
	for _, s := range f.Ships {
		if !s.Destroyed {
			return false
		}
	}
	return true
}

// Specs returns the wire placement descriptors of the fleet's ships
func (f *Fleet) Specs() []Ship {
	ships := make([]Ship, len(f.Ships))
	for i, s := range f.Ships {
		ships[i] = s.Ship
	}
	return ships
}
