// Package geometry turns ship placement descriptors into board cells.
package geometry

import "github.com/dstrelkov/seabattle/internal/model"

// Cells returns the cells a ship occupies: Length contiguous cells
// starting at its position, growing along y when Direction is set and
// along x otherwise. Cells may extend past the board edge; callers
// validate bounds.
func Cells(ship model.Ship) []model.Position {
	cells := make([]model.Position, ship.Length)
	for i := 0; i < ship.Length; i++ {
		p := ship.Position
		if ship.Direction {
			p.Y += i
		} else {
			p.X += i
		}
		cells[i] = p
	}
	return cells
}

// Footprint returns a ship's occupied cells together with its buffer:
// the ring of cells surrounding the ship (orthogonal neighbours of
// every occupied cell plus the diagonal corners at each end), clipped
// to the board, deduplicated, excluding the occupied cells themselves.
// The buffer order is deterministic for reproducible notification
// sequences.
func Footprint(ship model.Ship) (cells, buffer []model.Position) {
	cells = Cells(ship)

	occupied := make(map[model.Position]bool, len(cells))
	for _, c := range cells {
		occupied[c] = true
	}

	seen := make(map[model.Position]bool)
	for _, c := range cells {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				p := model.Position{X: c.X + dx, Y: c.Y + dy}
				if !p.InBounds() || occupied[p] || seen[p] {
					continue
				}
				seen[p] = true
				buffer = append(buffer, p)
			}
		}
	}
	return cells, buffer
}

// InBounds reports whether every cell of the ship lies on the board
func InBounds(ship model.Ship) bool {
	for _, c := range Cells(ship) {
		if !c.InBounds() {
			return false
		}
	}
	return true
}
