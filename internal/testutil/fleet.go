package testutil

import "github.com/dstrelkov/seabattle/internal/model"

// ValidFleet returns a deterministic, legal 10-ship layout: each ship
// row is separated by an empty row, ships within a row by an empty
// column.
func ValidFleet() []model.Ship {
	h := func(x, y, length int) model.Ship {
		class, _ := model.ClassForLength(length)
		return model.Ship{
			Position: model.Position{X: x, Y: y},
			Length:   length,
			Type:     class,
		}
	}

	return []model.Ship{
		h(0, 0, 4),
		h(0, 2, 3), h(4, 2, 3),
		h(0, 4, 2), h(3, 4, 2), h(6, 4, 2),
		h(0, 6, 1), h(2, 6, 1), h(4, 6, 1), h(6, 6, 1),
	}
}
