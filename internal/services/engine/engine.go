// Package engine resolves shots against a defending fleet and builds
// validated fleets from wire placement descriptors.
package engine

import (
	"fmt"
	"sort"

	"github.com/dstrelkov/seabattle/internal/model"
	"github.com/dstrelkov/seabattle/internal/services/geometry"
)

// Outcome is one reported cell of a resolved shot
type Outcome struct {
	Position model.Position
	Status   model.AttackStatus
}

// Result describes everything a single shot produced
type Result struct {
	// Outcomes in reporting order: ship cells before buffer cells,
	// each group in the ship's stored order
	Outcomes []Outcome
	// ExtraTurn is true when the attacker keeps the turn (fresh hit or kill)
	ExtraTurn bool
	// FleetDestroyed is true once every defending ship is destroyed
	FleetDestroyed bool
}

// BuildFleet validates the wire ships and derives the per-ship state.
// A valid fleet has exactly one size-4, two size-3, three size-2 and
// four size-1 ships, all in bounds, pairwise non-overlapping and
// non-adjacent.
func BuildFleet(playerID model.UserID, ships []model.Ship) (*model.Fleet, error) {
	if len(ships) != model.FleetSize {
		return nil, fmt.Errorf("%w: got %d ships, want %d", model.ErrInvalidFleet, len(ships), model.FleetSize)
	}

	lengths := make([]int, len(ships))
	for i, ship := range ships {
		lengths[i] = ship.Length
	}
	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))
	want := append([]int(nil), model.FleetComposition...)
	sort.Sort(sort.Reverse(sort.IntSlice(want)))
	for i := range want {
		if lengths[i] != want[i] {
			return nil, fmt.Errorf("%w: wrong ship composition", model.ErrInvalidFleet)
		}
	}

	fleet := &model.Fleet{PlayerID: playerID}
	blocked := make(map[model.Position]bool)

	for _, ship := range ships {
		class, ok := model.ClassForLength(ship.Length)
		if !ok {
			return nil, fmt.Errorf("%w: invalid ship length %d", model.ErrInvalidFleet, ship.Length)
		}
		if ship.Type != class {
			return nil, fmt.Errorf("%w: ship class %q does not match length %d", model.ErrInvalidFleet, ship.Type, ship.Length)
		}
		if !geometry.InBounds(ship) {
			return nil, fmt.Errorf("%w: ship at (%d,%d) leaves the board", model.ErrInvalidFleet, ship.Position.X, ship.Position.Y)
		}

		cells, buffer := geometry.Footprint(ship)
		for _, c := range cells {
			if blocked[c] {
				return nil, fmt.Errorf("%w: ships overlap or touch at (%d,%d)", model.ErrInvalidFleet, c.X, c.Y)
			}
		}

		for _, c := range cells {
			blocked[c] = true
		}
		for _, b := range buffer {
			blocked[b] = true
		}

		fleet.Ships = append(fleet.Ships, &model.ShipState{
			Ship:   ship,
			Cells:  cells,
			Buffer: buffer,
		})
	}

	return fleet, nil
}

// ResolveAttack applies one shot to the defending fleet. Repeat shots
// against a cell the fleet already reported are no-ops with zero
// outcomes and no extra turn.
func ResolveAttack(fleet *model.Fleet, pos model.Position) Result {
	ship := fleet.ShipAt(pos)
	if ship == nil {
		if fleet.PlayedAt(pos) {
			// Already revealed as part of a destroyed ship's buffer
			return Result{FleetDestroyed: fleet.AllDestroyed()}
		}
		return Result{
			Outcomes:       []Outcome{{Position: pos, Status: model.AttackMiss}},
			FleetDestroyed: fleet.AllDestroyed(),
		}
	}

	if ship.WasPlayed(pos) {
		return Result{FleetDestroyed: fleet.AllDestroyed()}
	}

	ship.Shots = append(ship.Shots, pos)
	ship.Played = append(ship.Played, pos)

	result := Result{ExtraTurn: true}

	if len(ship.Shots) == len(ship.Cells) {
		ship.Destroyed = true
		for _, c := range ship.Cells {
			result.Outcomes = append(result.Outcomes, Outcome{Position: c, Status: model.AttackKill})
		}
		for _, b := range ship.Buffer {
			if ship.WasPlayed(b) {
				continue
			}
			ship.Played = append(ship.Played, b)
			result.Outcomes = append(result.Outcomes, Outcome{Position: b, Status: model.AttackMiss})
		}
	} else {
		result.Outcomes = append(result.Outcomes, Outcome{Position: pos, Status: model.AttackHit})
	}

	result.FleetDestroyed = fleet.AllDestroyed()
	return result
}
