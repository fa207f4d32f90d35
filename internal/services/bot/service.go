// Package bot provides the autonomous opponent: random legal fleet
// placement and random legal target selection.
package bot

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dstrelkov/seabattle/internal/dependencies/random"
	"github.com/dstrelkov/seabattle/internal/model"
	"github.com/dstrelkov/seabattle/internal/services/geometry"
)

// MaxPlacementAttempts caps the placement retries per ship. Exceeding
// it aborts with ErrPlacementFailed instead of looping unboundedly.
const MaxPlacementAttempts = 1000

// ErrNoTarget is returned when no unplayed cell remains
var ErrNoTarget = errors.New("no unplayed cells remain")

// Service drives the bot opponent
type Service struct {
	random random.Random
	logger *slog.Logger
}

// NewService creates a new bot Service
func NewService(random random.Random, logger *slog.Logger) *Service {
	return &Service{
		random: random,
		logger: logger.With(slog.String("component", "bot")),
	}
}

// PlaceFleet generates a random legal 10-ship layout. Each ship is
// placed independently: sample an origin and orientation, accept iff
// the ship stays in bounds and its cells avoid every previously
// accepted ship's occupied and buffer cells; on rejection flip the
// orientation and resample the origin.
func (s *Service) PlaceFleet() ([]model.Ship, error) {
	ships := make([]model.Ship, 0, model.FleetSize)
	blocked := make(map[model.Position]bool)

	for _, length := range model.FleetComposition {
		class, _ := model.ClassForLength(length)
		direction := s.random.Intn(2) == 1

		placed := false
		for attempt := 0; attempt < MaxPlacementAttempts; attempt++ {
			ship := model.Ship{
				Position: model.Position{
					X: s.random.Intn(model.BoardSize),
					Y: s.random.Intn(model.BoardSize),
				},
				Direction: direction,
				Length:    length,
				Type:      class,
			}

			if s.fits(ship, blocked) {
				cells, buffer := geometry.Footprint(ship)
				for _, c := range cells {
					blocked[c] = true
				}
				for _, b := range buffer {
					blocked[b] = true
				}
				ships = append(ships, ship)
				placed = true
				break
			}

			direction = !direction
		}

		if !placed {
			s.logger.Error("fleet placement exhausted retries",
				slog.Int("ship_length", length),
				slog.Int("placed", len(ships)),
			)
			return nil, fmt.Errorf("%w: ship of length %d", model.ErrPlacementFailed, length)
		}
	}

	return ships, nil
}

func (s *Service) fits(ship model.Ship, blocked map[model.Position]bool) bool {
	if !geometry.InBounds(ship) {
		return false
	}
	for _, c := range geometry.Cells(ship) {
		if blocked[c] {
			return false
		}
	}
	return true
}

// PickTarget chooses uniformly at random among the cells the defending
// fleet has not yet reported. Used for bot auto-attacks and the human
// randomAttack command.
func (s *Service) PickTarget(defending *model.Fleet) (model.Position, error) {
	var unplayed []model.Position
	for y := 0; y < model.BoardSize; y++ {
		for x := 0; x < model.BoardSize; x++ {
			p := model.Position{X: x, Y: y}
			if !defending.PlayedAt(p) {
				unplayed = append(unplayed, p)
			}
		}
	}

	if len(unplayed) == 0 {
		return model.Position{}, ErrNoTarget
	}
	return unplayed[s.random.Intn(len(unplayed))], nil
}
