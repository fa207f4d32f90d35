// Package match manages game records: fleet submission gating, turn
// order and finishing.
package match

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dstrelkov/seabattle/internal/dependencies/clock"
	"github.com/dstrelkov/seabattle/internal/dependencies/ident"
	"github.com/dstrelkov/seabattle/internal/model"
	"github.com/dstrelkov/seabattle/internal/services/engine"
	"github.com/dstrelkov/seabattle/internal/storage"
)

// Controller manages the game state machine
type Controller struct {
	storage storage.Storage
	ident   ident.Generator
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new match Controller
func NewController(
	storage storage.Storage,
	ident ident.Generator,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		ident:   ident,
		clock:   clock,
		logger:  logger,
	}
}

// CreateGame starts a game record for the two players. botID is the
// synthetic player id for single-player games, empty otherwise.
func (c *Controller) CreateGame(ctx context.Context, players []model.UserID, botID model.UserID) (*model.Game, error) {
	now := c.clock.Now()
	game := &model.Game{
		ID:        model.GameID(c.ident.NewID()),
		State:     model.GameStateAwaitingFleets,
		Players:   players,
		Fleets:    make(map[model.UserID]*model.Fleet),
		BotID:     botID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.Int("player_count", len(players)),
		slog.Bool("single_player", botID != ""),
	)

	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// SubmitFleet validates and attaches a player's fleet. It returns the
// updated game and true once both fleets are in and the game moved to
// InProgress. The first submitter takes the first turn.
func (c *Controller) SubmitFleet(ctx context.Context, gameID model.GameID, playerID model.UserID, ships []model.Ship) (*model.Game, bool, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, false, err
	}

	if !game.HasPlayer(playerID) {
		return nil, false, model.ErrNotInGame
	}
	if game.State != model.GameStateAwaitingFleets {
		return nil, false, model.ErrFleetAlreadyPlaced
	}
	if game.FleetOf(playerID) != nil {
		return nil, false, model.ErrFleetAlreadyPlaced
	}

	fleet, err := engine.BuildFleet(playerID, ships)
	if err != nil {
		return nil, false, err
	}

	game.Fleets[playerID] = fleet
	game.FleetOrder = append(game.FleetOrder, playerID)
	game.UpdatedAt = c.clock.Now()

	started := false
	if game.BothFleetsIn() {
		game.State = model.GameStateInProgress
		game.Turn = game.FleetOrder[0]
		started = true

		c.logger.Info("game started",
			slog.String("game_id", string(game.ID)),
			slog.String("first_turn", string(game.Turn)),
		)
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, false, err
	}
	return game, started, nil
}

// AttackOutcome describes the full effect of one resolved attack
type AttackOutcome struct {
	Game     *model.Game
	Result   engine.Result
	Finished bool
	Winner   model.UserID
}

// Attack resolves one shot by the current turn holder. Shots out of
// turn return ErrNotPlayerTurn; repeat shots resolve with zero
// outcomes and pass the turn.
func (c *Controller) Attack(ctx context.Context, gameID model.GameID, attackerID model.UserID, pos model.Position) (*AttackOutcome, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.State != model.GameStateInProgress {
		return nil, model.ErrGameNotInProgress
	}
	if game.Turn != attackerID {
		return nil, model.ErrNotPlayerTurn
	}

	defending := game.DefendingFleet(attackerID)
	result := engine.ResolveAttack(defending, pos)

	outcome := &AttackOutcome{Game: game, Result: result}

	if result.FleetDestroyed {
		game.State = model.GameStateFinished
		game.Winner = attackerID
		game.UpdatedAt = c.clock.Now()
		outcome.Finished = true
		outcome.Winner = attackerID

		if err := c.recordWin(ctx, attackerID); err != nil {
			return nil, err
		}
		if err := c.purgePlayers(ctx, game); err != nil {
			return nil, err
		}

		c.logger.Info("game finished",
			slog.String("game_id", string(game.ID)),
			slog.String("winner", string(attackerID)),
		)
		return outcome, nil
	}

	if result.ExtraTurn {
		game.Turn = attackerID
	} else {
		game.Turn = game.Opponent(attackerID)
	}
	game.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}
	return outcome, nil
}

// RemoveUser handles a disconnect: the user leaves their game, the
// remaining player wins by forfeit. Returns the finished game and the
// winner, or nil when the user was not in an active game.
func (c *Controller) RemoveUser(ctx context.Context, userID model.UserID) (*model.Game, model.UserID, error) {
	game, err := c.storage.GameForUser(ctx, userID)
	if errors.Is(err, model.ErrGameNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	winner := game.Opponent(userID)
	game.State = model.GameStateFinished
	game.Winner = winner

	if winner != "" {
		if err := c.recordWin(ctx, winner); err != nil {
			return nil, "", err
		}
	}
	if err := c.purgePlayers(ctx, game); err != nil {
		return nil, "", err
	}

	c.logger.Info("game forfeited",
		slog.String("game_id", string(game.ID)),
		slog.String("left", string(userID)),
		slog.String("winner", string(winner)),
	)

	return game, winner, nil
}

// recordWin increments the leaderboard entry for the player's name
func (c *Controller) recordWin(ctx context.Context, playerID model.UserID) error {
	user, err := c.storage.GetUser(ctx, playerID)
	if err != nil {
		return err
	}
	return c.storage.AddWin(ctx, user.Name)
}

// purgePlayers removes both players from rooms and deletes the game
func (c *Controller) purgePlayers(ctx context.Context, game *model.Game) error {
	for _, playerID := range game.Players {
		room, err := c.storage.RoomForUser(ctx, playerID)
		if errors.Is(err, model.ErrRoomNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := c.storage.DeleteRoom(ctx, room.ID); err != nil {
			return err
		}
	}
	return c.storage.DeleteGame(ctx, game.ID)
}
