package factory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dstrelkov/seabattle/internal/model"
	"github.com/dstrelkov/seabattle/internal/orchestrator"
	"github.com/dstrelkov/seabattle/internal/protocol"
	"github.com/dstrelkov/seabattle/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) send(msgType protocol.MessageType, payload any, bound model.UserID) []orchestrator.Notification {
	raw, err := json.Marshal(payload)
	s.Require().NoError(err)

	notes, _, err := s.app.Orchestrator.Handle(s.ctx, protocol.Message{Type: msgType, Payload: raw}, bound, nil)
	s.Require().NoError(err)
	return notes
}

func (s *IntegrationSuite) register(name string) model.UserID {
	notes := s.send(protocol.TypeReg, protocol.RegRequest{Name: name, Password: "pw"}, "")
	for _, n := range notes {
		if n.Type == protocol.TypeReg {
			resp := n.Payload.(protocol.RegResponse)
			s.Require().False(resp.Error)
			return resp.Index
		}
	}
	s.Require().Fail("no reg response")
	return ""
}

// Test: complete two-player game from registration to the winners board
func (s *IntegrationSuite) TestCompleteGameFlow() {
	s.app.MockIdent.QueueID("alice-id", "bob-id", "room-1", "game-1")

	alice := s.register("alice")
	bob := s.register("bob")
	s.Equal(model.UserID("alice-id"), alice)
	s.Equal(model.UserID("bob-id"), bob)

	// Alice opens a room and bob fills it
	s.send(protocol.TypeCreateRoom, struct{}{}, alice)
	notes := s.send(protocol.TypeAddUserToRoom, protocol.AddToRoomRequest{IndexRoom: "room-1"}, bob)

	var gameID model.GameID
	for _, n := range notes {
		if n.Type == protocol.TypeCreateGame {
			gameID = n.Payload.(protocol.CreateGameResponse).IDGame
			break
		}
	}
	s.Require().Equal(model.GameID("game-1"), gameID)

	// Both fleets in; bob submits first and so shoots first
	s.send(protocol.TypeAddShips, protocol.AddShipsRequest{
		GameID: gameID, Ships: testutil.ValidFleet(), IndexPlayer: bob,
	}, bob)
	notes = s.send(protocol.TypeAddShips, protocol.AddShipsRequest{
		GameID: gameID, Ships: testutil.ValidFleet(), IndexPlayer: alice,
	}, alice)

	started := false
	for _, n := range notes {
		if n.Type == protocol.TypeTurn {
			started = true
			s.Equal(bob, n.Payload.(protocol.TurnResponse).CurrentPlayer)
		}
	}
	s.Require().True(started)

	// Bob sinks alice's fleet without ever yielding the turn
	var finish *protocol.FinishResponse
	for _, ship := range testutil.ValidFleet() {
		for i := 0; i < ship.Length; i++ {
			notes = s.send(protocol.TypeAttack, protocol.AttackRequest{
				GameID: gameID, X: ship.Position.X + i, Y: ship.Position.Y, IndexPlayer: bob,
			}, bob)
		}
	}
	for _, n := range notes {
		if n.Type == protocol.TypeFinish {
			resp := n.Payload.(protocol.FinishResponse)
			finish = &resp
		}
	}
	s.Require().NotNil(finish)
	s.Equal(bob, finish.WinPlayer)

	// The game record is purged and the win recorded
	_, err := s.app.Storage.GetGame(s.ctx, gameID)
	s.ErrorIs(err, model.ErrGameNotFound)

	winners, err := s.app.Storage.Winners(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(winners, 1)
	s.Equal("bob", winners[0].Name)
	s.Equal(1, winners[0].Wins)
}

// Test: single-player game where the player loses by bot sweep
func (s *IntegrationSuite) TestSinglePlayerFlow() {
	alice := s.register("alice")

	// Deterministic bot placement reproducing the fixture layout
	s.app.MockRandom.QueueIntn(
		0, 0, 0,
		0, 0, 2, 0, 4, 2,
		0, 0, 4, 0, 3, 4, 0, 6, 4,
		0, 0, 6, 0, 2, 6, 0, 4, 6, 0, 6, 6,
	)

	notes := s.send(protocol.TypeSinglePlay, struct{}{}, alice)

	var gameID model.GameID
	for _, n := range notes {
		if n.Type == protocol.TypeCreateGame {
			gameID = n.Payload.(protocol.CreateGameResponse).IDGame
		}
	}
	s.Require().NotEmpty(gameID)

	game, err := s.app.Storage.GetGame(s.ctx, gameID)
	s.Require().NoError(err)
	s.Equal(model.GameStateAwaitingFleets, game.State)
	s.NotEmpty(game.BotID)

	// The player's fleet starts the game and the bot opens
	notes = s.send(protocol.TypeAddShips, protocol.AddShipsRequest{
		GameID: gameID, Ships: testutil.ValidFleet(), IndexPlayer: alice,
	}, alice)

	sawBotAttack := false
	for _, n := range notes {
		if n.Type == protocol.TypeAttack {
			resp := n.Payload.(protocol.AttackResponse)
			s.Equal(game.BotID, resp.CurrentPlayer)
			sawBotAttack = true
		}
	}
	s.True(sawBotAttack)

	game, err = s.app.Storage.GetGame(s.ctx, gameID)
	s.Require().NoError(err)
	s.Equal(model.GameStateInProgress, game.State)
	s.Equal(alice, game.Turn)
}
