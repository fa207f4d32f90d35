package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dstrelkov/seabattle/internal/model"
	"github.com/dstrelkov/seabattle/internal/protocol"
	"github.com/dstrelkov/seabattle/internal/services/auth"
	"github.com/dstrelkov/seabattle/internal/services/bot"
	"github.com/dstrelkov/seabattle/internal/services/lobby"
	"github.com/dstrelkov/seabattle/internal/services/match"
	"github.com/dstrelkov/seabattle/internal/storage"
)

const (
	// botMoveDelay spaces out chained bot attacks so clients can animate them
	botMoveDelay = 1500 * time.Millisecond
	// maxBotMoves bounds a single bot chain; a full board is 100 cells
	maxBotMoves = 128

	botName = "Bot"
)

// Orchestrator is the single entry point for client commands. Every
// inbound message funnels through Handle under one lock, so command
// processing is fully serialized and the controllers below never see
// concurrent mutation of the same game.
type Orchestrator struct {
	mu sync.Mutex

	storage storage.Storage
	auth    *auth.Service
	lobby   *lobby.Controller
	match   *match.Controller
	bot     *bot.Service
	logger  *slog.Logger
}

func New(
	store storage.Storage,
	authSvc *auth.Service,
	lobbyCtrl *lobby.Controller,
	matchCtrl *match.Controller,
	botSvc *bot.Service,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		storage: store,
		auth:    authSvc,
		lobby:   lobbyCtrl,
		match:   matchCtrl,
		bot:     botSvc,
		logger:  logger.With(slog.String("component", "orchestrator")),
	}
}

// Handle processes one inbound message for a connection. bound is the
// user currently attached to the connection (empty before reg); the
// returned user id is the binding to use from now on. loggedIn lists
// users attached to other live connections so a second login of the
// same account can be refused.
//
// Requests referencing unknown or stale state resolve to zero
// notifications rather than an error; the only error surfaced is a
// failed bot fleet placement.
func (o *Orchestrator) Handle(
	ctx context.Context,
	msg protocol.Message,
	bound model.UserID,
	loggedIn []model.UserID,
) ([]Notification, model.UserID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch msg.Type {
	case protocol.TypeReg:
		return o.handleReg(ctx, msg.Payload, bound, loggedIn)
	case protocol.TypeCreateRoom:
		notes, err := o.handleCreateRoom(ctx, bound)
		return notes, bound, err
	case protocol.TypeAddUserToRoom:
		notes, err := o.handleJoinRoom(ctx, msg.Payload, bound)
		return notes, bound, err
	case protocol.TypeAddShips:
		notes, err := o.handleAddShips(ctx, msg.Payload)
		return notes, bound, err
	case protocol.TypeAttack:
		notes, err := o.handleAttack(ctx, msg.Payload, false)
		return notes, bound, err
	case protocol.TypeRandomAttack:
		notes, err := o.handleAttack(ctx, msg.Payload, true)
		return notes, bound, err
	case protocol.TypeSinglePlay:
		notes, err := o.handleSinglePlay(ctx, bound)
		return notes, bound, err
	default:
		o.logger.WarnContext(ctx, "dropping message of unknown type",
			slog.String("type", string(msg.Type)))
		return nil, bound, nil
	}
}

// Disconnect tears down a departing user: it empties their rooms and
// forfeits any game in progress to the opponent.
func (o *Orchestrator) Disconnect(ctx context.Context, userID model.UserID) []Notification {
	o.mu.Lock()
	defer o.mu.Unlock()

	if userID == "" {
		return nil
	}

	if err := o.lobby.LeaveRooms(ctx, userID); err != nil {
		o.logger.ErrorContext(ctx, "failed to clear rooms on disconnect",
			slog.String("user_id", string(userID)),
			slog.Any("error", err))
	}

	game, winner, err := o.match.RemoveUser(ctx, userID)
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to forfeit game on disconnect",
			slog.String("user_id", string(userID)),
			slog.Any("error", err))
		return nil
	}
	if game == nil || winner == "" {
		return nil
	}

	notes := []Notification{
		Unicast(protocol.TypeFinish, protocol.FinishResponse{WinPlayer: winner}, winner),
	}
	return o.appendWinners(ctx, notes)
}

func (o *Orchestrator) handleReg(
	ctx context.Context,
	payload []byte,
	bound model.UserID,
	loggedIn []model.UserID,
) ([]Notification, model.UserID, error) {
	var req protocol.RegRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		o.logger.WarnContext(ctx, "dropping malformed reg payload", slog.Any("error", err))
		return nil, bound, nil
	}

	user, err := o.auth.Register(ctx, req.Name, req.Password, loggedIn)
	if err != nil {
		var text string
		switch {
		case errors.Is(err, auth.ErrIncorrectPassword):
			text = "Incorrect password"
		case errors.Is(err, auth.ErrAlreadyLoggedIn):
			text = "You already logged in"
		default:
			o.logger.ErrorContext(ctx, "registration failed",
				slog.String("name", req.Name),
				slog.Any("error", err))
			text = "Registration failed"
		}
		resp := protocol.RegResponse{Name: req.Name, Error: true, ErrorText: text}
		return []Notification{Unicast(protocol.TypeReg, resp, bound)}, bound, nil
	}

	notes := []Notification{
		Unicast(protocol.TypeReg, protocol.RegResponse{Name: user.Name, Index: user.ID}, user.ID),
	}
	notes = o.appendRooms(ctx, notes)
	notes = o.appendWinners(ctx, notes)
	return notes, user.ID, nil
}

func (o *Orchestrator) handleCreateRoom(ctx context.Context, bound model.UserID) ([]Notification, error) {
	if bound == "" {
		return nil, nil
	}
	if _, err := o.lobby.CreateRoom(ctx, bound); err != nil {
		o.logger.WarnContext(ctx, "create_room rejected",
			slog.String("user_id", string(bound)),
			slog.Any("error", err))
		return nil, nil
	}
	return o.appendRooms(ctx, nil), nil
}

func (o *Orchestrator) handleJoinRoom(ctx context.Context, payload []byte, bound model.UserID) ([]Notification, error) {
	if bound == "" {
		return nil, nil
	}
	var req protocol.AddToRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		o.logger.WarnContext(ctx, "dropping malformed add_user_to_room payload", slog.Any("error", err))
		return nil, nil
	}

	_, game, err := o.lobby.JoinRoom(ctx, req.IndexRoom, bound)
	if err != nil {
		o.logger.WarnContext(ctx, "add_user_to_room rejected",
			slog.String("user_id", string(bound)),
			slog.String("room_id", string(req.IndexRoom)),
			slog.Any("error", err))
		return nil, nil
	}

	var notes []Notification
	if game != nil {
		for _, p := range game.Players {
			notes = append(notes, Unicast(protocol.TypeCreateGame, protocol.CreateGameResponse{
				IDGame:   game.ID,
				IDPlayer: p,
			}, p))
		}
	}
	return o.appendRooms(ctx, notes), nil
}

func (o *Orchestrator) handleAddShips(ctx context.Context, payload []byte) ([]Notification, error) {
	var req protocol.AddShipsRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		o.logger.WarnContext(ctx, "dropping malformed add_ships payload", slog.Any("error", err))
		return nil, nil
	}

	game, started, err := o.match.SubmitFleet(ctx, req.GameID, req.IndexPlayer, req.Ships)
	if err != nil {
		o.logger.WarnContext(ctx, "add_ships rejected",
			slog.String("game_id", string(req.GameID)),
			slog.String("player_id", string(req.IndexPlayer)),
			slog.Any("error", err))
		return nil, nil
	}

	var notes []Notification
	if started {
		for _, p := range game.Players {
			notes = append(notes, Unicast(protocol.TypeStartGame, protocol.StartGameResponse{
				Ships:              game.Fleets[p].Specs(),
				CurrentPlayerIndex: p,
			}, p))
		}
		notes = append(notes, Unicast(protocol.TypeTurn, protocol.TurnResponse{
			CurrentPlayer: game.Turn,
		}, game.Players...))
		if game.IsBotTurn() {
			botNotes, err := o.botMoves(ctx, game.ID)
			if err != nil {
				return nil, err
			}
			notes = append(notes, botNotes...)
		}
	}
	return o.appendRooms(ctx, notes), nil
}

func (o *Orchestrator) handleAttack(ctx context.Context, payload []byte, pickRandom bool) ([]Notification, error) {
	var req protocol.AttackRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		o.logger.WarnContext(ctx, "dropping malformed attack payload", slog.Any("error", err))
		return nil, nil
	}

	game, err := o.match.GetGame(ctx, req.GameID)
	if err != nil {
		o.logger.WarnContext(ctx, "attack on unknown game",
			slog.String("game_id", string(req.GameID)))
		return nil, nil
	}
	if game.State != model.GameStateInProgress || game.Turn != req.IndexPlayer {
		return nil, nil
	}

	pos := model.Position{X: req.X, Y: req.Y}
	if pickRandom {
		target, err := o.bot.PickTarget(game.DefendingFleet(req.IndexPlayer))
		if err != nil {
			o.logger.WarnContext(ctx, "no cell left to attack",
				slog.String("game_id", string(req.GameID)))
			return nil, nil
		}
		pos = target
	}

	outcome, err := o.match.Attack(ctx, req.GameID, req.IndexPlayer, pos)
	if err != nil {
		o.logger.WarnContext(ctx, "attack rejected",
			slog.String("game_id", string(req.GameID)),
			slog.String("player_id", string(req.IndexPlayer)),
			slog.Any("error", err))
		return nil, nil
	}

	notes := o.attackNotifications(ctx, outcome, req.IndexPlayer, 0)
	if !outcome.Finished && outcome.Game.IsBotTurn() {
		botNotes, err := o.botMoves(ctx, req.GameID)
		if err != nil {
			return nil, err
		}
		notes = append(notes, botNotes...)
	}
	return notes, nil
}

func (o *Orchestrator) handleSinglePlay(ctx context.Context, bound model.UserID) ([]Notification, error) {
	if bound == "" {
		return nil, nil
	}

	botUser, err := o.auth.CreateBot(ctx, botName)
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to create bot opponent", slog.Any("error", err))
		return nil, nil
	}

	game, err := o.match.CreateGame(ctx, []model.UserID{bound, botUser.ID}, botUser.ID)
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to create single-player game", slog.Any("error", err))
		return nil, nil
	}

	// The bot's fleet goes in at creation, which makes the bot the
	// first fleet submitter and so the opening attacker.
	ships, err := o.bot.PlaceFleet()
	if err != nil {
		return nil, err
	}
	if _, _, err := o.match.SubmitFleet(ctx, game.ID, botUser.ID, ships); err != nil {
		o.logger.ErrorContext(ctx, "failed to submit bot fleet",
			slog.String("game_id", string(game.ID)),
			slog.Any("error", err))
		return nil, nil
	}

	if err := o.lobby.LeaveRooms(ctx, bound); err != nil {
		o.logger.ErrorContext(ctx, "failed to clear rooms for single play",
			slog.String("user_id", string(bound)),
			slog.Any("error", err))
	}

	notes := []Notification{
		Unicast(protocol.TypeCreateGame, protocol.CreateGameResponse{
			IDGame:   game.ID,
			IDPlayer: bound,
		}, bound),
	}
	return o.appendRooms(ctx, notes), nil
}

// botMoves plays the bot's turn to completion: it keeps attacking for
// as long as the bot holds the turn, tagging each move with a growing
// presentation delay so clients can pace the replay.
func (o *Orchestrator) botMoves(ctx context.Context, gameID model.GameID) ([]Notification, error) {
	var notes []Notification
	for moves := 0; moves < maxBotMoves; moves++ {
		game, err := o.match.GetGame(ctx, gameID)
		if err != nil || game.State != model.GameStateInProgress || !game.IsBotTurn() {
			return notes, nil
		}

		pos, err := o.bot.PickTarget(game.DefendingFleet(game.BotID))
		if err != nil {
			o.logger.WarnContext(ctx, "bot has no cell left to attack",
				slog.String("game_id", string(gameID)))
			return notes, nil
		}

		outcome, err := o.match.Attack(ctx, gameID, game.BotID, pos)
		if err != nil {
			o.logger.ErrorContext(ctx, "bot attack failed",
				slog.String("game_id", string(gameID)),
				slog.Any("error", err))
			return notes, nil
		}

		delay := time.Duration(moves+1) * botMoveDelay
		notes = append(notes, o.attackNotifications(ctx, outcome, game.BotID, delay)...)
		if outcome.Finished {
			return notes, nil
		}
	}
	o.logger.ErrorContext(ctx, "bot move chain exceeded bound",
		slog.String("game_id", string(gameID)))
	return notes, nil
}

// attackNotifications converts one resolved shot into the outbound
// messages both players receive. Cell reports and the turn update carry
// the delay hint; finish and the winners broadcast never do.
func (o *Orchestrator) attackNotifications(
	ctx context.Context,
	outcome *match.AttackOutcome,
	attacker model.UserID,
	delay time.Duration,
) []Notification {
	game := outcome.Game

	var notes []Notification
	for _, cell := range outcome.Result.Outcomes {
		notes = append(notes, withDelay(Unicast(protocol.TypeAttack, protocol.AttackResponse{
			Position:      cell.Position,
			CurrentPlayer: attacker,
			Status:        cell.Status,
		}, game.Players...), delay))
	}

	if outcome.Finished {
		notes = append(notes, Unicast(protocol.TypeFinish, protocol.FinishResponse{
			WinPlayer: outcome.Winner,
		}, game.Players...))
		return o.appendWinners(ctx, notes)
	}

	notes = append(notes, withDelay(Unicast(protocol.TypeTurn, protocol.TurnResponse{
		CurrentPlayer: game.Turn,
	}, game.Players...), delay))
	return notes
}

// appendRooms attaches an update_room broadcast listing open rooms
func (o *Orchestrator) appendRooms(ctx context.Context, notes []Notification) []Notification {
	rooms, err := o.lobby.AvailableRooms(ctx)
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to list open rooms", slog.Any("error", err))
		return notes
	}

	summaries := make([]protocol.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summary := protocol.RoomSummary{RoomID: room.ID}
		for _, id := range room.Users {
			user, err := o.storage.GetUser(ctx, id)
			if err != nil {
				o.logger.ErrorContext(ctx, "failed to resolve room member",
					slog.String("user_id", string(id)),
					slog.Any("error", err))
				continue
			}
			summary.RoomUsers = append(summary.RoomUsers, protocol.RoomUser{
				Name:  user.Name,
				Index: user.ID,
			})
		}
		summaries = append(summaries, summary)
	}
	return append(notes, Broadcast(protocol.TypeUpdateRoom, summaries))
}

// appendWinners attaches an update_winners broadcast
func (o *Orchestrator) appendWinners(ctx context.Context, notes []Notification) []Notification {
	winners, err := o.storage.Winners(ctx)
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to list winners", slog.Any("error", err))
		return notes
	}
	if winners == nil {
		winners = []*model.Winner{}
	}
	return append(notes, Broadcast(protocol.TypeUpdateWinners, winners))
}
