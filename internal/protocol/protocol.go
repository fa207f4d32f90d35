// Package protocol defines the wire envelope and payload contracts
// shared by the client and server.
package protocol

import (
	"encoding/json"
	"errors"

	"github.com/dstrelkov/seabattle/internal/model"
)

// MessageType identifies a request or response kind
type MessageType string

// Request types
const (
	TypeReg           MessageType = "reg"
	TypeCreateRoom    MessageType = "create_room"
	TypeAddUserToRoom MessageType = "add_user_to_room"
	TypeAddShips      MessageType = "add_ships"
	TypeAttack        MessageType = "attack"
	TypeRandomAttack  MessageType = "randomAttack"
	TypeSinglePlay    MessageType = "single_play"
)

// Response types (TypeReg and TypeAttack are reused on the way out)
const (
	TypeUpdateRoom    MessageType = "update_room"
	TypeCreateGame    MessageType = "create_game"
	TypeStartGame     MessageType = "start_game"
	TypeTurn          MessageType = "turn"
	TypeFinish        MessageType = "finish"
	TypeUpdateWinners MessageType = "update_winners"
)

// ErrMalformed marks an envelope or payload that cannot be decoded
var ErrMalformed = errors.New("malformed message")

// Envelope is the outer frame of every message. Data carries the
// payload as a nested JSON-encoded string.
type Envelope struct {
	Type MessageType `json:"type"`
	Data string      `json:"data"`
	ID   int         `json:"id"`
}

// Message is a decoded inbound envelope: the type plus the raw payload
// bytes, ready to unmarshal per type
type Message struct {
	Type    MessageType
	Payload []byte
}

// Decode parses a raw frame into a Message
func Decode(raw []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Message{}, ErrMalformed
	}
	if env.Type == "" {
		return Message{}, ErrMalformed
	}
	return Message{Type: env.Type, Payload: []byte(env.Data)}, nil
}

// Encode wraps a payload into an envelope frame. The payload is
// JSON-encoded into the envelope's Data string.
func Encode(msgType MessageType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Data: string(data), ID: 0})
}

// Request payloads

// RegRequest asks to register or log in
type RegRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AddToRoomRequest asks to join an open room
type AddToRoomRequest struct {
	IndexRoom model.RoomID `json:"indexRoom"`
}

// AddShipsRequest submits a player's fleet for a game
type AddShipsRequest struct {
	GameID      model.GameID `json:"gameId"`
	Ships       []model.Ship `json:"ships"`
	IndexPlayer model.UserID `json:"indexPlayer"`
}

// AttackRequest fires at a cell; randomAttack ignores X and Y
type AttackRequest struct {
	GameID      model.GameID `json:"gameId"`
	X           int          `json:"x"`
	Y           int          `json:"y"`
	IndexPlayer model.UserID `json:"indexPlayer"`
}

// Response payloads

// RegResponse reports registration/login outcome. The stored password
// never leaves the server.
type RegResponse struct {
	Name      string       `json:"name"`
	Index     model.UserID `json:"index"`
	Error     bool         `json:"error"`
	ErrorText string       `json:"errorText"`
}

// RoomUser is one member of a room summary
type RoomUser struct {
	Name  string       `json:"name"`
	Index model.UserID `json:"index"`
}

// RoomSummary is one open room in an update_room broadcast
type RoomSummary struct {
	RoomID    model.RoomID `json:"roomId"`
	RoomUsers []RoomUser   `json:"roomUsers"`
}

// CreateGameResponse tells one player their game and player ids
type CreateGameResponse struct {
	IDGame   model.GameID `json:"idGame"`
	IDPlayer model.UserID `json:"idPlayer"`
}

// StartGameResponse carries a player's own fleet only
type StartGameResponse struct {
	Ships              []model.Ship `json:"ships"`
	CurrentPlayerIndex model.UserID `json:"currentPlayerIndex"`
}

// TurnResponse names the player who moves next
type TurnResponse struct {
	CurrentPlayer model.UserID `json:"currentPlayer"`
}

// AttackResponse reports one resolved cell
type AttackResponse struct {
	Position      model.Position     `json:"position"`
	CurrentPlayer model.UserID       `json:"currentPlayer"`
	Status        model.AttackStatus `json:"status"`
}

// FinishResponse names the winner of a finished game
type FinishResponse struct {
	WinPlayer model.UserID `json:"winPlayer"`
}
