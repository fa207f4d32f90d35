// Package ws exposes the game over a websocket endpoint. Connections
// carry the double-encoded envelope protocol; all game logic lives
// behind the orchestrator.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dstrelkov/seabattle/internal/model"
	"github.com/dstrelkov/seabattle/internal/orchestrator"
	"github.com/dstrelkov/seabattle/internal/protocol"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client is one live websocket connection and the user bound to it
type client struct {
	conn *websocket.Conn

	// writeMu serializes writes; gorilla allows one concurrent writer
	writeMu sync.Mutex
	userID  model.UserID
}

func (c *client) send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks live connections and moves messages between them and the
// orchestrator
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}

	orchestrator *orchestrator.Orchestrator
	logger       *slog.Logger
}

// NewHub creates a Hub around the orchestrator
func NewHub(orch *orchestrator.Orchestrator, logger *slog.Logger) *Hub {
	return &Hub{
		clients:      make(map[*client]struct{}),
		orchestrator: orch,
		logger:       logger.With(slog.String("component", "ws")),
	}
}

// HandleWS upgrades the request and runs the connection's read loop
// until the peer goes away
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("client connected", slog.String("remote", conn.RemoteAddr().String()))
	h.readLoop(r.Context(), c)
}

func (h *Hub) readLoop(ctx context.Context, c *client) {
	defer h.disconnect(c)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Info("connection closed", slog.Any("error", err))
			}
			return
		}

		msg, err := protocol.Decode(raw)
		if err != nil {
			h.logger.Warn("dropping undecodable message", slog.Any("error", err))
			continue
		}

		bound := h.boundUser(c)
		notes, newBound, err := h.orchestrator.Handle(ctx, msg, bound, h.loggedInExcept(c))
		if err != nil {
			h.logger.Error("command failed",
				slog.String("type", string(msg.Type)),
				slog.Any("error", err))
			continue
		}
		if newBound != bound {
			h.mu.Lock()
			c.userID = newBound
			h.mu.Unlock()
		}

		h.dispatch(notes, c)
	}
}

// disconnect removes the client and forfeits whatever they were in.
// The request context is gone by now, so teardown runs on its own.
func (h *Hub) disconnect(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	userID := c.userID
	h.mu.Unlock()
	_ = c.conn.Close()

	notes := h.orchestrator.Disconnect(context.Background(), userID)
	h.dispatch(notes, nil)

	h.logger.Info("client disconnected", slog.String("user_id", string(userID)))
}

// dispatch encodes and delivers notifications. origin receives the
// ones addressed to an empty user id.
func (h *Hub) dispatch(notes []orchestrator.Notification, origin *client) {
	for _, note := range notes {
		data, err := protocol.Encode(note.Type, note.Payload)
		if err != nil {
			h.logger.Error("failed to encode notification",
				slog.String("type", string(note.Type)),
				slog.Any("error", err))
			continue
		}

		targets := h.resolve(note, origin)
		if note.Delay <= 0 {
			h.deliver(note.Type, data, targets)
			continue
		}
		msgType := note.Type
		time.AfterFunc(note.Delay, func() {
			h.deliver(msgType, data, targets)
		})
	}
}

// resolve snapshots the clients a notification goes to
func (h *Hub) resolve(note orchestrator.Notification, origin *client) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if note.Broadcast {
		targets := make([]*client, 0, len(h.clients))
		for c := range h.clients {
			targets = append(targets, c)
		}
		return targets
	}

	var targets []*client
	for _, userID := range note.To {
		if userID == "" {
			if origin != nil {
				targets = append(targets, origin)
			}
			continue
		}
		for c := range h.clients {
			if c.userID == userID {
				targets = append(targets, c)
			}
		}
	}
	return targets
}

func (h *Hub) deliver(msgType protocol.MessageType, data []byte, targets []*client) {
	for _, c := range targets {
		if err := c.send(data); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			h.logger.Warn("failed to deliver message",
				slog.String("type", string(msgType)),
				slog.String("user_id", string(c.userID)),
				slog.Any("error", err))
		}
	}
}

func (h *Hub) boundUser(c *client) model.UserID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.userID
}

// loggedInExcept lists users bound to other live connections
func (h *Hub) loggedInExcept(exclude *client) []model.UserID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var ids []model.UserID
	for c := range h.clients {
		if c != exclude && c.userID != "" {
			ids = append(ids, c.userID)
		}
	}
	return ids
}
