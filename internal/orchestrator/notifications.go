package orchestrator

import (
	"time"

	"github.com/dstrelkov/seabattle/internal/model"
	"github.com/dstrelkov/seabattle/internal/protocol"
)

// Notification is one abstract outbound message. The transport encodes
// the payload, fans it out and honors the delay hint; the core state is
// already fully resolved before the hint is attached. An empty user id
// in To addresses the connection the request arrived on, which is how
// a failed reg reaches a connection that has no user yet.
type Notification struct {
	Type      protocol.MessageType
	Payload   any
	Broadcast bool
	To        []model.UserID
	Delay     time.Duration
}

// Unicast builds a notification addressed to specific users
func Unicast(msgType protocol.MessageType, payload any, to ...model.UserID) Notification {
	return Notification{Type: msgType, Payload: payload, To: to}
}

// Broadcast builds a notification addressed to every connected client
func Broadcast(msgType protocol.MessageType, payload any) Notification {
	return Notification{Type: msgType, Payload: payload, Broadcast: true}
}

// withDelay returns a copy carrying a presentation-delay hint
func withDelay(n Notification, delay time.Duration) Notification {
	n.Delay = delay
	return n
}
