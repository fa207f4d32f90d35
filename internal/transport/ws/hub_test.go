package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/dstrelkov/seabattle/internal/factory"
	"github.com/dstrelkov/seabattle/internal/protocol"
	"github.com/dstrelkov/seabattle/internal/testutil"
)

type HubSuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.app = factory.NewTestApp()
	hub := NewHub(s.app.Orchestrator, testutil.NopLogger())
	s.server = httptest.NewServer(http.HandlerFunc(hub.HandleWS))
}

func (s *HubSuite) TearDownTest() {
	s.server.Close()
}

func (s *HubSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	return conn
}

func (s *HubSuite) sendEnvelope(conn *websocket.Conn, msgType protocol.MessageType, payload any) {
	inner, err := json.Marshal(payload)
	s.Require().NoError(err)
	raw, err := json.Marshal(protocol.Envelope{Type: msgType, Data: string(inner)})
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, raw))
}

// readEnvelope reads one message, requiring the expected type, and
// unmarshals its double-encoded data into out
func (s *HubSuite) readEnvelope(conn *websocket.Conn, want protocol.MessageType, out any) {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, raw, err := conn.ReadMessage()
	s.Require().NoError(err)

	var env protocol.Envelope
	s.Require().NoError(json.Unmarshal(raw, &env))
	s.Require().Equal(want, env.Type)
	if out != nil {
		s.Require().NoError(json.Unmarshal([]byte(env.Data), out))
	}
}

func (s *HubSuite) register(conn *websocket.Conn, name string) protocol.RegResponse {
	s.sendEnvelope(conn, protocol.TypeReg, protocol.RegRequest{Name: name, Password: "pw"})

	var resp protocol.RegResponse
	s.readEnvelope(conn, protocol.TypeReg, &resp)
	s.readEnvelope(conn, protocol.TypeUpdateRoom, nil)
	s.readEnvelope(conn, protocol.TypeUpdateWinners, nil)
	return resp
}

func (s *HubSuite) TestRegisterRoundTrip() {
	conn := s.dial()
	defer conn.Close()

	resp := s.register(conn, "alice")
	s.Equal("alice", resp.Name)
	s.NotEmpty(resp.Index)
	s.False(resp.Error)
}

func (s *HubSuite) TestMalformedMessageIgnored() {
	conn := s.dial()
	defer conn.Close()

	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	// The connection stays up and keeps working
	resp := s.register(conn, "alice")
	s.False(resp.Error)
}

func (s *HubSuite) TestRoomBroadcastReachesAllClients() {
	alice := s.dial()
	defer alice.Close()
	s.register(alice, "alice")

	bob := s.dial()
	defer bob.Close()
	s.register(bob, "bob")

	// Bob's registration also broadcast to alice
	s.readEnvelope(alice, protocol.TypeUpdateRoom, nil)
	s.readEnvelope(alice, protocol.TypeUpdateWinners, nil)

	s.sendEnvelope(alice, protocol.TypeCreateRoom, struct{}{})

	var aliceRooms, bobRooms []protocol.RoomSummary
	s.readEnvelope(alice, protocol.TypeUpdateRoom, &aliceRooms)
	s.readEnvelope(bob, protocol.TypeUpdateRoom, &bobRooms)

	s.Require().Len(bobRooms, 1)
	s.Equal(aliceRooms, bobRooms)
	s.Equal("alice", bobRooms[0].RoomUsers[0].Name)
}

func (s *HubSuite) TestSecondLoginRefused() {
	first := s.dial()
	defer first.Close()
	s.register(first, "alice")

	second := s.dial()
	defer second.Close()
	s.sendEnvelope(second, protocol.TypeReg, protocol.RegRequest{Name: "alice", Password: "pw"})

	var resp protocol.RegResponse
	s.readEnvelope(second, protocol.TypeReg, &resp)
	s.True(resp.Error)
	s.Equal("You already logged in", resp.ErrorText)
}
