// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/floodwatch-io/floodwatch/internal/auth"
	"github.com/floodwatch-io/floodwatch/internal/models"
)

// fakeVerifier accepts exactly one token value.
type fakeVerifier struct {
	token    string
	identity *auth.Identity
}

func (v *fakeVerifier) Verify(_ context.Context, credential string) (*auth.Identity, error) {
	if credential == v.token {
		return v.identity, nil
	}
	return nil, auth.ErrMalformedCredential
}

// fakeMessageStore records created messages and assigns ids.
type fakeMessageStore struct {
	mu       sync.Mutex
	nextID   int64
	messages []*models.Message
	fail     bool
}

func (s *fakeMessageStore) CreateMessage(_ context.Context, userID int64, username, content string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("store unavailable")
	}
	s.nextID++
	msg := &models.Message{
		ID:        s.nextID,
		UserID:    userID,
		Username:  username,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.messages = append(s.messages, msg)
	return msg, nil
}

type wsFixture struct {
	hub    *Hub
	server *httptest.Server
	store  *fakeMessageStore
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()

	registry := NewRegistry()
	hub := startHub(t, registry)
	store := &fakeMessageStore{}
	verifier := &fakeVerifier{
		token: "good-token",
		identity: &auth.Identity{
			UserID:   42,
			Username: "responder1",
			Role:     models.RoleFieldResponder,
		},
	}

	endpoints := NewEndpoints(hub, registry, verifier, store, testWSConfig(), []string{"*"})
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/general", endpoints.ServeGeneral)
	mux.HandleFunc("/ws/chat", endpoints.ServeChat)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &wsFixture{hub: hub, server: server, store: store}
}

func (f *wsFixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		t.Fatalf("decode envelope %q: %v", payload, err)
	}
	return env
}

// readReject reads one frame and decodes it as a raw JSON object, for
// asserting the flat shape of per-sender error replies.
func readReject(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read reject: %v", err)
	}
	var reply map[string]interface{}
	if err := json.Unmarshal(payload, &reply); err != nil {
		t.Fatalf("decode reject %q: %v", payload, err)
	}
	return reply
}

func TestGeneralEndpointReceivesBroadcasts(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "/ws/general")

	// Registration is asynchronous from the dialer's perspective; the
	// handler registers before starting pumps, so the first broadcast after
	// a successful dial is delivered.
	f.hub.BroadcastSensorUpdate(&models.SensorReading{
		ID:         1,
		SensorID:   "S-101",
		WaterLevel: 6.1,
	})

	env := readEnvelope(t, conn)
	if env.Type != EventSensorUpdate {
		t.Fatalf("event type = %q, want %q", env.Type, EventSensorUpdate)
	}
	data, ok := env.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %#v, want object", env.Data)
	}
	if data["sensor_id"] != "S-101" {
		t.Errorf("sensor_id = %v, want S-101", data["sensor_id"])
	}
}

func TestChatEndpointRejectsBadToken(t *testing.T) {
	f := newWSFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/chat?token=wrong"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if err == nil {
		t.Fatal("expected a close error, got a frame")
	}
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		t.Fatalf("error = %v, want close error", err)
	}
	if closeErr.Code != websocket.ClosePolicyViolation {
		t.Errorf("close code = %d, want %d", closeErr.Code, websocket.ClosePolicyViolation)
	}
}

func TestChatEndpointRejectsMissingToken(t *testing.T) {
	f := newWSFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) || closeErr.Code != websocket.ClosePolicyViolation {
		t.Fatalf("error = %v, want policy violation close", err)
	}
}

func TestChatRoundTrip(t *testing.T) {
	f := newWSFixture(t)
	sender := f.dial(t, "/ws/chat?token=good-token")
	observer := f.dial(t, "/ws/chat?token=good-token")

	if err := sender.WriteMessage(websocket.TextMessage, []byte(`{"content":"river rising near bridge 4"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, conn := range []*websocket.Conn{sender, observer} {
		env := readEnvelope(t, conn)
		if env.Type != EventNewMessage {
			t.Fatalf("event type = %q, want %q", env.Type, EventNewMessage)
		}
		data := env.Data.(map[string]interface{})
		if data["content"] != "river rising near bridge 4" {
			t.Errorf("content = %v", data["content"])
		}
		if data["username"] != "responder1" {
			t.Errorf("username = %v, want responder1", data["username"])
		}
	}

	f.store.mu.Lock()
	persisted := len(f.store.messages)
	f.store.mu.Unlock()
	if persisted != 1 {
		t.Errorf("persisted messages = %d, want 1", persisted)
	}
}

func TestChatMalformedInputKeepsConnectionOpen(t *testing.T) {
	f := newWSFixture(t)
	sender := f.dial(t, "/ws/chat?token=good-token")
	observer := f.dial(t, "/ws/chat?token=good-token")

	cases := []string{
		`not json at all`,
		`{"content": 123}`,
		`{"content": ""}`,
		`{"content": "   "}`,
	}
	for _, payload := range cases {
		if err := sender.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
			t.Fatalf("write %q: %v", payload, err)
		}
		// The reply is a flat {error, details} object, not a broadcast
		// envelope; existing dashboards key on the top-level "error" field.
		reply := readReject(t, sender)
		if _, wrapped := reply["type"]; wrapped {
			t.Fatalf("payload %q: reject is enveloped: %#v", payload, reply)
		}
		if errMsg, _ := reply["error"].(string); errMsg == "" {
			t.Errorf("payload %q: missing top-level error field: %#v", payload, reply)
		}
		if details, _ := reply["details"].(string); details == "" {
			t.Errorf("payload %q: missing details field: %#v", payload, reply)
		}
	}

	// The sender's connection survives and works afterwards.
	if err := sender.WriteMessage(websocket.TextMessage, []byte(`{"content":"all clear"}`)); err != nil {
		t.Fatalf("write after rejects: %v", err)
	}
	env := readEnvelope(t, sender)
	if env.Type != EventNewMessage {
		t.Fatalf("event type = %q, want %q", env.Type, EventNewMessage)
	}

	// The observer saw only the valid message, none of the rejects.
	env = readEnvelope(t, observer)
	if env.Type != EventNewMessage {
		t.Fatalf("observer event = %q, want %q", env.Type, EventNewMessage)
	}
	data := env.Data.(map[string]interface{})
	if data["content"] != "all clear" {
		t.Errorf("observer content = %v, want all clear", data["content"])
	}
}

func TestChatStoreFailureRepliesToSenderOnly(t *testing.T) {
	f := newWSFixture(t)
	sender := f.dial(t, "/ws/chat?token=good-token")

	f.store.mu.Lock()
	f.store.fail = true
	f.store.mu.Unlock()

	if err := sender.WriteMessage(websocket.TextMessage, []byte(`{"content":"hello"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	reply := readReject(t, sender)
	if reply["error"] != "message not delivered" {
		t.Fatalf("reply = %#v, want top-level 'message not delivered'", reply)
	}
}
