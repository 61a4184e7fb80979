// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/floodwatch-io/floodwatch/internal/auth"
	"github.com/floodwatch-io/floodwatch/internal/config"
	"github.com/floodwatch-io/floodwatch/internal/logging"
	"github.com/floodwatch-io/floodwatch/internal/metrics"
)

// authCloseDeadline bounds the close handshake for rejected chat upgrades.
const authCloseDeadline = 5 * time.Second

// Endpoints serves the WebSocket upgrade routes.
type Endpoints struct {
	hub      *Hub
	registry *Registry
	verifier auth.Verifier
	store    MessageStore
	cfg      *config.WebSocketConfig
	upgrader websocket.Upgrader
}

// NewEndpoints wires the upgrade handlers. allowedOrigins follows the CORS
// configuration; "*" accepts any origin.
func NewEndpoints(hub *Hub, registry *Registry, verifier auth.Verifier, store MessageStore, cfg *config.WebSocketConfig, allowedOrigins []string) *Endpoints {
	return &Endpoints{
		hub:      hub,
		registry: registry,
		verifier: verifier,
		store:    store,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker builds the upgrade origin policy from the configured CORS
// origins. Requests without an Origin header (non-browser clients) are
// accepted.
func originChecker(allowedOrigins []string) func(*http.Request) bool {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

// ServeGeneral upgrades a connection onto the general channel. No
// authentication; the channel is broadcast-only.
func (e *Endpoints) ServeGeneral(w http.ResponseWriter, r *http.Request) {
	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("general websocket upgrade failed")
		return
	}

	client := newClient(ChannelGeneral, conn, nil, e.hub, e.registry, nil, e.cfg)
	e.registry.Register(client)
	client.start()
}

// ServeChat upgrades a connection onto the chat channel. The token is
// verified before the client is registered: a bad credential gets a policy
// violation close frame and the connection never joins the channel, so no
// broadcast can reach it.
func (e *Endpoints) ServeChat(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	identity, authErr := e.verifier.Verify(r.Context(), token)

	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("chat websocket upgrade failed")
		return
	}

	if authErr != nil {
		metrics.WSAuthFailures.Inc()
		logging.Warn().
			Err(authErr).
			Str("remote_addr", r.RemoteAddr).
			Msg("chat websocket authentication failed")

		frame := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed")
		_ = conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(authCloseDeadline))
		_ = conn.Close()
		return
	}

	client := newClient(ChannelChat, conn, identity, e.hub, e.registry, e.store, e.cfg)
	e.registry.Register(client)
	client.start()

	logging.Info().
		Str("username", identity.Username).
		Str("role", string(identity.Role)).
		Uint64("client_id", client.id).
		Msg("chat websocket authenticated")
}
