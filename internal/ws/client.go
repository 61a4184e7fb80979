// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package ws

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/floodwatch-io/floodwatch/internal/auth"
	"github.com/floodwatch-io/floodwatch/internal/config"
	"github.com/floodwatch-io/floodwatch/internal/logging"
	"github.com/floodwatch-io/floodwatch/internal/metrics"
	"github.com/floodwatch-io/floodwatch/internal/models"
)

// maxChatContentLen bounds a single chat message.
const maxChatContentLen = 2000

// clientIDCounter generates unique, monotonically increasing client ids so
// broadcast iteration order is deterministic.
var clientIDCounter atomic.Uint64

// MessageStore persists chat messages before they are broadcast.
type MessageStore interface {
	CreateMessage(ctx context.Context, userID int64, username, content string) (*models.Message, error)
}

// Client is one WebSocket connection bound to a channel. Chat clients also
// carry the identity resolved during the handshake and an inbound rate
// limiter.
type Client struct {
	id       uint64
	channel  Channel
	identity *auth.Identity

	conn      *websocket.Conn
	send      chan Envelope
	closeOnce sync.Once

	hub      *Hub
	registry *Registry
	store    MessageStore
	limiter  *rate.Limiter
	cfg      *config.WebSocketConfig
}

func newClient(channel Channel, conn *websocket.Conn, identity *auth.Identity, hub *Hub, registry *Registry, store MessageStore, cfg *config.WebSocketConfig) *Client {
	var limiter *rate.Limiter
	if channel == ChannelChat {
		limiter = rate.NewLimiter(rate.Limit(cfg.ChatRatePerSec), cfg.ChatRateBurst)
	}
	return &Client{
		id:       clientIDCounter.Add(1),
		channel:  channel,
		identity: identity,
		conn:     conn,
		send:     make(chan Envelope, cfg.SendQueueSize),
		hub:      hub,
		registry: registry,
		store:    store,
		limiter:  limiter,
		cfg:      cfg,
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// trySend appends an envelope to the send queue without blocking. Returns
// false when the queue is full or already closed.
func (c *Client) trySend(env Envelope) (ok bool) {
	// A send on a closed channel panics; the registry closes the queue
	// exactly once on unregister, so a concurrent eviction is survivable
	// here rather than fatal.
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// closeSend closes the send queue exactly once. Only the registry calls
// this, from Unregister.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// start launches the read and write pumps.
func (c *Client) start() {
	go c.writePump()
	go c.readPump()
}

// readPump consumes inbound frames until the connection drops. Both pumps
// funnel into the same cleanup: unregister (idempotent) and close the
// socket.
func (c *Client) readPump() {
	defer func() {
		c.registry.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logging.Debug().Err(err).Uint64("client_id", c.id).Msg("websocket read ended")
			}
			return
		}

		if c.channel == ChannelChat {
			c.handleChatFrame(payload)
		}
		// General channel is one-way: inbound frames are discarded.
	}
}

// chatInbound is the only frame chat clients may send.
type chatInbound struct {
	Content string `json:"content"`
}

// chatReject is sent to the offending sender only; the connection stays
// open and nothing reaches other members.
type chatReject struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// handleChatFrame validates, persists, and broadcasts one inbound chat
// message.
func (c *Client) handleChatFrame(payload []byte) {
	var in chatInbound
	if err := json.Unmarshal(payload, &in); err != nil {
		metrics.WSMessagesReceived.WithLabelValues(string(ChannelChat), "malformed").Inc()
		c.reject("invalid message", "expected a JSON object with a 'content' field")
		return
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		metrics.WSMessagesReceived.WithLabelValues(string(ChannelChat), "malformed").Inc()
		c.reject("invalid message", "'content' must be a non-empty string")
		return
	}
	if len(content) > maxChatContentLen {
		metrics.WSMessagesReceived.WithLabelValues(string(ChannelChat), "malformed").Inc()
		c.reject("invalid message", "'content' exceeds the maximum length")
		return
	}

	if c.limiter != nil && !c.limiter.Allow() {
		metrics.WSMessagesReceived.WithLabelValues(string(ChannelChat), "rate_limited").Inc()
		c.reject("rate limited", "too many messages, slow down")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	message, err := c.store.CreateMessage(ctx, c.identity.UserID, c.identity.Username, content)
	cancel()
	if err != nil {
		logging.Error().Err(err).Uint64("client_id", c.id).Msg("failed to persist chat message")
		c.reject("message not delivered", "storage error, try again")
		return
	}

	metrics.WSMessagesReceived.WithLabelValues(string(ChannelChat), "ok").Inc()
	c.hub.BroadcastNewMessage(message)
}

// reject queues an error reply to this sender only. The reply is a flat
// {error, details} object rather than a broadcast envelope.
func (c *Client) reject(errMsg, details string) {
	payload, err := json.Marshal(chatReject{Error: errMsg, Details: details})
	if err != nil {
		logging.Error().Err(err).Uint64("client_id", c.id).Msg("failed to marshal chat reject")
		return
	}
	c.trySend(rawEnvelope(payload))
}

// writePump drains the send queue to the socket and keeps the connection
// alive with pings. A closed send queue means the registry dropped this
// client; the pump says goodbye with a close frame and exits.
func (c *Client) writePump() {
	pingPeriod := (c.cfg.PongTimeout * 9) / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload := env.raw
			if payload == nil {
				var err error
				payload, err = MarshalEnvelope(env)
				if err != nil {
					logging.Error().Err(err).Msg("failed to marshal envelope")
					continue
				}
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logging.Debug().Err(err).Uint64("client_id", c.id).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
