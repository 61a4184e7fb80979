// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package ws

import (
	"context"

	"github.com/floodwatch-io/floodwatch/internal/config"
	"github.com/floodwatch-io/floodwatch/internal/logging"
	"github.com/floodwatch-io/floodwatch/internal/metrics"
	"github.com/floodwatch-io/floodwatch/internal/models"
)

// Hub fans events out to channel members. Publishers hand events to a
// bounded inbound queue and return immediately; the hub's run loop performs
// the delivery, so a slow consumer never blocks the code that produced the
// event.
type Hub struct {
	registry *Registry
	inbound  chan event
	cfg      *config.WebSocketConfig
}

// NewHub creates a hub over the given registry.
func NewHub(registry *Registry, cfg *config.WebSocketConfig) *Hub {
	return &Hub{
		registry: registry,
		inbound:  make(chan event, cfg.PublishQueue),
		cfg:      cfg,
	}
}

// Publish enqueues an event for delivery to every member of the channel.
// It never returns an error and never blocks: when the inbound queue is
// full the event is dropped and counted.
func (h *Hub) Publish(channel Channel, eventType string, data interface{}) {
	metrics.WSEventsPublished.WithLabelValues(string(channel), eventType).Inc()

	select {
	case h.inbound <- event{channel: channel, envelope: Envelope{Type: eventType, Data: data}}:
	default:
		metrics.WSEventsDropped.WithLabelValues(string(channel)).Inc()
		logging.Warn().
			Str("channel", string(channel)).
			Str("event_type", eventType).
			Msg("hub inbound queue full, dropping event")
	}
}

// BroadcastSensorUpdate publishes a persisted reading to the general
// channel.
func (h *Hub) BroadcastSensorUpdate(reading *models.SensorReading) {
	h.Publish(ChannelGeneral, EventSensorUpdate, reading)
}

// BroadcastNewAlert publishes a raised alert to the general channel.
func (h *Hub) BroadcastNewAlert(alert *models.Alert) {
	h.Publish(ChannelGeneral, EventNewAlert, alert)
}

// BroadcastAlertResolved publishes an alert resolution to the general
// channel.
func (h *Hub) BroadcastAlertResolved(alert *models.Alert) {
	h.Publish(ChannelGeneral, EventAlertResolved, alert)
}

// BroadcastNewMessage publishes a persisted chat message to the chat
// channel.
func (h *Hub) BroadcastNewMessage(message *models.Message) {
	h.Publish(ChannelChat, EventNewMessage, message)
}

// Run delivers queued events until the context is canceled, then closes
// every connection and returns ctx.Err(). Designed to run under suture
// supervision.
//
// Shutdown is checked with priority: when cancellation and pending events
// are both ready, the hub stops rather than delivering more.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case ev := <-h.inbound:
			h.deliver(ev)
		}
	}
}

// deliver fans one event out over a snapshot of the channel membership.
// Each member either gets the event appended to its send queue (preserving
// per-recipient order) or is handled according to the eviction policy; one
// recipient's failure never affects the others.
func (h *Hub) deliver(ev event) {
	clients := h.registry.Snapshot(ev.channel)

	for _, client := range clients {
		if client.trySend(ev.envelope) {
			metrics.WSEventsDelivered.WithLabelValues(string(ev.channel)).Inc()
			continue
		}

		if h.cfg.EvictOnFullSend {
			metrics.WSEvictions.WithLabelValues(string(ev.channel)).Inc()
			logging.Warn().
				Str("channel", string(ev.channel)).
				Uint64("client_id", client.id).
				Msg("evicting slow websocket consumer")
			h.registry.Unregister(client)
		}
		// Otherwise the event is dropped for this recipient only.
	}
}

// shutdown closes all connections on both channels.
func (h *Hub) shutdown(ctx context.Context) {
	closed := 0
	for _, channel := range []Channel{ChannelGeneral, ChannelChat} {
		for _, client := range h.registry.Snapshot(channel) {
			h.registry.Unregister(client)
			closed++
		}
	}

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "ws-hub").
		Str("reason", reason).
		Int("clients_closed", closed).
		Msg("websocket hub stopped")
}
