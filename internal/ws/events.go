// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package ws

import "github.com/goccy/go-json"

// Channel identifies one of the two independent broadcast domains. Events
// published to one channel are never delivered to members of the other.
type Channel string

const (
	// ChannelGeneral carries operational events (sensor readings, alerts)
	// to unauthenticated dashboard connections. One-way: inbound frames
	// are read and discarded.
	ChannelGeneral Channel = "general"

	// ChannelChat carries coordination messages between authenticated
	// responders.
	ChannelChat Channel = "chat"
)

// Event types delivered inside envelopes.
const (
	EventSensorUpdate  = "sensor_update"
	EventNewAlert      = "new_alert"
	EventAlertResolved = "alert_resolved"
	EventNewMessage    = "new_message"
)

// Envelope is the wire format of every outbound event.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`

	// raw, when set, is written to the socket verbatim instead of the
	// {type, data} shape. Per-sender chat error replies use it: the
	// dashboard expects a flat {error, details} object there.
	raw []byte
}

// rawEnvelope wraps a pre-marshaled payload for the send queue so it shares
// the queue's FIFO ordering with broadcast events.
func rawEnvelope(payload []byte) Envelope {
	return Envelope{raw: payload}
}

// event pairs an envelope with its target channel on the hub's inbound
// queue.
type event struct {
	channel  Channel
	envelope Envelope
}

// MarshalEnvelope converts an envelope to JSON.
func MarshalEnvelope(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}
