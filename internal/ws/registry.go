// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package ws

import (
	"sort"
	"sync"

	"github.com/floodwatch-io/floodwatch/internal/logging"
	"github.com/floodwatch-io/floodwatch/internal/metrics"
)

// Registry tracks the connections subscribed to each channel. It is
// constructed explicitly and shared by the hub and the endpoints; there is
// no process-global instance.
type Registry struct {
	mu       sync.RWMutex
	channels map[Channel]map[*Client]struct{}
}

// NewRegistry creates an empty registry for both channels.
func NewRegistry() *Registry {
	return &Registry{
		channels: map[Channel]map[*Client]struct{}{
			ChannelGeneral: {},
			ChannelChat:    {},
		},
	}
}

// Register adds a client to its channel's membership.
func (r *Registry) Register(client *Client) {
	r.mu.Lock()
	members, ok := r.channels[client.channel]
	if !ok {
		members = map[*Client]struct{}{}
		r.channels[client.channel] = members
	}
	members[client] = struct{}{}
	total := len(members)
	r.mu.Unlock()

	metrics.WSConnections.WithLabelValues(string(client.channel)).Inc()
	logging.Info().
		Str("channel", string(client.channel)).
		Uint64("client_id", client.id).
		Int("channel_clients", total).
		Msg("websocket client connected")
}

// Unregister removes a client and closes its send queue exactly once.
// Safe to call multiple times and from multiple goroutines: later calls
// find no membership and do nothing.
func (r *Registry) Unregister(client *Client) {
	r.mu.Lock()
	members, ok := r.channels[client.channel]
	if !ok {
		r.mu.Unlock()
		return
	}
	if _, present := members[client]; !present {
		r.mu.Unlock()
		return
	}
	delete(members, client)
	total := len(members)
	r.mu.Unlock()

	client.closeSend()

	metrics.WSConnections.WithLabelValues(string(client.channel)).Dec()
	logging.Info().
		Str("channel", string(client.channel)).
		Uint64("client_id", client.id).
		Int("channel_clients", total).
		Msg("websocket client disconnected")
}

// Snapshot returns the channel's members sorted by client id. Fan-out
// iterates the snapshot, so connections arriving mid-broadcast wait for the
// next event and departures surface as failed sends.
func (r *Registry) Snapshot(channel Channel) []*Client {
	r.mu.RLock()
	members := r.channels[channel]
	clients := make([]*Client, 0, len(members))
	for client := range members {
		clients = append(clients, client)
	}
	r.mu.RUnlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// Count returns the number of members on a channel.
func (r *Registry) Count(channel Channel) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[channel])
}
