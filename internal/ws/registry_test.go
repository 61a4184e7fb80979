// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/floodwatch-io/floodwatch/internal/config"
)

func testWSConfig() *config.WebSocketConfig {
	return &config.WebSocketConfig{
		SendQueueSize:   4,
		PublishQueue:    16,
		MaxMessageSize:  4096,
		WriteTimeout:    time.Second,
		PongTimeout:     time.Minute,
		ChatRatePerSec:  100,
		ChatRateBurst:   100,
		EvictOnFullSend: true,
	}
}

func newBareClient(t *testing.T, channel Channel) *Client {
	t.Helper()
	return newClient(channel, nil, nil, nil, nil, nil, testWSConfig())
}

func TestRegistryRegisterAndCount(t *testing.T) {
	r := NewRegistry()

	if got := r.Count(ChannelGeneral); got != 0 {
		t.Fatalf("empty registry count = %d, want 0", got)
	}

	a := newBareClient(t, ChannelGeneral)
	b := newBareClient(t, ChannelGeneral)
	c := newBareClient(t, ChannelChat)
	r.Register(a)
	r.Register(b)
	r.Register(c)

	if got := r.Count(ChannelGeneral); got != 2 {
		t.Errorf("general count = %d, want 2", got)
	}
	if got := r.Count(ChannelChat); got != 1 {
		t.Errorf("chat count = %d, want 1", got)
	}
}

func TestRegistryUnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	client := newBareClient(t, ChannelGeneral)
	r.Register(client)

	r.Unregister(client)
	if got := r.Count(ChannelGeneral); got != 0 {
		t.Fatalf("count after unregister = %d, want 0", got)
	}

	// Second and third calls must be no-ops, including the send close.
	r.Unregister(client)
	r.Unregister(client)

	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatal("send queue should be closed and empty")
		}
	default:
		t.Fatal("send queue was not closed on unregister")
	}
}

func TestRegistryUnregisterUnknownClient(t *testing.T) {
	r := NewRegistry()
	client := newBareClient(t, ChannelGeneral)

	// Never registered; must not panic or close anything twice later.
	r.Unregister(client)
	r.Register(client)
	r.Unregister(client)

	if got := r.Count(ChannelGeneral); got != 0 {
		t.Fatalf("count = %d, want 0", got)
	}
}

func TestRegistryUnregisterConcurrent(t *testing.T) {
	r := NewRegistry()
	client := newBareClient(t, ChannelGeneral)
	r.Register(client)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Unregister(client)
		}()
	}
	wg.Wait()

	if got := r.Count(ChannelGeneral); got != 0 {
		t.Fatalf("count = %d, want 0", got)
	}
}

func TestRegistrySnapshotSortedByID(t *testing.T) {
	r := NewRegistry()
	clients := make([]*Client, 5)
	for i := range clients {
		clients[i] = newBareClient(t, ChannelGeneral)
	}
	// Register out of creation order.
	for _, i := range []int{3, 0, 4, 1, 2} {
		r.Register(clients[i])
	}

	snap := r.Snapshot(ChannelGeneral)
	if len(snap) != 5 {
		t.Fatalf("snapshot size = %d, want 5", len(snap))
	}
	for i := 1; i < len(snap); i++ {
		if snap[i-1].id >= snap[i].id {
			t.Fatalf("snapshot not sorted: id %d before id %d", snap[i-1].id, snap[i].id)
		}
	}
}

func TestRegistrySnapshotIsolatedFromMutation(t *testing.T) {
	r := NewRegistry()
	client := newBareClient(t, ChannelGeneral)
	r.Register(client)

	snap := r.Snapshot(ChannelGeneral)
	r.Unregister(client)

	// The snapshot still holds the departed client; fan-out sees it as a
	// failed send, not a crash.
	if len(snap) != 1 {
		t.Fatalf("snapshot size = %d, want 1", len(snap))
	}
	if snap[0].trySend(Envelope{Type: "x"}) {
		t.Error("send to a closed queue should report failure")
	}
}
