// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

// Package ws implements the real-time fan-out layer: a hub that broadcasts
// events over two independent channels, general (sensor readings and
// alerts, unauthenticated) and chat (responder coordination, JWT required
// at the handshake).
//
// Publishing is asynchronous and never fails; the hub's run loop delivers
// each event to a snapshot of the channel membership. Every connection has
// a bounded send queue, so one slow consumer is either evicted or skipped
// without delaying anyone else.
package ws
