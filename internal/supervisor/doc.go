// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

// Package supervisor runs the long-lived services under a suture v4 tree
// with two isolated layers: the WebSocket hub and the HTTP server. A
// crashed service restarts with exponential backoff; supervision events go
// through the shared zerolog pipeline via the sutureslog adapter.
package supervisor
