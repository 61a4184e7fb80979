// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

// Package api is the HTTP surface: chi routing, the JSON response
// envelope, and the endpoint handlers for accounts, sensor ingest and
// queries, alerts, chat history, and the spatial views.
//
// Handlers depend on narrow store interfaces rather than the concrete
// database type, so tests run against in-memory fakes. Mutating endpoints
// push their results to the real-time layer through the Broadcaster, which
// never blocks the request.
package api
