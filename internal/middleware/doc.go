// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

// Package middleware holds the HTTP middleware shared across the API:
// request id tagging, Prometheus instrumentation, gzip compression, and
// slow request logging. CORS and rate limiting come from go-chi/cors and
// go-chi/httprate and are wired directly in the router.
package middleware
