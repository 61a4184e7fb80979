// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

// Package database is the DuckDB-backed store for users, sensor readings,
// alerts, and chat messages.
//
// DuckDB runs embedded, so the store owns schema creation on startup (see
// schema.go); all DDL is idempotent. Operations return sentinel errors
// (ErrNotFound, ErrUsernameTaken, ErrAlreadyResolved) for conditions the
// HTTP layer maps to status codes.
//
// Reading writes can be wrapped in a circuit breaker (BreakerWriter) so a
// failing storage backend rejects ingest quickly instead of stacking up
// timed-out inserts.
package database
