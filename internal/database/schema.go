// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with a timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates all tables, sequences, and indexes. All DDL is
// idempotent so startup against an existing database is a no-op.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema statement: %s: %w", query, err)
		}
	}

	return nil
}

var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS users_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS sensor_readings_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS alerts_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS messages_id_seq START 1`,

	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY DEFAULT nextval('users_id_seq'),
		username TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS sensor_readings (
		id BIGINT PRIMARY KEY DEFAULT nextval('sensor_readings_id_seq'),
		sensor_id TEXT NOT NULL,
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		water_level DOUBLE NOT NULL,
		rainfall DOUBLE NOT NULL DEFAULT 0,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS alerts (
		id BIGINT PRIMARY KEY DEFAULT nextval('alerts_id_seq'),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		level TEXT NOT NULL,
		sensor_id TEXT,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		is_resolved BOOLEAN NOT NULL DEFAULT FALSE
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id BIGINT PRIMARY KEY DEFAULT nextval('messages_id_seq'),
		user_id BIGINT NOT NULL,
		content TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_readings_sensor_time ON sensor_readings (sensor_id, timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_readings_time ON sensor_readings (timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_unresolved ON alerts (is_resolved, timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_time ON messages (timestamp)`,
}
