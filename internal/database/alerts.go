// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/floodwatch-io/floodwatch/internal/metrics"
	"github.com/floodwatch-io/floodwatch/internal/models"
)

// CreateAlert persists an alert and returns it with its assigned id and
// server-side timestamp.
func (db *DB) CreateAlert(ctx context.Context, draft *models.AlertDraft) (*models.Alert, error) {
	start := time.Now()

	var id int64
	var ts time.Time
	var sensorID any
	if draft.SensorID != "" {
		sensorID = draft.SensorID
	}
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO alerts (title, description, level, sensor_id)
		 VALUES (?, ?, ?, ?) RETURNING id, timestamp`,
		draft.Title, draft.Description, draft.Level, sensorID,
	).Scan(&id, &ts)
	metrics.RecordDBQuery("insert", "alerts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert alert: %w", err)
	}

	return &models.Alert{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Level:       draft.Level,
		SensorID:    draft.SensorID,
		Timestamp:   ts,
		IsResolved:  false,
	}, nil
}

// Alerts returns alerts newest first, skipping the first skip rows.
func (db *DB) Alerts(ctx context.Context, skip, limit int) ([]models.Alert, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, description, level, sensor_id, timestamp, is_resolved
		 FROM alerts ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`, limit, skip)
	metrics.RecordDBQuery("select", "alerts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer closeQuietly(rows)

	return scanAlerts(rows)
}

// LatestUnresolvedAlerts returns the newest unresolved alerts, newest first.
func (db *DB) LatestUnresolvedAlerts(ctx context.Context, count int) ([]models.Alert, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, description, level, sensor_id, timestamp, is_resolved
		 FROM alerts WHERE is_resolved = FALSE
		 ORDER BY timestamp DESC, id DESC LIMIT ?`, count)
	metrics.RecordDBQuery("select", "alerts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query unresolved alerts: %w", err)
	}
	defer closeQuietly(rows)

	return scanAlerts(rows)
}

// GetAlert returns one alert by id. Returns ErrNotFound for unknown ids.
func (db *DB) GetAlert(ctx context.Context, id int64) (*models.Alert, error) {
	start := time.Now()

	var alert models.Alert
	var sensorID sql.NullString
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, description, level, sensor_id, timestamp, is_resolved
		 FROM alerts WHERE id = ?`, id,
	).Scan(&alert.ID, &alert.Title, &alert.Description, &alert.Level, &sensorID, &alert.Timestamp, &alert.IsResolved)
	metrics.RecordDBQuery("select", "alerts", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query alert: %w", err)
	}
	alert.SensorID = sensorID.String

	return &alert, nil
}

// ResolveAlert marks an alert resolved. Returns ErrNotFound for unknown ids
// and ErrAlreadyResolved if it was resolved before.
func (db *DB) ResolveAlert(ctx context.Context, id int64) (*models.Alert, error) {
	alert, err := db.GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert.IsResolved {
		return nil, ErrAlreadyResolved
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx, `UPDATE alerts SET is_resolved = TRUE WHERE id = ?`, id)
	metrics.RecordDBQuery("update", "alerts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve alert: %w", err)
	}

	alert.IsResolved = true
	return alert, nil
}

// DeleteAlert removes an alert. Returns ErrNotFound for unknown ids.
func (db *DB) DeleteAlert(ctx context.Context, id int64) error {
	if _, err := db.GetAlert(ctx, id); err != nil {
		return err
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id)
	metrics.RecordDBQuery("delete", "alerts", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return nil
}

func scanAlerts(rows *sql.Rows) ([]models.Alert, error) {
	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var sensorID sql.NullString
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Level, &sensorID, &a.Timestamp, &a.IsResolved); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.SensorID = sensorID.String
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("alert rows: %w", err)
	}
	return alerts, nil
}
