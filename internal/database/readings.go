// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/floodwatch-io/floodwatch/internal/metrics"
	"github.com/floodwatch-io/floodwatch/internal/models"
	"github.com/floodwatch-io/floodwatch/internal/spatial"
)

// riskMapLimit bounds the latest-per-sensor scan backing the risk map and
// radius search.
const riskMapLimit = 200

// CreateReading persists a sensor reading and returns it with its assigned
// id and server-side timestamp.
func (db *DB) CreateReading(ctx context.Context, draft *models.ReadingDraft) (*models.SensorReading, error) {
	start := time.Now()

	var id int64
	var ts time.Time
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO sensor_readings (sensor_id, latitude, longitude, water_level, rainfall)
		 VALUES (?, ?, ?, ?, ?) RETURNING id, timestamp`,
		draft.SensorID, draft.Latitude, draft.Longitude, draft.WaterLevel, draft.Rainfall,
	).Scan(&id, &ts)
	metrics.RecordDBQuery("insert", "sensor_readings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert reading: %w", err)
	}

	return &models.SensorReading{
		ID:         id,
		SensorID:   draft.SensorID,
		Latitude:   draft.Latitude,
		Longitude:  draft.Longitude,
		WaterLevel: draft.WaterLevel,
		Rainfall:   draft.Rainfall,
		Timestamp:  ts,
	}, nil
}

// LatestReadings returns the most recent readings across all sensors,
// newest first.
func (db *DB) LatestReadings(ctx context.Context, limit int) ([]models.SensorReading, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, sensor_id, latitude, longitude, water_level, rainfall, timestamp
		 FROM sensor_readings ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	metrics.RecordDBQuery("select", "sensor_readings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer closeQuietly(rows)

	return scanReadings(rows)
}

// LatestPerSensor returns the newest reading of each sensor, capped at
// riskMapLimit sensors.
func (db *DB) LatestPerSensor(ctx context.Context) ([]models.SensorReading, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, sensor_id, latitude, longitude, water_level, rainfall, timestamp
		 FROM (
		     SELECT *, row_number() OVER (PARTITION BY sensor_id ORDER BY timestamp DESC, id DESC) AS rn
		     FROM sensor_readings
		 ) WHERE rn = 1
		 ORDER BY sensor_id
		 LIMIT ?`, riskMapLimit)
	metrics.RecordDBQuery("select", "sensor_readings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest per sensor: %w", err)
	}
	defer closeQuietly(rows)

	return scanReadings(rows)
}

// ReadingsInRadius returns the latest reading of each sensor within
// radiusKm of the center, optionally filtered by a minimum water level.
// The great-circle filter runs in process over the latest-per-sensor set.
func (db *DB) ReadingsInRadius(ctx context.Context, lat, lon, radiusKm, minWaterLevel float64) ([]models.SensorReading, error) {
	latest, err := db.LatestPerSensor(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.SensorReading, 0, len(latest))
	for _, reading := range latest {
		if reading.WaterLevel < minWaterLevel {
			continue
		}
		if spatial.WithinRadius(lat, lon, reading.Latitude, reading.Longitude, radiusKm) {
			matched = append(matched, reading)
		}
	}
	return matched, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanReadings(rows rowScanner) ([]models.SensorReading, error) {
	var readings []models.SensorReading
	for rows.Next() {
		var r models.SensorReading
		if err := rows.Scan(&r.ID, &r.SensorID, &r.Latitude, &r.Longitude, &r.WaterLevel, &r.Rainfall, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return readings, nil
}
