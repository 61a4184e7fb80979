// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package api

import (
	"net/http"

	"github.com/floodwatch-io/floodwatch/internal/models"
)

// SensorsInRadius returns the latest reading of every sensor within a
// great-circle radius of a point, optionally filtered by minimum water
// level.
func (h *Handler) SensorsInRadius(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	lat, err := queryFloatAlias(r, "latitude", "lat")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	lon, err := queryFloatAlias(r, "longitude", "lon")
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	radius, err := queryFloat(r, "radius_km", false, 10)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	minLevel, err := queryFloat(r, "min_water_level", false, 0)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if lat < -90 || lat > 90 {
		rw.BadRequest("parameter 'latitude' must be between -90 and 90")
		return
	}
	if lon < -180 || lon > 180 {
		rw.BadRequest("parameter 'longitude' must be between -180 and 180")
		return
	}
	if radius <= 0 {
		rw.BadRequest("parameter 'radius_km' must be positive")
		return
	}

	readings, err := h.readings.ReadingsInRadius(r.Context(), lat, lon, radius, minLevel)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(readings)
}

// RiskMapData returns each sensor's latest reading classified into a risk
// band for the map overlay.
func (h *Handler) RiskMapData(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	readings, err := h.readings.LatestPerSensor(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	points := make([]models.RiskPoint, 0, len(readings))
	for _, reading := range readings {
		points = append(points, models.RiskPoint{
			Latitude:    reading.Latitude,
			Longitude:   reading.Longitude,
			RiskLevel:   h.evaluator.RiskLevel(reading.WaterLevel),
			WaterLevel:  reading.WaterLevel,
			SensorID:    reading.SensorID,
			LastUpdated: reading.Timestamp,
		})
	}

	rw.Success(points)
}
