// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package api

import (
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/floodwatch-io/floodwatch/internal/logging"
	"github.com/floodwatch-io/floodwatch/internal/metrics"
	"github.com/floodwatch-io/floodwatch/internal/models"
	"github.com/floodwatch-io/floodwatch/internal/validation"
)

// SensorIngest accepts one reading, persists it, raises a threshold alert
// when warranted, and pushes both to the real-time layer.
func (h *Handler) SensorIngest(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var draft models.ReadingDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&draft); verr != nil {
		rw.ValidationError("Invalid sensor reading", verr.ToAPIError())
		return
	}

	reading, err := h.writer.CreateReading(r.Context(), &draft)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
				"Ingest temporarily unavailable")
			return
		}
		rw.DatabaseError(err)
		return
	}

	metrics.ReadingsIngested.Inc()
	h.hub.BroadcastSensorUpdate(reading)

	if draft := h.evaluator.Evaluate(reading); draft != nil {
		alert, err := h.alerts.CreateAlert(r.Context(), draft)
		if err != nil {
			// The reading is already stored and broadcast; losing the alert
			// is logged but does not fail the ingest.
			logging.Ctx(r.Context()).Error().Err(err).
				Str("sensor_id", reading.SensorID).
				Msg("failed to persist threshold alert")
		} else {
			metrics.RecordAlertRaised(string(alert.Level), "threshold")
			h.hub.BroadcastNewAlert(alert)
			logging.Ctx(r.Context()).Warn().
				Str("sensor_id", reading.SensorID).
				Str("level", string(alert.Level)).
				Float64("water_level", reading.WaterLevel).
				Msg("threshold alert raised")
		}
	}

	rw.Created(reading)
}

// SensorData returns the most recent readings, newest first.
func (h *Handler) SensorData(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := queryInt(r, "limit", h.cfg.DefaultPageSize)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if limit < 1 {
		rw.BadRequest("parameter 'limit' must be positive")
		return
	}
	if limit > h.cfg.MaxPageSize {
		limit = h.cfg.MaxPageSize
	}

	readings, err := h.readings.LatestReadings(r.Context(), limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithPagination(readings, &PaginationMeta{
		Count:   len(readings),
		Limit:   limit,
		HasMore: len(readings) == limit,
	})
}
