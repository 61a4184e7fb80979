// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/floodwatch-io/floodwatch/internal/database"
	"github.com/floodwatch-io/floodwatch/internal/logging"
	"github.com/floodwatch-io/floodwatch/internal/metrics"
	"github.com/floodwatch-io/floodwatch/internal/models"
	"github.com/floodwatch-io/floodwatch/internal/validation"
)

// alertIDParam extracts the {id} route parameter.
func alertIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("alert id must be a positive integer")
	}
	return id, nil
}

// CreateAlert raises a manual alert.
func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var draft models.AlertDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&draft); verr != nil {
		rw.ValidationError("Invalid alert", verr.ToAPIError())
		return
	}
	if !draft.Level.Valid() {
		rw.BadRequest("Unknown alert level: " + string(draft.Level))
		return
	}

	alert, err := h.alerts.CreateAlert(r.Context(), &draft)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	metrics.RecordAlertRaised(string(alert.Level), "manual")
	h.hub.BroadcastNewAlert(alert)

	logging.Ctx(r.Context()).Info().
		Int64("alert_id", alert.ID).
		Str("level", string(alert.Level)).
		Msg("manual alert raised")

	rw.Created(alert)
}

// Alerts lists alerts, newest first.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	page, err := parsePagination(r, h.cfg.DefaultPageSize, h.cfg.MaxPageSize)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	alerts, err := h.alerts.Alerts(r.Context(), page.Skip, page.Limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithPagination(alerts, &PaginationMeta{
		Count:   len(alerts),
		Offset:  page.Skip,
		Limit:   page.Limit,
		HasMore: len(alerts) == page.Limit,
	})
}

// AlertByID returns a single alert.
func (h *Handler) AlertByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := alertIDParam(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	alert, err := h.alerts.GetAlert(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Alert not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	rw.Success(alert)
}

// LatestUnresolvedAlerts returns the newest alerts still awaiting
// resolution. Defaults to two, matching the dashboard's banner slots.
func (h *Handler) LatestUnresolvedAlerts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	count, err := queryInt(r, "count", 2)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if count < 1 {
		rw.BadRequest("parameter 'count' must be positive")
		return
	}
	if count > h.cfg.MaxPageSize {
		count = h.cfg.MaxPageSize
	}

	alerts, err := h.alerts.LatestUnresolvedAlerts(r.Context(), count)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(alerts)
}

// ResolveAlert marks an alert resolved and broadcasts the resolution.
func (h *Handler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := alertIDParam(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	alert, err := h.alerts.ResolveAlert(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			rw.NotFound("Alert not found")
		case errors.Is(err, database.ErrAlreadyResolved):
			rw.BadRequest("Alert is already resolved")
		default:
			rw.DatabaseError(err)
		}
		return
	}

	metrics.AlertsResolved.Inc()
	h.hub.BroadcastAlertResolved(alert)

	logging.Ctx(r.Context()).Info().
		Int64("alert_id", alert.ID).
		Msg("alert resolved")

	rw.Success(alert)
}

// DeleteAlert removes an alert.
func (h *Handler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := alertIDParam(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if err := h.alerts.DeleteAlert(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Alert not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("alert_id", id).
		Msg("alert deleted")

	rw.NoContent()
}
