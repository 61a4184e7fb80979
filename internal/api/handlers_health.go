// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package api

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks storage liveness. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// healthPingTimeout bounds the readiness probe's storage check.
const healthPingTimeout = 2 * time.Second

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady reports readiness, including a storage ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := h.pinger.PingContext(ctx); err != nil {
			rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
				"Storage is not reachable")
			return
		}
	}

	rw.Success(map[string]string{"status": "ready"})
}
