// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package middleware

import (
	"net/http"
	"time"

	"github.com/floodwatch-io/floodwatch/internal/logging"
)

// slowRequestThreshold is the latency above which a request gets a warning
// log entry. Prometheus histograms carry the full distribution; this is
// just the operator-visible tail.
const slowRequestThreshold = time.Second

// SlowRequestLog warns about requests slower than the threshold.
func SlowRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		if duration := time.Since(start); duration > slowRequestThreshold {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Int64("duration_ms", duration.Milliseconds()).
				Msg("slow request")
		}
	})
}
