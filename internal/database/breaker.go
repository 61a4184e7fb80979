// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package database

import (
	"context"

	"github.com/sony/gobreaker/v2"

	"github.com/floodwatch-io/floodwatch/internal/config"
	"github.com/floodwatch-io/floodwatch/internal/logging"
	"github.com/floodwatch-io/floodwatch/internal/metrics"
	"github.com/floodwatch-io/floodwatch/internal/models"
)

const breakerName = "reading-writes"

// ReadingWriter is the write path guarded by the circuit breaker.
type ReadingWriter interface {
	CreateReading(ctx context.Context, draft *models.ReadingDraft) (*models.SensorReading, error)
}

// BreakerWriter wraps reading writes with a circuit breaker so a failing
// storage backend sheds ingest load fast instead of queueing timeouts.
type BreakerWriter struct {
	inner ReadingWriter
	cb    *gobreaker.CircuitBreaker[*models.SensorReading]
}

// NewBreakerWriter creates a breaker around the given writer. The circuit
// opens after the configured number of consecutive failures and probes
// again after the cooldown.
func NewBreakerWriter(inner ReadingWriter, cfg *config.DatabaseConfig) *BreakerWriter {
	metrics.BreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*models.SensorReading](gobreaker.Settings{
		Name:    breakerName,
		Timeout: cfg.BreakerCooldown,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("circuit breaker state transition")
			metrics.BreakerState.WithLabelValues(name).Set(stateToGaugeValue(to))
		},
	})

	return &BreakerWriter{inner: inner, cb: cb}
}

// CreateReading executes the write through the breaker. When the circuit is
// open the write is rejected immediately with gobreaker.ErrOpenState.
func (b *BreakerWriter) CreateReading(ctx context.Context, draft *models.ReadingDraft) (*models.SensorReading, error) {
	reading, err := b.cb.Execute(func() (*models.SensorReading, error) {
		return b.inner.CreateReading(ctx, draft)
	})

	switch {
	case err == nil:
		metrics.BreakerRequests.WithLabelValues(breakerName, "success").Inc()
	case err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests:
		metrics.BreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
	default:
		metrics.BreakerRequests.WithLabelValues(breakerName, "failure").Inc()
	}

	return reading, err
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	}
	return "unknown"
}

func stateToGaugeValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return -1
}
