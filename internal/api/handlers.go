// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package api

import (
	"context"

	"github.com/floodwatch-io/floodwatch/internal/alerting"
	"github.com/floodwatch-io/floodwatch/internal/auth"
	"github.com/floodwatch-io/floodwatch/internal/config"
	"github.com/floodwatch-io/floodwatch/internal/models"
)

// UserStore is the account persistence the handlers need.
type UserStore interface {
	CreateUser(ctx context.Context, username, hashedPassword string, role models.Role) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// ReadingWriter persists inbound readings. In production it is the circuit
// breaker wrapper around the store.
type ReadingWriter interface {
	CreateReading(ctx context.Context, draft *models.ReadingDraft) (*models.SensorReading, error)
}

// ReadingStore serves reading queries.
type ReadingStore interface {
	LatestReadings(ctx context.Context, limit int) ([]models.SensorReading, error)
	LatestPerSensor(ctx context.Context) ([]models.SensorReading, error)
	ReadingsInRadius(ctx context.Context, lat, lon, radiusKm, minWaterLevel float64) ([]models.SensorReading, error)
}

// AlertStore is the alert persistence the handlers need.
type AlertStore interface {
	CreateAlert(ctx context.Context, draft *models.AlertDraft) (*models.Alert, error)
	Alerts(ctx context.Context, skip, limit int) ([]models.Alert, error)
	GetAlert(ctx context.Context, id int64) (*models.Alert, error)
	LatestUnresolvedAlerts(ctx context.Context, count int) ([]models.Alert, error)
	ResolveAlert(ctx context.Context, id int64) (*models.Alert, error)
	DeleteAlert(ctx context.Context, id int64) error
}

// MessageStore serves chat history.
type MessageStore interface {
	Messages(ctx context.Context, skip, limit int) ([]models.Message, error)
}

// Broadcaster pushes events to the real-time layer. All methods are
// fire-and-forget.
type Broadcaster interface {
	BroadcastSensorUpdate(reading *models.SensorReading)
	BroadcastNewAlert(alert *models.Alert)
	BroadcastAlertResolved(alert *models.Alert)
}

// Handler implements the HTTP endpoints.
type Handler struct {
	users     UserStore
	writer    ReadingWriter
	readings  ReadingStore
	alerts    AlertStore
	messages  MessageStore
	hasher    *auth.PasswordHasher
	tokens    *auth.JWTManager
	evaluator *alerting.Evaluator
	hub       Broadcaster
	pinger    Pinger
	cfg       *config.APIConfig
}

// HandlerDeps bundles the dependencies of the handler set.
type HandlerDeps struct {
	Users     UserStore
	Writer    ReadingWriter
	Readings  ReadingStore
	Alerts    AlertStore
	Messages  MessageStore
	Hasher    *auth.PasswordHasher
	Tokens    *auth.JWTManager
	Evaluator *alerting.Evaluator
	Hub       Broadcaster
	Pinger    Pinger
	Config    *config.APIConfig
}

// NewHandler wires the endpoint handlers.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		users:     deps.Users,
		writer:    deps.Writer,
		readings:  deps.Readings,
		alerts:    deps.Alerts,
		messages:  deps.Messages,
		hasher:    deps.Hasher,
		tokens:    deps.Tokens,
		evaluator: deps.Evaluator,
		hub:       deps.Hub,
		pinger:    deps.Pinger,
		cfg:       deps.Config,
	}
}
