// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

// Package models defines the domain types shared across Floodwatch:
// sensor readings, alerts, chat messages, and users.
package models

import "time"

// AlertLevel is the closed set of alert severities derived from readings or
// raised manually by operators.
type AlertLevel string

const (
	AlertLevelInfo     AlertLevel = "info"
	AlertLevelWarning  AlertLevel = "warning"
	AlertLevelCritical AlertLevel = "critical"
)

// Valid reports whether the level belongs to the closed set.
func (l AlertLevel) Valid() bool {
	switch l {
	case AlertLevelInfo, AlertLevelWarning, AlertLevelCritical:
		return true
	}
	return false
}

// SensorReading is one persisted water-level/rainfall measurement.
type SensorReading struct {
	ID         int64     `json:"id"`
	SensorID   string    `json:"sensor_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	WaterLevel float64   `json:"water_level"`
	Rainfall   float64   `json:"rainfall"`
	Timestamp  time.Time `json:"timestamp"`
}

// ReadingDraft is an inbound sensor reading before persistence assigns an id
// and timestamp.
type ReadingDraft struct {
	SensorID   string  `json:"sensor_id" validate:"required,max=64"`
	Latitude   float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude  float64 `json:"longitude" validate:"min=-180,max=180"`
	WaterLevel float64 `json:"water_level" validate:"min=0"`
	Rainfall   float64 `json:"rainfall" validate:"min=0"`
}

// Alert is a persisted alert, either derived from a reading crossing a
// threshold or raised manually.
type Alert struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Level       AlertLevel `json:"level"`
	SensorID    string     `json:"sensor_id,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
	IsResolved  bool       `json:"is_resolved"`
}

// AlertDraft is an alert before persistence.
type AlertDraft struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Level       AlertLevel `json:"level" validate:"required"`
	SensorID    string     `json:"sensor_id,omitempty" validate:"max=64"`
}

// Message is a persisted chat message, joined with its author's username.
type Message struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// User is a registered account. HashedPassword never leaves the store layer.
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	HashedPassword string `json:"-"`
	Role           Role   `json:"role"`
}

// RiskPoint is one entry of the risk map: the latest reading of a sensor
// classified into a risk band.
type RiskPoint struct {
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	RiskLevel   string    `json:"risk_level"`
	WaterLevel  float64   `json:"water_level"`
	SensorID    string    `json:"sensor_id"`
	LastUpdated time.Time `json:"last_updated"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

// RegisterRequest carries a registration request. Role is parsed against the
// closed role set by the handler.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=256"`
	Role     string `json:"role" validate:"required"`
}

// TokenResponse is the login response body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserOut is the public projection of a user.
type UserOut struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
