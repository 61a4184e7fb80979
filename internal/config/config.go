// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package config

import "time"

// Config is the complete runtime configuration, assembled from defaults,
// an optional YAML file, and environment variables.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Security  SecurityConfig  `koanf:"security"`
	Alerts    AlertsConfig    `koanf:"alerts"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development or production
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"` // empty or ":memory:" for in-memory
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	// Circuit breaker over sensor-reading writes.
	BreakerEnabled   bool          `koanf:"breaker_enabled"`
	BreakerThreshold uint32        `koanf:"breaker_threshold"` // consecutive failures before opening
	BreakerCooldown  time.Duration `koanf:"breaker_cooldown"`
}

// SecurityConfig holds authentication, CORS and rate-limit settings.
type SecurityConfig struct {
	JWTSecret       string        `koanf:"jwt_secret"`
	TokenTTL        time.Duration `koanf:"token_ttl"`
	BcryptCost      int           `koanf:"bcrypt_cost"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_requests"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	RateLimitOff    bool          `koanf:"rate_limit_disabled"`
}

// AlertsConfig holds the water-level thresholds that drive automatic alerts
// and the risk map classification.
type AlertsConfig struct {
	WarningLevel  float64 `koanf:"warning_level"`  // meters, exclusive lower bound for warnings
	CriticalLevel float64 `koanf:"critical_level"` // meters, exclusive lower bound for criticals
}

// WebSocketConfig holds connection tuning for the broadcast channels.
type WebSocketConfig struct {
	SendQueueSize   int           `koanf:"send_queue_size"`   // per-connection outbound buffer
	PublishQueue    int           `koanf:"publish_queue"`     // hub inbound event buffer
	MaxMessageSize  int64         `koanf:"max_message_size"`  // inbound frame limit, bytes
	WriteTimeout    time.Duration `koanf:"write_timeout"`     // per-frame write deadline
	PongTimeout     time.Duration `koanf:"pong_timeout"`      // read deadline between pongs
	ChatRatePerSec  float64       `koanf:"chat_rate_per_sec"` // inbound chat messages per second
	ChatRateBurst   int           `koanf:"chat_rate_burst"`
	EvictOnFullSend bool          `koanf:"evict_on_full_send"` // drop slow consumers instead of blocking
}

// APIConfig holds query paging defaults.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
