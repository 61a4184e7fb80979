// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testSecret satisfies the minimum length and placeholder checks.
const testSecret = "0123456789abcdef0123456789abcdef"

func validTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = testSecret
	return cfg
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Alerts.WarningLevel != 5.0 {
		t.Errorf("default warning level = %v, want 5.0", cfg.Alerts.WarningLevel)
	}
	if cfg.Alerts.CriticalLevel != 7.0 {
		t.Errorf("default critical level = %v, want 7.0", cfg.Alerts.CriticalLevel)
	}
	if cfg.API.DefaultPageSize != 50 {
		t.Errorf("default page size = %d, want 50", cfg.API.DefaultPageSize)
	}
	if cfg.API.MaxPageSize != 200 {
		t.Errorf("max page size = %d, want 200", cfg.API.MaxPageSize)
	}
	if cfg.WebSocket.SendQueueSize != 256 {
		t.Errorf("send queue size = %d, want 256", cfg.WebSocket.SendQueueSize)
	}
	if !cfg.WebSocket.EvictOnFullSend {
		t.Error("eviction should default to enabled")
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults with a secret should validate, got: %v", err)
	}
}

func TestValidateJWTSecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr string
	}{
		{"missing", "", "JWT_SECRET is required"},
		{"too short", "short", "at least 32 characters"},
		{"placeholder", "CHANGEME_CHANGEME_CHANGEME_CHANGEME", "placeholder"},
		{"valid", testSecret, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Security.JWTSecret = tt.secret
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAlertThresholdOrdering(t *testing.T) {
	cfg := validTestConfig()
	cfg.Alerts.WarningLevel = 8.0
	cfg.Alerts.CriticalLevel = 7.0

	if err := cfg.Validate(); err == nil {
		t.Fatal("critical <= warning should fail validation")
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := validTestConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("port 0 should fail validation")
	}
}

func TestValidateWildcardCORSInProduction(t *testing.T) {
	cfg := validTestConfig()
	cfg.Server.Environment = "production"
	cfg.Security.CORSOrigins = []string{"*"}

	if err := cfg.Validate(); err == nil {
		t.Fatal("wildcard CORS in production should fail validation")
	}

	cfg.Security.CORSOrigins = []string{"https://dashboard.example.com"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("explicit origins in production should validate, got: %v", err)
	}
}

func TestValidateRateLimitBounds(t *testing.T) {
	cfg := validTestConfig()
	cfg.Security.RateLimitReqs = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero rate limit should fail validation")
	}

	cfg.Security.RateLimitOff = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled rate limit should skip bounds check, got: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("ALERT_WARNING_LEVEL", "4.5")
	t.Setenv("ALERT_CRITICAL_LEVEL", "6.5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Alerts.WarningLevel != 4.5 {
		t.Errorf("warning level = %v, want 4.5", cfg.Alerts.WarningLevel)
	}
	if cfg.Alerts.CriticalLevel != 6.5 {
		t.Errorf("critical level = %v, want 6.5", cfg.Alerts.CriticalLevel)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("cors origins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i, origin := range want {
		if cfg.Security.CORSOrigins[i] != origin {
			t.Errorf("cors origin[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], origin)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 8765
alerts:
  warning_level: 3.0
  critical_level: 5.5
websocket:
  send_queue_size: 64
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8765 {
		t.Errorf("port = %d, want 8765", cfg.Server.Port)
	}
	if cfg.Alerts.WarningLevel != 3.0 {
		t.Errorf("warning level = %v, want 3.0", cfg.Alerts.WarningLevel)
	}
	if cfg.WebSocket.SendQueueSize != 64 {
		t.Errorf("send queue size = %d, want 64", cfg.WebSocket.SendQueueSize)
	}
	// Unset keys keep their defaults.
	if cfg.API.DefaultPageSize != 50 {
		t.Errorf("default page size = %d, want 50", cfg.API.DefaultPageSize)
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8765\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100 (env should win over file)", cfg.Server.Port)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"ALERT_WARNING_LEVEL", "alerts.warning_level"},
		{"WS_SEND_QUEUE_SIZE", "websocket.send_queue_size"},
		{"LOG_FORMAT", "logging.format"},
		{"PATH", ""},
		{"RANDOM_UNRELATED_VAR", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestEnvironmentDetection(t *testing.T) {
	cfg := validTestConfig()

	cfg.Server.Environment = "production"
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Error("production environment misdetected")
	}

	cfg.Server.Environment = "development"
	if cfg.IsProduction() || !cfg.IsDevelopment() {
		t.Error("development environment misdetected")
	}

	cfg.Server.Environment = ""
	if !cfg.IsDevelopment() {
		t.Error("empty environment should count as development")
	}
}

func TestWebSocketValidation(t *testing.T) {
	cfg := validTestConfig()
	cfg.WebSocket.SendQueueSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero send queue should fail validation")
	}

	cfg = validTestConfig()
	cfg.WebSocket.ChatRatePerSec = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative chat rate should fail validation")
	}
}

func TestBreakerDefaults(t *testing.T) {
	cfg := defaultConfig()
	if !cfg.Database.BreakerEnabled {
		t.Error("breaker should default to enabled")
	}
	if cfg.Database.BreakerThreshold != 5 {
		t.Errorf("breaker threshold = %d, want 5", cfg.Database.BreakerThreshold)
	}
	if cfg.Database.BreakerCooldown != 30*time.Second {
		t.Errorf("breaker cooldown = %v, want 30s", cfg.Database.BreakerCooldown)
	}
}
