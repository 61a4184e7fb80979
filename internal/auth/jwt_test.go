// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/floodwatch-io/floodwatch/internal/config"
	"github.com/floodwatch-io/floodwatch/internal/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T, ttl time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret, TokenTTL: ttl})
	if err != nil {
		t.Fatalf("NewJWTManager failed: %v", err)
	}
	return m
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	if _, err := NewJWTManager(&config.SecurityConfig{}); err == nil {
		t.Fatal("empty secret should fail")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newTestManager(t, 30*time.Minute)

	token, err := m.GenerateToken("somsak", models.RoleCommander)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Username != "somsak" {
		t.Errorf("username = %q, want somsak", claims.Username)
	}
	if claims.Role != "commander" {
		t.Errorf("role = %q, want commander", claims.Role)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > 30*time.Minute {
		t.Errorf("unexpected expiry: %v", claims.ExpiresAt)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	m := newTestManager(t, -time.Minute)

	token, err := m.GenerateToken("somsak", models.RoleViewer)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := m.ValidateToken(token); err == nil {
		t.Fatal("expired token should fail validation")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := newTestManager(t, 30*time.Minute)
	token, err := m.GenerateToken("somsak", models.RoleViewer)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	other, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret: "another-secret-another-secret-32", TokenTTL: 30 * time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("token signed with a different secret should fail")
	}
}

func TestValidateMalformedToken(t *testing.T) {
	m := newTestManager(t, 30*time.Minute)

	for _, token := range []string{"", "not-a-token", "a.b.c", strings.Repeat("x", 500)} {
		if _, err := m.ValidateToken(token); err == nil {
			t.Errorf("token %q should fail validation", token)
		}
	}
}

func TestValidateRejectsUnsignedToken(t *testing.T) {
	m := newTestManager(t, 30*time.Minute)

	// Header {"alg":"none","typ":"JWT"} with arbitrary claims and no signature.
	unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
		"eyJ1c2VybmFtZSI6ImFkbWluIiwicm9sZSI6ImFkbWluIn0."
	if _, err := m.ValidateToken(unsigned); err == nil {
		t.Fatal("alg=none token should fail validation")
	}
}
