// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/floodwatch-io/floodwatch/internal/metrics"
	"github.com/floodwatch-io/floodwatch/internal/models"
)

// CreateUser inserts a new account and returns it with its assigned id.
// Returns ErrUsernameTaken when the username exists.
func (db *DB) CreateUser(ctx context.Context, username, hashedPassword string, role models.Role) (*models.User, error) {
	start := time.Now()

	var id int64
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO users (username, hashed_password, role) VALUES (?, ?, ?) RETURNING id`,
		username, hashedPassword, role.String(),
	).Scan(&id)
	metrics.RecordDBQuery("insert", "users", time.Since(start), err)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:             id,
		Username:       username,
		HashedPassword: hashedPassword,
		Role:           role,
	}, nil
}

// GetUserByUsername looks up an account by username. Returns ErrNotFound
// for unknown usernames.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	start := time.Now()

	var user models.User
	var role string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, hashed_password, role FROM users WHERE username = ?`,
		username,
	).Scan(&user.ID, &user.Username, &user.HashedPassword, &role)
	metrics.RecordDBQuery("select", "users", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	parsed, err := models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("stored role for %s: %w", username, err)
	}
	user.Role = parsed

	return &user, nil
}

// isUniqueViolation reports whether an insert failed on a unique constraint.
// DuckDB surfaces these as constraint errors without a dedicated type.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique") || strings.Contains(msg, "constraint")
}
