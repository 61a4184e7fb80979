// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/floodwatch-io/floodwatch/internal/metrics"
	"github.com/floodwatch-io/floodwatch/internal/models"
)

// CreateMessage persists a chat message and returns it joined with the
// author's username.
func (db *DB) CreateMessage(ctx context.Context, userID int64, username, content string) (*models.Message, error) {
	start := time.Now()

	var id int64
	var ts time.Time
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO messages (user_id, content) VALUES (?, ?) RETURNING id, timestamp`,
		userID, content,
	).Scan(&id, &ts)
	metrics.RecordDBQuery("insert", "messages", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	return &models.Message{
		ID:        id,
		UserID:    userID,
		Username:  username,
		Content:   content,
		Timestamp: ts,
	}, nil
}

// Messages returns chat history in chronological order, with offset-based
// paging.
func (db *DB) Messages(ctx context.Context, skip, limit int) ([]models.Message, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, m.user_id, u.username, m.content, m.timestamp
		 FROM messages m JOIN users u ON u.id = m.user_id
		 ORDER BY m.timestamp ASC, m.id ASC
		 LIMIT ? OFFSET ?`, limit, skip)
	metrics.RecordDBQuery("select", "messages", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer closeQuietly(rows)

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Username, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("message rows: %w", err)
	}
	return messages, nil
}
