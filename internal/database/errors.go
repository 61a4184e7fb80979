// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package database

import "errors"

// Sentinel errors returned by store operations. Handlers branch on these to
// pick status codes without inspecting messages.
var (
	ErrNotFound        = errors.New("record not found")
	ErrUsernameTaken   = errors.New("username already registered")
	ErrAlreadyResolved = errors.New("alert already resolved")
)
