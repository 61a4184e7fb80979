// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/floodwatch-io/floodwatch/internal/models"
)

// Sentinel errors returned by credential verification. Callers branch on
// these to pick the right rejection behavior without inspecting messages.
var (
	ErrMalformedCredential = errors.New("malformed credential")
	ErrExpiredCredential   = errors.New("expired credential")
	ErrUnknownSubject      = errors.New("unknown subject")
	ErrUnrecognizedRole    = errors.New("unrecognized role")
)

// Identity is the authenticated principal attached to a request or a chat
// connection. Role is already a member of the closed role set.
type Identity struct {
	UserID   int64
	Username string
	Role     models.Role
}

// Verifier turns a bearer credential into an Identity. The websocket chat
// endpoint and the HTTP middleware both depend on this interface rather
// than on the JWT implementation.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

// UserSource is the subset of the store needed to resolve token subjects.
type UserSource interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenVerifier validates JWT credentials against the signing secret and
// resolves the subject through the user store.
type TokenVerifier struct {
	manager *JWTManager
	users   UserSource
}

// NewTokenVerifier creates a Verifier backed by the given token manager and
// user source.
func NewTokenVerifier(manager *JWTManager, users UserSource) *TokenVerifier {
	return &TokenVerifier{manager: manager, users: users}
}

// Verify validates the credential and resolves it to an Identity. The role
// string inside the token is converted exactly once here; everything past
// this boundary works with models.Role.
func (v *TokenVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	if credential == "" {
		return nil, ErrMalformedCredential
	}

	claims, err := v.manager.ValidateToken(credential)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %s", ErrExpiredCredential, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedCredential, err)
	}

	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnrecognizedRole, claims.Role)
	}

	user, err := v.users.GetUserByUsername(ctx, claims.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubject, claims.Username)
	}

	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     role,
	}, nil
}
