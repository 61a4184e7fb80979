// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package api

import (
	"errors"
	"net/http"

	"github.com/floodwatch-io/floodwatch/internal/auth"
	"github.com/floodwatch-io/floodwatch/internal/database"
	"github.com/floodwatch-io/floodwatch/internal/logging"
	"github.com/floodwatch-io/floodwatch/internal/models"
	"github.com/floodwatch-io/floodwatch/internal/validation"
)

// Login verifies credentials and issues a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError("Invalid login request", verr.ToAPIError())
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Same response as a wrong password so usernames can't be probed.
			rw.Unauthorized("Incorrect username or password")
			return
		}
		rw.DatabaseError(err)
		return
	}

	if !h.hasher.Check(user.HashedPassword, req.Password) {
		logging.Ctx(r.Context()).Warn().
			Str("username", req.Username).
			Msg("failed login attempt")
		rw.Unauthorized("Incorrect username or password")
		return
	}

	token, err := h.tokens.GenerateToken(user.Username, user.Role)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("token generation failed")
		rw.InternalError("Could not issue token")
		return
	}

	rw.Success(models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Register creates a new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError("Invalid registration request", verr.ToAPIError())
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		rw.BadRequest("Unknown role: " + req.Role)
		return
	}

	hashed, err := h.hasher.Hash(req.Password)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("password hashing failed")
		rw.InternalError("Could not register user")
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Username, hashed, role)
	if err != nil {
		if errors.Is(err, database.ErrUsernameTaken) {
			rw.Conflict("Username already registered")
			return
		}
		rw.DatabaseError(err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("username", user.Username).
		Str("role", string(user.Role)).
		Msg("user registered")

	rw.Created(models.UserOut{ID: user.ID, Username: user.Username, Role: user.Role})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		rw.Unauthorized("Missing bearer token")
		return
	}

	rw.Success(models.UserOut{
		ID:       identity.UserID,
		Username: identity.Username,
		Role:     identity.Role,
	})
}
