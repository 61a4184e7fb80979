// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/floodwatch-io/floodwatch/internal/logging"
	"github.com/floodwatch-io/floodwatch/internal/models"
)

type contextKey string

// IdentityContextKey holds the authenticated *Identity on request contexts.
const IdentityContextKey contextKey = "identity"

// IdentityFromContext returns the authenticated identity, or nil for
// unauthenticated requests.
func IdentityFromContext(ctx context.Context) *Identity {
	identity, _ := ctx.Value(IdentityContextKey).(*Identity)
	return identity
}

// Middleware enforces bearer-token authentication on HTTP routes.
type Middleware struct {
	verifier Verifier
	onReject func(w http.ResponseWriter, status int, code, message string)
}

// NewMiddleware creates an auth middleware. onReject writes the error
// response so the handler package keeps control of the envelope format.
func NewMiddleware(verifier Verifier, onReject func(w http.ResponseWriter, status int, code, message string)) *Middleware {
	return &Middleware{verifier: verifier, onReject: onReject}
}

// RequireAuth rejects requests without a valid bearer token and attaches
// the resolved Identity to the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := bearerToken(r)
		if credential == "" {
			m.onReject(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
			return
		}

		identity, err := m.verifier.Verify(r.Context(), credential)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("credential rejected")
			m.onReject(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects authenticated requests whose identity is not in the
// allowed set. It must run after RequireAuth.
func (m *Middleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if identity == nil {
				m.onReject(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
				return
			}
			if !identity.Role.In(roles...) {
				m.onReject(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
