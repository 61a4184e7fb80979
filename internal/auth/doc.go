// Floodwatch - Real-Time Flood Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/floodwatch-io/floodwatch

// Package auth implements authentication for HTTP routes and the chat
// WebSocket channel.
//
// Access tokens are stateless HS256 JWTs issued on login and validated by
// JWTManager. The Verifier interface abstracts credential verification so
// transports depend on the contract, not the JWT mechanics; TokenVerifier
// is the production implementation, resolving token subjects against the
// user store and converting the role claim into the closed role set at
// this single boundary.
//
// Verification failures map onto sentinel errors (ErrMalformedCredential,
// ErrExpiredCredential, ErrUnknownSubject, ErrUnrecognizedRole) so callers
// can pick rejection behavior without string matching.
package auth
