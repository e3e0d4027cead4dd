// Package common defines shared constants and sentinel errors used across
// the todoauth server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Request validation.
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Access token errors (malformed, bad signature, wrong algorithm).
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenStillActive = errors.New("token is still active")

	// Refresh token lifecycle errors.
	ErrTokenNotFound       = errors.New("refresh token not found")
	ErrTokenAlreadyUsed    = errors.New("refresh token already used")
	ErrTokenRevoked        = errors.New("refresh token revoked")
	ErrTokenMismatch       = errors.New("refresh token does not match access token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
