// Package models defines server-side data models persisted in the database.
package models

import "time"

// RefreshToken is one outstanding rotation right. JWTID is the jti of the
// access token issued together with it. IsUsed and IsRevoked only ever move
// from false to true.
type RefreshToken struct {
	ID        int64
	UserID    string
	Token     string
	JWTID     string
	IsUsed    bool
	IsRevoked bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the record is past its expiry at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
