package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshSession is a server-side record of an issued refresh token.
// Sign-out revokes one; a password change revokes all for the account.
type RefreshSession struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	IsRevoked bool      `json:"is_revoked" db:"is_revoked"`
}
