package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a user's persisted profile record. UploadedImages is
// loaded from the account_images table, ordered by push key.
type Account struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	Nickname       string    `json:"nickname" db:"nickname"`
	AvatarURL      *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
	UploadedImages []string  `json:"uploaded_images" db:"-"`
}

// UploadedImage is one entry of an account's uploadedImages list. The
// ID is the shared push key issued at upload time, so ordering by ID
// reproduces insertion order.
type UploadedImage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	URL       string    `json:"url" db:"url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
