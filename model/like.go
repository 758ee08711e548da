package models

import (
	"time"

	"github.com/google/uuid"
)

// Like marks one image URL as liked by one account. There is no unique
// constraint on (account_id, image_url): two racing like calls can both
// insert, matching the client's behavior.
type Like struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
