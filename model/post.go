package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a published image entry in the global feed collection. Its
// ID is the push key shared with the blob objects backing the image.
type Post struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	Nickname  string    `json:"nickname" db:"nickname"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
