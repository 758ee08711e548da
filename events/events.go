package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	PostCreated    = "post.created"
	PostDeleted    = "post.deleted"
	ProfileUpdated = "profile.updated"
)

// Event payloads
type PostCreatedEvent struct {
	PostID    uuid.UUID `json:"post_id"`
	AccountID uuid.UUID `json:"account_id"`
	ImageURL  string    `json:"image_url"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}

type PostDeletedEvent struct {
	PostID    uuid.UUID `json:"post_id"`
	AccountID uuid.UUID `json:"account_id"`
	ImageURL  string    `json:"image_url"`
	DeletedAt time.Time `json:"deleted_at"`
}

type ProfileUpdatedEvent struct {
	AccountID uuid.UUID `json:"account_id"`
	Nickname  string    `json:"nickname"`
	UpdatedAt time.Time `json:"updated_at"`
}
