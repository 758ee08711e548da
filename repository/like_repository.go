package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	models "github.com/Xaroyw/ArtCore/model"
)

type LikeRepository interface {
	Create(ctx context.Context, like *models.Like) error
	DeleteFirstMatch(ctx context.Context, accountID uuid.UUID, imageURL string) error
	Exists(ctx context.Context, accountID uuid.UUID, imageURL string) (bool, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Like, error)
}

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Create inserts the like without checking for an existing duplicate.
func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	query := `
		INSERT INTO likes (id, account_id, image_url, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, like.ID, like.AccountID, like.ImageURL, like.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create like: %w", err)
	}
	return nil
}

// DeleteFirstMatch removes the oldest like matching the URL. Removing
// a like that does not exist is a no-op.
func (r *likeRepository) DeleteFirstMatch(ctx context.Context, accountID uuid.UUID, imageURL string) error {
	query := `
		DELETE FROM likes
		WHERE id IN (
			SELECT id FROM likes
			WHERE account_id = $1 AND image_url = $2
			ORDER BY id
			LIMIT 1
		)
	`

	_, err := r.db.ExecContext(ctx, query, accountID, imageURL)
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}

func (r *likeRepository) Exists(ctx context.Context, accountID uuid.UUID, imageURL string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM likes
			WHERE account_id = $1 AND image_url = $2
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, accountID, imageURL)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return exists, nil
}

func (r *likeRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Like, error) {
	query := `
		SELECT id, account_id, image_url, created_at
		FROM likes
		WHERE account_id = $1
		ORDER BY id
	`

	var likes []models.Like
	err := r.db.SelectContext(ctx, &likes, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	return likes, nil
}
