package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	models "github.com/Xaroyw/ArtCore/model"
	"github.com/Xaroyw/ArtCore/pkg/apperr"
	"github.com/Xaroyw/ArtCore/repository"
)

// LikeService maintains each account's set of liked image URLs.
type LikeService struct {
	likes repository.LikeRepository
}

func NewLikeService(likes repository.LikeRepository) *LikeService {
	return &LikeService{likes: likes}
}

func (s *LikeService) IsLiked(ctx context.Context, accountID uuid.UUID, imageURL string) (bool, error) {
	liked, err := s.likes.Exists(ctx, accountID, imageURL)
	if err != nil {
		return false, apperr.Wrap(apperr.KindNetwork, "failed to check like", err)
	}
	return liked, nil
}

// Like appends with a fresh key. No duplicate check runs first, so two
// racing calls can both insert; the client tolerates that.
func (s *LikeService) Like(ctx context.Context, accountID uuid.UUID, imageURL string) error {
	if imageURL == "" {
		return apperr.New(apperr.KindValidation, "image url is required")
	}

	like := &models.Like{
		ID:        uuid.New(),
		AccountID: accountID,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}
	if err := s.likes.Create(ctx, like); err != nil {
		return apperr.Wrap(apperr.KindNetwork, "failed to like image", err)
	}
	return nil
}

// Unlike removes the first matching entry; unliking an image that was
// never liked is a no-op.
func (s *LikeService) Unlike(ctx context.Context, accountID uuid.UUID, imageURL string) error {
	if err := s.likes.DeleteFirstMatch(ctx, accountID, imageURL); err != nil {
		return apperr.Wrap(apperr.KindNetwork, "failed to unlike image", err)
	}
	return nil
}

// ListLiked returns the image URLs the account has liked, oldest first.
func (s *LikeService) ListLiked(ctx context.Context, accountID uuid.UUID) ([]string, error) {
	likes, err := s.likes.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, "failed to list likes", err)
	}

	urls := make([]string, 0, len(likes))
	for _, like := range likes {
		urls = append(urls, like.ImageURL)
	}
	return urls, nil
}
