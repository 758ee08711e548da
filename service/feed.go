package service

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	models "github.com/Xaroyw/ArtCore/model"
	"github.com/Xaroyw/ArtCore/pkg/apperr"
	"github.com/Xaroyw/ArtCore/repository"
)

const feedCacheKey = "feed:posts"

// FeedService serves the global append-only post collection. Reads are
// full scans, cached in Redis for a short TTL; presentation order is
// reshuffled on every call so repeated refreshes show the feed in a
// different order.
type FeedService struct {
	posts    repository.PostRepository
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewFeedService creates the feed store. cache may be nil, in which
// case every listing hits the database.
func NewFeedService(posts repository.PostRepository, cache *redis.Client, cacheTTL time.Duration) *FeedService {
	return &FeedService{
		posts:    posts,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// PublishPost appends to the global collection. When id is uuid.Nil a
// fresh push key is generated; the media transfer passes the shared
// key it already issued for the blobs.
func (s *FeedService) PublishPost(ctx context.Context, id uuid.UUID, imageURL, nickname string) (uuid.UUID, error) {
	if imageURL == "" || nickname == "" {
		return uuid.Nil, apperr.New(apperr.KindValidation, "image url and nickname are required")
	}

	if id == uuid.Nil {
		var err error
		id, err = uuid.NewV7()
		if err != nil {
			return uuid.Nil, apperr.Wrap(apperr.KindNetwork, "failed to generate post key", err)
		}
	}

	post := &models.Post{
		ID:        id,
		ImageURL:  imageURL,
		Nickname:  nickname,
		CreatedAt: time.Now(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return uuid.Nil, apperr.Wrap(apperr.KindNetwork, "failed to publish post", err)
	}

	s.InvalidateCache(ctx)
	return id, nil
}

// ListFeed fetches the full collection, drops the caller's own posts
// and returns the rest in randomized order.
func (s *FeedService) ListFeed(ctx context.Context, excludeNickname string) ([]models.Post, error) {
	posts, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	feed := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		if post.Nickname == excludeNickname {
			continue
		}
		feed = append(feed, post)
	}

	rand.Shuffle(len(feed), func(i, j int) {
		feed[i], feed[j] = feed[j], feed[i]
	})
	return feed, nil
}

// DeletePost removes the post when present; deleting an absent post is
// a no-op.
func (s *FeedService) DeletePost(ctx context.Context, id uuid.UUID) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.KindNetwork, "failed to delete post", err)
	}
	s.InvalidateCache(ctx)
	return nil
}

// CountAll returns the collection size, for display only.
func (s *FeedService) CountAll(ctx context.Context) (int, error) {
	count, err := s.posts.CountAll(ctx)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindNetwork, "failed to count posts", err)
	}
	return count, nil
}

// InvalidateCache drops the cached scan. Called locally after writes
// and by the NATS subscriber when another instance publishes a post
// event.
func (s *FeedService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, feedCacheKey).Err(); err != nil {
		log.Printf("feed cache: failed to invalidate: %v", err)
	}
}

func (s *FeedService) loadAll(ctx context.Context) ([]models.Post, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, feedCacheKey).Result()
		if err == nil {
			var posts []models.Post
			if err := json.Unmarshal([]byte(raw), &posts); err == nil {
				return posts, nil
			}
			log.Printf("feed cache: failed to decode cached posts, falling back to database")
		}
	}

	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, "failed to list posts", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(posts); err == nil {
			if err := s.cache.Set(ctx, feedCacheKey, data, s.cacheTTL).Err(); err != nil {
				log.Printf("feed cache: failed to store posts: %v", err)
			}
		}
	}
	return posts, nil
}
