package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/Xaroyw/ArtCore/events"
	models "github.com/Xaroyw/ArtCore/model"
	"github.com/Xaroyw/ArtCore/pkg/apperr"
	"github.com/Xaroyw/ArtCore/repository"
	"github.com/Xaroyw/ArtCore/storage"
)

const avatarThumbnailSize = 300

// MediaEventSink receives post lifecycle events. Satisfied by
// publisher.EventPublisher; may be nil when eventing is disabled.
type MediaEventSink interface {
	PublishPostCreated(event events.PostCreatedEvent) error
	PublishPostDeleted(event events.PostDeletedEvent) error
}

// UploadResult carries the outcome of a post upload: the per-user and
// global download URLs and the shared key under which both blobs and
// the feed record were written.
type UploadResult struct {
	UserURL   string    `json:"user_url"`
	GlobalURL string    `json:"global_url"`
	PostID    uuid.UUID `json:"post_id"`
}

// MediaService moves image bytes into blob storage and keeps the feed
// and profile records that reference them in step. A post upload is a
// four-step sequence with no compensating rollback: a failure partway
// through can leave the earlier writes behind (the per-user blob in
// particular). ReconcileOrphans exists as the maintenance answer.
type MediaService struct {
	blobs     storage.BlobStore
	posts     repository.PostRepository
	accounts  repository.AccountRepository
	profiles  *ProfileService
	feed      *FeedService
	publisher MediaEventSink
}

func NewMediaService(
	blobs storage.BlobStore,
	posts repository.PostRepository,
	accounts repository.AccountRepository,
	profiles *ProfileService,
	feed *FeedService,
	publisher MediaEventSink,
) *MediaService {
	return &MediaService{
		blobs:     blobs,
		posts:     posts,
		accounts:  accounts,
		profiles:  profiles,
		feed:      feed,
		publisher: publisher,
	}
}

// UploadPost stores the same bytes under the account's folder and the
// global folder, then records the post in the feed collection and
// appends the per-user URL to uploadedImages. All four steps share one
// push key. The steps run in order and a later failure does not undo
// an earlier write.
func (s *MediaService) UploadPost(ctx context.Context, data []byte, accountID uuid.UUID, nickname string) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, apperr.New(apperr.KindValidation, "image data is empty")
	}
	if nickname == "" {
		return nil, apperr.New(apperr.KindValidation, "nickname is required")
	}

	key, err := uuid.NewV7()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransfer, "failed to generate upload key", err)
	}

	userURL, err := s.blobs.Put(ctx, userImagePath(nickname, key), data)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransfer, "failed to upload user copy", err)
	}

	globalURL, err := s.blobs.Put(ctx, globalImagePath(key), data)
	if err != nil {
		// The user copy stays behind as an orphan here.
		return nil, apperr.Wrap(apperr.KindTransfer, "failed to upload global copy", err)
	}

	if _, err := s.feed.PublishPost(ctx, key, globalURL, nickname); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.accounts.AppendImage(ctx, &models.UploadedImage{
		ID:        key,
		AccountID: accountID,
		URL:       userURL,
		CreatedAt: now,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransfer, "failed to record uploaded image", err)
	}

	s.emitPostCreated(key, accountID, globalURL, nickname, now)
	s.profiles.NotifyChanged(ctx, accountID)

	return &UploadResult{
		UserURL:   userURL,
		GlobalURL: globalURL,
		PostID:    key,
	}, nil
}

// DeletePost derives the shared key from the URL's trailing path
// segment and removes the two blobs, the uploadedImages entry and the
// feed record. The four deletions are attempted independently: a
// failure is logged and does not stop the rest, and the caller only
// sees the remaining image list.
func (s *MediaService) DeletePost(ctx context.Context, imageURL string, accountID uuid.UUID, nickname string) ([]string, error) {
	key, err := KeyFromURL(imageURL)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "cannot derive key from image url", err)
	}

	if err := s.blobs.Delete(ctx, userImagePath(nickname, key)); err != nil {
		log.Printf("delete post %s: user blob: %v", key, err)
	}
	if err := s.blobs.Delete(ctx, globalImagePath(key)); err != nil {
		log.Printf("delete post %s: global blob: %v", key, err)
	}
	if err := s.accounts.RemoveImage(ctx, accountID, imageURL); err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("delete post %s: image entry: %v", key, err)
	}
	if err := s.feed.DeletePost(ctx, key); err != nil {
		log.Printf("delete post %s: feed record: %v", key, err)
	}

	s.emitPostDeleted(key, accountID, imageURL)
	s.profiles.NotifyChanged(ctx, accountID)

	remaining, err := s.accounts.ListImages(ctx, accountID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransfer, "failed to list remaining images", err)
	}
	if remaining == nil {
		remaining = []string{}
	}
	return remaining, nil
}

// UploadAvatar thumbnails the image and overwrites the account's fixed
// avatar path. There is no versioning; the previous avatar is gone.
func (s *MediaService) UploadAvatar(ctx context.Context, data []byte, accountID uuid.UUID) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "unsupported image data", err)
	}

	thumbnail := resize.Thumbnail(avatarThumbnailSize, avatarThumbnailSize, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumbnail, nil); err != nil {
		return "", apperr.Wrap(apperr.KindTransfer, "failed to encode avatar", err)
	}

	url, err := s.blobs.Put(ctx, avatarPath(accountID), buf.Bytes())
	if err != nil {
		return "", apperr.Wrap(apperr.KindTransfer, "failed to upload avatar", err)
	}

	if err := s.profiles.SetAvatarURL(ctx, accountID, url); err != nil {
		return "", err
	}
	return url, nil
}

// ReconcileOrphans sweeps the global image folder and deletes blobs
// whose feed record is gone, the cleanup for the upload sequence's
// missing rollback. It returns the paths it removed.
func (s *MediaService) ReconcileOrphans(ctx context.Context) ([]string, error) {
	paths, err := s.blobs.List(ctx, "allImages")
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTransfer, "failed to list global images", err)
	}

	var removed []string
	for _, blobPath := range paths {
		key, err := KeyFromURL(blobPath)
		if err != nil {
			log.Printf("reconcile: skipping %s: %v", blobPath, err)
			continue
		}

		_, err = s.posts.GetByID(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return removed, apperr.Wrap(apperr.KindNetwork, "failed to check post record", err)
		}

		if err := s.blobs.Delete(ctx, blobPath); err != nil {
			log.Printf("reconcile: failed to delete orphan %s: %v", blobPath, err)
			continue
		}
		removed = append(removed, blobPath)
	}
	return removed, nil
}

// KeyFromURL parses the push key out of a download URL's trailing path
// segment.
func KeyFromURL(imageURL string) (uuid.UUID, error) {
	base := path.Base(imageURL)
	base = strings.TrimSuffix(base, path.Ext(base))
	key, err := uuid.Parse(base)
	if err != nil {
		return uuid.Nil, fmt.Errorf("no key in %q: %w", imageURL, err)
	}
	return key, nil
}

func userImagePath(nickname string, key uuid.UUID) string {
	return fmt.Sprintf("users/%s/uploadedImages/%s.jpg", nickname, key)
}

func globalImagePath(key uuid.UUID) string {
	return fmt.Sprintf("allImages/%s.jpg", key)
}

func avatarPath(accountID uuid.UUID) string {
	return fmt.Sprintf("profile_images/%s", accountID)
}

func (s *MediaService) emitPostCreated(key, accountID uuid.UUID, imageURL, nickname string, at time.Time) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishPostCreated(events.PostCreatedEvent{
		PostID:    key,
		AccountID: accountID,
		ImageURL:  imageURL,
		Nickname:  nickname,
		CreatedAt: at,
	})
	if err != nil {
		log.Printf("failed to publish post.created for %s: %v", key, err)
	}
}

func (s *MediaService) emitPostDeleted(key, accountID uuid.UUID, imageURL string) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishPostDeleted(events.PostDeletedEvent{
		PostID:    key,
		AccountID: accountID,
		ImageURL:  imageURL,
		DeletedAt: time.Now(),
	})
	if err != nil {
		log.Printf("failed to publish post.deleted for %s: %v", key, err)
	}
}
