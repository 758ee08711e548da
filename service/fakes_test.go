package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Xaroyw/ArtCore/events"
	models "github.com/Xaroyw/ArtCore/model"
	"github.com/Xaroyw/ArtCore/repository"
)

// In-memory doubles for the repository and storage interfaces.

type memAccounts struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]models.Account
	images   map[uuid.UUID][]models.UploadedImage
}

func newMemAccounts() *memAccounts {
	return &memAccounts{
		accounts: make(map[uuid.UUID]models.Account),
		images:   make(map[uuid.UUID][]models.UploadedImage),
	}
}

func (m *memAccounts) Create(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = *account
	return nil
}

func (m *memAccounts) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account: %w", repository.ErrNotFound)
	}
	return &account, nil
}

func (m *memAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.Email == email {
			account := account
			return &account, nil
		}
	}
	return nil, fmt.Errorf("account by email: %w", repository.ErrNotFound)
}

func (m *memAccounts) GetByNickname(ctx context.Context, nickname string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.Nickname == nickname {
			account := account
			return &account, nil
		}
	}
	return nil, fmt.Errorf("account by nickname: %w", repository.ErrNotFound)
}

func (m *memAccounts) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAccounts) EmailExists(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAccounts) UpdateNickname(ctx context.Context, id uuid.UUID, nickname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return fmt.Errorf("account: %w", repository.ErrNotFound)
	}
	account.Nickname = nickname
	account.UpdatedAt = time.Now()
	m.accounts[id] = account
	return nil
}

func (m *memAccounts) UpdateAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return fmt.Errorf("account: %w", repository.ErrNotFound)
	}
	account.AvatarURL = &url
	m.accounts[id] = account
	return nil
}

func (m *memAccounts) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return fmt.Errorf("account: %w", repository.ErrNotFound)
	}
	account.PasswordHash = hash
	m.accounts[id] = account
	return nil
}

func (m *memAccounts) AppendImage(ctx context.Context, image *models.UploadedImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[image.AccountID] = append(m.images[image.AccountID], *image)
	return nil
}

func (m *memAccounts) RemoveImage(ctx context.Context, accountID uuid.UUID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	images := m.images[accountID]
	for i, image := range images {
		if image.URL == url {
			m.images[accountID] = append(images[:i:i], images[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("image entry: %w", repository.ErrNotFound)
}

func (m *memAccounts) ListImages(ctx context.Context, accountID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	images := append([]models.UploadedImage(nil), m.images[accountID]...)
	sort.Slice(images, func(i, j int) bool {
		return images[i].ID.String() < images[j].ID.String()
	})
	urls := make([]string, 0, len(images))
	for _, image := range images {
		urls = append(urls, image.URL)
	}
	return urls, nil
}

type memPosts struct {
	mu    sync.Mutex
	posts map[uuid.UUID]models.Post
}

func newMemPosts() *memPosts {
	return &memPosts{posts: make(map[uuid.UUID]models.Post)}
}

func (m *memPosts) Create(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[post.ID] = *post
	return nil
}

func (m *memPosts) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return nil, fmt.Errorf("post: %w", repository.ErrNotFound)
	}
	return &post, nil
}

func (m *memPosts) ListAll(ctx context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]models.Post, 0, len(m.posts))
	for _, post := range m.posts {
		all = append(all, post)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID.String() < all[j].ID.String()
	})
	return all, nil
}

func (m *memPosts) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, id)
	return nil
}

func (m *memPosts) CountAll(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts), nil
}

type memLikes struct {
	mu    sync.Mutex
	likes []models.Like
}

func newMemLikes() *memLikes {
	return &memLikes{}
}

func (m *memLikes) Create(ctx context.Context, like *models.Like) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.likes = append(m.likes, *like)
	return nil
}

func (m *memLikes) DeleteFirstMatch(ctx context.Context, accountID uuid.UUID, imageURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, like := range m.likes {
		if like.AccountID == accountID && like.ImageURL == imageURL {
			m.likes = append(m.likes[:i:i], m.likes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memLikes) Exists(ctx context.Context, accountID uuid.UUID, imageURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, like := range m.likes {
		if like.AccountID == accountID && like.ImageURL == imageURL {
			return true, nil
		}
	}
	return false, nil
}

func (m *memLikes) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Like, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Like
	for _, like := range m.likes {
		if like.AccountID == accountID {
			out = append(out, like)
		}
	}
	return out, nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]models.RefreshSession
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]models.RefreshSession)}
}

func (m *memSessions) Create(ctx context.Context, session *models.RefreshSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.Token] = *session
	return nil
}

func (m *memSessions) GetByToken(ctx context.Context, token string) (*models.RefreshSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[token]
	if !ok || session.IsRevoked || session.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("session: %w", repository.ErrNotFound)
	}
	return &session, nil
}

func (m *memSessions) Revoke(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[token]; ok {
		session.IsRevoked = true
		m.sessions[token] = session
	}
	return nil
}

func (m *memSessions) RevokeAllForAccount(ctx context.Context, accountID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, session := range m.sessions {
		if session.AccountID == accountID {
			session.IsRevoked = true
			m.sessions[token] = session
		}
	}
	return nil
}

func (m *memSessions) liveCount(accountID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, session := range m.sessions {
		if session.AccountID == accountID && !session.IsRevoked {
			n++
		}
	}
	return n
}

// memBlobs is an in-memory blob store. Puts under failPutPrefix error
// out, for partial-failure scenarios.
type memBlobs struct {
	mu            sync.Mutex
	objects       map[string][]byte
	failPutPrefix string
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: make(map[string][]byte)}
}

func (m *memBlobs) Put(ctx context.Context, path string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPutPrefix != "" && strings.HasPrefix(path, m.failPutPrefix) {
		return "", fmt.Errorf("put %s: injected failure", path)
	}
	m.objects[path] = append([]byte(nil), data...)
	return m.URL(path), nil
}

func (m *memBlobs) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[path]; !ok {
		return fmt.Errorf("delete %s: no such object", path)
	}
	delete(m.objects, path)
	return nil
}

func (m *memBlobs) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var paths []string
	for path := range m.objects {
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (m *memBlobs) URL(path string) string {
	return "http://blobs.test/" + path
}

func (m *memBlobs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// recordSink records published events; implements both event sinks.
type recordSink struct {
	mu       sync.Mutex
	created  []events.PostCreatedEvent
	deleted  []events.PostDeletedEvent
	profiles []events.ProfileUpdatedEvent
}

func (r *recordSink) PublishPostCreated(event events.PostCreatedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, event)
	return nil
}

func (r *recordSink) PublishPostDeleted(event events.PostDeletedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, event)
	return nil
}

func (r *recordSink) PublishProfileUpdated(event events.ProfileUpdatedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = append(r.profiles, event)
	return nil
}
