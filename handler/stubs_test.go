package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	models "github.com/Xaroyw/ArtCore/model"
	"github.com/Xaroyw/ArtCore/pkg/jwt"
	"github.com/Xaroyw/ArtCore/service"
)

// Function-field stubs for the store interfaces. Unset fields panic,
// which points straight at the endpoint under test.

type stubIdentity struct {
	signUp         func(ctx context.Context, email, password, nickname string) (*service.AuthResult, error)
	signIn         func(ctx context.Context, identifier, password string) (*service.AuthResult, error)
	reauthenticate func(ctx context.Context, accountID uuid.UUID, password string) error
	changePassword func(ctx context.Context, accountID uuid.UUID, currentPassword, newPassword string) error
	refresh        func(ctx context.Context, refreshToken string) (*service.AuthResult, error)
	signOut        func(ctx context.Context, refreshToken string)
}

func (s *stubIdentity) SignUp(ctx context.Context, email, password, nickname string) (*service.AuthResult, error) {
	return s.signUp(ctx, email, password, nickname)
}

func (s *stubIdentity) SignIn(ctx context.Context, identifier, password string) (*service.AuthResult, error) {
	return s.signIn(ctx, identifier, password)
}

func (s *stubIdentity) Reauthenticate(ctx context.Context, accountID uuid.UUID, password string) error {
	return s.reauthenticate(ctx, accountID, password)
}

func (s *stubIdentity) ChangePassword(ctx context.Context, accountID uuid.UUID, currentPassword, newPassword string) error {
	return s.changePassword(ctx, accountID, currentPassword, newPassword)
}

func (s *stubIdentity) Refresh(ctx context.Context, refreshToken string) (*service.AuthResult, error) {
	return s.refresh(ctx, refreshToken)
}

func (s *stubIdentity) SignOut(ctx context.Context, refreshToken string) {
	s.signOut(ctx, refreshToken)
}

type stubProfile struct {
	getProfile     func(ctx context.Context, id uuid.UUID) (*models.Account, error)
	updateNickname func(ctx context.Context, id uuid.UUID, newNickname string) error
	subscribe      func(ctx context.Context, id uuid.UUID) (*service.Subscription, error)
}

func (s *stubProfile) GetProfile(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.getProfile(ctx, id)
}

func (s *stubProfile) UpdateNickname(ctx context.Context, id uuid.UUID, newNickname string) error {
	return s.updateNickname(ctx, id, newNickname)
}

func (s *stubProfile) Subscribe(ctx context.Context, id uuid.UUID) (*service.Subscription, error) {
	return s.subscribe(ctx, id)
}

type stubFeed struct {
	listFeed func(ctx context.Context, excludeNickname string) ([]models.Post, error)
	countAll func(ctx context.Context) (int, error)
}

func (s *stubFeed) ListFeed(ctx context.Context, excludeNickname string) ([]models.Post, error) {
	return s.listFeed(ctx, excludeNickname)
}

func (s *stubFeed) CountAll(ctx context.Context) (int, error) {
	return s.countAll(ctx)
}

type stubLike struct {
	isLiked   func(ctx context.Context, accountID uuid.UUID, imageURL string) (bool, error)
	like      func(ctx context.Context, accountID uuid.UUID, imageURL string) error
	unlike    func(ctx context.Context, accountID uuid.UUID, imageURL string) error
	listLiked func(ctx context.Context, accountID uuid.UUID) ([]string, error)
}

func (s *stubLike) IsLiked(ctx context.Context, accountID uuid.UUID, imageURL string) (bool, error) {
	return s.isLiked(ctx, accountID, imageURL)
}

func (s *stubLike) Like(ctx context.Context, accountID uuid.UUID, imageURL string) error {
	return s.like(ctx, accountID, imageURL)
}

func (s *stubLike) Unlike(ctx context.Context, accountID uuid.UUID, imageURL string) error {
	return s.unlike(ctx, accountID, imageURL)
}

func (s *stubLike) ListLiked(ctx context.Context, accountID uuid.UUID) ([]string, error) {
	return s.listLiked(ctx, accountID)
}

type stubMedia struct {
	uploadPost       func(ctx context.Context, data []byte, accountID uuid.UUID, nickname string) (*service.UploadResult, error)
	deletePost       func(ctx context.Context, imageURL string, accountID uuid.UUID, nickname string) ([]string, error)
	uploadAvatar     func(ctx context.Context, data []byte, accountID uuid.UUID) (string, error)
	reconcileOrphans func(ctx context.Context) ([]string, error)
}

func (s *stubMedia) UploadPost(ctx context.Context, data []byte, accountID uuid.UUID, nickname string) (*service.UploadResult, error) {
	return s.uploadPost(ctx, data, accountID, nickname)
}

func (s *stubMedia) DeletePost(ctx context.Context, imageURL string, accountID uuid.UUID, nickname string) ([]string, error) {
	return s.deletePost(ctx, imageURL, accountID, nickname)
}

func (s *stubMedia) UploadAvatar(ctx context.Context, data []byte, accountID uuid.UUID) (string, error) {
	return s.uploadAvatar(ctx, data, accountID)
}

func (s *stubMedia) ReconcileOrphans(ctx context.Context) ([]string, error) {
	return s.reconcileOrphans(ctx)
}

type routerFixture struct {
	router    *mux.Router
	manager   *jwt.Manager
	identity  *stubIdentity
	profiles  *stubProfile
	feed      *stubFeed
	likes     *stubLike
	media     *stubMedia
	accountID uuid.UUID
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	f := &routerFixture{
		manager:   jwt.NewManager("test-secret"),
		identity:  &stubIdentity{},
		profiles:  &stubProfile{},
		feed:      &stubFeed{},
		likes:     &stubLike{},
		media:     &stubMedia{},
		accountID: uuid.New(),
	}
	f.router = NewRouter(
		f.manager,
		NewAuthHandler(f.identity),
		NewProfileHandler(f.profiles, f.media),
		NewFeedHandler(f.feed, f.profiles),
		NewLikeHandler(f.likes),
		NewMediaHandler(f.media, f.profiles),
		"",
	)
	return f
}

func (f *routerFixture) token(t *testing.T) string {
	t.Helper()
	token, err := f.manager.Generate(f.accountID.String(), "art1", time.Minute)
	require.NoError(t, err)
	return token
}

func (f *routerFixture) do(t *testing.T, req *http.Request, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token(t))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}
