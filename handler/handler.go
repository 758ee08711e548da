package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	models "github.com/Xaroyw/ArtCore/model"
	"github.com/Xaroyw/ArtCore/pkg/apperr"
	"github.com/Xaroyw/ArtCore/service"
)

// The handler layer consumes the stores through narrow interfaces so
// screens-worth of endpoints stay decoupled from the concrete wiring.

type IdentityAPI interface {
	SignUp(ctx context.Context, email, password, nickname string) (*service.AuthResult, error)
	SignIn(ctx context.Context, identifier, password string) (*service.AuthResult, error)
	Reauthenticate(ctx context.Context, accountID uuid.UUID, password string) error
	ChangePassword(ctx context.Context, accountID uuid.UUID, currentPassword, newPassword string) error
	Refresh(ctx context.Context, refreshToken string) (*service.AuthResult, error)
	SignOut(ctx context.Context, refreshToken string)
}

type ProfileAPI interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Account, error)
	UpdateNickname(ctx context.Context, id uuid.UUID, newNickname string) error
	Subscribe(ctx context.Context, id uuid.UUID) (*service.Subscription, error)
}

type FeedAPI interface {
	ListFeed(ctx context.Context, excludeNickname string) ([]models.Post, error)
	CountAll(ctx context.Context) (int, error)
}

type LikeAPI interface {
	IsLiked(ctx context.Context, accountID uuid.UUID, imageURL string) (bool, error)
	Like(ctx context.Context, accountID uuid.UUID, imageURL string) error
	Unlike(ctx context.Context, accountID uuid.UUID, imageURL string) error
	ListLiked(ctx context.Context, accountID uuid.UUID) ([]string, error)
}

type MediaAPI interface {
	UploadPost(ctx context.Context, data []byte, accountID uuid.UUID, nickname string) (*service.UploadResult, error)
	DeletePost(ctx context.Context, imageURL string, accountID uuid.UUID, nickname string) ([]string, error)
	UploadAvatar(ctx context.Context, data []byte, accountID uuid.UUID) (string, error)
	ReconcileOrphans(ctx context.Context) ([]string, error)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Every failure
// comes back as a payload the client shows as a transient notice; none
// escalates past the request.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindAuth:
		status = http.StatusUnauthorized
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindTransfer:
		status = http.StatusBadGateway
	case apperr.KindNetwork:
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]string{
		"error": apperr.Message(err),
		"kind":  apperr.KindOf(err).String(),
	})
}

func wrapValidation(message string, err error) error {
	return apperr.Wrap(apperr.KindValidation, message, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return false
	}
	return true
}
