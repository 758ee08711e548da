package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	models "github.com/Xaroyw/ArtCore/model"
	"github.com/Xaroyw/ArtCore/pkg/apperr"
	"github.com/Xaroyw/ArtCore/pkg/jwt"
	"github.com/Xaroyw/ArtCore/repository"
)

const minPasswordLength = 6

// AuthResult is returned by every operation that establishes a session.
type AuthResult struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Account      *models.Account `json:"account"`
	ExpiresIn    int             `json:"expires_in"`
}

// IdentityService wraps sign-up, sign-in, re-authentication, password
// change and sign-out. Uniqueness checks and account creation are
// delegated to the profile store.
type IdentityService struct {
	accounts      repository.AccountRepository
	sessions      repository.SessionRepository
	profiles      *ProfileService
	jwtManager    *jwt.Manager
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewIdentityService(
	accounts repository.AccountRepository,
	sessions repository.SessionRepository,
	profiles *ProfileService,
	jwtManager *jwt.Manager,
	accessExpiry, refreshExpiry time.Duration,
) *IdentityService {
	return &IdentityService{
		accounts:      accounts,
		sessions:      sessions,
		profiles:      profiles,
		jwtManager:    jwtManager,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// SignUp registers a new account after the email and nickname
// uniqueness checks pass. The two checks and the write are separate
// round trips; see ProfileService.IsNicknameTaken for the documented
// race.
func (s *IdentityService) SignUp(ctx context.Context, email, password, nickname string) (*AuthResult, error) {
	if !strings.Contains(email, "@") {
		return nil, apperr.New(apperr.KindAuth, "malformed email")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.New(apperr.KindAuth, "password too weak")
	}
	if nickname == "" {
		return nil, apperr.New(apperr.KindValidation, "nickname is required")
	}

	emailTaken, err := s.accounts.EmailExists(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, "failed to check email", err)
	}
	if emailTaken {
		return nil, apperr.New(apperr.KindAuth, "email already registered")
	}

	nicknameTaken, err := s.profiles.IsNicknameTaken(ctx, nickname)
	if err != nil {
		return nil, err
	}
	if nicknameTaken {
		return nil, apperr.New(apperr.KindConflict, "nickname already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAuth, "failed to hash password", err)
	}

	account, err := s.profiles.CreateAccount(ctx, uuid.New(), email, nickname, string(hashed))
	if err != nil {
		return nil, err
	}

	return s.issueSession(ctx, account)
}

// SignIn authenticates by email, or by nickname when the identifier
// contains no "@". A nickname with no match fails with a not-found
// error before any credential check runs.
func (s *IdentityService) SignIn(ctx context.Context, identifier, password string) (*AuthResult, error) {
	email := identifier
	if !strings.Contains(identifier, "@") {
		account, err := s.accounts.GetByNickname(ctx, identifier)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.Wrap(apperr.KindNotFound, "nickname not found", err)
			}
			return nil, apperr.Wrap(apperr.KindNetwork, "failed to resolve nickname", err)
		}
		email = account.Email
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Wrap(apperr.KindAuth, "invalid email or password", err)
		}
		return nil, apperr.Wrap(apperr.KindNetwork, "failed to get account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Wrap(apperr.KindAuth, "invalid email or password", err)
	}

	return s.issueSession(ctx, account)
}

// Reauthenticate verifies the account's current password. Required
// before a password change.
func (s *IdentityService) Reauthenticate(ctx context.Context, accountID uuid.UUID, password string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Wrap(apperr.KindNotFound, "account not found", err)
		}
		return apperr.Wrap(apperr.KindNetwork, "failed to get account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return apperr.Wrap(apperr.KindAuth, "password mismatch", err)
	}
	return nil
}

// ChangePassword re-verifies the current password, rejects an empty or
// unchanged new password, then rewrites the hash and revokes every
// session of the account.
func (s *IdentityService) ChangePassword(ctx context.Context, accountID uuid.UUID, currentPassword, newPassword string) error {
	if err := s.Reauthenticate(ctx, accountID, currentPassword); err != nil {
		return err
	}

	if newPassword == "" {
		return apperr.New(apperr.KindValidation, "new password must not be empty")
	}
	if newPassword == currentPassword {
		return apperr.New(apperr.KindValidation, "new password must differ from the current one")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.KindAuth, "failed to hash password", err)
	}

	if err := s.accounts.UpdatePasswordHash(ctx, accountID, string(hashed)); err != nil {
		return apperr.Wrap(apperr.KindNetwork, "failed to update password", err)
	}

	if err := s.sessions.RevokeAllForAccount(ctx, accountID); err != nil {
		return apperr.Wrap(apperr.KindNetwork, "failed to revoke sessions", err)
	}
	return nil
}

// Refresh rotates a live refresh session into a new token pair.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwtManager.Verify(refreshToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAuth, "invalid refresh token", err)
	}

	if _, err := s.sessions.GetByToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Wrap(apperr.KindAuth, "refresh session expired or revoked", err)
		}
		return nil, apperr.Wrap(apperr.KindNetwork, "failed to get session", err)
	}

	accountID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAuth, "invalid user id in token", err)
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, "account not found", err)
		}
		return nil, apperr.Wrap(apperr.KindNetwork, "failed to get account", err)
	}

	if err := s.sessions.Revoke(ctx, refreshToken); err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, "failed to revoke old session", err)
	}

	return s.issueSession(ctx, account)
}

// SignOut revokes the refresh session. It always succeeds from the
// caller's point of view; a revocation failure is only logged.
func (s *IdentityService) SignOut(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	if err := s.sessions.Revoke(ctx, refreshToken); err != nil {
		log.Printf("sign-out: failed to revoke session: %v", err)
	}
}

func (s *IdentityService) issueSession(ctx context.Context, account *models.Account) (*AuthResult, error) {
	accessToken, err := s.jwtManager.Generate(account.ID.String(), account.Nickname, s.accessExpiry)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAuth, "failed to generate access token", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(account.ID.String(), s.refreshExpiry)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAuth, "failed to generate refresh token", err)
	}

	now := time.Now()
	session := &models.RefreshSession{
		ID:        uuid.New(),
		AccountID: account.ID,
		Token:     refreshToken,
		ExpiresAt: now.Add(s.refreshExpiry),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, "failed to store session", err)
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      account,
		ExpiresIn:    int(s.accessExpiry.Seconds()),
	}, nil
}
