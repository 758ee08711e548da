package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	models "github.com/Xaroyw/ArtCore/model"
)

type SessionRepository interface {
	Create(ctx context.Context, session *models.RefreshSession) error
	GetByToken(ctx context.Context, token string) (*models.RefreshSession, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForAccount(ctx context.Context, accountID uuid.UUID) error
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.RefreshSession) error {
	query := `
		INSERT INTO refresh_sessions (id, account_id, token, expires_at, created_at, is_revoked)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx, query,
		session.ID, session.AccountID, session.Token,
		session.ExpiresAt, session.CreatedAt, session.IsRevoked,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByToken returns the session only when it is live: not revoked and
// not expired.
func (r *sessionRepository) GetByToken(ctx context.Context, token string) (*models.RefreshSession, error) {
	query := `
		SELECT id, account_id, token, expires_at, created_at, is_revoked
		FROM refresh_sessions
		WHERE token = $1 AND is_revoked = FALSE AND expires_at > $2
	`

	var session models.RefreshSession
	err := r.db.GetContext(ctx, &session, query, token, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, token string) error {
	query := `UPDATE refresh_sessions SET is_revoked = TRUE WHERE token = $1`

	_, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *sessionRepository) RevokeAllForAccount(ctx context.Context, accountID uuid.UUID) error {
	query := `UPDATE refresh_sessions SET is_revoked = TRUE WHERE account_id = $1`

	_, err := r.db.ExecContext(ctx, query, accountID)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}
