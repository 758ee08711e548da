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

// ErrNotFound is returned when a query matches no row. Callers map it
// to their own taxonomy.
var ErrNotFound = errors.New("not found")

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByNickname(ctx context.Context, nickname string) (*models.Account, error)
	NicknameExists(ctx context.Context, nickname string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateNickname(ctx context.Context, id uuid.UUID, nickname string) error
	UpdateAvatarURL(ctx context.Context, id uuid.UUID, url string) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
	AppendImage(ctx context.Context, image *models.UploadedImage) error
	RemoveImage(ctx context.Context, accountID uuid.UUID, url string) error
	ListImages(ctx context.Context, accountID uuid.UUID) ([]string, error)
}

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, email, nickname, avatar_url, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx, query,
		account.ID, account.Email, account.Nickname, account.AvatarURL,
		account.PasswordHash, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `
		SELECT id, email, nickname, avatar_url, password_hash, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var account models.Account
	err := r.db.GetContext(ctx, &account, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT id, email, nickname, avatar_url, password_hash, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`

	var account models.Account
	err := r.db.GetContext(ctx, &account, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account by email: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetByNickname(ctx context.Context, nickname string) (*models.Account, error) {
	query := `
		SELECT id, email, nickname, avatar_url, password_hash, created_at, updated_at
		FROM accounts
		WHERE nickname = $1
		LIMIT 1
	`

	var account models.Account
	err := r.db.GetContext(ctx, &account, query, nickname)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account by nickname: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by nickname: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE nickname = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, nickname)
	if err != nil {
		return false, fmt.Errorf("failed to check nickname: %w", err)
	}
	return exists, nil
}

func (r *accountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func (r *accountRepository) UpdateNickname(ctx context.Context, id uuid.UUID, nickname string) error {
	query := `
		UPDATE accounts
		SET nickname = $1, updated_at = $2
		WHERE id = $3
	`
	return r.execOne(ctx, query, nickname, time.Now(), id)
}

func (r *accountRepository) UpdateAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	query := `
		UPDATE accounts
		SET avatar_url = $1, updated_at = $2
		WHERE id = $3
	`
	return r.execOne(ctx, query, url, time.Now(), id)
}

func (r *accountRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $1, updated_at = $2
		WHERE id = $3
	`
	return r.execOne(ctx, query, passwordHash, time.Now(), id)
}

func (r *accountRepository) AppendImage(ctx context.Context, image *models.UploadedImage) error {
	query := `
		INSERT INTO account_images (id, account_id, url, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, image.ID, image.AccountID, image.URL, image.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append image: %w", err)
	}
	return nil
}

func (r *accountRepository) RemoveImage(ctx context.Context, accountID uuid.UUID, url string) error {
	query := `
		DELETE FROM account_images
		WHERE id IN (
			SELECT id FROM account_images
			WHERE account_id = $1 AND url = $2
			ORDER BY id
			LIMIT 1
		)
	`

	result, err := r.db.ExecContext(ctx, query, accountID, url)
	if err != nil {
		return fmt.Errorf("failed to remove image: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("image entry: %w", ErrNotFound)
	}
	return nil
}

// ListImages returns the account's uploaded image URLs ordered by push
// key, which reproduces insertion order.
func (r *accountRepository) ListImages(ctx context.Context, accountID uuid.UUID) ([]string, error) {
	query := `
		SELECT url
		FROM account_images
		WHERE account_id = $1
		ORDER BY id
	`

	var urls []string
	err := r.db.SelectContext(ctx, &urls, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return urls, nil
}

func (r *accountRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("account: %w", ErrNotFound)
	}
	return nil
}
