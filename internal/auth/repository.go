package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rolodex-app/rolodex/internal/platform/httpx"
)

// Repository defines persistence operations for user accounts.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user User) (int64, error)
	UpdateRefreshToken(ctx context.Context, userID int64, token *string) error
	UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error
	ConfirmEmail(ctx context.Context, email string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, email, username, password_hash, avatar_url, refresh_token, confirmed, created_at, updated_at`

// GetByEmail fetches a user by email.
func (r *PGRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create inserts a new user and returns its id. A unique violation on the
// email column maps to ErrDuplicate.
func (r *PGRepository) Create(ctx context.Context, user User) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, avatar_url, confirmed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, false, NOW(), NOW())
		RETURNING id
	`, user.Email, user.Username, user.PasswordHash, textOrNull(user.AvatarURL)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, httpx.ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

// UpdateRefreshToken stores the current refresh token, or clears it when nil.
func (r *PGRepository) UpdateRefreshToken(ctx context.Context, userID int64, token *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1
	`, userID, textOrNull(token))
	return err
}

// UpdateAvatar stores the hosted avatar URL.
func (r *PGRepository) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET avatar_url = $2, updated_at = NOW() WHERE id = $1
	`, userID, avatarURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// ConfirmEmail marks the account as confirmed.
func (r *PGRepository) ConfirmEmail(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET confirmed = true, updated_at = NOW() WHERE email = $1
	`, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		user         User
		avatarURL    pgtype.Text
		refreshToken pgtype.Text
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
	)
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&avatarURL, &refreshToken, &user.Confirmed, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if avatarURL.Valid {
		val := avatarURL.String
		user.AvatarURL = &val
	}
	if refreshToken.Valid {
		val := refreshToken.String
		user.RefreshToken = &val
	}
	if createdAt.Valid {
		user.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	}
	return &user, nil
}

func textOrNull(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

var _ Repository = (*PGRepository)(nil)
