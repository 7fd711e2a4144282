package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/platform/apperr"
)

const uniqueViolationCode = "23505"

const userColumns = `id, email, password_hash, full_name, is_provider, is_admin, created_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new auth repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CreateUser registers an account. Emails are stored lowercased.
func (r *Repo) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	query := `
		INSERT INTO users (email, password_hash, full_name, is_provider)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		strings.ToLower(params.Email), params.PasswordHash, params.FullName, params.IsProvider)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return User{}, apperr.Conflict("email already registered")
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves an account by email.
func (r *Repo) GetUserByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound("user not found")
		}
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves an account by ID.
func (r *Repo) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound("user not found")
		}
		return User{}, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// CreateRefreshToken stores a refresh token hash.
func (r *Repo) CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES ($1, $2, $3)`,
		userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken retrieves a refresh token by its hash.
func (r *Repo) GetRefreshToken(ctx context.Context, tokenHash string) (RefreshToken, error) {
	query := `
		SELECT user_id, expires_at, revoked_at IS NOT NULL
		FROM refresh_tokens
		WHERE token_hash = $1`

	var token RefreshToken
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(&token.UserID, &token.ExpiresAt, &token.Revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RefreshToken{}, apperr.Unauthorized("invalid refresh token")
		}
		return RefreshToken{}, fmt.Errorf("get refresh token: %w", err)
	}
	return token, nil
}

// RevokeRefreshToken marks a refresh token revoked.
func (r *Repo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = now() WHERE token_hash = $1 AND revoked_at IS NULL`,
		tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllRefreshTokens revokes every live token for the user.
func (r *Repo) RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`,
		userID)
	if err != nil {
		return fmt.Errorf("revoke all refresh tokens: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.IsProvider, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}
