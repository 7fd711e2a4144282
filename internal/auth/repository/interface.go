package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is an account row as the auth module sees it.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	IsProvider   bool
	IsAdmin      bool
	CreatedAt    time.Time
}

// RefreshToken is a stored refresh token. Only the SHA-256 hash of the
// token ever touches the database.
type RefreshToken struct {
	UserID    uuid.UUID
	ExpiresAt time.Time
	Revoked   bool
}

// CreateUserParams contains parameters for registering an account.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	FullName     string
	IsProvider   bool
}

// UserRepository provides account operations for authentication.
type UserRepository interface {
	// CreateUser registers an account. A duplicate email surfaces as
	// apperr Conflict.
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
}

// TokenRepository provides refresh token storage.
type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

// Repository combines all auth repository operations.
type Repository interface {
	UserRepository
	TokenRepository
}
