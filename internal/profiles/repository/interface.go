package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Profile is a user account as seen by the profile endpoints.
type Profile struct {
	ID            uuid.UUID
	Email         string
	FullName      string
	Phone         *string
	AvatarURL     *string
	IsProvider    bool
	IsAdmin       bool
	ProviderBio   *string
	ProviderSince *time.Time
	CompletedJobs int
	LeadBalance   float64
	Country       *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PortfolioItem is a provider's portfolio entry.
type PortfolioItem struct {
	ID          uuid.UUID
	ProviderID  uuid.UUID
	ServiceID   *uuid.UUID
	Title       string
	Description *string
	ImageURL    string
	CreatedAt   time.Time
}

// UpdateProfileParams contains parameters for updating a profile.
// Nil fields leave columns unchanged. Turning provider on stamps
// provider_since the first time.
type UpdateProfileParams struct {
	ID          uuid.UUID
	FullName    *string
	Phone       *string
	ProviderBio *string
	Country     *string
	IsProvider  *bool
}

// CreatePortfolioParams contains parameters for storing a portfolio item.
type CreatePortfolioParams struct {
	ProviderID  uuid.UUID
	ServiceID   *uuid.UUID
	Title       string
	Description *string
	ImageURL    string
}

// ProfileRepository provides profile operations.
type ProfileRepository interface {
	GetProfile(ctx context.Context, id uuid.UUID) (Profile, error)
	UpdateProfile(ctx context.Context, params UpdateProfileParams) (Profile, error)
	SetAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
}

// PortfolioRepository provides portfolio operations.
type PortfolioRepository interface {
	CreatePortfolioItem(ctx context.Context, params CreatePortfolioParams) (PortfolioItem, error)
	ListPortfolio(ctx context.Context, providerID uuid.UUID) ([]PortfolioItem, error)
	GetPortfolioItem(ctx context.Context, id uuid.UUID) (PortfolioItem, error)
	DeletePortfolioItem(ctx context.Context, id uuid.UUID) error
}

// Repository combines all profile repository operations.
type Repository interface {
	ProfileRepository
	PortfolioRepository
}
