package transport

import (
	"time"

	"github.com/google/uuid"
)

// UpdateProfileRequest contains data for updating the caller's profile.
type UpdateProfileRequest struct {
	FullName    *string `json:"fullName,omitempty" validate:"omitempty,min=1,max=200"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	ProviderBio *string `json:"providerBio,omitempty" validate:"omitempty,max=2000"`
	Country     *string `json:"country,omitempty" validate:"omitempty,len=2"`
	IsProvider  *bool   `json:"isProvider,omitempty"`
}

// ProfileResponse is the caller's own profile.
type ProfileResponse struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	FullName      string     `json:"fullName"`
	Phone         *string    `json:"phone,omitempty"`
	AvatarURL     *string    `json:"avatarUrl,omitempty"`
	IsProvider    bool       `json:"isProvider"`
	IsAdmin       bool       `json:"isAdmin"`
	ProviderBio   *string    `json:"providerBio,omitempty"`
	ProviderSince *time.Time `json:"providerSince,omitempty"`
	CompletedJobs int        `json:"completedJobs"`
	LeadBalance   float64    `json:"leadBalance"`
	Country       *string    `json:"country,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// PublicProfileResponse is the public view of a provider.
type PublicProfileResponse struct {
	ID            uuid.UUID  `json:"id"`
	FullName      string     `json:"fullName"`
	AvatarURL     *string    `json:"avatarUrl,omitempty"`
	ProviderBio   *string    `json:"providerBio,omitempty"`
	ProviderSince *time.Time `json:"providerSince,omitempty"`
	CompletedJobs int        `json:"completedJobs"`
	MemberSince   time.Time  `json:"memberSince"`
}

// AvatarResponse returns the uploaded avatar's public URL.
type AvatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}

// CreatePortfolioRequest contains the form fields of a portfolio upload.
// The image arrives as a multipart file alongside.
type CreatePortfolioRequest struct {
	Title       string     `form:"title" validate:"required,min=1,max=200"`
	Description *string    `form:"description" validate:"omitempty,max=2000"`
	ServiceID   *uuid.UUID `form:"serviceId"`
}

// PortfolioItemResponse represents a portfolio entry in API responses.
type PortfolioItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProviderID  uuid.UUID  `json:"providerId"`
	ServiceID   *uuid.UUID `json:"serviceId,omitempty"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	ImageURL    string     `json:"imageUrl"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// PortfolioListResponse wraps a provider's portfolio.
type PortfolioListResponse struct {
	Items []PortfolioItemResponse `json:"items"`
	Total int                     `json:"total"`
}
