package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateListingRequest contains data for creating a service listing.
type CreateListingRequest struct {
	Title          string   `json:"title" validate:"required,min=3,max=200"`
	Description    string   `json:"description" validate:"required,min=10,max=5000"`
	Price          float64  `json:"price" validate:"required,gt=0"`
	Category       string   `json:"category" validate:"required,min=2,max=100"`
	Location       *string  `json:"location,omitempty" validate:"omitempty,max=200"`
	Duration       *string  `json:"duration,omitempty" validate:"omitempty,max=100"`
	Availability   *string  `json:"availability,omitempty" validate:"omitempty,max=200"`
	Includes       []string `json:"includes,omitempty" validate:"omitempty,max=20,dive,max=200"`
	AdditionalInfo *string  `json:"additionalInfo,omitempty" validate:"omitempty,max=2000"`
}

// UpdateListingRequest contains data for updating a service listing.
type UpdateListingRequest struct {
	Title          *string  `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description    *string  `json:"description,omitempty" validate:"omitempty,min=10,max=5000"`
	Price          *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Category       *string  `json:"category,omitempty" validate:"omitempty,min=2,max=100"`
	Location       *string  `json:"location,omitempty" validate:"omitempty,max=200"`
	Duration       *string  `json:"duration,omitempty" validate:"omitempty,max=100"`
	Availability   *string  `json:"availability,omitempty" validate:"omitempty,max=200"`
	Includes       []string `json:"includes,omitempty" validate:"omitempty,max=20,dive,max=200"`
	AdditionalInfo *string  `json:"additionalInfo,omitempty" validate:"omitempty,max=2000"`
}

// ListListingsRequest filters the public listing search.
type ListListingsRequest struct {
	Category string `form:"category"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// ListingResponse represents a service listing in API responses.
type ListingResponse struct {
	ID             uuid.UUID `json:"id"`
	ProviderID     uuid.UUID `json:"providerId"`
	ProviderName   string    `json:"providerName"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	Category       string    `json:"category"`
	ImageURL       *string   `json:"imageUrl,omitempty"`
	Rating         float64   `json:"rating"`
	ReviewCount    int       `json:"reviewCount"`
	Location       *string   `json:"location,omitempty"`
	Duration       *string   `json:"duration,omitempty"`
	Availability   *string   `json:"availability,omitempty"`
	Includes       []string  `json:"includes"`
	AdditionalInfo *string   `json:"additionalInfo,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ListingListResponse wraps a paginated list of listings.
type ListingListResponse struct {
	Items    []ListingResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// UploadImageResponse returns the public URL of an uploaded listing image.
type UploadImageResponse struct {
	ImageURL string `json:"imageUrl"`
}
