package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Listing is a provider-owned service offering.
type Listing struct {
	ID             uuid.UUID
	ProviderID     uuid.UUID
	ProviderName   string
	Title          string
	Description    string
	Price          float64
	Category       string
	ImageURL       *string
	Rating         float64
	ReviewCount    int
	Location       *string
	Duration       *string
	Availability   *string
	Includes       []string
	AdditionalInfo *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateParams contains parameters for creating a listing.
type CreateParams struct {
	ProviderID     uuid.UUID
	Title          string
	Description    string
	Price          float64
	Category       string
	ImageURL       *string
	Location       *string
	Duration       *string
	Availability   *string
	Includes       []string
	AdditionalInfo *string
}

// UpdateParams contains parameters for updating a listing.
// Nil fields are left unchanged.
type UpdateParams struct {
	ID             uuid.UUID
	Title          *string
	Description    *string
	Price          *float64
	Category       *string
	ImageURL       *string
	Location       *string
	Duration       *string
	Availability   *string
	Includes       []string
	AdditionalInfo *string
}

// ListParams filters and paginates the public listing search.
type ListParams struct {
	Category   string
	Search     string
	ProviderID *uuid.UUID
	Limit      int
	Offset     int
}

// ListingReader provides read operations for listings.
type ListingReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Listing, error)
	List(ctx context.Context, params ListParams) ([]Listing, int, error)
	Categories(ctx context.Context) ([]string, error)
}

// ListingWriter provides write operations for listings.
type ListingWriter interface {
	Create(ctx context.Context, params CreateParams) (Listing, error)
	Update(ctx context.Context, params UpdateParams) (Listing, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// SetRating writes the denormalized rating aggregate. Called by the
	// reviews module through a port.
	SetRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error
}

// Repository combines all listing repository operations.
type Repository interface {
	ListingReader
	ListingWriter
}
