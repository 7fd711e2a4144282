package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Review is a customer review of a service. One review per user per service.
type Review struct {
	ID        uuid.UUID
	ServiceID uuid.UUID
	UserID    uuid.UUID
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Aggregate is the denormalized rating summary for a service.
type Aggregate struct {
	Rating      float64
	ReviewCount int
}

// CreateParams contains parameters for storing a new review.
type CreateParams struct {
	ServiceID uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Comment   string
}

// UpdateParams contains parameters for updating a review.
// Nil fields leave columns unchanged.
type UpdateParams struct {
	ID      uuid.UUID
	Rating  *int
	Comment *string
}

// ReviewReader provides read operations for reviews.
type ReviewReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Review, error)
	ListForService(ctx context.Context, serviceID uuid.UUID) ([]Review, error)
	// Aggregate computes the average rating and review count for a service.
	Aggregate(ctx context.Context, serviceID uuid.UUID) (Aggregate, error)
}

// ReviewWriter provides write operations for reviews.
type ReviewWriter interface {
	// Create stores a review. A second review for the same service by the
	// same user surfaces as apperr Conflict.
	Create(ctx context.Context, params CreateParams) (Review, error)
	Update(ctx context.Context, params UpdateParams) (Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository combines all review repository operations.
type Repository interface {
	ReviewReader
	ReviewWriter
}
