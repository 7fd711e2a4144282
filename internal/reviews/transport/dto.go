package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateReviewRequest contains data for creating a review.
type CreateReviewRequest struct {
	ServiceID uuid.UUID `json:"serviceId" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment" validate:"max=2000"`
}

// UpdateReviewRequest contains data for updating a review.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// ReviewResponse represents a review in API responses.
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	ServiceID uuid.UUID `json:"serviceId"`
	UserID    uuid.UUID `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReviewListResponse wraps a list of reviews.
type ReviewListResponse struct {
	Items []ReviewResponse `json:"items"`
	Total int              `json:"total"`
}
