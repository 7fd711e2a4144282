package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateBookingRequest contains data for booking a service.
type CreateBookingRequest struct {
	ServiceID     uuid.UUID `json:"serviceId" validate:"required"`
	Date          string    `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string    `json:"time" validate:"required"`
	DurationHours int       `json:"durationHours" validate:"omitempty,min=1,max=24"`
	Notes         *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateStatusRequest contains the requested booking status change.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// BookingResponse represents a booking in API responses.
type BookingResponse struct {
	ID              uuid.UUID  `json:"id"`
	ServiceID       uuid.UUID  `json:"serviceId"`
	ServiceTitle    string     `json:"serviceTitle"`
	CustomerID      uuid.UUID  `json:"customerId"`
	ProviderID      uuid.UUID  `json:"providerId"`
	Date            string     `json:"date"`
	Time            string     `json:"time"`
	DurationHours   int        `json:"durationHours"`
	Price           float64    `json:"price"`
	Notes           *string    `json:"notes,omitempty"`
	Status          string     `json:"status"`
	PaymentIntentID *uuid.UUID `json:"paymentIntentId,omitempty"`
	PaymentStatus   *string    `json:"paymentStatus,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// BookingListResponse wraps a list of bookings.
type BookingListResponse struct {
	Items []BookingResponse `json:"items"`
	Total int               `json:"total"`
}
