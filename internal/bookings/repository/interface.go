package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/bookings/domain"
)

// CreateParams contains parameters for creating a booking.
type CreateParams struct {
	ServiceID     uuid.UUID
	CustomerID    uuid.UUID
	ProviderID    uuid.UUID
	Date          time.Time
	Time          string
	DurationHours int
	Price         float64
	Notes         *string
}

// BookingReader provides read operations for bookings.
type BookingReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Booking, error)
	ListForProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Booking, error)
}

// BookingWriter provides write operations for bookings.
type BookingWriter interface {
	Create(ctx context.Context, params CreateParams) (domain.Booking, error)
	// Transition applies a compare-and-set status change keyed on the
	// expected current status. Zero rows affected means the booking moved
	// concurrently; the caller re-reads and reports the conflict.
	Transition(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Booking, error)
	// AttachPaymentIntent links a pending intent to the booking.
	AttachPaymentIntent(ctx context.Context, id, intentID uuid.UUID, paymentStatus string) error
	// SetPaymentStatus records the settled state of the linked intent.
	SetPaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error
	// IncrementCompletedJobs bumps the provider's completed job counter.
	IncrementCompletedJobs(ctx context.Context, providerID uuid.UUID) error
}

// Repository combines all booking repository operations.
type Repository interface {
	BookingReader
	BookingWriter
}
