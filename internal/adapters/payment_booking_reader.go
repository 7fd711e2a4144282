package adapters

import (
	"context"

	"github.com/google/uuid"

	"marketplace_backend/internal/bookings/domain"
	bookingsvc "marketplace_backend/internal/bookings/service"
	paymentsvc "marketplace_backend/internal/payments/service"
)

// PaymentBookingReader implements payments' BookingReader port on top of
// the bookings service. A booking is payable only while it is Upcoming;
// anything later already carries a settled or cancelled payment state.
type PaymentBookingReader struct {
	bookings *bookingsvc.Service
}

// NewPaymentBookingReader creates the bookings-backed reader.
func NewPaymentBookingReader(bookings *bookingsvc.Service) *PaymentBookingReader {
	return &PaymentBookingReader{bookings: bookings}
}

var _ paymentsvc.BookingReader = (*PaymentBookingReader)(nil)

// PayableInfo resolves the booking's customer, amount, and payability.
func (a *PaymentBookingReader) PayableInfo(ctx context.Context, bookingID uuid.UUID) (paymentsvc.PayableBooking, error) {
	target, err := a.bookings.PaymentInfo(ctx, bookingID)
	if err != nil {
		return paymentsvc.PayableBooking{}, err
	}
	return paymentsvc.PayableBooking{
		CustomerID: target.CustomerID,
		Amount:     target.Amount,
		Payable:    target.Status == domain.StatusUpcoming,
	}, nil
}

// AttachIntent links the freshly opened intent to the booking.
func (a *PaymentBookingReader) AttachIntent(ctx context.Context, bookingID, intentID uuid.UUID) error {
	return a.bookings.AttachIntent(ctx, bookingID, intentID)
}
