// Package adapters wires cross-module ports to the services that
// implement them, keeping the bounded contexts free of direct imports
// of each other.
package adapters

import (
	"context"

	"github.com/google/uuid"

	bookingsvc "marketplace_backend/internal/bookings/service"
	catalogsvc "marketplace_backend/internal/catalog/service"
)

// BookingServiceReader implements bookings' ServiceReader port on top of
// the catalog service.
type BookingServiceReader struct {
	catalog *catalogsvc.Service
}

// NewBookingServiceReader creates the catalog-backed service reader.
func NewBookingServiceReader(catalog *catalogsvc.Service) *BookingServiceReader {
	return &BookingServiceReader{catalog: catalog}
}

var _ bookingsvc.ServiceReader = (*BookingServiceReader)(nil)

// BookingInfo resolves the listing's provider, title, and price.
func (a *BookingServiceReader) BookingInfo(ctx context.Context, serviceID uuid.UUID) (bookingsvc.BookedService, error) {
	target, err := a.catalog.BookingInfo(ctx, serviceID)
	if err != nil {
		return bookingsvc.BookedService{}, err
	}
	return bookingsvc.BookedService{
		ProviderID: target.ProviderID,
		Title:      target.Title,
		Price:      target.Price,
	}, nil
}
