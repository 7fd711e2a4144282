package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/bookings/domain"
	"marketplace_backend/internal/bookings/repository"
	"marketplace_backend/internal/bookings/transport"
	"marketplace_backend/internal/events"
	"marketplace_backend/internal/scheduler"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/sanitize"
)

// reminderLeadTime is how long before the booking date the reminder fires.
const reminderLeadTime = 24 * time.Hour

// BookedService is the subset of a catalog service a booking needs.
type BookedService struct {
	ProviderID uuid.UUID
	Title      string
	Price      float64
}

// ServiceReader resolves the booked service's provider and price.
// Implemented by the catalog module behind an adapter.
type ServiceReader interface {
	BookingInfo(ctx context.Context, serviceID uuid.UUID) (BookedService, error)
}

// Service provides booking business logic.
type Service struct {
	repo      repository.Repository
	services  ServiceReader
	reminders scheduler.ReminderScheduler
	bus       events.Bus
	log       *logger.Logger
}

// New creates a new bookings service.
func New(repo repository.Repository, services ServiceReader, reminders scheduler.ReminderScheduler, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		services:  services,
		reminders: reminders,
		bus:       bus,
		log:       log,
	}
}

// Create books a service for the customer. The booking starts Upcoming and
// waits for the provider (or a settled payment) to confirm it.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, req transport.CreateBookingRequest) (transport.BookingResponse, error) {
	svc, err := s.services.BookingInfo(ctx, req.ServiceID)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	if svc.ProviderID == customerID {
		return transport.BookingResponse{}, apperr.BadRequest("cannot book your own service")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return transport.BookingResponse{}, apperr.BadRequest("invalid booking date")
	}

	duration := req.DurationHours
	if duration < 1 {
		duration = 1
	}

	booking, err := s.repo.Create(ctx, repository.CreateParams{
		ServiceID:     req.ServiceID,
		CustomerID:    customerID,
		ProviderID:    svc.ProviderID,
		Date:          date,
		Time:          req.Time,
		DurationHours: duration,
		Price:         svc.Price * float64(duration),
		Notes:         sanitize.TextPtr(req.Notes),
	})
	if err != nil {
		return transport.BookingResponse{}, err
	}

	s.bus.Publish(ctx, events.BookingCreated{
		BaseEvent:  events.NewBaseEvent(),
		BookingID:  booking.ID,
		ServiceID:  booking.ServiceID,
		CustomerID: booking.CustomerID,
		ProviderID: booking.ProviderID,
		Date:       booking.Date.Format("2006-01-02"),
		Time:       booking.Time,
		Price:      booking.Price,
	})

	s.scheduleReminder(ctx, booking)
	s.log.Info("booking created", "bookingId", booking.ID, "serviceId", booking.ServiceID)
	return toResponse(booking), nil
}

// UpdateStatus applies a status change requested by a booking party or admin.
// The transition table and actor rules gate the move; the repository's
// compare-and-set guarantees no concurrent overwrite.
func (s *Service) UpdateStatus(ctx context.Context, userID uuid.UUID, isAdmin bool, bookingID uuid.UUID, req transport.UpdateStatusRequest) (transport.BookingResponse, error) {
	to, err := domain.ParseStatus(req.Status)
	if err != nil {
		return transport.BookingResponse{}, err
	}

	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return transport.BookingResponse{}, err
	}

	actor := domain.ActorAdmin
	if !isAdmin {
		party, ok := booking.PartyOf(userID)
		if !ok {
			return transport.BookingResponse{}, apperr.NotFound("booking not found")
		}
		actor = party
	}

	return s.transition(ctx, booking, to, actor)
}

// ConfirmPaid handles a settled payment: records the payment state and, when
// the booking is still Upcoming, auto-confirms it. Idempotent: a repeat
// settlement finds the booking already Confirmed and changes nothing.
func (s *Service) ConfirmPaid(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := s.repo.SetPaymentStatus(ctx, bookingID, "succeeded"); err != nil {
		return err
	}

	if booking.Status != domain.StatusUpcoming {
		return nil
	}

	_, err = s.transition(ctx, booking, domain.StatusConfirmed, domain.ActorSystem)
	if err != nil && apperr.Is(err, apperr.KindConflict) {
		// Lost the race against a manual confirm or decline; payment state
		// is recorded either way.
		return nil
	}
	return err
}

func (s *Service) transition(ctx context.Context, booking domain.Booking, to domain.Status, actor domain.Actor) (transport.BookingResponse, error) {
	if !domain.AllowedFor(actor, to) {
		return transport.BookingResponse{}, apperr.Forbidden("not allowed to set this status")
	}
	if !domain.CanTransition(booking.Status, to) {
		return transport.BookingResponse{}, apperr.Conflict("invalid transition from " + string(booking.Status) + " to " + string(to))
	}

	updated, err := s.repo.Transition(ctx, booking.ID, booking.Status, to)
	if err != nil {
		return transport.BookingResponse{}, err
	}

	if to == domain.StatusCompleted {
		if err := s.repo.IncrementCompletedJobs(ctx, updated.ProviderID); err != nil {
			s.log.Error("failed to increment completed jobs", "providerId", updated.ProviderID, "error", err)
		}
	}

	s.bus.Publish(ctx, events.BookingStatusChanged{
		BaseEvent:  events.NewBaseEvent(),
		BookingID:  updated.ID,
		CustomerID: updated.CustomerID,
		ProviderID: updated.ProviderID,
		FromStatus: string(booking.Status),
		ToStatus:   string(to),
	})

	s.log.Info("booking status changed", "bookingId", updated.ID, "from", string(booking.Status), "to", string(to), "actor", string(actor))
	return toResponse(updated), nil
}

// ListForCustomer returns the customer's bookings.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID) (transport.BookingListResponse, error) {
	bookings, err := s.repo.ListForCustomer(ctx, customerID)
	if err != nil {
		return transport.BookingListResponse{}, err
	}
	return toListResponse(bookings), nil
}

// ListForProvider returns the provider's bookings.
func (s *Service) ListForProvider(ctx context.Context, providerID uuid.UUID) (transport.BookingListResponse, error) {
	bookings, err := s.repo.ListForProvider(ctx, providerID)
	if err != nil {
		return transport.BookingListResponse{}, err
	}
	return toListResponse(bookings), nil
}

// Get returns a single booking for one of its parties.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, isAdmin bool, bookingID uuid.UUID) (transport.BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return transport.BookingResponse{}, err
	}
	if !isAdmin {
		if _, ok := booking.PartyOf(userID); !ok {
			return transport.BookingResponse{}, apperr.NotFound("booking not found")
		}
	}
	return toResponse(booking), nil
}

// PaymentTarget is what the payments module needs to open an intent.
type PaymentTarget struct {
	CustomerID uuid.UUID
	Amount     float64
	Status     domain.Status
}

// PaymentInfo returns the booking's payment target for intent creation.
func (s *Service) PaymentInfo(ctx context.Context, bookingID uuid.UUID) (PaymentTarget, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return PaymentTarget{}, err
	}
	return PaymentTarget{
		CustomerID: booking.CustomerID,
		Amount:     booking.Price,
		Status:     booking.Status,
	}, nil
}

// AttachIntent links a freshly created payment intent to the booking.
func (s *Service) AttachIntent(ctx context.Context, bookingID, intentID uuid.UUID) error {
	return s.repo.AttachPaymentIntent(ctx, bookingID, intentID, "pending")
}

// ReminderInfo implements the scheduler worker's loader.
func (s *Service) ReminderInfo(ctx context.Context, bookingID uuid.UUID) (*scheduler.ReminderInfo, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &scheduler.ReminderInfo{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		ProviderID: booking.ProviderID,
		Status:     string(booking.Status),
		Date:       booking.Date.Format("2006-01-02"),
		Time:       booking.Time,
	}, nil
}

func (s *Service) scheduleReminder(ctx context.Context, booking domain.Booking) {
	if s.reminders == nil {
		return
	}

	runAt := booking.Date.Add(-reminderLeadTime)
	if runAt.Before(time.Now()) {
		return
	}

	if err := s.reminders.ScheduleBookingReminder(ctx, booking.ID, runAt); err != nil {
		s.log.Error("failed to schedule booking reminder", "bookingId", booking.ID, "error", err)
	}
}

func toResponse(b domain.Booking) transport.BookingResponse {
	return transport.BookingResponse{
		ID:              b.ID,
		ServiceID:       b.ServiceID,
		ServiceTitle:    b.ServiceTitle,
		CustomerID:      b.CustomerID,
		ProviderID:      b.ProviderID,
		Date:            b.Date.Format("2006-01-02"),
		Time:            b.Time,
		DurationHours:   b.DurationHours,
		Price:           b.Price,
		Notes:           b.Notes,
		Status:          string(b.Status),
		PaymentIntentID: b.PaymentIntentID,
		PaymentStatus:   b.PaymentStatus,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func toListResponse(bookings []domain.Booking) transport.BookingListResponse {
	items := make([]transport.BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = toResponse(b)
	}
	return transport.BookingListResponse{Items: items, Total: len(items)}
}
