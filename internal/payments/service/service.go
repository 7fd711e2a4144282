package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/payments/repository"
	"marketplace_backend/internal/payments/transport"
	"marketplace_backend/internal/scheduler"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/sanitize"
)

// PayableBooking is what the payments module needs from a booking to open
// an intent for it.
type PayableBooking struct {
	CustomerID uuid.UUID
	Amount     float64
	Payable    bool
}

// BookingReader resolves bookings for intent creation. Implemented by the
// bookings module behind an adapter.
type BookingReader interface {
	PayableInfo(ctx context.Context, bookingID uuid.UUID) (PayableBooking, error)
	AttachIntent(ctx context.Context, bookingID, intentID uuid.UUID) error
}

// Service provides simulated payment business logic.
type Service struct {
	repo      repository.Repository
	bookings  BookingReader
	scheduler scheduler.SettlementScheduler
	bus       events.Bus
	cfg       config.PaymentConfig
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new payments service.
func New(repo repository.Repository, bookings BookingReader, sched scheduler.SettlementScheduler, bus events.Bus, cfg config.PaymentConfig, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		bookings:  bookings,
		scheduler: sched,
		bus:       bus,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// CreateIntent opens a pending intent for the customer's booking and
// enqueues a delayed settlement simulating gateway latency. An explicit
// confirm settles sooner; whichever runs first wins and the other is a no-op.
func (s *Service) CreateIntent(ctx context.Context, userID uuid.UUID, req transport.CreateIntentRequest) (transport.IntentResponse, error) {
	booking, err := s.bookings.PayableInfo(ctx, req.BookingID)
	if err != nil {
		return transport.IntentResponse{}, err
	}
	if booking.CustomerID != userID {
		return transport.IntentResponse{}, apperr.Forbidden("not the customer on this booking")
	}
	if !booking.Payable {
		return transport.IntentResponse{}, apperr.Conflict("booking is not payable")
	}

	intent, err := s.repo.CreateIntent(ctx, req.BookingID, booking.Amount, newClientSecret())
	if err != nil {
		return transport.IntentResponse{}, err
	}

	if err := s.bookings.AttachIntent(ctx, req.BookingID, intent.ID); err != nil {
		return transport.IntentResponse{}, err
	}

	runAt := s.now().Add(s.cfg.GetPaymentSettleDelay())
	if err := s.scheduler.SchedulePaymentSettlement(ctx, intent.ID, runAt); err != nil {
		s.log.Error("failed to schedule settlement", "intentId", intent.ID, "error", err)
	}

	s.log.Info("payment intent created", "intentId", intent.ID, "bookingId", req.BookingID, "amount", intent.Amount)

	resp := toIntentResponse(intent)
	resp.ClientSecret = intent.ClientSecret
	resp.PublishableKey = s.cfg.GetStripePublishableKey()
	return resp, nil
}

// Confirm settles the customer's intent immediately.
func (s *Service) Confirm(ctx context.Context, userID, intentID uuid.UUID) (transport.IntentResponse, error) {
	intent, err := s.repo.GetIntent(ctx, intentID)
	if err != nil {
		return transport.IntentResponse{}, err
	}

	booking, err := s.bookings.PayableInfo(ctx, intent.BookingID)
	if err != nil {
		return transport.IntentResponse{}, err
	}
	if booking.CustomerID != userID {
		return transport.IntentResponse{}, apperr.Forbidden("not the customer on this booking")
	}

	if err := s.SettleIntent(ctx, intentID); err != nil {
		return transport.IntentResponse{}, err
	}

	settled, err := s.repo.GetIntent(ctx, intentID)
	if err != nil {
		return transport.IntentResponse{}, err
	}
	return toIntentResponse(settled), nil
}

// GetIntent returns the customer's intent for status polling.
func (s *Service) GetIntent(ctx context.Context, userID, intentID uuid.UUID) (transport.IntentResponse, error) {
	intent, err := s.repo.GetIntent(ctx, intentID)
	if err != nil {
		return transport.IntentResponse{}, err
	}

	booking, err := s.bookings.PayableInfo(ctx, intent.BookingID)
	if err != nil {
		return transport.IntentResponse{}, err
	}
	if booking.CustomerID != userID {
		return transport.IntentResponse{}, apperr.NotFound("payment intent not found")
	}
	return toIntentResponse(intent), nil
}

// SettleIntent settles a pending intent and publishes PaymentConfirmed.
// Idempotent: repeats and races settle exactly once, later calls are no-ops.
// Implements the scheduler worker's settler.
func (s *Service) SettleIntent(ctx context.Context, intentID uuid.UUID) error {
	intent, settledNow, err := s.repo.SettleIntent(ctx, intentID)
	if err != nil {
		return err
	}
	if !settledNow {
		return nil
	}

	s.bus.Publish(ctx, events.PaymentConfirmed{
		BaseEvent: events.NewBaseEvent(),
		IntentID:  intent.ID,
		BookingID: intent.BookingID,
		Amount:    intent.Amount,
	})

	s.log.Info("payment intent settled", "intentId", intent.ID, "bookingId", intent.BookingID)
	return nil
}

// CreateMethod stores a payment method for the user.
func (s *Service) CreateMethod(ctx context.Context, userID uuid.UUID, req transport.CreateMethodRequest) (transport.MethodResponse, error) {
	method, err := s.repo.CreateMethod(ctx, repository.CreateMethodParams{
		UserID:         userID,
		Type:           req.Type,
		IsDefault:      req.IsDefault,
		Country:        req.Country,
		CardName:       sanitize.TextPtr(req.CardName),
		CardLast4:      req.CardLast4,
		ExpiryDate:     req.ExpiryDate,
		AccountName:    sanitize.TextPtr(req.AccountName),
		AccountNumber:  req.AccountNumber,
		BankName:       sanitize.TextPtr(req.BankName),
		RoutingNumber:  req.RoutingNumber,
		PhoneNumber:    req.PhoneNumber,
		MobileProvider: sanitize.TextPtr(req.MobileProvider),
	})
	if err != nil {
		return transport.MethodResponse{}, err
	}
	return toMethodResponse(method), nil
}

// ListMethods returns the user's payment methods, default first.
func (s *Service) ListMethods(ctx context.Context, userID uuid.UUID) (transport.MethodListResponse, error) {
	methods, err := s.repo.ListMethods(ctx, userID)
	if err != nil {
		return transport.MethodListResponse{}, err
	}

	items := make([]transport.MethodResponse, len(methods))
	for i, method := range methods {
		items[i] = toMethodResponse(method)
	}
	return transport.MethodListResponse{Items: items, Total: len(items)}, nil
}

// DeleteMethod removes one of the user's payment methods.
func (s *Service) DeleteMethod(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteMethod(ctx, userID, id)
}

// SetDefaultMethod marks one of the user's methods as the default.
func (s *Service) SetDefaultMethod(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.SetDefaultMethod(ctx, userID, id)
}

// Balance returns the user's lead balance.
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (transport.BalanceResponse, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return transport.BalanceResponse{}, err
	}
	return transport.BalanceResponse{Balance: balance}, nil
}

// TopUp credits the user's lead balance (simulated, no gateway behind it).
func (s *Service) TopUp(ctx context.Context, userID uuid.UUID, req transport.TopUpRequest) (transport.BalanceResponse, error) {
	if err := s.repo.CreditBalance(ctx, userID, req.Amount); err != nil {
		return transport.BalanceResponse{}, err
	}

	s.log.Info("lead balance topped up", "userId", userID, "amount", req.Amount)
	return s.Balance(ctx, userID)
}

// ChargeLeadFee conditionally debits a provider's lead balance (leads port).
func (s *Service) ChargeLeadFee(ctx context.Context, providerID uuid.UUID, amount float64) error {
	return s.repo.ChargeBalance(ctx, providerID, amount)
}

// RefundLeadFee credits a charge back after a lost claim race (leads port).
func (s *Service) RefundLeadFee(ctx context.Context, providerID uuid.UUID, amount float64) error {
	return s.repo.CreditBalance(ctx, providerID, amount)
}

// newClientSecret mimics the gateway's intent secret shape.
func newClientSecret() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("pi_secret_%d", time.Now().UnixNano())
	}
	return "pi_secret_" + hex.EncodeToString(buf)
}

func toIntentResponse(i repository.Intent) transport.IntentResponse {
	return transport.IntentResponse{
		ID:        i.ID,
		BookingID: i.BookingID,
		Amount:    i.Amount,
		Status:    i.Status,
		CreatedAt: i.CreatedAt,
		SettledAt: i.SettledAt,
	}
}

func toMethodResponse(m repository.Method) transport.MethodResponse {
	return transport.MethodResponse{
		ID:             m.ID,
		Type:           m.Type,
		IsDefault:      m.IsDefault,
		Country:        m.Country,
		CardName:       m.CardName,
		CardLast4:      m.CardLast4,
		ExpiryDate:     m.ExpiryDate,
		AccountName:    m.AccountName,
		AccountNumber:  m.AccountNumber,
		BankName:       m.BankName,
		RoutingNumber:  m.RoutingNumber,
		PhoneNumber:    m.PhoneNumber,
		MobileProvider: m.MobileProvider,
		CreatedAt:      m.CreatedAt,
	}
}
