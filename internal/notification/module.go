// Package notification subscribes to domain events and sends the
// corresponding emails. Domain modules publish events and never touch
// email providers or templates directly.
package notification

import (
	"context"
	"strings"

	"marketplace_backend/internal/email"
	"marketplace_backend/internal/events"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
)

// Module handles all notification-related event subscriptions.
type Module struct {
	dir    Directory
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
}

// New creates a new notification module.
func New(dir Directory, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{dir: dir, sender: sender, cfg: cfg, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadSubmitted{}.EventName(), m)
	bus.Subscribe(events.BookingCreated{}.EventName(), m)
	bus.Subscribe(events.BookingStatusChanged{}.EventName(), m)
	bus.Subscribe(events.BookingReminderDue{}.EventName(), m)
	bus.Subscribe(events.PaymentConfirmed{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadSubmitted:
		return m.handleLeadSubmitted(ctx, e)
	case events.BookingCreated:
		return m.handleBookingCreated(ctx, e)
	case events.BookingStatusChanged:
		return m.handleBookingStatusChanged(ctx, e)
	case events.BookingReminderDue:
		return m.handleBookingReminderDue(ctx, e)
	case events.PaymentConfirmed:
		return m.handlePaymentConfirmed(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleLeadSubmitted(ctx context.Context, e events.LeadSubmitted) error {
	provider, err := m.dir.UserContact(ctx, e.ProviderID)
	if err != nil {
		m.log.Error("failed to resolve lead alert recipient", "leadId", e.LeadID, "error", err)
		return err
	}
	customer, err := m.dir.UserContact(ctx, e.CustomerID)
	if err != nil {
		m.log.Error("failed to resolve lead sender", "leadId", e.LeadID, "error", err)
		return err
	}

	inboxURL := m.buildURL("/messages")
	if err := m.sender.SendLeadAlert(ctx, provider.Email, provider.Name, customer.Name, inboxURL); err != nil {
		m.log.Error("failed to send lead alert email", "leadId", e.LeadID, "email", provider.Email, "error", err)
		return err
	}
	m.log.Info("lead alert email sent", "leadId", e.LeadID, "email", provider.Email)
	return nil
}

func (m *Module) handleBookingCreated(ctx context.Context, e events.BookingCreated) error {
	det, err := m.dir.BookingDetails(ctx, e.BookingID)
	if err != nil {
		m.log.Error("failed to resolve booking details", "bookingId", e.BookingID, "error", err)
		return err
	}

	err = m.sender.SendBookingConfirmation(ctx, det.Customer.Email, det.Customer.Name,
		det.ServiceTitle, e.Date, e.Time, e.Price)
	if err != nil {
		m.log.Error("failed to send booking confirmation", "bookingId", e.BookingID, "error", err)
		return err
	}
	m.log.Info("booking confirmation sent", "bookingId", e.BookingID, "email", det.Customer.Email)
	return nil
}

func (m *Module) handleBookingStatusChanged(ctx context.Context, e events.BookingStatusChanged) error {
	det, err := m.dir.BookingDetails(ctx, e.BookingID)
	if err != nil {
		m.log.Error("failed to resolve booking details", "bookingId", e.BookingID, "error", err)
		return err
	}

	err = m.sender.SendBookingStatusUpdate(ctx, det.Customer.Email, det.Customer.Name,
		det.ServiceTitle, e.ToStatus)
	if err != nil {
		m.log.Error("failed to send booking status email", "bookingId", e.BookingID, "error", err)
		return err
	}
	m.log.Info("booking status email sent", "bookingId", e.BookingID, "status", e.ToStatus)
	return nil
}

// handleBookingReminderDue emails both parties. A failure on one side
// does not stop the other.
func (m *Module) handleBookingReminderDue(ctx context.Context, e events.BookingReminderDue) error {
	det, err := m.dir.BookingDetails(ctx, e.BookingID)
	if err != nil {
		m.log.Error("failed to resolve booking details", "bookingId", e.BookingID, "error", err)
		return err
	}

	var firstErr error
	for _, recipient := range []Contact{det.Customer, det.Provider} {
		err := m.sender.SendBookingReminder(ctx, recipient.Email, recipient.Name,
			det.ServiceTitle, e.Date, e.Time)
		if err != nil {
			m.log.Error("failed to send booking reminder", "bookingId", e.BookingID, "email", recipient.Email, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		m.log.Info("booking reminder sent", "bookingId", e.BookingID, "email", recipient.Email)
	}
	return firstErr
}

func (m *Module) handlePaymentConfirmed(ctx context.Context, e events.PaymentConfirmed) error {
	det, err := m.dir.BookingDetails(ctx, e.BookingID)
	if err != nil {
		m.log.Error("failed to resolve booking details", "bookingId", e.BookingID, "error", err)
		return err
	}

	err = m.sender.SendPaymentReceipt(ctx, det.Customer.Email, det.Customer.Name,
		det.ServiceTitle, e.Amount)
	if err != nil {
		m.log.Error("failed to send payment receipt", "intentId", e.IntentID, "error", err)
		return err
	}
	m.log.Info("payment receipt sent", "intentId", e.IntentID, "email", det.Customer.Email)
	return nil
}

func (m *Module) buildURL(path string) string {
	return strings.TrimRight(m.cfg.GetAppBaseURL(), "/") + path
}
