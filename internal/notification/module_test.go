package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"marketplace_backend/internal/events"
	"marketplace_backend/platform/logger"
)

type sentEmail struct {
	kind    string
	toEmail string
	detail  string
}

type testSender struct {
	mu   sync.Mutex
	sent []sentEmail
	fail bool
}

func (s *testSender) record(kind, toEmail, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, sentEmail{kind: kind, toEmail: toEmail, detail: detail})
	return nil
}

func (s *testSender) emails() []sentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentEmail(nil), s.sent...)
}

func (s *testSender) SendBookingConfirmation(_ context.Context, toEmail, _, serviceTitle, _, _ string, _ float64) error {
	return s.record("booking_confirmation", toEmail, serviceTitle)
}

func (s *testSender) SendBookingStatusUpdate(_ context.Context, toEmail, _, _, status string) error {
	return s.record("booking_status", toEmail, status)
}

func (s *testSender) SendBookingReminder(_ context.Context, toEmail, _, serviceTitle, _, _ string) error {
	return s.record("booking_reminder", toEmail, serviceTitle)
}

func (s *testSender) SendLeadAlert(_ context.Context, toEmail, _, customerName, _ string) error {
	return s.record("lead_alert", toEmail, customerName)
}

func (s *testSender) SendPaymentReceipt(_ context.Context, toEmail, _, serviceTitle string, _ float64) error {
	return s.record("payment_receipt", toEmail, serviceTitle)
}

type fakeDirectory struct {
	contacts map[uuid.UUID]Contact
	bookings map[uuid.UUID]BookingDetails
}

func (f *fakeDirectory) UserContact(_ context.Context, userID uuid.UUID) (Contact, error) {
	c, ok := f.contacts[userID]
	if !ok {
		return Contact{}, errors.New("no such user")
	}
	return c, nil
}

func (f *fakeDirectory) BookingDetails(_ context.Context, bookingID uuid.UUID) (BookingDetails, error) {
	d, ok := f.bookings[bookingID]
	if !ok {
		return BookingDetails{}, errors.New("no such booking")
	}
	return d, nil
}

type testNotificationConfig struct{}

func (testNotificationConfig) GetAppBaseURL() string { return "https://app.example.com/" }

func TestLeadSubmittedEmailsProvider(t *testing.T) {
	customerID := uuid.New()
	providerID := uuid.New()
	dir := &fakeDirectory{contacts: map[uuid.UUID]Contact{
		customerID: {Name: "Carla Customer", Email: "carla@example.com"},
		providerID: {Name: "Pete Provider", Email: "pete@example.com"},
	}}
	sender := &testSender{}
	m := New(dir, sender, testNotificationConfig{}, logger.New("test"))

	err := m.Handle(context.Background(), events.LeadSubmitted{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     uuid.New(),
		CustomerID: customerID,
		ProviderID: providerID,
		Content:    "Can you paint my fence?",
	})
	if err != nil {
		t.Fatalf("handle lead submitted: %v", err)
	}

	sent := sender.emails()
	if len(sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sent))
	}
	if sent[0].kind != "lead_alert" || sent[0].toEmail != "pete@example.com" {
		t.Fatalf("expected lead alert to provider, got %+v", sent[0])
	}
	if sent[0].detail != "Carla Customer" {
		t.Fatalf("expected customer name in alert, got %q", sent[0].detail)
	}
}

func TestBookingReminderEmailsBothParties(t *testing.T) {
	bookingID := uuid.New()
	dir := &fakeDirectory{bookings: map[uuid.UUID]BookingDetails{
		bookingID: {
			ServiceTitle: "Deep Cleaning",
			Customer:     Contact{Name: "Carla", Email: "carla@example.com"},
			Provider:     Contact{Name: "Pete", Email: "pete@example.com"},
		},
	}}
	sender := &testSender{}
	m := New(dir, sender, testNotificationConfig{}, logger.New("test"))

	err := m.Handle(context.Background(), events.BookingReminderDue{
		BaseEvent: events.NewBaseEvent(),
		BookingID: bookingID,
		Date:      "2026-09-15",
		Time:      "10:00",
	})
	if err != nil {
		t.Fatalf("handle reminder: %v", err)
	}

	sent := sender.emails()
	if len(sent) != 2 {
		t.Fatalf("expected 2 reminder emails, got %d", len(sent))
	}
	recipients := map[string]bool{sent[0].toEmail: true, sent[1].toEmail: true}
	if !recipients["carla@example.com"] || !recipients["pete@example.com"] {
		t.Fatalf("expected both parties emailed, got %v", recipients)
	}
}

func TestPaymentConfirmedSendsReceiptToCustomer(t *testing.T) {
	bookingID := uuid.New()
	dir := &fakeDirectory{bookings: map[uuid.UUID]BookingDetails{
		bookingID: {
			ServiceTitle: "Deep Cleaning",
			Customer:     Contact{Name: "Carla", Email: "carla@example.com"},
			Provider:     Contact{Name: "Pete", Email: "pete@example.com"},
		},
	}}
	sender := &testSender{}
	m := New(dir, sender, testNotificationConfig{}, logger.New("test"))

	err := m.Handle(context.Background(), events.PaymentConfirmed{
		BaseEvent: events.NewBaseEvent(),
		IntentID:  uuid.New(),
		BookingID: bookingID,
		Amount:    120,
	})
	if err != nil {
		t.Fatalf("handle payment confirmed: %v", err)
	}

	sent := sender.emails()
	if len(sent) != 1 || sent[0].kind != "payment_receipt" {
		t.Fatalf("expected one receipt email, got %+v", sent)
	}
	if sent[0].toEmail != "carla@example.com" {
		t.Fatalf("expected receipt to customer, got %s", sent[0].toEmail)
	}
}

func TestSenderFailureIsReturnedForBusLogging(t *testing.T) {
	bookingID := uuid.New()
	dir := &fakeDirectory{bookings: map[uuid.UUID]BookingDetails{
		bookingID: {Customer: Contact{Email: "carla@example.com"}},
	}}
	sender := &testSender{fail: true}
	m := New(dir, sender, testNotificationConfig{}, logger.New("test"))

	err := m.Handle(context.Background(), events.BookingStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		BookingID: bookingID,
		ToStatus:  "Confirmed",
	})
	if err == nil {
		t.Fatal("expected sender failure to surface to the bus")
	}
}
