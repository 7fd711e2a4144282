// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"marketplace_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadSubmitted is published when a customer sends a new lead to a provider.
type LeadSubmitted struct {
	BaseEvent
	LeadID     uuid.UUID  `json:"leadId"`
	CustomerID uuid.UUID  `json:"customerId"`
	ProviderID uuid.UUID  `json:"providerId"`
	ServiceID  *uuid.UUID `json:"serviceId,omitempty"`
	Content    string     `json:"content"`
}

func (e LeadSubmitted) EventName() string { return "leads.submitted" }

// LeadExpired is published when the sweep reclassifies direct leads
// whose exclusivity window elapsed without a reply.
type LeadExpired struct {
	BaseEvent
	Expired int64 `json:"expired"`
}

func (e LeadExpired) EventName() string { return "leads.expired" }

// LeadClaimed is published when a provider's reply wins a lead.
type LeadClaimed struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	CustomerID uuid.UUID `json:"customerId"`
	ProviderID uuid.UUID `json:"providerId"`
	// FromStatus is the lead status before the claim ("direct" or "opportunity").
	FromStatus string `json:"fromStatus"`
}

func (e LeadClaimed) EventName() string { return "leads.claimed" }

// =============================================================================
// Booking Domain Events
// =============================================================================

// BookingCreated is published when a customer books a service.
type BookingCreated struct {
	BaseEvent
	BookingID  uuid.UUID `json:"bookingId"`
	ServiceID  uuid.UUID `json:"serviceId"`
	CustomerID uuid.UUID `json:"customerId"`
	ProviderID uuid.UUID `json:"providerId"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Price      float64   `json:"price"`
}

func (e BookingCreated) EventName() string { return "bookings.created" }

// BookingStatusChanged is published on every booking status transition.
type BookingStatusChanged struct {
	BaseEvent
	BookingID  uuid.UUID `json:"bookingId"`
	CustomerID uuid.UUID `json:"customerId"`
	ProviderID uuid.UUID `json:"providerId"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
}

func (e BookingStatusChanged) EventName() string { return "bookings.status_changed" }

// BookingReminderDue is published by the scheduler worker when a booking's
// reminder task fires. The notification module emails both parties.
type BookingReminderDue struct {
	BaseEvent
	BookingID  uuid.UUID `json:"bookingId"`
	CustomerID uuid.UUID `json:"customerId"`
	ProviderID uuid.UUID `json:"providerId"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
}

func (e BookingReminderDue) EventName() string { return "bookings.reminder_due" }

// =============================================================================
// Payment Domain Events
// =============================================================================

// PaymentConfirmed is published when a payment intent settles successfully.
// The bookings module consumes it to confirm the paid booking.
type PaymentConfirmed struct {
	BaseEvent
	IntentID  uuid.UUID `json:"intentId"`
	BookingID uuid.UUID `json:"bookingId"`
	Amount    float64   `json:"amount"`
}

func (e PaymentConfirmed) EventName() string { return "payments.confirmed" }

// =============================================================================
// Messaging Domain Events
// =============================================================================

// MessageSent is published when a message is appended to the log.
type MessageSent struct {
	BaseEvent
	MessageID   uuid.UUID `json:"messageId"`
	SenderID    uuid.UUID `json:"senderId"`
	RecipientID uuid.UUID `json:"recipientId"`
	IsLead      bool      `json:"isLead"`
}

func (e MessageSent) EventName() string { return "messages.sent" }

// =============================================================================
// Review Domain Events
// =============================================================================

// ReviewCreated is published when a customer reviews a service.
type ReviewCreated struct {
	BaseEvent
	ReviewID  uuid.UUID `json:"reviewId"`
	ServiceID uuid.UUID `json:"serviceId"`
	UserID    uuid.UUID `json:"userId"`
	Rating    int       `json:"rating"`
}

func (e ReviewCreated) EventName() string { return "reviews.created" }
