// Package domain contains the booking status machine.
package domain

import (
	"time"

	"github.com/google/uuid"

	"marketplace_backend/platform/apperr"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusUpcoming  Status = "Upcoming"
	StatusConfirmed Status = "Confirmed"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
	StatusDeclined  Status = "Declined"
)

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusUpcoming, StatusConfirmed, StatusCompleted, StatusCancelled, StatusDeclined:
		return Status(raw), nil
	default:
		return "", apperr.BadRequest("invalid booking status: " + raw)
	}
}

// validTransitions is the closed transition table.
// Completed, Cancelled and Declined are terminal.
var validTransitions = map[Status][]Status{
	StatusUpcoming:  {StatusConfirmed, StatusDeclined, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusDeclined:  {},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Actor identifies who is requesting a status change.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorProvider Actor = "provider"
	ActorAdmin    Actor = "admin"
	// ActorSystem is the payment pipeline; its only move is the automatic
	// confirmation of a paid upcoming booking.
	ActorSystem Actor = "system"
)

// AllowedFor reports whether the actor may request this transition.
// Providers accept, decline and complete work; customers cancel; admins may
// do either. The system actor only confirms on settled payment.
func AllowedFor(actor Actor, to Status) bool {
	switch actor {
	case ActorAdmin:
		return true
	case ActorProvider:
		return to == StatusConfirmed || to == StatusDeclined || to == StatusCompleted || to == StatusCancelled
	case ActorCustomer:
		return to == StatusCancelled
	case ActorSystem:
		return to == StatusConfirmed
	}
	return false
}

// Booking is a scheduled appointment between a customer and a provider.
type Booking struct {
	ID              uuid.UUID
	ServiceID       uuid.UUID
	ServiceTitle    string
	CustomerID      uuid.UUID
	ProviderID      uuid.UUID
	Date            time.Time
	Time            string
	DurationHours   int
	Price           float64
	Notes           *string
	Status          Status
	PaymentIntentID *uuid.UUID
	PaymentStatus   *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PartyOf reports the actor role the user holds on this booking.
func (b Booking) PartyOf(userID uuid.UUID) (Actor, bool) {
	switch userID {
	case b.CustomerID:
		return ActorCustomer, true
	case b.ProviderID:
		return ActorProvider, true
	}
	return "", false
}
