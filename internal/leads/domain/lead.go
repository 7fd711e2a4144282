// Package domain contains the lead routing state machine.
// A lead is a customer message flagged is_lead; its status decides who may
// see it and who may respond.
package domain

import (
	"time"

	"github.com/google/uuid"

	"marketplace_backend/platform/apperr"
)

// Status is the routing state of a lead.
type Status string

const (
	// StatusDirect means the lead is exclusively visible to its recipient.
	StatusDirect Status = "direct"
	// StatusOpportunity means the exclusivity window elapsed without a reply
	// and the lead is open to all providers in its category.
	StatusOpportunity Status = "opportunity"
	// StatusResponded is terminal: exactly one provider owns the lead.
	StatusResponded Status = "responded"
)

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusDirect, StatusOpportunity, StatusResponded:
		return Status(raw), nil
	default:
		return "", apperr.BadRequest("invalid lead status: " + raw)
	}
}

// validTransitions is the closed transition table. Status only moves
// forward; responded is terminal.
var validTransitions = map[Status][]Status{
	StatusDirect:      {StatusOpportunity, StatusResponded},
	StatusOpportunity: {StatusResponded},
	StatusResponded:   {},
}

// CanTransition reports whether a lead may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Lead is a customer inquiry routed to providers.
type Lead struct {
	ID           uuid.UUID
	CustomerID   uuid.UUID
	ProviderID   uuid.UUID
	ServiceID    *uuid.UUID
	ServiceTitle *string
	Category     *string
	Content      string
	Status       Status
	Price        *float64
	Paid         bool
	RespondedBy  *uuid.UUID
	RespondedAt  *time.Time
	CreatedAt    time.Time
}

// Claimed reports whether the lead has already been won.
func (l Lead) Claimed() bool {
	return l.Status == StatusResponded
}

// VisibleTo reports whether a provider may see the lead in its current state.
// Direct leads are exclusive to the recipient; opportunities are open to any
// provider except the customer who sent the lead.
func (l Lead) VisibleTo(providerID uuid.UUID) bool {
	switch l.Status {
	case StatusDirect:
		return l.ProviderID == providerID
	case StatusOpportunity:
		return l.CustomerID != providerID
	case StatusResponded:
		return l.ProviderID == providerID || (l.RespondedBy != nil && *l.RespondedBy == providerID)
	}
	return false
}

// Chargeable reports whether claiming the lead costs the lead fee.
// Only open opportunities with a price are chargeable; direct claims
// inside the exclusivity window are free.
func (l Lead) Chargeable() bool {
	return l.Status == StatusOpportunity && l.Price != nil && *l.Price > 0 && !l.Paid
}
