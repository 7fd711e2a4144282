package transport

import (
	"time"

	"github.com/google/uuid"
)

// SubmitLeadRequest contains data for submitting a new lead to a provider.
type SubmitLeadRequest struct {
	ProviderID uuid.UUID  `json:"providerId" validate:"required"`
	ServiceID  *uuid.UUID `json:"serviceId,omitempty"`
	Content    string     `json:"content" validate:"required,min=1,max=4000"`
}

// RespondRequest contains the provider's reply that claims a lead.
type RespondRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// LeadResponse represents a lead in API responses.
type LeadResponse struct {
	ID           uuid.UUID  `json:"id"`
	CustomerID   uuid.UUID  `json:"customerId"`
	ProviderID   uuid.UUID  `json:"providerId"`
	ServiceID    *uuid.UUID `json:"serviceId,omitempty"`
	ServiceTitle *string    `json:"serviceTitle,omitempty"`
	Category     *string    `json:"category,omitempty"`
	Content      string     `json:"content"`
	Status       string     `json:"status"`
	Price        *float64   `json:"price,omitempty"`
	Paid         bool       `json:"paid"`
	RespondedBy  *uuid.UUID `json:"respondedBy,omitempty"`
	RespondedAt  *time.Time `json:"respondedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// LeadListResponse wraps a list of leads.
type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}
