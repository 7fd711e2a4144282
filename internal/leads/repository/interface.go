package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"marketplace_backend/internal/leads/domain"
)

// CreateParams contains parameters for storing a new lead.
type CreateParams struct {
	CustomerID uuid.UUID
	ProviderID uuid.UUID
	ServiceID  *uuid.UUID
	Content    string
	Price      *float64
}

// ClaimResult carries the claimed lead plus the status it was claimed from,
// which decides whether the lead fee applies.
type ClaimResult struct {
	Lead       domain.Lead
	FromStatus domain.Status
}

// LeadReader provides read operations for leads.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	// ListForProvider returns direct and won leads addressed to the provider.
	ListForProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Lead, error)
	// ListOpportunities returns open opportunities in categories the provider
	// serves, never including the provider's own inquiries.
	ListOpportunities(ctx context.Context, providerID uuid.UUID) ([]domain.Lead, error)
	// OffersCategory reports whether the provider has a service in the category.
	OffersCategory(ctx context.Context, providerID uuid.UUID, category string) (bool, error)
}

// LeadWriter provides write operations for leads.
type LeadWriter interface {
	Create(ctx context.Context, params CreateParams) (domain.Lead, error)
	// Claim atomically transitions the lead to responded for the provider.
	// Returns apperr Conflict when another provider won first, Forbidden when
	// a direct lead belongs to someone else, NotFound when no such lead.
	Claim(ctx context.Context, leadID, providerID uuid.UUID) (ClaimResult, error)
	// ClaimOpenDirect claims every open direct lead the customer has addressed
	// to this provider. Used when an ordinary reply implies a response.
	ClaimOpenDirect(ctx context.Context, customerID, providerID uuid.UUID) ([]ClaimResult, error)
	// SweepExpired moves direct leads created before the cutoff to opportunity
	// and returns how many rows changed. Idempotent.
	SweepExpired(ctx context.Context, cutoff time.Time) (int64, error)
	MarkPaid(ctx context.Context, leadID uuid.UUID) error
}

// Repository combines all lead repository operations.
type Repository interface {
	LeadReader
	LeadWriter
}
