package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Intent statuses. The simulated processor only ever moves pending -> succeeded.
const (
	IntentPending   = "pending"
	IntentSucceeded = "succeeded"
	IntentFailed    = "failed"
)

// Intent is a simulated payment intent attached to a booking.
type Intent struct {
	ID           uuid.UUID
	BookingID    uuid.UUID
	Amount       float64
	Status       string
	ClientSecret string
	CreatedAt    time.Time
	SettledAt    *time.Time
}

// Method is a stored payment method. Fields beyond Type are populated
// according to the method kind (card, bank or mobile).
type Method struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Type           string
	IsDefault      bool
	Country        *string
	CardName       *string
	CardLast4      *string
	ExpiryDate     *string
	AccountName    *string
	AccountNumber  *string
	BankName       *string
	RoutingNumber  *string
	PhoneNumber    *string
	MobileProvider *string
	CreatedAt      time.Time
}

// CreateMethodParams contains parameters for storing a payment method.
type CreateMethodParams struct {
	UserID         uuid.UUID
	Type           string
	IsDefault      bool
	Country        *string
	CardName       *string
	CardLast4      *string
	ExpiryDate     *string
	AccountName    *string
	AccountNumber  *string
	BankName       *string
	RoutingNumber  *string
	PhoneNumber    *string
	MobileProvider *string
}

// IntentRepository provides payment intent operations.
type IntentRepository interface {
	CreateIntent(ctx context.Context, bookingID uuid.UUID, amount float64, clientSecret string) (Intent, error)
	GetIntent(ctx context.Context, id uuid.UUID) (Intent, error)
	// SettleIntent moves a pending intent to succeeded. The bool reports
	// whether this call performed the transition; an already settled intent
	// returns false without error so settlement stays idempotent.
	SettleIntent(ctx context.Context, id uuid.UUID) (Intent, bool, error)
}

// MethodRepository provides payment method operations. The single-default
// invariant is enforced here: marking one method default clears the others.
type MethodRepository interface {
	CreateMethod(ctx context.Context, params CreateMethodParams) (Method, error)
	ListMethods(ctx context.Context, userID uuid.UUID) ([]Method, error)
	DeleteMethod(ctx context.Context, userID, id uuid.UUID) error
	SetDefaultMethod(ctx context.Context, userID, id uuid.UUID) error
}

// BalanceRepository provides lead balance operations on the user account.
type BalanceRepository interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (float64, error)
	// ChargeBalance conditionally debits the balance; insufficient funds
	// surface as apperr Conflict and leave the balance untouched.
	ChargeBalance(ctx context.Context, userID uuid.UUID, amount float64) error
	CreditBalance(ctx context.Context, userID uuid.UUID, amount float64) error
}

// Repository combines all payment repository operations.
type Repository interface {
	IntentRepository
	MethodRepository
	BalanceRepository
}
