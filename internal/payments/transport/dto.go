package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateIntentRequest opens a payment intent for a booking.
type CreateIntentRequest struct {
	BookingID uuid.UUID `json:"bookingId" validate:"required"`
}

// IntentResponse represents a payment intent in API responses.
// ClientSecret is only returned to the paying customer.
type IntentResponse struct {
	ID             uuid.UUID  `json:"id"`
	BookingID      uuid.UUID  `json:"bookingId"`
	Amount         float64    `json:"amount"`
	Status         string     `json:"status"`
	ClientSecret   string     `json:"clientSecret,omitempty"`
	PublishableKey string     `json:"publishableKey,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	SettledAt      *time.Time `json:"settledAt,omitempty"`
}

// CreateMethodRequest stores a payment method. Kind-specific fields are
// required for their kind and ignored otherwise.
type CreateMethodRequest struct {
	Type           string  `json:"type" validate:"required,oneof=card bank mobile"`
	IsDefault      bool    `json:"isDefault"`
	Country        *string `json:"country,omitempty" validate:"omitempty,len=2"`
	CardName       *string `json:"cardName,omitempty" validate:"required_if=Type card,omitempty,max=200"`
	CardLast4      *string `json:"cardLast4,omitempty" validate:"required_if=Type card,omitempty,len=4,numeric"`
	ExpiryDate     *string `json:"expiryDate,omitempty" validate:"required_if=Type card,omitempty,max=7"`
	AccountName    *string `json:"accountName,omitempty" validate:"required_if=Type bank,omitempty,max=200"`
	AccountNumber  *string `json:"accountNumber,omitempty" validate:"required_if=Type bank,omitempty,max=34"`
	BankName       *string `json:"bankName,omitempty" validate:"omitempty,max=200"`
	RoutingNumber  *string `json:"routingNumber,omitempty" validate:"omitempty,max=34"`
	PhoneNumber    *string `json:"phoneNumber,omitempty" validate:"required_if=Type mobile,omitempty,max=20"`
	MobileProvider *string `json:"mobileProvider,omitempty" validate:"required_if=Type mobile,omitempty,max=100"`
}

// MethodResponse represents a payment method in API responses.
type MethodResponse struct {
	ID             uuid.UUID `json:"id"`
	Type           string    `json:"type"`
	IsDefault      bool      `json:"isDefault"`
	Country        *string   `json:"country,omitempty"`
	CardName       *string   `json:"cardName,omitempty"`
	CardLast4      *string   `json:"cardLast4,omitempty"`
	ExpiryDate     *string   `json:"expiryDate,omitempty"`
	AccountName    *string   `json:"accountName,omitempty"`
	AccountNumber  *string   `json:"accountNumber,omitempty"`
	BankName       *string   `json:"bankName,omitempty"`
	RoutingNumber  *string   `json:"routingNumber,omitempty"`
	PhoneNumber    *string   `json:"phoneNumber,omitempty"`
	MobileProvider *string   `json:"mobileProvider,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MethodListResponse wraps the payment method list.
type MethodListResponse struct {
	Items []MethodResponse `json:"items"`
	Total int              `json:"total"`
}

// TopUpRequest credits the provider's lead balance.
type TopUpRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0,lte=10000"`
}

// BalanceResponse carries the provider's lead balance.
type BalanceResponse struct {
	Balance float64 `json:"balance"`
}
