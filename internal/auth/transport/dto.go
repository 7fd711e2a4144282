package transport

import "github.com/google/uuid"

// SignUpRequest registers an account.
type SignUpRequest struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	FullName   string `json:"fullName" validate:"required,min=1,max=200"`
	IsProvider bool   `json:"isProvider"`
}

// SignInRequest authenticates an account.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest rotates a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UserInfo is the account summary embedded in auth responses.
type UserInfo struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	IsProvider bool      `json:"isProvider"`
	IsAdmin    bool      `json:"isAdmin"`
}

// AuthResponse carries a fresh token pair.
type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         UserInfo `json:"user"`
}
