package auth

import "github.com/splitlyapp/splitly/internal/user"

// RegisterRequest represents the request to register a new account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the request to log in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the authenticated user and the access token.
// The refresh token travels only in an httpOnly cookie.
type AuthResponse struct {
	User        *user.UserResponse `json:"user"`
	AccessToken string             `json:"access_token"`
}

// RefreshResponse carries a freshly rotated access token.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}
