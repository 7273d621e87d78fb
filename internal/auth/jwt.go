// Package auth implements the identity subsystem: password registration,
// login, and access/refresh token issuance. The rest of the application only
// ever sees the opaque user id the token manager vouches for.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims represents the custom JWT claims for a user session.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 access and refresh tokens.
// Access tokens are short-lived and presented on every request; refresh
// tokens are long-lived, signed with a separate secret, and stored hashed
// server-side so they can be revoked.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager creates a token manager.
// Both secrets should be strong random strings (e.g. 32 bytes).
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// RefreshTTL returns the configured refresh token lifetime.
func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// GenerateAccess creates a short-lived access token for the given user.
func (m *TokenManager) GenerateAccess(userID string) (string, error) {
	return m.generate(userID, m.accessSecret, m.accessTTL)
}

// GenerateRefresh creates a long-lived refresh token for the given user.
func (m *TokenManager) GenerateRefresh(userID string) (string, error) {
	return m.generate(userID, m.refreshSecret, m.refreshTTL)
}

func (m *TokenManager) generate(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateAccess verifies an access token and returns the user id it carries.
func (m *TokenManager) ValidateAccess(tokenString string) (string, error) {
	return m.validate(tokenString, m.accessSecret)
}

// ValidateRefresh verifies a refresh token and returns the user id it carries.
func (m *TokenManager) ValidateRefresh(tokenString string) (string, error) {
	return m.validate(tokenString, m.refreshSecret)
}

func (m *TokenManager) validate(tokenString string, secret []byte) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
