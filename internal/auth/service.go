package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/splitlyapp/splitly/internal/metrics"
	"github.com/splitlyapp/splitly/internal/user"
)

// Common errors
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrWeakPassword        = errors.New("password must be at least 8 characters")
	ErrEmailExists         = errors.New("email already registered")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// UserStore is the user persistence interface the service consumes.
// Implemented by the user repository.
type UserStore interface {
	Create(ctx context.Context, u *user.User) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// TokenStore persists hashed refresh tokens.
// Implemented by the auth repository.
type TokenStore interface {
	Save(ctx context.Context, token *RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	DeleteByHash(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// TokenPair bundles a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service handles registration, login, and refresh token rotation.
type Service struct {
	users   UserStore
	tokens  TokenStore
	jwt     *TokenManager
	metrics metrics.Recorder
}

// NewService creates a new auth service with dependencies injected.
func NewService(users UserStore, tokens TokenStore, jwt *TokenManager, rec metrics.Recorder) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		jwt:     jwt,
		metrics: rec,
	}
}

// Register creates a new user account with a bcrypt-hashed password and
// issues the first token pair.
func (s *Service) Register(ctx context.Context, name, email, password string) (*user.User, *TokenPair, error) {
	if len(password) < 8 {
		return nil, nil, ErrWeakPassword
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
	})
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, created.ID)
	if err != nil {
		return nil, nil, err
	}

	return created, pair, nil
}

// Login verifies the credentials and issues a new token pair.
// The error is identical for an unknown email and a wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, *TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		s.metrics.RecordAuthFailure()
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.metrics.RecordAuthFailure()
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}

	return u, pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. A token that fails verification, is unknown to the store,
// or has expired server-side yields ErrInvalidRefreshToken.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.jwt.ValidateRefresh(refreshToken)
	if err != nil {
		s.metrics.RecordAuthFailure()
		return nil, ErrInvalidRefreshToken
	}

	stored, err := s.tokens.GetByHash(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.UserID != userID || time.Now().After(stored.ExpiresAt) {
		s.metrics.RecordAuthFailure()
		return nil, ErrInvalidRefreshToken
	}

	if err := s.tokens.DeleteByHash(ctx, stored.TokenHash); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, userID)
}

// Logout revokes the presented refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.DeleteByHash(ctx, hashToken(refreshToken))
}

// Me returns the account behind an authenticated user id.
func (s *Service) Me(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) issueTokens(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := s.jwt.GenerateAccess(userID)
	if err != nil {
		return nil, err
	}

	refresh, err := s.jwt.GenerateRefresh(userID)
	if err != nil {
		return nil, err
	}

	err = s.tokens.Save(ctx, &RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hashToken(refresh),
		ExpiresAt: time.Now().Add(s.jwt.RefreshTTL()),
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// hashToken returns the hex SHA-256 digest of a token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
