package user

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrUserNotFound = errors.New("user not found")
)

// Store is the persistence interface the service consumes.
type Store interface {
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
}

// Service handles user directory lookups.
// Registration lives in the auth package; this service only reads.
type Service struct {
	store Store
}

// NewService creates a new user service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetByID retrieves a user by their ID.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// List retrieves users with pagination.
func (s *Service) List(ctx context.Context, page, perPage int) ([]*User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.List(ctx, perPage, offset)
}
