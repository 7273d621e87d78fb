package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Store provides notification persistence for the service.
type Store interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByRecipientID(ctx context.Context, recipientID string, limit, offset int, unreadOnly bool) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context, recipientID string) error
	GetUnreadCount(ctx context.Context, recipientID string) (int, error)
}

// Service handles notification business logic
type Service struct {
	store Store
}

// NewService creates a new notification service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListByRecipientID retrieves notifications for a user
func (s *Service) ListByRecipientID(ctx context.Context, recipientID string, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read. Only the recipient may do so.
func (s *Service) MarkAsRead(ctx context.Context, id, userID string) error {
	notification, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.RecipientID != userID {
		return ErrNotRecipient
	}

	return s.store.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.store.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.GetUnreadCount(ctx, userID)
}

// NotifyMemberAdded records an in-app notification for a user added to a
// group. Satisfies the group service's Notifier.
func (s *Service) NotifyMemberAdded(ctx context.Context, userID, groupID, groupName string) error {
	entityType := EntityTypeGroup
	_, err := s.store.Create(ctx, &Notification{
		ID:                uuid.NewString(),
		RecipientID:       userID,
		Message:           "You have been added to group: " + groupName,
		RelatedEntityType: &entityType,
		RelatedEntityID:   &groupID,
	})
	return err
}

// NotifyExpenseAdded records an in-app notification for a user who owes a
// share of a new expense. Satisfies the expense service's Notifier.
func (s *Service) NotifyExpenseAdded(ctx context.Context, userID, expenseID string, amount decimal.Decimal) error {
	entityType := EntityTypeExpense
	_, err := s.store.Create(ctx, &Notification{
		ID:                uuid.NewString(),
		RecipientID:       userID,
		Message:           fmt.Sprintf("An expense was added and your share is %s", amount.StringFixed(2)),
		RelatedEntityType: &entityType,
		RelatedEntityID:   &expenseID,
	})
	return err
}
