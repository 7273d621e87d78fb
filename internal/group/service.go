package group

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/splitlyapp/splitly/internal/authz"
	"github.com/splitlyapp/splitly/internal/metrics"
)

var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrNotAMember          = errors.New("user is not a member of this group")
	ErrMemberAlreadyExists = errors.New("user is already a member of this group")
	ErrForbidden           = errors.New("not authorized to perform this action")
	ErrMemberHasExpenses   = errors.New("member has expenses in this group")
	ErrInvalidName         = errors.New("group name must be between 3 and 50 characters")
	ErrInvalidRole         = errors.New("role must be either admin or member")
)

// Store provides group persistence for the service.
type Store interface {
	CreateGroupWithOwner(ctx context.Context, group *Group) (*Group, error)
	GetByID(ctx context.Context, id string) (*Group, error)
	GetMembers(ctx context.Context, groupID string) ([]*Membership, error)
	AddMember(ctx context.Context, groupID, userID string, role authz.Role) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListByUserID(ctx context.Context, userID string) ([]*GroupWithRole, error)
	UserExists(ctx context.Context, userID string) (bool, error)
	CountUserExpenseInvolvement(ctx context.Context, groupID, userID string) (int, error)
}

// Notifier delivers membership notifications. Failures are logged, never
// surfaced to the caller.
type Notifier interface {
	NotifyMemberAdded(ctx context.Context, userID, groupID, groupName string) error
}

type Service struct {
	store    Store
	gate     *authz.Gate
	notifier Notifier
	metrics  metrics.Recorder
}

func NewService(store Store, gate *authz.Gate, notifier Notifier, rec metrics.Recorder) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{store: store, gate: gate, notifier: notifier, metrics: rec}
}

// Create creates a group owned by ownerID. The owner is enrolled as admin in
// the same transaction as the group insert, so a group is never observable
// without its owner membership.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateGroupRequest) (*Group, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 3 || len(name) > 50 {
		return nil, ErrInvalidName
	}

	group := &Group{
		ID:      uuid.NewString(),
		Name:    name,
		OwnerID: ownerID,
	}

	created, err := s.store.CreateGroupWithOwner(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	s.metrics.RecordGroupCreated()
	return created, nil
}

// GetByIDWithMembers returns a group and its member list. Only members may
// view a group; outsiders get ErrForbidden even when the group exists.
func (s *Service) GetByIDWithMembers(ctx context.Context, groupID, actorID string) (*Group, []*Membership, error) {
	group, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return nil, nil, ErrGroupNotFound
	}

	ok, err := s.gate.IsMember(ctx, groupID, actorID)
	if err != nil {
		return nil, nil, fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return nil, nil, ErrForbidden
	}

	members, err := s.store.GetMembers(ctx, groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("list members: %w", err)
	}

	return group, members, nil
}

// ListMyGroups returns every group the actor belongs to. An empty list is a
// normal result, not an error.
func (s *Service) ListMyGroups(ctx context.Context, actorID string) ([]*GroupWithRole, error) {
	groups, err := s.store.ListByUserID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	if groups == nil {
		groups = []*GroupWithRole{}
	}
	return groups, nil
}

// AddMember enrolls a user into a group. Only group admins may add members.
// The admin check runs first, before any group or user lookup: non-admins
// always get ErrForbidden, whether or not the group exists, and learn
// nothing about who exists.
func (s *Service) AddMember(ctx context.Context, groupID, actorID string, req AddMemberRequest) error {
	role := req.Role
	if role == "" {
		role = authz.RoleMember
	}
	if !role.Valid() {
		return ErrInvalidRole
	}

	isAdmin, err := s.gate.IsAdmin(ctx, groupID, actorID)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if !isAdmin {
		return ErrForbidden
	}

	group, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("get group: %w", err)
	}
	if group == nil {
		return ErrGroupNotFound
	}

	exists, err := s.store.UserExists(ctx, req.UserID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}

	if err := s.store.AddMember(ctx, groupID, req.UserID, role); err != nil {
		if errors.Is(err, ErrMemberAlreadyExists) {
			return ErrMemberAlreadyExists
		}
		return fmt.Errorf("add member: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyMemberAdded(ctx, req.UserID, groupID, group.Name); err != nil {
			slog.Warn("failed to notify member", "user_id", req.UserID, "group_id", groupID, "error", err)
		}
	}

	return nil
}

// RemoveMember removes a user from a group. Only group admins may remove
// members, and a member with recorded expenses in the group cannot be removed
// because their split rows would dangle. The admin check runs first; a
// missing group has no admins, so it yields ErrForbidden like any other
// unauthorized call.
func (s *Service) RemoveMember(ctx context.Context, groupID, actorID, userID string) error {
	isAdmin, err := s.gate.IsAdmin(ctx, groupID, actorID)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if !isAdmin {
		return ErrForbidden
	}

	involvement, err := s.store.CountUserExpenseInvolvement(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("check expense involvement: %w", err)
	}
	if involvement > 0 {
		return ErrMemberHasExpenses
	}

	if err := s.store.RemoveMember(ctx, groupID, userID); err != nil {
		if errors.Is(err, ErrNotAMember) {
			return ErrNotAMember
		}
		return fmt.Errorf("remove member: %w", err)
	}

	return nil
}
