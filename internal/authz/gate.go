// Package authz provides the membership predicates that gate every group and
// expense mutation. The gate performs no writes of its own; all it does is
// read membership state, so it can be exercised against fake data in tests.
package authz

import "context"

// Role is a member's role within a group.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// MembershipReader supplies membership state to the gate.
// Implemented by the group repository.
type MembershipReader interface {
	// MemberRole returns the role of userID in groupID.
	// ok is false when no membership exists.
	MemberRole(ctx context.Context, groupID, userID string) (role Role, ok bool, err error)
}

// Gate answers authorization questions from membership state.
type Gate struct {
	members MembershipReader
}

// NewGate creates a gate backed by the given membership reader.
func NewGate(members MembershipReader) *Gate {
	return &Gate{members: members}
}

// IsMember reports whether userID belongs to groupID.
func (g *Gate) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	_, ok, err := g.members.MemberRole(ctx, groupID, userID)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// IsAdmin reports whether userID belongs to groupID with the admin role.
func (g *Gate) IsAdmin(ctx context.Context, groupID, userID string) (bool, error) {
	role, ok, err := g.members.MemberRole(ctx, groupID, userID)
	if err != nil {
		return false, err
	}
	return ok && role == RoleAdmin, nil
}

// IsPayer reports whether userID is the payer of an expense.
// Pure function; the expense is already in hand when this is asked.
func IsPayer(paidBy, userID string) bool {
	return paidBy != "" && paidBy == userID
}
