package group

import (
	"time"

	"github.com/splitlyapp/splitly/internal/authz"
)

// Group represents a group of users sharing expenses.
// The owner always holds an admin membership, established atomically at
// creation and never reassigned.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Membership represents one user's participation in one group.
// (UserID, GroupID) is the composite key; one row per pair.
type Membership struct {
	UserID    string     `json:"user_id"`
	GroupID   string     `json:"group_id"`
	Role      authz.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`

	// Populated from JOIN
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// GroupWithRole pairs a group with the caller's role in it,
// as returned by the my-groups listing.
type GroupWithRole struct {
	Group *Group
	Role  authz.Role
}
