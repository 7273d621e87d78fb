package group

import "github.com/splitlyapp/splitly/internal/authz"

// CreateGroupRequest represents the request to create a new group.
type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,min=3,max=50"`
}

// AddMemberRequest represents the request to add a member to a group.
type AddMemberRequest struct {
	UserID string     `json:"user_id" validate:"required,uuid"`
	Role   authz.Role `json:"role" validate:"omitempty,oneof=member admin"`
}

// GroupResponse represents the response for a group.
type GroupResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	OwnerID   string            `json:"owner_id"`
	CreatedAt string            `json:"created_at"`
	Members   []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response.
type MemberResponse struct {
	UserID   string     `json:"user_id"`
	Name     string     `json:"name,omitempty"`
	Email    string     `json:"email,omitempty"`
	Role     authz.Role `json:"role"`
	JoinedAt string     `json:"joined_at"`
}

// MyGroupResponse represents one entry of the my-groups listing.
type MyGroupResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Role      authz.Role `json:"role"`
	CreatedAt string     `json:"created_at"`
}

// ToResponse converts a Group model to a GroupResponse DTO.
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		OwnerID:   g.OwnerID,
		CreatedAt: g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Membership model to a MemberResponse DTO.
func (m *Membership) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:   m.UserID,
		Name:     m.Name,
		Email:    m.Email,
		Role:     m.Role,
		JoinedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a GroupWithRole to a MyGroupResponse DTO.
func (g *GroupWithRole) ToResponse() *MyGroupResponse {
	return &MyGroupResponse{
		ID:        g.Group.ID,
		Name:      g.Group.Name,
		Role:      g.Role,
		CreatedAt: g.Group.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
