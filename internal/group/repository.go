package group

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/splitlyapp/splitly/internal/authz"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateGroupWithOwner inserts the group and its owner membership in one
// transaction. The owner is always enrolled with the admin role.
func (r *Repository) CreateGroupWithOwner(ctx context.Context, group *Group) (*Group, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO groups (id, name, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, owner_id, created_at, updated_at`

	created := &Group{}
	err = tx.QueryRowContext(ctx, query, group.ID, group.Name, group.OwnerID).Scan(
		&created.ID,
		&created.Name,
		&created.OwnerID,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	memberQuery := `
		INSERT INTO group_members (user_id, group_id, role)
		VALUES ($1, $2, $3)`

	_, err = tx.ExecContext(ctx, memberQuery, group.OwnerID, created.ID, authz.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to enroll owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Group, error) {
	query := `
		SELECT id, name, owner_id, created_at, updated_at
		FROM groups
		WHERE id = $1`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.OwnerID,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// GetMembers returns the memberships of a group joined with user details.
func (r *Repository) GetMembers(ctx context.Context, groupID string) ([]*Membership, error) {
	query := `
		SELECT gm.user_id, gm.group_id, gm.role, gm.created_at, u.name, u.email
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = $1
		ORDER BY gm.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*Membership
	for rows.Next() {
		m := &Membership{}
		err := rows.Scan(&m.UserID, &m.GroupID, &m.Role, &m.CreatedAt, &m.Name, &m.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// MemberRole reports the role a user holds in a group, and whether the
// membership exists at all. Implements authz.MembershipReader.
func (r *Repository) MemberRole(ctx context.Context, groupID, userID string) (authz.Role, bool, error) {
	query := `
		SELECT role
		FROM group_members
		WHERE group_id = $1 AND user_id = $2`

	var role authz.Role
	err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(&role)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get member role: %w", err)
	}

	return role, true, nil
}

// AddMember enrolls a user in a group. Returns ErrMemberAlreadyExists when
// the composite primary key rejects a duplicate enrollment.
func (r *Repository) AddMember(ctx context.Context, groupID, userID string, role authz.Role) error {
	query := `
		INSERT INTO group_members (user_id, group_id, role)
		VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, userID, groupID, role)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrMemberAlreadyExists
		}
		return fmt.Errorf("failed to add member: %w", err)
	}

	return nil
}

// RemoveMember deletes a membership. Returns ErrNotAMember when no row
// matched.
func (r *Repository) RemoveMember(ctx context.Context, groupID, userID string) error {
	query := `
		DELETE FROM group_members
		WHERE group_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check removal: %w", err)
	}
	if affected == 0 {
		return ErrNotAMember
	}

	return nil
}

// ListByUserID returns every group the user belongs to, with their role.
func (r *Repository) ListByUserID(ctx context.Context, userID string) ([]*GroupWithRole, error) {
	query := `
		SELECT g.id, g.name, g.owner_id, g.created_at, g.updated_at, gm.role
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1
		ORDER BY g.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*GroupWithRole
	for rows.Next() {
		g := &Group{}
		entry := &GroupWithRole{Group: g}
		err := rows.Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt, &entry.Role)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}

func (r *Repository) UserExists(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}

	return exists, nil
}

// CountUserExpenseInvolvement counts expense rows in the group that the user
// either paid or holds a split in. A positive count blocks removal.
func (r *Repository) CountUserExpenseInvolvement(ctx context.Context, groupID, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM expenses e
		WHERE e.group_id = $1
		  AND (e.paid_by = $2 OR EXISTS (
			SELECT 1 FROM expense_splits s
			WHERE s.expense_id = e.id AND s.user_id = $2
		  ))`

	var count int
	if err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count expense involvement: %w", err)
	}

	return count, nil
}
