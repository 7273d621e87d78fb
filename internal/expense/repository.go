package expense

import (
	"context"
	"database/sql"
	"fmt"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateExpenseWithSplits inserts the expense and all of its split rows in
// one transaction. Either everything is committed or nothing is.
func (r *Repository) CreateExpenseWithSplits(ctx context.Context, expense *Expense, splits []*Split) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (id, group_id, paid_by, description, amount, split_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, group_id, paid_by, description, amount, split_type, created_at`

	created := &Expense{}
	err = tx.QueryRowContext(ctx, query,
		expense.ID,
		expense.GroupID,
		expense.PaidBy,
		expense.Description,
		expense.Amount,
		expense.SplitType,
	).Scan(
		&created.ID,
		&created.GroupID,
		&created.PaidBy,
		&created.Description,
		&created.Amount,
		&created.SplitType,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	splitQuery := `
		INSERT INTO expense_splits (expense_id, user_id, amount)
		VALUES ($1, $2, $3)`

	for _, s := range splits {
		if _, err := tx.ExecContext(ctx, splitQuery, created.ID, s.UserID, s.Amount); err != nil {
			return nil, fmt.Errorf("failed to create split for user %s: %w", s.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Expense, error) {
	query := `
		SELECT id, group_id, paid_by, description, amount, split_type, created_at
		FROM expenses
		WHERE id = $1`

	expense := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PaidBy,
		&expense.Description,
		&expense.Amount,
		&expense.SplitType,
		&expense.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return expense, nil
}

func (r *Repository) GetSplits(ctx context.Context, expenseID string) ([]*Split, error) {
	query := `
		SELECT expense_id, user_id, amount, created_at
		FROM expense_splits
		WHERE expense_id = $1
		ORDER BY created_at ASC, user_id ASC`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		s := &Split{}
		if err := rows.Scan(&s.ExpenseID, &s.UserID, &s.Amount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return splits, nil
}

// ListByGroupID returns the expenses of a group in chronological order.
func (r *Repository) ListByGroupID(ctx context.Context, groupID string) ([]*Expense, error) {
	query := `
		SELECT id, group_id, paid_by, description, amount, split_type, created_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		e := &Expense{}
		err := rows.Scan(&e.ID, &e.GroupID, &e.PaidBy, &e.Description, &e.Amount, &e.SplitType, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

// ListSplitsByUserID returns every split the user holds, across all groups,
// joined with the parent expense. Newest expenses first.
func (r *Repository) ListSplitsByUserID(ctx context.Context, userID string) ([]*UserSplit, error) {
	query := `
		SELECT s.expense_id, s.user_id, s.amount, s.created_at,
		       e.id, e.group_id, e.paid_by, e.description, e.amount, e.split_type, e.created_at
		FROM expense_splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE s.user_id = $1
		ORDER BY e.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user splits: %w", err)
	}
	defer rows.Close()

	var results []*UserSplit
	for rows.Next() {
		s := &Split{}
		e := &Expense{}
		err := rows.Scan(
			&s.ExpenseID, &s.UserID, &s.Amount, &s.CreatedAt,
			&e.ID, &e.GroupID, &e.PaidBy, &e.Description, &e.Amount, &e.SplitType, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user split: %w", err)
		}
		results = append(results, &UserSplit{Split: s, Expense: e})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user splits: %w", err)
	}

	return results, nil
}

// Delete removes an expense. Its split rows go with it through the cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM expenses WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deletion: %w", err)
	}
	if affected == 0 {
		return ErrExpenseNotFound
	}

	return nil
}
