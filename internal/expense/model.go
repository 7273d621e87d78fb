package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitlyapp/splitly/internal/expense/split"
)

// Expense represents a shared expense recorded in a group.
type Expense struct {
	ID          string
	GroupID     string
	PaidBy      string
	Description *string
	Amount      decimal.Decimal
	SplitType   split.SplitType
	CreatedAt   time.Time
}

// Split represents one participant's share of an expense.
type Split struct {
	ExpenseID string
	UserID    string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// UserSplit is a split joined with its parent expense, used for the
// cross-group listing of everything a user is involved in.
type UserSplit struct {
	Split   *Split
	Expense *Expense
}
