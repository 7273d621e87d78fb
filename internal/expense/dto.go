package expense

import (
	"github.com/shopspring/decimal"

	"github.com/splitlyapp/splitly/internal/expense/split"
)

// CreateExpenseRequest represents the request to record a new expense.
// SplitType defaults to EXACT when omitted, in which case every split entry
// must carry an amount.
type CreateExpenseRequest struct {
	GroupID     string             `json:"group_id" validate:"required,uuid"`
	Description *string            `json:"description,omitempty" validate:"omitempty,max=255"`
	Amount      decimal.Decimal    `json:"amount" validate:"required"`
	SplitType   split.SplitType    `json:"split_type,omitempty"`
	Splits      []split.SplitInput `json:"splits" validate:"required,min=1"`
}

// CreateExpenseResponse carries the identifier of the recorded expense.
type CreateExpenseResponse struct {
	ID string `json:"id"`
}

// ExpenseResponse represents an expense with its splits.
type ExpenseResponse struct {
	ID          string           `json:"id"`
	GroupID     string           `json:"group_id"`
	PaidBy      string           `json:"paid_by"`
	Description *string          `json:"description,omitempty"`
	Amount      decimal.Decimal  `json:"amount"`
	SplitType   split.SplitType  `json:"split_type"`
	CreatedAt   string           `json:"created_at"`
	Splits      []*SplitResponse `json:"splits,omitempty"`
}

// SplitResponse represents one participant's share in an expense response.
type SplitResponse struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// UserSplitResponse represents one entry of the my-expenses listing.
type UserSplitResponse struct {
	ExpenseID   string          `json:"expense_id"`
	GroupID     string          `json:"group_id"`
	Description *string         `json:"description,omitempty"`
	PaidBy      string          `json:"paid_by"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ShareAmount decimal.Decimal `json:"share_amount"`
	CreatedAt   string          `json:"created_at"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO.
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PaidBy:      e.PaidBy,
		Description: e.Description,
		Amount:      e.Amount,
		SplitType:   e.SplitType,
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Split model to a SplitResponse DTO.
func (s *Split) ToResponse() *SplitResponse {
	return &SplitResponse{
		UserID: s.UserID,
		Amount: s.Amount,
	}
}

// ToResponse converts a UserSplit to a UserSplitResponse DTO.
func (u *UserSplit) ToResponse() *UserSplitResponse {
	return &UserSplitResponse{
		ExpenseID:   u.Expense.ID,
		GroupID:     u.Expense.GroupID,
		Description: u.Expense.Description,
		PaidBy:      u.Expense.PaidBy,
		TotalAmount: u.Expense.Amount,
		ShareAmount: u.Split.Amount,
		CreatedAt:   u.Expense.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
