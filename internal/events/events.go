// Package events defines the outbound event contract. Publishing is best
// effort; services log failures and carry on.
package events

import "github.com/shopspring/decimal"

const TopicExpenseCreated = "expense.created"

// Publisher delivers domain events to downstream consumers.
type Publisher interface {
	Publish(topic string, event any) error
}

// ExpenseCreated is emitted after an expense and its splits are committed.
type ExpenseCreated struct {
	ExpenseID string          `json:"expense_id"`
	GroupID   string          `json:"group_id"`
	PaidBy    string          `json:"paid_by"`
	Amount    decimal.Decimal `json:"amount"`
	SplitType string          `json:"split_type"`
	CreatedAt string          `json:"created_at"`
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(topic string, event any) error { return nil }
