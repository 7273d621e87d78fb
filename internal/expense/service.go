package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitlyapp/splitly/internal/authz"
	"github.com/splitlyapp/splitly/internal/events"
	"github.com/splitlyapp/splitly/internal/expense/split"
	"github.com/splitlyapp/splitly/internal/metrics"
)

var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrMissingPayer    = errors.New("payer identity is required")
	ErrForbidden       = errors.New("not authorized to perform this action")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrNoSplits        = errors.New("at least one split is required")
	ErrInvalidSplit    = errors.New("invalid split type")
)

// NotAMemberError identifies the user who is outside the group.
type NotAMemberError struct {
	UserID  string
	GroupID string
}

func (e *NotAMemberError) Error() string {
	return fmt.Sprintf("user %s is not a member of group %s", e.UserID, e.GroupID)
}

// SplitMismatchError reports the computed split sum against the expense
// amount it was expected to match.
type SplitMismatchError struct {
	SplitSum decimal.Decimal
	Amount   decimal.Decimal
}

func (e *SplitMismatchError) Error() string {
	return fmt.Sprintf("splits sum to %s but expense amount is %s", e.SplitSum.StringFixed(2), e.Amount.StringFixed(2))
}

// Store provides expense persistence for the service.
type Store interface {
	CreateExpenseWithSplits(ctx context.Context, expense *Expense, splits []*Split) (*Expense, error)
	GetByID(ctx context.Context, id string) (*Expense, error)
	GetSplits(ctx context.Context, expenseID string) ([]*Split, error)
	ListByGroupID(ctx context.Context, groupID string) ([]*Expense, error)
	ListSplitsByUserID(ctx context.Context, userID string) ([]*UserSplit, error)
	Delete(ctx context.Context, id string) error
}

// Notifier delivers expense notifications. Failures are logged, never
// surfaced to the caller.
type Notifier interface {
	NotifyExpenseAdded(ctx context.Context, userID, expenseID string, amount decimal.Decimal) error
}

type Service struct {
	store     Store
	gate      *authz.Gate
	factory   *split.Factory
	publisher events.Publisher
	notifier  Notifier
	metrics   metrics.Recorder
}

func NewService(store Store, gate *authz.Gate, publisher events.Publisher, notifier Notifier, rec metrics.Recorder) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		store:     store,
		gate:      gate,
		factory:   split.NewFactory(),
		publisher: publisher,
		notifier:  notifier,
		metrics:   rec,
	}
}

// Create records an expense paid by payerID and its splits as one atomic
// unit. The payer and every split participant must be members of the group,
// and the splits must sum to the expense amount within the split tolerance.
// Only the new expense's identifier is returned; callers re-fetch for detail.
func (s *Service) Create(ctx context.Context, payerID string, req CreateExpenseRequest) (string, error) {
	if payerID == "" {
		return "", ErrMissingPayer
	}
	if !req.Amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	if len(req.Splits) == 0 {
		return "", ErrNoSplits
	}

	ok, err := s.gate.IsMember(ctx, req.GroupID, payerID)
	if err != nil {
		return "", fmt.Errorf("check payer membership: %w", err)
	}
	if !ok {
		return "", &NotAMemberError{UserID: payerID, GroupID: req.GroupID}
	}

	for _, in := range req.Splits {
		ok, err := s.gate.IsMember(ctx, req.GroupID, in.UserID)
		if err != nil {
			return "", fmt.Errorf("check split membership: %w", err)
		}
		if !ok {
			return "", &NotAMemberError{UserID: in.UserID, GroupID: req.GroupID}
		}
	}

	splitType := req.SplitType
	if splitType == "" {
		splitType = split.SplitTypeExact
	}
	strategy, err := s.factory.Create(splitType)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidSplit, splitType)
	}

	outputs, err := strategy.Calculate(req.Amount, req.Splits)
	if err != nil {
		if errors.Is(err, split.ErrInvalidExactAmounts) {
			s.metrics.RecordSplitMismatch()
			return "", &SplitMismatchError{SplitSum: sumInputAmounts(req.Splits), Amount: req.Amount}
		}
		return "", err
	}

	expense := &Expense{
		ID:          uuid.NewString(),
		GroupID:     req.GroupID,
		PaidBy:      payerID,
		Description: req.Description,
		Amount:      req.Amount,
		SplitType:   splitType,
	}

	splits := make([]*Split, len(outputs))
	for i, out := range outputs {
		splits[i] = &Split{
			ExpenseID: expense.ID,
			UserID:    out.UserID,
			Amount:    out.Amount,
		}
	}

	created, err := s.store.CreateExpenseWithSplits(ctx, expense, splits)
	if err != nil {
		return "", fmt.Errorf("create expense: %w", err)
	}

	s.metrics.RecordExpenseCreated()
	s.publishCreated(created)
	s.notifyParticipants(ctx, created, splits)

	return created.ID, nil
}

// GetByID returns an expense with its splits. Reads are not membership
// gated; expense identifiers are unguessable UUIDs.
func (s *Service) GetByID(ctx context.Context, id string) (*Expense, []*Split, error) {
	expense, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get expense: %w", err)
	}
	if expense == nil {
		return nil, nil, ErrExpenseNotFound
	}

	splits, err := s.store.GetSplits(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get splits: %w", err)
	}

	return expense, splits, nil
}

// ListByGroup returns a group's expenses in chronological order.
func (s *Service) ListByGroup(ctx context.Context, groupID string) ([]*Expense, error) {
	expenses, err := s.store.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group expenses: %w", err)
	}
	if expenses == nil {
		expenses = []*Expense{}
	}
	return expenses, nil
}

// ListUserSplits returns everything the user owes or is owed, across all of
// their groups.
func (s *Service) ListUserSplits(ctx context.Context, userID string) ([]*UserSplit, error) {
	results, err := s.store.ListSplitsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user splits: %w", err)
	}
	if results == nil {
		results = []*UserSplit{}
	}
	return results, nil
}

// Delete removes an expense and its splits. Only the original payer may
// delete; group admins may not.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	expense, err := s.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get expense: %w", err)
	}
	if expense == nil {
		return ErrExpenseNotFound
	}

	if !authz.IsPayer(expense.PaidBy, actorID) {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		return fmt.Errorf("delete expense: %w", err)
	}

	return nil
}

func (s *Service) publishCreated(e *Expense) {
	event := events.ExpenseCreated{
		ExpenseID: e.ID,
		GroupID:   e.GroupID,
		PaidBy:    e.PaidBy,
		Amount:    e.Amount,
		SplitType: string(e.SplitType),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
	if err := s.publisher.Publish(events.TopicExpenseCreated, event); err != nil {
		slog.Warn("failed to publish expense event", "expense_id", e.ID, "error", err)
	}
}

func (s *Service) notifyParticipants(ctx context.Context, e *Expense, splits []*Split) {
	if s.notifier == nil {
		return
	}
	for _, sp := range splits {
		if sp.UserID == e.PaidBy {
			continue
		}
		if err := s.notifier.NotifyExpenseAdded(ctx, sp.UserID, e.ID, sp.Amount); err != nil {
			slog.Warn("failed to notify participant", "user_id", sp.UserID, "expense_id", e.ID, "error", err)
		}
	}
}

func sumInputAmounts(inputs []split.SplitInput) decimal.Decimal {
	total := decimal.Zero
	for _, in := range inputs {
		if in.Amount != nil {
			total = total.Add(*in.Amount)
		}
	}
	return total
}
