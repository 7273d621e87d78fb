// Package split computes how an expense amount is divided among its
// participants. Every participant, the payer included, receives a split row;
// the rows always sum to the expense amount.
package split

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// SplitType defines the type of split strategy
type SplitType string

const (
	SplitTypeEven       SplitType = "EVEN"
	SplitTypePercentage SplitType = "PERCENTAGE"
	SplitTypeExact      SplitType = "EXACT"
)

// Tolerance is the largest absolute deviation accepted when amounts or
// percentages are checked against their expected sum.
var Tolerance = decimal.NewFromFloat(0.01)

var oneHundred = decimal.NewFromInt(100)

// SplitInput represents a participant in a split with optional values
type SplitInput struct {
	UserID     string           `json:"user_id"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"` // For PERCENTAGE split
	Amount     *decimal.Decimal `json:"amount,omitempty"`     // For EXACT split
}

// SplitOutput represents the calculated split for a single participant
type SplitOutput struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate computes the split amounts for all participants
	Calculate(totalAmount decimal.Decimal, participants []SplitInput) ([]SplitOutput, error)

	// Type returns the type identifier for this strategy
	Type() SplitType

	// Validate checks if the inputs are valid for this strategy
	Validate(totalAmount decimal.Decimal, participants []SplitInput) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeEven:
		return &EvenStrategy{}, nil
	case SplitTypePercentage:
		return &PercentageStrategy{}, nil
	case SplitTypeExact:
		return &ExactStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown split type: %s", splitType)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(SplitType(splitType))
}

var (
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrInvalidExactAmounts  = errors.New("exact amounts must sum to total amount")
	ErrNonPositiveAmount    = errors.New("amount must be greater than zero")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrMissingPercentage    = errors.New("percentage value required for all participants")
	ErrMissingExactAmount   = errors.New("exact amount required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrDuplicateParticipant = errors.New("a participant appears more than once")
	ErrNonPositiveSplit     = errors.New("every split amount must be greater than zero")
)

func validateCommon(totalAmount decimal.Decimal, participants []SplitInput) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if !totalAmount.IsPositive() {
		return ErrNonPositiveAmount
	}
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, dup := seen[p.UserID]; dup {
			return ErrDuplicateParticipant
		}
		seen[p.UserID] = struct{}{}
	}
	return nil
}

// withinTolerance reports whether got deviates from want by no more than
// Tolerance.
func withinTolerance(got, want decimal.Decimal) bool {
	return got.Sub(want).Abs().LessThanOrEqual(Tolerance)
}

// checkPositiveOutputs rejects any computed share that is not strictly
// positive. The store enforces amount > 0 on split rows; catching it here
// turns an opaque constraint violation into a validation error.
func checkPositiveOutputs(outputs []SplitOutput) error {
	for _, o := range outputs {
		if !o.Amount.IsPositive() {
			return ErrNonPositiveSplit
		}
	}
	return nil
}
