package split

import "github.com/shopspring/decimal"

// =============================================================================
// EXACT SPLIT STRATEGY
// Each participant owes a specific exact amount (must sum to total)
// =============================================================================

// ExactStrategy implements the Strategy interface for exact amount splits
type ExactStrategy struct{}

// Type returns the split type identifier
func (s *ExactStrategy) Type() SplitType {
	return SplitTypeExact
}

// Validate checks if the inputs are valid for an exact split
func (s *ExactStrategy) Validate(totalAmount decimal.Decimal, participants []SplitInput) error {
	if err := validateCommon(totalAmount, participants); err != nil {
		return err
	}

	totalExact := decimal.Zero
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingExactAmount
		}
		if p.Amount.IsNegative() {
			return ErrNegativeAmount
		}
		if p.Amount.IsZero() {
			return ErrNonPositiveSplit
		}
		totalExact = totalExact.Add(*p.Amount)
	}

	if !withinTolerance(totalExact, totalAmount) {
		return ErrInvalidExactAmounts
	}

	return nil
}

// Calculate returns the exact amounts specified for each participant
func (s *ExactStrategy) Calculate(totalAmount decimal.Decimal, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	outputs := make([]SplitOutput, len(participants))
	for i, p := range participants {
		outputs[i] = SplitOutput{
			UserID: p.UserID,
			Amount: p.Amount.Round(2),
		}
	}

	// Rounding can still zero out a sub-cent amount that passed validation.
	if err := checkPositiveOutputs(outputs); err != nil {
		return nil, err
	}

	return outputs, nil
}
