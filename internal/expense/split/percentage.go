package split

import "github.com/shopspring/decimal"

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(totalAmount decimal.Decimal, participants []SplitInput) error {
	if err := validateCommon(totalAmount, participants); err != nil {
		return err
	}

	totalPercentage := decimal.Zero
	for _, p := range participants {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if p.Percentage.IsNegative() || p.Percentage.GreaterThan(oneHundred) {
			return ErrPercentageOutOfRange
		}
		totalPercentage = totalPercentage.Add(*p.Percentage)
	}

	if !withinTolerance(totalPercentage, oneHundred) {
		return ErrInvalidPercentages
	}

	return nil
}

// Calculate divides the total amount based on each participant's percentage.
// Rounding drift is absorbed by the last participant, so the outputs always
// sum to the total exactly.
func (s *PercentageStrategy) Calculate(totalAmount decimal.Decimal, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	outputs := make([]SplitOutput, len(participants))
	distributed := decimal.Zero

	for i, p := range participants {
		amount := totalAmount.Mul(*p.Percentage).DivRound(oneHundred, 2)
		distributed = distributed.Add(amount)
		outputs[i] = SplitOutput{
			UserID: p.UserID,
			Amount: amount,
		}
	}

	remainder := totalAmount.Sub(distributed)
	if !remainder.IsZero() {
		last := len(outputs) - 1
		outputs[last].Amount = outputs[last].Amount.Add(remainder)
	}

	if err := checkPositiveOutputs(outputs); err != nil {
		return nil, err
	}

	return outputs, nil
}
