package split

import "github.com/shopspring/decimal"

// =============================================================================
// EVEN SPLIT STRATEGY
// Divides the expense equally among all participants
// =============================================================================

// EvenStrategy implements the Strategy interface for even splits
type EvenStrategy struct{}

// Type returns the split type identifier
func (s *EvenStrategy) Type() SplitType {
	return SplitTypeEven
}

// Validate checks if the inputs are valid for an even split
func (s *EvenStrategy) Validate(totalAmount decimal.Decimal, participants []SplitInput) error {
	return validateCommon(totalAmount, participants)
}

// Calculate divides the total amount evenly among all participants.
// Leftover cents from rounding go to the first participant, so the outputs
// always sum to the total exactly.
func (s *EvenStrategy) Calculate(totalAmount decimal.Decimal, participants []SplitInput) ([]SplitOutput, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	count := decimal.NewFromInt(int64(len(participants)))
	share := totalAmount.DivRound(count, 2)

	outputs := make([]SplitOutput, len(participants))
	for i, p := range participants {
		outputs[i] = SplitOutput{
			UserID: p.UserID,
			Amount: share,
		}
	}

	distributed := share.Mul(count)
	remainder := totalAmount.Sub(distributed)
	if !remainder.IsZero() {
		outputs[0].Amount = outputs[0].Amount.Add(remainder)
	}

	if err := checkPositiveOutputs(outputs); err != nil {
		return nil, err
	}

	return outputs, nil
}
