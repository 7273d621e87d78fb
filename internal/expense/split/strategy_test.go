package split

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func sumOutputs(outputs []SplitOutput) decimal.Decimal {
	total := decimal.Zero
	for _, o := range outputs {
		total = total.Add(o.Amount)
	}
	return total
}

func TestFactory(t *testing.T) {
	f := NewFactory()

	for _, st := range []SplitType{SplitTypeEven, SplitTypePercentage, SplitTypeExact} {
		strategy, err := f.Create(st)
		if err != nil {
			t.Fatalf("Create(%s) error = %v", st, err)
		}
		if strategy.Type() != st {
			t.Errorf("Type() = %s, want %s", strategy.Type(), st)
		}
	}

	if _, err := f.CreateFromString("HALF"); err == nil {
		t.Error("CreateFromString(HALF) expected error, got nil")
	}
}

func TestEvenStrategy(t *testing.T) {
	s := &EvenStrategy{}

	tests := []struct {
		name         string
		total        string
		participants []SplitInput
		want         []string
	}{
		{
			name:         "clean division",
			total:        "100.00",
			participants: []SplitInput{{UserID: "u1"}, {UserID: "u2"}},
			want:         []string{"50", "50"},
		},
		{
			name:         "remainder goes to first participant",
			total:        "100.00",
			participants: []SplitInput{{UserID: "u1"}, {UserID: "u2"}, {UserID: "u3"}},
			want:         []string{"33.34", "33.33", "33.33"},
		},
		{
			name:         "single participant",
			total:        "42.50",
			participants: []SplitInput{{UserID: "u1"}},
			want:         []string{"42.5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputs, err := s.Calculate(dec(tt.total), tt.participants)
			if err != nil {
				t.Fatalf("Calculate() error = %v", err)
			}
			if len(outputs) != len(tt.want) {
				t.Fatalf("outputs = %d, want %d", len(outputs), len(tt.want))
			}
			for i, w := range tt.want {
				if !outputs[i].Amount.Equal(dec(w)) {
					t.Errorf("output[%d] = %s, want %s", i, outputs[i].Amount, w)
				}
			}
			if !sumOutputs(outputs).Equal(dec(tt.total)) {
				t.Errorf("outputs sum to %s, want %s", sumOutputs(outputs), tt.total)
			}
		})
	}

	t.Run("no participants", func(t *testing.T) {
		_, err := s.Calculate(dec("10.00"), nil)
		if !errors.Is(err, ErrNoParticipants) {
			t.Errorf("error = %v, want ErrNoParticipants", err)
		}
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := s.Calculate(dec("0"), []SplitInput{{UserID: "u1"}})
		if !errors.Is(err, ErrNonPositiveAmount) {
			t.Errorf("error = %v, want ErrNonPositiveAmount", err)
		}
	})

	t.Run("duplicate participant", func(t *testing.T) {
		_, err := s.Calculate(dec("10.00"), []SplitInput{{UserID: "u1"}, {UserID: "u1"}})
		if !errors.Is(err, ErrDuplicateParticipant) {
			t.Errorf("error = %v, want ErrDuplicateParticipant", err)
		}
	})

	t.Run("amount too small for a positive share each", func(t *testing.T) {
		_, err := s.Calculate(dec("0.01"), []SplitInput{{UserID: "u1"}, {UserID: "u2"}})
		if !errors.Is(err, ErrNonPositiveSplit) {
			t.Errorf("error = %v, want ErrNonPositiveSplit", err)
		}
	})
}

func TestPercentageStrategy(t *testing.T) {
	s := &PercentageStrategy{}

	t.Run("rounding drift absorbed by last participant", func(t *testing.T) {
		participants := []SplitInput{
			{UserID: "u1", Percentage: decPtr("33.33")},
			{UserID: "u2", Percentage: decPtr("33.33")},
			{UserID: "u3", Percentage: decPtr("33.34")},
		}
		outputs, err := s.Calculate(dec("100.00"), participants)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		if !sumOutputs(outputs).Equal(dec("100.00")) {
			t.Errorf("outputs sum to %s, want 100.00", sumOutputs(outputs))
		}
	})

	t.Run("uneven percentages", func(t *testing.T) {
		participants := []SplitInput{
			{UserID: "u1", Percentage: decPtr("70")},
			{UserID: "u2", Percentage: decPtr("30")},
		}
		outputs, err := s.Calculate(dec("59.99"), participants)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		if !outputs[0].Amount.Equal(dec("41.99")) {
			t.Errorf("output[0] = %s, want 41.99", outputs[0].Amount)
		}
		if !sumOutputs(outputs).Equal(dec("59.99")) {
			t.Errorf("outputs sum to %s, want 59.99", sumOutputs(outputs))
		}
	})

	t.Run("percentages not summing to 100", func(t *testing.T) {
		participants := []SplitInput{
			{UserID: "u1", Percentage: decPtr("60")},
			{UserID: "u2", Percentage: decPtr("30")},
		}
		_, err := s.Calculate(dec("100.00"), participants)
		if !errors.Is(err, ErrInvalidPercentages) {
			t.Errorf("error = %v, want ErrInvalidPercentages", err)
		}
	})

	t.Run("missing percentage", func(t *testing.T) {
		participants := []SplitInput{
			{UserID: "u1", Percentage: decPtr("100")},
			{UserID: "u2"},
		}
		_, err := s.Calculate(dec("100.00"), participants)
		if !errors.Is(err, ErrMissingPercentage) {
			t.Errorf("error = %v, want ErrMissingPercentage", err)
		}
	})

	t.Run("percentage out of range", func(t *testing.T) {
		participants := []SplitInput{
			{UserID: "u1", Percentage: decPtr("150")},
			{UserID: "u2", Percentage: decPtr("-50")},
		}
		_, err := s.Calculate(dec("100.00"), participants)
		if !errors.Is(err, ErrPercentageOutOfRange) {
			t.Errorf("error = %v, want ErrPercentageOutOfRange", err)
		}
	})

	t.Run("zero percent yields no share", func(t *testing.T) {
		participants := []SplitInput{
			{UserID: "u1", Percentage: decPtr("100")},
			{UserID: "u2", Percentage: decPtr("0")},
		}
		_, err := s.Calculate(dec("100.00"), participants)
		if !errors.Is(err, ErrNonPositiveSplit) {
			t.Errorf("error = %v, want ErrNonPositiveSplit", err)
		}
	})
}

func TestExactStrategy(t *testing.T) {
	s := &ExactStrategy{}

	t.Run("amounts matching the total", func(t *testing.T) {
		participants := []SplitInput{
			{UserID: "u1", Amount: decPtr("50.00")},
			{UserID: "u2", Amount: decPtr("50.00")},
		}
		outputs, err := s.Calculate(dec("100.00"), participants)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		if len(outputs) != 2 {
			t.Fatalf("outputs = %d, want 2", len(outputs))
		}
		if !sumOutputs(outputs).Equal(dec("100.00")) {
			t.Errorf("outputs sum to %s, want 100.00", sumOutputs(outputs))
		}
	})

	t.Run("within tolerance", func(t *testing.T) {
		participants := []SplitInput{
			{UserID: "u1", Amount: decPtr("50.00")},
			{UserID: "u2", Amount: decPtr("49.99")},
		}
		if _, err := s.Calculate(dec("100.00"), participants); err != nil {
			t.Errorf("Calculate() error = %v, want nil inside tolerance", err)
		}
	})

	t.Run("amounts not matching the total", func(t *testing.T) {
		participants := []SplitInput{
			{UserID: "u1", Amount: decPtr("40.00")},
			{UserID: "u2", Amount: decPtr("50.00")},
		}
		_, err := s.Calculate(dec("100.00"), participants)
		if !errors.Is(err, ErrInvalidExactAmounts) {
			t.Errorf("error = %v, want ErrInvalidExactAmounts", err)
		}
	})

	t.Run("missing amount", func(t *testing.T) {
		participants := []SplitInput{
			{UserID: "u1", Amount: decPtr("100.00")},
			{UserID: "u2"},
		}
		_, err := s.Calculate(dec("100.00"), participants)
		if !errors.Is(err, ErrMissingExactAmount) {
			t.Errorf("error = %v, want ErrMissingExactAmount", err)
		}
	})

	t.Run("negative amount", func(t *testing.T) {
		participants := []SplitInput{
			{UserID: "u1", Amount: decPtr("110.00")},
			{UserID: "u2", Amount: decPtr("-10.00")},
		}
		_, err := s.Calculate(dec("100.00"), participants)
		if !errors.Is(err, ErrNegativeAmount) {
			t.Errorf("error = %v, want ErrNegativeAmount", err)
		}
	})

	t.Run("zero amount", func(t *testing.T) {
		participants := []SplitInput{
			{UserID: "u1", Amount: decPtr("100.00")},
			{UserID: "u2", Amount: decPtr("0")},
		}
		_, err := s.Calculate(dec("100.00"), participants)
		if !errors.Is(err, ErrNonPositiveSplit) {
			t.Errorf("error = %v, want ErrNonPositiveSplit", err)
		}
	})
}
