package expense

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/splitlyapp/splitly/internal/authz"
	"github.com/splitlyapp/splitly/internal/events"
	"github.com/splitlyapp/splitly/internal/expense/split"
	"github.com/splitlyapp/splitly/internal/metrics"
)

type memberKey struct {
	groupID string
	userID  string
}

type fakeMembers map[memberKey]authz.Role

func (f fakeMembers) MemberRole(ctx context.Context, groupID, userID string) (authz.Role, bool, error) {
	role, ok := f[memberKey{groupID, userID}]
	return role, ok, nil
}

type fakeStore struct {
	expenses  map[string]*Expense
	splits    map[string][]*Split
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		expenses: make(map[string]*Expense),
		splits:   make(map[string][]*Split),
	}
}

func (f *fakeStore) CreateExpenseWithSplits(ctx context.Context, e *Expense, splits []*Split) (*Expense, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.expenses[e.ID] = e
	f.splits[e.ID] = splits
	return e, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*Expense, error) {
	return f.expenses[id], nil
}

func (f *fakeStore) GetSplits(ctx context.Context, expenseID string) ([]*Split, error) {
	return f.splits[expenseID], nil
}

func (f *fakeStore) ListByGroupID(ctx context.Context, groupID string) ([]*Expense, error) {
	var out []*Expense
	for _, e := range f.expenses {
		if e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSplitsByUserID(ctx context.Context, userID string) ([]*UserSplit, error) {
	var out []*UserSplit
	for id, splits := range f.splits {
		for _, s := range splits {
			if s.UserID == userID {
				out = append(out, &UserSplit{Split: s, Expense: f.expenses[id]})
			}
		}
	}
	return out, nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.expenses[id]; !ok {
		return ErrExpenseNotFound
	}
	delete(f.expenses, id)
	delete(f.splits, id)
	return nil
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	topics []string
}

func (p *recordingPublisher) Publish(topic string, event any) error {
	p.topics = append(p.topics, topic)
	return nil
}

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

// tripMembers is the standing fixture: U1 admin and U2 member of group
// "trip", U3 an outsider.
func tripMembers() fakeMembers {
	return fakeMembers{
		{"trip", "u1"}: authz.RoleAdmin,
		{"trip", "u2"}: authz.RoleMember,
	}
}

func newTestService(store *fakeStore, members fakeMembers) (*Service, *recordingPublisher) {
	pub := &recordingPublisher{}
	svc := NewService(store, authz.NewGate(members), pub, nil, metrics.Nop{})
	return svc, pub
}

func TestCreateExactSplit(t *testing.T) {
	store := newFakeStore()
	svc, pub := newTestService(store, tripMembers())

	req := CreateExpenseRequest{
		GroupID: "trip",
		Amount:  dec("100.00"),
		Splits: []split.SplitInput{
			{UserID: "u1", Amount: decPtr("50.00")},
			{UserID: "u2", Amount: decPtr("50.00")},
		},
	}

	id, err := svc.Create(context.Background(), "u1", req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == "" {
		t.Fatal("Create() returned empty id")
	}

	expense, splits, err := svc.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !expense.Amount.Equal(dec("100.00")) {
		t.Errorf("amount = %s, want 100.00", expense.Amount)
	}
	if len(splits) != 2 {
		t.Fatalf("splits = %d, want 2", len(splits))
	}
	total := decimal.Zero
	for _, s := range splits {
		total = total.Add(s.Amount)
	}
	if !total.Equal(dec("100.00")) {
		t.Errorf("splits sum to %s, want 100.00", total)
	}

	if len(pub.topics) != 1 || pub.topics[0] != events.TopicExpenseCreated {
		t.Errorf("published topics = %v, want [%s]", pub.topics, events.TopicExpenseCreated)
	}
}

func TestCreateSplitMismatch(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, tripMembers())

	req := CreateExpenseRequest{
		GroupID: "trip",
		Amount:  dec("100.00"),
		Splits: []split.SplitInput{
			{UserID: "u1", Amount: decPtr("40.00")},
			{UserID: "u2", Amount: decPtr("50.00")},
		},
	}

	_, err := svc.Create(context.Background(), "u1", req)

	var mismatch *SplitMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error = %v, want SplitMismatchError", err)
	}
	if !mismatch.SplitSum.Equal(dec("90.00")) {
		t.Errorf("reported split sum = %s, want 90.00", mismatch.SplitSum)
	}
	if !mismatch.Amount.Equal(dec("100.00")) {
		t.Errorf("reported amount = %s, want 100.00", mismatch.Amount)
	}

	if len(store.expenses) != 0 {
		t.Error("rejected expense was persisted")
	}
}

func TestCreateRejectsOutsiders(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, tripMembers())

	t.Run("outsider payer", func(t *testing.T) {
		req := CreateExpenseRequest{
			GroupID: "trip",
			Amount:  dec("10.00"),
			Splits:  []split.SplitInput{{UserID: "u3", Amount: decPtr("10.00")}},
		}
		_, err := svc.Create(context.Background(), "u3", req)

		var notMember *NotAMemberError
		if !errors.As(err, &notMember) {
			t.Fatalf("error = %v, want NotAMemberError", err)
		}
		if notMember.UserID != "u3" {
			t.Errorf("offending user = %s, want u3", notMember.UserID)
		}
	})

	t.Run("outsider in splits", func(t *testing.T) {
		req := CreateExpenseRequest{
			GroupID: "trip",
			Amount:  dec("10.00"),
			Splits: []split.SplitInput{
				{UserID: "u1", Amount: decPtr("5.00")},
				{UserID: "u3", Amount: decPtr("5.00")},
			},
		}
		_, err := svc.Create(context.Background(), "u1", req)

		var notMember *NotAMemberError
		if !errors.As(err, &notMember) {
			t.Fatalf("error = %v, want NotAMemberError", err)
		}
		if notMember.UserID != "u3" {
			t.Errorf("offending user = %s, want u3", notMember.UserID)
		}
	})
}

func TestCreateValidation(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, tripMembers())

	t.Run("missing payer", func(t *testing.T) {
		req := CreateExpenseRequest{
			GroupID: "trip",
			Amount:  dec("10.00"),
			Splits:  []split.SplitInput{{UserID: "u1", Amount: decPtr("10.00")}},
		}
		_, err := svc.Create(context.Background(), "", req)
		if !errors.Is(err, ErrMissingPayer) {
			t.Errorf("error = %v, want ErrMissingPayer", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		req := CreateExpenseRequest{
			GroupID: "trip",
			Amount:  dec("0"),
			Splits:  []split.SplitInput{{UserID: "u1", Amount: decPtr("0")}},
		}
		_, err := svc.Create(context.Background(), "u1", req)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("error = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("empty splits", func(t *testing.T) {
		req := CreateExpenseRequest{
			GroupID: "trip",
			Amount:  dec("10.00"),
		}
		_, err := svc.Create(context.Background(), "u1", req)
		if !errors.Is(err, ErrNoSplits) {
			t.Errorf("error = %v, want ErrNoSplits", err)
		}
	})
}

func TestCreateEvenSplit(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, tripMembers())

	req := CreateExpenseRequest{
		GroupID:   "trip",
		Amount:    dec("99.99"),
		SplitType: split.SplitTypeEven,
		Splits: []split.SplitInput{
			{UserID: "u1"},
			{UserID: "u2"},
		},
	}

	id, err := svc.Create(context.Background(), "u1", req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	splits := store.splits[id]
	total := decimal.Zero
	for _, s := range splits {
		total = total.Add(s.Amount)
	}
	if !total.Equal(dec("99.99")) {
		t.Errorf("splits sum to %s, want 99.99", total)
	}
}

func TestCreateAtomicity(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("connection reset")
	svc, pub := newTestService(store, tripMembers())

	req := CreateExpenseRequest{
		GroupID: "trip",
		Amount:  dec("10.00"),
		Splits:  []split.SplitInput{{UserID: "u1", Amount: decPtr("10.00")}},
	}

	if _, err := svc.Create(context.Background(), "u1", req); err == nil {
		t.Fatal("Create() expected error from failing store")
	}
	if len(store.expenses) != 0 {
		t.Error("expense persisted despite store failure")
	}
	if len(pub.topics) != 0 {
		t.Error("event published for an expense that was never committed")
	}
}

func TestDelete(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, tripMembers())

	req := CreateExpenseRequest{
		GroupID: "trip",
		Amount:  dec("20.00"),
		Splits: []split.SplitInput{
			{UserID: "u1", Amount: decPtr("10.00")},
			{UserID: "u2", Amount: decPtr("10.00")},
		},
	}
	id, err := svc.Create(context.Background(), "u1", req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("non-payer is refused", func(t *testing.T) {
		err := svc.Delete(context.Background(), id, "u2")
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("admin who did not pay is refused", func(t *testing.T) {
		req := CreateExpenseRequest{
			GroupID: "trip",
			Amount:  dec("5.00"),
			Splits:  []split.SplitInput{{UserID: "u2", Amount: decPtr("5.00")}},
		}
		otherID, err := svc.Create(context.Background(), "u2", req)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := svc.Delete(context.Background(), otherID, "u1"); !errors.Is(err, ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("payer deletes with splits", func(t *testing.T) {
		if err := svc.Delete(context.Background(), id, "u1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, ok := store.expenses[id]; ok {
			t.Error("expense still present after deletion")
		}
		if _, ok := store.splits[id]; ok {
			t.Error("splits still present after deletion")
		}
	})

	t.Run("missing expense", func(t *testing.T) {
		err := svc.Delete(context.Background(), "no-such-expense", "u1")
		if !errors.Is(err, ErrExpenseNotFound) {
			t.Errorf("error = %v, want ErrExpenseNotFound", err)
		}
	})
}

func TestListUserSplits(t *testing.T) {
	store := newFakeStore()
	members := tripMembers()
	members[memberKey{"house", "u2"}] = authz.RoleAdmin
	svc, _ := newTestService(store, members)

	first := CreateExpenseRequest{
		GroupID: "trip",
		Amount:  dec("20.00"),
		Splits: []split.SplitInput{
			{UserID: "u1", Amount: decPtr("10.00")},
			{UserID: "u2", Amount: decPtr("10.00")},
		},
	}
	if _, err := svc.Create(context.Background(), "u1", first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second := CreateExpenseRequest{
		GroupID: "house",
		Amount:  dec("30.00"),
		Splits:  []split.SplitInput{{UserID: "u2", Amount: decPtr("30.00")}},
	}
	if _, err := svc.Create(context.Background(), "u2", second); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	results, err := svc.ListUserSplits(context.Background(), "u2")
	if err != nil {
		t.Fatalf("ListUserSplits() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2 across groups", len(results))
	}

	groups := map[string]bool{}
	for _, r := range results {
		groups[r.Expense.GroupID] = true
	}
	if !groups["trip"] || !groups["house"] {
		t.Errorf("result groups = %v, want both trip and house", groups)
	}
}
