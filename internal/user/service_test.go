package user

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	users []*User
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	total := len(f.users)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return f.users[offset:end], total, nil
}

func TestGetByID(t *testing.T) {
	svc := NewService(&fakeStore{users: []*User{
		{ID: "u1", Name: "Alice", Email: "alice@example.com"},
	}})

	u, err := svc.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if u.Name != "Alice" {
		t.Errorf("name = %q, want Alice", u.Name)
	}

	if _, err := svc.GetByID(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID(ghost) error = %v, want ErrUserNotFound", err)
	}
}

func TestListPagination(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 25; i++ {
		store.users = append(store.users, &User{ID: string(rune('a' + i))})
	}
	svc := NewService(store)

	tests := []struct {
		name      string
		page      int
		perPage   int
		wantCount int
	}{
		{"defaults applied", 0, 0, 20},
		{"second page", 2, 20, 5},
		{"oversized per page clamped", 1, 500, 20},
		{"page past the end", 5, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := svc.List(context.Background(), tt.page, tt.perPage)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if total != 25 {
				t.Errorf("total = %d, want 25", total)
			}
			if len(users) != tt.wantCount {
				t.Errorf("users = %d, want %d", len(users), tt.wantCount)
			}
		})
	}
}
