package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	apperrors "github.com/arclyte/accounts/internal/errors"
	"github.com/arclyte/accounts/internal/model"
)

// Search gives memStore the read side too, with the same contains
// semantics as the SQL implementation.
func (s *memStore) Search(_ context.Context, limit, offset int, search string) ([]model.User, int64, error) {
	var matched []model.User
	for _, u := range s.users {
		if search == "" || containsFold(u.FullName, search) || containsFold(u.UserName, search) ||
			containsFold(u.Email, search) || containsFold(u.PhoneNumber, search) {
			matched = append(matched, *u)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UserName < matched[j].UserName
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func seedDirectory(t *testing.T, store *memStore, userNames ...string) {
	t.Helper()
	for i, name := range userNames {
		if err := store.Create(context.Background(), &model.User{
			UserName:    name,
			Email:       name + "@example.com",
			PhoneNumber: "+1555000000" + string(rune('0'+i)),
			FullName:    name + " Fullname",
		}); err != nil {
			t.Fatalf("seeding %q: %v", name, err)
		}
	}
}

func TestUserSearch(t *testing.T) {
	store := newMemStore()
	seedDirectory(t, store, "alicedoe", "bobdoe", "carolray")
	svc := NewUserService(store)

	users, total, err := svc.Search(context.Background(), 10, 0, "doe")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if total != 2 || len(users) != 2 {
		t.Fatalf("got %d users (total %d), want 2", len(users), total)
	}
}

func TestUserSearchPagination(t *testing.T) {
	store := newMemStore()
	seedDirectory(t, store, "alicedoe", "bobdoe", "carolray")
	svc := NewUserService(store)

	page, total, err := svc.Search(context.Background(), 2, 2, "")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(page) != 1 {
		t.Errorf("second page has %d users, want 1", len(page))
	}
}

func TestUserSearchStripsCredentials(t *testing.T) {
	store := newMemStore()
	if err := store.Create(context.Background(), &model.User{
		UserName:    "alicedoe",
		Email:       "alice@example.com",
		PhoneNumber: "+15550000001",
		Password:    "hash",
		OTP:         "123456",
	}); err != nil {
		t.Fatal(err)
	}
	svc := NewUserService(store)

	users, _, err := svc.Search(context.Background(), 10, 0, "")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
	if users[0].Email != "alice@example.com" || users[0].UserName != "alicedoe" {
		t.Errorf("unexpected response %+v", users[0])
	}
}

func TestUserGetByID(t *testing.T) {
	store := newMemStore()
	seedDirectory(t, store, "alicedoe")
	svc := NewUserService(store)

	var id string
	for k := range store.users {
		id = k
	}

	user, err := svc.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if user.UserName != "alicedoe" {
		t.Errorf("UserName = %q", user.UserName)
	}

	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
