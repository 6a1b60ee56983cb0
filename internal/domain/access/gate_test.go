package access

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Devensh22345/account-manage/config"
	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	accounterrors "github.com/Devensh22345/account-manage/internal/domain/account/errors"
)

type mockUsers struct {
	GetFunc func(ctx context.Context, userID int64) (*entities.User, error)
	calls   int
}

func (m *mockUsers) Get(ctx context.Context, userID int64) (*entities.User, error) {
	m.calls++
	return m.GetFunc(ctx, userID)
}

func TestIsAdmin(t *testing.T) {
	const owner int64 = 100

	flags := map[int64]bool{1: true, 2: false, 4: false}
	users := &mockUsers{GetFunc: func(_ context.Context, id int64) (*entities.User, error) {
		isAdmin, ok := flags[id]
		if !ok {
			return nil, accounterrors.ErrUserNotFound
		}
		// user 4 carries a stale owner flag from an earlier configuration
		return &entities.User{UserID: id, IsAdmin: isAdmin, IsOwner: id == 4}, nil
	}}
	gate := NewGate(&config.TelegramConfig{OwnerID: owner}, users, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name   string
		userID int64
		want   bool
	}{
		{name: "owner without record", userID: owner, want: true},
		{name: "admin flag set", userID: 1, want: true},
		{name: "admin flag unset", userID: 2, want: false},
		{name: "unknown user", userID: 3, want: false},
		{name: "stored owner flag only", userID: 4, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gate.IsAdmin(ctx, tt.userID); got != tt.want {
				t.Errorf("IsAdmin(%d) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}

	if !gate.IsOwner(owner) || gate.IsOwner(1) {
		t.Error("IsOwner must match only the configured owner")
	}
}

func TestIsAdminSeesFlagChanges(t *testing.T) {
	isAdmin := false
	users := &mockUsers{GetFunc: func(_ context.Context, id int64) (*entities.User, error) {
		return &entities.User{UserID: id, IsAdmin: isAdmin}, nil
	}}
	gate := NewGate(&config.TelegramConfig{OwnerID: 100}, users, zerolog.Nop())
	ctx := context.Background()

	if gate.IsAdmin(ctx, 5) {
		t.Fatal("IsAdmin() = true before flag set")
	}
	isAdmin = true
	if !gate.IsAdmin(ctx, 5) {
		t.Fatal("IsAdmin() = false after flag set")
	}
	if users.calls != 2 {
		t.Errorf("store consulted %d times, want 2", users.calls)
	}
}

func TestIsAdminLookupError(t *testing.T) {
	users := &mockUsers{GetFunc: func(context.Context, int64) (*entities.User, error) {
		return nil, errors.New("connection refused")
	}}
	gate := NewGate(&config.TelegramConfig{OwnerID: 100}, users, zerolog.Nop())

	if err := gate.RequireAdmin(context.Background(), 5); !errors.Is(err, ErrAdminOnly) {
		t.Errorf("RequireAdmin() error = %v, want ErrAdminOnly", err)
	}
	if err := gate.RequireOwner(5); !errors.Is(err, ErrOwnerOnly) {
		t.Errorf("RequireOwner() error = %v, want ErrOwnerOnly", err)
	}
}
