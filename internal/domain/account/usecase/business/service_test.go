package business

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Devensh22345/account-manage/config"
	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	accounterrors "github.com/Devensh22345/account-manage/internal/domain/account/errors"
	"github.com/Devensh22345/account-manage/internal/domain/account/repository/memory"
	"github.com/Devensh22345/account-manage/internal/domain/remote"
	"github.com/Devensh22345/account-manage/internal/domain/remote/remotetest"
)

func newTestService(store *memory.Store, dialer *remotetest.Dialer, limits config.LimitsConfig) *Service {
	return NewService(
		store.Accounts(), store.Users(), store.AdminLogs(), store.ReportJobs(),
		dialer, &limits, nil, zerolog.Nop(),
	)
}

func seedAccount(t *testing.T, store *memory.Store, userID int64, phone string, active bool) *entities.Account {
	t.Helper()
	acc := &entities.Account{
		UserID:        userID,
		PhoneNumber:   phone,
		SessionString: "token-" + phone,
		IsActive:      active,
		CreatedAt:     time.Now(),
	}
	if err := store.Accounts().Create(context.Background(), acc); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return acc
}

func TestRegisterLinksAccountToUser(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store, &remotetest.Dialer{}, config.LimitsConfig{MaxAccountsPerUser: 5, MaxTotalAccounts: 10})
	ctx := context.Background()

	acc, err := svc.Register(ctx, Registration{
		UserID:       7,
		Phone:        "+1234567890",
		APIID:        12345,
		APIHash:      "0123456789abcdef0123456789abcdef",
		Name:         "main",
		SessionToken: "tok",
		Profile:      &remote.Profile{ID: 99, Username: "bob"},
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if !acc.IsActive || acc.TelegramID != 99 || acc.Username != "bob" {
		t.Errorf("unexpected account: %+v", acc)
	}

	user, err := store.Users().Get(ctx, 7)
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if len(user.Accounts) != 1 || user.Accounts[0] != acc.ID {
		t.Errorf("user.Accounts = %v, want [%s]", user.Accounts, acc.ID.Hex())
	}

	taken, _ := svc.PhoneTaken(ctx, "+1234567890")
	if !taken {
		t.Error("PhoneTaken() = false after register")
	}
}

func TestCheckCapacity(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store, &remotetest.Dialer{}, config.LimitsConfig{MaxAccountsPerUser: 1, MaxTotalAccounts: 2})
	ctx := context.Background()

	if err := svc.CheckCapacity(ctx, 1); err != nil {
		t.Fatalf("CheckCapacity() on empty store: %v", err)
	}

	seedAccount(t, store, 1, "+1000000001", true)
	if err := svc.CheckCapacity(ctx, 1); !errors.Is(err, accounterrors.ErrUserAccountLimit) {
		t.Errorf("CheckCapacity() error = %v, want user limit", err)
	}

	seedAccount(t, store, 2, "+1000000002", true)
	if err := svc.CheckCapacity(ctx, 3); !errors.Is(err, accounterrors.ErrTotalAccountLimit) {
		t.Errorf("CheckCapacity() error = %v, want total limit", err)
	}
}

func TestRefreshClassifiesAccounts(t *testing.T) {
	store := memory.NewStore()
	ok := seedAccount(t, store, 1, "+1000000001", false)
	frozen := seedAccount(t, store, 1, "+1000000002", true)
	dead := seedAccount(t, store, 2, "+1000000003", true)

	dialer := &remotetest.Dialer{DialFunc: func(_ context.Context, creds remote.Credentials) (remote.Session, error) {
		switch creds.SessionToken {
		case frozen.SessionString:
			return &remotetest.Session{SelfFunc: func(context.Context) (*remote.Profile, error) {
				return nil, remote.RateLimited(30*time.Second, nil)
			}}, nil
		case dead.SessionString:
			return nil, remote.NewError(remote.KindUnauthorized, "AUTH_KEY_UNREGISTERED", nil)
		}
		return &remotetest.Session{SelfFunc: func(context.Context) (*remote.Profile, error) {
			return &remote.Profile{ID: 5, FirstName: "Alice"}, nil
		}}, nil
	}}
	svc := newTestService(store, dialer, config.LimitsConfig{MaxWorkers: 2})
	ctx := context.Background()

	report, err := svc.Refresh(ctx, nil)
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if report.Checked != 3 || report.Active != 1 || report.Frozen != 1 || report.Inactive != 1 {
		t.Errorf("unexpected report: %+v", report)
	}

	got, _ := store.Accounts().GetByID(ctx, ok.ID)
	if !got.IsActive || got.FirstName != "Alice" {
		t.Errorf("active account not updated: %+v", got)
	}
	got, _ = store.Accounts().GetByID(ctx, frozen.ID)
	if got.IsActive || !got.IsFrozen {
		t.Errorf("frozen account flags: active=%v frozen=%v", got.IsActive, got.IsFrozen)
	}
	got, _ = store.Accounts().GetByID(ctx, dead.ID)
	if got.IsActive || got.IsFrozen {
		t.Errorf("dead account flags: active=%v frozen=%v", got.IsActive, got.IsFrozen)
	}

	user, err := store.Users().Get(ctx, 1)
	if err != nil || len(user.Accounts) != 2 {
		t.Errorf("owner list not reconciled: %+v, %v", user, err)
	}
}

func TestRemoveByNumbers(t *testing.T) {
	store := memory.NewStore()
	base := time.Now()
	var ids []*entities.Account
	for i, phone := range []string{"+1000000001", "+1000000002", "+1000000003"} {
		acc := &entities.Account{UserID: 1, PhoneNumber: phone, IsActive: true, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		_ = store.Accounts().Create(context.Background(), acc)
		ids = append(ids, acc)
	}
	svc := newTestService(store, &remotetest.Dialer{}, config.LimitsConfig{})
	ctx := context.Background()

	n, err := svc.RemoveByNumbers(ctx, nil, "1,3")
	if err != nil || n != 2 {
		t.Fatalf("RemoveByNumbers() = %d, %v", n, err)
	}

	left, _ := svc.ActiveAccounts(ctx, nil)
	if len(left) != 1 || left[0].ID != ids[1].ID {
		t.Errorf("remaining accounts = %v", left)
	}

	if _, err := svc.RemoveByNumbers(ctx, nil, "5"); err == nil {
		t.Error("out of range numbers must fail")
	}
}

func TestListPageClamps(t *testing.T) {
	store := memory.NewStore()
	for _, phone := range []string{"+1000000001", "+1000000002", "+1000000003"} {
		seedAccount(t, store, 1, phone, true)
	}
	svc := newTestService(store, &remotetest.Dialer{}, config.LimitsConfig{})

	page, err := svc.ListPage(context.Background(), nil, 9, 2)
	if err != nil {
		t.Fatalf("ListPage() error: %v", err)
	}
	if page.Page != 1 || page.Pages != 2 || len(page.Accounts) != 1 || page.Offset != 2 {
		t.Errorf("unexpected page: %+v", page)
	}
}
