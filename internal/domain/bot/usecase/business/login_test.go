package business

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	"github.com/Devensh22345/account-manage/internal/domain/bot/dto"
	"github.com/Devensh22345/account-manage/internal/domain/remote"
	"github.com/Devensh22345/account-manage/internal/domain/remote/remotetest"
)

const (
	testAPIHash = "0123456789abcdef0123456789abcdef"
	testPhone   = "+1234567890"
)

func startLogin(t *testing.T, h *harness, login *remotetest.LoginSession) {
	t.Helper()
	h.dialer.BeginLoginFunc = func(context.Context, int, string) (remote.LoginSession, error) {
		return login, nil
	}
	if _, err := h.uc.HandleLogin(context.Background(), &dto.Request{UserID: testOwner}); err != nil {
		t.Fatalf("HandleLogin: %v", err)
	}
	h.text(t, testOwner, "12345")
	h.text(t, testOwner, testAPIHash)
	h.text(t, testOwner, testPhone)
	h.text(t, testOwner, "Main")
}

func countAccounts(t *testing.T, h *harness) int64 {
	t.Helper()
	n, err := h.store.Accounts().Count(context.Background(), entities.AccountFilter{})
	if err != nil {
		t.Fatalf("count accounts: %v", err)
	}
	return n
}

func TestLoginRegistersAccount(t *testing.T) {
	h := newHarness(t)
	login := &remotetest.LoginSession{}
	startLogin(t, h, login)

	if got := h.step(t, testOwner); got != stepOTP {
		t.Fatalf("step = %s, want %s", got, stepOTP)
	}

	rep := h.text(t, testOwner, "1 2 3 4 5")
	if !strings.Contains(rep.Text, "Account added successfully") {
		t.Errorf("reply = %q", rep.Text)
	}
	h.assertNoDialog(t, testOwner)

	accounts, err := h.store.Accounts().List(context.Background(), entities.AccountFilter{}, 0, 0)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(accounts))
	}
	if acc := accounts[0]; acc.PhoneNumber != testPhone || acc.AccountName != "Main" || acc.SessionString != "session-token" {
		t.Errorf("account = %+v", acc)
	}
	if login.Released != 1 {
		t.Errorf("login released %d times, want 1", login.Released)
	}

	posts := h.publisher.to(testChannels.String)
	if len(posts) != 1 || !strings.Contains(posts[0].text, "session-token") {
		t.Errorf("string channel posts = %+v", posts)
	}
	if len(h.publisher.to(testChannels.Main)) != 1 {
		t.Errorf("expected one main channel post")
	}
}

func TestLoginDuplicatePhoneAborts(t *testing.T) {
	h := newHarness(t)
	h.seedAccount(t, 7, testPhone)

	if _, err := h.uc.HandleLogin(context.Background(), &dto.Request{UserID: testOwner}); err != nil {
		t.Fatalf("HandleLogin: %v", err)
	}
	h.text(t, testOwner, "12345")
	h.text(t, testOwner, testAPIHash)
	rep := h.text(t, testOwner, testPhone)

	if rep.Text != duplicatePhoneText {
		t.Errorf("reply = %q", rep.Text)
	}
	h.assertNoDialog(t, testOwner)
	if n := countAccounts(t, h); n != 1 {
		t.Errorf("accounts = %d, want 1", n)
	}
}

func TestLoginInvalidInputKeepsStep(t *testing.T) {
	h := newHarness(t)
	if _, err := h.uc.HandleLogin(context.Background(), &dto.Request{UserID: testOwner}); err != nil {
		t.Fatalf("HandleLogin: %v", err)
	}

	rep := h.text(t, testOwner, "12ab")
	if !strings.HasPrefix(rep.Text, "❌") {
		t.Errorf("reply = %q", rep.Text)
	}
	if got := h.step(t, testOwner); got != stepAPIID {
		t.Errorf("step = %s, want %s", got, stepAPIID)
	}
}

func TestLoginWithPassword(t *testing.T) {
	h := newHarness(t)
	var password string
	login := &remotetest.LoginSession{
		SignInFunc: func(context.Context, string, string, string) error {
			return remote.NewError(remote.KindPasswordNeeded, "", nil)
		},
		PasswordFunc: func(_ context.Context, p string) error {
			password = p
			return nil
		},
	}
	startLogin(t, h, login)

	h.text(t, testOwner, "12345")
	if got := h.step(t, testOwner); got != stepPassword {
		t.Fatalf("step = %s, want %s", got, stepPassword)
	}

	h.text(t, testOwner, "hunter2")
	if password != "hunter2" {
		t.Errorf("password = %q", password)
	}
	h.assertNoDialog(t, testOwner)
	if n := countAccounts(t, h); n != 1 {
		t.Errorf("accounts = %d, want 1", n)
	}
}

func TestLoginInvalidCodeStays(t *testing.T) {
	h := newHarness(t)
	attempts := 0
	login := &remotetest.LoginSession{
		SignInFunc: func(context.Context, string, string, string) error {
			attempts++
			if attempts == 1 {
				return remote.NewError(remote.KindCodeInvalid, "", nil)
			}
			return nil
		},
	}
	startLogin(t, h, login)

	rep := h.text(t, testOwner, "11111")
	if rep.Text != "❌ Invalid code. Please try again!" {
		t.Errorf("reply = %q", rep.Text)
	}
	if got := h.step(t, testOwner); got != stepOTP {
		t.Fatalf("step = %s, want %s", got, stepOTP)
	}
	if login.Released != 0 {
		t.Errorf("login released before the dialog ended")
	}

	h.text(t, testOwner, "22222")
	h.assertNoDialog(t, testOwner)
	if n := countAccounts(t, h); n != 1 {
		t.Errorf("accounts = %d, want 1", n)
	}
}

func TestLoginCancelReleasesConnection(t *testing.T) {
	h := newHarness(t)
	login := &remotetest.LoginSession{}
	startLogin(t, h, login)

	rep, err := h.uc.HandleCancel(context.Background(), &dto.Request{UserID: testOwner})
	if err != nil {
		t.Fatalf("HandleCancel: %v", err)
	}
	if rep.Text != "✅ Current operation cancelled!" {
		t.Errorf("reply = %q", rep.Text)
	}
	if login.Released != 1 {
		t.Errorf("login released %d times, want 1", login.Released)
	}
	if n := countAccounts(t, h); n != 0 {
		t.Errorf("accounts = %d, want 0", n)
	}
}

func TestLoginFloodWaitAborts(t *testing.T) {
	h := newHarness(t)
	login := &remotetest.LoginSession{
		SendCodeFunc: func(context.Context, string) (string, error) {
			return "", remote.RateLimited(42*time.Second, nil)
		},
	}
	h.dialer.BeginLoginFunc = func(context.Context, int, string) (remote.LoginSession, error) {
		return login, nil
	}
	if _, err := h.uc.HandleLogin(context.Background(), &dto.Request{UserID: testOwner}); err != nil {
		t.Fatalf("HandleLogin: %v", err)
	}
	h.text(t, testOwner, "12345")
	h.text(t, testOwner, testAPIHash)
	h.text(t, testOwner, testPhone)
	rep := h.text(t, testOwner, "Main")

	if !strings.Contains(rep.Text, "42 seconds") {
		t.Errorf("reply = %q", rep.Text)
	}
	h.assertNoDialog(t, testOwner)
	if login.Released != 1 {
		t.Errorf("login released %d times, want 1", login.Released)
	}
}
