package business

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Devensh22345/account-manage/internal/domain/access"
	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	"github.com/Devensh22345/account-manage/internal/domain/bot/consts"
	"github.com/Devensh22345/account-manage/internal/domain/bot/dto"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
)

func adminPress(t *testing.T, h *harness, userID int64, data string) dialog.Reply {
	t.Helper()
	rep, err := h.uc.HandleAdminCallback(context.Background(), &dto.Request{UserID: userID, Data: data})
	if err != nil {
		t.Fatalf("HandleAdminCallback(%s): %v", data, err)
	}
	return rep
}

func TestAdminMenuHidesManagementFromAdmins(t *testing.T) {
	h := newHarness(t)
	if err := h.store.Users().SetAdmin(context.Background(), 2, true); err != nil {
		t.Fatalf("set admin: %v", err)
	}

	owner := adminPress(t, h, testOwner, consts.AdminBack)
	if !hasButton(owner.Buttons, consts.AdminManagement) {
		t.Error("owner menu lacks admin management")
	}
	admin := adminPress(t, h, 2, consts.AdminBack)
	if hasButton(admin.Buttons, consts.AdminManagement) {
		t.Error("admin menu shows admin management")
	}

	_, err := h.uc.HandleAdminCallback(context.Background(), &dto.Request{UserID: 2, Data: consts.AdminAdd})
	if !errors.Is(err, access.ErrOwnerOnly) {
		t.Errorf("err = %v, want ErrOwnerOnly", err)
	}
}

func TestOwnerAddsAndRemovesAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	adminPress(t, h, testOwner, consts.AdminAdd)
	rep := h.text(t, testOwner, "5")
	if !strings.Contains(rep.Text, "is now an admin") {
		t.Fatalf("reply = %q", rep.Text)
	}
	if !h.uc.gate.IsAdmin(ctx, 5) {
		t.Fatal("user 5 is not an admin")
	}

	adminPress(t, h, testOwner, consts.AdminRemoveAdmin)
	rep = h.text(t, testOwner, "1")
	if rep.Text != "❌ The owner cannot be removed." {
		t.Errorf("reply = %q", rep.Text)
	}
	h.text(t, testOwner, "5")
	if h.uc.gate.IsAdmin(ctx, 5) {
		t.Error("user 5 is still an admin")
	}

	n, err := h.store.AdminLogs().Count(ctx)
	if err != nil || n != 2 {
		t.Errorf("audit entries = %d, %v; want 2", n, err)
	}
}

func TestSetLogChannelRequiresBotAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	adminPress(t, h, testOwner, consts.AdminSetLogPrefix+string(entities.LogReport))

	h.checker.admin = false
	rep := h.input(t, testOwner, dialog.Input{ForwardedChatID: -2001})
	if !strings.Contains(rep.Text, "not an admin") {
		t.Errorf("reply = %q", rep.Text)
	}
	if got := h.uc.channels.Resolve(ctx, entities.LogReport); got != testChannels.Report {
		t.Fatalf("channel changed to %d before the check passed", got)
	}

	h.checker.admin = true
	h.input(t, testOwner, dialog.Input{ForwardedChatID: -2001})
	h.assertNoDialog(t, testOwner)
	if got := h.uc.channels.Resolve(ctx, entities.LogReport); got != -2001 {
		t.Errorf("report channel = %d, want -2001", got)
	}

	adminPress(t, h, testOwner, consts.AdminRemoveLogPrefix+string(entities.LogReport))
	if got := h.uc.channels.Resolve(ctx, entities.LogReport); got != 0 {
		t.Errorf("report channel = %d after removal, want 0", got)
	}
}

func TestAdminRemovesUserAccounts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAccount(t, 7, "+10000000001")
	h.seedAccount(t, 7, "+10000000002")
	h.seedAccount(t, 8, "+10000000003")

	adminPress(t, h, testOwner, consts.AdminRemoveUser)
	rep := h.text(t, testOwner, "abc")
	if !strings.HasPrefix(rep.Text, "❌") {
		t.Errorf("reply = %q", rep.Text)
	}
	rep = h.text(t, testOwner, "7")
	if !strings.Contains(rep.Text, "Removed 2 account(s)") {
		t.Errorf("reply = %q", rep.Text)
	}

	left, err := h.store.Accounts().Count(ctx, entities.AccountFilter{IsDeleted: entities.Flag(false)})
	if err != nil || left != 1 {
		t.Errorf("remaining accounts = %d, %v; want 1", left, err)
	}
}

func TestUserSettingsChannel(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.uc.HandleUserCallback(ctx, &dto.Request{UserID: 9, Data: consts.UserSetLog}); err != nil {
		t.Fatalf("HandleUserCallback: %v", err)
	}
	h.text(t, 9, "-3003")

	user, err := h.store.Users().Get(ctx, 9)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.LogChannel != -3003 {
		t.Errorf("log channel = %d", user.LogChannel)
	}

	h.uc.channels.PostPersonal(ctx, 9, "hello")
	if posts := h.publisher.to(-3003); len(posts) != 1 {
		t.Errorf("personal posts = %d, want 1", len(posts))
	}
}

func TestDemotedAdminCannotRemoveAccounts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAccount(t, 7, "+10000000001")
	if err := h.store.Users().SetAdmin(ctx, 2, true); err != nil {
		t.Fatalf("set admin: %v", err)
	}

	adminPress(t, h, 2, consts.AdminRemoveUser)
	if err := h.store.Users().SetAdmin(ctx, 2, false); err != nil {
		t.Fatalf("demote: %v", err)
	}

	rep := h.text(t, 2, "7")
	if rep.Text != "⛔ "+access.ErrAdminOnly.Error() {
		t.Errorf("reply = %q", rep.Text)
	}
	h.assertNoDialog(t, 2)
	left, err := h.store.Accounts().Count(ctx, entities.AccountFilter{IsDeleted: entities.Flag(false)})
	if err != nil || left != 1 {
		t.Errorf("remaining accounts = %d, %v; want 1", left, err)
	}
}
