package business

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Devensh22345/account-manage/internal/domain/access"
	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	"github.com/Devensh22345/account-manage/internal/domain/bot/consts"
	"github.com/Devensh22345/account-manage/internal/domain/bot/dto"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
	"github.com/Devensh22345/account-manage/internal/domain/remote"
	"github.com/Devensh22345/account-manage/internal/domain/remote/remotetest"
)

type calls struct {
	mu   sync.Mutex
	seen []string
}

func (c *calls) add(s string) {
	c.mu.Lock()
	c.seen = append(c.seen, s)
	c.mu.Unlock()
}

func (c *calls) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.seen...)
}

func TestCommandsRequireAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	req := &dto.Request{UserID: 2}

	handlers := map[string]func(context.Context, *dto.Request) (dialog.Reply, error){
		"join":   h.uc.HandleJoin,
		"leave":  h.uc.HandleLeave,
		"send":   h.uc.HandleSend,
		"report": h.uc.HandleReport,
		"otp":    h.uc.HandleOTP,
		"admin":  h.uc.HandleAdmin,
		"stop":   h.uc.HandleStop,
	}
	for name, fn := range handlers {
		if _, err := fn(ctx, req); !errors.Is(err, access.ErrAdminOnly) {
			t.Errorf("%s: err = %v, want ErrAdminOnly", name, err)
		}
	}
	h.assertNoDialog(t, 2)
}

func TestPromotedAdminPassesGate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.store.Users().Touch(ctx, 2, "bob", "Bob"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if err := h.store.Users().SetAdmin(ctx, 2, true); err != nil {
		t.Fatalf("set admin: %v", err)
	}

	if _, err := h.uc.HandleJoin(ctx, &dto.Request{UserID: 2}); err != nil {
		t.Fatalf("HandleJoin: %v", err)
	}
	if got := h.step(t, 2); got != stepTargets {
		t.Errorf("step = %s, want %s", got, stepTargets)
	}
}

func TestJoinRunsEveryAccountAndTarget(t *testing.T) {
	h := newHarness(t)
	h.seedAccount(t, testOwner, "+10000000001")
	h.seedAccount(t, testOwner, "+10000000002")

	joined := &calls{}
	h.dialer.DialFunc = func(_ context.Context, creds remote.Credentials) (remote.Session, error) {
		return &remotetest.Session{
			JoinFunc: func(_ context.Context, ref string) error {
				joined.add(creds.SessionToken + " " + ref)
				if ref == "@known" {
					return remote.NewError(remote.KindAlreadyMember, "", nil)
				}
				return nil
			},
		}, nil
	}

	ctx := context.Background()
	if _, err := h.uc.HandleJoin(ctx, &dto.Request{UserID: testOwner}); err != nil {
		t.Fatalf("HandleJoin: %v", err)
	}
	rep := h.text(t, testOwner, "@first\n\n@known\n")
	if !strings.Contains(rep.Text, "2 target(s)") || !hasButton(rep.Buttons, consts.PrefixDialog+choiceAll) {
		t.Fatalf("reply = %+v", rep)
	}

	rep = h.choose(t, testOwner, choiceAll)
	if !strings.Contains(rep.Text, "Join started") {
		t.Fatalf("reply = %q", rep.Text)
	}
	h.assertNoDialog(t, testOwner)

	summary := h.notifier.waitFor(t, "Join Completed")
	if !strings.Contains(summary, "Successful: 4") {
		t.Errorf("summary = %q", summary)
	}

	if got := joined.list(); len(got) != 4 {
		t.Fatalf("join calls = %v", got)
	}
	if n := len(h.dialer.Dials); n != 2 {
		t.Errorf("dials = %d, want one per account", n)
	}
	// Already-member outcomes count as joined.
	if posts := h.publisher.to(testChannels.Join); len(posts) != 5 {
		t.Errorf("join channel posts = %d, want 5", len(posts))
	}
}

func TestTaskFailuresDisableAccounts(t *testing.T) {
	h := newHarness(t)
	limited := h.seedAccount(t, testOwner, "+10000000001")
	revoked := h.seedAccount(t, testOwner, "+10000000002")
	healthy := h.seedAccount(t, testOwner, "+10000000003")

	h.dialer.DialFunc = func(_ context.Context, creds remote.Credentials) (remote.Session, error) {
		switch creds.SessionToken {
		case revoked.SessionString:
			return nil, remote.NewError(remote.KindUnauthorized, "AUTH_KEY_UNREGISTERED", nil)
		case limited.SessionString:
			return &remotetest.Session{
				JoinFunc: func(context.Context, string) error {
					return remote.RateLimited(0, nil)
				},
			}, nil
		}
		return &remotetest.Session{}, nil
	}

	ctx := context.Background()
	if _, err := h.uc.HandleJoin(ctx, &dto.Request{UserID: testOwner}); err != nil {
		t.Fatalf("HandleJoin: %v", err)
	}
	h.text(t, testOwner, "@first\n@second")
	h.choose(t, testOwner, choiceAll)
	summary := h.notifier.waitFor(t, "Join Completed")
	if !strings.Contains(summary, "Successful: 2") {
		t.Errorf("summary = %q", summary)
	}

	tests := []struct {
		name           string
		account        *entities.Account
		active, frozen bool
	}{
		{"rate limited", limited, false, true},
		{"revoked", revoked, false, false},
		{"healthy", healthy, true, false},
	}
	for _, tt := range tests {
		got, err := h.store.Accounts().GetByID(ctx, tt.account.ID)
		if err != nil {
			t.Fatalf("%s: get: %v", tt.name, err)
		}
		if got.IsActive != tt.active || got.IsFrozen != tt.frozen {
			t.Errorf("%s: active=%v frozen=%v, want active=%v frozen=%v",
				tt.name, got.IsActive, got.IsFrozen, tt.active, tt.frozen)
		}
	}
}

func TestJoinWithSelectedAccounts(t *testing.T) {
	h := newHarness(t)
	h.seedAccount(t, testOwner, "+10000000001")
	h.seedAccount(t, testOwner, "+10000000002")
	h.seedAccount(t, testOwner, "+10000000003")

	ctx := context.Background()
	if _, err := h.uc.HandleJoin(ctx, &dto.Request{UserID: testOwner}); err != nil {
		t.Fatalf("HandleJoin: %v", err)
	}
	h.text(t, testOwner, "@target")
	rep := h.choose(t, testOwner, choiceSelect)
	if !strings.Contains(rep.Text, "1,3,5-7") {
		t.Errorf("reply = %q", rep.Text)
	}

	rep = h.text(t, testOwner, "9")
	if !strings.HasPrefix(rep.Text, "❌") {
		t.Errorf("out of range selection reply = %q", rep.Text)
	}
	if got := h.step(t, testOwner); got != stepNumbers {
		t.Fatalf("step = %s, want %s", got, stepNumbers)
	}

	h.text(t, testOwner, "1,3")
	h.notifier.waitFor(t, "Join Completed")
	if n := len(h.dialer.Dials); n != 2 {
		t.Errorf("dials = %d, want 2", n)
	}
}

func TestJoinWithoutAccountsAborts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.uc.HandleJoin(ctx, &dto.Request{UserID: testOwner}); err != nil {
		t.Fatalf("HandleJoin: %v", err)
	}
	h.text(t, testOwner, "@target")
	rep := h.choose(t, testOwner, choiceMine)
	if rep.Text != noAccountsText {
		t.Errorf("reply = %q", rep.Text)
	}
	h.assertNoDialog(t, testOwner)
}

func TestReportJobLifecycle(t *testing.T) {
	h := newHarness(t)
	h.seedAccount(t, testOwner, "+10000000001")

	reports := &calls{}
	h.dialer.DialFunc = func(context.Context, remote.Credentials) (remote.Session, error) {
		return &remotetest.Session{
			ReportFunc: func(_ context.Context, target, reason, comment string) error {
				reports.add(target + "|" + reason + "|" + comment)
				return nil
			},
		}, nil
	}

	ctx := context.Background()
	if _, err := h.uc.HandleReportCallback(ctx, &dto.Request{UserID: testOwner, Data: consts.ReportBot}); err != nil {
		t.Fatalf("HandleReportCallback: %v", err)
	}
	h.text(t, testOwner, "@spam_bot")
	h.choose(t, testOwner, choiceReasonPrefix+"0")
	h.choose(t, testOwner, choiceSkip)

	rep := h.text(t, testOwner, "11")
	if !strings.Contains(rep.Text, "between 1 and 10") {
		t.Errorf("reply = %q", rep.Text)
	}
	h.text(t, testOwner, "2")
	rep = h.choose(t, testOwner, choiceAll)
	if !strings.Contains(rep.Text, "Reporting @spam_bot") {
		t.Fatalf("reply = %q", rep.Text)
	}

	h.notifier.waitFor(t, "Reporting Completed")

	want := "@spam_bot|" + consts.ReportReasons[0].Key + "|"
	got := reports.list()
	if len(got) != 2 || got[0] != want || got[1] != want {
		t.Errorf("reports = %v, want 2 x %q", got, want)
	}

	completed, err := h.store.ReportJobs().CountByStatus(ctx, entities.ReportCompleted)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	running, _ := h.store.ReportJobs().CountByStatus(ctx, entities.ReportRunning)
	if completed != 1 || running != 0 {
		t.Errorf("completed = %d running = %d", completed, running)
	}
	if len(h.publisher.to(testChannels.Report)) != 1 {
		t.Errorf("expected one report channel post")
	}
}

func TestReportPostNeedsLink(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.uc.HandleReportCallback(ctx, &dto.Request{UserID: testOwner, Data: consts.ReportPost}); err != nil {
		t.Fatalf("HandleReportCallback: %v", err)
	}
	h.text(t, testOwner, "channel")
	if got := h.step(t, testOwner); got != stepReportTarget {
		t.Errorf("step = %s, want %s", got, stepReportTarget)
	}
	rep := h.text(t, testOwner, "https://t.me/channel/5")
	if len(rep.Buttons) == 0 {
		t.Errorf("expected reason buttons")
	}
}

func TestSendTextAndStop(t *testing.T) {
	h := newHarness(t)
	h.seedAccount(t, testOwner, "+10000000001")

	release := make(chan struct{})
	sent := &calls{}
	h.dialer.DialFunc = func(context.Context, remote.Credentials) (remote.Session, error) {
		return &remotetest.Session{
			SendTextFunc: func(ctx context.Context, target, text string) error {
				sent.add(target + ":" + text)
				select {
				case <-release:
				case <-ctx.Done():
				}
				return ctx.Err()
			},
		}, nil
	}

	ctx := context.Background()
	if _, err := h.uc.HandleSendCallback(ctx, &dto.Request{UserID: testOwner, Data: consts.SendUser}); err != nil {
		t.Fatalf("HandleSendCallback: %v", err)
	}
	h.text(t, testOwner, "@alice")
	h.text(t, testOwner, "hello")
	h.choose(t, testOwner, choiceMine)

	if _, err := h.uc.HandleSend(ctx, &dto.Request{UserID: testOwner}); err == nil {
		t.Error("expected a running task to block a new wizard")
	}

	rep, err := h.uc.HandleStop(ctx, &dto.Request{UserID: testOwner})
	if err != nil {
		t.Fatalf("HandleStop: %v", err)
	}
	if !strings.Contains(rep.Text, "Stopping") {
		t.Errorf("reply = %q", rep.Text)
	}
	close(release)

	h.notifier.waitFor(t, "Sending Stopped")
	if got := sent.list(); len(got) != 1 || got[0] != "@alice:hello" {
		t.Errorf("sent = %v", got)
	}

	rep, _ = h.uc.HandleStop(ctx, &dto.Request{UserID: testOwner})
	if rep.Text != "ℹ️ No task is running." {
		t.Errorf("reply = %q", rep.Text)
	}
}

func TestSendMediaIsStagedAndDelivered(t *testing.T) {
	h := newHarness(t)
	h.seedAccount(t, testOwner, "+10000000001")

	var delivered *remote.Media
	h.dialer.DialFunc = func(context.Context, remote.Credentials) (remote.Session, error) {
		return &remotetest.Session{
			SendMediaFunc: func(_ context.Context, _ string, media *remote.Media) error {
				delivered = media
				return nil
			},
		}, nil
	}

	ctx := context.Background()
	if _, err := h.uc.HandleSendCallback(ctx, &dto.Request{UserID: testOwner, Data: consts.SendGroup}); err != nil {
		t.Fatalf("HandleSendCallback: %v", err)
	}
	h.text(t, testOwner, "@group")
	h.input(t, testOwner, dialog.Input{
		Attachment: &dialog.Attachment{Kind: "photo", FileID: "file-1", MIMEType: "image/jpeg", Caption: "look"},
	})
	h.choose(t, testOwner, choiceAll)

	h.notifier.waitFor(t, "Sending Completed")
	if delivered == nil || string(delivered.Data) != "payload" {
		t.Fatalf("delivered = %+v", delivered)
	}
	if delivered.Caption != "look" {
		t.Errorf("caption = %q", delivered.Caption)
	}
}

func TestDemotedAdminCannotStartTask(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAccount(t, testOwner, "+10000000001")
	if err := h.store.Users().Touch(ctx, 2, "bob", "Bob"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if err := h.store.Users().SetAdmin(ctx, 2, true); err != nil {
		t.Fatalf("set admin: %v", err)
	}

	if _, err := h.uc.HandleJoin(ctx, &dto.Request{UserID: 2}); err != nil {
		t.Fatalf("HandleJoin: %v", err)
	}
	h.text(t, 2, "@target")

	if err := h.store.Users().SetAdmin(ctx, 2, false); err != nil {
		t.Fatalf("demote: %v", err)
	}
	rep := h.choose(t, 2, choiceAll)
	if rep.Text != "⛔ "+access.ErrAdminOnly.Error() {
		t.Errorf("reply = %q", rep.Text)
	}
	h.assertNoDialog(t, 2)
	if n := len(h.dialer.Dials); n != 0 {
		t.Errorf("dials = %d, want 0", n)
	}
}

type failingHandle struct{ released int }

func (f *failingHandle) Release(context.Context) error {
	f.released++
	return errors.New("bucket unavailable")
}

func TestSendReplacingAttachmentLogsReleaseFailure(t *testing.T) {
	h := newHarness(t)
	var buf bytes.Buffer
	h.uc.logger = zerolog.New(&buf)

	old := &failingHandle{}
	st := &dialog.State{UserID: testOwner, Handle: old}
	res, err := h.uc.sendMessage(context.Background(), st, dialog.Input{
		Attachment: &dialog.Attachment{Kind: "photo", FileID: "file-2", MIMEType: "image/jpeg"},
	})
	if err != nil {
		t.Fatalf("sendMessage: %v", err)
	}
	if !strings.Contains(res.Reply.Text, "Media saved") {
		t.Errorf("reply = %q", res.Reply.Text)
	}
	if old.released != 1 {
		t.Errorf("released = %d, want 1", old.released)
	}
	if _, ok := st.Handle.(*stagedMedia); !ok {
		t.Errorf("handle = %T, want *stagedMedia", st.Handle)
	}
	if !strings.Contains(buf.String(), "bucket unavailable") {
		t.Errorf("release failure not logged: %s", buf.String())
	}
}

func TestSlashTextDuringDialogIsNotInput(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAccount(t, testOwner, "+10000000001")

	if _, err := h.uc.HandleJoin(ctx, &dto.Request{UserID: testOwner}); err != nil {
		t.Fatalf("HandleJoin: %v", err)
	}
	rep := h.text(t, testOwner, "/login@AccountBot now")
	if !strings.Contains(rep.Text, "/login@AccountBot") || !strings.Contains(rep.Text, "/cancel") {
		t.Errorf("reply = %q", rep.Text)
	}
	kind, step, ok := h.uc.engine.Active(testOwner)
	if !ok || kind != dialog.KindJoin || step != stepTargets {
		t.Errorf("active = %v %v %v, want join dialog on the target step", kind, step, ok)
	}

	if _, handled := h.uc.HandleInput(ctx, 2, dialog.Input{Text: "/start x"}); handled {
		t.Error("slash text without a dialog was handled")
	}
}
