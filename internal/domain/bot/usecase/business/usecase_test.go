package business

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Devensh22345/account-manage/config"
	"github.com/Devensh22345/account-manage/internal/domain/access"
	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	"github.com/Devensh22345/account-manage/internal/domain/account/repository/memory"
	accountbusiness "github.com/Devensh22345/account-manage/internal/domain/account/usecase/business"
	"github.com/Devensh22345/account-manage/internal/domain/bulk"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
	"github.com/Devensh22345/account-manage/internal/domain/remote/remotetest"
	"github.com/Devensh22345/account-manage/internal/infrastructure/cache"
	"github.com/Devensh22345/account-manage/internal/infrastructure/s3"
)

const testOwner int64 = 1

type notifier struct {
	mu    sync.Mutex
	sent  map[int64][]string
	texts chan string
}

func (n *notifier) Notify(_ context.Context, chatID int64, text string) error {
	n.mu.Lock()
	n.sent[chatID] = append(n.sent[chatID], text)
	n.mu.Unlock()
	select {
	case n.texts <- text:
	default:
	}
	return nil
}

// waitFor blocks until a notification containing substr arrives.
func (n *notifier) waitFor(t *testing.T, substr string) string {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case text := <-n.texts:
			if strings.Contains(text, substr) {
				return text
			}
		case <-timeout:
			t.Fatalf("no notification containing %q", substr)
			return ""
		}
	}
}

type post struct {
	chatID int64
	kind   string
	text   string
}

type publisher struct {
	mu    sync.Mutex
	posts []post
}

func (p *publisher) Publish(_ context.Context, chatID int64, kind, text string) error {
	p.mu.Lock()
	p.posts = append(p.posts, post{chatID: chatID, kind: kind, text: text})
	p.mu.Unlock()
	return nil
}

func (p *publisher) to(chatID int64) []post {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []post
	for _, ps := range p.posts {
		if ps.chatID == chatID {
			out = append(out, ps)
		}
	}
	return out
}

type files struct {
	DownloadFunc func(ctx context.Context, fileID string) ([]byte, error)
}

func (f *files) Download(ctx context.Context, fileID string) ([]byte, error) {
	if f.DownloadFunc == nil {
		return []byte("payload"), nil
	}
	return f.DownloadFunc(ctx, fileID)
}

type checker struct {
	admin bool
	err   error
}

func (c *checker) IsBotAdmin(context.Context, int64) (bool, error) {
	return c.admin, c.err
}

var testChannels = config.ChannelsConfig{
	Main:   -100,
	String: -101,
	Report: -102,
	Send:   -103,
	OTP:    -104,
	Join:   -105,
	Leave:  -106,
}

type harness struct {
	uc        *UseCase
	store     *memory.Store
	dialer    *remotetest.Dialer
	notifier  *notifier
	publisher *publisher
	checker   *checker
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := zerolog.Nop()
	store := memory.NewStore()
	dialer := &remotetest.Dialer{}
	limits := &config.LimitsConfig{MaxAccountsPerUser: 5, MaxTotalAccounts: 100, MaxWorkers: 2}
	channels := testChannels

	h := &harness{
		store:     store,
		dialer:    dialer,
		notifier:  &notifier{sent: make(map[int64][]string), texts: make(chan string, 32)},
		publisher: &publisher{},
		checker:   &checker{admin: true},
	}

	media := s3.NewMemoryStore()
	h.uc = NewUseCase(Params{
		Engine:   dialog.NewEngine(dialog.NewStore(), nil, logger),
		Executor: bulk.NewExecutor(bulk.NewRegistry(), nil, logger),
		Gate:     access.NewGate(&config.TelegramConfig{OwnerID: testOwner}, store.Users(), logger),
		Accounts: accountbusiness.NewService(store.Accounts(), store.Users(), store.AdminLogs(), store.ReportJobs(), dialer, limits, nil, logger),
		Users:    store.Users(),
		Jobs:     store.ReportJobs(),
		Settings: store.Settings(),
		Dialer:   dialer,
		Channels: NewChannelLog(store.Settings(), store.Users(), &channels, h.publisher, nil, logger),
		Notifier: h.notifier,
		Files:    &files{},
		Media:    media,
		Archive:  media,
		Checker:  h.checker,
		Codes:    cache.NewOTPCache(5, logger),
		Logger:   logger,
	})
	h.uc.delays = delays{}
	return h
}

func (h *harness) seedAccount(t *testing.T, userID int64, phone string) *entities.Account {
	t.Helper()
	acc := &entities.Account{
		UserID:        userID,
		PhoneNumber:   phone,
		APIID:         12345,
		APIHash:       strings.Repeat("a", 32),
		SessionString: "token-" + phone,
		AccountName:   "acc " + phone,
		IsActive:      true,
	}
	if err := h.store.Accounts().Create(context.Background(), acc); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return acc
}

// input feeds one message to the user's dialog and fails when none is open.
func (h *harness) input(t *testing.T, userID int64, in dialog.Input) dialog.Reply {
	t.Helper()
	rep, handled := h.uc.HandleInput(context.Background(), userID, in)
	if !handled {
		t.Fatalf("input %+v was not handled by a dialog", in)
	}
	return rep
}

func (h *harness) text(t *testing.T, userID int64, text string) dialog.Reply {
	t.Helper()
	return h.input(t, userID, dialog.Input{Text: text})
}

func (h *harness) choose(t *testing.T, userID int64, value string) dialog.Reply {
	t.Helper()
	return h.input(t, userID, dialog.Input{Choice: value})
}

func (h *harness) step(t *testing.T, userID int64) dialog.Step {
	t.Helper()
	_, step, ok := h.uc.engine.Active(userID)
	if !ok {
		t.Fatalf("user %d has no active dialog", userID)
	}
	return step
}

func (h *harness) assertNoDialog(t *testing.T, userID int64) {
	t.Helper()
	if kind, step, ok := h.uc.engine.Active(userID); ok {
		t.Fatalf("expected no dialog, got %s at %s", kind, step)
	}
}

func hasButton(rows [][]dialog.Button, data string) bool {
	for _, r := range rows {
		for _, b := range r {
			if b.Data == data {
				return true
			}
		}
	}
	return false
}
