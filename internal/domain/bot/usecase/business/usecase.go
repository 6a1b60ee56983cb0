// Package business contains business logic for the bot domain
package business

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Devensh22345/account-manage/internal/domain/access"
	accountdeps "github.com/Devensh22345/account-manage/internal/domain/account/deps"
	accountbusiness "github.com/Devensh22345/account-manage/internal/domain/account/usecase/business"
	"github.com/Devensh22345/account-manage/internal/domain/bot/deps"
	"github.com/Devensh22345/account-manage/internal/domain/bulk"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
	"github.com/Devensh22345/account-manage/internal/domain/remote"
	"github.com/Devensh22345/account-manage/internal/infrastructure/cache"
)

// Params lists the UseCase dependencies for fx.
type Params struct {
	fx.In

	Engine   *dialog.Engine
	Executor *bulk.Executor
	Gate     *access.Gate
	Accounts *accountbusiness.Service
	Users    accountdeps.UserRepository
	Jobs     accountdeps.ReportJobRepository
	Settings accountdeps.SettingsRepository
	Dialer   remote.Dialer
	Channels *ChannelLog
	Notifier deps.Notifier
	Files    deps.FileFetcher
	Media    deps.MediaStore
	Archive  deps.SessionArchive
	Checker  deps.ChannelChecker
	Codes    *cache.OTPCache
	Logger   zerolog.Logger
}

// delays holds the pacing of each bulk command.
type delays struct {
	send      bulk.DelayPolicy
	joinLeave bulk.DelayPolicy
	report    bulk.DelayPolicy
	otp       bulk.DelayPolicy
}

// UseCase implements every bot command on top of the dialog engine, the bulk
// executor and the account service.
type UseCase struct {
	engine   *dialog.Engine
	executor *bulk.Executor
	gate     *access.Gate
	accounts *accountbusiness.Service
	users    accountdeps.UserRepository
	jobs     accountdeps.ReportJobRepository
	settings accountdeps.SettingsRepository
	dialer   remote.Dialer
	channels *ChannelLog
	notifier deps.Notifier
	files    deps.FileFetcher
	media    deps.MediaStore
	archive  deps.SessionArchive
	checker  deps.ChannelChecker
	codes    *cache.OTPCache
	delays   delays
	now      func() time.Time
	logger   zerolog.Logger
}

// NewUseCase creates the use case and registers its dialog flows on the engine
func NewUseCase(p Params) *UseCase {
	uc := &UseCase{
		engine:   p.Engine,
		executor: p.Executor,
		gate:     p.Gate,
		accounts: p.Accounts,
		users:    p.Users,
		jobs:     p.Jobs,
		settings: p.Settings,
		dialer:   p.Dialer,
		channels: p.Channels,
		notifier: p.Notifier,
		files:    p.Files,
		media:    p.Media,
		archive:  p.Archive,
		checker:  p.Checker,
		codes:    p.Codes,
		delays: delays{
			send:      bulk.SendPolicy,
			joinLeave: bulk.JoinLeavePolicy,
			report:    bulk.ReportPolicy,
			otp:       bulk.OTPPolicy,
		},
		now:    time.Now,
		logger: p.Logger.With().Str("component", "bot_usecase").Logger(),
	}

	uc.engine.Register(uc.loginFlow())
	uc.engine.Register(uc.sendFlow())
	uc.engine.Register(uc.targetsFlow(dialog.KindJoin))
	uc.engine.Register(uc.targetsFlow(dialog.KindLeave))
	uc.engine.Register(uc.reportFlow())
	uc.engine.Register(uc.adminInputFlow())
	uc.engine.Register(uc.settingsInputFlow())
	return uc
}

// HandleInput feeds free text, media, forwards and dialog button presses to
// the user's active dialog. handled is false when there is none.
// Unregistered commands are not dialog input; the user is pointed at
// /cancel instead.
func (uc *UseCase) HandleInput(ctx context.Context, userID int64, in dialog.Input) (dialog.Reply, bool) {
	if in.Attachment == nil && strings.HasPrefix(in.Text, "/") {
		kind, _, ok := uc.engine.Active(userID)
		if !ok {
			return dialog.Reply{}, false
		}
		cmd, _, _ := strings.Cut(in.Text, " ")
		return dialog.Reply{Text: fmt.Sprintf(
			"⚠️ %s is not available during the %s dialog. Send the requested value or /cancel.",
			esc(cmd), strings.ReplaceAll(string(kind), "_", " "))}, true
	}
	return uc.engine.HandleInput(ctx, userID, in)
}

// notify is best effort.
func (uc *UseCase) notify(ctx context.Context, userID int64, text string) {
	if err := uc.notifier.Notify(ctx, userID, text); err != nil {
		uc.logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to notify user")
	}
}

// ensureIdle refuses to open a bulk wizard while the user has a task running.
func (uc *UseCase) ensureIdle(userID int64) error {
	if _, running := uc.executor.Running(userID); running {
		return bulk.ErrTaskRunning
	}
	return nil
}
