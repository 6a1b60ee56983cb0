package business

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Devensh22345/account-manage/config"
	accountdeps "github.com/Devensh22345/account-manage/internal/domain/account/deps"
	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	accounterrors "github.com/Devensh22345/account-manage/internal/domain/account/errors"
	"github.com/Devensh22345/account-manage/internal/domain/bot/deps"
)

// personalKind labels posts to a user's own log channel.
const personalKind = "personal"

// ChannelLog resolves log channel destinations and posts to them. Stored
// overrides win over the configured defaults and are read on every post so
// admin changes apply immediately.
type ChannelLog struct {
	settings  accountdeps.SettingsRepository
	users     accountdeps.UserRepository
	defaults  *config.ChannelsConfig
	publisher deps.ChannelPublisher
	observer  deps.ChannelObserver
	logger    zerolog.Logger
}

func NewChannelLog(
	settings accountdeps.SettingsRepository,
	users accountdeps.UserRepository,
	defaults *config.ChannelsConfig,
	publisher deps.ChannelPublisher,
	observer deps.ChannelObserver,
	logger zerolog.Logger,
) *ChannelLog {
	return &ChannelLog{
		settings:  settings,
		users:     users,
		defaults:  defaults,
		publisher: publisher,
		observer:  observer,
		logger:    logger.With().Str("component", "channel_log").Logger(),
	}
}

func (c *ChannelLog) fallback(kind entities.LogKind) int64 {
	switch kind {
	case entities.LogMain:
		return c.defaults.Main
	case entities.LogString:
		return c.defaults.String
	case entities.LogReport:
		return c.defaults.Report
	case entities.LogSend:
		return c.defaults.Send
	case entities.LogOTP:
		return c.defaults.OTP
	case entities.LogJoin:
		return c.defaults.Join
	case entities.LogLeave:
		return c.defaults.Leave
	}
	return 0
}

// Resolve returns the destination of kind, 0 when disabled.
func (c *ChannelLog) Resolve(ctx context.Context, kind entities.LogKind) int64 {
	overrides, err := c.settings.LogChannels(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to read log channel overrides, using defaults")
		return c.fallback(kind)
	}
	if id, ok := overrides[kind]; ok {
		return id
	}
	return c.fallback(kind)
}

// All resolves every log kind for display.
func (c *ChannelLog) All(ctx context.Context) map[entities.LogKind]int64 {
	out := make(map[entities.LogKind]int64, len(entities.AllLogKinds))
	for _, kind := range entities.AllLogKinds {
		out[kind] = c.Resolve(ctx, kind)
	}
	return out
}

// Post sends text to the channel of kind. Failures are logged only.
func (c *ChannelLog) Post(ctx context.Context, kind entities.LogKind, text string) {
	chatID := c.Resolve(ctx, kind)
	if chatID == 0 {
		return
	}
	c.publish(ctx, chatID, string(kind), text)
}

// PostPersonal sends text to the user's own log channel if one is set.
func (c *ChannelLog) PostPersonal(ctx context.Context, userID int64, text string) {
	user, err := c.users.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, accounterrors.ErrUserNotFound) {
			c.logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to load user for personal log")
		}
		return
	}
	if user.LogChannel == 0 {
		return
	}
	c.publish(ctx, user.LogChannel, personalKind, text)
}

func (c *ChannelLog) publish(ctx context.Context, chatID int64, kind, text string) {
	err := c.publisher.Publish(ctx, chatID, kind, text)
	if c.observer != nil {
		c.observer.RecordChannelLog(kind, err == nil)
	}
	if err != nil {
		c.logger.Warn().Err(err).Int64("chat_id", chatID).Str("kind", kind).Msg("failed to post to log channel")
	}
}
