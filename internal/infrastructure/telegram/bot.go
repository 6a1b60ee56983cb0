// Package telegram contains Telegram bot infrastructure
package telegram

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	pkgerrors "github.com/Devensh22345/account-manage/pkg/errors"
)

// Bot wraps the Telegram bot for infrastructure layer
type Bot struct {
	bot      *tgbot.Bot
	fallback atomic.Pointer[tgbot.HandlerFunc]
	logger   zerolog.Logger
}

// NewBot creates a new Telegram bot wrapper
func NewBot(token string, logger zerolog.Logger, opts ...tgbot.Option) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	b := &Bot{
		logger: logger.With().Str("component", "telegram_bot").Logger(),
	}

	opts = append([]tgbot.Option{
		tgbot.WithDefaultHandler(b.dispatchDefault),
		tgbot.WithMiddlewares(b.recoverMiddleware),
	}, opts...)

	raw, err := tgbot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	b.bot = raw

	b.logger.Info().Msg("Telegram bot created successfully")
	return b, nil
}

// Raw returns the underlying telegram bot for handler registration
func (b *Bot) Raw() *tgbot.Bot {
	return b.bot
}

// SetDefaultHandler routes every update no registered handler matched.
// The handler can only be chosen after the bot exists, so it is swapped in here.
func (b *Bot) SetDefaultHandler(h tgbot.HandlerFunc) {
	b.fallback.Store(&h)
}

func (b *Bot) dispatchDefault(ctx context.Context, raw *tgbot.Bot, update *models.Update) {
	if h := b.fallback.Load(); h != nil {
		(*h)(ctx, raw, update)
	}
}

// recoverMiddleware turns a handler panic into a logged error and a generic
// failure reply. Handlers run on their own goroutines, so an unrecovered
// panic would stop the process.
func (b *Bot) recoverMiddleware(next tgbot.HandlerFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, raw *tgbot.Bot, update *models.Update) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			b.logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Int64("update_id", update.ID).
				Msg("update handler panicked")

			chatID, ok := updateChatID(update)
			if !ok || raw == nil {
				return
			}
			if _, err := raw.SendMessage(ctx, &tgbot.SendMessageParams{
				ChatID: chatID,
				Text:   pkgerrors.GenericFailure,
			}); err != nil {
				b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send failure reply")
			}
		}()
		next(ctx, raw, update)
	}
}

// updateChatID returns the chat an update should be answered in.
func updateChatID(update *models.Update) (int64, bool) {
	switch {
	case update == nil:
		return 0, false
	case update.Message != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID, true
	default:
		return 0, false
	}
}

// Start starts the bot (blocking call)
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info().Msg("Starting Telegram bot...")
	b.bot.Start(ctx)
	b.logger.Info().Msg("Telegram bot stopped")
	return nil
}
