// Package workers contains background workers for the bot domain
package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Devensh22345/account-manage/internal/infrastructure/kafka"
)

// ChannelSender delivers a post to a chat.
type ChannelSender interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// ChannelLogRelay delivers channel log events read from Kafka.
type ChannelLogRelay struct {
	sender   ChannelSender
	observer ChannelObserver
	logger   zerolog.Logger
}

// ChannelObserver counts relayed deliveries.
type ChannelObserver interface {
	RecordChannelLog(kind string, ok bool)
}

func NewChannelLogRelay(sender ChannelSender, observer ChannelObserver, logger zerolog.Logger) *ChannelLogRelay {
	return &ChannelLogRelay{
		sender:   sender,
		observer: observer,
		logger:   logger.With().Str("component", "channel_log_relay").Logger(),
	}
}

// Handle sends one event. Returning the error leaves the message
// uncommitted so it is retried after a rebalance.
func (r *ChannelLogRelay) Handle(ctx context.Context, event kafka.ChannelLogEvent) error {
	if event.ChatID == 0 || event.Text == "" {
		r.logger.Warn().Str("kind", event.Kind).Msg("Skipping empty channel log event")
		return nil
	}

	err := r.sender.Notify(ctx, event.ChatID, event.Text)
	r.observer.RecordChannelLog(event.Kind, err == nil)
	if err != nil {
		return err
	}

	r.logger.Debug().
		Int64("chat_id", event.ChatID).
		Str("kind", event.Kind).
		Dur("lag", lag(event)).
		Msg("Channel log event delivered")
	return nil
}

func lag(event kafka.ChannelLogEvent) time.Duration {
	if event.CreatedAt.IsZero() {
		return 0
	}
	return time.Since(event.CreatedAt)
}
