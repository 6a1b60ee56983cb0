// Package deps contains interface definitions for the bot domain dependencies
package deps

import (
	"context"
)

// Notifier sends plain messages outside of a command reply, such as task
// summaries. Failures are the caller's to log; the user may have blocked the bot.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// ChannelPublisher delivers one log channel post, directly or through the
// Kafka relay.
type ChannelPublisher interface {
	Publish(ctx context.Context, chatID int64, kind, text string) error
}

// ChannelObserver counts log channel deliveries.
type ChannelObserver interface {
	RecordChannelLog(kind string, ok bool)
}

// FileFetcher downloads files users uploaded to the bot.
type FileFetcher interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// ChannelChecker verifies that the bot may post to a channel.
type ChannelChecker interface {
	IsBotAdmin(ctx context.Context, chatID int64) (bool, error)
}

// MediaStore stages send-wizard media between dialog steps.
type MediaStore interface {
	PutMedia(ctx context.Context, userID int64, contentType string, data []byte) (string, error)
	GetMedia(ctx context.Context, key string) ([]byte, error)
	DeleteMedia(ctx context.Context, key string) error
}

// SessionArchive keeps a copy of every exported session.
type SessionArchive interface {
	ArchiveSession(ctx context.Context, userID int64, phone string, apiID int, token string) error
}
