// Package bot contains the bot domain module
package bot

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	telegramDelivery "github.com/Devensh22345/account-manage/internal/domain/bot/delivery/telegram"
	"github.com/Devensh22345/account-manage/internal/domain/bot/deps"
	"github.com/Devensh22345/account-manage/internal/domain/bot/usecase/business"
	"github.com/Devensh22345/account-manage/internal/domain/bot/workers"
	"github.com/Devensh22345/account-manage/internal/infrastructure/kafka"
	"github.com/Devensh22345/account-manage/internal/infrastructure/metrics"
	"github.com/Devensh22345/account-manage/internal/infrastructure/s3"
	"github.com/Devensh22345/account-manage/internal/infrastructure/telegram"
)

// Module provides bot domain components for fx dependency injection
var Module = fx.Module("bot",
	// Outbound ports
	fx.Provide(
		func(m *telegram.Messenger) deps.Notifier { return m },
		func(m *telegram.Messenger) deps.FileFetcher { return m },
		func(m *telegram.Messenger) deps.ChannelChecker { return m },
		func(m *telegram.Messenger) telegramDelivery.Sender { return m },
		func(m *telegram.Messenger) workers.ChannelSender { return m },
		func(s s3.Storage) deps.MediaStore { return s },
		func(s s3.Storage) deps.SessionArchive { return s },
		func(m *metrics.Metrics) deps.ChannelObserver { return m },
		func(m *metrics.Metrics) workers.ChannelObserver { return m },
		func(m *metrics.Metrics) telegramDelivery.CommandObserver { return m },
		provideChannelPublisher,
	),

	// UseCase
	fx.Provide(business.NewChannelLog),
	fx.Provide(business.NewUseCase),

	// Delivery - Telegram
	fx.Provide(telegramDelivery.NewHandlers),
	fx.Provide(telegramDelivery.NewRouter),

	// Workers
	workers.Module,

	fx.Invoke(registerRoutes),
)

// provideChannelPublisher relays log posts through Kafka when it is enabled
// and posts them directly otherwise.
func provideChannelPublisher(producer *kafka.Producer, messenger *telegram.Messenger) deps.ChannelPublisher {
	if producer != nil {
		return producer
	}
	return messenger
}

// registerRoutes installs handlers before the bot starts polling and
// publishes the command menu once it runs.
func registerRoutes(
	lc fx.Lifecycle,
	bot *telegram.Bot,
	handlers *telegramDelivery.Handlers,
	router *telegramDelivery.Router,
	logger zerolog.Logger,
) {
	router.RegisterRoutes(bot.Raw())
	bot.SetDefaultHandler(handlers.HandleDefault)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := router.RegisterCommands(ctx, bot.Raw()); err != nil {
				logger.Warn().Err(err).Msg("Failed to register bot commands")
			}
			return nil
		},
	})
}
