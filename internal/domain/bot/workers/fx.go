package workers

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Devensh22345/account-manage/config"
	"github.com/Devensh22345/account-manage/internal/infrastructure/kafka"
)

// Module provides workers for fx dependency injection
var Module = fx.Module("bot-workers",
	fx.Provide(NewChannelLogRelay),
	fx.Invoke(registerRelayConsumer),
)

// registerRelayConsumer starts the Kafka reader when the relay is enabled.
func registerRelayConsumer(lc fx.Lifecycle, cfg *config.KafkaConfig, relay *ChannelLogRelay, logger zerolog.Logger) {
	if !cfg.Enabled {
		return
	}

	consumer := kafka.NewConsumer(cfg, relay.Handle, logger)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			consumer.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			return consumer.Stop()
		},
	})
}
