package kafka

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Devensh22345/account-manage/config"
	"github.com/Devensh22345/account-manage/internal/infrastructure/metrics"
)

// Module provides the channel log producer. It provides a nil producer when
// Kafka is disabled.
var Module = fx.Module("kafka",
	fx.Provide(provideProducer),
)

func provideProducer(lc fx.Lifecycle, cfg *config.KafkaConfig, m *metrics.Metrics, logger zerolog.Logger) (*Producer, error) {
	if !cfg.Enabled {
		logger.Info().Msg("Kafka disabled, channel logs are sent directly")
		return nil, nil
	}

	producer, err := NewProducer(cfg, m, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			logger.Info().Msg("closing kafka producer...")
			return producer.Close()
		},
	})
	return producer, nil
}
