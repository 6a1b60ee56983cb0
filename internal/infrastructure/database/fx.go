package database

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"

	"github.com/Devensh22345/account-manage/config"
)

// Module provides database components for fx dependency injection
var Module = fx.Module("database",
	fx.Provide(NewMongoDBFx),
)

// NewMongoDBFx connects to MongoDB with fx lifecycle management. It returns a
// nil database when the memory driver is selected.
func NewMongoDBFx(
	lc fx.Lifecycle,
	cfg *config.MongoConfig,
	logger zerolog.Logger,
) (*mongo.Database, error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn().Msg("Using in-memory storage, data is lost on restart")
		return nil, nil
	}

	client, err := Connect(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Database)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := EnsureIndexes(ctx, db); err != nil {
				logger.Warn().Err(err).Msg("Failed to ensure indexes")
				return nil
			}
			logger.Info().Msg("Database indexes ensured")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("Closing database connection")
			return client.Disconnect(ctx)
		},
	})

	logger.Info().
		Str("database", cfg.Database).
		Msg("Database connected successfully")

	return db, nil
}
