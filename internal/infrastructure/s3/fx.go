package s3

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Devensh22345/account-manage/config"
)

// Storage is what the rest of the application sees of object storage.
type Storage interface {
	ArchiveSession(ctx context.Context, userID int64, phone string, apiID int, token string) error
	PutMedia(ctx context.Context, userID int64, contentType string, data []byte) (string, error)
	GetMedia(ctx context.Context, key string) ([]byte, error)
	DeleteMedia(ctx context.Context, key string) error
}

// Module provides S3/MinIO storage, or the in-memory store when disabled
var Module = fx.Module("s3",
	fx.Provide(provideStorage),
)

func provideStorage(lc fx.Lifecycle, cfg *config.S3Config, logger zerolog.Logger) (Storage, error) {
	if !cfg.Enabled {
		return NewMemoryStore(), nil
	}

	client, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info().Msg("initializing S3/MinIO client...")
			if err := client.EnsureBucket(ctx); err != nil {
				return err
			}
			logger.Info().Msg("S3/MinIO client initialized successfully")
			return nil
		},
	})
	return client, nil
}
