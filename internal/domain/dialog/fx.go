package dialog

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Devensh22345/account-manage/config"
)

// Module provides the dialog engine and runs its idle janitor
var Module = fx.Module("dialog",
	fx.Provide(NewStore),
	fx.Provide(NewEngine),
	fx.Invoke(registerJanitor),
)

func registerJanitor(lc fx.Lifecycle, engine *Engine, cfg *config.DialogConfig, logger zerolog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			engine.StartJanitor(cfg.TTL, cfg.CleanupInterval)
			logger.Info().Dur("ttl", cfg.TTL).Msg("Dialog janitor started")
			return nil
		},
		OnStop: func(_ context.Context) error {
			engine.StopJanitor()
			return nil
		},
	})
}
