package cache

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Module provides cache components for fx DI
var Module = fx.Module("cache",
	fx.Provide(func(logger zerolog.Logger) *OTPCache {
		return NewOTPCache(5, logger)
	}),
)
