// Package app contains application bootstrap
package app

import (
	"go.uber.org/fx"

	"github.com/Devensh22345/account-manage/config"
	"github.com/Devensh22345/account-manage/internal/domain"
	"github.com/Devensh22345/account-manage/internal/infrastructure"
)

// CreateApp creates fx application with all modules
func CreateApp() fx.Option {
	return fx.Options(
		// Configuration
		fx.Provide(config.Out),

		// Infrastructure (logger, storage, relay, bot, http)
		infrastructure.Module,

		// Domain (accounts, dialogs, bulk tasks, bot surface)
		domain.Module,
	)
}
