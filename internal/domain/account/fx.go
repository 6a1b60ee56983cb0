// Package account contains the account domain module
package account

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"

	"github.com/Devensh22345/account-manage/internal/domain/account/deps"
	"github.com/Devensh22345/account-manage/internal/domain/account/repository/memory"
	mongorepo "github.com/Devensh22345/account-manage/internal/domain/account/repository/mongo"
	"github.com/Devensh22345/account-manage/internal/domain/account/usecase/business"
	"github.com/Devensh22345/account-manage/internal/infrastructure/http/server"
)

// Module provides account domain components for fx DI
var Module = fx.Module("account",
	fx.Provide(provideRepositories),
	fx.Provide(business.NewService),
	fx.Invoke(registerHealthCheck),
)

// Repositories groups the store implementations for fx.
type Repositories struct {
	fx.Out

	Accounts   deps.AccountRepository
	Users      deps.UserRepository
	AdminLogs  deps.AdminLogRepository
	ReportJobs deps.ReportJobRepository
	Settings   deps.SettingsRepository
	Pinger     deps.Pinger
}

// provideRepositories uses MongoDB when a database is configured and the
// in-memory store otherwise.
func provideRepositories(db *mongo.Database, logger zerolog.Logger) Repositories {
	if db == nil {
		store := memory.NewStore()
		return Repositories{
			Accounts:   store.Accounts(),
			Users:      store.Users(),
			AdminLogs:  store.AdminLogs(),
			ReportJobs: store.ReportJobs(),
			Settings:   store.Settings(),
			Pinger:     store,
		}
	}

	logger.Info().Str("database", db.Name()).Msg("Using MongoDB repositories")
	return Repositories{
		Accounts:   mongorepo.NewAccountRepository(db),
		Users:      mongorepo.NewUserRepository(db),
		AdminLogs:  mongorepo.NewAdminLogRepository(db),
		ReportJobs: mongorepo.NewReportJobRepository(db),
		Settings:   mongorepo.NewSettingsRepository(db),
		Pinger:     mongoPinger{db: db},
	}
}

type mongoPinger struct {
	db *mongo.Database
}

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.db.Client().Ping(ctx, readpref.Primary())
}

func registerHealthCheck(srv *server.Server, pinger deps.Pinger) {
	srv.AddHealthCheck("storage", pinger.Ping)
}
