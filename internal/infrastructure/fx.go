// Package infrastructure aggregates infrastructure modules
package infrastructure

import (
	"go.uber.org/fx"

	"github.com/Devensh22345/account-manage/internal/infrastructure/cache"
	"github.com/Devensh22345/account-manage/internal/infrastructure/database"
	httpfx "github.com/Devensh22345/account-manage/internal/infrastructure/http"
	"github.com/Devensh22345/account-manage/internal/infrastructure/kafka"
	"github.com/Devensh22345/account-manage/internal/infrastructure/logger"
	"github.com/Devensh22345/account-manage/internal/infrastructure/metrics"
	"github.com/Devensh22345/account-manage/internal/infrastructure/mtproto"
	"github.com/Devensh22345/account-manage/internal/infrastructure/s3"
	"github.com/Devensh22345/account-manage/internal/infrastructure/telegram"
)

// Module aggregates all infrastructure modules
var Module = fx.Module("infrastructure",
	logger.Module,
	database.Module,
	metrics.Module,
	cache.Module,
	s3.Module,
	kafka.Module,
	mtproto.Module,
	telegram.Module,
	httpfx.Module,
)
