// Package domain contains all domain modules
package domain

import (
	"go.uber.org/fx"

	"github.com/Devensh22345/account-manage/internal/domain/access"
	"github.com/Devensh22345/account-manage/internal/domain/account"
	"github.com/Devensh22345/account-manage/internal/domain/bot"
	"github.com/Devensh22345/account-manage/internal/domain/bulk"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
)

// Module aggregates all domain modules for fx dependency injection
var Module = fx.Module("domain",
	account.Module,
	access.Module,
	dialog.Module,
	bulk.Module,
	bot.Module,
)
