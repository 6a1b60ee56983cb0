package telegram

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/Devensh22345/account-manage/internal/domain/bot/consts"
	"github.com/Devensh22345/account-manage/internal/domain/bot/usecase/business"
)

// Router registers Telegram bot handlers
type Router struct {
	handlers *Handlers
	uc       *business.UseCase
	logger   zerolog.Logger
}

// NewRouter creates new Telegram router
func NewRouter(handlers *Handlers, uc *business.UseCase, logger zerolog.Logger) *Router {
	return &Router{
		handlers: handlers,
		uc:       uc,
		logger:   logger.With().Str("component", "telegram_router").Logger(),
	}
}

// RegisterRoutes registers all command and callback handlers on the bot
func (r *Router) RegisterRoutes(bot *tgbot.Bot) {
	h := r.handlers

	commands := []struct {
		cmd consts.Command
		fn  CommandFunc
	}{
		{consts.CommandStart, r.uc.HandleStart},
		{consts.CommandHelp, r.uc.HandleHelp},
		{consts.CommandStats, r.uc.HandleStats},
		{consts.CommandCancel, r.uc.HandleCancel},
		{consts.CommandLogin, r.uc.HandleLogin},
		{consts.CommandSet, r.uc.HandleSettings},
		{consts.CommandAdmin, r.uc.HandleAdmin},
		{consts.CommandOTP, r.uc.HandleOTP},
		{consts.CommandSend, r.uc.HandleSend},
		{consts.CommandJoin, r.uc.HandleJoin},
		{consts.CommandLeave, r.uc.HandleLeave},
		{consts.CommandReport, r.uc.HandleReport},
		{consts.CommandStop, r.uc.HandleStop},
	}
	for _, c := range commands {
		bot.RegisterHandlerMatchFunc(MatchCommand(c.cmd.Name), h.Command(c.cmd.Name, c.fn))
	}

	callbacks := []struct {
		prefix string
		fn     CommandFunc
	}{
		{consts.PrefixSend, r.uc.HandleSendCallback},
		{consts.PrefixReport, r.uc.HandleReportCallback},
		{consts.PrefixOTP, r.uc.HandleOTPCallback},
		{consts.PrefixAdmin, r.uc.HandleAdminCallback},
		{consts.PrefixUser, r.uc.HandleUserCallback},
	}
	for _, c := range callbacks {
		bot.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, c.prefix, tgbot.MatchTypePrefix, h.Callback(c.prefix, c.fn))
	}
	bot.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, consts.PrefixDialog, tgbot.MatchTypePrefix, h.HandleDialogChoice)
	bot.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, consts.PageNoop, tgbot.MatchTypeExact, h.HandleNoop)

	r.logger.Info().
		Int("commands", len(commands)).
		Int("callback_prefixes", len(callbacks)+1).
		Msg("All Telegram handlers registered successfully")
}

// RegisterCommands publishes the command menu.
func (r *Router) RegisterCommands(ctx context.Context, bot *tgbot.Bot) error {
	list := make([]models.BotCommand, 0, len(consts.AllCommands))
	for _, c := range consts.AllCommands {
		list = append(list, models.BotCommand{Command: c.Name, Description: c.Description})
	}
	_, err := bot.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{Commands: list})
	return err
}
