package business

import (
	"context"

	"github.com/Devensh22345/account-manage/internal/domain/bot/dto"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
)

const welcomeText = "👋 <b>Welcome to the Account Manager Bot!</b>\n\n" +
	"Use /login to add a Telegram account and /set to manage your accounts.\n" +
	"Send /help for the full command list."

const helpText = "📖 <b>Help</b>\n\n" +
	"<b>Accounts</b>\n" +
	"/login - Add a new account\n" +
	"/set - Your accounts and settings\n" +
	"/cancel - Cancel the current operation\n" +
	"/stats - Bot statistics\n\n" +
	"<b>Admin</b>\n" +
	"/admin - Admin panel\n" +
	"/otp - Get login codes from accounts\n" +
	"/send - Send messages from accounts\n" +
	"/join - Join groups and channels\n" +
	"/leave - Leave groups and channels\n" +
	"/report - Report a bot, chat, user or post\n" +
	"/stop - Stop your running task"

// HandleStart stores the user and greets them.
func (uc *UseCase) HandleStart(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	if err := uc.users.Touch(ctx, req.UserID, req.Username, req.FirstName); err != nil {
		return dialog.Reply{}, err
	}
	return reply(welcomeText), nil
}

func (uc *UseCase) HandleHelp(_ context.Context, _ *dto.Request) (dialog.Reply, error) {
	return reply(helpText), nil
}

func (uc *UseCase) HandleStats(ctx context.Context, _ *dto.Request) (dialog.Reply, error) {
	text, err := uc.statsText(ctx)
	if err != nil {
		return dialog.Reply{}, err
	}
	return reply(text), nil
}

// HandleCancel ends any open dialog.
func (uc *UseCase) HandleCancel(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	if !uc.engine.Cancel(ctx, req.UserID) {
		return reply("ℹ️ Nothing to cancel."), nil
	}
	return reply("✅ Current operation cancelled!"), nil
}

// HandleStop stops the caller's bulk task.
func (uc *UseCase) HandleStop(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	if err := uc.gate.RequireAdmin(ctx, req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	return uc.stopTask(req.UserID), nil
}
