package business

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	accounterrors "github.com/Devensh22345/account-manage/internal/domain/account/errors"
	accountbusiness "github.com/Devensh22345/account-manage/internal/domain/account/usecase/business"
	"github.com/Devensh22345/account-manage/internal/domain/bot/consts"
	"github.com/Devensh22345/account-manage/internal/domain/bot/dto"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
)

func backToSettings() []dialog.Button {
	return row(button("⬅️ Back", consts.UserBack))
}

func (uc *UseCase) settingsMenu(ctx context.Context, userID int64) (dialog.Reply, error) {
	var logChannel int64
	user, err := uc.users.Get(ctx, userID)
	switch {
	case err == nil:
		logChannel = user.LogChannel
	case !errors.Is(err, accounterrors.ErrUserNotFound):
		return dialog.Reply{}, err
	}

	page, err := uc.accounts.ListPage(ctx, &userID, 0, accountsPerPage)
	if err != nil {
		return dialog.Reply{}, err
	}

	channel := "not set"
	if logChannel != 0 {
		channel = fmt.Sprintf("<code>%d</code>", logChannel)
	}
	return reply(fmt.Sprintf("⚙️ <b>Your Settings</b>\n\n📱 Accounts: %d\n📢 Log channel: %s", page.Total, channel),
		row(button("📱 My Accounts", consts.UserAccounts)),
		row(button("🗑 Remove Accounts", consts.UserRemoveMenu)),
		row(button("🔄 Refresh My Accounts", consts.UserRefresh)),
		row(button("📢 Set Log Channel", consts.UserSetLog), button("🗑 Remove Log Channel", consts.UserRemoveLog)),
	), nil
}

// HandleSettings shows the /set menu.
func (uc *UseCase) HandleSettings(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	return uc.settingsMenu(ctx, req.UserID)
}

// HandleUserCallback dispatches /set buttons. Every action is scoped to the
// caller's own accounts.
func (uc *UseCase) HandleUserCallback(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	userID := req.UserID

	switch req.Data {
	case consts.UserBack:
		return uc.settingsMenu(ctx, userID)
	case consts.UserAccounts:
		return uc.myAccounts(ctx, userID, 0)
	case consts.UserRemoveMenu:
		return uc.userRemoveMenu(ctx, userID)
	case consts.UserRemoveAll:
		return reply("⚠️ <b>Remove ALL your accounts?</b>",
			row(button("✅ Yes, remove all", consts.UserRemoveAllYes), button("❌ No", consts.UserRemoveMenu))), nil
	case consts.UserRemoveAllYes:
		return uc.userRemove(ctx, userID, accountbusiness.RemoveAll)
	case consts.UserRemoveNumbers:
		return uc.startNumbersRemoval(ctx, userID, &userID, dialog.KindSettings)
	case consts.UserRemoveInactive:
		return uc.userRemove(ctx, userID, accountbusiness.RemoveInactive)
	case consts.UserRefresh:
		uc.refreshInBackground(ctx, userID, &userID)
		return reply("🔄 Refreshing your accounts...\nYou will receive a report when done.", backToSettings()), nil
	case consts.UserSetLog:
		return uc.engine.Start(ctx, userID, dialog.KindSettings, map[string]any{keyAction: actionSetMyChannel})
	case consts.UserRemoveLog:
		if err := uc.users.SetLogChannel(ctx, userID, 0); err != nil {
			return dialog.Reply{}, err
		}
		return reply("✅ Your log channel was removed.", backToSettings()), nil
	}

	switch data := req.Data; {
	case strings.HasPrefix(data, consts.UserPagePrefix):
		return uc.myAccounts(ctx, userID, parsePage(data, consts.UserPagePrefix))
	case strings.HasPrefix(data, consts.UserDeletePrefix):
		return uc.userDeleteOne(ctx, userID, strings.TrimPrefix(data, consts.UserDeletePrefix))
	}
	return uc.settingsMenu(ctx, userID)
}

func (uc *UseCase) myAccounts(ctx context.Context, userID int64, page int) (dialog.Reply, error) {
	p, err := uc.accounts.ListPage(ctx, &userID, page, accountsPerPage)
	if err != nil {
		return dialog.Reply{}, err
	}
	if p.Total == 0 {
		return reply("📱 You have no accounts yet. Use /login to add one.", backToSettings()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📱 <b>Your Accounts</b> (%d)\n\n", p.Total)
	for i, acc := range p.Accounts {
		b.WriteString(accountLine(p.Offset+i+1, acc))
		b.WriteByte('\n')
	}
	return reply(b.String(), pageRow(consts.UserPagePrefix, p.Page, p.Pages), backToSettings()), nil
}

// userRemoveMenu offers one button per account for the first page plus the
// bulk options.
func (uc *UseCase) userRemoveMenu(ctx context.Context, userID int64) (dialog.Reply, error) {
	p, err := uc.accounts.ListPage(ctx, &userID, 0, accountsPerPage)
	if err != nil {
		return dialog.Reply{}, err
	}
	if p.Total == 0 {
		return reply("📱 You have no accounts to remove.", backToSettings()), nil
	}

	rows := make([][]dialog.Button, 0, len(p.Accounts)+4)
	for i, acc := range p.Accounts {
		rows = append(rows, row(button(fmt.Sprintf("🗑 %d. %s", i+1, acc.DisplayName()), consts.UserDeletePrefix+acc.ID.Hex())))
	}
	rows = append(rows,
		row(button("🔢 By Numbers", consts.UserRemoveNumbers)),
		row(button("❌ Inactive Accounts", consts.UserRemoveInactive)),
		row(button("⚠️ All My Accounts", consts.UserRemoveAll)),
		backToSettings(),
	)
	return dialog.Reply{Text: "🗑 <b>Remove Accounts</b>\n\nTap an account to remove it:", Buttons: rows}, nil
}

func (uc *UseCase) userRemove(ctx context.Context, userID int64, scope accountbusiness.RemoveScope) (dialog.Reply, error) {
	n, err := uc.accounts.Remove(ctx, &userID, scope)
	if err != nil {
		return dialog.Reply{}, err
	}
	return reply(fmt.Sprintf("✅ Removed %d account(s).", n), backToSettings()), nil
}

func (uc *UseCase) userDeleteOne(ctx context.Context, userID int64, hexID string) (dialog.Reply, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return uc.userRemoveMenu(ctx, userID)
	}
	if err := uc.accounts.RemoveOne(ctx, &userID, id); err != nil {
		return dialog.Reply{}, err
	}

	menu, err := uc.userRemoveMenu(ctx, userID)
	if err != nil {
		return dialog.Reply{}, err
	}
	menu.Text = "✅ Account removed.\n\n" + menu.Text
	return menu, nil
}
