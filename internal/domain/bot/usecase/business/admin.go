package business

import (
	"context"
	"fmt"
	"strings"

	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	accountbusiness "github.com/Devensh22345/account-manage/internal/domain/account/usecase/business"
	"github.com/Devensh22345/account-manage/internal/domain/bot/consts"
	"github.com/Devensh22345/account-manage/internal/domain/bot/dto"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
)

const accountsPerPage = 10

// Admin audit actions
const (
	auditRemoveUser     = "remove_user_accounts"
	auditRemoveAll      = "remove_all_accounts"
	auditRemoveNumbers  = "remove_accounts_by_numbers"
	auditRemoveInactive = "remove_inactive_accounts"
	auditRefresh        = "refresh_accounts"
	auditAddAdmin       = "add_admin"
	auditRemoveAdmin    = "remove_admin"
	auditSetChannel     = "set_log_channel"
	auditRemoveChannel  = "remove_log_channel"
)

var logKindLabels = map[entities.LogKind]string{
	entities.LogMain:   "Main",
	entities.LogString: "String",
	entities.LogReport: "Report",
	entities.LogSend:   "Send",
	entities.LogOTP:    "OTP",
	entities.LogJoin:   "Join",
	entities.LogLeave:  "Leave",
}

func (uc *UseCase) adminMenu(userID int64) dialog.Reply {
	rows := [][]dialog.Button{
		row(button("📋 All Accounts", consts.AdminAllAccounts)),
		row(button("🗑 Remove Accounts", consts.AdminRemoveMenu)),
		row(button("🔄 Refresh Accounts", consts.AdminRefresh)),
		row(button("📢 Log Channels", consts.AdminChannels)),
		row(button("📊 Statistics", consts.AdminStats)),
	}
	if uc.gate.IsOwner(userID) {
		rows = append(rows, row(button("👑 Admin Management", consts.AdminManagement)))
	}
	return dialog.Reply{Text: "🛠 <b>Admin Panel</b>\n\nSelect an option:", Buttons: rows}
}

func backToAdmin() []dialog.Button {
	return row(button("⬅️ Back", consts.AdminBack))
}

// HandleAdmin shows the admin panel.
func (uc *UseCase) HandleAdmin(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	if err := uc.gate.RequireAdmin(ctx, req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	return uc.adminMenu(req.UserID), nil
}

// HandleAdminCallback dispatches admin panel buttons. Exact values are
// matched before prefixes since several values share a prefix.
func (uc *UseCase) HandleAdminCallback(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	if err := uc.gate.RequireAdmin(ctx, req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	userID := req.UserID

	switch req.Data {
	case consts.AdminBack:
		return uc.adminMenu(userID), nil
	case consts.AdminAllAccounts:
		return uc.allAccounts(ctx, 0)
	case consts.AdminRemoveMenu:
		return adminRemoveMenu(), nil
	case consts.AdminRemoveUser:
		return uc.engine.Start(ctx, userID, dialog.KindAdmin, map[string]any{keyAction: actionRemoveUser})
	case consts.AdminRemoveAll:
		return reply("⚠️ <b>Remove ALL accounts?</b>\n\nEvery account of every user will be removed.",
			row(button("✅ Yes, remove all", consts.AdminRemoveAllYes), button("❌ No", consts.AdminRemoveMenu))), nil
	case consts.AdminRemoveAllYes:
		return uc.adminRemove(ctx, userID, accountbusiness.RemoveAll, auditRemoveAll)
	case consts.AdminRemoveNumbers:
		return uc.startNumbersRemoval(ctx, userID, nil, dialog.KindAdmin)
	case consts.AdminRemoveInactive:
		return uc.adminRemove(ctx, userID, accountbusiness.RemoveInactive, auditRemoveInactive)
	case consts.AdminRefresh:
		uc.accounts.Audit(ctx, userID, auditRefresh, nil)
		uc.refreshInBackground(ctx, userID, nil)
		return reply("🔄 Refreshing all accounts...\nYou will receive a report when done.", backToAdmin()), nil
	case consts.AdminManagement:
		return uc.adminManagement(userID)
	case consts.AdminAdd:
		if err := uc.gate.RequireOwner(userID); err != nil {
			return dialog.Reply{}, err
		}
		return uc.engine.Start(ctx, userID, dialog.KindAdmin, map[string]any{keyAction: actionAddAdmin})
	case consts.AdminRemoveAdmin:
		if err := uc.gate.RequireOwner(userID); err != nil {
			return dialog.Reply{}, err
		}
		return uc.engine.Start(ctx, userID, dialog.KindAdmin, map[string]any{keyAction: actionRemoveAdmin})
	case consts.AdminList:
		return uc.listAdmins(ctx)
	case consts.AdminChannels:
		return uc.channelsMenu(ctx), nil
	case consts.AdminStats:
		text, err := uc.statsText(ctx)
		if err != nil {
			return dialog.Reply{}, err
		}
		return reply(text, backToAdmin()), nil
	}

	switch data := req.Data; {
	case strings.HasPrefix(data, consts.AdminPagePrefix):
		return uc.allAccounts(ctx, parsePage(data, consts.AdminPagePrefix))
	case strings.HasPrefix(data, consts.AdminRemoveLogPrefix):
		return uc.removeChannel(ctx, userID, entities.LogKind(strings.TrimPrefix(data, consts.AdminRemoveLogPrefix)))
	case strings.HasPrefix(data, consts.AdminSetLogPrefix):
		kind := entities.LogKind(strings.TrimPrefix(data, consts.AdminSetLogPrefix))
		if _, ok := logKindLabels[kind]; !ok {
			return uc.channelsMenu(ctx), nil
		}
		return uc.engine.Start(ctx, userID, dialog.KindAdmin, map[string]any{keyAction: actionSetChannel, keyKind: string(kind)})
	}
	return uc.adminMenu(userID), nil
}

func (uc *UseCase) allAccounts(ctx context.Context, page int) (dialog.Reply, error) {
	p, err := uc.accounts.ListPage(ctx, nil, page, accountsPerPage)
	if err != nil {
		return dialog.Reply{}, err
	}
	if p.Total == 0 {
		return reply("📋 No accounts registered yet.", backToAdmin()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>All Accounts</b> (%d)\n\n", p.Total)
	for i, acc := range p.Accounts {
		b.WriteString(accountLine(p.Offset+i+1, acc))
		fmt.Fprintf(&b, " 👤 <code>%d</code>\n", acc.UserID)
	}
	return reply(b.String(), pageRow(consts.AdminPagePrefix, p.Page, p.Pages), backToAdmin()), nil
}

func adminRemoveMenu() dialog.Reply {
	return reply("🗑 <b>Remove Accounts</b>\n\nChoose what to remove:",
		row(button("👤 By User ID", consts.AdminRemoveUser)),
		row(button("🔢 By Numbers", consts.AdminRemoveNumbers)),
		row(button("❌ Inactive Accounts", consts.AdminRemoveInactive)),
		row(button("⚠️ All Accounts", consts.AdminRemoveAll)),
		backToAdmin(),
	)
}

func (uc *UseCase) adminRemove(ctx context.Context, adminID int64, scope accountbusiness.RemoveScope, action string) (dialog.Reply, error) {
	n, err := uc.accounts.Remove(ctx, nil, scope)
	if err != nil {
		return dialog.Reply{}, err
	}
	uc.accounts.Audit(ctx, adminID, action, map[string]any{"removed": n})
	uc.channels.Post(ctx, entities.LogMain, fmt.Sprintf("🗑 Admin <code>%d</code> removed %d account(s) (%s)", adminID, n, scope))
	return reply(fmt.Sprintf("✅ Removed %d account(s).", n), backToAdmin()), nil
}

// startNumbersRemoval lists the removable accounts and opens an input dialog
// for their numbers. owner nil lists every account.
func (uc *UseCase) startNumbersRemoval(ctx context.Context, userID int64, owner *int64, kind dialog.Kind) (dialog.Reply, error) {
	accounts, err := uc.accounts.ListPage(ctx, owner, 0, 0)
	if err != nil {
		return dialog.Reply{}, err
	}
	if accounts.Total == 0 {
		return reply("❌ No accounts to remove."), nil
	}

	r, err := uc.engine.Start(ctx, userID, kind, map[string]any{keyAction: actionRemoveNumbers})
	if err != nil {
		return dialog.Reply{}, err
	}

	var b strings.Builder
	for i, acc := range accounts.Accounts {
		b.WriteString(accountLine(i+1, acc))
		b.WriteByte('\n')
	}
	r.Text = b.String() + "\n" + r.Text
	return r, nil
}

// refreshInBackground checks accounts outside the request and notifies the
// user with the report.
func (uc *UseCase) refreshInBackground(ctx context.Context, userID int64, owner *int64) {
	bg := context.WithoutCancel(ctx)
	go func() {
		report, err := uc.accounts.Refresh(bg, owner)
		if err != nil {
			uc.logger.Error().Err(err).Int64("user_id", userID).Msg("account refresh failed")
			uc.notify(bg, userID, "❌ Account refresh failed. Please try again later.")
			return
		}
		uc.notify(bg, userID, fmt.Sprintf(
			"✅ <b>Refresh Complete</b>\n\n🔍 Checked: %d\n✅ Active: %d\n🧊 Frozen: %d\n❌ Inactive: %d",
			report.Checked, report.Active, report.Frozen, report.Inactive))
	}()
}

func (uc *UseCase) adminManagement(userID int64) (dialog.Reply, error) {
	if err := uc.gate.RequireOwner(userID); err != nil {
		return dialog.Reply{}, err
	}
	return reply("👑 <b>Admin Management</b>",
		row(button("➕ Add Admin", consts.AdminAdd)),
		row(button("➖ Remove Admin", consts.AdminRemoveAdmin)),
		row(button("📋 List Admins", consts.AdminList)),
		backToAdmin(),
	), nil
}

func (uc *UseCase) listAdmins(ctx context.Context) (dialog.Reply, error) {
	admins, err := uc.users.ListAdmins(ctx)
	if err != nil {
		return dialog.Reply{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👑 <b>Admins</b>\n\n• <code>%d</code> (owner)\n", uc.gate.OwnerID())
	for _, u := range admins {
		if u.UserID == uc.gate.OwnerID() {
			continue
		}
		fmt.Fprintf(&b, "• <code>%d</code>", u.UserID)
		if u.Username != "" {
			fmt.Fprintf(&b, " @%s", esc(u.Username))
		}
		b.WriteByte('\n')
	}
	return reply(b.String(), backToAdmin()), nil
}

func (uc *UseCase) channelsMenu(ctx context.Context) dialog.Reply {
	current := uc.channels.All(ctx)

	var b strings.Builder
	b.WriteString("📢 <b>Log Channels</b>\n\n")
	rows := make([][]dialog.Button, 0, len(entities.AllLogKinds)+1)
	for _, kind := range entities.AllLogKinds {
		label := logKindLabels[kind]
		if id := current[kind]; id != 0 {
			fmt.Fprintf(&b, "• %s: <code>%d</code>\n", label, id)
		} else {
			fmt.Fprintf(&b, "• %s: not set\n", label)
		}
		rows = append(rows, row(
			button("✏️ "+label, consts.AdminSetLogPrefix+string(kind)),
			button("🗑 "+label, consts.AdminRemoveLogPrefix+string(kind)),
		))
	}
	rows = append(rows, backToAdmin())
	return dialog.Reply{Text: b.String(), Buttons: rows}
}

func (uc *UseCase) removeChannel(ctx context.Context, adminID int64, kind entities.LogKind) (dialog.Reply, error) {
	if _, ok := logKindLabels[kind]; !ok {
		return uc.channelsMenu(ctx), nil
	}
	if err := uc.settings.SetLogChannel(ctx, kind, 0); err != nil {
		return dialog.Reply{}, err
	}
	uc.accounts.Audit(ctx, adminID, auditRemoveChannel, map[string]any{"kind": string(kind)})

	menu := uc.channelsMenu(ctx)
	menu.Text = fmt.Sprintf("✅ %s log channel removed.\n\n", logKindLabels[kind]) + menu.Text
	return menu, nil
}

func (uc *UseCase) statsText(ctx context.Context) (string, error) {
	st, err := uc.accounts.Stats(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📊 <b>Bot Statistics</b>\n\n"+
		"📱 Accounts: %d\n✅ Active: %d\n🧊 Frozen: %d\n🗑 Deleted: %d\n\n"+
		"👥 Users: %d\n👑 Admins: %d\n📝 Admin actions: %d\n\n"+
		"🚨 Report jobs: %d\n▶️ Running: %d\n✔️ Completed: %d",
		st.TotalAccounts, st.ActiveAccounts, st.FrozenAccounts, st.DeletedAccounts,
		st.TotalUsers, st.Admins, st.AdminActions,
		st.ReportJobs, st.RunningReports, st.CompletedReports), nil
}
