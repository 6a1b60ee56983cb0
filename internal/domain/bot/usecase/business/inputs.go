package business

import (
	"context"
	"errors"
	"fmt"

	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	accounterrors "github.com/Devensh22345/account-manage/internal/domain/account/errors"
	accountbusiness "github.com/Devensh22345/account-manage/internal/domain/account/usecase/business"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
)

const stepValue dialog.Step = "value"

// Input dialog state keys
const (
	keyAction = "action"
	keyKind   = "kind"
)

// Input dialog actions
const (
	actionRemoveUser    = "remove_user"
	actionRemoveNumbers = "remove_numbers"
	actionAddAdmin      = "add_admin"
	actionRemoveAdmin   = "remove_admin"
	actionSetChannel    = "set_channel"
	actionSetMyChannel  = "set_my_channel"
)

const channelPrompt = "Forward any post from the channel or send its numeric ID.\nThe bot must be an admin there."

var inputPrompts = map[string]string{
	actionRemoveUser:    "👤 Send the user ID whose accounts should be removed:",
	actionRemoveNumbers: "🔢 Send the account numbers to remove, e.g. <code>1,3,5-7</code>",
	actionAddAdmin:      "➕ Send the user ID of the new admin:",
	actionRemoveAdmin:   "➖ Send the user ID of the admin to remove:",
	actionSetChannel:    "📢 " + channelPrompt,
	actionSetMyChannel:  "📢 " + channelPrompt,
}

func inputIntro(st *dialog.State) dialog.Reply {
	text := inputPrompts[st.String(keyAction)]
	if kind := st.String(keyKind); kind != "" {
		text = fmt.Sprintf("<b>%s log channel</b>\n\n%s", logKindLabels[entities.LogKind(kind)], text)
	}
	return reply(text, row(choice("❌ Cancel", choiceCancel)))
}

func (uc *UseCase) adminInputFlow() dialog.Flow {
	return dialog.Flow{
		Kind:  dialog.KindAdmin,
		First: stepValue,
		Intro: inputIntro,
		Steps: map[dialog.Step]dialog.StepFunc{stepValue: uc.adminValue},
	}
}

func (uc *UseCase) settingsInputFlow() dialog.Flow {
	return dialog.Flow{
		Kind:  dialog.KindSettings,
		First: stepValue,
		Intro: inputIntro,
		Steps: map[dialog.Step]dialog.StepFunc{stepValue: uc.settingsValue},
	}
}

func (uc *UseCase) adminValue(ctx context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
	if in.Choice == choiceCancel {
		return dialog.Abort("❌ Operation cancelled."), nil
	}
	adminID := st.UserID
	if err := uc.gate.RequireAdmin(ctx, adminID); err != nil {
		return dialog.Result{}, err
	}

	switch st.String(keyAction) {
	case actionRemoveUser:
		target, err := parseID(in.Text, "user ID")
		if err != nil {
			return dialog.Result{}, err
		}
		n, err := uc.accounts.Remove(ctx, &target, accountbusiness.RemoveAll)
		if err != nil {
			return dialog.Result{}, err
		}
		uc.accounts.Audit(ctx, adminID, auditRemoveUser, map[string]any{"target_user_id": target, "removed": n})
		return dialog.Finish(fmt.Sprintf("✅ Removed %d account(s) of user <code>%d</code>.", n, target)), nil

	case actionRemoveNumbers:
		return uc.removeNumbers(ctx, st, in, nil)

	case actionAddAdmin:
		if err := uc.gate.RequireOwner(adminID); err != nil {
			return dialog.Result{}, err
		}
		target, err := parseID(in.Text, "user ID")
		if err != nil {
			return dialog.Result{}, err
		}
		if err := uc.users.SetAdmin(ctx, target, true); err != nil {
			return dialog.Result{}, err
		}
		uc.accounts.Audit(ctx, adminID, auditAddAdmin, map[string]any{"target_user_id": target})
		return dialog.Finish(fmt.Sprintf("✅ User <code>%d</code> is now an admin.", target)), nil

	case actionRemoveAdmin:
		if err := uc.gate.RequireOwner(adminID); err != nil {
			return dialog.Result{}, err
		}
		target, err := parseID(in.Text, "user ID")
		if err != nil {
			return dialog.Result{}, err
		}
		if uc.gate.IsOwner(target) {
			return dialog.Stay("❌ The owner cannot be removed."), nil
		}
		if err := uc.users.SetAdmin(ctx, target, false); err != nil {
			return dialog.Result{}, err
		}
		uc.accounts.Audit(ctx, adminID, auditRemoveAdmin, map[string]any{"target_user_id": target})
		return dialog.Finish(fmt.Sprintf("✅ User <code>%d</code> is no longer an admin.", target)), nil

	case actionSetChannel:
		kind := entities.LogKind(st.String(keyKind))
		chatID, res, ok, err := uc.checkedChannel(ctx, in)
		if !ok || err != nil {
			return res, err
		}
		if err := uc.settings.SetLogChannel(ctx, kind, chatID); err != nil {
			return dialog.Result{}, err
		}
		uc.accounts.Audit(ctx, adminID, auditSetChannel, map[string]any{"kind": string(kind), "channel_id": chatID})
		return dialog.Finish(fmt.Sprintf("✅ %s log channel set to <code>%d</code>.", logKindLabels[kind], chatID)), nil
	}

	return dialog.Abort("❌ Unknown action."), nil
}

func (uc *UseCase) settingsValue(ctx context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
	if in.Choice == choiceCancel {
		return dialog.Abort("❌ Operation cancelled."), nil
	}

	switch st.String(keyAction) {
	case actionRemoveNumbers:
		owner := st.UserID
		return uc.removeNumbers(ctx, st, in, &owner)

	case actionSetMyChannel:
		chatID, res, ok, err := uc.checkedChannel(ctx, in)
		if !ok || err != nil {
			return res, err
		}
		if err := uc.users.SetLogChannel(ctx, st.UserID, chatID); err != nil {
			return dialog.Result{}, err
		}
		return dialog.Finish(fmt.Sprintf("✅ Your log channel is set to <code>%d</code>.", chatID)), nil
	}

	return dialog.Abort("❌ Unknown action."), nil
}

// removeNumbers soft deletes by list position. owner nil is the admin scope.
func (uc *UseCase) removeNumbers(ctx context.Context, st *dialog.State, in dialog.Input, owner *int64) (dialog.Result, error) {
	n, err := uc.accounts.RemoveByNumbers(ctx, owner, in.Text)
	if errors.Is(err, accounterrors.ErrNoAccounts) {
		return dialog.Abort("❌ No accounts to remove."), nil
	}
	if err != nil {
		return dialog.Result{}, err
	}
	if owner == nil {
		uc.accounts.Audit(ctx, st.UserID, auditRemoveNumbers, map[string]any{"numbers": in.Text, "removed": n})
	}
	return dialog.Finish(fmt.Sprintf("✅ Removed %d account(s).", n)), nil
}

// checkedChannel resolves the channel from in and verifies the bot is an
// admin there. ok is false when res should be returned as is.
func (uc *UseCase) checkedChannel(ctx context.Context, in dialog.Input) (int64, dialog.Result, bool, error) {
	chatID, err := parseChannel(in)
	if err != nil {
		return 0, dialog.Result{}, false, err
	}

	isAdmin, err := uc.checker.IsBotAdmin(ctx, chatID)
	if err != nil {
		uc.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("channel check failed")
		return 0, dialog.Stay("❌ I could not access that channel. Add me as an admin and try again."), false, nil
	}
	if !isAdmin {
		return 0, dialog.Stay("❌ I am not an admin in that channel. Add me as an admin and try again."), false, nil
	}
	return chatID, dialog.Result{}, true, nil
}
