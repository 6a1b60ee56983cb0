package business

import (
	"context"
	"fmt"

	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	accountbusiness "github.com/Devensh22345/account-manage/internal/domain/account/usecase/business"
	"github.com/Devensh22345/account-manage/internal/domain/bot/dto"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
	"github.com/Devensh22345/account-manage/internal/domain/remote"
	"github.com/Devensh22345/account-manage/internal/utils"
)

const (
	stepAPIID       dialog.Step = "api_id"
	stepAPIHash     dialog.Step = "api_hash"
	stepPhone       dialog.Step = "phone"
	stepAccountName dialog.Step = "account_name"
	stepOTP         dialog.Step = "otp"
	stepPassword    dialog.Step = "password"
)

// Login state keys
const (
	keyAPIID    = "api_id"
	keyAPIHash  = "api_hash"
	keyPhone    = "phone"
	keyName     = "account_name"
	keyCodeHash = "code_hash"
)

// stringChannelTokenLimit bounds the session token posted to the string channel.
const stringChannelTokenLimit = 100

const duplicatePhoneText = "❌ This phone number is already registered!\nPlease use a different number."

func (uc *UseCase) loginFlow() dialog.Flow {
	return dialog.Flow{
		Kind:  dialog.KindLogin,
		First: stepAPIID,
		Intro: func(*dialog.State) dialog.Reply {
			return reply("🔐 Please send your API ID:\n\nYou can get it from https://my.telegram.org")
		},
		Steps: map[dialog.Step]dialog.StepFunc{
			stepAPIID:       uc.loginAPIID,
			stepAPIHash:     uc.loginAPIHash,
			stepPhone:       uc.loginPhone,
			stepAccountName: uc.loginAccountName,
			stepOTP:         uc.loginOTP,
			stepPassword:    uc.loginPassword,
		},
	}
}

// HandleLogin handles /login. Capacity is checked before the dialog opens.
func (uc *UseCase) HandleLogin(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	if err := uc.accounts.CheckCapacity(ctx, req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	return uc.engine.Start(ctx, req.UserID, dialog.KindLogin, nil)
}

func (uc *UseCase) loginAPIID(_ context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
	id, err := utils.ParseAPIID(in.Text)
	if err != nil {
		return dialog.Result{}, err
	}
	st.Set(keyAPIID, id)
	return dialog.Next(stepAPIHash, "🔑 Please send your API Hash:"), nil
}

func (uc *UseCase) loginAPIHash(_ context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
	hash, err := utils.NormalizeAPIHash(in.Text)
	if err != nil {
		return dialog.Result{}, err
	}
	st.Set(keyAPIHash, hash)
	return dialog.Next(stepPhone, "📱 Please send your phone number in international format:\nExample: +1234567890"), nil
}

// loginPhone ends the dialog when the phone is already registered; nothing
// has been written at this point.
func (uc *UseCase) loginPhone(ctx context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
	phone, err := utils.NormalizePhone(in.Text)
	if err != nil {
		return dialog.Result{}, err
	}

	taken, err := uc.accounts.PhoneTaken(ctx, phone)
	if err != nil {
		return dialog.Result{}, err
	}
	if taken {
		return dialog.Abort(duplicatePhoneText), nil
	}

	st.Set(keyPhone, phone)
	return dialog.Next(stepAccountName, "👤 Please send a name for this account:"), nil
}

// loginAccountName opens the login connection and requests the code. The
// connection is held by the dialog until it ends.
func (uc *UseCase) loginAccountName(ctx context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
	name, err := utils.ValidateAccountName(in.Text)
	if err != nil {
		return dialog.Result{}, err
	}
	st.Set(keyName, name)

	login, err := uc.dialer.BeginLogin(ctx, st.Int(keyAPIID), st.String(keyAPIHash))
	if err != nil {
		return loginFailure(err)
	}
	st.Handle = login

	hash, err := login.SendCode(ctx, st.String(keyPhone))
	if err != nil {
		return loginFailure(err)
	}
	st.Set(keyCodeHash, hash)

	return dialog.Next(stepOTP, "📲 A login code has been sent to the account.\nPlease send the code:"), nil
}

func (uc *UseCase) loginOTP(ctx context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
	code, err := utils.NormalizeOTP(in.Text)
	if err != nil {
		return dialog.Result{}, err
	}

	login, ok := st.Handle.(remote.LoginSession)
	if !ok {
		return dialog.Abort("❌ Session expired. Please start over with /login"), nil
	}

	err = login.SignIn(ctx, st.String(keyPhone), code, st.String(keyCodeHash))
	switch remote.KindOf(err) {
	case remote.KindUnknown:
		if err != nil {
			return loginFailure(err)
		}
		return uc.completeLogin(ctx, st, login)
	case remote.KindPasswordNeeded:
		return dialog.Next(stepPassword, "🔒 This account has two-step verification enabled.\nPlease send your password:"), nil
	case remote.KindCodeInvalid:
		return dialog.Stay("❌ Invalid code. Please try again!"), nil
	case remote.KindCodeExpired:
		return dialog.Abort("❌ The code expired. Please start over with /login"), nil
	default:
		return loginFailure(err)
	}
}

func (uc *UseCase) loginPassword(ctx context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
	if in.Text == "" {
		return dialog.Stay("❌ Please send your two-step verification password."), nil
	}

	login, ok := st.Handle.(remote.LoginSession)
	if !ok {
		return dialog.Abort("❌ Session expired. Please start over with /login"), nil
	}

	err := login.Password(ctx, in.Text)
	if remote.KindOf(err) == remote.KindPasswordInvalid {
		return dialog.Stay("❌ Invalid password. Please try again!"), nil
	}
	if err != nil {
		return loginFailure(err)
	}
	return uc.completeLogin(ctx, st, login)
}

// completeLogin exports the session and stores the account. Channel posts
// run after the dialog has been cleared.
func (uc *UseCase) completeLogin(ctx context.Context, st *dialog.State, login remote.LoginSession) (dialog.Result, error) {
	phone := st.String(keyPhone)

	token, profile, err := login.Export(ctx)
	if err != nil {
		return dialog.Result{}, fmt.Errorf("export session: %w", err)
	}

	// Another dialog may have registered the phone meanwhile.
	taken, err := uc.accounts.PhoneTaken(ctx, phone)
	if err != nil {
		return dialog.Result{}, err
	}
	if taken {
		return dialog.Abort(duplicatePhoneText), nil
	}

	account, err := uc.accounts.Register(ctx, accountbusiness.Registration{
		UserID:       st.UserID,
		Phone:        phone,
		APIID:        st.Int(keyAPIID),
		APIHash:      st.String(keyAPIHash),
		Name:         st.String(keyName),
		SessionToken: token,
		Profile:      profile,
	})
	if err != nil {
		return dialog.Result{}, err
	}

	text := fmt.Sprintf("✅ Account added successfully!\n\n🏷️ Name: %s\n📱 Phone: %s\n👤 Username: %s\n\nYou can now use this account with other commands.",
		esc(account.AccountName), esc(account.PhoneNumber), usernameOf(account))

	userID := st.UserID
	apiID := account.APIID
	apiHash := account.APIHash
	return dialog.Finish(text).Then(func(ctx context.Context) {
		uc.afterLogin(ctx, userID, account, apiID, apiHash, token)
	}), nil
}

func (uc *UseCase) afterLogin(ctx context.Context, userID int64, account *entities.Account, apiID int, apiHash, token string) {
	if err := uc.archive.ArchiveSession(ctx, userID, account.PhoneNumber, apiID, token); err != nil {
		uc.logger.Warn().Err(err).
			Str("phone", utils.MaskPhoneNumber(account.PhoneNumber)).
			Msg("failed to archive session")
	}

	uc.channels.Post(ctx, entities.LogString, fmt.Sprintf(
		"🔐 <b>New Account Login</b>\n\n👤 User ID: <code>%d</code>\n📱 Phone: %s\n🏷️ Name: %s\n🆔 API ID: %d\n🔑 API Hash: <code>%s</code>\n📦 Session String:\n<code>%s</code>",
		userID, esc(account.PhoneNumber), esc(account.AccountName), apiID, esc(apiHash),
		esc(utils.TruncateSecret(token, stringChannelTokenLimit))))

	uc.channels.Post(ctx, entities.LogMain, fmt.Sprintf(
		"✅ <b>Account Login Successful</b>\n\n👤 User: <code>%d</code>\n📱 Account: %s\n📞 Phone: %s",
		userID, esc(account.AccountName), esc(account.PhoneNumber)))

	uc.channels.PostPersonal(ctx, userID, fmt.Sprintf(
		"✅ New account added: %s (%s)", esc(account.AccountName), esc(utils.MaskPhoneNumber(account.PhoneNumber))))
}

func usernameOf(acc *entities.Account) string {
	if acc.Username == "" {
		return "-"
	}
	return "@" + esc(acc.Username)
}

// loginFailure ends the dialog with a message matching the remote error.
// Unclassified errors are returned so the engine logs them.
func loginFailure(err error) (dialog.Result, error) {
	switch remote.KindOf(err) {
	case remote.KindRateLimited:
		wait, _ := remote.WaitOf(err)
		return dialog.Abort(fmt.Sprintf("⏳ Flood wait: please wait %d seconds before trying again!", int(wait.Seconds()))), nil
	case remote.KindPhoneInvalid:
		return dialog.Abort("❌ The phone number was rejected. Please check it and start over with /login"), nil
	case remote.KindCodeExpired:
		return dialog.Abort("❌ The code expired. Please start over with /login"), nil
	case remote.KindPasswordInvalid:
		return dialog.Abort("❌ Invalid password. Please start over with /login"), nil
	case remote.KindTransient:
		return dialog.Abort("❌ Could not reach Telegram. Please try again later."), nil
	}
	return dialog.Result{}, err
}
