package business

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	"github.com/Devensh22345/account-manage/internal/domain/bot/consts"
	"github.com/Devensh22345/account-manage/internal/domain/bot/dto"
	"github.com/Devensh22345/account-manage/internal/domain/bulk"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
	"github.com/Devensh22345/account-manage/internal/domain/remote"
	"github.com/Devensh22345/account-manage/internal/infrastructure/cache"
	"github.com/Devensh22345/account-manage/internal/utils"
	pkgerrors "github.com/Devensh22345/account-manage/pkg/errors"
)

const (
	otpAccountsPerPage = 8
	otpMessageLimit    = 20
	otpKeep            = 10
	otpShown           = 5
	otpBatchSize       = 10
)

// Tried in order; the first pattern with a match wins.
var otpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d{4,6}\b`),
	regexp.MustCompile(`(?i)code[\s:]*(\d{4,6})`),
	regexp.MustCompile(`(?i)OTP[\s:]*(\d{4,6})`),
	regexp.MustCompile(`(?i)password[\s:]*(\d{4,6})`),
	regexp.MustCompile(`(?i)verification[\s:]*(\d{4,6})`),
	regexp.MustCompile(`(?i)\b(\d{4,6})\s+is your`),
	regexp.MustCompile(`(?i)your code is[\s:]*(\d{4,6})`),
}

var errNoCodes = errors.New("no login codes found")

// ExtractCode returns the first login code found in text.
func ExtractCode(text string) (string, bool) {
	for _, re := range otpPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			return m[1], true
		}
		return m[0], true
	}
	return "", false
}

func otpMenu() dialog.Reply {
	return reply("📲 <b>OTP Manager</b>\n\nSelect an option:",
		row(button("📱 Get OTP from Account", consts.OTPSingle)),
		row(button("📋 Get All OTPs", consts.OTPAll)),
		row(button("🔄 Refresh OTPs", consts.OTPRefresh)),
	)
}

// HandleOTP shows the OTP menu.
func (uc *UseCase) HandleOTP(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	if err := uc.gate.RequireAdmin(ctx, req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	return otpMenu(), nil
}

func (uc *UseCase) HandleOTPCallback(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	if err := uc.gate.RequireAdmin(ctx, req.UserID); err != nil {
		return dialog.Reply{}, err
	}

	switch data := req.Data; {
	case data == consts.OTPSingle:
		return uc.otpAccountPicker(ctx, 0)
	case data == consts.OTPAll:
		return uc.fetchAllCodes(ctx, req.UserID)
	case data == consts.OTPRefresh:
		return uc.refreshCodes(ctx)
	case data == consts.OTPBack:
		return otpMenu(), nil
	case strings.HasPrefix(data, consts.OTPPagePrefix):
		return uc.otpAccountPicker(ctx, parsePage(data, consts.OTPPagePrefix))
	case strings.HasPrefix(data, consts.OTPAccountPrefix):
		return uc.accountCodes(ctx, req.UserID, strings.TrimPrefix(data, consts.OTPAccountPrefix))
	}
	return otpMenu(), nil
}

func (uc *UseCase) otpAccountPicker(ctx context.Context, page int) (dialog.Reply, error) {
	accounts, err := uc.accounts.ActiveAccounts(ctx, nil)
	if err != nil {
		return dialog.Reply{}, err
	}
	if len(accounts) == 0 {
		return reply(noAccountsText, row(button("⬅️ Back", consts.OTPBack))), nil
	}

	pages := (len(accounts) + otpAccountsPerPage - 1) / otpAccountsPerPage
	page = min(max(page, 0), pages-1)
	start := page * otpAccountsPerPage
	end := min(start+otpAccountsPerPage, len(accounts))

	var rows [][]dialog.Button
	for i := start; i < end; i += 2 {
		r := row(otpAccountButton(i, accounts[i]))
		if i+1 < end {
			r = append(r, otpAccountButton(i+1, accounts[i+1]))
		}
		rows = append(rows, r)
	}
	rows = append(rows, pageRow(consts.OTPPagePrefix, page, pages), row(button("⬅️ Back", consts.OTPBack)))

	return dialog.Reply{
		Text: fmt.Sprintf("📱 <b>Select Account for OTP</b>\n\nTotal active accounts: %d\nPage %d of %d\n\nSelect an account:",
			len(accounts), page+1, pages),
		Buttons: rows,
	}, nil
}

func otpAccountButton(i int, acc *entities.Account) dialog.Button {
	return button(fmt.Sprintf("%d. %s", i+1, acc.DisplayName()), consts.OTPAccountPrefix+acc.ID.Hex())
}

// fetchCodes reads the service notifications of acc and returns the newest
// codes first. Fresh codes are added to the cache.
func (uc *UseCase) fetchCodes(ctx context.Context, acc *entities.Account) ([]cache.OTPEntry, error) {
	sess, err := uc.dial(ctx, acc)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			uc.logger.Warn().Err(err).Str("account_id", acc.ID.Hex()).Msg("failed to close session")
		}
	}()

	msgs, err := sess.ServiceMessages(ctx, otpMessageLimit)
	if err != nil {
		return nil, err
	}

	var entries []cache.OTPEntry
	for _, m := range msgs {
		code, ok := ExtractCode(m.Text)
		if !ok {
			continue
		}
		entries = append(entries, cache.OTPEntry{MessageID: m.ID, Code: code, Text: m.Text, Date: m.Date})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })
	if len(entries) > otpKeep {
		entries = entries[:otpKeep]
	}

	oldestFirst := make([]cache.OTPEntry, len(entries))
	for i, e := range entries {
		oldestFirst[len(entries)-1-i] = e
	}
	uc.codes.Add(acc.ID.Hex(), oldestFirst...)
	return entries, nil
}

func (uc *UseCase) accountCodes(ctx context.Context, userID int64, hexID string) (dialog.Reply, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return dialog.Reply{}, pkgerrors.NewValidationError("Unknown account")
	}
	acc, err := uc.accounts.Get(ctx, id)
	if err != nil {
		return dialog.Reply{}, err
	}

	entries, err := uc.fetchCodes(ctx, acc)
	cached := false
	if remote.KindOf(err) == remote.KindUnauthorized {
		uc.accounts.ObserveFailure(ctx, acc, err)
		uc.codes.Forget(acc.ID.Hex())
		return dialog.Reply{}, pkgerrors.NewUnauthorizedErrorf(
			"The session of %s is no longer valid. Add it again with /login.", esc(acc.DisplayName()))
	}
	if err != nil {
		uc.logger.Warn().Err(err).
			Str("phone", utils.MaskPhoneNumber(acc.PhoneNumber)).
			Msg("live OTP fetch failed, using cache")
		entries = uc.codes.Recent(acc.ID.Hex(), otpShown)
		cached = true
	}

	back := row(button("⬅️ Back", consts.OTPBack))
	if len(entries) == 0 {
		return reply(fmt.Sprintf("❌ No OTP found for %s!\nThe account might not have received any OTPs recently.",
			esc(acc.DisplayName())), back), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📲 <b>OTP Information</b>\n\n🏷️ Account: %s\n📱 Phone: %s\n\n🔢 <b>Recent OTPs:</b>\n",
		esc(acc.DisplayName()), esc(acc.PhoneNumber))
	for i, e := range entries[:min(otpShown, len(entries))] {
		fmt.Fprintf(&b, "%d. <code>%s</code> - %s\n", i+1, e.Code, e.Date.Format("2006-01-02 15:04:05"))
	}
	if len(entries) > otpShown {
		fmt.Fprintf(&b, "... and %d more\n", len(entries)-otpShown)
	}
	if cached {
		b.WriteString("\n⚠️ Could not reach the account, showing cached codes.")
	}

	uc.channels.Post(ctx, entities.LogOTP, fmt.Sprintf(
		"📲 <b>OTP Retrieved</b>\n\n👤 Admin: <code>%d</code>\n🏷️ Account: %s\n📱 Phone: %s\n🔢 Latest OTP: <code>%s</code>",
		userID, esc(acc.DisplayName()), esc(acc.PhoneNumber), entries[0].Code))

	return reply(b.String(), back), nil
}

type otpResult struct {
	account *entities.Account
	entries []cache.OTPEntry
}

// fetchAllCodes runs a bulk task over every active account. Accounts without
// codes count as failed.
func (uc *UseCase) fetchAllCodes(ctx context.Context, userID int64) (dialog.Reply, error) {
	accounts, err := uc.accounts.ActiveAccounts(ctx, nil)
	if err != nil {
		return dialog.Reply{}, err
	}
	if len(accounts) == 0 {
		return reply(noAccountsText), nil
	}

	var found []otpResult
	job := bulk.Job{
		UserID:   userID,
		Kind:     bulk.KindOTP,
		Accounts: accounts,
		Targets:  []string{""},
		Delay:    uc.delays.otp,
		Action: func(ctx context.Context, acc *entities.Account, _ string) error {
			entries, err := uc.fetchCodes(ctx, acc)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return errNoCodes
			}
			found = append(found, otpResult{account: acc, entries: entries})
			return nil
		},
		OnFinish: func(ctx context.Context, sum bulk.Summary) {
			uc.sendCodeReport(ctx, userID, found, sum)
		},
	}

	if err := uc.startTask(ctx, job, nil); err != nil {
		return dialog.Reply{}, err
	}
	return reply(fmt.Sprintf("🚀 <b>Fetching OTPs from %d accounts</b>\n\n⏳ This may take a while...\nResults will be sent here.",
		len(accounts))), nil
}

func (uc *UseCase) sendCodeReport(ctx context.Context, userID int64, found []otpResult, sum bulk.Summary) {
	if len(found) == 0 {
		uc.notify(ctx, userID, "❌ No OTPs found in any account!")
	}

	for i := 0; i < len(found); i += otpBatchSize {
		batch := found[i:min(i+otpBatchSize, len(found))]

		var b strings.Builder
		fmt.Fprintf(&b, "📋 <b>OTP Results</b> (%d-%d of %d)\n\n", i+1, i+len(batch), len(found))
		for j, r := range batch {
			fmt.Fprintf(&b, "%d. <b>%s</b>\n   📱: %s\n   🔢 Latest OTP: <code>%s</code>\n   📅 OTPs found: %d\n\n",
				i+j+1, esc(r.account.DisplayName()), esc(r.account.PhoneNumber), r.entries[0].Code, len(r.entries))
		}
		uc.notify(ctx, userID, b.String())
	}

	title := "✅ <b>OTP Fetch Complete</b>"
	if sum.State == bulk.StateCancelled {
		title = "⏹ <b>OTP Fetch Stopped</b>"
	}
	uc.notify(ctx, userID, fmt.Sprintf("%s\n\n📊 Statistics:\n✅ Successful: %d\n❌ Failed: %d\n📈 Total accounts: %d\n🔢 Accounts with OTPs: %d",
		title, sum.Successful, sum.Failed, sum.Planned, len(found)))
}

// refreshCodes drops cached codes so the next lookup goes to the accounts.
func (uc *UseCase) refreshCodes(ctx context.Context) (dialog.Reply, error) {
	accounts, err := uc.accounts.ActiveAccounts(ctx, nil)
	if err != nil {
		return dialog.Reply{}, err
	}
	for _, acc := range accounts {
		uc.codes.Forget(acc.ID.Hex())
	}
	menu := otpMenu()
	menu.Text = "🔄 OTP cache cleared.\n\n" + menu.Text
	return menu, nil
}
