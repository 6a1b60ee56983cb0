package business

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	"github.com/Devensh22345/account-manage/internal/domain/bot/consts"
	"github.com/Devensh22345/account-manage/internal/domain/bulk"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
	"github.com/Devensh22345/account-manage/internal/utils"
	pkgerrors "github.com/Devensh22345/account-manage/pkg/errors"
)

func reply(text string, rows ...[]dialog.Button) dialog.Reply {
	return dialog.Reply{Text: text, Buttons: rows}
}

func button(text, data string) dialog.Button {
	return dialog.Button{Text: text, Data: data}
}

// choice is a button answered by the active dialog.
func choice(text, value string) dialog.Button {
	return dialog.Button{Text: text, Data: consts.PrefixDialog + value}
}

func row(buttons ...dialog.Button) []dialog.Button {
	return buttons
}

// pageRow renders previous / indicator / next for 0-based pages.
func pageRow(prefix string, page, pages int) []dialog.Button {
	var out []dialog.Button
	if page > 0 {
		out = append(out, button("⬅️ Previous", prefix+strconv.Itoa(page-1)))
	}
	out = append(out, button(fmt.Sprintf("📄 %d/%d", page+1, pages), consts.PageNoop))
	if page < pages-1 {
		out = append(out, button("➡️ Next", prefix+strconv.Itoa(page+1)))
	}
	return out
}

// parsePage reads the page number after prefix; malformed input is page 0.
func parsePage(data, prefix string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func esc(s string) string {
	return html.EscapeString(s)
}

func accountLine(n int, acc *entities.Account) string {
	return fmt.Sprintf("%d. %s %s (<code>%s</code>)",
		n, acc.StatusIcon(), esc(acc.DisplayName()), utils.MaskPhoneNumber(acc.PhoneNumber))
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}

// summaryText renders the end-of-task message shared by every bulk command.
func summaryText(title string, sum bulk.Summary) string {
	status := "✅ <b>" + title + " Completed</b>"
	if sum.State == bulk.StateCancelled {
		status = "⏹ <b>" + title + " Stopped</b>"
	}
	return fmt.Sprintf("%s\n\n📊 Results:\n• Successful: %d\n• Failed: %d\n• Total attempts: %d\n• Duration: %s",
		status, sum.Successful, sum.Failed, sum.Attempted, formatDuration(sum.Duration))
}

// parseID reads a numeric Telegram ID.
func parseID(text, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || id == 0 {
		return 0, pkgerrors.NewValidationErrorf("Please send a valid numeric %s", what)
	}
	return id, nil
}

// parseChannel takes the chat of a forwarded channel post or a numeric ID.
func parseChannel(in dialog.Input) (int64, error) {
	if in.ForwardedChatID != 0 {
		return in.ForwardedChatID, nil
	}
	return parseID(in.Text, "channel ID, e.g. -1001234567890, or forward a post from the channel")
}
