// Package telegram contains Telegram delivery handlers
package telegram

import (
	"context"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/Devensh22345/account-manage/internal/domain/bot/consts"
	"github.com/Devensh22345/account-manage/internal/domain/bot/dto"
	"github.com/Devensh22345/account-manage/internal/domain/bot/usecase/business"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
	pkgerrors "github.com/Devensh22345/account-manage/pkg/errors"
)

const unknownInputText = "I didn't understand that command. Use /help to see available commands."

// Sender is the outbound half of the chat platform.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) error
	AnswerCallback(ctx context.Context, callbackID, text string)
}

// CommandObserver counts handled commands.
type CommandObserver interface {
	RecordCommand(command string)
	RecordCommandError(command, errorType string)
}

// CommandFunc is the use case side of one command or menu.
type CommandFunc func(ctx context.Context, req *dto.Request) (dialog.Reply, error)

// Handlers adapts bot updates to use case calls
type Handlers struct {
	uc       *business.UseCase
	sender   Sender
	mapper   *pkgerrors.Mapper
	observer CommandObserver
	logger   zerolog.Logger
}

// NewHandlers creates new Telegram handlers
func NewHandlers(uc *business.UseCase, sender Sender, observer CommandObserver, logger zerolog.Logger) *Handlers {
	log := logger.With().Str("component", "telegram_handlers").Logger()
	return &Handlers{
		uc:       uc,
		sender:   sender,
		mapper:   pkgerrors.NewMapper(log),
		observer: observer,
		logger:   log,
	}
}

// Command wraps fn as a handler for a slash command.
func (h *Handlers) Command(name string, fn CommandFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
		msg := update.Message
		if msg == nil || msg.From == nil {
			return
		}

		req := &dto.Request{
			UserID:    msg.From.ID,
			Username:  msg.From.Username,
			FirstName: msg.From.FirstName,
		}
		h.logCommand(req.UserID, name)

		reply, err := fn(ctx, req)
		h.respond(ctx, msg.Chat.ID, name, reply, err)
	}
}

// Callback wraps fn as a handler for a menu button prefix.
func (h *Handlers) Callback(name string, fn CommandFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
		cq := update.CallbackQuery
		if cq == nil {
			return
		}
		h.sender.AnswerCallback(ctx, cq.ID, "")

		req := &dto.Request{
			UserID:    cq.From.ID,
			Username:  cq.From.Username,
			FirstName: cq.From.FirstName,
			Data:      cq.Data,
		}
		h.logCommand(req.UserID, name)

		reply, err := fn(ctx, req)
		h.respond(ctx, cq.From.ID, name, reply, err)
	}
}

// HandleDialogChoice feeds a dialog button press to the active dialog.
func (h *Handlers) HandleDialogChoice(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	h.sender.AnswerCallback(ctx, cq.ID, "")

	in := dialog.Input{Choice: strings.TrimPrefix(cq.Data, consts.PrefixDialog)}
	reply, handled := h.uc.HandleInput(ctx, cq.From.ID, in)
	if !handled {
		reply = dialog.Reply{Text: "⌛ This menu has expired. Please start again."}
	}
	h.respond(ctx, cq.From.ID, "dialog", reply, nil)
}

// HandleNoop acknowledges page indicators.
func (h *Handlers) HandleNoop(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		h.sender.AnswerCallback(ctx, update.CallbackQuery.ID, "")
	}
}

// HandleDefault routes free text, media and forwards to the active dialog.
func (h *Handlers) HandleDefault(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	in, ok := InputFromMessage(msg)
	if !ok {
		return
	}

	reply, handled := h.uc.HandleInput(ctx, msg.From.ID, in)
	if !handled {
		reply = dialog.Reply{Text: unknownInputText}
	}
	h.respond(ctx, msg.Chat.ID, "input", reply, nil)
}

func (h *Handlers) respond(ctx context.Context, chatID int64, name string, reply dialog.Reply, err error) {
	h.observer.RecordCommand(name)
	if err != nil {
		h.observer.RecordCommandError(name, pkgerrors.Class(err))
		reply = dialog.Reply{Text: h.mapper.Reply(err)}
	}
	if reply.Text == "" {
		return
	}

	if sendErr := h.sender.Send(ctx, chatID, reply.Text, Markup(reply.Buttons)); sendErr != nil {
		h.logger.Warn().Err(sendErr).Int64("chat_id", chatID).Str("command", name).Msg("Failed to send reply")
	}
}

func (h *Handlers) logCommand(userID int64, command string) {
	h.logger.Debug().
		Int64("user_id", userID).
		Str("command", command).
		Msg("Processing command")
}

// Markup converts dialog buttons to an inline keyboard. It returns nil
// without buttons so no empty keyboard is attached.
func Markup(rows [][]dialog.Button) models.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	keyboard := make([][]models.InlineKeyboardButton, 0, len(rows))
	for _, r := range rows {
		line := make([]models.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			line = append(line, models.InlineKeyboardButton{Text: b.Text, CallbackData: b.Data})
		}
		keyboard = append(keyboard, line)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

// CommandName returns the command of a slash message without the bot
// mention and arguments, so "/login@SomeBot now" yields "login".
func CommandName(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name, _, _ := strings.Cut(text[1:], " ")
	name, _, _ = strings.Cut(name, "@")
	return name, name != ""
}

// MatchCommand matches messages invoking the named command.
func MatchCommand(name string) tgbot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		got, ok := CommandName(update.Message.Text)
		return ok && got == name
	}
}

// InputFromMessage extracts dialog input from a message. ok is false for
// messages carrying nothing a dialog can use.
func InputFromMessage(msg *models.Message) (dialog.Input, bool) {
	in := dialog.Input{Text: strings.TrimSpace(msg.Text)}

	if origin := msg.ForwardOrigin; origin != nil &&
		origin.Type == models.MessageOriginTypeChannel && origin.MessageOriginChannel != nil {
		in.ForwardedChatID = origin.MessageOriginChannel.Chat.ID
	}

	in.Attachment = attachmentOf(msg)
	if in.Attachment != nil && in.Text == "" {
		in.Text = strings.TrimSpace(msg.Caption)
	}

	ok := in.Text != "" || in.Attachment != nil || in.ForwardedChatID != 0
	return in, ok
}

func attachmentOf(msg *models.Message) *dialog.Attachment {
	switch {
	case len(msg.Photo) > 0:
		largest := msg.Photo[len(msg.Photo)-1]
		return &dialog.Attachment{Kind: "photo", FileID: largest.FileID, MIMEType: "image/jpeg", FileName: "photo.jpg", Caption: msg.Caption}
	case msg.Video != nil:
		return &dialog.Attachment{Kind: "video", FileID: msg.Video.FileID, FileName: msg.Video.FileName, MIMEType: msg.Video.MimeType, Caption: msg.Caption}
	case msg.Animation != nil:
		return &dialog.Attachment{Kind: "animation", FileID: msg.Animation.FileID, FileName: msg.Animation.FileName, MIMEType: msg.Animation.MimeType, Caption: msg.Caption}
	case msg.Document != nil:
		return &dialog.Attachment{Kind: "document", FileID: msg.Document.FileID, FileName: msg.Document.FileName, MIMEType: msg.Document.MimeType, Caption: msg.Caption}
	case msg.Audio != nil:
		return &dialog.Attachment{Kind: "audio", FileID: msg.Audio.FileID, FileName: msg.Audio.FileName, MIMEType: msg.Audio.MimeType, Caption: msg.Caption}
	case msg.Voice != nil:
		return &dialog.Attachment{Kind: "voice", FileID: msg.Voice.FileID, MIMEType: msg.Voice.MimeType, Caption: msg.Caption}
	}
	return nil
}
