package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	MaxMessageLength = 4096
	RequestTimeout   = 30 * time.Second
	DownloadTimeout  = 120 * time.Second
	MaxDownloadSize  = 50 * 1024 * 1024
)

// Messenger sends bot messages and fetches uploaded files.
type Messenger struct {
	bot    *tgbot.Bot
	logger zerolog.Logger
}

func NewMessenger(b *Bot, logger zerolog.Logger) *Messenger {
	return &Messenger{
		bot:    b.Raw(),
		logger: logger.With().Str("component", "telegram_messenger").Logger(),
	}
}

// Send delivers HTML text, splitting it at line boundaries when it exceeds
// the message limit. The markup is attached to the last part only.
func (m *Messenger) Send(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) error {
	if text == "" {
		return fmt.Errorf("message text cannot be empty")
	}

	parts := SplitMessage(text)
	for i, part := range parts {
		var rm models.ReplyMarkup
		if i == len(parts)-1 {
			rm = markup
		}
		if err := m.sendSingle(ctx, chatID, part, rm); err != nil {
			return err
		}
	}
	return nil
}

func (m *Messenger) sendSingle(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) error {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	disabled := true
	_, err := m.bot.SendMessage(msgCtx, &tgbot.SendMessageParams{
		ChatID:             chatID,
		Text:               text,
		ParseMode:          models.ParseModeHTML,
		ReplyMarkup:        markup,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: &disabled},
	})
	if err != nil {
		return m.handleSendError(chatID, err)
	}
	return nil
}

// Notify sends text without a keyboard.
func (m *Messenger) Notify(ctx context.Context, chatID int64, text string) error {
	return m.Send(ctx, chatID, text, nil)
}

// Publish delivers a log channel post directly.
func (m *Messenger) Publish(ctx context.Context, chatID int64, kind, text string) error {
	m.logger.Debug().Int64("chat_id", chatID).Str("kind", kind).Msg("Posting to log channel")
	return m.Send(ctx, chatID, text, nil)
}

// AnswerCallback acknowledges a button press.
func (m *Messenger) AnswerCallback(ctx context.Context, callbackID, text string) {
	reqCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	if _, err := m.bot.AnswerCallbackQuery(reqCtx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	}); err != nil {
		m.logger.Debug().Err(err).Msg("Failed to answer callback query")
	}
}

// Download fetches the content of an uploaded file.
func (m *Messenger) Download(ctx context.Context, fileID string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	file, err := m.bot.GetFile(reqCtx, &tgbot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	if file.FileSize > MaxDownloadSize {
		return nil, fmt.Errorf("file is too large: %d bytes", file.FileSize)
	}

	status, body, err := fasthttp.GetTimeout(nil, m.bot.FileDownloadLink(file), DownloadTimeout)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	if status != fasthttp.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %d", status)
	}
	return body, nil
}

// IsBotAdmin reports whether the bot administers chatID.
func (m *Messenger) IsBotAdmin(ctx context.Context, chatID int64) (bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	me, err := m.bot.GetMe(reqCtx)
	if err != nil {
		return false, fmt.Errorf("get me: %w", err)
	}

	member, err := m.bot.GetChatMember(reqCtx, &tgbot.GetChatMemberParams{
		ChatID: chatID,
		UserID: me.ID,
	})
	if err != nil {
		return false, m.handleSendError(chatID, err)
	}

	switch member.Type {
	case models.ChatMemberTypeAdministrator, models.ChatMemberTypeOwner:
		return true, nil
	default:
		return false, nil
	}
}

func (m *Messenger) handleSendError(chatID int64, err error) error {
	errorMsg := err.Error()

	switch {
	case strings.Contains(errorMsg, "Forbidden"), strings.Contains(errorMsg, "forbidden"):
		m.logger.Warn().Int64("chat_id", chatID).Msg("Bot was blocked or removed from chat")
		return fmt.Errorf("bot was blocked or removed from chat: %w", err)

	case strings.Contains(errorMsg, "chat not found"):
		m.logger.Warn().Int64("chat_id", chatID).Msg("Chat not found")
		return fmt.Errorf("chat not found: %w", err)

	case strings.Contains(errorMsg, "Too Many Requests"), strings.Contains(errorMsg, "too many requests"):
		m.logger.Warn().Int64("chat_id", chatID).Msg("Rate limit exceeded")
		return fmt.Errorf("rate limit exceeded: %w", err)

	default:
		m.logger.Error().Int64("chat_id", chatID).Err(err).Msg("Unknown error while sending message")
		return fmt.Errorf("failed to send message: %w", err)
	}
}

// SplitMessage cuts text into parts no longer than MaxMessageLength,
// preferring line and then word boundaries.
func SplitMessage(text string) []string {
	if len(text) <= MaxMessageLength {
		return []string{text}
	}

	var parts []string
	var current strings.Builder

	for _, line := range strings.Split(text, "\n") {
		if current.Len()+len(line)+1 > MaxMessageLength {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			if len(line) > MaxMessageLength {
				parts = append(parts, splitLongLine(line)...)
				continue
			}
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func splitLongLine(line string) []string {
	var parts []string
	start := 0

	for start < len(line) {
		end := start + MaxMessageLength
		if end > len(line) {
			end = len(line)
		}
		if end < len(line) {
			if lastSpace := strings.LastIndex(line[start:end], " "); lastSpace > 0 {
				end = start + lastSpace
			}
		}

		parts = append(parts, line[start:end])
		start = end
		for start < len(line) && line[start] == ' ' {
			start++
		}
	}
	return parts
}
