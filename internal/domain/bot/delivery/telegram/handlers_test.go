package telegram

import (
	"testing"

	"github.com/go-telegram/bot/models"

	"github.com/Devensh22345/account-manage/internal/domain/dialog"
)

func TestMarkup(t *testing.T) {
	if got := Markup(nil); got != nil {
		t.Errorf("Markup(nil) = %#v, want nil", got)
	}

	got := Markup([][]dialog.Button{
		{{Text: "A", Data: "a"}, {Text: "B", Data: "b"}},
		{{Text: "C", Data: "c"}},
	})
	kb, ok := got.(*models.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("Markup returned %T", got)
	}
	if len(kb.InlineKeyboard) != 2 || len(kb.InlineKeyboard[0]) != 2 {
		t.Fatalf("keyboard shape = %v", kb.InlineKeyboard)
	}
	if b := kb.InlineKeyboard[1][0]; b.Text != "C" || b.CallbackData != "c" {
		t.Errorf("button = %+v", b)
	}
}

func TestInputFromMessage(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		in, ok := InputFromMessage(&models.Message{Text: "  @channel  "})
		if !ok || in.Text != "@channel" || in.Attachment != nil {
			t.Errorf("got %+v, %v", in, ok)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, ok := InputFromMessage(&models.Message{}); ok {
			t.Error("empty message produced input")
		}
	})

	t.Run("largest photo with caption", func(t *testing.T) {
		in, ok := InputFromMessage(&models.Message{
			Caption: "hello",
			Photo:   []models.PhotoSize{{FileID: "small"}, {FileID: "large"}},
		})
		if !ok || in.Attachment == nil {
			t.Fatalf("got %+v, %v", in, ok)
		}
		if in.Attachment.Kind != "photo" || in.Attachment.FileID != "large" {
			t.Errorf("attachment = %+v", in.Attachment)
		}
		if in.Text != "hello" || in.Attachment.Caption != "hello" {
			t.Errorf("caption not carried: %+v", in)
		}
	})

	t.Run("document", func(t *testing.T) {
		in, _ := InputFromMessage(&models.Message{
			Document: &models.Document{FileID: "doc", FileName: "a.pdf", MimeType: "application/pdf"},
		})
		if a := in.Attachment; a == nil || a.Kind != "document" || a.FileName != "a.pdf" || a.MIMEType != "application/pdf" {
			t.Errorf("attachment = %+v", in.Attachment)
		}
	})

	t.Run("animation wins over document", func(t *testing.T) {
		in, _ := InputFromMessage(&models.Message{
			Animation: &models.Animation{FileID: "gif"},
			Document:  &models.Document{FileID: "doc"},
		})
		if a := in.Attachment; a == nil || a.Kind != "animation" || a.FileID != "gif" {
			t.Errorf("attachment = %+v", in.Attachment)
		}
	})

	t.Run("forwarded channel post", func(t *testing.T) {
		in, ok := InputFromMessage(&models.Message{
			ForwardOrigin: &models.MessageOrigin{
				Type:                 models.MessageOriginTypeChannel,
				MessageOriginChannel: &models.MessageOriginChannel{Chat: models.Chat{ID: -1001234}},
			},
		})
		if !ok || in.ForwardedChatID != -1001234 {
			t.Errorf("got %+v, %v", in, ok)
		}
	})
}

func TestMatchCommand(t *testing.T) {
	match := MatchCommand("login")
	tests := []struct {
		text string
		want bool
	}{
		{"/login", true},
		{"/login@AccountBot", true},
		{"/login now", true},
		{" /login@AccountBot now ", true},
		{"/loginx", false},
		{"/log", false},
		{"login", false},
		{"/", false},
	}
	for _, tt := range tests {
		got := match(&models.Update{Message: &models.Message{Text: tt.text}})
		if got != tt.want {
			t.Errorf("MatchCommand(login)(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}

	if match(&models.Update{}) {
		t.Error("update without message matched")
	}
}
