package telegram

import (
	"context"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

func TestRecoverMiddleware(t *testing.T) {
	b := &Bot{logger: zerolog.Nop()}

	ran := false
	handler := b.recoverMiddleware(func(context.Context, *tgbot.Bot, *models.Update) {
		ran = true
		var targets map[string]int
		targets["@x"]++
	})

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic escaped the middleware: %v", r)
		}
	}()
	handler(context.Background(), nil, &models.Update{
		ID:      9,
		Message: &models.Message{Chat: models.Chat{ID: 5}, Text: "/join"},
	})
	if !ran {
		t.Error("wrapped handler did not run")
	}
}

func TestUpdateChatID(t *testing.T) {
	tests := []struct {
		name   string
		update *models.Update
		want   int64
		ok     bool
	}{
		{"nil", nil, 0, false},
		{"message", &models.Update{Message: &models.Message{Chat: models.Chat{ID: 7}}}, 7, true},
		{"callback", &models.Update{CallbackQuery: &models.CallbackQuery{From: models.User{ID: 8}}}, 8, true},
		{"other", &models.Update{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := updateChatID(tt.update)
			if got != tt.want || ok != tt.ok {
				t.Errorf("updateChatID() = %d, %v; want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
