package mtproto

import (
	"context"
	"errors"
	"fmt"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"

	"github.com/Devensh22345/account-manage/internal/domain/remote"
)

type loginSession struct {
	client  *telegram.Client
	storage *MemorySessionStorage
	cancel  context.CancelFunc
	runDone chan struct{}
	logger  zerolog.Logger
}

func (l *loginSession) SendCode(ctx context.Context, phone string) (string, error) {
	sent, err := l.client.Auth().SendCode(ctx, phone, auth.SendCodeOptions{})
	if err != nil {
		return "", classify(err)
	}

	switch s := sent.(type) {
	case *tg.AuthSentCode:
		return s.PhoneCodeHash, nil
	default:
		return "", remote.NewError(remote.KindUnknown, fmt.Sprintf("unexpected sent code type %T", sent), nil)
	}
}

func (l *loginSession) SignIn(ctx context.Context, phone, code, codeHash string) error {
	_, err := l.client.Auth().SignIn(ctx, phone, code, codeHash)
	if errors.Is(err, auth.ErrPasswordAuthNeeded) {
		return remote.NewError(remote.KindPasswordNeeded, "", err)
	}
	return classify(err)
}

func (l *loginSession) Password(ctx context.Context, password string) error {
	_, err := l.client.Auth().Password(ctx, password)
	return classify(err)
}

func (l *loginSession) Export(ctx context.Context) (string, *remote.Profile, error) {
	self, err := l.client.Self(ctx)
	if err != nil {
		return "", nil, classify(err)
	}

	token, err := l.storage.Token()
	if err != nil {
		return "", nil, fmt.Errorf("export session: %w", err)
	}
	return token, profileOf(self), nil
}

// Release stops the held connection and waits for the run loop to exit.
func (l *loginSession) Release(ctx context.Context) error {
	l.cancel()
	select {
	case <-l.runDone:
		return nil
	case <-ctx.Done():
		l.logger.Warn().Msg("login connection did not stop in time")
		return ctx.Err()
	}
}

func profileOf(u *tg.User) *remote.Profile {
	return &remote.Profile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Phone:     u.Phone,
	}
}
