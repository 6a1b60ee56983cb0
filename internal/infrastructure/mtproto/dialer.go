package mtproto

import (
	"context"
	"fmt"
	"time"

	"github.com/gotd/contrib/bg"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/uploader"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Devensh22345/account-manage/internal/domain/remote"
)

// Dialer implements remote.Dialer on top of gotd.
type Dialer struct {
	logger zerolog.Logger
}

func NewDialer(logger zerolog.Logger) *Dialer {
	return &Dialer{
		logger: logger.With().Str("component", "mtproto_dialer").Logger(),
	}
}

// Dial restores a session from its token and verifies it is still authorised.
func (d *Dialer) Dial(ctx context.Context, creds remote.Credentials) (remote.Session, error) {
	data, err := DecodeToken(creds.SessionToken)
	if err != nil {
		return nil, remote.NewError(remote.KindUnauthorized, "bad session token", err)
	}

	client := telegram.NewClient(creds.APIID, creds.APIHash, telegram.Options{
		SessionStorage: NewMemorySessionStorage(data),
	})

	stop, err := bg.Connect(client, bg.WithContext(context.WithoutCancel(ctx)))
	if err != nil {
		return nil, classify(fmt.Errorf("connect: %w", err))
	}

	status, err := client.Auth().Status(ctx)
	if err != nil {
		_ = stop()
		return nil, classify(err)
	}
	if !status.Authorized {
		_ = stop()
		return nil, remote.NewError(remote.KindUnauthorized, "session is not authorised", nil)
	}

	api := client.API()
	return &remoteSession{
		client:  client,
		api:     api,
		sender:  message.NewSender(api).WithUploader(uploader.NewUploader(api)),
		limiter: rate.NewLimiter(rate.Every(time.Second), 10),
		stop:    stop,
		logger:  d.logger,
	}, nil
}

// BeginLogin starts an unauthorised client whose connection stays open until
// the login session is exported or released.
func (d *Dialer) BeginLogin(ctx context.Context, apiID int, apiHash string) (remote.LoginSession, error) {
	storage := NewMemorySessionStorage(nil)
	client := telegram.NewClient(apiID, apiHash, telegram.Options{
		SessionStorage: storage,
	})

	runCtx, cancel := context.WithCancel(context.Background())
	ls := &loginSession{
		client:  client,
		storage: storage,
		cancel:  cancel,
		runDone: make(chan struct{}),
		logger:  d.logger,
	}

	readyChan := make(chan struct{})
	errChan := make(chan error, 1)

	go func() {
		defer close(ls.runDone)
		err := client.Run(runCtx, func(ctx context.Context) error {
			close(readyChan)
			<-ctx.Done()
			return ctx.Err()
		})
		select {
		case errChan <- err:
		default:
		}
	}()

	select {
	case <-readyChan:
		return ls, nil
	case err := <-errChan:
		cancel()
		if err == nil {
			err = fmt.Errorf("client stopped before ready")
		}
		return nil, classify(err)
	case <-ctx.Done():
		cancel()
		<-ls.runDone
		return nil, classify(ctx.Err())
	}
}
