// Package remotetest provides function-field fakes of the remote client
// contract for use in tests.
package remotetest

import (
	"context"
	"sync"

	"github.com/Devensh22345/account-manage/internal/domain/remote"
)

// Dialer is a remote.Dialer whose behaviour is set per test.
type Dialer struct {
	DialFunc       func(ctx context.Context, creds remote.Credentials) (remote.Session, error)
	BeginLoginFunc func(ctx context.Context, apiID int, apiHash string) (remote.LoginSession, error)

	mu    sync.Mutex
	Dials []remote.Credentials
}

func (d *Dialer) Dial(ctx context.Context, creds remote.Credentials) (remote.Session, error) {
	d.mu.Lock()
	d.Dials = append(d.Dials, creds)
	d.mu.Unlock()

	if d.DialFunc == nil {
		return &Session{}, nil
	}
	return d.DialFunc(ctx, creds)
}

func (d *Dialer) BeginLogin(ctx context.Context, apiID int, apiHash string) (remote.LoginSession, error) {
	if d.BeginLoginFunc == nil {
		return &LoginSession{}, nil
	}
	return d.BeginLoginFunc(ctx, apiID, apiHash)
}

// Session is a remote.Session. Nil funcs succeed.
type Session struct {
	SelfFunc            func(ctx context.Context) (*remote.Profile, error)
	JoinFunc            func(ctx context.Context, ref string) error
	LeaveFunc           func(ctx context.Context, ref string) error
	SendTextFunc        func(ctx context.Context, target, text string) error
	SendMediaFunc       func(ctx context.Context, target string, media *remote.Media) error
	ReportFunc          func(ctx context.Context, target, reason, comment string) error
	ServiceMessagesFunc func(ctx context.Context, limit int) ([]remote.ServiceMessage, error)

	mu     sync.Mutex
	Closed int
}

func (s *Session) Self(ctx context.Context) (*remote.Profile, error) {
	if s.SelfFunc == nil {
		return &remote.Profile{ID: 1}, nil
	}
	return s.SelfFunc(ctx)
}

func (s *Session) Join(ctx context.Context, ref string) error {
	if s.JoinFunc == nil {
		return nil
	}
	return s.JoinFunc(ctx, ref)
}

func (s *Session) Leave(ctx context.Context, ref string) error {
	if s.LeaveFunc == nil {
		return nil
	}
	return s.LeaveFunc(ctx, ref)
}

func (s *Session) SendText(ctx context.Context, target, text string) error {
	if s.SendTextFunc == nil {
		return nil
	}
	return s.SendTextFunc(ctx, target, text)
}

func (s *Session) SendMedia(ctx context.Context, target string, media *remote.Media) error {
	if s.SendMediaFunc == nil {
		return nil
	}
	return s.SendMediaFunc(ctx, target, media)
}

func (s *Session) Report(ctx context.Context, target, reason, comment string) error {
	if s.ReportFunc == nil {
		return nil
	}
	return s.ReportFunc(ctx, target, reason, comment)
}

func (s *Session) ServiceMessages(ctx context.Context, limit int) ([]remote.ServiceMessage, error) {
	if s.ServiceMessagesFunc == nil {
		return nil, nil
	}
	return s.ServiceMessagesFunc(ctx, limit)
}

func (s *Session) Close() error {
	s.mu.Lock()
	s.Closed++
	s.mu.Unlock()
	return nil
}

// LoginSession is a remote.LoginSession. Nil funcs succeed.
type LoginSession struct {
	SendCodeFunc func(ctx context.Context, phone string) (string, error)
	SignInFunc   func(ctx context.Context, phone, code, codeHash string) error
	PasswordFunc func(ctx context.Context, password string) error
	ExportFunc   func(ctx context.Context) (string, *remote.Profile, error)

	mu       sync.Mutex
	Released int
}

func (l *LoginSession) SendCode(ctx context.Context, phone string) (string, error) {
	if l.SendCodeFunc == nil {
		return "hash", nil
	}
	return l.SendCodeFunc(ctx, phone)
}

func (l *LoginSession) SignIn(ctx context.Context, phone, code, codeHash string) error {
	if l.SignInFunc == nil {
		return nil
	}
	return l.SignInFunc(ctx, phone, code, codeHash)
}

func (l *LoginSession) Password(ctx context.Context, password string) error {
	if l.PasswordFunc == nil {
		return nil
	}
	return l.PasswordFunc(ctx, password)
}

func (l *LoginSession) Export(ctx context.Context) (string, *remote.Profile, error) {
	if l.ExportFunc == nil {
		return "session-token", &remote.Profile{ID: 42, FirstName: "Test"}, nil
	}
	return l.ExportFunc(ctx)
}

func (l *LoginSession) Release(context.Context) error {
	l.mu.Lock()
	l.Released++
	l.mu.Unlock()
	return nil
}
