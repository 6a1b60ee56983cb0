package remote

import (
	"context"
	"time"
)

// Credentials identify one user account on the remote API.
type Credentials struct {
	APIID        int
	APIHash      string
	SessionToken string
}

// Profile is the self info of an authorised account.
type Profile struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	Phone     string
}

// MediaKind mirrors the payload types accepted by the send wizard.
type MediaKind string

const (
	MediaPhoto     MediaKind = "photo"
	MediaVideo     MediaKind = "video"
	MediaDocument  MediaKind = "document"
	MediaAudio     MediaKind = "audio"
	MediaVoice     MediaKind = "voice"
	MediaAnimation MediaKind = "animation"
)

type Media struct {
	Kind     MediaKind
	FileName string
	MIMEType string
	Data     []byte
	Caption  string
}

// ServiceMessage is a message from the platform's service notifications chat.
type ServiceMessage struct {
	ID   int
	Text string
	Date time.Time
}

// Dialer opens remote sessions.
type Dialer interface {
	// Dial restores an authorised session from a stored token.
	Dial(ctx context.Context, creds Credentials) (Session, error)
	// BeginLogin opens an unauthorised connection that is held across
	// dialog steps until it is exported or released.
	BeginLogin(ctx context.Context, apiID int, apiHash string) (LoginSession, error)
}

// Session is an authorised connection. Close must be called once.
type Session interface {
	Self(ctx context.Context) (*Profile, error)
	Join(ctx context.Context, ref string) error
	Leave(ctx context.Context, ref string) error
	SendText(ctx context.Context, target, text string) error
	SendMedia(ctx context.Context, target string, media *Media) error
	Report(ctx context.Context, target string, reason string, comment string) error
	ServiceMessages(ctx context.Context, limit int) ([]ServiceMessage, error)
	Close() error
}

// LoginSession drives phone code authorisation.
type LoginSession interface {
	SendCode(ctx context.Context, phone string) (codeHash string, err error)
	// SignIn returns an error of KindPasswordNeeded when two-step
	// verification is enabled on the account.
	SignIn(ctx context.Context, phone, code, codeHash string) error
	Password(ctx context.Context, password string) error
	// Export returns the portable session token and the self profile.
	Export(ctx context.Context) (string, *Profile, error)
	Release(ctx context.Context) error
}
