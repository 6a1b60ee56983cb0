package remote

import (
	"errors"
	"fmt"
	"time"
)

// Kind tags a failure reported by the remote account API.
type Kind int

const (
	KindUnknown Kind = iota
	// KindRateLimited carries the server-mandated wait in Error.Wait.
	KindRateLimited
	KindInvalidTarget
	KindAlreadyMember
	KindTransient
	KindUnauthorized

	KindPhoneInvalid
	KindCodeInvalid
	KindCodeExpired
	KindPasswordNeeded
	KindPasswordInvalid
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindRateLimited:     "rate_limited",
	KindInvalidTarget:   "invalid_target",
	KindAlreadyMember:   "already_member",
	KindTransient:       "transient",
	KindUnauthorized:    "unauthorized",
	KindPhoneInvalid:    "phone_invalid",
	KindCodeInvalid:     "code_invalid",
	KindCodeExpired:     "code_expired",
	KindPasswordNeeded:  "password_needed",
	KindPasswordInvalid: "password_invalid",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error is the classified form of every remote failure.
type Error struct {
	Kind   Kind
	Wait   time.Duration
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindRateLimited:
		return fmt.Sprintf("rate limited: wait %s", e.Wait)
	case e.Detail != "":
		return e.Kind.String() + ": " + e.Detail
	case e.Err != nil:
		return e.Kind.String() + ": " + e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func RateLimited(wait time.Duration, cause error) *Error {
	return &Error{Kind: KindRateLimited, Wait: wait, Err: cause}
}

func NewError(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: cause}
}

// KindOf returns the tag of err, KindUnknown for untagged errors.
func KindOf(err error) Kind {
	var rErr *Error
	if errors.As(err, &rErr) {
		return rErr.Kind
	}
	return KindUnknown
}

// WaitOf returns the mandated wait for rate limited errors.
func WaitOf(err error) (time.Duration, bool) {
	var rErr *Error
	if errors.As(err, &rErr) && rErr.Kind == KindRateLimited {
		return rErr.Wait, true
	}
	return 0, false
}
