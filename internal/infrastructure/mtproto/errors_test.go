package mtproto

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tgerr"

	"github.com/Devensh22345/account-manage/internal/domain/remote"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind remote.Kind
		wantWait time.Duration
	}{
		{name: "flood wait", err: tgerr.New(420, "FLOOD_WAIT_5"), wantKind: remote.KindRateLimited, wantWait: 5 * time.Second},
		{name: "wrapped flood wait", err: fmt.Errorf("join: %w", tgerr.New(420, "FLOOD_WAIT_30")), wantKind: remote.KindRateLimited, wantWait: 30 * time.Second},
		{name: "slow mode", err: tgerr.New(400, "SLOWMODE_WAIT_12"), wantKind: remote.KindRateLimited, wantWait: 12 * time.Second},
		{name: "already participant", err: tgerr.New(400, "USER_ALREADY_PARTICIPANT"), wantKind: remote.KindAlreadyMember},
		{name: "bad username", err: tgerr.New(400, "USERNAME_NOT_OCCUPIED"), wantKind: remote.KindInvalidTarget},
		{name: "expired invite", err: tgerr.New(400, "INVITE_HASH_EXPIRED"), wantKind: remote.KindInvalidTarget},
		{name: "revoked session", err: tgerr.New(401, "SESSION_REVOKED"), wantKind: remote.KindUnauthorized},
		{name: "bad code", err: tgerr.New(400, "PHONE_CODE_INVALID"), wantKind: remote.KindCodeInvalid},
		{name: "expired code", err: tgerr.New(400, "PHONE_CODE_EXPIRED"), wantKind: remote.KindCodeExpired},
		{name: "bad phone", err: tgerr.New(400, "PHONE_NUMBER_INVALID"), wantKind: remote.KindPhoneInvalid},
		{name: "password rpc", err: tgerr.New(401, "SESSION_PASSWORD_NEEDED"), wantKind: remote.KindPasswordNeeded},
		{name: "password sentinel", err: auth.ErrPasswordAuthNeeded, wantKind: remote.KindPasswordNeeded},
		{name: "server error", err: tgerr.New(500, "INTERNAL"), wantKind: remote.KindTransient},
		{name: "timeout", err: context.DeadlineExceeded, wantKind: remote.KindTransient},
		{name: "unknown rpc", err: tgerr.New(400, "SOMETHING_ODD"), wantKind: remote.KindUnknown},
		{name: "plain error", err: errors.New("boom"), wantKind: remote.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if kind := remote.KindOf(got); kind != tt.wantKind {
				t.Fatalf("kind = %s, want %s", kind, tt.wantKind)
			}
			if tt.wantKind == remote.KindRateLimited {
				wait, ok := remote.WaitOf(got)
				if !ok || wait != tt.wantWait {
					t.Errorf("wait = %v (%v), want %v", wait, ok, tt.wantWait)
				}
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("classified error does not wrap the cause")
			}
		})
	}
}

func TestClassifyNil(t *testing.T) {
	if err := classify(nil); err != nil {
		t.Fatalf("classify(nil) = %v", err)
	}
}

func TestClassifyKeepsTaggedErrors(t *testing.T) {
	tagged := remote.NewError(remote.KindInvalidTarget, "x", nil)
	if got := classify(tagged); got != error(tagged) {
		t.Fatalf("tagged error was rewrapped: %v", got)
	}
}
