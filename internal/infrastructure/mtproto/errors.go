package mtproto

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tgerr"

	"github.com/Devensh22345/account-manage/internal/domain/remote"
)

var errorKinds = map[string]remote.Kind{
	"USERNAME_INVALID":       remote.KindInvalidTarget,
	"USERNAME_NOT_OCCUPIED":  remote.KindInvalidTarget,
	"INVITE_HASH_INVALID":    remote.KindInvalidTarget,
	"INVITE_HASH_EXPIRED":    remote.KindInvalidTarget,
	"INVITE_HASH_EMPTY":      remote.KindInvalidTarget,
	"INVITE_SLUG_EMPTY":      remote.KindInvalidTarget,
	"INVITE_SLUG_EXPIRED":    remote.KindInvalidTarget,
	"CHANNEL_PRIVATE":        remote.KindInvalidTarget,
	"CHANNEL_INVALID":        remote.KindInvalidTarget,
	"CHAT_INVALID":           remote.KindInvalidTarget,
	"CHAT_WRITE_FORBIDDEN":   remote.KindInvalidTarget,
	"PEER_ID_INVALID":        remote.KindInvalidTarget,
	"MSG_ID_INVALID":         remote.KindInvalidTarget,
	"USER_BANNED_IN_CHANNEL": remote.KindInvalidTarget,
	"USER_NOT_PARTICIPANT":   remote.KindInvalidTarget,
	"USER_IS_BLOCKED":        remote.KindInvalidTarget,
	"YOU_BLOCKED_USER":       remote.KindInvalidTarget,
	"INPUT_USER_DEACTIVATED": remote.KindInvalidTarget,

	// A pending join request counts as membership.
	"USER_ALREADY_PARTICIPANT": remote.KindAlreadyMember,
	"INVITE_REQUEST_SENT":      remote.KindAlreadyMember,

	"AUTH_KEY_UNREGISTERED": remote.KindUnauthorized,
	"AUTH_KEY_INVALID":      remote.KindUnauthorized,
	"AUTH_KEY_DUPLICATED":   remote.KindUnauthorized,
	"SESSION_REVOKED":       remote.KindUnauthorized,
	"SESSION_EXPIRED":       remote.KindUnauthorized,
	"USER_DEACTIVATED":      remote.KindUnauthorized,
	"USER_DEACTIVATED_BAN":  remote.KindUnauthorized,

	"PHONE_NUMBER_INVALID":    remote.KindPhoneInvalid,
	"PHONE_NUMBER_BANNED":     remote.KindPhoneInvalid,
	"PHONE_NUMBER_UNOCCUPIED": remote.KindPhoneInvalid,
	"PHONE_CODE_INVALID":      remote.KindCodeInvalid,
	"PHONE_CODE_EMPTY":        remote.KindCodeInvalid,
	"PHONE_CODE_EXPIRED":      remote.KindCodeExpired,
	"SESSION_PASSWORD_NEEDED": remote.KindPasswordNeeded,
	"PASSWORD_HASH_INVALID":   remote.KindPasswordInvalid,
}

// classify converts gotd and transport errors into *remote.Error.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var tagged *remote.Error
	if errors.As(err, &tagged) {
		return err
	}

	if wait, ok := tgerr.AsFloodWait(err); ok {
		return remote.RateLimited(wait, err)
	}

	var rpcErr *tgerr.Error
	if errors.As(err, &rpcErr) {
		if rpcErr.Code == 420 || strings.HasSuffix(rpcErr.Type, "_WAIT") {
			return remote.RateLimited(time.Duration(rpcErr.Argument)*time.Second, err)
		}
		if kind, ok := errorKinds[rpcErr.Type]; ok {
			return remote.NewError(kind, rpcErr.Type, err)
		}
		if rpcErr.Code >= 500 {
			return remote.NewError(remote.KindTransient, rpcErr.Type, err)
		}
		return remote.NewError(remote.KindUnknown, rpcErr.Type, err)
	}

	switch {
	case errors.Is(err, auth.ErrPasswordAuthNeeded):
		return remote.NewError(remote.KindPasswordNeeded, "", err)
	case errors.Is(err, auth.ErrPasswordInvalid):
		return remote.NewError(remote.KindPasswordInvalid, "", err)
	case errors.Is(err, context.DeadlineExceeded):
		return remote.NewError(remote.KindTransient, "timeout", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return remote.NewError(remote.KindTransient, "network", err)
	}

	return remote.NewError(remote.KindUnknown, "", err)
}
