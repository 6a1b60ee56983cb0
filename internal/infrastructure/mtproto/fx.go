package mtproto

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Devensh22345/account-manage/internal/domain/remote"
)

// Module provides the remote.Dialer backed by MTProto.
var Module = fx.Module("mtproto",
	fx.Provide(func(logger zerolog.Logger) remote.Dialer {
		return NewDialer(logger)
	}),
)
