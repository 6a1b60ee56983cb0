package access

import (
	"go.uber.org/fx"

	"github.com/Devensh22345/account-manage/internal/domain/account/deps"
)

// Module provides the role gate
var Module = fx.Module("access",
	fx.Provide(
		func(users deps.UserRepository) UserFinder { return users },
		NewGate,
	),
)
