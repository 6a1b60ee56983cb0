package bulk

import "go.uber.org/fx"

// Module provides the task registry and executor
var Module = fx.Module("bulk",
	fx.Provide(NewRegistry),
	fx.Provide(NewExecutor),
)
