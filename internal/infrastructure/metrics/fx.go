package metrics

import (
	"go.uber.org/fx"

	accountbusiness "github.com/Devensh22345/account-manage/internal/domain/account/usecase/business"
	"github.com/Devensh22345/account-manage/internal/domain/bulk"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
)

// Module provides metrics and the observer views used by the domain
var Module = fx.Module("metrics",
	fx.Provide(
		GetDefaultMetrics,
		func(m *Metrics) dialog.Observer { return m },
		func(m *Metrics) bulk.Observer { return m },
		func(m *Metrics) accountbusiness.Observer { return m },
	),
)
