package billing

import (
	"clubevantagens-backend/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(
		NewClient,
		NewService,
		httpapi.AsRoute(NewHandler),
	),
)

var WorkerModule = fx.Module("billing.worker",
	fx.Provide(
		NewClient,
		NewService,
	),
	fx.Invoke(RegisterTaskHandler),
)
