package expiration

import (
	"clubevantagens-backend/pkg/httpapi"

	"go.uber.org/fx"
)

// Module wires the scan service and its admin trigger into the API process.
var Module = fx.Module("expiration.service",
	fx.Provide(
		NewService,
		httpapi.AsRoute(NewHandler),
	),
)

// WorkerModule wires the asynq handler and the daily scheduler into the
// worker process.
var WorkerModule = fx.Module("expiration.worker",
	fx.Provide(
		NewService,
		NewScheduler,
	),
	fx.Invoke(
		RegisterTaskHandler,
		RegisterScheduler,
	),
)
