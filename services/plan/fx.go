package plan

import (
	"clubevantagens-backend/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("plan.service",
	fx.Provide(
		NewService,
		httpapi.AsRoute(NewHandler),
	),
)
