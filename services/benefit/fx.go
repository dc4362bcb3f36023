package benefit

import (
	"clubevantagens-backend/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("benefit.service",
	fx.Provide(
		NewService,
		httpapi.AsRoute(NewHandler),
	),
)
