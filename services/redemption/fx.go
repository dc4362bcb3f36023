package redemption

import (
	"clubevantagens-backend/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("redemption.service",
	fx.Provide(
		NewService,
		httpapi.AsRoute(NewHandler),
	),
)
