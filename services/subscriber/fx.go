package subscriber

import (
	"clubevantagens-backend/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("subscriber.service",
	fx.Provide(
		NewService,
		httpapi.AsRoute(NewHandler),
	),
)
