package partner

import (
	"clubevantagens-backend/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("partner.service",
	fx.Provide(
		NewService,
		httpapi.AsRoute(NewHandler),
	),
)
