package notification

import (
	"clubevantagens-backend/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(
		NewEmailSender,
		NewWhatsAppSender,
		NewPushSender,
		NewFanout,
		httpapi.AsRoute(NewHandler),
	),
)
