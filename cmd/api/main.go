package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"clubevantagens-backend/pkg/config"
	"clubevantagens-backend/pkg/db"
	"clubevantagens-backend/pkg/featureflags"
	"clubevantagens-backend/pkg/health"
	"clubevantagens-backend/pkg/httpapi"
	"clubevantagens-backend/pkg/logger"
	"clubevantagens-backend/pkg/middleware"
	"clubevantagens-backend/pkg/profiling"
	"clubevantagens-backend/pkg/redis"
	"clubevantagens-backend/pkg/sequence"
	"clubevantagens-backend/pkg/server"
	"clubevantagens-backend/pkg/task"
	"clubevantagens-backend/services/benefit"
	"clubevantagens-backend/services/billing"
	"clubevantagens-backend/services/expiration"
	"clubevantagens-backend/services/notification"
	"clubevantagens-backend/services/partner"
	"clubevantagens-backend/services/plan"
	"clubevantagens-backend/services/redemption"
	"clubevantagens-backend/services/subscriber"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		profiling.Module,
		db.Module,
		redis.Module,
		sequence.Module,
		task.Client,
		featureflags.Module,
		middleware.AuthzModule,
		fx.Provide(provideSnowflakeNode),
		fx.Invoke(migrate, db.Otel, db.Metric),
		httpapi.Module,
		health.Module,
		subscriber.Module,
		partner.Module,
		plan.Module,
		benefit.Module,
		redemption.Module,
		notification.Module,
		billing.Module,
		expiration.Module,
		server.ProvideHTTPServer,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&benefit.Benefit{},
		&plan.Plan{},
		&partner.Partner{},
		&subscriber.Subscriber{},
		&redemption.Transaction{},
		&redemption.CashbackBalance{},
		&notification.WhatsAppInstance{},
		&notification.PushDevice{},
	)
}
