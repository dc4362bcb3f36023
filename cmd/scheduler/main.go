package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"clubevantagens-backend/pkg/config"
	"clubevantagens-backend/pkg/db"
	"clubevantagens-backend/pkg/featureflags"
	"clubevantagens-backend/pkg/logger"
	"clubevantagens-backend/pkg/profiling"
	"clubevantagens-backend/pkg/redis"
	"clubevantagens-backend/pkg/task"
	"clubevantagens-backend/services/billing"
	"clubevantagens-backend/services/expiration"
	"clubevantagens-backend/services/notification"
)

// The scheduler process runs the asynq worker plus the daily enqueue loop. It
// shares the database with the API but serves no HTTP traffic.
func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		profiling.Module,
		db.Module,
		redis.Module,
		task.Client,
		task.Server,
		featureflags.Module,
		fx.Provide(
			provideSnowflakeNode,
			notification.NewEmailSender,
			notification.NewWhatsAppSender,
			notification.NewPushSender,
			notification.NewFanout,
		),
		expiration.WorkerModule,
		billing.WorkerModule,
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
	return snowflake.NewNode(2)
}
