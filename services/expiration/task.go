package expiration

import (
	"context"
	"time"

	"clubevantagens-backend/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type TaskHandlerParams struct {
	fx.In
	Mux     *asynq.ServeMux
	Service *Service
}

func RegisterTaskHandler(p TaskHandlerParams) {
	p.Mux.HandleFunc(taskname.NotificationExpiryRun, func(ctx context.Context, t *asynq.Task) error {
		summary, err := p.Service.Run(ctx, time.Now(), RunOptions{})
		if err != nil {
			return err
		}

		zap.L().Info("[ExpirationScan] run finished",
			zap.Int("scanned", summary.Scanned),
			zap.Time("ran_at", summary.RanAt))
		return nil
	})
}
