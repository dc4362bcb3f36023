package expiration

import (
	"context"
	"time"

	"clubevantagens-backend/pkg/config"
	"clubevantagens-backend/pkg/task"
	"clubevantagens-backend/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scheduler enqueues the daily expiration scan at the configured hour. The
// scan itself runs on the asynq worker, so a scheduler restart never loses an
// in-flight run.
type Scheduler struct {
	cfg      *config.Config
	enqueuer task.Enqueuer

	done chan struct{}
}

type SchedulerParams struct {
	fx.In
	Config   *config.Config
	Enqueuer task.Enqueuer
}

func NewScheduler(p SchedulerParams) *Scheduler {
	return &Scheduler{
		cfg:      p.Config,
		enqueuer: p.Enqueuer,
		done:     make(chan struct{}),
	}
}

func RegisterScheduler(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.loop()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(s.done)
			return nil
		},
	})
}

func (s *Scheduler) loop() {
	for {
		next := s.nextRunTime(time.Now())
		zap.L().Info("[ExpirationScan] next run scheduled", zap.Time("at", next))

		select {
		case <-time.After(time.Until(next)):
			if _, err := s.enqueuer.Enqueue(
				asynq.NewTask(taskname.NotificationExpiryRun, nil),
				asynq.Queue("default"),
			); err != nil {
				zap.L().Error("[ExpirationScan] failed to enqueue run", zap.Error(err))
			}
		case <-s.done:
			return
		}
	}
}

// nextRunTime returns today's run hour, or tomorrow's if it already passed.
func (s *Scheduler) nextRunTime(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.cfg.Notifications.RunHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
