package billing

import (
	"context"
	"encoding/json"

	"clubevantagens-backend/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

type TaskHandlerParams struct {
	fx.In
	Mux     *asynq.ServeMux
	Service *Service
}

// RegisterTaskHandler replays webhook events the API could not apply
// synchronously, with asynq's backoff between attempts.
func RegisterTaskHandler(p TaskHandlerParams) {
	p.Mux.HandleFunc(taskname.BillingWebhookReplay, func(ctx context.Context, t *asynq.Task) error {
		var event WebhookEvent
		if err := json.Unmarshal(t.Payload(), &event); err != nil {
			return err
		}
		return p.Service.HandleWebhook(ctx, event)
	})
}
