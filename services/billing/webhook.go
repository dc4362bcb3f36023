package billing

import (
	"context"
	"time"

	"clubevantagens-backend/pkg/errutil"
	"clubevantagens-backend/services/plan"
	"clubevantagens-backend/services/subscriber"

	"go.uber.org/zap"
)

const (
	EventPaymentConfirmed     = "PAYMENT_CONFIRMED"
	EventPaymentReceived      = "PAYMENT_RECEIVED"
	EventPaymentOverdue       = "PAYMENT_OVERDUE"
	EventSubscriptionCanceled = "SUBSCRIPTION_CANCELED"
)

type WebhookEvent struct {
	Event   string `json:"event"`
	Payment struct {
		ID                string  `json:"id"`
		Status            string  `json:"status"`
		Value             float64 `json:"value"`
		ExternalReference string  `json:"externalReference"`
	} `json:"payment"`
}

// HandleWebhook applies a gateway event to the subscription lifecycle.
// Unknown events are acknowledged and ignored so the gateway does not retry
// event types we never consume.
func (s *Service) HandleWebhook(ctx context.Context, event WebhookEvent) error {
	switch event.Event {
	case EventPaymentConfirmed, EventPaymentReceived:
		return s.activate(ctx, event.Payment.ExternalReference)
	case EventPaymentOverdue:
		return s.transition(ctx, event.Payment.ExternalReference, subscriber.StatusExpired)
	case EventSubscriptionCanceled:
		return s.transition(ctx, event.Payment.ExternalReference, subscriber.StatusCanceled)
	default:
		zap.L().Debug("[Billing] ignoring webhook event", zap.String("event", event.Event))
		return nil
	}
}

// activate flips the subscription to ACTIVE and stamps the paid period from
// the plan duration.
func (s *Service) activate(ctx context.Context, subscriberID string) error {
	sub, err := s.lookup(ctx, subscriberID)
	if err != nil {
		return err
	}

	if sub.PlanID == nil {
		return errutil.UnprocessableEntity("subscriber has no plan to activate", nil)
	}

	pl, err := s.plans.FindOne(ctx, &plan.Plan{ID: *sub.PlanID})
	if err != nil {
		return err
	}
	if pl == nil {
		return errutil.UnprocessableEntity("subscriber plan no longer exists", nil)
	}

	now := time.Now()
	endDate := now.AddDate(0, 0, pl.DurationDays)

	if err := s.subscribers.Update(ctx, sub.ID, map[string]any{
		"subscription_status": subscriber.StatusActive,
		"plan_start_date":     now,
		"plan_end_date":       endDate,
	}); err != nil {
		return err
	}

	zap.L().Info("[Billing] subscription activated",
		zap.String("subscriber_id", sub.ID),
		zap.Time("plan_end_date", endDate))
	return nil
}

func (s *Service) transition(ctx context.Context, subscriberID string, status subscriber.SubscriptionStatus) error {
	sub, err := s.lookup(ctx, subscriberID)
	if err != nil {
		return err
	}

	if err := s.subscribers.Update(ctx, sub.ID, map[string]any{
		"subscription_status": status,
	}); err != nil {
		return err
	}

	zap.L().Info("[Billing] subscription transitioned",
		zap.String("subscriber_id", sub.ID),
		zap.String("status", string(status)))
	return nil
}

func (s *Service) lookup(ctx context.Context, subscriberID string) (*subscriber.Subscriber, error) {
	if subscriberID == "" {
		return nil, errutil.BadRequest("webhook event has no external reference", nil)
	}

	sub, err := s.subscribers.FindOne(ctx, &subscriber.Subscriber{ID: subscriberID})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errutil.NotFound("subscriber not found for webhook event", nil)
	}
	return sub, nil
}
