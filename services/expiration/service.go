package expiration

import (
	"context"
	"fmt"
	"time"

	"clubevantagens-backend/pkg/config"
	"clubevantagens-backend/pkg/db/option"
	"clubevantagens-backend/pkg/repository"
	"clubevantagens-backend/services/notification"
	"clubevantagens-backend/services/subscriber"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	cfg    *config.Config
	fanout *notification.Fanout

	subscribers repository.Repository[subscriber.Subscriber]
}

type ServiceParams struct {
	fx.In
	Config *config.Config
	DB     *gorm.DB
	Fanout *notification.Fanout
}

func NewService(p ServiceParams) *Service {
	return &Service{
		cfg:         p.Config,
		fanout:      p.Fanout,
		subscribers: repository.ProvideStore[subscriber.Subscriber](p.DB),
	}
}

// RunOptions narrows a run to specific offsets or channels; zero values fall
// back to the configured defaults.
type RunOptions struct {
	DayOffsets []int    `json:"dayOffsets"`
	Channels   []string `json:"channels"`
}

type SubscriberResult struct {
	SubscriberID string                       `json:"subscriberId"`
	Channels     []notification.ChannelResult `json:"channels"`
}

type OffsetSummary struct {
	DaysAhead   int                `json:"daysAhead"`
	Subscribers []SubscriberResult `json:"subscribers"`
}

type RunSummary struct {
	RanAt   time.Time       `json:"ranAt"`
	Scanned int             `json:"scanned"`
	Offsets []OffsetSummary `json:"offsets"`
}

// Run scans for active subscriptions expiring at each requested day offset
// and fans out a reminder per subscriber. Every offset targets exactly one
// calendar day, so a subscriber is warned once per milestone, not once per
// day in between.
func (s *Service) Run(ctx context.Context, now time.Time, opts RunOptions) (*RunSummary, error) {
	offsets := opts.DayOffsets
	if len(offsets) == 0 {
		offsets = s.cfg.Notifications.DayOffsets
	}

	fanout := s.fanout
	if len(opts.Channels) > 0 {
		fanout = fanout.Restrict(opts.Channels)
	}

	summary := &RunSummary{RanAt: now}

	for _, offset := range offsets {
		expiring, err := s.expiringAt(ctx, now, offset)
		if err != nil {
			return nil, err
		}

		offsetSummary := OffsetSummary{DaysAhead: offset}
		for _, sub := range expiring {
			results := fanout.Notify(ctx, sub, s.reminderMessage(sub, offset))
			offsetSummary.Subscribers = append(offsetSummary.Subscribers, SubscriberResult{
				SubscriberID: sub.ID,
				Channels:     results,
			})
		}

		summary.Scanned += len(expiring)
		summary.Offsets = append(summary.Offsets, offsetSummary)

		zap.L().Info("[ExpirationScan] offset processed",
			zap.Int("days_ahead", offset),
			zap.Int("expiring", len(expiring)))
	}

	return summary, nil
}

// expiringAt selects ACTIVE subscribers whose plan ends within the single
// calendar day exactly offset days from now.
func (s *Service) expiringAt(ctx context.Context, now time.Time, offset int) ([]*subscriber.Subscriber, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, offset)
	dayEnd := dayStart.AddDate(0, 0, 1)

	return s.subscribers.Find(ctx,
		&subscriber.Subscriber{SubscriptionStatus: subscriber.StatusActive},
		option.ApplyOperator(option.Condition{Field: "plan_end_date", Operator: option.GTE, Value: dayStart}),
		option.ApplyOperator(option.Condition{Field: "plan_end_date", Operator: option.LT, Value: dayEnd}),
	)
}

func (s *Service) reminderMessage(sub *subscriber.Subscriber, offset int) notification.Message {
	var subject string
	switch offset {
	case 0:
		subject = "Sua assinatura vence hoje"
	case 1:
		subject = "Sua assinatura vence amanhã"
	default:
		subject = fmt.Sprintf("Sua assinatura vence em %d dias", offset)
	}

	body := fmt.Sprintf(
		"Olá %s, sua assinatura do clube de vantagens vence em %s. Renove para não perder seus benefícios.",
		sub.Name, sub.PlanEndDate.Format("02/01/2006"))

	return notification.Message{Subject: subject, Body: body}
}
