package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"clubevantagens-backend/pkg/config"
	"clubevantagens-backend/pkg/repository"
	"clubevantagens-backend/services/subscriber"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type PushSender struct {
	cfg *config.Config
	db  *gorm.DB

	devices repository.Repository[PushDevice]
}

type PushParams struct {
	fx.In
	Config *config.Config
	DB     *gorm.DB
}

func NewPushSender(p PushParams) *PushSender {
	return &PushSender{
		cfg:     p.Config,
		db:      p.DB,
		devices: repository.ProvideStore[PushDevice](p.DB),
	}
}

func (s *PushSender) Channel() string { return "push" }

func (s *PushSender) Send(ctx context.Context, sub *subscriber.Subscriber, msg Message) error {
	vapid := s.cfg.Notifications.VAPID
	if vapid.PublicKey == "" || vapid.PrivateKey == "" {
		return fmt.Errorf("push: no VAPID keys configured: %w", ErrChannelUnavailable)
	}

	devices, err := s.devices.Find(ctx, &PushDevice{SubscriberID: sub.ID})
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return fmt.Errorf("push: subscriber has no registered devices: %w", ErrChannelUnavailable)
	}

	payload, err := json.Marshal(map[string]string{
		"title": msg.Subject,
		"body":  msg.Body,
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, device := range devices {
		device := device
		g.Go(func() error {
			return s.sendToDevice(ctx, device, payload)
		})
	}
	return g.Wait()
}

func (s *PushSender) sendToDevice(ctx context.Context, device *PushDevice, payload []byte) error {
	vapid := s.cfg.Notifications.VAPID

	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: device.Endpoint,
		Keys: webpush.Keys{
			P256dh: device.P256dh,
			Auth:   device.Auth,
		},
	}, &webpush.Options{
		Subscriber:      vapid.Subject,
		VAPIDPublicKey:  vapid.PublicKey,
		VAPIDPrivateKey: vapid.PrivateKey,
		TTL:             3600,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// The push service tells us when a subscription is dead; drop the row so
	// the next fanout does not retry it.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		if err := s.db.WithContext(ctx).Delete(&PushDevice{}, "id = ?", device.ID).Error; err != nil {
			zap.L().Warn("[Push] failed to prune expired device",
				zap.String("device_id", device.ID), zap.Error(err))
		}
		return fmt.Errorf("push: subscription expired: %w", ErrChannelUnavailable)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push: service returned %d", resp.StatusCode)
	}
	return nil
}

// RegisterDevice stores a browser push subscription for a subscriber.
func (s *PushSender) RegisterDevice(ctx context.Context, device *PushDevice) error {
	exist, err := s.devices.FindOne(ctx, &PushDevice{
		SubscriberID: device.SubscriberID,
		Endpoint:     device.Endpoint,
	})
	if err != nil {
		return err
	}
	if exist != nil {
		return nil
	}
	return s.devices.Create(ctx, device)
}
