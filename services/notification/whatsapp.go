package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"clubevantagens-backend/pkg/config"
	"clubevantagens-backend/pkg/featureflags"
	"clubevantagens-backend/pkg/repository"
	"clubevantagens-backend/services/subscriber"

	"github.com/go-resty/resty/v2"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const whatsappKillSwitch = "whatsapp_notifications"

type WhatsAppSender struct {
	cfg    *config.Config
	client *resty.Client
	flags  featureflags.FeatureFlag

	instances repository.Repository[WhatsAppInstance]

	// Gateways ban numbers that blast messages; sends are paced by a
	// minimum interval between consecutive calls.
	mu       sync.Mutex
	lastSend time.Time
}

type WhatsAppParams struct {
	fx.In
	Config *config.Config
	DB     *gorm.DB
	Flags  featureflags.FeatureFlag
}

func NewWhatsAppSender(p WhatsAppParams) *WhatsAppSender {
	client := resty.New().
		SetBaseURL(p.Config.Notifications.WhatsApp.BaseURL).
		SetHeader("apikey", p.Config.Notifications.WhatsApp.APIKey).
		SetTimeout(15 * time.Second)

	return &WhatsAppSender{
		cfg:       p.Config,
		client:    client,
		flags:     p.Flags,
		instances: repository.ProvideStore[WhatsAppInstance](p.DB),
	}
}

func (s *WhatsAppSender) Channel() string { return "whatsapp" }

func (s *WhatsAppSender) Send(ctx context.Context, sub *subscriber.Subscriber, msg Message) error {
	if s.cfg.Notifications.WhatsApp.BaseURL == "" {
		return fmt.Errorf("whatsapp: %w", ErrChannelUnavailable)
	}
	if !s.flags.Enabled(ctx, whatsappKillSwitch) {
		return fmt.Errorf("whatsapp: disabled by feature flag: %w", ErrChannelUnavailable)
	}
	if sub.Phone == "" {
		return fmt.Errorf("whatsapp: subscriber has no phone: %w", ErrChannelUnavailable)
	}

	instance, err := s.instances.FindOne(ctx, &WhatsAppInstance{Status: InstanceConnected})
	if err != nil {
		return err
	}
	if instance == nil {
		return fmt.Errorf("whatsapp: no connected instance: %w", ErrChannelUnavailable)
	}

	s.pace()

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"number": s.normalizePhone(sub.Phone),
			"text":   msg.Subject + "\n\n" + msg.Body,
		}).
		Post(fmt.Sprintf("/message/sendText/%s", instance.Name))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("whatsapp: gateway returned %s", resp.Status())
	}

	return nil
}

func (s *WhatsAppSender) pace() {
	s.mu.Lock()
	defer s.mu.Unlock()

	interval := s.cfg.Notifications.WhatsApp.MinSendInterval
	if wait := interval - time.Since(s.lastSend); wait > 0 {
		time.Sleep(wait)
	}
	s.lastSend = time.Now()
}

// normalizePhone strips punctuation and prefixes the country code when the
// number looks local (11 digits or fewer, Brazilian DDD + number).
func (s *WhatsAppSender) normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	cc := s.cfg.Notifications.WhatsApp.CountryCode
	if len(digits) <= 11 && !strings.HasPrefix(digits, cc) {
		digits = cc + digits
	}
	return digits
}
