package notification

import (
	"context"
	"fmt"

	"clubevantagens-backend/pkg/config"
	"clubevantagens-backend/services/subscriber"

	"go.uber.org/fx"
	"gopkg.in/gomail.v2"
)

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	cfg    *config.Config
	dialer mailDialer
}

type EmailParams struct {
	fx.In
	Config *config.Config
}

func NewEmailSender(p EmailParams) *EmailSender {
	s := &EmailSender{cfg: p.Config}

	smtp := p.Config.Notifications.SMTP
	if smtp.Host != "" {
		s.dialer = gomail.NewDialer(smtp.Host, smtp.Port, smtp.User, smtp.Password)
	}

	return s
}

func (s *EmailSender) Channel() string { return "email" }

func (s *EmailSender) Send(ctx context.Context, sub *subscriber.Subscriber, msg Message) error {
	if s.dialer == nil {
		return fmt.Errorf("email: %w", ErrChannelUnavailable)
	}
	if sub.Email == "" {
		return fmt.Errorf("email: subscriber has no address: %w", ErrChannelUnavailable)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.Notifications.SMTP.From)
	m.SetHeader("To", sub.Email)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.Body)

	return s.dialer.DialAndSend(m)
}
