package notification

import (
	"context"
	"errors"

	"clubevantagens-backend/pkg/config"
	"clubevantagens-backend/services/subscriber"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ErrChannelUnavailable marks a channel that cannot deliver for this
// subscriber or deployment (missing address, no gateway session, no VAPID
// keys). It is reported in the per-channel result, never propagated.
var ErrChannelUnavailable = errors.New("channel unavailable")

type Message struct {
	Subject string
	Body    string
}

// Sender delivers one message over one channel.
type Sender interface {
	Channel() string
	Send(ctx context.Context, sub *subscriber.Subscriber, msg Message) error
}

type ChannelResult struct {
	Channel string `json:"channel"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Fanout pushes a message through every configured channel in order. A
// failing channel never blocks the ones after it.
type Fanout struct {
	senders []Sender
}

type FanoutParams struct {
	fx.In
	Config   *config.Config
	Email    *EmailSender
	WhatsApp *WhatsAppSender
	Push     *PushSender
}

func NewFanout(p FanoutParams) *Fanout {
	byName := map[string]Sender{
		p.Email.Channel():    p.Email,
		p.WhatsApp.Channel(): p.WhatsApp,
		p.Push.Channel():     p.Push,
	}

	var senders []Sender
	for _, name := range p.Config.Notifications.Channels {
		if s, ok := byName[name]; ok {
			senders = append(senders, s)
		} else {
			zap.L().Warn("[Fanout] unknown channel in config", zap.String("channel", name))
		}
	}

	return &Fanout{senders: senders}
}

// NewFanoutFromSenders builds a fanout with an explicit channel order.
func NewFanoutFromSenders(senders ...Sender) *Fanout {
	return &Fanout{senders: senders}
}

// Restrict returns a fanout limited to the named channels, preserving the
// configured order. Unknown names are ignored.
func (f *Fanout) Restrict(channels []string) *Fanout {
	wanted := make(map[string]bool, len(channels))
	for _, name := range channels {
		wanted[name] = true
	}

	var senders []Sender
	for _, sender := range f.senders {
		if wanted[sender.Channel()] {
			senders = append(senders, sender)
		}
	}
	return &Fanout{senders: senders}
}

func (f *Fanout) Notify(ctx context.Context, sub *subscriber.Subscriber, msg Message) []ChannelResult {
	results := make([]ChannelResult, 0, len(f.senders))

	for _, sender := range f.senders {
		result := ChannelResult{Channel: sender.Channel(), Success: true}

		if err := sender.Send(ctx, sub, msg); err != nil {
			result.Success = false
			result.Error = err.Error()
			zap.L().Warn("[Fanout] channel delivery failed",
				zap.String("channel", sender.Channel()),
				zap.String("subscriber_id", sub.ID),
				zap.Error(err))
		}

		results = append(results, result)
	}

	return results
}
