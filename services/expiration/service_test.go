package expiration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"clubevantagens-backend/pkg/config"
	"clubevantagens-backend/pkg/repository"
	"clubevantagens-backend/services/notification"
	"clubevantagens-backend/services/plan"
	"clubevantagens-backend/services/subscriber"
	"clubevantagens-backend/services/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingSender struct {
	name string
	sent []string
}

func (r *recordingSender) Channel() string { return r.name }

func (r *recordingSender) Send(ctx context.Context, sub *subscriber.Subscriber, msg notification.Message) error {
	r.sent = append(r.sent, sub.ID)
	return nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *recordingSender) {
	t.Helper()

	db := testutil.NewTestDB(t, &plan.Plan{}, &subscriber.Subscriber{})

	cfg := &config.Config{}
	cfg.Notifications.DayOffsets = []int{7, 3, 1, 0}
	cfg.Notifications.RunHour = 1

	sender := &recordingSender{name: "email"}

	svc := &Service{
		cfg:         cfg,
		fanout:      notification.NewFanoutFromSenders(sender),
		subscribers: repository.ProvideStore[subscriber.Subscriber](db),
	}
	return svc, db, sender
}

func seedExpiring(t *testing.T, db *gorm.DB, id string, status subscriber.SubscriptionStatus, endsAt time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&subscriber.Subscriber{
		ID:                 id,
		Name:               "Subscriber " + id,
		CPF:                fmt.Sprintf("cpf-%s", id),
		QRCode:             fmt.Sprintf("qr-%s", id),
		Email:              id + "@example.com",
		SubscriptionStatus: status,
		PlanEndDate:        &endsAt,
	}).Error)
}

func TestRunMatchesExactDays(t *testing.T) {
	svc, db, sender := newTestService(t)

	now := time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)

	// one subscriber per configured milestone
	seedExpiring(t, db, "d7", subscriber.StatusActive, now.AddDate(0, 0, 7))
	seedExpiring(t, db, "d3", subscriber.StatusActive, now.AddDate(0, 0, 3))
	seedExpiring(t, db, "d1", subscriber.StatusActive, now.AddDate(0, 0, 1))
	seedExpiring(t, db, "d0", subscriber.StatusActive, now.Add(2*time.Hour))

	// between milestones, outside every window
	seedExpiring(t, db, "d5", subscriber.StatusActive, now.AddDate(0, 0, 5))
	seedExpiring(t, db, "d30", subscriber.StatusActive, now.AddDate(0, 0, 30))

	summary, err := svc.Run(context.Background(), now, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 4, summary.Scanned)
	require.ElementsMatch(t, []string{"d7", "d3", "d1", "d0"}, sender.sent)
}

func TestRunSkipsInactive(t *testing.T) {
	svc, db, sender := newTestService(t)

	now := time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)

	seedExpiring(t, db, "active", subscriber.StatusActive, now.AddDate(0, 0, 3))
	seedExpiring(t, db, "pending", subscriber.StatusPending, now.AddDate(0, 0, 3))
	seedExpiring(t, db, "expired", subscriber.StatusExpired, now.AddDate(0, 0, 3))

	summary, err := svc.Run(context.Background(), now, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Scanned)
	require.Equal(t, []string{"active"}, sender.sent)
}

func TestRunWindowBoundaries(t *testing.T) {
	svc, db, sender := newTestService(t)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// 23:59 on day+3 is inside the window; 00:00 on day+4 is not
	inside := time.Date(2026, 3, 13, 23, 59, 0, 0, time.UTC)
	outside := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	seedExpiring(t, db, "inside", subscriber.StatusActive, inside)
	seedExpiring(t, db, "outside", subscriber.StatusActive, outside)

	_, err := svc.Run(context.Background(), now, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"inside"}, sender.sent)
}

func TestReminderMessageSubjects(t *testing.T) {
	svc, _, _ := newTestService(t)

	endsAt := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	sub := &subscriber.Subscriber{Name: "Maria", PlanEndDate: &endsAt}

	require.Equal(t, "Sua assinatura vence hoje", svc.reminderMessage(sub, 0).Subject)
	require.Equal(t, "Sua assinatura vence amanhã", svc.reminderMessage(sub, 1).Subject)
	require.Equal(t, "Sua assinatura vence em 7 dias", svc.reminderMessage(sub, 7).Subject)
	require.Contains(t, svc.reminderMessage(sub, 7).Body, "10/03/2026")
}

func TestSchedulerNextRunTime(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notifications.RunHour = 1
	s := &Scheduler{cfg: cfg}

	beforeHour := time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC), s.nextRunTime(beforeHour))

	afterHour := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC), s.nextRunTime(afterHour))

	exactly := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC), s.nextRunTime(exactly))
}

func TestRunHonorsOverrides(t *testing.T) {
	svc, db, sender := newTestService(t)

	now := time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)

	seedExpiring(t, db, "d7", subscriber.StatusActive, now.AddDate(0, 0, 7))
	seedExpiring(t, db, "d3", subscriber.StatusActive, now.AddDate(0, 0, 3))

	summary, err := svc.Run(context.Background(), now, RunOptions{DayOffsets: []int{3}})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Scanned)
	require.Equal(t, []string{"d3"}, sender.sent)

	// restricting to a channel this deployment does not carry attempts nothing
	sender.sent = nil
	summary, err = svc.Run(context.Background(), now, RunOptions{Channels: []string{"whatsapp"}})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Scanned)
	require.Empty(t, sender.sent)
}
