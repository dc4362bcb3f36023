package billing

import (
	"context"
	"testing"
	"time"

	"clubevantagens-backend/pkg/repository"
	"clubevantagens-backend/services/plan"
	"clubevantagens-backend/services/subscriber"
	"clubevantagens-backend/services/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGateway struct {
	customers int
	payments  []PaymentRequest
}

func (f *fakeGateway) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	f.customers++
	return &Customer{ID: "cus_test"}, nil
}

func (f *fakeGateway) CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	f.payments = append(f.payments, req)
	return &Payment{
		ID:                "pay_test",
		Status:            "PENDING",
		Value:             req.Value,
		InvoiceURL:        "https://gateway.test/i/pay_test",
		ExternalReference: req.ExternalReference,
	}, nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *fakeGateway) {
	t.Helper()

	db := testutil.NewTestDB(t, &plan.Plan{}, &subscriber.Subscriber{})
	gateway := &fakeGateway{}

	svc := &Service{
		db:      db,
		gateway: gateway,

		subscribers: repository.ProvideStore[subscriber.Subscriber](db),
		plans:       repository.ProvideStore[plan.Plan](db),
	}
	return svc, db, gateway
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&plan.Plan{
		ID:           "plan-1",
		Name:         "Clube Ouro",
		Price:        49.90,
		DurationDays: 30,
		Active:       true,
	}).Error)
	require.NoError(t, db.Create(&subscriber.Subscriber{
		ID:                 "sub-1",
		Name:               "Maria Silva",
		CPF:                "11122233344",
		QRCode:             "qr-sub-1",
		SubscriptionStatus: subscriber.StatusPending,
	}).Error)
}

func TestCheckout(t *testing.T) {
	svc, db, gateway := newTestService(t)
	ctx := context.Background()
	seed(t, db)

	result, err := svc.Checkout(ctx, CheckoutParams{
		SubscriberID: "sub-1",
		PlanID:       "plan-1",
	})
	require.NoError(t, err)
	require.Equal(t, "pay_test", result.PaymentID)
	require.Equal(t, 49.90, result.Value)

	require.Equal(t, 1, gateway.customers)
	require.Len(t, gateway.payments, 1)
	require.Equal(t, BillingPix, gateway.payments[0].BillingType)
	require.Equal(t, "sub-1", gateway.payments[0].ExternalReference)

	var sub subscriber.Subscriber
	require.NoError(t, db.First(&sub, "id = ?", "sub-1").Error)
	require.Equal(t, "cus_test", sub.GatewayCustomerID)
	require.NotNil(t, sub.PlanID)
	require.Equal(t, "plan-1", *sub.PlanID)
	require.Equal(t, subscriber.StatusPending, sub.SubscriptionStatus)

	// second checkout reuses the gateway customer
	_, err = svc.Checkout(ctx, CheckoutParams{SubscriberID: "sub-1", PlanID: "plan-1"})
	require.NoError(t, err)
	require.Equal(t, 1, gateway.customers)
}

func TestCheckoutInactivePlan(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	seed(t, db)

	require.NoError(t, db.Model(&plan.Plan{}).Where("id = ?", "plan-1").Update("active", false).Error)

	_, err := svc.Checkout(ctx, CheckoutParams{SubscriberID: "sub-1", PlanID: "plan-1"})
	require.Error(t, err)
}

func TestWebhookActivates(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	seed(t, db)

	planID := "plan-1"
	require.NoError(t, db.Model(&subscriber.Subscriber{}).
		Where("id = ?", "sub-1").
		Update("plan_id", planID).Error)

	event := WebhookEvent{Event: EventPaymentConfirmed}
	event.Payment.ExternalReference = "sub-1"

	require.NoError(t, svc.HandleWebhook(ctx, event))

	var sub subscriber.Subscriber
	require.NoError(t, db.First(&sub, "id = ?", "sub-1").Error)
	require.Equal(t, subscriber.StatusActive, sub.SubscriptionStatus)
	require.NotNil(t, sub.PlanStartDate)
	require.NotNil(t, sub.PlanEndDate)

	days := sub.PlanEndDate.Sub(*sub.PlanStartDate).Hours() / 24
	require.InDelta(t, 30, days, 1)
	require.True(t, sub.PlanEndDate.After(time.Now()))
}

func TestWebhookOverdueAndCanceled(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	seed(t, db)

	overdue := WebhookEvent{Event: EventPaymentOverdue}
	overdue.Payment.ExternalReference = "sub-1"
	require.NoError(t, svc.HandleWebhook(ctx, overdue))

	var sub subscriber.Subscriber
	require.NoError(t, db.First(&sub, "id = ?", "sub-1").Error)
	require.Equal(t, subscriber.StatusExpired, sub.SubscriptionStatus)

	canceled := WebhookEvent{Event: EventSubscriptionCanceled}
	canceled.Payment.ExternalReference = "sub-1"
	require.NoError(t, svc.HandleWebhook(ctx, canceled))

	require.NoError(t, db.First(&sub, "id = ?", "sub-1").Error)
	require.Equal(t, subscriber.StatusCanceled, sub.SubscriptionStatus)
}

func TestWebhookIgnoresUnknownEvents(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	seed(t, db)

	event := WebhookEvent{Event: "PAYMENT_UPDATED"}
	event.Payment.ExternalReference = "sub-1"
	require.NoError(t, svc.HandleWebhook(ctx, event))

	var sub subscriber.Subscriber
	require.NoError(t, db.First(&sub, "id = ?", "sub-1").Error)
	require.Equal(t, subscriber.StatusPending, sub.SubscriptionStatus)
}

func TestWebhookUnknownSubscriber(t *testing.T) {
	svc, _, _ := newTestService(t)

	event := WebhookEvent{Event: EventPaymentConfirmed}
	event.Payment.ExternalReference = "missing"
	require.Error(t, svc.HandleWebhook(context.Background(), event))
}
