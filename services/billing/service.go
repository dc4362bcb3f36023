package billing

import (
	"context"
	"time"

	"clubevantagens-backend/pkg/errutil"
	"clubevantagens-backend/pkg/repository"
	"clubevantagens-backend/services/plan"
	"clubevantagens-backend/services/subscriber"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const paymentDueDays = 3

type Service struct {
	db      *gorm.DB
	gateway Client

	subscribers repository.Repository[subscriber.Subscriber]
	plans       repository.Repository[plan.Plan]
}

type ServiceParams struct {
	fx.In
	DB      *gorm.DB
	Gateway Client
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:      p.DB,
		gateway: p.Gateway,

		subscribers: repository.ProvideStore[subscriber.Subscriber](p.DB),
		plans:       repository.ProvideStore[plan.Plan](p.DB),
	}
}

type CheckoutParams struct {
	SubscriberID string      `json:"subscriberId" binding:"required"`
	PlanID       string      `json:"planId" binding:"required"`
	BillingType  BillingType `json:"billingType"`
}

type CheckoutResult struct {
	PaymentID   string  `json:"paymentId"`
	Value       float64 `json:"value"`
	InvoiceURL  string  `json:"invoiceUrl"`
	BankSlipURL string  `json:"bankSlipUrl,omitempty"`
}

// Checkout creates a gateway charge for a plan. The subscription stays
// PENDING until the gateway confirms payment through the webhook.
func (s *Service) Checkout(ctx context.Context, params CheckoutParams) (*CheckoutResult, error) {
	sub, err := s.subscribers.FindOne(ctx, &subscriber.Subscriber{ID: params.SubscriberID})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errutil.NotFound("subscriber not found", nil)
	}

	pl, err := s.plans.FindOne(ctx, &plan.Plan{ID: params.PlanID})
	if err != nil {
		return nil, err
	}
	if pl == nil {
		return nil, errutil.NotFound("plan not found", nil)
	}
	if !pl.Active {
		return nil, errutil.UnprocessableEntity("plan is no longer offered", nil)
	}

	billingType := params.BillingType
	if billingType == "" {
		billingType = BillingPix
	}

	customerID := sub.GatewayCustomerID
	if customerID == "" {
		customer, err := s.gateway.CreateCustomer(ctx, CustomerRequest{
			Name:  sub.Name,
			CPF:   sub.CPF,
			Email: sub.Email,
			Phone: sub.Phone,
		})
		if err != nil {
			return nil, err
		}
		customerID = customer.ID

		if err := s.subscribers.Update(ctx, sub.ID, map[string]any{
			"gateway_customer_id": customerID,
		}); err != nil {
			return nil, err
		}
	}

	payment, err := s.gateway.CreatePayment(ctx, PaymentRequest{
		CustomerID:        customerID,
		BillingType:       billingType,
		Value:             pl.Price,
		DueDate:           time.Now().AddDate(0, 0, paymentDueDays).Format("2006-01-02"),
		Description:       "Assinatura " + pl.Name,
		ExternalReference: sub.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.subscribers.Update(ctx, sub.ID, map[string]any{
		"plan_id":             params.PlanID,
		"subscription_status": subscriber.StatusPending,
	}); err != nil {
		return nil, err
	}

	zap.L().Info("[Billing] checkout created",
		zap.String("subscriber_id", sub.ID),
		zap.String("plan_id", pl.ID),
		zap.String("payment_id", payment.ID))

	return &CheckoutResult{
		PaymentID:   payment.ID,
		Value:       payment.Value,
		InvoiceURL:  payment.InvoiceURL,
		BankSlipURL: payment.BankSlipURL,
	}, nil
}
