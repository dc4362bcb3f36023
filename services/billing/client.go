package billing

import (
	"context"
	"fmt"
	"time"

	"clubevantagens-backend/pkg/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/fx"
)

type BillingType string

const (
	BillingPix    BillingType = "PIX"
	BillingBoleto BillingType = "BOLETO"
)

type CustomerRequest struct {
	Name  string `json:"name"`
	CPF   string `json:"cpfCnpj"`
	Email string `json:"email,omitempty"`
	Phone string `json:"mobilePhone,omitempty"`
}

type Customer struct {
	ID string `json:"id"`
}

type PaymentRequest struct {
	CustomerID        string      `json:"customer"`
	BillingType       BillingType `json:"billingType"`
	Value             float64     `json:"value"`
	DueDate           string      `json:"dueDate"`
	Description       string      `json:"description,omitempty"`
	ExternalReference string      `json:"externalReference"`
}

type Payment struct {
	ID                string  `json:"id"`
	Status            string  `json:"status"`
	Value             float64 `json:"value"`
	InvoiceURL        string  `json:"invoiceUrl"`
	BankSlipURL       string  `json:"bankSlipUrl"`
	ExternalReference string  `json:"externalReference"`
}

// Client talks to the payment gateway. Webhook handling does not go through
// it; the gateway calls us.
type Client interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error)
	CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error)
}

type gatewayClient struct {
	http *resty.Client
}

type ClientParams struct {
	fx.In
	Config *config.Config
}

func NewClient(p ClientParams) Client {
	http := resty.New().
		SetBaseURL(p.Config.Billing.BaseURL).
		SetHeader("access_token", p.Config.Billing.APIKey).
		SetTimeout(20 * time.Second)

	return &gatewayClient{http: http}
}

func (c *gatewayClient) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	var customer Customer

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&customer).
		Post("/v3/customers")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("billing: customer creation returned %s: %s", resp.Status(), resp.String())
	}

	return &customer, nil
}

func (c *gatewayClient) CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	var payment Payment

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&payment).
		Post("/v3/payments")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("billing: payment creation returned %s: %s", resp.Status(), resp.String())
	}

	return &payment, nil
}
