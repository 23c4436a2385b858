package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"

	"github.com/yashrajoria/luxe-storefront/models"
)

// StripeClient creates PaymentIntents and verifies webhooks. The intent id plays the
// part of the gateway order id.
type StripeClient struct {
	intents    paymentintent.Client
	currency   string
	webhookKey string
}

func NewStripeClient(secretKey, webhookKey, currency string) *StripeClient {
	return NewStripeClientWithBackend(stripe.GetBackend(stripe.APIBackend), secretKey, webhookKey, currency)
}

// NewStripeClientWithBackend lets callers point the client at a different API backend.
func NewStripeClientWithBackend(backend stripe.Backend, secretKey, webhookKey, currency string) *StripeClient {
	return &StripeClient{
		intents:    paymentintent.Client{B: backend, Key: secretKey},
		currency:   strings.ToLower(currency),
		webhookKey: webhookKey,
	}
}

func (s *StripeClient) CreateOrder(ctx context.Context, amount decimal.Decimal) (*models.GatewayOrder, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(ToMinorUnits(amount)),
		Currency: stripe.String(s.currency),
	}
	params.Context = ctx

	pi, err := s.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}

	return &models.GatewayOrder{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
	}, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts a successful payment.
// ok is false for event types that do not complete a checkout.
func (s *StripeClient) ParseWebhook(payload []byte, sigHeader string) (models.PaymentSuccess, bool, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.webhookKey)
	if err != nil {
		return models.PaymentSuccess{}, false, err
	}
	if event.Type != stripe.EventTypePaymentIntentSucceeded {
		return models.PaymentSuccess{}, false, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return models.PaymentSuccess{}, false, fmt.Errorf("decode payment intent: %w", err)
	}

	paymentID := pi.ID
	if pi.LatestCharge != nil && pi.LatestCharge.ID != "" {
		paymentID = pi.LatestCharge.ID
	}
	return models.PaymentSuccess{OrderID: pi.ID, PaymentID: paymentID}, true, nil
}
