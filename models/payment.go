package models

import "github.com/shopspring/decimal"

// GatewayOrder is a payment order created at the gateway. Amount is in minor units.
type GatewayOrder struct {
	ID           string `json:"id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	ClientSecret string `json:"client_secret,omitempty"`
}

type Prefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// WidgetConfig configures the hosted payment widget rendered by the browser.
type WidgetConfig struct {
	Provider     string  `json:"provider"`
	Key          string  `json:"key"`
	Amount       int64   `json:"amount"`
	Currency     string  `json:"currency"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	OrderID      string  `json:"order_id"`
	ClientSecret string  `json:"client_secret,omitempty"`
	Prefill      Prefill `json:"prefill"`
}

// PaymentSuccess is what the widget hands back when the gateway accepted the payment.
type PaymentSuccess struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature"`
}

// CreatePaymentOrderRequest is the body of the order-creation endpoint.
type CreatePaymentOrderRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
