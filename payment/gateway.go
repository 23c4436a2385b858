package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yashrajoria/luxe-storefront/models"
)

const (
	ProviderRazorpay = "razorpay"
	ProviderStripe   = "stripe"
)

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrMissingOrderID      = errors.New("payment widget requires a gateway order id")
	ErrUnknownPaymentOrder = errors.New("no checkout is waiting for this payment order")
	ErrAlreadyDelivered    = errors.New("payment already delivered for this order")
	ErrInvalidSignature    = errors.New("payment signature mismatch")
)

// OrderCreator creates the remote payment order a checkout pays against.
type OrderCreator interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal) (*models.GatewayOrder, error)
}

// Widget opens the externally rendered payment UI. The returned channel yields at most
// one PaymentSuccess; it may never yield if the shopper walks away.
type Widget interface {
	Open(ctx context.Context, cfg models.WidgetConfig) (<-chan models.PaymentSuccess, error)
	// Release stops awaiting the order. Later deliveries for it are rejected.
	Release(orderID string)
}

// GatewayError is an error payload returned by the payment gateway.
type GatewayError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *GatewayError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("payment gateway error (status %d): %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("payment gateway error (status %d, %s): %s", e.StatusCode, e.Code, e.Description)
}

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount (rupees, dollars) to minor units (paise,
// cents), rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
