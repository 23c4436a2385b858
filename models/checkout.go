package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingInfo is the shipping form. FullName and Email gate leaving the shipping step;
// the address fields are collected but optional at that gate.
type ShippingInfo struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Address  string `json:"address" validate:"omitempty"`
	City     string `json:"city" validate:"omitempty"`
	ZipCode  string `json:"zipCode" validate:"omitempty"`
}

// CheckoutView is the HTTP representation of a checkout flow.
type CheckoutView struct {
	ID             string          `json:"id"`
	Step           int             `json:"step"`
	StepName       string          `json:"step_name"`
	Shipping       ShippingInfo    `json:"shipping"`
	Loading        bool            `json:"loading"`
	CanAdvance     bool            `json:"can_advance"`
	Items          []CartLine      `json:"items,omitempty"`
	Total          decimal.Decimal `json:"total"`
	GatewayOrderID string          `json:"gateway_order_id,omitempty"`
	OrderID        string          `json:"order_id,omitempty"`
	Warning        string          `json:"warning,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CompleteCheckoutResponse carries what the browser needs to open the payment widget.
type CompleteCheckoutResponse struct {
	Checkout CheckoutView `json:"checkout"`
	Widget   WidgetConfig `json:"widget"`
}
