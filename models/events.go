package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventOrderCompleted = "order.completed"

// OrderEvent is published after an order has been written.
type OrderEvent struct {
	Event       string          `json:"event"`
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id,omitempty"`
	Email       string          `json:"email"`
	PaymentID   string          `json:"payment_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	ItemCount   int             `json:"item_count"`
	Timestamp   time.Time       `json:"timestamp"`
}

// NewOrderCompletedEvent builds the integration event for a freshly written order.
func NewOrderCompletedEvent(o *Order) OrderEvent {
	ev := OrderEvent{
		Event:       EventOrderCompleted,
		OrderID:     o.ID.String(),
		Email:       o.Email,
		PaymentID:   o.PaymentID,
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
		Timestamp:   time.Now().UTC(),
	}
	if o.UserID != nil {
		ev.UserID = *o.UserID
	}
	for _, l := range o.Items {
		ev.ItemCount += l.Quantity
	}
	return ev
}
