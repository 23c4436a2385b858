package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusFailed:
		return true
	}
	return false
}

// OrderItems is the snapshot of the cart lines at purchase time, stored as JSON.
type OrderItems []CartLine

func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (o *OrderItems) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*o = OrderItems{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for order items", src)
	}
	return json.Unmarshal(raw, o)
}

// Order is a finalized purchase as written to the order record sink.
type Order struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	Currency       string          `json:"currency" gorm:"type:varchar(10);not null"`
	Status         OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Items          OrderItems      `json:"items" gorm:"type:jsonb;not null"`
	PaymentID      string          `json:"payment_id" gorm:"type:varchar(128);uniqueIndex"`
	GatewayOrderID string          `json:"gateway_order_id" gorm:"type:varchar(128);index"`
	Email          string          `json:"email" gorm:"type:varchar(255);index"`
	UserID         *string         `json:"user_id,omitempty" gorm:"type:varchar(64);index"`
	FullName       string          `json:"full_name" gorm:"type:varchar(255)"`
	Address        string          `json:"address" gorm:"type:varchar(512)"`
	City           string          `json:"city" gorm:"type:varchar(128)"`
	ZipCode        string          `json:"zip_code" gorm:"type:varchar(32)"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// OrderPage is a paginated list of orders.
type OrderPage struct {
	Orders []Order  `json:"orders"`
	Meta   MetaData `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

// OrderStats backs the admin dashboard.
type OrderStats struct {
	TotalOrders     int64           `json:"total_orders"`
	PendingOrders   int64           `json:"pending_orders"`
	CompletedOrders int64           `json:"completed_orders"`
	FailedOrders    int64           `json:"failed_orders"`
	Revenue         decimal.Decimal `json:"revenue"`
}
