package models

import "github.com/shopspring/decimal"

// CartLine is one product in a cart together with its quantity. Quantity is always > 0
// for lines that live in a cart.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal is price * quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the session-owned collection of lines, in insertion order.
type Cart struct {
	Items []CartLine `json:"items"`
}

// CartView is what the HTTP API returns for a cart.
type CartView struct {
	SessionID string          `json:"session_id"`
	Items     []CartLine      `json:"items"`
	Count     int             `json:"count"`
	Total     decimal.Decimal `json:"total"`
}

type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}
