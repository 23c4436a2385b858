package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and totals travel as JSON numbers, matching what the storefront UI renders.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a purchasable catalog item. Price is never negative.
type Product struct {
	ID          string          `json:"id" gorm:"type:varchar(64);primaryKey"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Image       string          `json:"image" gorm:"type:varchar(1024)"`
	Description string          `json:"description" gorm:"type:text"`
}

// ProductRecord is the admin-managed persistent form of a Product.
type ProductRecord struct {
	Product
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ProductRecord) TableName() string { return "products" }

// CreateProductRequest is the admin "add product" form.
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
}
