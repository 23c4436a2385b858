package catalog

import (
	"context"
	"errors"

	"github.com/yashrajoria/luxe-storefront/models"
)

var ErrProductNotFound = errors.New("product not found")

// Source provides the ordered product list. It is read-only for the storefront.
type Source interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
}

// Slice returns products[start:end] with JavaScript Array.slice semantics: negative
// indices count from the end and out-of-range indices are clamped.
func Slice(products []models.Product, start, end int) []models.Product {
	n := len(products)
	clamp := func(i int) int {
		if i < 0 {
			i += n
			if i < 0 {
				return 0
			}
		}
		if i > n {
			return n
		}
		return i
	}
	start, end = clamp(start), clamp(end)
	if start >= end {
		return []models.Product{}
	}
	return products[start:end]
}
