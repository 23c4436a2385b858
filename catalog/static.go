package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/yashrajoria/luxe-storefront/models"
)

//go:embed products.json
var defaultProducts []byte

// StaticSource serves a fixed product list.
type StaticSource struct {
	products []models.Product
	byID     map[string]int
}

func NewStaticSource(products []models.Product) *StaticSource {
	s := &StaticSource{
		products: products,
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range products {
		s.byID[p.ID] = i
	}
	return s
}

// Default returns the bundled catalog.
func Default() (*StaticSource, error) {
	products, err := ParseProducts(defaultProducts)
	if err != nil {
		return nil, err
	}
	return NewStaticSource(products), nil
}

// ParseProducts decodes a JSON product array, rejecting blank or duplicate ids and
// negative prices.
func ParseProducts(data []byte) ([]models.Product, error) {
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	seen := make(map[string]bool, len(products))
	for i, p := range products {
		switch {
		case p.ID == "":
			return nil, fmt.Errorf("product %d has no id", i)
		case seen[p.ID]:
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		case p.Price.IsNegative():
			return nil, fmt.Errorf("product %q has a negative price", p.ID)
		}
		seen[p.ID] = true
	}
	return products, nil
}

func (s *StaticSource) List(context.Context) ([]models.Product, error) {
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *StaticSource) Get(_ context.Context, id string) (*models.Product, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	p := s.products[i]
	return &p, nil
}
