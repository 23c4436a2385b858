package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/yashrajoria/luxe-storefront/models"
	"github.com/yashrajoria/luxe-storefront/repository"
)

// RepositorySource serves the admin-managed catalog from a ProductRepository.
type RepositorySource struct {
	repo repository.ProductRepository
}

func NewRepositorySource(repo repository.ProductRepository) *RepositorySource {
	return &RepositorySource{repo: repo}
}

func (s *RepositorySource) List(ctx context.Context) ([]models.Product, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(records))
	for _, r := range records {
		products = append(products, r.Product)
	}
	return products, nil
}

func (s *RepositorySource) Get(ctx context.Context, id string) (*models.Product, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	p := rec.Product
	return &p, nil
}

// Seed copies products into an empty repository. A repository that already holds
// products is left alone.
func Seed(ctx context.Context, repo repository.ProductRepository, products []models.Product, log *zap.Logger) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, p := range products {
		if err := repo.Create(ctx, &models.ProductRecord{Product: p}); err != nil {
			return err
		}
	}
	log.Info("catalog seeded", zap.Int("products", len(products)))
	return nil
}
