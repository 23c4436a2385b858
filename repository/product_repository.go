package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yashrajoria/luxe-storefront/models"
)

// ProductRepository stores the admin-managed catalog.
type ProductRepository interface {
	List(ctx context.Context) ([]models.ProductRecord, error)
	FindByID(ctx context.Context, id string) (*models.ProductRecord, error)
	Create(ctx context.Context, product *models.ProductRecord) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// List returns products in the order they were added.
func (r *GormProductRepository) List(ctx context.Context) ([]models.ProductRecord, error) {
	var products []models.ProductRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*models.ProductRecord, error) {
	var p models.ProductRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *models.ProductRecord) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *GormProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ProductRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ProductRecord{}).Count(&n).Error
	return n, err
}
