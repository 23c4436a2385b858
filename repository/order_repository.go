package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yashrajoria/luxe-storefront/models"
)

// OrderRepository is the order record sink and its downstream read paths.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error)
	FindByEmail(ctx context.Context, email string, page, limit int) ([]models.Order, int64, error)
	FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts a new order. A zero ID is filled in.
func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByUserID retrieves a user's orders, newest first
func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error) {
	return r.paginate(ctx, r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID), page, limit)
}

// FindByEmail retrieves orders placed with an email address, newest first
func (r *GormOrderRepository) FindByEmail(ctx context.Context, email string, page, limit int) ([]models.Order, int64, error) {
	return r.paginate(ctx, r.db.WithContext(ctx).Model(&models.Order{}).Where("email = ?", email), page, limit)
}

// FindAll retrieves all orders with pagination
func (r *GormOrderRepository) FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	return r.paginate(ctx, r.db.WithContext(ctx).Model(&models.Order{}), page, limit)
}

func (r *GormOrderRepository) paginate(_ context.Context, query *gorm.DB, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, count(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Revenue sums the totals of completed orders.
func (r *GormOrderRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("SUM(total_amount)").
		Where("status = ?", models.OrderStatusCompleted).
		Row().
		Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
