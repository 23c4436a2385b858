package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yashrajoria/luxe-storefront/models"
	"github.com/yashrajoria/luxe-storefront/repository"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// OrderService reads and administers the orders written by checkout.
type OrderService interface {
	ListAccountOrders(ctx context.Context, userID, email string, page, limit int) (*models.OrderPage, *ServiceError)
	ListOrders(ctx context.Context, page, limit int) (*models.OrderPage, *ServiceError)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, *ServiceError)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, *ServiceError)
	Stats(ctx context.Context) (*models.OrderStats, *ServiceError)
}

type orderServiceImpl struct {
	repo   repository.OrderRepository
	logger *zap.Logger
}

func NewOrderService(repo repository.OrderRepository, logger *zap.Logger) OrderService {
	return &orderServiceImpl{repo: repo, logger: logger}
}

// ListAccountOrders returns the caller's orders, newest first. Orders placed before the
// shopper had an account carry no user id, so an empty result falls back to the email.
func (s *orderServiceImpl) ListAccountOrders(ctx context.Context, userID, email string, page, limit int) (*models.OrderPage, *ServiceError) {
	if userID == "" && email == "" {
		return nil, &ServiceError{StatusCode: 401, Message: "Unauthorized"}
	}

	var orders []models.Order
	var total int64
	var err error
	if userID != "" {
		orders, total, err = s.repo.FindByUserID(ctx, userID, page, limit)
	}
	if err == nil && total == 0 && email != "" {
		orders, total, err = s.repo.FindByEmail(ctx, email, page, limit)
	}
	if err != nil {
		s.logger.Error("Failed to list account orders", zap.String("user_id", userID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch orders"}
	}
	return newOrderPage(orders, total, page, limit), nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, page, limit int) (*models.OrderPage, *ServiceError) {
	orders, total, err := s.repo.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch orders"}
	}
	return newOrderPage(orders, total, page, limit), nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
	}
	if err != nil {
		s.logger.Error("Failed to fetch order", zap.String("order_id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch order"}
	}
	return order, nil
}

// UpdateStatus moves an order to one of the known statuses.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, *ServiceError) {
	if !status.Valid() {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid order status"}
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Order not found"}
		}
		s.logger.Error("Failed to update order status", zap.String("order_id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update order status"}
	}

	s.logger.Info("Order status updated", zap.String("order_id", id.String()), zap.String("status", string(status)))
	return s.GetOrder(ctx, id)
}

// Stats backs the admin dashboard. Revenue only counts completed orders.
func (s *orderServiceImpl) Stats(ctx context.Context) (*models.OrderStats, *ServiceError) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to count orders", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch stats"}
	}
	revenue, err := s.repo.Revenue(ctx)
	if err != nil {
		s.logger.Error("Failed to sum revenue", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch stats"}
	}

	stats := &models.OrderStats{
		PendingOrders:   counts[models.OrderStatusPending],
		CompletedOrders: counts[models.OrderStatusCompleted],
		FailedOrders:    counts[models.OrderStatusFailed],
		Revenue:         revenue,
	}
	for _, n := range counts {
		stats.TotalOrders += n
	}
	return stats, nil
}

func newOrderPage(orders []models.Order, total int64, page, limit int) *models.OrderPage {
	if orders == nil {
		orders = []models.Order{}
	}
	totalPages := int64(0)
	if limit > 0 {
		totalPages = (total + int64(limit) - 1) / int64(limit)
	}
	return &models.OrderPage{
		Orders: orders,
		Meta: models.MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  totalPages,
			HasMore:     total > int64(page*limit),
		},
	}
}
