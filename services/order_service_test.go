package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yashrajoria/luxe-storefront/models"
	"github.com/yashrajoria/luxe-storefront/repository"
	"github.com/yashrajoria/luxe-storefront/services"
)

func TestListAccountOrders_ByUserID(t *testing.T) {
	repo := new(mockOrderRepo)
	orders := []models.Order{{ID: uuid.New(), Email: "a@b.c"}}
	repo.On("FindByUserID", mock.Anything, "user-1", 1, 10).Return(orders, int64(1), nil)

	svc := services.NewOrderService(repo, zap.NewNop())
	page, svcErr := svc.ListAccountOrders(context.Background(), "user-1", "a@b.c", 1, 10)

	require.Nil(t, svcErr)
	assert.Len(t, page.Orders, 1)
	assert.Equal(t, int64(1), page.Meta.TotalOrders)
	assert.False(t, page.Meta.HasMore)
	repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListAccountOrders_FallsBackToEmail(t *testing.T) {
	repo := new(mockOrderRepo)
	repo.On("FindByUserID", mock.Anything, "user-1", 1, 10).Return([]models.Order{}, int64(0), nil)
	repo.On("FindByEmail", mock.Anything, "a@b.c", 1, 10).
		Return([]models.Order{{ID: uuid.New()}, {ID: uuid.New()}}, int64(12), nil)

	svc := services.NewOrderService(repo, zap.NewNop())
	page, svcErr := svc.ListAccountOrders(context.Background(), "user-1", "a@b.c", 1, 10)

	require.Nil(t, svcErr)
	assert.Len(t, page.Orders, 2)
	assert.Equal(t, int64(2), page.Meta.TotalPages)
	assert.True(t, page.Meta.HasMore)
	repo.AssertExpectations(t)
}

func TestListAccountOrders_Anonymous(t *testing.T) {
	svc := services.NewOrderService(new(mockOrderRepo), zap.NewNop())
	_, svcErr := svc.ListAccountOrders(context.Background(), "", "", 1, 10)
	require.NotNil(t, svcErr)
	assert.Equal(t, 401, svcErr.StatusCode)
}

func TestListOrders_RepoError(t *testing.T) {
	repo := new(mockOrderRepo)
	repo.On("FindAll", mock.Anything, 1, 10).Return([]models.Order(nil), int64(0), errors.New("db down"))

	svc := services.NewOrderService(repo, zap.NewNop())
	_, svcErr := svc.ListOrders(context.Background(), 1, 10)
	require.NotNil(t, svcErr)
	assert.Equal(t, 500, svcErr.StatusCode)
}

func TestListOrders_EmptyPageIsNotNil(t *testing.T) {
	repo := new(mockOrderRepo)
	repo.On("FindAll", mock.Anything, 2, 5).Return([]models.Order(nil), int64(0), nil)

	svc := services.NewOrderService(repo, zap.NewNop())
	page, svcErr := svc.ListOrders(context.Background(), 2, 5)
	require.Nil(t, svcErr)
	assert.NotNil(t, page.Orders)
	assert.Equal(t, 2, page.Meta.Page)
}

func TestUpdateStatus(t *testing.T) {
	id := uuid.New()
	repo := new(mockOrderRepo)
	repo.On("UpdateStatus", mock.Anything, id, models.OrderStatusFailed).Return(nil)
	repo.On("FindByID", mock.Anything, id).Return(&models.Order{ID: id, Status: models.OrderStatusFailed}, nil)

	svc := services.NewOrderService(repo, zap.NewNop())
	order, svcErr := svc.UpdateStatus(context.Background(), id, models.OrderStatusFailed)

	require.Nil(t, svcErr)
	assert.Equal(t, models.OrderStatusFailed, order.Status)
	repo.AssertExpectations(t)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := services.NewOrderService(repo, zap.NewNop())

	_, svcErr := svc.UpdateStatus(context.Background(), uuid.New(), models.OrderStatus("shipped"))
	require.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	id := uuid.New()
	repo := new(mockOrderRepo)
	repo.On("UpdateStatus", mock.Anything, id, models.OrderStatusCompleted).Return(repository.ErrNotFound)

	svc := services.NewOrderService(repo, zap.NewNop())
	_, svcErr := svc.UpdateStatus(context.Background(), id, models.OrderStatusCompleted)
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestStats(t *testing.T) {
	repo := new(mockOrderRepo)
	repo.On("CountByStatus", mock.Anything).Return(map[models.OrderStatus]int64{
		models.OrderStatusPending:   2,
		models.OrderStatusCompleted: 5,
		models.OrderStatusFailed:    1,
	}, nil)
	repo.On("Revenue", mock.Anything).Return(decimal.RequireFromString("1249.50"), nil)

	svc := services.NewOrderService(repo, zap.NewNop())
	stats, svcErr := svc.Stats(context.Background())

	require.Nil(t, svcErr)
	assert.Equal(t, int64(8), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.PendingOrders)
	assert.Equal(t, int64(5), stats.CompletedOrders)
	assert.Equal(t, int64(1), stats.FailedOrders)
	assert.True(t, stats.Revenue.Equal(decimal.RequireFromString("1249.5")))
}

func TestStats_CountError(t *testing.T) {
	repo := new(mockOrderRepo)
	repo.On("CountByStatus", mock.Anything).Return(nil, errors.New("boom"))

	svc := services.NewOrderService(repo, zap.NewNop())
	_, svcErr := svc.Stats(context.Background())
	require.NotNil(t, svcErr)
	assert.Equal(t, 500, svcErr.StatusCode)
}
