package services_test

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/yashrajoria/luxe-storefront/models"
)

// --- Mock OrderRepository ---

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderRepo) FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) FindByEmail(ctx context.Context, email string, page, limit int) ([]models.Order, int64, error) {
	args := m.Called(ctx, email, page, limit)
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockOrderRepo) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	args := m.Called(ctx)
	if c := args.Get(0); c != nil {
		return c.(map[models.OrderStatus]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) Revenue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock ProductRepository ---

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) List(ctx context.Context) ([]models.ProductRecord, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]models.ProductRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) FindByID(ctx context.Context, id string) (*models.ProductRecord, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.ProductRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) Create(ctx context.Context, product *models.ProductRecord) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock ObjectUploader ---

type mockUploader struct {
	keys []string
	body []byte
	err  error
}

func (m *mockUploader) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.keys = append(m.keys, key)
	m.body, _ = io.ReadAll(body)
	return "https://cdn.example.com/products/" + key, nil
}
