package controllers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/luxe-storefront/common/auth"
	"github.com/yashrajoria/luxe-storefront/controllers"
	"github.com/yashrajoria/luxe-storefront/models"
	"github.com/yashrajoria/luxe-storefront/routes"
	"github.com/yashrajoria/luxe-storefront/services"
)

// --- Mock OrderService ---

type mockOrderService struct {
	accountFn func(ctx context.Context, userID, email string, page, limit int) (*models.OrderPage, *services.ServiceError)
	listFn    func(ctx context.Context, page, limit int) (*models.OrderPage, *services.ServiceError)
	getFn     func(ctx context.Context, id uuid.UUID) (*models.Order, *services.ServiceError)
	updateFn  func(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, *services.ServiceError)
	statsFn   func(ctx context.Context) (*models.OrderStats, *services.ServiceError)
}

func (m *mockOrderService) ListAccountOrders(ctx context.Context, userID, email string, page, limit int) (*models.OrderPage, *services.ServiceError) {
	return m.accountFn(ctx, userID, email, page, limit)
}
func (m *mockOrderService) ListOrders(ctx context.Context, page, limit int) (*models.OrderPage, *services.ServiceError) {
	return m.listFn(ctx, page, limit)
}
func (m *mockOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, *services.ServiceError) {
	return m.getFn(ctx, id)
}
func (m *mockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, *services.ServiceError) {
	return m.updateFn(ctx, id, status)
}
func (m *mockOrderService) Stats(ctx context.Context) (*models.OrderStats, *services.ServiceError) {
	return m.statsFn(ctx)
}

// --- Helpers ---

func setupOrderRouter(svc services.OrderService) *gin.Engine {
	r := gin.New()
	routes.RegisterOrderRoutes(r, controllers.NewOrderController(svc), auth.NewTokenParser(testJWTSecret))
	return r
}

func bearer(t *testing.T, userID, email, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"typ":   "access",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func authed(t *testing.T, r http.Handler, method, path, authz string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, stringsReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- Tests ---

func TestOrders_AccountRequiresAuth(t *testing.T) {
	r := setupOrderRouter(&mockOrderService{})
	w := authed(t, r, http.MethodGet, "/account/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrders_AccountListsCallerOrders(t *testing.T) {
	var gotUser, gotEmail string
	var gotPage, gotLimit int
	svc := &mockOrderService{
		accountFn: func(_ context.Context, userID, email string, page, limit int) (*models.OrderPage, *services.ServiceError) {
			gotUser, gotEmail, gotPage, gotLimit = userID, email, page, limit
			return &models.OrderPage{
				Orders: []models.Order{{ID: uuid.New(), TotalAmount: decimal.NewFromInt(100)}},
				Meta:   models.MetaData{Page: page, Limit: limit, TotalOrders: 1, TotalPages: 1},
			}, nil
		},
	}
	r := setupOrderRouter(svc)

	w := authed(t, r, http.MethodGet, "/account/orders?page=2&limit=500", bearer(t, "user-1", "u1@example.com", "customer"), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, "u1@example.com", gotEmail)
	assert.Equal(t, 2, gotPage)
	assert.Equal(t, 100, gotLimit)

	body := decode(t, w)
	assert.Len(t, body["orders"], 1)
	assert.NotNil(t, body["meta"])
}

func TestOrders_AdminRequiresAdminRole(t *testing.T) {
	r := setupOrderRouter(&mockOrderService{})
	w := authed(t, r, http.MethodGet, "/admin/orders", bearer(t, "user-1", "u1@example.com", "customer"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrders_AdminList(t *testing.T) {
	svc := &mockOrderService{
		listFn: func(_ context.Context, page, limit int) (*models.OrderPage, *services.ServiceError) {
			assert.Equal(t, 1, page)
			assert.Equal(t, 10, limit)
			return &models.OrderPage{Orders: []models.Order{}}, nil
		},
	}
	r := setupOrderRouter(svc)
	w := authed(t, r, http.MethodGet, "/admin/orders?page=abc", bearer(t, "admin-1", "a@example.com", "admin"), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrders_UpdateStatus(t *testing.T) {
	id := uuid.New()
	svc := &mockOrderService{
		updateFn: func(_ context.Context, gotID uuid.UUID, status models.OrderStatus) (*models.Order, *services.ServiceError) {
			assert.Equal(t, id, gotID)
			if !status.Valid() {
				return nil, &services.ServiceError{StatusCode: 400, Message: "Invalid order status"}
			}
			return &models.Order{ID: id, Status: status}, nil
		},
	}
	r := setupOrderRouter(svc)
	admin := bearer(t, "admin-1", "a@example.com", "admin")

	w := authed(t, r, http.MethodPatch, "/admin/orders/"+id.String()+"/status", admin, `{"status":"failed"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "failed", decode(t, w)["order"].(map[string]interface{})["status"])

	w = authed(t, r, http.MethodPatch, "/admin/orders/"+id.String()+"/status", admin, `{"status":"shipped"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = authed(t, r, http.MethodPatch, "/admin/orders/not-a-uuid/status", admin, `{"status":"failed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrders_GetNotFound(t *testing.T) {
	svc := &mockOrderService{
		getFn: func(context.Context, uuid.UUID) (*models.Order, *services.ServiceError) {
			return nil, &services.ServiceError{StatusCode: 404, Message: "Order not found"}
		},
	}
	r := setupOrderRouter(svc)
	w := authed(t, r, http.MethodGet, "/admin/orders/"+uuid.NewString(), bearer(t, "admin-1", "a@example.com", "admin"), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", decode(t, w)["error"])
}

func TestOrders_Stats(t *testing.T) {
	svc := &mockOrderService{
		statsFn: func(context.Context) (*models.OrderStats, *services.ServiceError) {
			return &models.OrderStats{TotalOrders: 4, PendingOrders: 1, CompletedOrders: 3, Revenue: decimal.RequireFromString("999.99")}, nil
		},
	}
	r := setupOrderRouter(svc)
	w := authed(t, r, http.MethodGet, "/admin/stats", bearer(t, "admin-1", "a@example.com", "admin"), "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(4), body["total_orders"])
	assert.Equal(t, 999.99, body["revenue"])
}
