package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/luxe-storefront/cart"
	"github.com/yashrajoria/luxe-storefront/catalog"
	"github.com/yashrajoria/luxe-storefront/models"
	"github.com/yashrajoria/luxe-storefront/payment"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Fakes ---

type memStorage struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, cart.ErrNotFound
	}
	return b, nil
}

func (m *memStorage) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

type fakeGateway struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount decimal.Decimal) (*models.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	if !amount.IsPositive() {
		return nil, payment.ErrInvalidAmount
	}
	return &models.GatewayOrder{
		ID:       "order_" + uuid.NewString()[:8],
		Amount:   payment.ToMinorUnits(amount),
		Currency: "INR",
	}, nil
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []*models.Order
}

func (o *fakeOrders) Create(_ context.Context, order *models.Order) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.orders = append(o.orders, order)
	return nil
}

func (o *fakeOrders) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.orders)
}

// --- Helpers ---

func testCatalog() *catalog.StaticSource {
	return catalog.NewStaticSource([]models.Product{
		{ID: "1", Name: "Headphones", Price: decimal.RequireFromString("249.99")},
		{ID: "2", Name: "Watch", Price: decimal.RequireFromString("100")},
		{ID: "3", Name: "Keyboard", Price: decimal.RequireFromString("75.50")},
	})
}

func doJSON(t *testing.T, r http.Handler, method, path, sessionID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func stringsReader(s string) io.Reader { return strings.NewReader(s) }
