package cart_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/luxe-storefront/cart"
	"github.com/yashrajoria/luxe-storefront/models"
)

// ---- in-memory storage ----

type memStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	loadErr error
	saveErr error
	saves   int
}

func newMemStorage() *memStorage {
	return &memStorage{data: map[string][]byte{}}
}

func (m *memStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	d, ok := m.data[key]
	if !ok {
		return nil, cart.ErrNotFound
	}
	return d, nil
}

func (m *memStorage) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = data
	return nil
}

func product(id string, price string) models.Product {
	return models.Product{ID: id, Name: "Product " + id, Price: decimal.RequireFromString(price)}
}

// ---- tests ----

func TestAddItem_NewAndExisting(t *testing.T) {
	ctx := context.Background()
	s := cart.New(newMemStorage(), "k", nil)

	require.NoError(t, s.AddItem(ctx, product("1", "10")))
	require.NoError(t, s.AddItem(ctx, product("1", "10")))
	require.NoError(t, s.AddItem(ctx, product("2", "5.50")))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "2", items[1].ID)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, 3, s.Count())
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	s := cart.New(newMemStorage(), "k", nil)
	require.NoError(t, s.AddItem(ctx, product("1", "10")))
	require.NoError(t, s.AddItem(ctx, product("2", "10")))

	require.NoError(t, s.RemoveItem(ctx, "1"))
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "2", s.Items()[0].ID)

	// absent id is a no-op
	require.NoError(t, s.RemoveItem(ctx, "missing"))
	assert.Len(t, s.Items(), 1)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	s := cart.New(newMemStorage(), "k", nil)
	require.NoError(t, s.AddItem(ctx, product("1", "10")))
	require.NoError(t, s.AddItem(ctx, product("2", "3")))

	require.NoError(t, s.UpdateQuantity(ctx, "1", 4))
	assert.Equal(t, 4, s.Items()[0].Quantity)

	require.NoError(t, s.UpdateQuantity(ctx, "1", 0))
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "2", s.Items()[0].ID)

	require.NoError(t, s.UpdateQuantity(ctx, "2", -3))
	assert.Empty(t, s.Items())

	require.NoError(t, s.UpdateQuantity(ctx, "missing", 5))
	assert.Empty(t, s.Items())
}

func TestTotal(t *testing.T) {
	ctx := context.Background()
	s := cart.New(newMemStorage(), "k", nil)
	assert.True(t, s.Total().IsZero())

	require.NoError(t, s.AddItem(ctx, product("1", "19.99")))
	require.NoError(t, s.AddItem(ctx, product("1", "19.99")))
	require.NoError(t, s.AddItem(ctx, product("2", "0.01")))

	assert.True(t, decimal.RequireFromString("39.99").Equal(s.Total()), s.Total().String())
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	s := cart.New(storage, "k", nil)
	require.NoError(t, s.AddItem(ctx, product("1", "10")))

	require.NoError(t, s.ClearCart(ctx))
	assert.Empty(t, s.Items())
	assert.True(t, s.Total().IsZero())

	restored := cart.Restore(ctx, storage, "k", nil)
	assert.Empty(t, restored.Items())
}

func TestEveryMutationIsPersisted(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	s := cart.New(storage, "k", nil)

	require.NoError(t, s.AddItem(ctx, product("1", "10")))
	require.NoError(t, s.AddItem(ctx, product("2", "7")))
	require.NoError(t, s.UpdateQuantity(ctx, "2", 3))
	assert.Equal(t, 3, storage.saves)

	restored := cart.Restore(ctx, storage, "k", nil)
	assert.Equal(t, s.Items(), restored.Items())
	assert.True(t, s.Total().Equal(restored.Total()))
}

func TestPersistedShape(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	s := cart.New(storage, "k", nil)
	require.NoError(t, s.AddItem(ctx, product("1", "10")))

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(storage.data["k"], &raw))
	assert.Contains(t, raw, "state")
	assert.Contains(t, raw, "version")

	var state struct {
		Items []map[string]interface{} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(raw["state"], &state))
	require.Len(t, state.Items, 1)
	assert.Equal(t, "1", state.Items[0]["id"])
	assert.Equal(t, float64(1), state.Items[0]["quantity"])
}

func TestSaveFailure_KeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	storage.saveErr = errors.New("disk full")
	s := cart.New(storage, "k", nil)

	err := s.AddItem(ctx, product("1", "10"))
	assert.Error(t, err)
	assert.Len(t, s.Items(), 1)
}

func TestRestore_Missing(t *testing.T) {
	s := cart.Restore(context.Background(), newMemStorage(), "nope", nil)
	assert.Empty(t, s.Items())
}

func TestRestore_Corrupted(t *testing.T) {
	storage := newMemStorage()
	storage.data["k"] = []byte("{not json")

	s := cart.Restore(context.Background(), storage, "k", nil)
	assert.Empty(t, s.Items())
	assert.True(t, s.Total().IsZero())
}

func TestRestore_LoadError(t *testing.T) {
	storage := newMemStorage()
	storage.loadErr = errors.New("connection refused")

	s := cart.Restore(context.Background(), storage, "k", nil)
	assert.Empty(t, s.Items())
}

func TestRestore_NormalizesStoredLines(t *testing.T) {
	storage := newMemStorage()
	storage.data["k"] = []byte(`{"state":{"items":[
		{"id":"1","name":"A","price":10,"quantity":1},
		{"id":"2","name":"B","price":5,"quantity":0},
		{"id":"1","name":"A","price":10,"quantity":2},
		{"id":"3","name":"C","price":-1,"quantity":1}
	]},"version":0}`)

	s := cart.Restore(context.Background(), storage, "k", nil)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestItems_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := cart.New(newMemStorage(), "k", nil)
	require.NoError(t, s.AddItem(ctx, product("1", "10")))

	items := s.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, s.Items()[0].Quantity)
}
