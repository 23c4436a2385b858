package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yashrajoria/luxe-storefront/models"
)

// StorageName is the fixed name of the persisted cart slot.
const StorageName = "cart-storage"

// snapshotVersion is bumped when the persisted layout changes incompatibly.
const snapshotVersion = 0

// ErrNotFound is returned by Storage.Load when the slot has never been written.
var ErrNotFound = errors.New("cart snapshot not found")

// Storage is the persistent key-value slot a Store snapshots itself into.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

type snapshot struct {
	State   models.Cart `json:"state"`
	Version int         `json:"version"`
}

// Store is the cart of one browser session. It is not safe for concurrent use; Manager
// serializes access per session.
//
// Every mutation is applied in memory first and then snapshotted to storage. A non-nil
// error from a mutating method only means the snapshot write failed.
type Store struct {
	key     string
	storage Storage
	log     *zap.Logger
	items   []models.CartLine
}

// New returns an empty cart bound to key.
func New(storage Storage, key string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{key: key, storage: storage, log: log}
}

// Restore loads the cart stored under key. A missing, unreadable or malformed value
// yields an empty cart; Restore never fails.
func Restore(ctx context.Context, storage Storage, key string, log *zap.Logger) *Store {
	s := New(storage, key, log)

	data, err := storage.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("cart restore failed, starting empty", zap.String("key", key), zap.Error(err))
		}
		return s
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.Warn("cart snapshot is malformed, starting empty", zap.String("key", key), zap.Error(err))
		return s
	}

	s.items = normalize(snap.State.Items)
	return s
}

// normalize drops lines that would break the cart invariants and merges duplicates.
func normalize(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.ID == "" || l.Quantity <= 0 || l.Price.IsNegative() {
			continue
		}
		if i, ok := index[l.ID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ID] = len(out)
		out = append(out, l)
	}
	return out
}

// Key returns the storage slot for a session.
func (s *Store) Key() string { return s.key }

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []models.CartLine {
	out := make([]models.CartLine, len(s.items))
	copy(out, s.items)
	return out
}

// Count is the number of units across all lines.
func (s *Store) Count() int {
	n := 0
	for _, l := range s.items {
		n += l.Quantity
	}
	return n
}

// AddItem increments the line for product.ID or appends a new line with quantity 1.
func (s *Store) AddItem(ctx context.Context, product models.Product) error {
	for i := range s.items {
		if s.items[i].ID == product.ID {
			s.items[i].Quantity++
			return s.persist(ctx)
		}
	}
	s.items = append(s.items, models.CartLine{Product: product, Quantity: 1})
	return s.persist(ctx)
}

// RemoveItem deletes the line for productID. Removing an absent line is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.items = s.filter(func(l models.CartLine) bool { return l.ID != productID })
	return s.persist(ctx)
}

// UpdateQuantity sets the line's quantity to max(0, quantity); a zero quantity removes
// the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 0 {
		quantity = 0
	}
	for i := range s.items {
		if s.items[i].ID == productID {
			s.items[i].Quantity = quantity
		}
	}
	s.items = s.filter(func(l models.CartLine) bool { return l.Quantity > 0 })
	return s.persist(ctx)
}

// ClearCart empties the cart unconditionally.
func (s *Store) ClearCart(ctx context.Context) error {
	s.items = nil
	return s.persist(ctx)
}

// Total is the sum of price * quantity over all lines, computed on every call.
func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.items {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Snapshot returns a detached copy of the cart for order records.
func (s *Store) Snapshot() models.Cart {
	return models.Cart{Items: s.Items()}
}

func (s *Store) filter(keep func(models.CartLine) bool) []models.CartLine {
	out := s.items[:0]
	for _, l := range s.items {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func (s *Store) persist(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []models.CartLine{}
	}
	data, err := json.Marshal(snapshot{State: models.Cart{Items: items}, Version: snapshotVersion})
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		s.log.Warn("cart snapshot write failed", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
