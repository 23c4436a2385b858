package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/yashrajoria/luxe-storefront/models"
)

// Manager hands out session carts. Calls for the same session are serialized so every
// request sees the cart the previous one left behind.
type Manager struct {
	storage Storage
	log     *zap.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewManager(storage Storage, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		storage: storage,
		log:     log,
		locks:   make(map[string]*sessionLock),
	}
}

// Do restores the session's cart and runs fn with exclusive access to it.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(*Store) error) error {
	l := m.acquire(sessionID)
	defer m.release(sessionID, l)

	store := Restore(ctx, m.storage, Key(sessionID), m.log.With(zap.String("session_id", sessionID)))
	return fn(store)
}

// View returns a read-only copy of the session's cart.
func (m *Manager) View(ctx context.Context, sessionID string) models.CartView {
	var view models.CartView
	_ = m.Do(ctx, sessionID, func(s *Store) error {
		view = ViewOf(sessionID, s)
		return nil
	})
	return view
}

// Clear empties the session's cart.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	return m.Do(ctx, sessionID, func(s *Store) error {
		return s.ClearCart(ctx)
	})
}

// ViewOf renders a store for the HTTP API.
func ViewOf(sessionID string, s *Store) models.CartView {
	return models.CartView{
		SessionID: sessionID,
		Items:     s.Items(),
		Count:     s.Count(),
		Total:     s.Total(),
	}
}

func (m *Manager) acquire(sessionID string) *sessionLock {
	m.mu.Lock()
	l, ok := m.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		m.locks[sessionID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return l
}

func (m *Manager) release(sessionID string, l *sessionLock) {
	l.mu.Unlock()

	m.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, sessionID)
	}
	m.mu.Unlock()
}
