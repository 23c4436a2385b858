package checkout

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry holds the live checkout flows. A session has at most one flow; starting a
// new one abandons the previous.
type Registry struct {
	deps    *Deps
	idleTTL time.Duration

	mu        sync.Mutex
	flows     map[string]*Flow
	bySession map[string]string
}

func NewRegistry(deps Deps, idleTTL time.Duration) *Registry {
	deps.defaults()
	return &Registry{
		deps:      &deps,
		idleTTL:   idleTTL,
		flows:     make(map[string]*Flow),
		bySession: make(map[string]string),
	}
}

// Start opens a fresh flow at the shipping step. userID is nil for guests.
func (r *Registry) Start(sessionID string, userID *string) *Flow {
	f := newFlow(r.deps, sessionID, userID)

	r.mu.Lock()
	prev := r.flows[r.bySession[sessionID]]
	r.flows[f.id] = f
	r.bySession[sessionID] = f.id
	if prev != nil {
		delete(r.flows, prev.id)
	}
	r.mu.Unlock()

	if prev != nil {
		prev.Abandon()
	}
	r.deps.Log.Info("checkout started", zap.String("checkout_id", f.id), zap.String("session_id", sessionID))
	return f
}

// Get returns the flow if it exists and belongs to sessionID.
func (r *Registry) Get(id, sessionID string) (*Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flows[id]
	if !ok || f.sessionID != sessionID {
		return nil, ErrFlowNotFound
	}
	return f, nil
}

// Abandon retires a flow; any payment it was awaiting is no longer awaited.
func (r *Registry) Abandon(id, sessionID string) error {
	r.mu.Lock()
	f, ok := r.flows[id]
	if !ok || f.sessionID != sessionID {
		r.mu.Unlock()
		return ErrFlowNotFound
	}
	r.removeLocked(f)
	r.mu.Unlock()

	f.Abandon()
	return nil
}

// Len is the number of live flows.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

// Sweep abandons flows untouched for longer than the idle TTL.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var idle []*Flow
	for _, f := range r.flows {
		if f.isIdle(now, r.idleTTL) {
			idle = append(idle, f)
			r.removeLocked(f)
		}
	}
	r.mu.Unlock()

	for _, f := range idle {
		f.Abandon()
	}
	return len(idle)
}

// Run sweeps idle flows until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.idleTTL / 4
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				r.deps.Log.Info("idle checkouts swept", zap.Int("count", n))
			}
		}
	}
}

func (r *Registry) removeLocked(f *Flow) {
	delete(r.flows, f.id)
	if r.bySession[f.sessionID] == f.id {
		delete(r.bySession, f.sessionID)
	}
}
