package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yashrajoria/luxe-storefront/models"
	aws_pkg "github.com/yashrajoria/luxe-storefront/pkg/aws"
)

// HostedWidget tracks widgets the browser has opened and routes the gateway's success
// callback back to whoever is awaiting it. Each order id gets one delivery slot.
type HostedWidget struct {
	secret  string
	ttl     time.Duration
	log     *zap.Logger
	metrics *aws_pkg.MetricsClient

	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch        chan models.PaymentSuccess
	delivered bool
	openedAt  time.Time
}

// NewHostedWidget returns a widget hub. When signingSecret is set, Deliver requires a
// valid Razorpay signature. Slots older than ttl are dropped by Sweep.
func NewHostedWidget(signingSecret string, ttl time.Duration, log *zap.Logger) *HostedWidget {
	if log == nil {
		log = zap.NewNop()
	}
	return &HostedWidget{
		secret: signingSecret,
		ttl:    ttl,
		log:    log,
		slots:  make(map[string]*slot),
	}
}

// WithMetrics records verified payments that no checkout is awaiting.
func (w *HostedWidget) WithMetrics(m *aws_pkg.MetricsClient) *HostedWidget {
	w.metrics = m
	return w
}

func (w *HostedWidget) Open(_ context.Context, cfg models.WidgetConfig) (<-chan models.PaymentSuccess, error) {
	if cfg.OrderID == "" {
		return nil, ErrMissingOrderID
	}
	ch := make(chan models.PaymentSuccess, 1)

	w.mu.Lock()
	w.slots[cfg.OrderID] = &slot{ch: ch, openedAt: time.Now()}
	w.mu.Unlock()

	w.log.Debug("payment widget opened",
		zap.String("provider", cfg.Provider),
		zap.String("gateway_order_id", cfg.OrderID),
		zap.Int64("amount", cfg.Amount),
	)
	return ch, nil
}

// Deliver hands a browser-reported success to the awaiting checkout after checking its
// signature.
func (w *HostedWidget) Deliver(success models.PaymentSuccess) error {
	if w.secret != "" && !VerifySignature(success.OrderID, success.PaymentID, success.Signature, w.secret) {
		return ErrInvalidSignature
	}
	return w.Resolve(success)
}

// Resolve delivers a success that was already authenticated, e.g. by a signed webhook.
// A payment for an order nobody awaits is money without an order record, so it is
// logged and counted.
func (w *HostedWidget) Resolve(success models.PaymentSuccess) error {
	err := w.resolve(success)
	if errors.Is(err, ErrUnknownPaymentOrder) {
		w.log.Warn("verified payment has no awaiting checkout",
			zap.String("gateway_order_id", success.OrderID),
			zap.String("payment_id", success.PaymentID),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = w.metrics.RecordCount(ctx, aws_pkg.MetricPaymentUnmatched, nil)
	}
	return err
}

func (w *HostedWidget) resolve(success models.PaymentSuccess) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.slots[success.OrderID]
	if !ok {
		return ErrUnknownPaymentOrder
	}
	if s.delivered {
		return ErrAlreadyDelivered
	}
	s.delivered = true
	s.ch <- success
	close(s.ch)
	return nil
}

func (w *HostedWidget) Release(orderID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s, ok := w.slots[orderID]; ok {
		if !s.delivered {
			close(s.ch)
		}
		delete(w.slots, orderID)
	}
}

// Pending is the number of open slots, delivered or not.
func (w *HostedWidget) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.slots)
}

// Sweep drops slots opened before now-ttl.
func (w *HostedWidget) Sweep(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for id, s := range w.slots {
		if now.Sub(s.openedAt) > w.ttl {
			if !s.delivered {
				close(s.ch)
			}
			delete(w.slots, id)
			n++
		}
	}
	return n
}

// Run sweeps expired slots until ctx is done.
func (w *HostedWidget) Run(ctx context.Context) {
	interval := w.ttl / 2
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
			if n := w.Sweep(now); n > 0 {
				w.log.Info("expired payment widgets dropped", zap.Int("count", n))
			}
		}
	}
}
