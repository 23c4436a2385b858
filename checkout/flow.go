package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yashrajoria/luxe-storefront/cart"
	"github.com/yashrajoria/luxe-storefront/events"
	"github.com/yashrajoria/luxe-storefront/models"
	"github.com/yashrajoria/luxe-storefront/payment"
	aws_pkg "github.com/yashrajoria/luxe-storefront/pkg/aws"
)

// PersistWarningMessage is recorded on a flow whose payment succeeded but whose order
// record could not be written.
const PersistWarningMessage = "Payment successful but failed to save order record."

const defaultPersistTimeout = 10 * time.Second

// OrderSink is where finalized orders are written.
type OrderSink interface {
	Create(ctx context.Context, order *models.Order) error
}

// CartAccess gives exclusive access to a session's cart. *cart.Manager implements it.
type CartAccess interface {
	Do(ctx context.Context, sessionID string, fn func(*cart.Store) error) error
}

// Branding is the store identity shown in the payment widget.
type Branding struct {
	Provider    string
	Key         string
	Name        string
	Description string
}

// Deps are the collaborators shared by every flow.
type Deps struct {
	Payments payment.OrderCreator
	Widget   payment.Widget
	Orders   OrderSink
	Carts    CartAccess
	Events   events.Publisher
	Metrics  *aws_pkg.MetricsClient
	Log      *zap.Logger
	Branding Branding

	PersistTimeout time.Duration
}

func (d *Deps) defaults() {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	if d.PersistTimeout <= 0 {
		d.PersistTimeout = defaultPersistTimeout
	}
}

// Flow is one shopper's walk through Shipping -> Payment -> Review -> Confirmed.
// All methods are safe for concurrent use.
type Flow struct {
	id        string
	sessionID string
	userID    *string
	deps      *Deps
	log       *zap.Logger

	mu             sync.Mutex
	step           Step
	shipping       models.ShippingInfo
	loading        bool
	abandoned      bool
	settled        bool
	awaitCtx       context.Context
	stopAwait      context.CancelFunc
	gatewayOrderID string
	opened         map[string]bool // every gateway order this flow opened a widget for
	awaiting       map[string]bool // widgets still open
	order          *models.Order
	warning        string
	updatedAt      time.Time
	confirmed      chan struct{}
}

// pending is what a Complete call captured for the payment it is awaiting.
type pending struct {
	gatewayOrder *models.GatewayOrder
	paid         <-chan models.PaymentSuccess
	items        models.OrderItems
	total        decimal.Decimal
	shipping     models.ShippingInfo
}

func newFlow(deps *Deps, sessionID string, userID *string) *Flow {
	id := uuid.NewString()
	awaitCtx, stopAwait := context.WithCancel(context.Background())
	return &Flow{
		id:        id,
		sessionID: sessionID,
		userID:    userID,
		deps:      deps,
		log:       deps.Log.With(zap.String("checkout_id", id), zap.String("session_id", sessionID)),
		step:      StepShipping,
		updatedAt: time.Now(),
		confirmed: make(chan struct{}),
		awaitCtx:  awaitCtx,
		stopAwait: stopAwait,
		opened:    make(map[string]bool),
		awaiting:  make(map[string]bool),
	}
}

func (f *Flow) ID() string        { return f.id }
func (f *Flow) SessionID() string { return f.sessionID }

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) Shipping() models.ShippingInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shipping
}

// Loading is true while Complete is creating the remote payment order.
func (f *Flow) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// GatewayOrderID is the remote order of the most recent Complete.
func (f *Flow) GatewayOrderID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gatewayOrderID
}

// OwnsPaymentOrder reports whether Complete opened a widget for gatewayOrderID, including
// attempts superseded by a retry.
func (f *Flow) OwnsPaymentOrder(gatewayOrderID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened[gatewayOrderID]
}

// AwaitingPayment is the number of payment widgets still open for this flow.
func (f *Flow) AwaitingPayment() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.awaiting)
}

// Order is the written order once the flow is confirmed, nil otherwise.
func (f *Flow) Order() *models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.order
}

// PersistWarning is non-empty when payment succeeded but the order insert failed.
func (f *Flow) PersistWarning() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.warning
}

// Confirmed is closed when the flow reaches StepConfirmed.
func (f *Flow) Confirmed() <-chan struct{} {
	return f.confirmed
}

func (f *Flow) UpdatedAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updatedAt
}

// CanAdvance mirrors the enabled state of the forward button.
func (f *Flow) CanAdvance() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canAdvanceLocked()
}

func (f *Flow) canAdvanceLocked() bool {
	if f.loading || f.abandoned || f.step.IsTerminal() {
		return false
	}
	if f.step == StepShipping {
		return ValidateShipping(f.shipping) == nil
	}
	return true
}

// SetShipping replaces the shipping form. It is only editable on the shipping step.
func (f *Flow) SetShipping(info models.ShippingInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.usableLocked(); err != nil {
		return err
	}
	if f.step != StepShipping {
		return ErrInvalidTransition
	}
	f.shipping = NormalizeShipping(info)
	f.touchLocked()
	return nil
}

// Next moves forward one step. Leaving the shipping step requires FullName and Email;
// leaving Review is Complete's job.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.usableLocked(); err != nil {
		return err
	}
	if f.loading {
		return ErrCheckoutBusy
	}
	if f.step == StepShipping {
		if err := ValidateShipping(f.shipping); err != nil {
			return err
		}
	}
	to := f.step + 1
	if to == StepConfirmed || !CanTransitionTo(f.step, to) {
		return ErrInvalidTransition
	}
	f.step = to
	f.touchLocked()
	return nil
}

// Back moves back one step from Payment or Review. It is refused while a payment order
// is being created or a payment widget is still open, since a payment can only confirm
// the flow from Review.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.usableLocked(); err != nil {
		return err
	}
	if f.loading || f.settled || len(f.awaiting) > 0 {
		return ErrCheckoutBusy
	}
	to := f.step - 1
	if !CanTransitionTo(f.step, to) {
		return ErrInvalidTransition
	}
	f.step = to
	f.touchLocked()
	return nil
}

// Complete creates exactly one remote payment order for the cart total and opens the
// payment widget for it. On failure the flow stays in Review with the cart untouched and
// the caller may retry. On success the flow keeps waiting in Review until the widget
// reports payment; the returned config is what the browser renders.
func (f *Flow) Complete(ctx context.Context) (models.WidgetConfig, error) {
	f.mu.Lock()
	if err := f.usableLocked(); err != nil {
		f.mu.Unlock()
		return models.WidgetConfig{}, err
	}
	if f.step != StepReview || f.settled {
		f.mu.Unlock()
		return models.WidgetConfig{}, ErrInvalidTransition
	}
	if f.loading {
		f.mu.Unlock()
		return models.WidgetConfig{}, ErrCheckoutBusy
	}
	f.loading = true
	shipping := f.shipping
	f.touchLocked()
	f.mu.Unlock()

	cfg, p, err := f.openPayment(ctx, shipping)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	f.touchLocked()
	if err != nil {
		return models.WidgetConfig{}, err
	}
	if f.abandoned {
		f.deps.Widget.Release(cfg.OrderID)
		return models.WidgetConfig{}, ErrFlowNotFound
	}
	// an earlier attempt may have been paid while this order was being created
	if f.step != StepReview || f.settled {
		f.deps.Widget.Release(cfg.OrderID)
		return models.WidgetConfig{}, ErrInvalidTransition
	}

	// earlier widgets stay open: the shopper may still pay in any of them
	id := p.gatewayOrder.ID
	f.gatewayOrderID = id
	f.opened[id] = true
	f.awaiting[id] = true
	go f.await(p)

	return cfg, nil
}

func (f *Flow) openPayment(ctx context.Context, shipping models.ShippingInfo) (models.WidgetConfig, *pending, error) {
	var p pending
	p.shipping = shipping
	err := f.deps.Carts.Do(ctx, f.sessionID, func(s *cart.Store) error {
		p.items = models.OrderItems(s.Items())
		p.total = s.Total()
		return nil
	})
	if err != nil {
		return models.WidgetConfig{}, nil, err
	}
	if len(p.items) == 0 {
		return models.WidgetConfig{}, nil, ErrEmptyCart
	}

	dims := map[string]string{"provider": f.deps.Branding.Provider}
	_ = f.deps.Metrics.RecordCount(ctx, aws_pkg.MetricCartCheckouts, dims)

	gwOrder, err := f.deps.Payments.CreateOrder(ctx, p.total)
	if err != nil {
		f.log.Warn("payment order creation failed", zap.String("total", p.total.String()), zap.Error(err))
		_ = f.deps.Metrics.RecordCount(ctx, aws_pkg.MetricPaymentOrderFailed, dims)
		return models.WidgetConfig{}, nil, fmt.Errorf("create payment order: %w", err)
	}
	_ = f.deps.Metrics.RecordCount(ctx, aws_pkg.MetricPaymentOrderCreated, dims)
	p.gatewayOrder = gwOrder

	b := f.deps.Branding
	cfg := models.WidgetConfig{
		Provider:     b.Provider,
		Key:          b.Key,
		Amount:       gwOrder.Amount,
		Currency:     gwOrder.Currency,
		Name:         b.Name,
		Description:  b.Description,
		OrderID:      gwOrder.ID,
		ClientSecret: gwOrder.ClientSecret,
		Prefill: models.Prefill{
			Name:  shipping.FullName,
			Email: shipping.Email,
		},
	}

	paid, err := f.deps.Widget.Open(ctx, cfg)
	if err != nil {
		return models.WidgetConfig{}, nil, fmt.Errorf("open payment widget: %w", err)
	}
	p.paid = paid

	f.log.Info("awaiting payment",
		zap.String("gateway_order_id", gwOrder.ID),
		zap.Int64("amount", gwOrder.Amount),
		zap.String("currency", gwOrder.Currency),
	)
	return cfg, &p, nil
}

// await waits for the widget's single delivery until the flow is abandoned or the widget
// expires.
func (f *Flow) await(p *pending) {
	id := p.gatewayOrder.ID
	defer func() {
		f.mu.Lock()
		delete(f.awaiting, id)
		f.touchLocked()
		f.mu.Unlock()
	}()

	select {
	case <-f.awaitCtx.Done():
		f.deps.Widget.Release(id)
		f.log.Debug("stopped awaiting payment", zap.String("gateway_order_id", id))
	case success, ok := <-p.paid:
		if !ok {
			f.log.Debug("payment widget expired", zap.String("gateway_order_id", id))
			return
		}
		f.finalize(success, p)
	}
}

// finalize records a paid order. The first payment of a flow also clears the cart and
// confirms it; a later payment for a superseded widget is recorded and flagged. A failed
// insert is only a warning: the money has already moved and payment is never retried.
func (f *Flow) finalize(success models.PaymentSuccess, p *pending) {
	ctx, cancel := context.WithTimeout(context.Background(), f.deps.PersistTimeout)
	defer cancel()

	f.mu.Lock()
	first := !f.settled
	f.settled = true
	f.mu.Unlock()

	log := f.log.With(
		zap.String("gateway_order_id", p.gatewayOrder.ID),
		zap.String("payment_id", success.PaymentID),
	)
	dims := map[string]string{"provider": f.deps.Branding.Provider}
	_ = f.deps.Metrics.RecordCount(ctx, aws_pkg.MetricPaymentSucceeded, dims)

	order := &models.Order{
		ID:             uuid.New(),
		TotalAmount:    p.total,
		Currency:       p.gatewayOrder.Currency,
		Status:         models.OrderStatusCompleted,
		Items:          p.items,
		PaymentID:      success.PaymentID,
		GatewayOrderID: p.gatewayOrder.ID,
		Email:          p.shipping.Email,
		UserID:         f.userID,
		FullName:       p.shipping.FullName,
		Address:        p.shipping.Address,
		City:           p.shipping.City,
		ZipCode:        p.shipping.ZipCode,
	}

	var warning string
	if err := f.deps.Orders.Create(ctx, order); err != nil {
		log.Warn("payment succeeded but order record was not saved", zap.Error(err))
		_ = f.deps.Metrics.RecordCount(ctx, aws_pkg.MetricOrderPersistFailed, dims)
		warning = PersistWarningMessage
	} else {
		log.Info("order recorded", zap.String("order_id", order.ID.String()))
		_ = f.deps.Metrics.RecordCount(ctx, aws_pkg.MetricOrdersCompleted, dims)
		_ = f.deps.Metrics.RecordValue(ctx, aws_pkg.MetricOrderRevenue, p.total.InexactFloat64(), dims)
		if err := f.deps.Events.Publish(ctx, models.NewOrderCompletedEvent(order)); err != nil {
			log.Warn("failed to publish order event", zap.Error(err))
		}
	}

	if !first {
		log.Warn("checkout was paid more than once", zap.String("order_id", order.ID.String()))
		_ = f.deps.Metrics.RecordCount(ctx, aws_pkg.MetricDuplicatePayment, dims)
		return
	}

	err := f.deps.Carts.Do(ctx, f.sessionID, func(s *cart.Store) error {
		return s.ClearCart(ctx)
	})
	if err != nil {
		log.Warn("failed to clear cart after payment", zap.Error(err))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = StepConfirmed
	f.order = order
	f.warning = warning
	f.touchLocked()
	close(f.confirmed)
}

// Abandon stops awaiting any open payment widget and retires the flow.
func (f *Flow) Abandon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.abandoned {
		return
	}
	f.abandoned = true
	f.stopAwait()
}

// View renders the flow. Items and total come from the written order once confirmed;
// before that the caller supplies the live cart.
func (f *Flow) View(items []models.CartLine, total decimal.Decimal) models.CheckoutView {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := models.CheckoutView{
		ID:             f.id,
		Step:           int(f.step),
		StepName:       f.step.String(),
		Shipping:       f.shipping,
		Loading:        f.loading,
		CanAdvance:     f.canAdvanceLocked(),
		Items:          items,
		Total:          total,
		GatewayOrderID: f.gatewayOrderID,
		Warning:        f.warning,
		UpdatedAt:      f.updatedAt,
	}
	if f.order != nil {
		v.Items = f.order.Items
		v.Total = f.order.TotalAmount
		v.OrderID = f.order.ID.String()
	}
	return v
}

func (f *Flow) usableLocked() error {
	if f.abandoned {
		return ErrFlowNotFound
	}
	return nil
}

func (f *Flow) touchLocked() {
	f.updatedAt = time.Now()
}

func (f *Flow) isIdle(now time.Time, ttl time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.loading && len(f.awaiting) == 0 && now.Sub(f.updatedAt) > ttl
}
