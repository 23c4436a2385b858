package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashrajoria/luxe-storefront/cart"
	"github.com/yashrajoria/luxe-storefront/checkout"
	"github.com/yashrajoria/luxe-storefront/common/logger"
	"github.com/yashrajoria/luxe-storefront/common/middleware"
	"github.com/yashrajoria/luxe-storefront/models"
	"github.com/yashrajoria/luxe-storefront/payment"
)

const defaultConfirmTimeout = 15 * time.Second

// PaymentDeliverer hands a browser-reported payment success to the awaiting flow.
type PaymentDeliverer interface {
	Deliver(success models.PaymentSuccess) error
}

// CheckoutController drives checkout flows over HTTP.
type CheckoutController struct {
	flows          *checkout.Registry
	carts          *cart.Manager
	deliverer      PaymentDeliverer
	confirmTimeout time.Duration
}

// NewCheckoutController wires the checkout endpoints. A nil deliverer means browser
// callbacks are not trusted and payment is confirmed by a gateway webhook instead; the
// payment endpoint then only waits for that confirmation.
func NewCheckoutController(flows *checkout.Registry, carts *cart.Manager, deliverer PaymentDeliverer, confirmTimeout time.Duration) *CheckoutController {
	if confirmTimeout <= 0 {
		confirmTimeout = defaultConfirmTimeout
	}
	return &CheckoutController{
		flows:          flows,
		carts:          carts,
		deliverer:      deliverer,
		confirmTimeout: confirmTimeout,
	}
}

// StartCheckout handles POST /checkout.
func (cc *CheckoutController) StartCheckout(ctx *gin.Context) {
	var userID *string
	if id := middleware.GetUserID(ctx); id != "" {
		userID = &id
	}
	flow := cc.flows.Start(middleware.GetSessionID(ctx), userID)

	if email := middleware.GetEmail(ctx); email != "" {
		_ = flow.SetShipping(models.ShippingInfo{Email: email})
	}
	ctx.JSON(http.StatusCreated, gin.H{"checkout": cc.view(ctx, flow)})
}

// GetCheckout handles GET /checkout/:id.
func (cc *CheckoutController) GetCheckout(ctx *gin.Context) {
	flow, ok := cc.flow(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"checkout": cc.view(ctx, flow)})
}

// SetShipping handles PUT /checkout/:id/shipping.
func (cc *CheckoutController) SetShipping(ctx *gin.Context) {
	flow, ok := cc.flow(ctx)
	if !ok {
		return
	}
	var req models.ShippingInfo
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if err := flow.SetShipping(req); err != nil {
		cc.fail(ctx, flow, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"checkout": cc.view(ctx, flow)})
}

// Next handles POST /checkout/:id/next.
func (cc *CheckoutController) Next(ctx *gin.Context) {
	flow, ok := cc.flow(ctx)
	if !ok {
		return
	}
	if err := flow.Next(); err != nil {
		cc.fail(ctx, flow, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"checkout": cc.view(ctx, flow)})
}

// Back handles POST /checkout/:id/back.
func (cc *CheckoutController) Back(ctx *gin.Context) {
	flow, ok := cc.flow(ctx)
	if !ok {
		return
	}
	if err := flow.Back(); err != nil {
		cc.fail(ctx, flow, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"checkout": cc.view(ctx, flow)})
}

// Complete handles POST /checkout/:id/complete. It creates the gateway order and
// returns the widget configuration the browser opens.
func (cc *CheckoutController) Complete(ctx *gin.Context) {
	flow, ok := cc.flow(ctx)
	if !ok {
		return
	}
	widget, err := flow.Complete(ctx.Request.Context())
	if err != nil {
		cc.fail(ctx, flow, err)
		return
	}
	ctx.JSON(http.StatusOK, models.CompleteCheckoutResponse{
		Checkout: cc.view(ctx, flow),
		Widget:   widget,
	})
}

// PaymentCallback handles POST /checkout/:id/payment, the widget's success handler. It
// responds once the order is recorded, or with 202 if that takes longer than the
// confirmation timeout.
func (cc *CheckoutController) PaymentCallback(ctx *gin.Context) {
	flow, ok := cc.flow(ctx)
	if !ok {
		return
	}
	var req models.PaymentSuccess
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if cc.deliverer != nil {
		if !flow.OwnsPaymentOrder(req.OrderID) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Payment does not belong to this checkout"})
			return
		}
		// a retried callback for an already delivered payment just reports the current state
		if err := cc.deliverer.Deliver(req); err != nil && !errors.Is(err, payment.ErrAlreadyDelivered) {
			switch {
			case errors.Is(err, payment.ErrInvalidSignature):
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Payment verification failed"})
			case errors.Is(err, payment.ErrUnknownPaymentOrder):
				logger.For(ctx).Warn("payment arrived after its widget was closed",
					zap.String("checkout_id", flow.ID()),
					zap.String("gateway_order_id", req.OrderID),
					zap.String("payment_id", req.PaymentID),
				)
				ctx.JSON(http.StatusConflict, gin.H{"error": "Checkout is no longer awaiting this payment"})
			default:
				logger.For(ctx).Error("payment delivery failed", zap.Error(err))
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process payment"})
			}
			return
		}
	}

	timer := time.NewTimer(cc.confirmTimeout)
	defer timer.Stop()
	select {
	case <-flow.Confirmed():
		ctx.JSON(http.StatusOK, gin.H{"checkout": cc.view(ctx, flow)})
	case <-timer.C:
		ctx.JSON(http.StatusAccepted, gin.H{"checkout": cc.view(ctx, flow)})
	case <-ctx.Request.Context().Done():
		ctx.JSON(http.StatusAccepted, gin.H{"checkout": cc.view(ctx, flow)})
	}
}

// Abandon handles DELETE /checkout/:id.
func (cc *CheckoutController) Abandon(ctx *gin.Context) {
	if err := cc.flows.Abandon(ctx.Param("id"), middleware.GetSessionID(ctx)); err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": checkout.ErrFlowNotFound.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Checkout abandoned"})
}

func (cc *CheckoutController) flow(ctx *gin.Context) (*checkout.Flow, bool) {
	flow, err := cc.flows.Get(ctx.Param("id"), middleware.GetSessionID(ctx))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return flow, true
}

func (cc *CheckoutController) view(ctx *gin.Context, flow *checkout.Flow) models.CheckoutView {
	c := cc.carts.View(ctx.Request.Context(), flow.SessionID())
	return flow.View(c.Items, c.Total)
}

// fail maps flow errors to HTTP. Gate and step errors are conflicts and carry the flow so
// the UI can show where it stands.
func (cc *CheckoutController) fail(ctx *gin.Context, flow *checkout.Flow, err error) {
	var gwErr *payment.GatewayError
	switch {
	case errors.Is(err, checkout.ErrFlowNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrShippingIncomplete),
		errors.Is(err, checkout.ErrInvalidTransition),
		errors.Is(err, checkout.ErrCheckoutBusy):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error(), "checkout": cc.view(ctx, flow)})
	case errors.Is(err, checkout.ErrEmptyCart):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "checkout": cc.view(ctx, flow)})
	case errors.Is(err, payment.ErrInvalidAmount):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "checkout": cc.view(ctx, flow)})
	case errors.As(err, &gwErr):
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create order", "details": gwErr.Description})
	default:
		logger.For(ctx).Error("checkout step failed", zap.String("checkout_id", flow.ID()), zap.Error(err))
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create order"})
	}
}
