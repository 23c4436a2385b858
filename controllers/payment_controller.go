package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashrajoria/luxe-storefront/common/logger"
	"github.com/yashrajoria/luxe-storefront/models"
	"github.com/yashrajoria/luxe-storefront/payment"
)

const maxWebhookBody = 64 << 10

// WebhookParser authenticates a gateway webhook and extracts a successful payment.
type WebhookParser interface {
	ParseWebhook(payload []byte, sigHeader string) (models.PaymentSuccess, bool, error)
}

// PaymentResolver delivers an already authenticated payment success.
type PaymentResolver interface {
	Resolve(success models.PaymentSuccess) error
}

// PaymentController exposes the gateway order-creation contract and webhooks.
type PaymentController struct {
	orders   payment.OrderCreator
	webhooks WebhookParser
	resolver PaymentResolver
}

// NewPaymentController wires the payment endpoints. webhooks may be nil when the
// configured gateway does not push events.
func NewPaymentController(orders payment.OrderCreator, webhooks WebhookParser, resolver PaymentResolver) *PaymentController {
	return &PaymentController{orders: orders, webhooks: webhooks, resolver: resolver}
}

// CreateOrder handles POST /api/payments/orders: {amount} -> {id, amount, currency}.
func (pc *PaymentController) CreateOrder(ctx *gin.Context) {
	var req models.CreatePaymentOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": payment.ErrInvalidAmount.Error()})
		return
	}

	order, err := pc.orders.CreateOrder(ctx.Request.Context(), req.Amount)
	if err != nil {
		var gwErr *payment.GatewayError
		if errors.As(err, &gwErr) {
			ctx.JSON(http.StatusBadGateway, gin.H{"error": gin.H{
				"code":        gwErr.Code,
				"description": gwErr.Description,
			}})
			return
		}
		logger.For(ctx).Error("payment order creation failed", zap.Error(err))
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create order"})
		return
	}
	ctx.JSON(http.StatusOK, order)
}

// StripeWebhook handles POST /webhooks/stripe. Events that cannot be matched to an
// awaiting checkout are acknowledged so the gateway stops retrying them.
func (pc *PaymentController) StripeWebhook(ctx *gin.Context) {
	if pc.webhooks == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Webhooks are not enabled"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWebhookBody))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	success, ok, err := pc.webhooks.ParseWebhook(payload, ctx.GetHeader("Stripe-Signature"))
	if err != nil {
		logger.For(ctx).Warn("stripe webhook rejected", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}
	if !ok {
		ctx.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := pc.resolver.Resolve(success); err != nil {
		log := logger.For(ctx).With(zap.String("payment_intent", success.OrderID), zap.Error(err))
		if errors.Is(err, payment.ErrAlreadyDelivered) {
			log.Info("stripe payment already delivered")
		} else {
			log.Warn("stripe payment has no awaiting checkout")
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"received": true})
}
