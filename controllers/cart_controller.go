package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashrajoria/luxe-storefront/cart"
	"github.com/yashrajoria/luxe-storefront/catalog"
	apperrors "github.com/yashrajoria/luxe-storefront/common/errors"
	"github.com/yashrajoria/luxe-storefront/common/logger"
	"github.com/yashrajoria/luxe-storefront/common/middleware"
	"github.com/yashrajoria/luxe-storefront/models"
)

// CartSaveWarning accompanies a cart response whose change was applied but not saved.
const CartSaveWarning = "Cart updated but could not be saved"

// CartController exposes the session cart.
type CartController struct {
	carts   *cart.Manager
	catalog catalog.Source
}

func NewCartController(carts *cart.Manager, source catalog.Source) *CartController {
	return &CartController{carts: carts, catalog: source}
}

// GetCart handles GET /cart.
func (cc *CartController) GetCart(ctx *gin.Context) {
	view := cc.carts.View(ctx.Request.Context(), middleware.GetSessionID(ctx))
	ctx.JSON(http.StatusOK, gin.H{"cart": view})
}

// AddItem handles POST /cart/items. The product is looked up in the catalog so the line
// carries the current name and price.
func (cc *CartController) AddItem(ctx *gin.Context) {
	var req models.AddItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, err := cc.catalog.Get(ctx.Request.Context(), req.ProductID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		_ = ctx.Error(apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	cc.mutate(ctx, func(c context.Context, s *cart.Store) error {
		return s.AddItem(c, *product)
	})
}

// UpdateQuantity handles PUT /cart/items/:product_id. Quantities below one remove the line.
func (cc *CartController) UpdateQuantity(ctx *gin.Context) {
	var req models.UpdateQuantityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	productID := ctx.Param("product_id")
	cc.mutate(ctx, func(c context.Context, s *cart.Store) error {
		return s.UpdateQuantity(c, productID, *req.Quantity)
	})
}

// RemoveItem handles DELETE /cart/items/:product_id.
func (cc *CartController) RemoveItem(ctx *gin.Context) {
	productID := ctx.Param("product_id")
	cc.mutate(ctx, func(c context.Context, s *cart.Store) error {
		return s.RemoveItem(c, productID)
	})
}

// ClearCart handles DELETE /cart.
func (cc *CartController) ClearCart(ctx *gin.Context) {
	cc.mutate(ctx, func(c context.Context, s *cart.Store) error {
		return s.ClearCart(c)
	})
}

// mutate applies fn to the session cart. A failed snapshot does not undo the change, so
// the response still carries the mutated cart.
func (cc *CartController) mutate(ctx *gin.Context, fn func(context.Context, *cart.Store) error) {
	sessionID := middleware.GetSessionID(ctx)
	reqCtx := ctx.Request.Context()

	var view models.CartView
	err := cc.carts.Do(reqCtx, sessionID, func(s *cart.Store) error {
		err := fn(reqCtx, s)
		view = cart.ViewOf(sessionID, s)
		return err
	})
	if err != nil {
		logger.For(ctx).Warn("cart change not saved", zap.String("session_id", sessionID), zap.Error(err))
		ctx.JSON(http.StatusOK, gin.H{"cart": view, "warning": CartSaveWarning})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cart": view})
}
