package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yashrajoria/luxe-storefront/common/middleware"
	"github.com/yashrajoria/luxe-storefront/models"
	"github.com/yashrajoria/luxe-storefront/services"
)

// OrderController serves account order history and the admin order views.
type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// ListMyOrders handles GET /account/orders.
func (oc *OrderController) ListMyOrders(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	result, svcErr := oc.orderService.ListAccountOrders(ctx.Request.Context(),
		middleware.GetUserID(ctx), middleware.GetEmail(ctx), page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// ListOrders handles GET /admin/orders.
func (oc *OrderController) ListOrders(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	result, svcErr := oc.orderService.ListOrders(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetOrder handles GET /admin/orders/:id.
func (oc *OrderController) GetOrder(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, svcErr := oc.orderService.GetOrder(ctx.Request.Context(), id)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateStatus handles PATCH /admin/orders/:id/status.
func (oc *OrderController) UpdateStatus(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, svcErr := oc.orderService.UpdateStatus(ctx.Request.Context(), id, req.Status)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// Stats handles GET /admin/stats.
func (oc *OrderController) Stats(ctx *gin.Context) {
	stats, svcErr := oc.orderService.Stats(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, stats)
}
