package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/luxe-storefront/common/auth"
	"github.com/yashrajoria/luxe-storefront/common/middleware"
	"github.com/yashrajoria/luxe-storefront/controllers"
)

// RegisterCatalogRoutes sets up the public product routes.
func RegisterCatalogRoutes(r *gin.Engine, cc *controllers.CatalogController) {
	products := r.Group("/products")
	products.GET("", cc.ListProducts)
	products.GET("/:id", cc.GetProduct)
}

// RegisterCartRoutes sets up the session cart. session resolves the cart owner.
func RegisterCartRoutes(r *gin.Engine, cc *controllers.CartController, session gin.HandlerFunc) {
	cartRoutes := r.Group("/cart")
	cartRoutes.Use(session)
	cartRoutes.GET("", cc.GetCart)
	cartRoutes.DELETE("", cc.ClearCart)
	cartRoutes.POST("/items", cc.AddItem)
	cartRoutes.PUT("/items/:product_id", cc.UpdateQuantity)
	cartRoutes.DELETE("/items/:product_id", cc.RemoveItem)
}

// RegisterCheckoutRoutes sets up checkout flows. Guests may check out; a valid token
// attaches the order to the account.
func RegisterCheckoutRoutes(r *gin.Engine, cc *controllers.CheckoutController, session gin.HandlerFunc, parser *auth.TokenParser) {
	checkoutRoutes := r.Group("/checkout")
	checkoutRoutes.Use(session, middleware.OptionalAuth(parser))
	checkoutRoutes.POST("", cc.StartCheckout)
	checkoutRoutes.GET("/:id", cc.GetCheckout)
	checkoutRoutes.DELETE("/:id", cc.Abandon)
	checkoutRoutes.PUT("/:id/shipping", cc.SetShipping)
	checkoutRoutes.POST("/:id/next", cc.Next)
	checkoutRoutes.POST("/:id/back", cc.Back)
	checkoutRoutes.POST("/:id/complete", cc.Complete)
	checkoutRoutes.POST("/:id/payment", cc.PaymentCallback)
}

// RegisterPaymentRoutes sets up the order-creation endpoint and gateway webhooks.
func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController) {
	r.POST("/api/payments/orders", pc.CreateOrder)
	r.POST("/webhooks/stripe", pc.StripeWebhook)
}

// RegisterOrderRoutes sets up account history and the admin order views.
func RegisterOrderRoutes(r *gin.Engine, oc *controllers.OrderController, parser *auth.TokenParser) {
	account := r.Group("/account")
	account.Use(middleware.AuthMiddleware(parser))
	account.GET("/orders", oc.ListMyOrders)

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(parser), middleware.AdminOnly())
	admin.GET("/orders", oc.ListOrders)
	admin.GET("/orders/:id", oc.GetOrder)
	admin.PATCH("/orders/:id/status", oc.UpdateStatus)
	admin.GET("/stats", oc.Stats)
}

// RegisterProductRoutes sets up the admin catalog. It is only mounted when the catalog
// is database backed.
func RegisterProductRoutes(r *gin.Engine, pc *controllers.ProductController, parser *auth.TokenParser) {
	admin := r.Group("/admin/products")
	admin.Use(middleware.AuthMiddleware(parser), middleware.AdminOnly())
	admin.GET("", pc.ListProducts)
	admin.POST("", pc.CreateProduct)
	admin.POST("/image", pc.UploadImage)
	admin.DELETE("/:id", pc.DeleteProduct)
}
