package routes

import (
	"storefront-service/controllers"
	"storefront-service/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all storefront routes.
func RegisterRoutes(
	r *gin.Engine,
	catalog *controllers.CatalogController,
	cart *controllers.CartController,
	review *controllers.ReviewController,
	checkout *controllers.CheckoutController,
) {
	// Public catalog browsing
	products := r.Group("/products")
	products.GET("", catalog.ListProducts)
	products.GET("/:id", catalog.GetProduct)
	products.GET("/:id/reviews", review.ListApprovedReviews)

	// Authenticated storefront operations
	authed := r.Group("")
	authed.Use(middleware.AuthMiddleware())
	authed.POST("/products/:id/reviews", review.SubmitReview)
	authed.GET("/cart", cart.GetCart)
	authed.POST("/cart/items", cart.AddItems)
	authed.PATCH("/cart/items/:id", cart.UpdateItem)
	authed.POST("/checkout", checkout.Checkout)
	authed.GET("/orders", checkout.ListOrders)

	// Admin-only catalog and moderation routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.POST("/products", catalog.CreateProduct)
	admin.PUT("/products/:id", catalog.UpdateProduct)
	admin.PATCH("/reviews/:id/approve", review.ApproveReview)
	admin.DELETE("/reviews/:id", review.DeleteReview)
}
