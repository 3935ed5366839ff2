package controllers

import (
	"net/http"

	"storefront-service/middleware"
	"storefront-service/models"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

// CartController handles HTTP requests for the shopping cart.
type CartController struct {
	cartService services.CartService
}

// NewCartController creates a new CartController.
func NewCartController(cartService services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// GetCart handles GET /cart.
func (cc *CartController) GetCart(ctx *gin.Context) {
	identity, err := middleware.GetIdentity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cart, svcErr := cc.cartService.GetCart(ctx.Request.Context(), identity)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"cart": cart})
}

// AddItems handles POST /cart/items. The payload carries parallel arrays of
// product ids and quantities; the whole batch succeeds or fails together.
func (cc *CartController) AddItems(ctx *gin.Context) {
	identity, err := middleware.GetIdentity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.AddItemsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	cart, svcErr := cc.cartService.AddItems(ctx.Request.Context(), identity, &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Items added to cart", "cart": cart})
}

// UpdateItem handles PATCH /cart/items/:id. A quantity of zero or less
// removes the item.
func (cc *CartController) UpdateItem(ctx *gin.Context) {
	identity, err := middleware.GetIdentity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	itemID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req models.UpdateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	result, svcErr := cc.cartService.SetItemQuantity(ctx.Request.Context(), identity, itemID, req.Quantity)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	if result.Removed {
		ctx.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Cart updated", "item": result.Item})
}
