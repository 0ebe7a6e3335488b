// internal/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/toolhatch-backend/internal/services"
	"github.com/javajoker/toolhatch-backend/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GET /api/cart/:userId
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	items, err := h.cartService.GetCart(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, items)
}

// POST /api/add-to-cart
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req services.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	item, err := h.cartService.AddItem(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, item)
}

// DELETE /api/cart/:userId/:productId
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	if err := h.cartService.RemoveItem(userID, productID); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "Item removed from cart"})
}
