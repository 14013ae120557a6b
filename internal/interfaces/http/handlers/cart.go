// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints. It talks to the mirror-backed
// cart facade, so responses may carry degraded=true when the
// authoritative store is unreachable.
type CartHandler struct {
	carts cart.API
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts cart.API) *CartHandler {
	return &CartHandler{
		carts: carts,
	}
}

// addItemRequest is the body for POST /cart/add
type addItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// updateItemRequest is the body for PUT /cart/update/:productId
type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// Get handles GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	principal, _ := middleware.PrincipalFromContext(c)

	snap, err := h.carts.GetCart(c.Request.Context(), principal.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snap})
}

// Add handles POST /cart/add
func (h *CartHandler) Add(c *gin.Context) {
	principal, _ := middleware.PrincipalFromContext(c)

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	snap, err := h.carts.AddItem(c.Request.Context(), principal.UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"data":    snap,
	})
}

// Update handles PUT /cart/update/:productId
func (h *CartHandler) Update(c *gin.Context) {
	principal, _ := middleware.PrincipalFromContext(c)

	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	snap, err := h.carts.SetQuantity(c.Request.Context(), principal.UserID, productID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated",
		"data":    snap,
	})
}

// Remove handles DELETE /cart/remove/:productId
func (h *CartHandler) Remove(c *gin.Context) {
	principal, _ := middleware.PrincipalFromContext(c)

	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	snap, err := h.carts.RemoveItem(c.Request.Context(), principal.UserID, productID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
		"data":    snap,
	})
}

// Clear handles DELETE /cart/clear
func (h *CartHandler) Clear(c *gin.Context) {
	principal, _ := middleware.PrincipalFromContext(c)

	snap, err := h.carts.Clear(c.Request.Context(), principal.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
		"data":    snap,
	})
}

// Count handles GET /cart/count
func (h *CartHandler) Count(c *gin.Context) {
	principal, _ := middleware.PrincipalFromContext(c)

	count, err := h.carts.ItemCount(c.Request.Context(), principal.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"count": count},
	})
}

// writeError maps cart domain errors onto HTTP statuses
func (h *CartHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Quantity must be a positive integer",
		})
	case errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Item not found in cart",
		})
	case errors.Is(err, cart.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Cart is temporarily unavailable",
		})
	}
}
