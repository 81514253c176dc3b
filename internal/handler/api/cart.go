package api

import (
	"errors"
	"net/http"

	reqdto "github.com/ed-robles/shop-template/internal/handler/dto/request"
	"github.com/ed-robles/shop-template/internal/handler/httperr"
	"github.com/ed-robles/shop-template/internal/handler/middleware"
	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartHandler serves the authenticated cart. Every response carries the
// normalized snapshot so the storefront can re-render without a second
// round trip.
type CartHandler struct {
	cartUseCase commands.CartCommands
}

func NewCartHandler(cartUseCase commands.CartCommands) *CartHandler {
	return &CartHandler{
		cartUseCase: cartUseCase,
	}
}

// @Summary Get cart
// @Description Fetch the normalized cart, creating it on first use
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} cart.Snapshot
// @Failure 401 {object} map[string]string
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, email, ok := requireIdentity(c)
	if !ok {
		return
	}

	snapshot, err := h.cartUseCase.GetCart(c.Request.Context(), userID, email)
	if err != nil {
		h.handleCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// @Summary Add item to cart
// @Description Add quantity of a product, clamped to available stock
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.AddCartItemRequest true "Item to add"
// @Success 200 {object} cart.Snapshot
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, email, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req reqdto.AddCartItemRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	snapshot, err := h.cartUseCase.AddItem(c.Request.Context(), userID, email, req.ProductID, req.Quantity)
	if err != nil {
		h.handleCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// @Summary Set cart item quantity
// @Description Set an absolute quantity; zero removes the line
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart item ID"
// @Param request body reqdto.UpdateCartItemRequest true "New quantity"
// @Success 200 {object} cart.Snapshot
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /cart/items/{id} [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, email, ok := requireIdentity(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cart item ID",
		})
		return
	}

	var req reqdto.UpdateCartItemRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	snapshot, err := h.cartUseCase.SetItemQuantity(c.Request.Context(), userID, email, itemID, *req.Quantity)
	if err != nil {
		h.handleCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// @Summary Remove cart item
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param id path string true "Cart item ID"
// @Success 200 {object} cart.Snapshot
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, email, ok := requireIdentity(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cart item ID",
		})
		return
	}

	snapshot, err := h.cartUseCase.RemoveItem(c.Request.Context(), userID, email, itemID)
	if err != nil {
		h.handleCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// @Summary Merge guest cart
// @Description Fold a browser-stored guest cart into the user cart after sign-in
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.MergeCartRequest true "Guest cart items"
// @Success 200 {object} cart.Snapshot
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /cart/merge [post]
func (h *CartHandler) Merge(c *gin.Context) {
	userID, email, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req reqdto.MergeCartRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	snapshot, err := h.cartUseCase.MergeGuestCart(c.Request.Context(), userID, email, req.ToMergeItems())
	if err != nil {
		h.handleCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *CartHandler) handleCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Cart item not found",
		})
	case errors.Is(err, commands.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Quantity must not be negative",
		})
	case infra.IsKind(err, infra.KindNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
	default:
		httperr.Internal(c, err)
	}
}

func requireIdentity(c *gin.Context) (uuid.UUID, string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return uuid.Nil, "", false
	}
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return uuid.Nil, "", false
	}
	return userID, email, true
}
