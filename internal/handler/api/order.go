package api

import (
	"errors"
	"net/http"

	resdto "github.com/ed-robles/shop-template/internal/handler/dto/response"
	"github.com/ed-robles/shop-template/internal/handler/httperr"
	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderQueries queries.OrderQueries
}

func NewOrderHandler(orderQueries queries.OrderQueries) *OrderHandler {
	return &OrderHandler{
		orderQueries: orderQueries,
	}
}

// @Summary Get order by checkout session
// @Description Back the checkout success page; only the order owner sees it
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param session_id query string true "Checkout session ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/by-session [get]
func (h *OrderHandler) GetBySession(c *gin.Context) {
	userID, email, ok := requireIdentity(c)
	if !ok {
		return
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "session_id is required",
		})
		return
	}

	view, err := h.orderQueries.GetBySessionForUser(c.Request.Context(), sessionID, userID, email)
	if err != nil {
		h.handleOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

// @Summary List own orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Opaque pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.OrderListResponse
// @Failure 401 {object} map[string]string
// @Router /orders [get]
func (h *OrderHandler) ListOwn(c *gin.Context) {
	userID, _, ok := requireIdentity(c)
	if !ok {
		return
	}

	items, next, err := h.orderQueries.ListForUser(c.Request.Context(), userID, cursorParam(c), limitParam(c))
	if err != nil {
		if errors.Is(err, queries.ErrInvalidCursor) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid cursor",
			})
			return
		}
		httperr.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderList(items, next))
}

func (h *OrderHandler) handleOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, queries.ErrOrderNotFound), infra.IsKind(err, infra.KindNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
	default:
		httperr.Internal(c, err)
	}
}
