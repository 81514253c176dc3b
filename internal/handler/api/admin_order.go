package api

import (
	"errors"
	"net/http"

	resdto "github.com/ed-robles/shop-template/internal/handler/dto/response"
	"github.com/ed-robles/shop-template/internal/handler/httperr"
	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminOrderHandler struct {
	orderQueries queries.OrderQueries
}

func NewAdminOrderHandler(orderQueries queries.OrderQueries) *AdminOrderHandler {
	return &AdminOrderHandler{
		orderQueries: orderQueries,
	}
}

// @Summary List recent orders
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Opaque pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.OrderListResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/orders [get]
func (h *AdminOrderHandler) List(c *gin.Context) {
	items, next, err := h.orderQueries.AdminListRecent(c.Request.Context(), cursorParam(c), limitParam(c))
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

// @Summary Get order
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 404 {object} map[string]string
// @Router /admin/orders/{id} [get]
func (h *AdminOrderHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	view, err := h.orderQueries.AdminGetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, queries.ErrOrderNotFound) || infra.IsKind(err, infra.KindNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		httperr.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}
