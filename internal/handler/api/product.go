package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ed-robles/shop-template/internal/domain/product"
	"github.com/ed-robles/shop-template/internal/handler/httperr"
	resdto "github.com/ed-robles/shop-template/internal/handler/dto/response"
	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productQueries queries.ProductQueries
}

func NewProductHandler(productQueries queries.ProductQueries) *ProductHandler {
	return &ProductHandler{
		productQueries: productQueries,
	}
}

// @Summary List published products
// @Description Page through the published catalogue, newest first
// @Tags products
// @Produce json
// @Param category query string false "Category filter"
// @Param cursor query string false "Opaque pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.ProductListResponse
// @Failure 400 {object} map[string]string
// @Router /products [get]
func (h *ProductHandler) ListPublished(c *gin.Context) {
	filter := queries.ProductFilter{}
	if raw := c.Query("category"); raw != "" {
		category, ok := product.ParseCategory(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown category",
			})
			return
		}
		filter.Category = &category
	}

	items, next, err := h.productQueries.ListPublished(c.Request.Context(), filter, cursorParam(c), limitParam(c))
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

	c.JSON(http.StatusOK, resdto.FromProductList(items, next))
}

// @Summary Get product by slug
// @Description Fetch one published product for the detail page
// @Tags products
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} resdto.ProductResponse
// @Failure 404 {object} map[string]string
// @Router /products/{slug} [get]
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	view, err := h.productQueries.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		httperr.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromProductView(view))
}

func cursorParam(c *gin.Context) *queries.Cursor {
	raw := c.Query("cursor")
	if raw == "" {
		return nil
	}
	return &queries.Cursor{After: raw}
}

func limitParam(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}
