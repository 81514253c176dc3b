package api

import (
	"errors"
	"net/http"

	reqdto "github.com/ed-robles/shop-template/internal/handler/dto/request"
	resdto "github.com/ed-robles/shop-template/internal/handler/dto/response"
	"github.com/ed-robles/shop-template/internal/handler/httperr"
	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/usecase/commands"
	"github.com/ed-robles/shop-template/internal/usecase/queries"
	"github.com/ed-robles/shop-template/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminProductHandler struct {
	productUseCase commands.AdminProductCommands
	productQueries queries.ProductQueries
}

func NewAdminProductHandler(productUseCase commands.AdminProductCommands, productQueries queries.ProductQueries) *AdminProductHandler {
	return &AdminProductHandler{
		productUseCase: productUseCase,
		productQueries: productQueries,
	}
}

// @Summary List all products
// @Description Admin catalogue including drafts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Opaque pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.ProductListResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/products [get]
func (h *AdminProductHandler) List(c *gin.Context) {
	items, next, err := h.productQueries.ListAll(c.Request.Context(), cursorParam(c), limitParam(c))
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

// @Summary Get product
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} resdto.ProductResponse
// @Failure 404 {object} map[string]string
// @Router /admin/products/{id} [get]
func (h *AdminProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	view, err := h.productQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleProductError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromProductView(view))
}

// @Summary Create product
// @Description Create a product; slug and SKU are generated when absent
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateProductRequest true "Product to create"
// @Success 201 {object} resdto.ProductResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/products [post]
func (h *AdminProductHandler) Create(c *gin.Context) {
	var req reqdto.CreateProductRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	cmd, ok := req.ToCommand()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown category or status",
		})
		return
	}

	snapshot, err := h.productUseCase.CreateProduct(c.Request.Context(), cmd)
	if err != nil {
		h.handleProductError(c, err)
		return
	}

	c.JSON(http.StatusCreated, fromProductSnapshot(snapshot))
}

// @Summary Update product
// @Description Patch product fields; stock is an absolute set
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body reqdto.UpdateProductRequest true "Fields to update"
// @Success 200 {object} resdto.ProductResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/products/{id} [patch]
func (h *AdminProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req reqdto.UpdateProductRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	cmd, ok := req.ToCommand()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown category or status",
		})
		return
	}

	snapshot, err := h.productUseCase.UpdateProduct(c.Request.Context(), id, cmd)
	if err != nil {
		h.handleProductError(c, err)
		return
	}

	c.JSON(http.StatusOK, fromProductSnapshot(snapshot))
}

// @Summary Delete product
// @Description Delete a product; past order lines keep their name and price
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /admin/products/{id} [delete]
func (h *AdminProductHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	if err := h.productUseCase.DeleteProduct(c.Request.Context(), id); err != nil {
		h.handleProductError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminProductHandler) handleProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrProductNotFound), infra.IsKind(err, infra.KindNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
	case errors.Is(err, commands.ErrInvalidProductInput), errors.Is(err, commands.ErrInvalidProductSlug):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product input",
		})
	case errors.Is(err, commands.ErrSKUGenerationFailed):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Failed to assign a unique SKU",
		})
	default:
		httperr.Internal(c, err)
	}
}

func fromProductSnapshot(snapshot *shared.ProductSnapshot) *resdto.ProductResponse {
	return &resdto.ProductResponse{
		ID:            snapshot.ID,
		Slug:          snapshot.Slug,
		SKU:           snapshot.SKU,
		Name:          snapshot.Name,
		Description:   snapshot.Description,
		ImageURL:      snapshot.ImageURL,
		Category:      string(snapshot.Category),
		PriceInCents:  snapshot.PriceInCents,
		StockQuantity: snapshot.StockQuantity,
		Status:        string(snapshot.Status),
		CreatedAt:     snapshot.CreatedAt,
		UpdatedAt:     snapshot.UpdatedAt,
	}
}
