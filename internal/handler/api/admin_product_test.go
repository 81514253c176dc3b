//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/ed-robles/shop-template/internal/domain/product"
	"github.com/ed-robles/shop-template/internal/handler/api"
	resdto "github.com/ed-robles/shop-template/internal/handler/dto/response"
	"github.com/ed-robles/shop-template/internal/usecase/commands"
	"github.com/ed-robles/shop-template/internal/usecase/queries"
	"github.com/ed-robles/shop-template/internal/usecase/shared"
	"github.com/ed-robles/shop-template/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AdminProductHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCommands *MockAdminProductCommands
	mockQueries  *MockProductQueries
}

func (s *AdminProductHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCommands = new(MockAdminProductCommands)
	s.mockQueries = new(MockProductQueries)
	handler := api.NewAdminProductHandler(s.mockCommands, s.mockQueries)

	auth := requireAuthStub(uuid.New(), "admin@example.com")
	s.router.GET("/admin/products", auth, handler.List)
	s.router.GET("/admin/products/:id", auth, handler.Get)
	s.router.POST("/admin/products", auth, handler.Create)
	s.router.PATCH("/admin/products/:id", auth, handler.Update)
	s.router.DELETE("/admin/products/:id", auth, handler.Delete)
}

func (s *AdminProductHandlerTestSuite) TearDownTest() {
	s.mockCommands.AssertExpectations(s.T())
	s.mockQueries.AssertExpectations(s.T())
}

func TestAdminProductHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminProductHandlerTestSuite))
}

func sampleProductSnapshot() *shared.ProductSnapshot {
	return &shared.ProductSnapshot{
		ID:            uuid.New(),
		Slug:          "denim-jacket",
		SKU:           "123456",
		Name:          "Denim Jacket",
		Description:   "A sturdy denim jacket.",
		Category:      product.CategoryTops,
		PriceInCents:  8900,
		StockQuantity: 10,
		Status:        product.StatusDraft,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func validCreateBody() map[string]any {
	return map[string]any{
		"name":          "Denim Jacket",
		"description":   "A sturdy denim jacket.",
		"category":      "TOPS",
		"priceInCents":  8900,
		"stockQuantity": 10,
	}
}

func (s *AdminProductHandlerTestSuite) TestCreate() {
	url := "/admin/products"

	s.Run("success: returns 201 with the created product", func() {
		s.mockCommands.On("CreateProduct", mock.Anything, mock.MatchedBy(func(req commands.CreateProductRequest) bool {
			return req.Name == "Denim Jacket" && req.Category == product.CategoryTops && req.Status == product.StatusDraft
		})).Return(sampleProductSnapshot(), nil).Once()

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, validCreateBody(), "token")

		var body resdto.ProductResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &body)
		s.Equal("denim-jacket", body.Slug)
		s.Equal("123456", body.SKU)
	})

	s.Run("rejects a body without a name", func() {
		body := validCreateBody()
		delete(body, "name")
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "token")

		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("rejects an unknown category", func() {
		body := validCreateBody()
		body["category"] = "GADGETS"
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "token")

		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("rejects an unknown status", func() {
		body := validCreateBody()
		body["status"] = "ARCHIVED"
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "token")

		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("maps sku exhaustion to 409", func() {
		s.mockCommands.On("CreateProduct", mock.Anything, mock.Anything).
			Return(nil, commands.ErrSKUGenerationFailed).Once()

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, validCreateBody(), "token")

		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("unauthorized without a token", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, validCreateBody(), "")

		s.Equal(http.StatusUnauthorized, w.Code)
	})
}

func (s *AdminProductHandlerTestSuite) TestUpdate() {
	productID := uuid.New()
	url := "/admin/products/" + productID.String()

	s.Run("success: forwards only provided fields", func() {
		s.mockCommands.On("UpdateProduct", mock.Anything, productID, mock.MatchedBy(func(req commands.UpdateProductRequest) bool {
			return req.PriceInCents != nil && *req.PriceInCents == 9900 && req.Name == nil
		})).Return(sampleProductSnapshot(), nil).Once()

		body := map[string]any{"priceInCents": 9900}
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, body, "token")

		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("maps a missing product to 404", func() {
		s.mockCommands.On("UpdateProduct", mock.Anything, productID, mock.Anything).
			Return(nil, commands.ErrProductNotFound).Once()

		body := map[string]any{"priceInCents": 9900}
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, body, "token")

		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("maps invalid input to 400", func() {
		s.mockCommands.On("UpdateProduct", mock.Anything, productID, mock.Anything).
			Return(nil, commands.ErrInvalidProductInput).Once()

		body := map[string]any{"priceInCents": 0}
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, body, "token")

		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("rejects a malformed product id", func() {
		body := map[string]any{"priceInCents": 9900}
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/admin/products/not-a-uuid", body, "token")

		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *AdminProductHandlerTestSuite) TestDelete() {
	productID := uuid.New()

	s.Run("success: returns 204", func() {
		s.mockCommands.On("DeleteProduct", mock.Anything, productID).
			Return(nil).Once()

		w := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/admin/products/"+productID.String(), nil, "token")

		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("maps a missing product to 404", func() {
		s.mockCommands.On("DeleteProduct", mock.Anything, productID).
			Return(commands.ErrProductNotFound).Once()

		w := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/admin/products/"+productID.String(), nil, "token")

		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *AdminProductHandlerTestSuite) TestGetAndList() {
	s.Run("get by id returns the admin view", func() {
		id := uuid.New()
		view := &queries.ProductView{
			ID:     id,
			Slug:   "denim-jacket",
			Name:   "Denim Jacket",
			Status: string(product.StatusDraft),
		}
		s.mockQueries.On("GetByID", mock.Anything, id).
			Return(view, nil).Once()

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/products/"+id.String(), nil, "token")

		var body resdto.ProductResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &body)
		s.Equal(string(product.StatusDraft), body.Status)
	})

	s.Run("get maps a missing product to 404", func() {
		id := uuid.New()
		s.mockQueries.On("GetByID", mock.Anything, id).
			Return(nil, notFoundRepoErr()).Once()

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/products/"+id.String(), nil, "token")

		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("list includes drafts", func() {
		items := []*queries.ProductListItem{
			{ID: uuid.New(), Slug: "denim-jacket", Name: "Denim Jacket", Status: string(product.StatusDraft), CreatedAt: time.Now()},
		}
		s.mockQueries.On("ListAll", mock.Anything, (*queries.Cursor)(nil), 0).
			Return(items, nil, nil).Once()

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/products", nil, "token")

		var body resdto.ProductListResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &body)
		s.Len(body.Items, 1)
		s.Equal(string(product.StatusDraft), body.Items[0].Status)
	})
}
