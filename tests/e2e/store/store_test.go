//go:build e2e

package store_test

import (
	"net/http"
	"testing"

	"github.com/ed-robles/shop-template/internal/domain/cart"
	"github.com/ed-robles/shop-template/internal/handler/dto/request"
	"github.com/ed-robles/shop-template/internal/handler/dto/response"
	"github.com/ed-robles/shop-template/tests/common/authtest"
	"github.com/ed-robles/shop-template/tests/common/dbtest"
	"github.com/ed-robles/shop-template/tests/common/httptest"
	"github.com/ed-robles/shop-template/tests/common/testutil"
	"github.com/ed-robles/shop-template/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	productsURL      = "/api/products"
	cartURL          = "/api/cart"
	cartItemsURL     = "/api/cart/items"
	adminProductsURL = "/api/admin/products"
)

type StoreSuite struct {
	e2e.SharedSuite
	jwt *authtest.JWTHelper
}

func (s *StoreSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwt = authtest.NewJWTHelper(s.Config.JWT)
}

func TestStoreSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) shopperToken(t *testing.T, email string) (uuid.UUID, string) {
	t.Helper()
	userID := dbtest.CreateTestUser(t, s.DB, email)
	return userID, s.jwt.GenerateToken(t, userID, email)
}

func (s *StoreSuite) adminToken(t *testing.T) string {
	t.Helper()
	userID := dbtest.CreateTestUser(t, s.DB, "admin@example.com")
	return s.jwt.GenerateToken(t, userID, "admin@example.com")
}

// =============================================================================
// Public catalogue
// =============================================================================

func (s *StoreSuite) TestCatalogue() {
	s.Run("published products are listed, drafts are hidden", func() {
		t := s.T()

		dbtest.CreateTestProduct(t, s.DB, "Linen Shirt", 4500, 10)
		dbtest.CreateTestProduct(t, s.DB, "Wool Sweater", 8900, 5)
		dbtest.CreateDraftProduct(t, s.DB, "Unreleased Jacket")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, productsURL, nil, "")

		var list response.ProductListResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &list)
		require.Len(t, list.Items, 2)
		for _, item := range list.Items {
			require.Equal(t, "PUBLISHED", item.Status)
		}
		require.Nil(t, list.NextCursor)
	})

	s.Run("product detail is served by slug", func() {
		t := s.T()

		productID := dbtest.CreateTestProduct(t, s.DB, "Linen Shirt", 4500, 10)
		slug := dbtest.ProductSlug(t, s.DB, productID)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, productsURL+"/"+slug, nil, "")

		var detail response.ProductResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &detail)

		expected := &response.ProductResponse{
			ID:            productID,
			Slug:          slug,
			Name:          "Linen Shirt",
			Description:   "Linen Shirt description",
			Category:      "TOPS",
			PriceInCents:  4500,
			StockQuantity: 10,
			Status:        "PUBLISHED",
		}
		opts := []cmp.Option{
			cmpopts.IgnoreFields(response.ProductResponse{}, "SKU", "CreatedAt", "UpdatedAt"),
		}
		if diff := cmp.Diff(expected, &detail, opts...); diff != "" {
			t.Errorf("product detail mismatch (-want +got):\n%s", diff)
		}
	})

	s.Run("unknown slug returns 404", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, productsURL+"/no-such-product", nil, "")
		httptest.AssertErrorResponse(t, w, http.StatusNotFound, "")
	})
}

// =============================================================================
// Cart flow
// =============================================================================

func (s *StoreSuite) TestCartFlow() {
	s.Run("add, clamp, update and remove", func() {
		t := s.T()

		_, token := s.shopperToken(t, "shopper@example.com")
		productID := dbtest.CreateTestProduct(t, s.DB, "Canvas Tote", 2500, 3)

		// Request more than stock; the cart clamps and reports it.
		addBody := map[string]any{"productId": productID, "quantity": 5}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, cartItemsURL, addBody, token)

		var snap cart.Snapshot
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &snap)
		require.Len(t, snap.Items, 1)
		require.Equal(t, int32(3), snap.Items[0].Quantity)
		require.Equal(t, int64(7500), snap.SubtotalInCents)
		require.Len(t, snap.Adjustments, 1)
		require.Equal(t, cart.AdjustmentClampedToStock, snap.Adjustments[0].Code)

		itemID := snap.Items[0].ID

		updateBody := map[string]any{"quantity": 1}
		w = httptest.PerformRequest(t, s.Router, http.MethodPatch, cartItemsURL+"/"+itemID, updateBody, token)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &snap)
		require.Equal(t, int32(1), snap.Items[0].Quantity)
		require.Empty(t, snap.Adjustments)

		w = httptest.PerformRequest(t, s.Router, http.MethodDelete, cartItemsURL+"/"+itemID, nil, token)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &snap)
		require.Empty(t, snap.Items)
		require.Equal(t, int64(0), snap.SubtotalInCents)
	})

	s.Run("guest cart merge folds into the server cart", func() {
		t := s.T()

		_, token := s.shopperToken(t, "merger@example.com")
		productID := dbtest.CreateTestProduct(t, s.DB, "Canvas Tote", 2500, 10)
		slug := dbtest.ProductSlug(t, s.DB, productID)

		mergeBody := map[string]any{
			"items": []map[string]any{
				{"productId": productID, "slug": slug, "name": "Canvas Tote", "quantity": 2},
			},
		}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, cartURL+"/merge", mergeBody, token)

		var snap cart.Snapshot
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &snap)
		require.Len(t, snap.Items, 1)
		require.Equal(t, int32(2), snap.Items[0].Quantity)
	})

	s.Run("cart requires authentication", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, cartURL, nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	s.Run("expired token is rejected", func() {
		t := s.T()

		userID := dbtest.CreateTestUser(t, s.DB, "expired@example.com")
		token := s.jwt.CreateExpiredToken(t, userID, "expired@example.com")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, cartURL, nil, token)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// =============================================================================
// Admin product management
// =============================================================================

func (s *StoreSuite) TestAdminProducts() {
	createReq := request.CreateProductRequest{
		Name:          "Denim Jacket",
		Description:   "Classic fit",
		Category:      "TOPS",
		PriceInCents:  12900,
		StockQuantity: 8,
		Status:        "PUBLISHED",
	}

	s.Run("admin creates a product and it appears in the catalogue", func() {
		t := s.T()

		token := s.adminToken(t)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, adminProductsURL, createReq, token)

		var created response.ProductResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)
		require.Equal(t, "denim-jacket", created.Slug)
		require.Regexp(t, `^\d{6}$`, created.SKU)

		lw := httptest.PerformRequest(t, s.Router, http.MethodGet, productsURL, nil, "")
		var list response.ProductListResponse
		httptest.AssertSuccessResponse(t, lw, http.StatusOK, &list)
		require.Len(t, list.Items, 1)
		require.Equal(t, created.ID, list.Items[0].ID)
	})

	s.Run("slug collisions get a numeric suffix", func() {
		t := s.T()

		token := s.adminToken(t)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, adminProductsURL, createReq, token)
		var first response.ProductResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &first)
		require.Equal(t, "denim-jacket", first.Slug)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, adminProductsURL, createReq, token)
		var second response.ProductResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &second)
		require.Equal(t, "denim-jacket-1", second.Slug)
	})

	s.Run("invalid category is rejected", func() {
		t := s.T()

		token := s.adminToken(t)

		body := testutil.DtoMap(t, createReq, testutil.Field("category", "GADGETS"))
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, adminProductsURL, body, token)
		httptest.AssertErrorResponse(t, w, http.StatusBadRequest, "")
	})

	s.Run("partial update patches only the sent fields", func() {
		t := s.T()

		token := s.adminToken(t)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, adminProductsURL, createReq, token)
		var created response.ProductResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)

		patch := map[string]any{"priceInCents": 9900}
		w = httptest.PerformRequest(t, s.Router, http.MethodPatch, adminProductsURL+"/"+created.ID.String(), patch, token)

		var updated response.ProductResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &updated)
		require.Equal(t, int64(9900), updated.PriceInCents)
		require.Equal(t, created.Name, updated.Name)
		require.Equal(t, created.Slug, updated.Slug)
	})

	s.Run("delete removes the product", func() {
		t := s.T()

		token := s.adminToken(t)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, adminProductsURL, createReq, token)
		var created response.ProductResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)

		w = httptest.PerformRequest(t, s.Router, http.MethodDelete, adminProductsURL+"/"+created.ID.String(), nil, token)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, adminProductsURL+"/"+created.ID.String(), nil, token)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	s.Run("non-admin users cannot reach admin routes", func() {
		t := s.T()

		_, token := s.shopperToken(t, "plain@example.com")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, adminProductsURL, nil, token)
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

// =============================================================================
// Orders
// =============================================================================

func (s *StoreSuite) TestOrders() {
	s.Run("own order history starts empty", func() {
		t := s.T()

		_, token := s.shopperToken(t, "buyer@example.com")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/orders", nil, token)

		var list response.OrderListResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &list)
		require.Empty(t, list.Items)
		require.Nil(t, list.NextCursor)
	})

	s.Run("order lookup by session requires the session id", func() {
		t := s.T()

		_, token := s.shopperToken(t, "buyer@example.com")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/orders/by-session", nil, token)
		httptest.AssertErrorResponse(t, w, http.StatusBadRequest, "")
	})
}
