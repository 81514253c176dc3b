//go:build unit

package api_test

import (
	"context"
	"net/http"

	"github.com/ed-robles/shop-template/internal/domain/cart"
	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/pkg/errs"
	"github.com/ed-robles/shop-template/internal/usecase/commands"
	"github.com/ed-robles/shop-template/internal/usecase/queries"
	"github.com/ed-robles/shop-template/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// requireAuthStub mirrors the auth middleware contract: reject without a
// bearer token, otherwise seed the identity keys the handlers read.
func requireAuthStub(userID uuid.UUID, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Set("user_id", userID)
		c.Set("user_email", email)
		c.Next()
	}
}

func notFoundRepoErr() error {
	return infra.WrapRepoErr("row not found", errs.New("no rows"), infra.KindNotFound)
}

type MockCartCommands struct {
	mock.Mock
}

func (m *MockCartCommands) GetCart(ctx context.Context, userID uuid.UUID, email string) (*cart.Snapshot, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Snapshot), args.Error(1)
}

func (m *MockCartCommands) AddItem(ctx context.Context, userID uuid.UUID, email string, productID uuid.UUID, quantity int32) (*cart.Snapshot, error) {
	args := m.Called(ctx, userID, email, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Snapshot), args.Error(1)
}

func (m *MockCartCommands) SetItemQuantity(ctx context.Context, userID uuid.UUID, email string, itemID uuid.UUID, quantity int32) (*cart.Snapshot, error) {
	args := m.Called(ctx, userID, email, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Snapshot), args.Error(1)
}

func (m *MockCartCommands) RemoveItem(ctx context.Context, userID uuid.UUID, email string, itemID uuid.UUID) (*cart.Snapshot, error) {
	args := m.Called(ctx, userID, email, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Snapshot), args.Error(1)
}

func (m *MockCartCommands) MergeGuestCart(ctx context.Context, userID uuid.UUID, email string, items []commands.MergeItem) (*cart.Snapshot, error) {
	args := m.Called(ctx, userID, email, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Snapshot), args.Error(1)
}

type MockCheckoutCommands struct {
	mock.Mock
}

func (m *MockCheckoutCommands) StartCheckout(ctx context.Context, userID uuid.UUID, email string) (*commands.StartCheckoutResult, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commands.StartCheckoutResult), args.Error(1)
}

type MockWebhookCommands struct {
	mock.Mock
}

func (m *MockWebhookCommands) HandleEvent(ctx context.Context, payload []byte, signature string) (*commands.WebhookResult, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commands.WebhookResult), args.Error(1)
}

type MockAdminProductCommands struct {
	mock.Mock
}

func (m *MockAdminProductCommands) CreateProduct(ctx context.Context, req commands.CreateProductRequest) (*shared.ProductSnapshot, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.ProductSnapshot), args.Error(1)
}

func (m *MockAdminProductCommands) UpdateProduct(ctx context.Context, productID uuid.UUID, req commands.UpdateProductRequest) (*shared.ProductSnapshot, error) {
	args := m.Called(ctx, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.ProductSnapshot), args.Error(1)
}

func (m *MockAdminProductCommands) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

type MockProductQueries struct {
	mock.Mock
}

func (m *MockProductQueries) ListPublished(ctx context.Context, filter queries.ProductFilter, after *queries.Cursor, limit int) ([]*queries.ProductListItem, *queries.Cursor, error) {
	args := m.Called(ctx, filter, after, limit)
	var items []*queries.ProductListItem
	if args.Get(0) != nil {
		items = args.Get(0).([]*queries.ProductListItem)
	}
	var next *queries.Cursor
	if args.Get(1) != nil {
		next = args.Get(1).(*queries.Cursor)
	}
	return items, next, args.Error(2)
}

func (m *MockProductQueries) GetBySlug(ctx context.Context, slug string) (*queries.ProductView, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.ProductView), args.Error(1)
}

func (m *MockProductQueries) ListAll(ctx context.Context, after *queries.Cursor, limit int) ([]*queries.ProductListItem, *queries.Cursor, error) {
	args := m.Called(ctx, after, limit)
	var items []*queries.ProductListItem
	if args.Get(0) != nil {
		items = args.Get(0).([]*queries.ProductListItem)
	}
	var next *queries.Cursor
	if args.Get(1) != nil {
		next = args.Get(1).(*queries.Cursor)
	}
	return items, next, args.Error(2)
}

func (m *MockProductQueries) GetByID(ctx context.Context, id uuid.UUID) (*queries.ProductView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.ProductView), args.Error(1)
}

type MockOrderQueries struct {
	mock.Mock
}

func (m *MockOrderQueries) GetBySessionForUser(ctx context.Context, sessionID string, userID uuid.UUID, email string) (*queries.OrderView, error) {
	args := m.Called(ctx, sessionID, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.OrderView), args.Error(1)
}

func (m *MockOrderQueries) ListForUser(ctx context.Context, userID uuid.UUID, after *queries.Cursor, limit int) ([]*queries.OrderListItem, *queries.Cursor, error) {
	args := m.Called(ctx, userID, after, limit)
	var items []*queries.OrderListItem
	if args.Get(0) != nil {
		items = args.Get(0).([]*queries.OrderListItem)
	}
	var next *queries.Cursor
	if args.Get(1) != nil {
		next = args.Get(1).(*queries.Cursor)
	}
	return items, next, args.Error(2)
}

func (m *MockOrderQueries) AdminGetByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.OrderView), args.Error(1)
}

func (m *MockOrderQueries) AdminListRecent(ctx context.Context, after *queries.Cursor, limit int) ([]*queries.OrderListItem, *queries.Cursor, error) {
	args := m.Called(ctx, after, limit)
	var items []*queries.OrderListItem
	if args.Get(0) != nil {
		items = args.Get(0).([]*queries.OrderListItem)
	}
	var next *queries.Cursor
	if args.Get(1) != nil {
		next = args.Get(1).(*queries.Cursor)
	}
	return items, next, args.Error(2)
}
