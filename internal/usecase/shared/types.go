package shared

import (
	"time"

	"github.com/ed-robles/shop-template/internal/domain/order"
	"github.com/ed-robles/shop-template/internal/domain/product"

	"github.com/google/uuid"
)

// CartItemWithProduct joins a cart line with the live product row it
// points at. Product fields are nil-tolerant: a deleted product leaves
// the line orphaned until normalization removes it.
type CartItemWithProduct struct {
	ItemID        uuid.UUID
	ProductID     uuid.UUID
	Quantity      int32
	ProductFound  bool
	Name          string
	Slug          string
	ImageURL      string
	PriceInCents  int64
	StockQuantity int32
	Published     bool
}

type CartItemRecord struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

type ProductSnapshot struct {
	ID            uuid.UUID
	Slug          string
	SKU           string
	Name          string
	Description   string
	ImageURL      string
	Category      product.Category
	PriceInCents  int64
	StockQuantity int32
	Status        product.Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type NewProduct struct {
	Slug          string
	Name          string
	Description   string
	ImageURL      string
	Category      product.Category
	PriceInCents  int64
	StockQuantity int32
	Status        product.Status
}

// ProductPatch carries only the fields the caller wants to change.
type ProductPatch struct {
	Slug          *string
	Name          *string
	Description   *string
	ImageURL      *string
	Category      *product.Category
	PriceInCents  *int64
	StockQuantity *int32
	Status        *product.Status
}

type OrderSnapshot struct {
	ID              uuid.UUID
	SessionID       string
	UserID          *uuid.UUID
	CustomerEmail   *string
	PaymentIntentID *string
	Currency        string
	SubtotalInCents int64
	TotalInCents    int64
	Status          order.Status
	PaidAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type NewOrder struct {
	SessionID       string
	UserID          *uuid.UUID
	CustomerEmail   *string
	PaymentIntentID *string
	Currency        string
	SubtotalInCents int64
	TotalInCents    int64
	Status          order.Status
}

// OrderUpdate overwrites the mutable session-derived fields of an
// existing order row. The caller computes the fallback chain before
// building it.
type OrderUpdate struct {
	UserID          *uuid.UUID
	CustomerEmail   *string
	PaymentIntentID *string
	Currency        string
	SubtotalInCents int64
	TotalInCents    int64
	Status          order.Status
}

type NewOrderItem struct {
	ProductID         *uuid.UUID
	ProductName       string
	UnitAmountInCents int64
	Quantity          int32
	LineTotalInCents  int64
}

type OrderItemSnapshot struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	ProductID         *uuid.UUID
	ProductName       string
	UnitAmountInCents int64
	Quantity          int32
	LineTotalInCents  int64
}

type UserSnapshot struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
}

type WebhookEventRecord struct {
	ID              uuid.UUID
	EventID         string
	EventType       string
	ProcessedAt     *time.Time
	ProcessingError *string
	CreatedAt       time.Time
}
