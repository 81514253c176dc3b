package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type ProductView struct {
	ID            uuid.UUID `json:"id"`
	Slug          string    `json:"slug"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	Category      string    `json:"category"`
	PriceInCents  int64     `json:"price_in_cents"`
	StockQuantity int32     `json:"stock_quantity"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProductListItem struct {
	ID            uuid.UUID `json:"id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	ImageURL      string    `json:"image_url"`
	Category      string    `json:"category"`
	PriceInCents  int64     `json:"price_in_cents"`
	StockQuantity int32     `json:"stock_quantity"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type OrderView struct {
	ID              uuid.UUID       `json:"id"`
	SessionID       string          `json:"checkout_session_id"`
	UserID          *uuid.UUID      `json:"user_id,omitempty"`
	CustomerEmail   *string         `json:"customer_email,omitempty"`
	PaymentIntentID *string         `json:"payment_intent_id,omitempty"`
	Currency        string          `json:"currency"`
	SubtotalInCents int64           `json:"subtotal_in_cents"`
	TotalInCents    int64           `json:"total_in_cents"`
	Status          string          `json:"status"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	Items           []OrderItemView `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OrderItemView struct {
	ID                uuid.UUID  `json:"id"`
	ProductID         *uuid.UUID `json:"product_id,omitempty"`
	ProductName       string     `json:"product_name"`
	UnitAmountInCents int64      `json:"unit_amount_in_cents"`
	Quantity          int32      `json:"quantity"`
	LineTotalInCents  int64      `json:"line_total_in_cents"`
}

type OrderListItem struct {
	ID            uuid.UUID  `json:"id"`
	SessionID     string     `json:"checkout_session_id"`
	CustomerEmail *string    `json:"customer_email,omitempty"`
	Currency      string     `json:"currency"`
	TotalInCents  int64      `json:"total_in_cents"`
	Status        string     `json:"status"`
	ItemCount     int32      `json:"item_count"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
