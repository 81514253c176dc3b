package response

import (
	"time"

	"github.com/ed-robles/shop-template/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	SessionID       string              `json:"checkoutSessionId"`
	CustomerEmail   *string             `json:"customerEmail,omitempty"`
	PaymentIntentID *string             `json:"paymentIntentId,omitempty"`
	Currency        string              `json:"currency"`
	SubtotalInCents int64               `json:"subtotalInCents"`
	TotalInCents    int64               `json:"totalInCents"`
	Status          string              `json:"status"`
	PaidAt          *time.Time          `json:"paidAt,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
}

type OrderItemResponse struct {
	ID                uuid.UUID  `json:"id"`
	ProductID         *uuid.UUID `json:"productId,omitempty"`
	ProductName       string     `json:"productName"`
	UnitAmountInCents int64      `json:"unitAmountInCents"`
	Quantity          int32      `json:"quantity"`
	LineTotalInCents  int64      `json:"lineTotalInCents"`
}

type OrderListItemResponse struct {
	ID            uuid.UUID  `json:"id"`
	SessionID     string     `json:"checkoutSessionId"`
	CustomerEmail *string    `json:"customerEmail,omitempty"`
	Currency      string     `json:"currency"`
	TotalInCents  int64      `json:"totalInCents"`
	Status        string     `json:"status"`
	ItemCount     int32      `json:"itemCount"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type OrderListResponse struct {
	Items      []*OrderListItemResponse `json:"items"`
	NextCursor *string                  `json:"nextCursor,omitempty"`
}

func FromOrderView(view *queries.OrderView) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, OrderItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			UnitAmountInCents: item.UnitAmountInCents,
			Quantity:          item.Quantity,
			LineTotalInCents:  item.LineTotalInCents,
		})
	}
	return &OrderResponse{
		ID:              view.ID,
		SessionID:       view.SessionID,
		CustomerEmail:   view.CustomerEmail,
		PaymentIntentID: view.PaymentIntentID,
		Currency:        view.Currency,
		SubtotalInCents: view.SubtotalInCents,
		TotalInCents:    view.TotalInCents,
		Status:          view.Status,
		PaidAt:          view.PaidAt,
		Items:           items,
		CreatedAt:       view.CreatedAt,
	}
}

func FromOrderList(items []*queries.OrderListItem, next *queries.Cursor) *OrderListResponse {
	out := &OrderListResponse{
		Items: make([]*OrderListItemResponse, 0, len(items)),
	}
	for _, item := range items {
		out.Items = append(out.Items, &OrderListItemResponse{
			ID:            item.ID,
			SessionID:     item.SessionID,
			CustomerEmail: item.CustomerEmail,
			Currency:      item.Currency,
			TotalInCents:  item.TotalInCents,
			Status:        item.Status,
			ItemCount:     item.ItemCount,
			PaidAt:        item.PaidAt,
			CreatedAt:     item.CreatedAt,
		})
	}
	if next != nil {
		out.NextCursor = &next.After
	}
	return out
}
