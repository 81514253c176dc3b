package response

import (
	"time"

	"github.com/ed-robles/shop-template/internal/usecase/queries"

	"github.com/google/uuid"
)

type ProductResponse struct {
	ID            uuid.UUID `json:"id"`
	Slug          string    `json:"slug"`
	SKU           string    `json:"sku,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"imageUrl"`
	Category      string    `json:"category"`
	PriceInCents  int64     `json:"priceInCents"`
	StockQuantity int32     `json:"stockQuantity"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ProductListItemResponse struct {
	ID            uuid.UUID `json:"id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	ImageURL      string    `json:"imageUrl"`
	Category      string    `json:"category"`
	PriceInCents  int64     `json:"priceInCents"`
	StockQuantity int32     `json:"stockQuantity"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ProductListResponse struct {
	Items      []*ProductListItemResponse `json:"items"`
	NextCursor *string                    `json:"nextCursor,omitempty"`
}

func FromProductView(view *queries.ProductView) *ProductResponse {
	return &ProductResponse{
		ID:            view.ID,
		Slug:          view.Slug,
		SKU:           view.SKU,
		Name:          view.Name,
		Description:   view.Description,
		ImageURL:      view.ImageURL,
		Category:      view.Category,
		PriceInCents:  view.PriceInCents,
		StockQuantity: view.StockQuantity,
		Status:        view.Status,
		CreatedAt:     view.CreatedAt,
		UpdatedAt:     view.UpdatedAt,
	}
}

func FromProductList(items []*queries.ProductListItem, next *queries.Cursor) *ProductListResponse {
	out := &ProductListResponse{
		Items: make([]*ProductListItemResponse, 0, len(items)),
	}
	for _, item := range items {
		out.Items = append(out.Items, &ProductListItemResponse{
			ID:            item.ID,
			Slug:          item.Slug,
			Name:          item.Name,
			ImageURL:      item.ImageURL,
			Category:      item.Category,
			PriceInCents:  item.PriceInCents,
			StockQuantity: item.StockQuantity,
			Status:        item.Status,
			CreatedAt:     item.CreatedAt,
		})
	}
	if next != nil {
		out.NextCursor = &next.After
	}
	return out
}
