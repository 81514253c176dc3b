package request

import (
	"encoding/json"

	"github.com/ed-robles/shop-template/internal/domain/cart"
	"github.com/ed-robles/shop-template/internal/usecase/commands"

	"github.com/google/uuid"
)

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int32     `json:"quantity" binding:"required,gt=0"`
}

// Quantity is a pointer so an explicit zero survives binding; zero
// means remove, negatives are rejected.
type UpdateCartItemRequest struct {
	Quantity *int32 `json:"quantity" binding:"required,gte=0"`
}

// MergeCartRequest carries the guest cart exactly as the browser
// stored it. Items stays raw because the client payload is untrusted
// and parsed leniently.
type MergeCartRequest struct {
	Items json.RawMessage `json:"items" binding:"required"`
}

func (r MergeCartRequest) ToMergeItems() []commands.MergeItem {
	parsed := cart.ParseGuestItems(r.Items)
	items := make([]commands.MergeItem, 0, len(parsed))
	for _, item := range parsed {
		items = append(items, commands.MergeItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return items
}
