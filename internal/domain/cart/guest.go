package cart

import (
	"encoding/json"

	"github.com/google/uuid"
)

// GuestItem is one line of the client-held guest cart. The product
// fields are denormalized at add time and re-checked against live stock
// on merge, so a stale copy can never oversell.
type GuestItem struct {
	ProductID     uuid.UUID `json:"productId"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	ImageURL      string    `json:"imageUrl"`
	PriceInCents  int64     `json:"priceInCents"`
	StockQuantity int32     `json:"stockQuantity"`
	Quantity      int32     `json:"quantity"`
}

// ParseGuestItems decodes a client-supplied guest cart payload. Malformed
// JSON, a non-array payload, and entries missing required fields all
// degrade to the empty cart rather than an error; the payload is
// untrusted browser storage and a bad copy should reset, not 500.
func ParseGuestItems(raw []byte) []GuestItem {
	if len(raw) == 0 {
		return []GuestItem{}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []GuestItem{}
	}
	items := make([]GuestItem, 0, len(entries))
	for _, entry := range entries {
		var item GuestItem
		if err := json.Unmarshal(entry, &item); err != nil {
			continue
		}
		if item.ProductID == uuid.Nil || item.Slug == "" || item.Name == "" {
			continue
		}
		item.PriceInCents = max64(item.PriceInCents, 0)
		item.StockQuantity = NormalizeQuantity(item.StockQuantity)
		item.Quantity = NormalizeQuantity(item.Quantity)
		items = append(items, item)
	}
	return items
}

// SanitizeGuestItems normalizes a guest cart against the stock each item
// carries. Out-of-stock and zero-quantity lines are dropped with a
// REMOVED_UNAVAILABLE adjustment; over-stock lines are clamped with
// CLAMPED_TO_STOCK. Running it twice on its own output yields no further
// adjustments.
func SanitizeGuestItems(items []GuestItem) ([]GuestItem, []Adjustment) {
	sanitized := make([]GuestItem, 0, len(items))
	adjustments := []Adjustment{}

	for _, item := range items {
		stock := NormalizeQuantity(item.StockQuantity)
		requested := NormalizeQuantity(item.Quantity)

		if stock <= 0 || requested <= 0 {
			adjustments = append(adjustments, Adjustment{
				Code:              AdjustmentRemovedUnavailable,
				ProductID:         item.ProductID.String(),
				ProductName:       item.Name,
				RequestedQuantity: requested,
				AdjustedQuantity:  0,
				Message:           RemovedMessage(item.Name),
			})
			continue
		}

		quantity := requested
		if quantity > stock {
			quantity = stock
			adjustments = append(adjustments, Adjustment{
				Code:              AdjustmentClampedToStock,
				ProductID:         item.ProductID.String(),
				ProductName:       item.Name,
				RequestedQuantity: requested,
				AdjustedQuantity:  quantity,
				Message:           ClampMessage(item.Name, quantity),
			})
		}

		item.StockQuantity = stock
		item.Quantity = quantity
		sanitized = append(sanitized, item)
	}

	return sanitized, adjustments
}

// AddGuestItem merges a new line into the guest cart, summing with any
// existing quantity for the same product and clamping the total to the
// stock supplied with the input. A zero effective quantity removes the
// line entirely.
func AddGuestItem(items []GuestItem, input GuestItem) ([]GuestItem, []Adjustment) {
	sanitized, _ := SanitizeGuestItems(items)

	var current int32
	for _, item := range sanitized {
		if item.ProductID == input.ProductID {
			current = item.Quantity
			break
		}
	}

	requested := current + NormalizeQuantity(input.Quantity)
	stock := NormalizeQuantity(input.StockQuantity)
	adjusted := requested
	if adjusted > stock {
		adjusted = stock
	}

	if adjusted <= 0 {
		return sanitized, []Adjustment{{
			Code:              AdjustmentRemovedUnavailable,
			ProductID:         input.ProductID.String(),
			ProductName:       input.Name,
			RequestedQuantity: requested,
			AdjustedQuantity:  0,
			Message:           RemovedMessage(input.Name),
		}}
	}

	next := make([]GuestItem, 0, len(sanitized)+1)
	for _, item := range sanitized {
		if item.ProductID != input.ProductID {
			next = append(next, item)
		}
	}
	next = append(next, GuestItem{
		ProductID:     input.ProductID,
		Slug:          input.Slug,
		Name:          input.Name,
		ImageURL:      input.ImageURL,
		PriceInCents:  max64(input.PriceInCents, 0),
		StockQuantity: stock,
		Quantity:      adjusted,
	})

	adjustments := []Adjustment{}
	if adjusted < requested {
		adjustments = append(adjustments, Adjustment{
			Code:              AdjustmentClampedToStock,
			ProductID:         input.ProductID.String(),
			ProductName:       input.Name,
			RequestedQuantity: requested,
			AdjustedQuantity:  adjusted,
			Message:           ClampMessage(input.Name, adjusted),
		})
	}
	return next, adjustments
}

// SetGuestQuantity replaces the quantity of one guest cart line. Zero or
// negative removes the line without an adjustment; an over-stock request
// is clamped with CLAMPED_TO_STOCK.
func SetGuestQuantity(items []GuestItem, productID uuid.UUID, quantity int32) ([]GuestItem, []Adjustment) {
	sanitized, _ := SanitizeGuestItems(items)
	requested := NormalizeQuantity(quantity)

	next := make([]GuestItem, 0, len(sanitized))
	adjustments := []Adjustment{}

	for _, item := range sanitized {
		if item.ProductID != productID {
			next = append(next, item)
			continue
		}
		if requested <= 0 {
			continue
		}
		adjusted := requested
		if adjusted > item.StockQuantity {
			adjusted = item.StockQuantity
			adjustments = append(adjustments, Adjustment{
				Code:              AdjustmentClampedToStock,
				ProductID:         item.ProductID.String(),
				ProductName:       item.Name,
				RequestedQuantity: requested,
				AdjustedQuantity:  adjusted,
				Message:           ClampMessage(item.Name, adjusted),
			})
		}
		item.Quantity = adjusted
		next = append(next, item)
	}

	return next, adjustments
}

// RemoveGuestItem drops a product from the guest cart.
func RemoveGuestItem(items []GuestItem, productID uuid.UUID) []GuestItem {
	sanitized, _ := SanitizeGuestItems(items)
	next := make([]GuestItem, 0, len(sanitized))
	for _, item := range sanitized {
		if item.ProductID != productID {
			next = append(next, item)
		}
	}
	return next
}

// GuestSnapshot projects guest cart lines into the canonical snapshot
// shape. Guest line IDs are synthesized as "guest:<productID>" since no
// server row exists yet.
func GuestSnapshot(items []GuestItem, adjustments []Adjustment) Snapshot {
	snapshot := EmptySnapshot()
	if adjustments != nil {
		snapshot.Adjustments = adjustments
	}
	for _, item := range items {
		stock := NormalizeQuantity(item.StockQuantity)
		quantity := NormalizeQuantity(item.Quantity)
		if quantity > stock {
			quantity = stock
		}
		snapshot.Items = append(snapshot.Items, SnapshotItem{
			ID:                 "guest:" + item.ProductID.String(),
			ProductID:          item.ProductID.String(),
			Slug:               item.Slug,
			Name:               item.Name,
			ImageURL:           item.ImageURL,
			PriceInCents:       item.PriceInCents,
			StockQuantity:      stock,
			MaxAllowedQuantity: stock,
			Quantity:           quantity,
			LineTotalInCents:   item.PriceInCents * int64(quantity),
		})
	}
	Totalize(&snapshot)
	return snapshot
}

func max64(v, floor int64) int64 {
	if v < floor {
		return floor
	}
	return v
}
