package cart

import "fmt"

// AdjustmentCode classifies a server- or client-side cart correction.
type AdjustmentCode string

const (
	AdjustmentClampedToStock     AdjustmentCode = "CLAMPED_TO_STOCK"
	AdjustmentRemovedUnavailable AdjustmentCode = "REMOVED_UNAVAILABLE"
)

// Adjustment records one correction applied while normalizing a cart
// against live stock. Adjustments are returned to the caller once and
// never persisted.
type Adjustment struct {
	Code              AdjustmentCode `json:"code"`
	ProductID         string         `json:"productId"`
	ProductName       string         `json:"productName"`
	RequestedQuantity int32          `json:"requestedQuantity"`
	AdjustedQuantity  int32          `json:"adjustedQuantity"`
	Message           string         `json:"message"`
}

// SnapshotItem is a cart line joined with the product fields the
// storefront renders.
type SnapshotItem struct {
	ID                 string `json:"id"`
	ProductID          string `json:"productId"`
	Slug               string `json:"slug"`
	Name               string `json:"name"`
	ImageURL           string `json:"imageUrl"`
	PriceInCents       int64  `json:"priceInCents"`
	StockQuantity      int32  `json:"stockQuantity"`
	MaxAllowedQuantity int32  `json:"maxAllowedQuantity"`
	Quantity           int32  `json:"quantity"`
	LineTotalInCents   int64  `json:"lineTotalInCents"`
}

// Snapshot is the canonical cart view. Both the persisted user cart and
// the client-held guest cart resolve to this shape.
type Snapshot struct {
	Items           []SnapshotItem `json:"items"`
	ItemCount       int32          `json:"itemCount"`
	SubtotalInCents int64          `json:"subtotalInCents"`
	Adjustments     []Adjustment   `json:"adjustments"`
}

// EmptySnapshot returns a snapshot with non-nil slices so handlers
// serialize [] instead of null.
func EmptySnapshot() Snapshot {
	return Snapshot{Items: []SnapshotItem{}, Adjustments: []Adjustment{}}
}

// ClampMessage is the user-facing text for a CLAMPED_TO_STOCK adjustment.
func ClampMessage(name string, adjusted int32) string {
	return fmt.Sprintf("%s was adjusted to %d because of available stock.", name, adjusted)
}

// RemovedMessage is the user-facing text for a REMOVED_UNAVAILABLE adjustment.
func RemovedMessage(name string) string {
	return fmt.Sprintf("%s is no longer available and was removed from your cart.", name)
}

// NormalizeQuantity floors a requested quantity at zero.
func NormalizeQuantity(value int32) int32 {
	if value < 0 {
		return 0
	}
	return value
}

// Totalize fills ItemCount and SubtotalInCents from the snapshot items.
func Totalize(s *Snapshot) {
	var count int32
	var subtotal int64
	for _, item := range s.Items {
		count += item.Quantity
		subtotal += item.LineTotalInCents
	}
	s.ItemCount = count
	s.SubtotalInCents = subtotal
}
