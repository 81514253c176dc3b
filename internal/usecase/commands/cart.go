package commands

import (
	"context"
	"math"

	"github.com/ed-robles/shop-template/internal/domain/cart"
	"github.com/ed-robles/shop-template/internal/domain/product"
	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/pkg/errs"
	"github.com/ed-robles/shop-template/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrCartItemNotFound = errs.New("cart item not found")
	ErrInvalidQuantity  = errs.New("invalid cart quantity")
)

// fallback when an adjustment references a product row that no longer exists
const unknownProductName = "Item"

type MergeItem struct {
	ProductID uuid.UUID
	Quantity  int32
}

type CartCommands interface {
	// GetCart returns the normalized cart, creating it on first touch.
	// Normalization may write, so even a read goes through a transaction.
	GetCart(ctx context.Context, userID uuid.UUID, email string) (*cart.Snapshot, error)
	AddItem(ctx context.Context, userID uuid.UUID, email string, productID uuid.UUID, quantity int32) (*cart.Snapshot, error)
	SetItemQuantity(ctx context.Context, userID uuid.UUID, email string, itemID uuid.UUID, quantity int32) (*cart.Snapshot, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, email string, itemID uuid.UUID) (*cart.Snapshot, error)
	MergeGuestCart(ctx context.Context, userID uuid.UUID, email string, items []MergeItem) (*cart.Snapshot, error)
}

type cartUseCaseImpl struct {
	uow shared.UnitOfWork
}

func NewCartUseCase(uow shared.UnitOfWork) CartCommands {
	return &cartUseCaseImpl{uow: uow}
}

func (uc *cartUseCaseImpl) GetCart(ctx context.Context, userID uuid.UUID, email string) (*cart.Snapshot, error) {
	var snapshot cart.Snapshot
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cartID, err := ensureCart(ctx, tx, userID, email)
		if err != nil {
			return err
		}
		snapshot, err = normalizeCart(ctx, tx, cartID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (uc *cartUseCaseImpl) AddItem(ctx context.Context, userID uuid.UUID, email string, productID uuid.UUID, quantity int32) (*cart.Snapshot, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	requestedAddition := quantity

	var snapshot cart.Snapshot
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cartID, err := ensureCart(ctx, tx, userID, email)
		if err != nil {
			return err
		}

		prod, err := tx.Products().FindByID(ctx, tx.DB(), productID)
		if err != nil && !isNotFound(err) {
			return err
		}

		if prod == nil || prod.Status != product.StatusPublished {
			name := unknownProductName
			if prod != nil {
				name = prod.Name
			}
			snapshot, err = normalizeCart(ctx, tx, cartID, []cart.Adjustment{
				unavailableAdjustment(productID, name, requestedAddition),
			})
			return err
		}

		stock := cart.NormalizeQuantity(prod.StockQuantity)
		if stock <= 0 {
			snapshot, err = normalizeCart(ctx, tx, cartID, []cart.Adjustment{
				unavailableAdjustment(productID, prod.Name, requestedAddition),
			})
			return err
		}

		existing, err := findItemByProduct(ctx, tx, cartID, productID)
		if err != nil {
			return err
		}

		var existingQuantity int32
		if existing != nil {
			existingQuantity = cart.NormalizeQuantity(existing.Quantity)
		}
		requested := addQuantities(existingQuantity, requestedAddition)
		adjusted := min32(requested, stock)

		if err := tx.Carts().UpsertItem(ctx, tx.DB(), cartID, productID, adjusted); err != nil {
			return err
		}

		var initial []cart.Adjustment
		if adjusted < requested {
			initial = append(initial, clampAdjustment(productID, prod.Name, requested, adjusted))
		}
		snapshot, err = normalizeCart(ctx, tx, cartID, initial)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// SetItemQuantity replaces a line's quantity. Zero removes the line;
// a negative value is rejected outright.
func (uc *cartUseCaseImpl) SetItemQuantity(ctx context.Context, userID uuid.UUID, email string, itemID uuid.UUID, quantity int32) (*cart.Snapshot, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	requested := quantity

	var snapshot cart.Snapshot
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cartID, err := ensureCart(ctx, tx, userID, email)
		if err != nil {
			return err
		}

		item, err := tx.Carts().FindItem(ctx, tx.DB(), cartID, itemID)
		if err != nil {
			if isNotFound(err) {
				return ErrCartItemNotFound
			}
			return err
		}

		if requested == 0 {
			if err := tx.Carts().DeleteItem(ctx, tx.DB(), item.ID); err != nil {
				return err
			}
			snapshot, err = normalizeCart(ctx, tx, cartID, nil)
			return err
		}

		prod, err := tx.Products().FindByID(ctx, tx.DB(), item.ProductID)
		if err != nil && !isNotFound(err) {
			return err
		}

		if prod == nil || prod.Status != product.StatusPublished || cart.NormalizeQuantity(prod.StockQuantity) <= 0 {
			if err := tx.Carts().DeleteItem(ctx, tx.DB(), item.ID); err != nil {
				return err
			}
			name := unknownProductName
			if prod != nil {
				name = prod.Name
			}
			snapshot, err = normalizeCart(ctx, tx, cartID, []cart.Adjustment{
				unavailableAdjustment(item.ProductID, name, requested),
			})
			return err
		}

		stock := cart.NormalizeQuantity(prod.StockQuantity)
		adjusted := min32(requested, stock)

		if err := tx.Carts().UpdateItemQuantity(ctx, tx.DB(), item.ID, adjusted); err != nil {
			return err
		}

		var initial []cart.Adjustment
		if adjusted < requested {
			initial = append(initial, clampAdjustment(item.ProductID, prod.Name, requested, adjusted))
		}
		snapshot, err = normalizeCart(ctx, tx, cartID, initial)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (uc *cartUseCaseImpl) RemoveItem(ctx context.Context, userID uuid.UUID, email string, itemID uuid.UUID) (*cart.Snapshot, error) {
	var snapshot cart.Snapshot
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cartID, err := ensureCart(ctx, tx, userID, email)
		if err != nil {
			return err
		}

		item, err := tx.Carts().FindItem(ctx, tx.DB(), cartID, itemID)
		if err != nil {
			if isNotFound(err) {
				return ErrCartItemNotFound
			}
			return err
		}

		if err := tx.Carts().DeleteItem(ctx, tx.DB(), item.ID); err != nil {
			return err
		}
		snapshot, err = normalizeCart(ctx, tx, cartID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// MergeGuestCart folds a guest cart into the user cart additively.
// Quantities for the same product are summed before the stock clamp, so
// retrying a merge after a lost response inflates quantities; callers
// clear guest state only after a successful merge.
func (uc *cartUseCaseImpl) MergeGuestCart(ctx context.Context, userID uuid.UUID, email string, items []MergeItem) (*cart.Snapshot, error) {
	merged := make(map[uuid.UUID]int32)
	ordered := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		quantity := cart.NormalizeQuantity(item.Quantity)
		if item.ProductID == uuid.Nil || quantity <= 0 {
			continue
		}
		if _, seen := merged[item.ProductID]; !seen {
			ordered = append(ordered, item.ProductID)
		}
		merged[item.ProductID] = addQuantities(merged[item.ProductID], quantity)
	}

	var snapshot cart.Snapshot
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cartID, err := ensureCart(ctx, tx, userID, email)
		if err != nil {
			return err
		}

		if len(ordered) == 0 {
			snapshot, err = normalizeCart(ctx, tx, cartID, nil)
			return err
		}

		products, err := tx.Products().FindPublishedByIDs(ctx, tx.DB(), ordered)
		if err != nil {
			return err
		}
		productByID := make(map[uuid.UUID]shared.ProductSnapshot, len(products))
		for _, p := range products {
			productByID[p.ID] = p
		}

		adjustments := []cart.Adjustment{}
		for _, productID := range ordered {
			guestQuantity := merged[productID]

			prod, found := productByID[productID]
			if !found {
				adjustments = append(adjustments, unavailableAdjustment(productID, unknownProductName, guestQuantity))
				continue
			}

			stock := cart.NormalizeQuantity(prod.StockQuantity)
			if stock <= 0 {
				adjustments = append(adjustments, unavailableAdjustment(productID, prod.Name, guestQuantity))
				continue
			}

			existing, err := findItemByProduct(ctx, tx, cartID, productID)
			if err != nil {
				return err
			}
			var existingQuantity int32
			if existing != nil {
				existingQuantity = cart.NormalizeQuantity(existing.Quantity)
			}
			requested := addQuantities(existingQuantity, guestQuantity)
			adjusted := min32(requested, stock)

			if err := tx.Carts().UpsertItem(ctx, tx.DB(), cartID, productID, adjusted); err != nil {
				return err
			}
			if adjusted < requested {
				adjustments = append(adjustments, clampAdjustment(productID, prod.Name, requested, adjusted))
			}
		}

		snapshot, err = normalizeCart(ctx, tx, cartID, adjustments)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ensureCart upserts the user row for FK integrity and returns the
// user's cart ID, creating the cart on first touch.
func ensureCart(ctx context.Context, tx shared.Tx, userID uuid.UUID, email string) (uuid.UUID, error) {
	if err := tx.Users().Upsert(ctx, tx.DB(), userID, email); err != nil {
		return uuid.Nil, err
	}
	return tx.Carts().FindOrCreateByUser(ctx, tx.DB(), userID)
}

// normalizeCart reloads the cart joined with live product rows, removes
// unavailable lines, clamps over-stock lines, and builds the snapshot.
// Running it twice in a row yields no further adjustments.
func normalizeCart(ctx context.Context, tx shared.Tx, cartID uuid.UUID, initial []cart.Adjustment) (cart.Snapshot, error) {
	rows, err := tx.Carts().ItemsWithProducts(ctx, tx.DB(), cartID)
	if err != nil {
		return cart.Snapshot{}, err
	}

	snapshot := cart.EmptySnapshot()
	snapshot.Adjustments = append(snapshot.Adjustments, initial...)

	for _, row := range rows {
		requested := cart.NormalizeQuantity(row.Quantity)
		stock := cart.NormalizeQuantity(row.StockQuantity)
		available := row.ProductFound && row.Published && stock > 0

		if !available || requested <= 0 {
			if err := tx.Carts().DeleteItem(ctx, tx.DB(), row.ItemID); err != nil {
				return cart.Snapshot{}, err
			}
			name := row.Name
			if !row.ProductFound {
				name = unknownProductName
			}
			snapshot.Adjustments = append(snapshot.Adjustments, unavailableAdjustment(row.ProductID, name, requested))
			continue
		}

		adjusted := min32(requested, stock)
		if adjusted != requested {
			if err := tx.Carts().UpdateItemQuantity(ctx, tx.DB(), row.ItemID, adjusted); err != nil {
				return cart.Snapshot{}, err
			}
			snapshot.Adjustments = append(snapshot.Adjustments, clampAdjustment(row.ProductID, row.Name, requested, adjusted))
		}

		snapshot.Items = append(snapshot.Items, cart.SnapshotItem{
			ID:                 row.ItemID.String(),
			ProductID:          row.ProductID.String(),
			Slug:               row.Slug,
			Name:               row.Name,
			ImageURL:           row.ImageURL,
			PriceInCents:       row.PriceInCents,
			StockQuantity:      stock,
			MaxAllowedQuantity: stock,
			Quantity:           adjusted,
			LineTotalInCents:   row.PriceInCents * int64(adjusted),
		})
	}

	cart.Totalize(&snapshot)
	return snapshot, nil
}

func findItemByProduct(ctx context.Context, tx shared.Tx, cartID, productID uuid.UUID) (*shared.CartItemWithProduct, error) {
	rows, err := tx.Carts().ItemsWithProducts(ctx, tx.DB(), cartID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ProductID == productID {
			return &rows[i], nil
		}
	}
	return nil, nil
}

func unavailableAdjustment(productID uuid.UUID, name string, requested int32) cart.Adjustment {
	return cart.Adjustment{
		Code:              cart.AdjustmentRemovedUnavailable,
		ProductID:         productID.String(),
		ProductName:       name,
		RequestedQuantity: requested,
		AdjustedQuantity:  0,
		Message:           cart.RemovedMessage(name),
	}
}

func clampAdjustment(productID uuid.UUID, name string, requested, adjusted int32) cart.Adjustment {
	return cart.Adjustment{
		Code:              cart.AdjustmentClampedToStock,
		ProductID:         productID.String(),
		ProductName:       name,
		RequestedQuantity: requested,
		AdjustedQuantity:  adjusted,
		Message:           cart.ClampMessage(name, adjusted),
	}
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// addQuantities sums two quantities, saturating at MaxInt32 so a huge
// request cannot wrap negative before the stock clamp runs.
func addQuantities(a, b int32) int32 {
	sum := int64(a) + int64(b)
	if sum > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(sum)
}

func isNotFound(err error) bool {
	return infra.IsKind(err, infra.KindNotFound)
}
