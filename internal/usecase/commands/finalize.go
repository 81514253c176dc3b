package commands

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ed-robles/shop-template/internal/domain/order"
	"github.com/ed-robles/shop-template/internal/pkg/clock"
	"github.com/ed-robles/shop-template/internal/pkg/errs"
	"github.com/ed-robles/shop-template/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	errStockFinalization = errs.New("stock finalization failed")
	errOrderVanished     = errs.New("order disappeared during finalization")
)

const (
	notificationKindEmail = "email"
	notificationTopicPaid = "order.paid"
)

// orderFinalizer turns verified payment events into order rows. Every
// path funnels through upsertFromSession first so late, duplicated, and
// out-of-order deliveries all converge on the same row.
type orderFinalizer struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func newOrderFinalizer(uow shared.UnitOfWork, clk clock.Clock) *orderFinalizer {
	return &orderFinalizer{uow: uow, clock: clk}
}

// upsertFromSession creates or refreshes the order for a checkout
// session and rebuilds its line items. A terminal status on the
// existing row is never overwritten; PAYMENT_FAILED is also preserved
// here and only superseded by the paid path.
func (f *orderFinalizer) upsertFromSession(ctx context.Context, event *WebhookEvent, lines []SessionLineItem) (*shared.OrderSnapshot, error) {
	currency := strings.ToLower(event.Currency)
	if currency == "" {
		currency = "usd"
	}

	var snapshot *shared.OrderSnapshot
	err := f.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		userID, err := f.resolveUserID(ctx, tx, event)
		if err != nil {
			return err
		}
		customerEmail := optionalString(event.CustomerEmail)
		paymentIntentID := optionalString(event.PaymentIntentID)

		existing, err := tx.Orders().FindBySessionID(ctx, tx.DB(), event.SessionID)
		if err != nil && !isNotFound(err) {
			return err
		}

		var orderID uuid.UUID
		if existing != nil {
			nextStatus := order.StatusPaymentPending
			if existing.Status != order.StatusPaymentPending {
				nextStatus = existing.Status
			}
			update := shared.OrderUpdate{
				UserID:          coalesceUUID(userID, existing.UserID),
				CustomerEmail:   coalesceString(customerEmail, existing.CustomerEmail),
				PaymentIntentID: coalesceString(paymentIntentID, existing.PaymentIntentID),
				Currency:        currency,
				SubtotalInCents: event.AmountSubtotal,
				TotalInCents:    event.AmountTotal,
				Status:          nextStatus,
			}
			if err := tx.Orders().UpdateFromSession(ctx, tx.DB(), existing.ID, update); err != nil {
				return err
			}
			orderID = existing.ID
		} else {
			orderID, err = tx.Orders().Create(ctx, tx.DB(), shared.NewOrder{
				SessionID:       event.SessionID,
				UserID:          userID,
				CustomerEmail:   customerEmail,
				PaymentIntentID: paymentIntentID,
				Currency:        currency,
				SubtotalInCents: event.AmountSubtotal,
				TotalInCents:    event.AmountTotal,
				Status:          order.StatusPaymentPending,
			})
			if err != nil {
				return err
			}
		}

		items := make([]shared.NewOrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, shared.NewOrderItem{
				ProductID:         line.ProductID,
				ProductName:       line.Name,
				UnitAmountInCents: line.UnitAmountInCents,
				Quantity:          line.Quantity,
				LineTotalInCents:  line.LineTotalInCents,
			})
		}
		if err := tx.Orders().ReplaceItems(ctx, tx.DB(), orderID, items); err != nil {
			return err
		}

		snapshot, err = tx.Orders().FindByID(ctx, tx.DB(), orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// finalizePaid settles a paid session: decrement stock with a guarded
// update, clear the purchased quantities from the user's cart, mark the
// order PAID, and enqueue the confirmation mail. Any stock problem
// flips the order to STOCK_FAILED instead of failing the webhook.
func (f *orderFinalizer) finalizePaid(ctx context.Context, event *WebhookEvent, lines []SessionLineItem) (*shared.OrderSnapshot, error) {
	ord, err := f.upsertFromSession(ctx, event, lines)
	if err != nil {
		return nil, err
	}
	if ord.Status.IsTerminal() {
		return ord, nil
	}

	err = f.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		current, err := tx.Orders().FindByID(ctx, tx.DB(), ord.ID)
		if err != nil {
			if isNotFound(err) {
				return errOrderVanished
			}
			return err
		}
		if !current.Status.CanTransitionTo(order.StatusPaid) {
			return nil
		}

		quantities, ordered, err := aggregateQuantities(lines)
		if err != nil {
			return err
		}

		for _, productID := range ordered {
			quantity := quantities[productID]
			prod, err := tx.Products().FindByID(ctx, tx.DB(), productID)
			if err != nil {
				if isNotFound(err) {
					return errs.Mark(errs.New("purchased product no longer exists"), errStockFinalization)
				}
				return err
			}
			if prod.StockQuantity < quantity {
				return errs.Mark(errs.New("insufficient stock for purchased product"), errStockFinalization)
			}
		}

		for _, productID := range ordered {
			affected, err := tx.Products().DecrementStock(ctx, tx.DB(), productID, quantities[productID])
			if err != nil {
				return err
			}
			if affected != 1 {
				return errs.Mark(errs.New("concurrent inventory update prevented finalization"), errStockFinalization)
			}
		}

		if current.UserID != nil {
			if err := f.clearPurchasedFromCart(ctx, tx, *current.UserID, quantities); err != nil {
				return err
			}
		}

		paidAt := f.clock.Now()
		if err := tx.Orders().MarkPaid(ctx, tx.DB(), current.ID, optionalString(event.PaymentIntentID), optionalString(event.CustomerEmail), paidAt); err != nil {
			return err
		}

		return f.enqueuePaidNotification(ctx, tx, current.ID, event.CustomerEmail, paidAt)
	})

	if err != nil {
		if !errors.Is(err, errStockFinalization) {
			return nil, err
		}
		if markErr := f.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			return tx.Orders().MarkStockFailed(ctx, tx.DB(), ord.ID, optionalString(event.PaymentIntentID), optionalString(event.CustomerEmail))
		}); markErr != nil {
			return nil, markErr
		}
	}

	return f.reload(ctx, ord.ID)
}

// markPaymentFailed records a failed async payment. A terminal order is
// left untouched so a late failure can never undo a settled one.
func (f *orderFinalizer) markPaymentFailed(ctx context.Context, event *WebhookEvent, lines []SessionLineItem) (*shared.OrderSnapshot, error) {
	ord, err := f.upsertFromSession(ctx, event, lines)
	if err != nil {
		return nil, err
	}
	if !ord.Status.CanTransitionTo(order.StatusPaymentFailed) {
		return ord, nil
	}

	err = f.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Orders().MarkPaymentFailed(ctx, tx.DB(), ord.ID, optionalString(event.PaymentIntentID), optionalString(event.CustomerEmail))
	})
	if err != nil {
		return nil, err
	}
	return f.reload(ctx, ord.ID)
}

func (f *orderFinalizer) reload(ctx context.Context, orderID uuid.UUID) (*shared.OrderSnapshot, error) {
	var snapshot *shared.OrderSnapshot
	err := f.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		snapshot, err = tx.Orders().FindByID(ctx, tx.DB(), orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (f *orderFinalizer) resolveUserID(ctx context.Context, tx shared.Tx, event *WebhookEvent) (*uuid.UUID, error) {
	if event.UserID != uuid.Nil {
		user, err := tx.Users().FindByID(ctx, tx.DB(), event.UserID)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		if user != nil {
			return &user.ID, nil
		}
	}

	email := strings.TrimSpace(event.CustomerEmail)
	if email == "" {
		return nil, nil
	}
	user, err := tx.Users().FindByEmail(ctx, tx.DB(), email)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user.ID, nil
}

// clearPurchasedFromCart subtracts the purchased quantities from the
// buyer's cart, deleting lines that reach zero. The cart is left alone
// when the user has none.
func (f *orderFinalizer) clearPurchasedFromCart(ctx context.Context, tx shared.Tx, userID uuid.UUID, quantities map[uuid.UUID]int32) error {
	cartID, err := tx.Carts().FindByUser(ctx, tx.DB(), userID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	items, err := tx.Carts().ItemsWithProducts(ctx, tx.DB(), cartID)
	if err != nil {
		return err
	}

	var exhausted []uuid.UUID
	remaining := make(map[uuid.UUID]int32)
	for _, item := range items {
		purchased, ok := quantities[item.ProductID]
		if !ok || purchased <= 0 {
			continue
		}
		next := item.Quantity - purchased
		if next <= 0 {
			exhausted = append(exhausted, item.ItemID)
		} else {
			remaining[item.ItemID] = next
		}
	}

	if len(exhausted) == len(items) && len(remaining) == 0 {
		return tx.Carts().Clear(ctx, tx.DB(), cartID)
	}
	if err := tx.Carts().DeleteItems(ctx, tx.DB(), exhausted); err != nil {
		return err
	}
	for itemID, next := range remaining {
		if err := tx.Carts().UpdateItemQuantity(ctx, tx.DB(), itemID, next); err != nil {
			return err
		}
	}
	return nil
}

func (f *orderFinalizer) enqueuePaidNotification(ctx context.Context, tx shared.Tx, orderID uuid.UUID, email string, paidAt time.Time) error {
	payload, err := json.Marshal(map[string]string{
		"order_id": orderID.String(),
		"email":    strings.TrimSpace(email),
	})
	if err != nil {
		return errs.Wrap(err, "failed to marshal notification payload")
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), notificationKindEmail, notificationTopicPaid, payload, paidAt)
}

// aggregateQuantities sums purchased quantities per product and rejects
// sessions whose lines are missing product metadata, which would make a
// correct stock decrement impossible.
func aggregateQuantities(lines []SessionLineItem) (map[uuid.UUID]int32, []uuid.UUID, error) {
	quantities := make(map[uuid.UUID]int32, len(lines))
	ordered := make([]uuid.UUID, 0, len(lines))

	for _, line := range lines {
		if line.ProductID == nil {
			return nil, nil, errs.Mark(errs.New("purchased line item is missing product metadata"), errStockFinalization)
		}
		if _, seen := quantities[*line.ProductID]; !seen {
			ordered = append(ordered, *line.ProductID)
		}
		quantities[*line.ProductID] += line.Quantity
	}

	if len(ordered) == 0 {
		return nil, nil, errs.Mark(errs.New("no purchasable line items found for session"), errStockFinalization)
	}
	return quantities, ordered, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func coalesceString(next, existing *string) *string {
	if next != nil {
		return next
	}
	return existing
}

func coalesceUUID(next, existing *uuid.UUID) *uuid.UUID {
	if next != nil {
		return next
	}
	return existing
}
