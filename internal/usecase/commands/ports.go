package commands

import (
	"context"

	"github.com/google/uuid"
)

// CheckoutLine is one sellable line handed to the payment provider.
type CheckoutLine struct {
	ProductID         uuid.UUID
	Name              string
	ImageURL          string
	UnitAmountInCents int64
	Quantity          int32
}

type CheckoutSessionInput struct {
	UserID uuid.UUID
	Email  string
	Lines  []CheckoutLine
}

type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is the provider-neutral view of a payment event. UserID
// is recovered from the session metadata written at checkout time and
// may be uuid.Nil on malformed events.
type WebhookEvent struct {
	ID              string
	Type            string
	SessionID       string
	PaymentStatus   string
	PaymentIntentID string
	Currency        string
	AmountSubtotal  int64
	AmountTotal     int64
	UserID          uuid.UUID
	CustomerEmail   string
	Payload         []byte
}

// SessionLineItem is one purchased line pulled back from the provider
// when an order is materialized, already normalized: quantity is at
// least one, totals are filled from the subtotal when the unit amount
// is absent. ProductID is nil when the line carries no product
// metadata.
type SessionLineItem struct {
	ProductID         *uuid.UUID
	Name              string
	UnitAmountInCents int64
	Quantity          int32
	LineTotalInCents  int64
}

// PaymentGateway abstracts the hosted-checkout provider.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, input CheckoutSessionInput) (*CheckoutSession, error)
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
	SessionLineItems(ctx context.Context, sessionID string) ([]SessionLineItem, error)
}

// Payment event types dispatched by the webhook handler.
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"

	PaymentStatusPaid = "paid"
)
