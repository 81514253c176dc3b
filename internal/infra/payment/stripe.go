package payment

import (
	"context"
	"encoding/json"

	"github.com/ed-robles/shop-template/internal/pkg/config"
	"github.com/ed-robles/shop-template/internal/pkg/errs"
	"github.com/ed-robles/shop-template/internal/usecase/commands"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	metadataProductID = "productId"
	metadataUserID    = "userId"

	fallbackLineName = "Item"
)

// StripeGateway backs the PaymentGateway port with Stripe hosted
// checkout. It is the only package that touches the Stripe SDK.
type StripeGateway struct {
	cfg config.StripeConfig
}

func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	stripe.Key = cfg.SecretKey
	return &StripeGateway{cfg: cfg}
}

var _ commands.PaymentGateway = (*StripeGateway)(nil)

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, input commands.CheckoutSessionInput) (*commands.CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.Lines))
	for _, line := range input.Lines {
		priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(g.cfg.Currency),
			UnitAmount: stripe.Int64(line.UnitAmountInCents),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name:     stripe.String(line.Name),
				Metadata: map[string]string{metadataProductID: line.ProductID.String()},
			},
		}
		if line.ImageURL != "" {
			priceData.ProductData.Images = stripe.StringSlice([]string{line.ImageURL})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: priceData,
			Quantity:  stripe.Int64(int64(line.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(g.cfg.CheckoutBaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(g.cfg.CheckoutBaseURL + "/cart"),
		Metadata:   map[string]string{metadataUserID: input.UserID.String()},
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(g.cfg.ShippingCountries),
		},
	}
	if input.Email != "" {
		params.CustomerEmail = stripe.String(input.Email)
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, errs.Wrap(err, "failed to create checkout session")
	}
	return &commands.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*commands.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.cfg.WebhookSecret)
	if err != nil {
		return nil, errs.Wrap(err, "failed to verify webhook signature")
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, errs.Wrap(err, "failed to decode event payload")
	}

	out := &commands.WebhookEvent{
		ID:             event.ID,
		Type:           string(event.Type),
		SessionID:      sess.ID,
		PaymentStatus:  string(sess.PaymentStatus),
		Currency:       string(sess.Currency),
		AmountSubtotal: sess.AmountSubtotal,
		AmountTotal:    sess.AmountTotal,
		Payload:        event.Data.Raw,
	}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	if raw := sess.Metadata[metadataUserID]; raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			out.UserID = id
		}
	}
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		out.CustomerEmail = sess.CustomerDetails.Email
	} else {
		out.CustomerEmail = sess.CustomerEmail
	}
	return out, nil
}

// SessionLineItems pages through the purchased lines and normalizes
// them so the order writer never sees a zero quantity or an empty name.
func (g *StripeGateway) SessionLineItems(ctx context.Context, sessionID string) ([]commands.SessionLineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx
	params.AddExpand("data.price.product")

	items := make([]commands.SessionLineItem, 0)
	iter := session.ListLineItems(params)
	for iter.Next() {
		items = append(items, normalizeLineItem(iter.LineItem()))
	}
	if err := iter.Err(); err != nil {
		return nil, errs.Wrap(err, "failed to list session line items")
	}
	return items, nil
}

func normalizeLineItem(li *stripe.LineItem) commands.SessionLineItem {
	item := commands.SessionLineItem{
		Name:             li.Description,
		Quantity:         int32(li.Quantity),
		LineTotalInCents: li.AmountSubtotal,
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	if li.Price != nil {
		item.UnitAmountInCents = li.Price.UnitAmount
		if id := productIDFromPrice(li.Price); id != nil {
			item.ProductID = id
		}
		if item.Name == "" && li.Price.Product != nil {
			item.Name = li.Price.Product.Name
		}
	}
	if item.UnitAmountInCents == 0 && item.Quantity > 0 {
		item.UnitAmountInCents = li.AmountSubtotal / int64(item.Quantity)
	}
	if item.LineTotalInCents == 0 {
		item.LineTotalInCents = item.UnitAmountInCents * int64(item.Quantity)
	}
	if item.Name == "" {
		item.Name = fallbackLineName
	}
	return item
}

func productIDFromPrice(price *stripe.Price) *uuid.UUID {
	raw := price.Metadata[metadataProductID]
	if raw == "" && price.Product != nil {
		raw = price.Product.Metadata[metadataProductID]
	}
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
