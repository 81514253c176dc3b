package commands

import (
	"context"

	"github.com/ed-robles/shop-template/internal/pkg/errs"
	"github.com/ed-robles/shop-template/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrCartEmpty             = errs.New("cart is empty")
	ErrCheckoutSessionFailed = errs.New("failed to create checkout session")
)

type StartCheckoutResult struct {
	URL string
}

type CheckoutCommands interface {
	StartCheckout(ctx context.Context, userID uuid.UUID, email string) (*StartCheckoutResult, error)
}

type checkoutUseCaseImpl struct {
	uow     shared.UnitOfWork
	gateway PaymentGateway
}

func NewCheckoutUseCase(uow shared.UnitOfWork, gateway PaymentGateway) CheckoutCommands {
	return &checkoutUseCaseImpl{uow: uow, gateway: gateway}
}

// StartCheckout normalizes the cart and opens a hosted checkout session
// for the normalized lines. Stock is not reserved here; the paid-order
// finalizer re-checks stock when the payment lands.
func (uc *checkoutUseCaseImpl) StartCheckout(ctx context.Context, userID uuid.UUID, email string) (*StartCheckoutResult, error) {
	var lines []CheckoutLine

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cartID, err := ensureCart(ctx, tx, userID, email)
		if err != nil {
			return err
		}
		snapshot, err := normalizeCart(ctx, tx, cartID, nil)
		if err != nil {
			return err
		}
		for _, item := range snapshot.Items {
			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				continue
			}
			lines = append(lines, CheckoutLine{
				ProductID:         productID,
				Name:              item.Name,
				ImageURL:          item.ImageURL,
				UnitAmountInCents: item.PriceInCents,
				Quantity:          item.Quantity,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	session, err := uc.gateway.CreateCheckoutSession(ctx, CheckoutSessionInput{
		UserID: userID,
		Email:  email,
		Lines:  lines,
	})
	if err != nil {
		return nil, errs.Mark(err, ErrCheckoutSessionFailed)
	}
	if session.URL == "" {
		return nil, ErrCheckoutSessionFailed
	}

	return &StartCheckoutResult{URL: session.URL}, nil
}
