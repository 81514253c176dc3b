package bootstrap

import (
	"github.com/ed-robles/shop-template/internal/infra/payment"
	"github.com/ed-robles/shop-template/internal/pkg/config"
	"github.com/ed-robles/shop-template/internal/usecase/commands"

	"go.uber.org/fx"
)

var PaymentModule = fx.Module("payment",
	fx.Provide(
		fx.Annotate(
			NewStripeGateway,
			fx.As(new(commands.PaymentGateway)),
		),
	),
)

func NewStripeGateway(cfg config.Config) *payment.StripeGateway {
	return payment.NewStripeGateway(cfg.Stripe)
}
