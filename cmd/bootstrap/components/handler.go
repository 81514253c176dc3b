package components

import (
	"github.com/ed-robles/shop-template/internal/handler"
	"github.com/ed-robles/shop-template/internal/handler/api"
	"github.com/ed-robles/shop-template/internal/handler/middleware"
	"github.com/ed-robles/shop-template/internal/pkg/config"
	"github.com/ed-robles/shop-template/internal/pkg/jwt"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewProductHandler,
		api.NewCartHandler,
		api.NewCheckoutHandler,
		api.NewWebhookHandler,
		api.NewOrderHandler,
		api.NewAdminProductHandler,
		api.NewAdminOrderHandler,
		NewAuthMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewAuthMiddleware(jwtService *jwt.Service, cfg config.Config) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(jwtService, cfg.Admin)
}

func NewHandlers(
	product *api.ProductHandler,
	cart *api.CartHandler,
	checkout *api.CheckoutHandler,
	webhook *api.WebhookHandler,
	order *api.OrderHandler,
	adminProduct *api.AdminProductHandler,
	adminOrder *api.AdminOrderHandler,
) handler.Handlers {
	return handler.Handlers{
		Product:      product,
		Cart:         cart,
		Checkout:     checkout,
		Webhook:      webhook,
		Order:        order,
		AdminProduct: adminProduct,
		AdminOrder:   adminOrder,
	}
}
