package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ed-robles/shop-template/internal/handler/api"
	"github.com/ed-robles/shop-template/internal/handler/middleware"
	"github.com/ed-robles/shop-template/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Product      *api.ProductHandler
	Cart         *api.CartHandler
	Checkout     *api.CheckoutHandler
	Webhook      *api.WebhookHandler
	Order        *api.OrderHandler
	AdminProduct *api.AdminProductHandler
	AdminOrder   *api.AdminOrderHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, handlers Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, handlers, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.MetricsMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", middleware.PrometheusHandler())

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		products := apiGroup.Group("/products")
		{
			addRoutes(products, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Product.ListPublished},
				{Method: http.MethodGet, Path: "/:slug", Handler: h.Product.GetBySlug},
			})
		}

		cart := apiGroup.Group("/cart")
		cart.Use(authMiddleware.RequireAuth())
		{
			addRoutes(cart, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Cart.GetCart},
				{Method: http.MethodPost, Path: "/items", Handler: h.Cart.AddItem},
				{Method: http.MethodPatch, Path: "/items/:id", Handler: h.Cart.UpdateItem},
				{Method: http.MethodDelete, Path: "/items/:id", Handler: h.Cart.RemoveItem},
				{Method: http.MethodPost, Path: "/merge", Handler: h.Cart.Merge},
			})
		}

		checkout := apiGroup.Group("/checkout")
		checkout.Use(authMiddleware.RequireAuth())
		{
			addRoutes(checkout, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Checkout.StartCheckout},
			})
		}

		orders := apiGroup.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			addRoutes(orders, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Order.ListOwn},
				{Method: http.MethodGet, Path: "/by-session", Handler: h.Order.GetBySession},
			})
		}

		// Signature-verified; no bearer auth on purpose.
		webhooks := apiGroup.Group("/webhooks")
		{
			addRoutes(webhooks, []route{
				{Method: http.MethodPost, Path: "/stripe", Handler: h.Webhook.HandleStripe},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/products", Handler: h.AdminProduct.List},
				{Method: http.MethodPost, Path: "/products", Handler: h.AdminProduct.Create},
				{Method: http.MethodGet, Path: "/products/:id", Handler: h.AdminProduct.Get},
				{Method: http.MethodPatch, Path: "/products/:id", Handler: h.AdminProduct.Update},
				{Method: http.MethodDelete, Path: "/products/:id", Handler: h.AdminProduct.Delete},
				{Method: http.MethodGet, Path: "/orders", Handler: h.AdminOrder.List},
				{Method: http.MethodGet, Path: "/orders/:id", Handler: h.AdminOrder.Get},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
