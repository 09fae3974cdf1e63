package handler

import (
	"net/http"

	"event-ticketing/internal/handler/api"
	"event-ticketing/internal/handler/middleware"
	"event-ticketing/internal/pkg/config"
	"event-ticketing/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	fx.In

	Availability *api.AvailabilityHandler
	Cart         *api.CartHandler
	Order        *api.OrderHandler
	Checkout     *api.CheckoutHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Authenticated by signature, not by buyer token.
	addRoutes(engine.Group("/webhooks"), []route{
		{Method: http.MethodPost, Path: "/payments", Handler: h.Checkout.PaymentCallback},
	})

	apiGroup := engine.Group("/api")
	{
		addRoutes(apiGroup.Group("/ticket-types"), []route{
			{Method: http.MethodGet, Path: "/:id/availability", Handler: h.Availability.Get},
		})

		cart := apiGroup.Group("/cart")
		cart.Use(authMiddleware.RequireAuth())
		{
			addRoutes(cart, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Cart.List},
				{Method: http.MethodPut, Path: "/items", Handler: h.Cart.SetItem},
				{Method: http.MethodDelete, Path: "/items/:ticketTypeId", Handler: h.Cart.RemoveItem},
			})
		}

		orders := apiGroup.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			addRoutes(orders, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Order.Create},
				{Method: http.MethodGet, Path: "", Handler: h.Order.List},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Order.Get},
				{Method: http.MethodPost, Path: "/:id/voucher", Handler: h.Order.ApplyVoucher},
				{Method: http.MethodDelete, Path: "/:id/voucher", Handler: h.Order.RemoveVoucher},
				{Method: http.MethodPost, Path: "/:id/checkout", Handler: h.Checkout.Checkout},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Order.Cancel},
				{Method: http.MethodGet, Path: "/:id/tickets", Handler: h.Order.Tickets},
				{Method: http.MethodPost, Path: "/:id/refund", Handler: h.Order.Refund, Mw: []gin.HandlerFunc{authMiddleware.RequireRoleAtLeast(jwt.RoleOperator)}},
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
