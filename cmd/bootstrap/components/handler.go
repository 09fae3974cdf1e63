package components

import (
	"event-ticketing/internal/handler"
	"event-ticketing/internal/handler/api"
	"event-ticketing/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAvailabilityHandler,
		api.NewCartHandler,
		api.NewOrderHandler,
		api.NewCheckoutHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
