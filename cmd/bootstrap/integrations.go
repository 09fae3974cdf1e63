package bootstrap

import (
	"context"

	"event-ticketing/internal/infra/cache"
	"event-ticketing/internal/infra/messaging"
	"event-ticketing/internal/infra/payment"
	"event-ticketing/internal/pkg/config"
	"event-ticketing/internal/usecase/commands"
	"event-ticketing/internal/usecase/queries"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// PaymentModule wires the Stripe checkout gateway and its webhook verifier.
var PaymentModule = fx.Module("payment",
	fx.Provide(
		payment.NewStripeGateway,
		fx.Annotate(
			payment.NewWebhookVerifier,
			fx.As(new(commands.PaymentCallbackVerifier)),
		),
	),
)

var MessagingModule = fx.Module("messaging",
	fx.Provide(
		NewPublisher,
	),
)

var CacheModule = fx.Module("cache",
	fx.Provide(
		NewRedisClient,
		fx.Annotate(
			cache.NewAvailabilityCache,
			fx.As(new(queries.AvailabilityCache)),
			fx.As(new(commands.AvailabilityInvalidator)),
		),
	),
)

func NewPublisher(lc fx.Lifecycle, cfg config.Config) commands.EventPublisher {
	publisher := messaging.NewPublisher(cfg)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})
	return publisher
}

// NewRedisClient returns nil when Redis is disabled or unreachable; the cache then
// degrades to a pass-through.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	client := cache.NewRedisClient(cfg)
	if client != nil {
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				return client.Close()
			},
		})
	}
	return client
}
