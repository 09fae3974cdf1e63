package components

import (
	"event-ticketing/internal/domain/pricing"
	"event-ticketing/internal/domain/ticket"
	"event-ticketing/internal/pkg/clock"
	"event-ticketing/internal/usecase/commands"
	"event-ticketing/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		pricing.NewDefaultResolver,
		fx.As(new(pricing.Resolver)),
	),
	fx.Annotate(
		ticket.NewULIDCodeGenerator,
		fx.As(new(ticket.CodeGenerator)),
	),
	commands.NewCheckoutPolicy,
	commands.NewInventoryLedger,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewCartUseCase,
		commands.NewOrderUseCase,
		commands.NewCheckoutUseCase,
		commands.NewOutboxUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewAvailabilityQueries,
		queries.NewCartQueries,
		queries.NewOrderQueries,
	),
)
