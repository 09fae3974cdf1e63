package bootstrap

import (
	"event-ticketing/internal/infra/worker"
	"event-ticketing/internal/pkg/config"
	"event-ticketing/internal/usecase/commands"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Invoke(
		registerWorkers,
	),
)

func registerWorkers(lc fx.Lifecycle, cfg config.Config, orders commands.OrderCommands, outbox commands.OutboxCommands) {
	sweeper := worker.NewPeriodic("order-sweeper", cfg.Checkout.SweepInterval, orders.ExpireStaleOrders)
	dispatcher := worker.NewPeriodic("outbox-dispatcher", cfg.Kafka.DispatchInterval, outbox.DispatchPending)

	for _, w := range []*worker.Periodic{sweeper, dispatcher} {
		lc.Append(fx.Hook{
			OnStart: w.Start,
			OnStop:  w.Stop,
		})
	}
}
