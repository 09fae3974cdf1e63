package commands

import (
	"context"
	"log/slog"
	"time"

	"event-ticketing/internal/pkg/clock"
	"event-ticketing/internal/usecase/shared"
)

type OutboxCommands interface {
	DispatchPending(ctx context.Context) (int, error)
}

type outboxUseCaseImpl struct {
	uow       shared.UnitOfWork
	publisher EventPublisher
	clock     clock.Clock
	policy    CheckoutPolicy
}

func NewOutboxUseCase(uow shared.UnitOfWork, publisher EventPublisher, clk clock.Clock, policy CheckoutPolicy) OutboxCommands {
	return &outboxUseCaseImpl{uow: uow, publisher: publisher, clock: clk, policy: policy}
}

// DispatchPending publishes one batch of due notification jobs. Failed jobs are retried
// with exponential backoff until the attempt limit marks them failed.
func (uc *outboxUseCaseImpl) DispatchPending(ctx context.Context) (int, error) {
	sent := 0
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		sent = 0
		now := uc.clock.Now()
		jobs, err := tx.Notifications().ClaimBatch(ctx, tx.DB(), now, uc.policy.DispatchBatchSize)
		if err != nil {
			return err
		}

		for _, job := range jobs {
			if perr := uc.publisher.Publish(ctx, job.Topic, job.Key, job.Payload); perr != nil {
				slog.Warn("notification dispatch failed",
					"job_id", job.ID.String(),
					"kind", job.Kind,
					"attempt", job.Attempts+1,
					"error", perr.Error())
				retryAt := now.Add(retryDelay(job.Attempts))
				if err := tx.Notifications().MarkFailed(ctx, tx.DB(), job.ID, perr.Error(), retryAt, uc.policy.DispatchMaxAttempts); err != nil {
					return err
				}
				continue
			}
			if err := tx.Notifications().MarkSent(ctx, tx.DB(), job.ID, now); err != nil {
				return err
			}
			sent++
		}
		return nil
	})
	return sent, err
}

func retryDelay(attempts int) time.Duration {
	if attempts > 10 {
		attempts = 10
	}
	return time.Duration(1<<attempts) * time.Second
}
