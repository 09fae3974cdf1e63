package repository

import (
	"context"

	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/pkg/pgconv"
	"event-ticketing/internal/usecase/shared"
)

const recordPaymentEventSQL = `
INSERT INTO payment_events (provider, event_id, order_id, outcome, received_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (provider, event_id) DO NOTHING`

type PaymentEventRepository struct{}

func NewPaymentEventRepository() *PaymentEventRepository {
	return &PaymentEventRepository{}
}

func (r *PaymentEventRepository) TryRecord(ctx context.Context, tx db.DBTX, ev shared.PaymentEventRecord) (bool, error) {
	tag, err := tx.Exec(ctx, recordPaymentEventSQL,
		ev.Provider, ev.EventID, pgconv.UUIDPtrToPgtype(ev.OrderID), ev.Outcome, pgconv.TimeToPgtype(ev.ReceivedAt))
	if err != nil {
		return false, infra.WrapRepoErr("failed to record payment event", err)
	}
	return guardHeld(tag), nil
}
