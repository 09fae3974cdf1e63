package repository

import (
	"context"
	"time"

	"event-ticketing/internal/domain/ticket"
	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	createTicketsSQL = `
INSERT INTO tickets (id, order_id, order_item_id, ticket_type_id, holder_id, code, status, created_at, updated_at)
SELECT t.id, t.order_id, t.order_item_id, t.ticket_type_id, t.holder_id, t.code, t.status, t.created_at, t.created_at
FROM unnest($1::uuid[], $2::uuid[], $3::uuid[], $4::uuid[], $5::uuid[], $6::text[], $7::text[], $8::timestamptz[])
    AS t(id, order_id, order_item_id, ticket_type_id, holder_id, code, status, created_at)`

	cancelTicketsByOrderSQL = `
UPDATE tickets
SET status = 'CANCELLED', updated_at = $2
WHERE order_id = $1 AND status = 'ACTIVE'`
)

type TicketRepository struct{}

func NewTicketRepository() *TicketRepository {
	return &TicketRepository{}
}

func (r *TicketRepository) CreateBatch(ctx context.Context, tx db.DBTX, tickets []*ticket.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	n := len(tickets)
	var (
		ids         = make([]uuid.UUID, n)
		orderIDs    = make([]uuid.UUID, n)
		itemIDs     = make([]uuid.UUID, n)
		ticketTypes = make([]uuid.UUID, n)
		holders     = make([]pgtype.UUID, n)
		codes       = make([]string, n)
		statuses    = make([]string, n)
		createdAt   = make([]pgtype.Timestamptz, n)
	)
	for i, t := range tickets {
		ids[i] = t.ID()
		orderIDs[i] = t.OrderID()
		itemIDs[i] = t.OrderItemID()
		ticketTypes[i] = t.TicketTypeID()
		holders[i] = pgconv.UUIDPtrToPgtype(t.HolderID())
		codes[i] = t.Code()
		statuses[i] = string(t.Status())
		createdAt[i] = pgconv.TimeToPgtype(t.CreatedAt())
	}

	_, err := tx.Exec(ctx, createTicketsSQL, ids, orderIDs, itemIDs, ticketTypes, holders, codes, statuses, createdAt)
	if err != nil {
		return infra.WrapRepoErr("failed to create tickets", err)
	}
	return nil
}

func (r *TicketRepository) CancelByOrder(ctx context.Context, tx db.DBTX, orderID uuid.UUID, at time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, cancelTicketsByOrderSQL, orderID, pgconv.TimeToPgtype(at))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to cancel tickets", err)
	}
	return tag.RowsAffected(), nil
}
