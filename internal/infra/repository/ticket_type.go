package repository

import (
	"context"

	"event-ticketing/internal/domain/money"
	"event-ticketing/internal/domain/tickettype"
	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	findTicketTypeSQL = `
SELECT id, event_id, name, kind, base_price, quantity_total, quantity_sold, quantity_pending, table_id, created_at
FROM ticket_types
WHERE id = $1`

	// The capacity guard and the increment are one statement, so two buyers racing for the
	// last unit cannot both pass.
	reserveTicketTypeSQL = `
UPDATE ticket_types
SET quantity_pending = quantity_pending + $2, updated_at = now()
WHERE id = $1
  AND (quantity_total IS NULL OR quantity_sold + quantity_pending + $2 <= quantity_total)`

	commitTicketTypeSQL = `
UPDATE ticket_types
SET quantity_pending = quantity_pending - $2, quantity_sold = quantity_sold + $2, updated_at = now()
WHERE id = $1 AND quantity_pending >= $2`

	releaseTicketTypeSQL = `
UPDATE ticket_types
SET quantity_pending = quantity_pending - $2, updated_at = now()
WHERE id = $1 AND quantity_pending >= $2`
)

type TicketTypeRepository struct{}

func NewTicketTypeRepository() *TicketTypeRepository {
	return &TicketTypeRepository{}
}

func (r *TicketTypeRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*tickettype.TicketType, error) {
	var (
		ttID, eventID uuid.UUID
		name, kind    string
		basePrice     int64
		total         pgtype.Int8
		sold, pending int64
		tableID       pgtype.UUID
		createdAt     pgtype.Timestamptz
	)
	err := tx.QueryRow(ctx, findTicketTypeSQL, id).
		Scan(&ttID, &eventID, &name, &kind, &basePrice, &total, &sold, &pending, &tableID, &createdAt)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find ticket type", err)
	}

	tt := tickettype.ReconstructTicketType(
		ttID, eventID, name, tickettype.Kind(kind), money.New(basePrice),
		pgconv.Int64PtrFromPgtype(total), sold, pending,
		pgconv.UUIDPtrFromPgtype(tableID), createdAt.Time,
	)
	if err := tt.Validate(); err != nil {
		return nil, infra.WrapRepoErr("stored ticket type is inconsistent", err)
	}
	return tt, nil
}

func (r *TicketTypeRepository) TryReservePending(ctx context.Context, tx db.DBTX, id uuid.UUID, qty int64) (bool, error) {
	tag, err := tx.Exec(ctx, reserveTicketTypeSQL, id, qty)
	if err != nil {
		return false, infra.WrapRepoErr("failed to reserve ticket type inventory", err)
	}
	return guardHeld(tag), nil
}

func (r *TicketTypeRepository) CommitPending(ctx context.Context, tx db.DBTX, id uuid.UUID, qty int64) error {
	tag, err := tx.Exec(ctx, commitTicketTypeSQL, id, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to commit ticket type inventory", err)
	}
	return mustAffect(tag, "pending ticket type inventory is lower than the committed quantity")
}

func (r *TicketTypeRepository) ReleasePending(ctx context.Context, tx db.DBTX, id uuid.UUID, qty int64) error {
	tag, err := tx.Exec(ctx, releaseTicketTypeSQL, id, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to release ticket type inventory", err)
	}
	return mustAffect(tag, "pending ticket type inventory is lower than the released quantity")
}
