package readstore

import (
	"context"

	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/pkg/pgconv"
	"event-ticketing/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	getTicketTypeByIDSQL = `
SELECT id, event_id, name, kind, base_price, quantity_total, quantity_sold, quantity_pending, table_id, created_at
FROM ticket_types
WHERE id = $1`

	getPriceTiersByTicketTypeSQL = `
SELECT id, strategy, price, priority, starts_at, ends_at, allocation_total, allocation_sold, allocation_pending, created_at
FROM price_tiers
WHERE ticket_type_id = $1
ORDER BY priority DESC, created_at DESC, id DESC`
)

type TicketTypeReadStore struct {
	db db.DBTX
}

func NewTicketTypeReadStore(dbtx db.DBTX) *TicketTypeReadStore {
	return &TicketTypeReadStore{db: dbtx}
}

func (r *TicketTypeReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.TicketTypeView, error) {
	var (
		v         queries.TicketTypeView
		total     pgtype.Int8
		tableID   pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, getTicketTypeByIDSQL, id).Scan(
		&v.ID, &v.EventID, &v.Name, &v.Kind, &v.BasePrice, &total, &v.QuantitySold, &v.QuantityPending, &tableID, &createdAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("ticket type not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find ticket type by ID", err)
	}
	v.QuantityTotal = pgconv.Int64PtrFromPgtype(total)
	v.TableID = pgconv.UUIDPtrFromPgtype(tableID)
	v.CreatedAt = createdAt.Time

	rows, err := r.db.Query(ctx, getPriceTiersByTicketTypeSQL, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find price tiers", err)
	}
	tiers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (queries.PriceTierView, error) {
		var (
			t                           queries.PriceTierView
			priority                    int32
			startsAt, endsAt, tierSince pgtype.Timestamptz
			allocationTotal             pgtype.Int8
		)
		err := row.Scan(&t.ID, &t.Strategy, &t.Price, &priority, &startsAt, &endsAt,
			&allocationTotal, &t.AllocationSold, &t.AllocationPending, &tierSince)
		t.Priority = int(priority)
		t.StartsAt = pgconv.TimePtrFromPgtype(startsAt)
		t.EndsAt = pgconv.TimePtrFromPgtype(endsAt)
		t.AllocationTotal = pgconv.Int64PtrFromPgtype(allocationTotal)
		t.CreatedAt = tierSince.Time
		return t, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan price tiers", err)
	}
	v.Tiers = tiers
	return &v, nil
}
