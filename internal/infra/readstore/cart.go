package readstore

import (
	"context"

	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const getCartItemsSQL = `
SELECT c.ticket_type_id, tt.name, c.event_id, c.quantity, c.updated_at
FROM cart_items c
JOIN ticket_types tt ON tt.id = c.ticket_type_id
WHERE c.buyer_id = $1 AND c.event_id = $2
ORDER BY tt.name, c.ticket_type_id`

type CartReadStore struct {
	db db.DBTX
}

func NewCartReadStore(dbtx db.DBTX) *CartReadStore {
	return &CartReadStore{db: dbtx}
}

func (r *CartReadStore) ListByBuyerEvent(ctx context.Context, buyerID, eventID uuid.UUID) ([]*queries.CartItemView, error) {
	rows, err := r.db.Query(ctx, getCartItemsSQL, buyerID, eventID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find cart items", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.CartItemView, error) {
		var (
			it        queries.CartItemView
			updatedAt pgtype.Timestamptz
		)
		err := row.Scan(&it.TicketTypeID, &it.TicketTypeName, &it.EventID, &it.Quantity, &updatedAt)
		it.UpdatedAt = updatedAt.Time
		return &it, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan cart items", err)
	}
	return items, nil
}
