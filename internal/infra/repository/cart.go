package repository

import (
	"context"

	"event-ticketing/internal/domain/cart"
	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	upsertCartItemSQL = `
INSERT INTO cart_items (buyer_id, ticket_type_id, event_id, quantity, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (buyer_id, ticket_type_id)
DO UPDATE SET quantity = EXCLUDED.quantity, event_id = EXCLUDED.event_id, updated_at = EXCLUDED.updated_at`

	deleteCartItemSQL = `
DELETE FROM cart_items WHERE buyer_id = $1 AND ticket_type_id = $2`

	listCartItemsSQL = `
SELECT buyer_id, event_id, ticket_type_id, quantity, updated_at
FROM cart_items
WHERE buyer_id = $1 AND event_id = $2
ORDER BY ticket_type_id`

	clearCartEventSQL = `
DELETE FROM cart_items WHERE buyer_id = $1 AND event_id = $2`
)

type CartRepository struct{}

func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

func (r *CartRepository) Upsert(ctx context.Context, tx db.DBTX, item *cart.Item) error {
	_, err := tx.Exec(ctx, upsertCartItemSQL,
		item.BuyerID(), item.TicketTypeID(), item.EventID(), item.Quantity(), pgconv.TimeToPgtype(item.UpdatedAt()))
	if err != nil {
		return infra.WrapRepoErr("failed to upsert cart item", err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, tx db.DBTX, buyerID, ticketTypeID uuid.UUID) error {
	if _, err := tx.Exec(ctx, deleteCartItemSQL, buyerID, ticketTypeID); err != nil {
		return infra.WrapRepoErr("failed to delete cart item", err)
	}
	return nil
}

func (r *CartRepository) ListByBuyerEvent(ctx context.Context, tx db.DBTX, buyerID, eventID uuid.UUID) ([]*cart.Item, error) {
	rows, err := tx.Query(ctx, listCartItemsSQL, buyerID, eventID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list cart items", err)
	}
	defer rows.Close()

	var items []*cart.Item
	for rows.Next() {
		var (
			buyer, event, ticketType uuid.UUID
			quantity                 int64
			updatedAt                pgtype.Timestamptz
		)
		if err := rows.Scan(&buyer, &event, &ticketType, &quantity, &updatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart item", err)
		}
		items = append(items, cart.ReconstructItem(buyer, event, ticketType, quantity, updatedAt.Time))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart items", err)
	}
	return items, nil
}

func (r *CartRepository) ClearEvent(ctx context.Context, tx db.DBTX, buyerID, eventID uuid.UUID) error {
	if _, err := tx.Exec(ctx, clearCartEventSQL, buyerID, eventID); err != nil {
		return infra.WrapRepoErr("failed to clear cart", err)
	}
	return nil
}
