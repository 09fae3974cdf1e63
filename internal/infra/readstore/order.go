package readstore

import (
	"context"
	"time"

	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/pkg/pgconv"
	"event-ticketing/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	getOrderByIDSQL = `
SELECT o.id, o.buyer_id, o.event_id, o.status, o.currency, o.subtotal, o.discount_amount, o.service_fee,
       o.total, o.refunded_amount, o.promotion_id, v.code, o.payment_ref, o.expires_at, o.confirmed_at, o.created_at, o.updated_at
FROM orders o
LEFT JOIN voucher_codes v ON v.id = o.voucher_code_id
WHERE o.id = $1`

	getOrderItemsSQL = `
SELECT i.id, i.ticket_type_id, tt.name, i.price_tier_id, i.quantity, i.unit_price, i.line_total
FROM order_items i
JOIN ticket_types tt ON tt.id = i.ticket_type_id
WHERE i.order_id = $1
ORDER BY tt.name, i.id`

	getOrdersByBuyerFirstPageSQL = `
SELECT id, event_id, status, currency, total, created_at
FROM orders
WHERE buyer_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

	getOrdersByBuyerKeysetSQL = `
SELECT id, event_id, status, currency, total, created_at
FROM orders
WHERE buyer_id = $1 AND (created_at, id) < ($2, $3)
ORDER BY created_at DESC, id DESC
LIMIT $4`

	getTicketsByOrderSQL = `
SELECT id, order_id, ticket_type_id, code, status, created_at
FROM tickets
WHERE order_id = $1
ORDER BY created_at, code`
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(dbtx db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: dbtx}
}

func (r *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	var (
		v                                            queries.OrderView
		promotionID                                  pgtype.UUID
		code, paymentRef                             pgtype.Text
		expiresAt, confirmedAt, createdAt, updatedAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, getOrderByIDSQL, id).Scan(
		&v.ID, &v.BuyerID, &v.EventID, &v.Status, &v.Currency, &v.Subtotal, &v.DiscountAmount, &v.ServiceFee,
		&v.Total, &v.RefundedAmount, &promotionID, &code, &paymentRef, &expiresAt, &confirmedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order by ID", err)
	}
	v.PromotionID = pgconv.UUIDPtrFromPgtype(promotionID)
	v.VoucherCode = pgconv.StringPtrFromPgtype(code)
	v.PaymentRef = pgconv.StringPtrFromPgtype(paymentRef)
	v.ExpiresAt = expiresAt.Time
	v.ConfirmedAt = pgconv.TimePtrFromPgtype(confirmedAt)
	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time

	items, err := r.findItems(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Items = items
	return &v, nil
}

func (r *OrderReadStore) findItems(ctx context.Context, orderID uuid.UUID) ([]queries.OrderItemView, error) {
	rows, err := r.db.Query(ctx, getOrderItemsSQL, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find order items", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (queries.OrderItemView, error) {
		var (
			it     queries.OrderItemView
			tierID pgtype.UUID
		)
		err := row.Scan(&it.ID, &it.TicketTypeID, &it.TicketTypeName, &tierID, &it.Quantity, &it.UnitPrice, &it.LineTotal)
		it.PriceTierID = pgconv.UUIDPtrFromPgtype(tierID)
		return it, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan order items", err)
	}
	return items, nil
}

func (r *OrderReadStore) ListByBuyerFirstPage(ctx context.Context, buyerID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	rows, err := r.db.Query(ctx, getOrdersByBuyerFirstPageSQL, buyerID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find orders first page", err)
	}
	return collectOrderListItems(rows, "failed to find orders first page")
}

func (r *OrderReadStore) ListByBuyerKeyset(ctx context.Context, buyerID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	rows, err := r.db.Query(ctx, getOrdersByBuyerKeysetSQL, buyerID, pgconv.TimeToPgtype(lastCreatedAt), lastID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find orders with keyset", err)
	}
	return collectOrderListItems(rows, "failed to find orders with keyset")
}

func collectOrderListItems(rows pgx.Rows, msg string) ([]*queries.OrderListItem, error) {
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.OrderListItem, error) {
		var (
			it        queries.OrderListItem
			createdAt pgtype.Timestamptz
		)
		err := row.Scan(&it.ID, &it.EventID, &it.Status, &it.Currency, &it.Total, &createdAt)
		it.CreatedAt = createdAt.Time
		return &it, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr(msg, err)
	}
	return items, nil
}

func (r *OrderReadStore) ListTickets(ctx context.Context, orderID uuid.UUID) ([]*queries.TicketView, error) {
	rows, err := r.db.Query(ctx, getTicketsByOrderSQL, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find tickets by order", err)
	}
	tickets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.TicketView, error) {
		var (
			t         queries.TicketView
			createdAt pgtype.Timestamptz
		)
		err := row.Scan(&t.ID, &t.OrderID, &t.TicketTypeID, &t.Code, &t.Status, &createdAt)
		t.CreatedAt = createdAt.Time
		return &t, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan tickets", err)
	}
	return tickets, nil
}
