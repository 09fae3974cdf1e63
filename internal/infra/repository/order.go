package repository

import (
	"context"
	"time"

	"event-ticketing/internal/domain/money"
	"event-ticketing/internal/domain/order"
	"event-ticketing/internal/domain/promotion"
	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	createOrderSQL = `
INSERT INTO orders (
    id, buyer_id, event_id, status, currency, subtotal, discount_amount, service_fee, total,
    refunded_amount, promotion_id, voucher_code_id, fee_bps, fee_fixed, payment_ref,
    expires_at, confirmed_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	createOrderItemsSQL = `
INSERT INTO order_items (id, order_id, ticket_type_id, price_tier_id, quantity, unit_price, line_total)
SELECT item.id, $1, item.ticket_type_id, item.price_tier_id, item.quantity, item.unit_price, item.line_total
FROM unnest($2::uuid[], $3::uuid[], $4::uuid[], $5::bigint[], $6::bigint[], $7::bigint[])
    AS item(id, ticket_type_id, price_tier_id, quantity, unit_price, line_total)`

	findOrderForUpdateSQL = `
SELECT o.id, o.buyer_id, o.event_id, o.status, o.currency, o.subtotal, o.discount_amount, o.service_fee,
       o.total, o.refunded_amount, o.promotion_id, o.voucher_code_id, v.code, o.fee_bps, o.fee_fixed,
       o.payment_ref, o.expires_at, o.confirmed_at, o.created_at, o.updated_at
FROM orders o
LEFT JOIN voucher_codes v ON v.id = o.voucher_code_id
WHERE o.id = $1
FOR UPDATE OF o`

	listOrderItemsSQL = `
SELECT id, ticket_type_id, price_tier_id, quantity, unit_price
FROM order_items
WHERE order_id = $1
ORDER BY ticket_type_id`

	updateOrderSQL = `
UPDATE orders
SET status = $2, subtotal = $3, discount_amount = $4, service_fee = $5, total = $6,
    refunded_amount = $7, promotion_id = $8, voucher_code_id = $9, payment_ref = $10,
    confirmed_at = $11, updated_at = $12
WHERE id = $1`

	listExpiredOrdersSQL = `
SELECT id
FROM orders
WHERE status = 'PENDING' AND expires_at < $1
ORDER BY expires_at
LIMIT $2
FOR UPDATE SKIP LOCKED`
)

type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) Create(ctx context.Context, tx db.DBTX, o *order.Order) error {
	promotionID, voucherID := discountRefs(o.Discount())
	_, err := tx.Exec(ctx, createOrderSQL,
		o.ID(), o.BuyerID(), o.EventID(), o.Status().String(), o.Currency(),
		o.Subtotal().Minor(), o.DiscountAmount().Minor(), o.ServiceFee().Minor(), o.Total().Minor(),
		o.RefundedAmount().Minor(), promotionID, voucherID,
		o.FeePolicy().Bps, o.FeePolicy().Fixed.Minor(), pgconv.StringPtrToPgtype(o.PaymentRef()),
		pgconv.TimeToPgtype(o.ExpiresAt()), pgconv.TimePtrToPgtype(o.ConfirmedAt()),
		pgconv.TimeToPgtype(o.CreatedAt()), pgconv.TimeToPgtype(o.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create order", err)
	}

	items := o.Items()
	var (
		ids         = make([]uuid.UUID, len(items))
		ticketTypes = make([]uuid.UUID, len(items))
		tiers       = make([]pgtype.UUID, len(items))
		quantities  = make([]int64, len(items))
		unitPrices  = make([]int64, len(items))
		lineTotals  = make([]int64, len(items))
	)
	for i, it := range items {
		ids[i] = it.ID()
		ticketTypes[i] = it.TicketTypeID()
		tiers[i] = pgconv.UUIDPtrToPgtype(it.PriceTierID())
		quantities[i] = it.Quantity()
		unitPrices[i] = it.UnitPrice().Minor()
		lineTotals[i] = it.LineTotal().Minor()
	}
	if _, err := tx.Exec(ctx, createOrderItemsSQL, o.ID(), ids, ticketTypes, tiers, quantities, unitPrices, lineTotals); err != nil {
		return infra.WrapRepoErr("failed to create order items", err)
	}
	return nil
}

func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, tx db.DBTX, id uuid.UUID) (*order.Order, error) {
	var (
		p                                            order.ReconstructParams
		status, currency                             string
		subtotal, discount, fee, total, refunded     int64
		promotionID, voucherID                       pgtype.UUID
		code, paymentRef                             pgtype.Text
		feeBps, feeFixed                             int64
		expiresAt, confirmedAt, createdAt, updatedAt pgtype.Timestamptz
	)
	err := tx.QueryRow(ctx, findOrderForUpdateSQL, id).Scan(
		&p.ID, &p.BuyerID, &p.EventID, &status, &currency, &subtotal, &discount, &fee,
		&total, &refunded, &promotionID, &voucherID, &code, &feeBps, &feeFixed,
		&paymentRef, &expiresAt, &confirmedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find order", err)
	}

	items, err := r.listItems(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	p.Items = items
	p.Status = order.Status(status)
	p.Currency = currency
	p.Subtotal = money.New(subtotal)
	p.DiscountAmount = money.New(discount)
	p.ServiceFee = money.New(fee)
	p.Total = money.New(total)
	p.RefundedAmount = money.New(refunded)
	p.FeePolicy = order.FeePolicy{Bps: feeBps, Fixed: money.New(feeFixed)}
	p.PaymentRef = pgconv.StringPtrFromPgtype(paymentRef)
	p.ExpiresAt = expiresAt.Time
	p.ConfirmedAt = pgconv.TimePtrFromPgtype(confirmedAt)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	if pid := pgconv.UUIDPtrFromPgtype(promotionID); pid != nil {
		applied := &order.AppliedDiscount{PromotionID: *pid, VoucherCodeID: pgconv.UUIDPtrFromPgtype(voucherID)}
		if code.Valid {
			c := promotion.Code(code.String)
			applied.Code = &c
		}
		p.Discount = applied
	}
	return order.Reconstruct(p), nil
}

func (r *OrderRepository) listItems(ctx context.Context, tx db.DBTX, orderID uuid.UUID) ([]order.Item, error) {
	rows, err := tx.Query(ctx, listOrderItemsSQL, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list order items", err)
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var (
			id, ticketTypeID    uuid.UUID
			tierID              pgtype.UUID
			quantity, unitPrice int64
		)
		if err := rows.Scan(&id, &ticketTypeID, &tierID, &quantity, &unitPrice); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item", err)
		}
		items = append(items, order.ReconstructItem(id, ticketTypeID, pgconv.UUIDPtrFromPgtype(tierID), quantity, money.New(unitPrice)))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order items", err)
	}
	return items, nil
}

func (r *OrderRepository) Update(ctx context.Context, tx db.DBTX, o *order.Order) error {
	promotionID, voucherID := discountRefs(o.Discount())
	tag, err := tx.Exec(ctx, updateOrderSQL,
		o.ID(), o.Status().String(), o.Subtotal().Minor(), o.DiscountAmount().Minor(), o.ServiceFee().Minor(),
		o.Total().Minor(), o.RefundedAmount().Minor(), promotionID, voucherID,
		pgconv.StringPtrToPgtype(o.PaymentRef()), pgconv.TimePtrToPgtype(o.ConfirmedAt()),
		pgconv.TimeToPgtype(o.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update order", err)
	}
	if !guardHeld(tag) {
		return infra.WrapRepoErr("order to update does not exist", nil, infra.KindNotFound)
	}
	return nil
}

func (r *OrderRepository) ListExpiredPending(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, listExpiredOrdersSQL, pgconv.TimeToPgtype(now), int32(limit))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list expired orders", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan expired order", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate expired orders", err)
	}
	return ids, nil
}

func discountRefs(d *order.AppliedDiscount) (pgtype.UUID, pgtype.UUID) {
	if d == nil {
		return pgtype.UUID{}, pgtype.UUID{}
	}
	return pgconv.UUIDPtrToPgtype(&d.PromotionID), pgconv.UUIDPtrToPgtype(d.VoucherCodeID)
}
