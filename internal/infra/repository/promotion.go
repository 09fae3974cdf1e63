package repository

import (
	"context"

	"event-ticketing/internal/domain/promotion"
	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/pkg/pgconv"
	"event-ticketing/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	promotionSelect = `
SELECT p.id, p.event_id, p.name, p.discount_type, p.discount_value, p.applies_to, p.requires_code,
       p.valid_from, p.valid_until, p.max_redemptions, p.redeemed_count, p.max_per_user, p.created_at,
       COALESCE(array_agg(ptt.ticket_type_id) FILTER (WHERE ptt.ticket_type_id IS NOT NULL), '{}')
FROM promotions p
LEFT JOIN promotion_ticket_types ptt ON ptt.promotion_id = p.id`

	findPromotionSQL = promotionSelect + `
WHERE p.id = $1
GROUP BY p.id`

	listAutomaticPromotionsSQL = promotionSelect + `
WHERE p.event_id = $1 AND p.requires_code = FALSE
GROUP BY p.id
ORDER BY p.created_at, p.id`

	voucherSelect = `
SELECT v.id, v.promotion_id, v.code, v.max_redemptions, v.redeemed_count, v.created_at
FROM voucher_codes v`

	// Codes are unique globally; the event filter keeps a code from leaking across events.
	findVoucherByCodeSQL = voucherSelect + `
JOIN promotions p ON p.id = v.promotion_id
WHERE v.code = $1 AND p.event_id = $2`

	findVoucherByIDSQL = voucherSelect + `
WHERE v.id = $1`

	countRedemptionsSQL = `
SELECT count(*)
FROM redemptions r
JOIN orders o ON o.id = r.order_id
WHERE r.promotion_id = $1 AND r.buyer_id = $2
  AND o.status IN ('CONFIRMED', 'PARTIALLY_REFUNDED', 'REFUNDED')`

	incrementPromotionSQL = `
UPDATE promotions
SET redeemed_count = redeemed_count + 1
WHERE id = $1 AND (max_redemptions IS NULL OR redeemed_count < max_redemptions)`

	incrementVoucherSQL = `
UPDATE voucher_codes
SET redeemed_count = redeemed_count + 1
WHERE id = $1 AND (max_redemptions IS NULL OR redeemed_count < max_redemptions)`

	recordRedemptionSQL = `
INSERT INTO redemptions (promotion_id, voucher_code_id, order_id, buyer_id, redeemed_at)
VALUES ($1, $2, $3, $4, $5)`
)

type PromotionRepository struct{}

func NewPromotionRepository() *PromotionRepository {
	return &PromotionRepository{}
}

func (r *PromotionRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*promotion.Promotion, error) {
	p, err := scanPromotion(tx.QueryRow(ctx, findPromotionSQL, id))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find promotion", err)
	}
	return p, nil
}

func (r *PromotionRepository) ListAutomaticByEvent(ctx context.Context, tx db.DBTX, eventID uuid.UUID) ([]*promotion.Promotion, error) {
	rows, err := tx.Query(ctx, listAutomaticPromotionsSQL, eventID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list automatic promotions", err)
	}
	defer rows.Close()

	var out []*promotion.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan promotion", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate promotions", err)
	}
	return out, nil
}

func scanPromotion(row rowScanner) (*promotion.Promotion, error) {
	var (
		id, eventID                uuid.UUID
		name, discountType, target string
		discountValue              int64
		requiresCode               bool
		validFrom, validUntil      pgtype.Timestamptz
		maxRedemptions, maxPerUser pgtype.Int8
		redeemed                   int64
		createdAt                  pgtype.Timestamptz
		eligible                   []uuid.UUID
	)
	if err := row.Scan(&id, &eventID, &name, &discountType, &discountValue, &target, &requiresCode,
		&validFrom, &validUntil, &maxRedemptions, &redeemed, &maxPerUser, &createdAt, &eligible); err != nil {
		return nil, err
	}
	discount, err := promotion.NewDiscount(promotion.DiscountType(discountType), discountValue)
	if err != nil {
		return nil, err
	}
	return promotion.ReconstructPromotion(
		id, eventID, name, discount, promotion.AppliesTo(target), requiresCode,
		validFrom.Time, validUntil.Time,
		pgconv.Int64PtrFromPgtype(maxRedemptions), redeemed, pgconv.Int64PtrFromPgtype(maxPerUser),
		eligible, createdAt.Time,
	), nil
}

func (r *PromotionRepository) FindVoucherByCode(ctx context.Context, tx db.DBTX, eventID uuid.UUID, code promotion.Code) (*promotion.VoucherCode, error) {
	v, err := scanVoucher(tx.QueryRow(ctx, findVoucherByCodeSQL, code.String(), eventID))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find voucher code", err)
	}
	return v, nil
}

func (r *PromotionRepository) FindVoucherByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*promotion.VoucherCode, error) {
	v, err := scanVoucher(tx.QueryRow(ctx, findVoucherByIDSQL, id))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find voucher code", err)
	}
	return v, nil
}

func scanVoucher(row rowScanner) (*promotion.VoucherCode, error) {
	var (
		id, promotionID uuid.UUID
		code            string
		maxRedemptions  pgtype.Int8
		redeemed        int64
		createdAt       pgtype.Timestamptz
	)
	if err := row.Scan(&id, &promotionID, &code, &maxRedemptions, &redeemed, &createdAt); err != nil {
		return nil, err
	}
	return promotion.ReconstructVoucherCode(id, promotionID, promotion.Code(code),
		pgconv.Int64PtrFromPgtype(maxRedemptions), redeemed, createdAt.Time), nil
}

func (r *PromotionRepository) CountConfirmedRedemptions(ctx context.Context, tx db.DBTX, promotionID, buyerID uuid.UUID) (int64, error) {
	var n int64
	if err := tx.QueryRow(ctx, countRedemptionsSQL, promotionID, buyerID).Scan(&n); err != nil {
		return 0, infra.WrapRepoErr("failed to count redemptions", err)
	}
	return n, nil
}

func (r *PromotionRepository) TryIncrementPromotion(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, incrementPromotionSQL, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to increment promotion redemptions", err)
	}
	return guardHeld(tag), nil
}

func (r *PromotionRepository) TryIncrementVoucher(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, incrementVoucherSQL, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to increment voucher redemptions", err)
	}
	return guardHeld(tag), nil
}

func (r *PromotionRepository) RecordRedemption(ctx context.Context, tx db.DBTX, red shared.Redemption) error {
	_, err := tx.Exec(ctx, recordRedemptionSQL,
		red.PromotionID, pgconv.UUIDPtrToPgtype(red.VoucherCodeID), red.OrderID, red.BuyerID,
		pgconv.TimeToPgtype(red.RedeemedAt))
	if err != nil {
		return infra.WrapRepoErr("failed to record redemption", err)
	}
	return nil
}
