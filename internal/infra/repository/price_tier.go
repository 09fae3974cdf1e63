package repository

import (
	"context"

	"event-ticketing/internal/domain/money"
	"event-ticketing/internal/domain/pricing"
	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	listPriceTiersSQL = `
SELECT id, ticket_type_id, strategy, price, priority, starts_at, ends_at,
       allocation_total, allocation_sold, allocation_pending, created_at
FROM price_tiers
WHERE ticket_type_id = $1
ORDER BY priority DESC, created_at DESC, id DESC`

	reservePriceTierSQL = `
UPDATE price_tiers
SET allocation_pending = allocation_pending + $2
WHERE id = $1
  AND strategy = 'ALLOCATION'
  AND allocation_sold + allocation_pending + $2 <= allocation_total`

	commitPriceTierSQL = `
UPDATE price_tiers
SET allocation_pending = allocation_pending - $2, allocation_sold = allocation_sold + $2
WHERE id = $1 AND allocation_pending >= $2`

	releasePriceTierSQL = `
UPDATE price_tiers
SET allocation_pending = allocation_pending - $2
WHERE id = $1 AND allocation_pending >= $2`
)

type PriceTierRepository struct{}

func NewPriceTierRepository() *PriceTierRepository {
	return &PriceTierRepository{}
}

func (r *PriceTierRepository) ListByTicketType(ctx context.Context, tx db.DBTX, ticketTypeID uuid.UUID) ([]*pricing.PriceTier, error) {
	rows, err := tx.Query(ctx, listPriceTiersSQL, ticketTypeID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list price tiers", err)
	}
	defer rows.Close()

	var tiers []*pricing.PriceTier
	for rows.Next() {
		tier, err := scanPriceTier(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan price tier", err)
		}
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate price tiers", err)
	}
	return tiers, nil
}

func scanPriceTier(row rowScanner) (*pricing.PriceTier, error) {
	var (
		id, ticketTypeID uuid.UUID
		strategy         string
		price            int64
		priority         int32
		startsAt, endsAt pgtype.Timestamptz
		allocationTotal  pgtype.Int8
		sold, pending    int64
		createdAt        pgtype.Timestamptz
	)
	if err := row.Scan(&id, &ticketTypeID, &strategy, &price, &priority, &startsAt, &endsAt,
		&allocationTotal, &sold, &pending, &createdAt); err != nil {
		return nil, err
	}
	tier := pricing.ReconstructPriceTier(
		id, ticketTypeID, pricing.Strategy(strategy), money.New(price), int(priority),
		pgconv.TimePtrFromPgtype(startsAt), pgconv.TimePtrFromPgtype(endsAt),
		pgconv.Int64PtrFromPgtype(allocationTotal), sold, pending, createdAt.Time,
	)
	if err := tier.Validate(); err != nil {
		return nil, err
	}
	return tier, nil
}

func (r *PriceTierRepository) TryReservePending(ctx context.Context, tx db.DBTX, id uuid.UUID, qty int64) (bool, error) {
	tag, err := tx.Exec(ctx, reservePriceTierSQL, id, qty)
	if err != nil {
		return false, infra.WrapRepoErr("failed to reserve tier allocation", err)
	}
	return guardHeld(tag), nil
}

func (r *PriceTierRepository) CommitPending(ctx context.Context, tx db.DBTX, id uuid.UUID, qty int64) error {
	tag, err := tx.Exec(ctx, commitPriceTierSQL, id, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to commit tier allocation", err)
	}
	return mustAffect(tag, "pending tier allocation is lower than the committed quantity")
}

func (r *PriceTierRepository) ReleasePending(ctx context.Context, tx db.DBTX, id uuid.UUID, qty int64) error {
	tag, err := tx.Exec(ctx, releasePriceTierSQL, id, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to release tier allocation", err)
	}
	return mustAffect(tag, "pending tier allocation is lower than the released quantity")
}
