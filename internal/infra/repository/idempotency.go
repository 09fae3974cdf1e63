package repository

import (
	"context"
	"time"

	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/pkg/pgconv"
	"event-ticketing/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	tryInsertIdempotencyKeySQL = `
INSERT INTO idempotency_keys (key, buyer_id, endpoint, request_hash, status, result_order_id, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (key, buyer_id) DO NOTHING`

	completeIdempotencyKeySQL = `
UPDATE idempotency_keys
SET status = 'completed', result_order_id = $3
WHERE key = $1 AND buyer_id = $2`

	claimExpiredIdempotencyKeySQL = `
UPDATE idempotency_keys
SET endpoint = $3, request_hash = $4, status = $5, result_order_id = $6, expires_at = $7, created_at = now()
WHERE key = $1 AND buyer_id = $2 AND expires_at < $8`

	deleteExpiredIdempotencyKeysSQL = `
DELETE FROM idempotency_keys WHERE expires_at < $1`
)

type IdempotencyRepository struct{}

func NewIdempotencyRepository() *IdempotencyRepository {
	return &IdempotencyRepository{}
}

// TryInsert reports false when the key is already held by this buyer.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, tx db.DBTX, rec shared.IdempotencyRecord) (bool, error) {
	tag, err := tx.Exec(ctx, tryInsertIdempotencyKeySQL,
		rec.Key, rec.BuyerID, rec.Endpoint, rec.RequestHash, rec.Status,
		pgconv.UUIDPtrToPgtype(rec.ResultOrderID), pgconv.TimeToPgtype(rec.ExpiresAt))
	if err != nil {
		return false, infra.WrapRepoErr("failed to try insert idempotency key", err)
	}
	return guardHeld(tag), nil
}

func (r *IdempotencyRepository) MarkCompleted(ctx context.Context, tx db.DBTX, key, buyerID, orderID uuid.UUID) error {
	tag, err := tx.Exec(ctx, completeIdempotencyKeySQL, key, buyerID, orderID)
	if err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}
	if !guardHeld(tag) {
		return infra.WrapRepoErr("idempotency key to complete does not exist", nil, infra.KindNotFound)
	}
	return nil
}

func (r *IdempotencyRepository) ClaimExpired(ctx context.Context, tx db.DBTX, rec shared.IdempotencyRecord, now time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, claimExpiredIdempotencyKeySQL,
		rec.Key, rec.BuyerID, rec.Endpoint, rec.RequestHash, rec.Status,
		pgconv.UUIDPtrToPgtype(rec.ResultOrderID), pgconv.TimeToPgtype(rec.ExpiresAt), pgconv.TimeToPgtype(now))
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim expired idempotency key", err)
	}
	return guardHeld(tag), nil
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, tx db.DBTX, now time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, deleteExpiredIdempotencyKeysSQL, pgconv.TimeToPgtype(now))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
