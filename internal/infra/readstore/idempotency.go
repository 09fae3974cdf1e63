package readstore

import (
	"context"

	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/pkg/pgconv"
	"event-ticketing/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getIdempotencyKeySQL = `
SELECT key, buyer_id, endpoint, request_hash, status, result_order_id, expires_at
FROM idempotency_keys
WHERE key = $1 AND buyer_id = $2`

type IdempotencyReadStore struct{}

func NewIdempotencyReadStore() *IdempotencyReadStore {
	return &IdempotencyReadStore{}
}

// Get returns expired records too; the caller decides whether a stale key may be reclaimed.
func (r *IdempotencyReadStore) Get(ctx context.Context, tx db.DBTX, key, buyerID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var (
		rec       shared.IdempotencyRecord
		resultID  pgtype.UUID
		expiresAt pgtype.Timestamptz
	)
	err := tx.QueryRow(ctx, getIdempotencyKeySQL, key, buyerID).Scan(
		&rec.Key, &rec.BuyerID, &rec.Endpoint, &rec.RequestHash, &rec.Status, &resultID, &expiresAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	rec.ResultOrderID = pgconv.UUIDPtrFromPgtype(resultID)
	rec.ExpiresAt = expiresAt.Time
	return &rec, nil
}
