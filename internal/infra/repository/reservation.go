package repository

import (
	"context"
	"time"

	"event-ticketing/internal/domain/reservation"
	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	reservationColumns = `id, order_id, ticket_type_id, price_tier_id, quantity, status, expires_at, created_at, updated_at`

	createReservationSQL = `
INSERT INTO reservations (` + reservationColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	listReservationsByOrderSQL = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE order_id = $1
ORDER BY ticket_type_id`

	settleReservationSQL = `
UPDATE reservations
SET status = $2, updated_at = $3
WHERE id = $1 AND status = 'PENDING'`

	// No row lock: the caller locks the owning order first, the same order confirm uses, and
	// settling is guarded by status = 'PENDING'.
	listExpiredReservationsSQL = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE status = 'PENDING' AND expires_at < $1
ORDER BY expires_at
LIMIT $2`
)

type ReservationRepository struct{}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{}
}

func (r *ReservationRepository) Create(ctx context.Context, tx db.DBTX, res *reservation.Reservation) error {
	_, err := tx.Exec(ctx, createReservationSQL,
		res.ID(), res.OrderID(), res.TicketTypeID(), pgconv.UUIDPtrToPgtype(res.PriceTierID()),
		res.Quantity(), res.Status().String(),
		pgconv.TimeToPgtype(res.ExpiresAt()), pgconv.TimeToPgtype(res.CreatedAt()), pgconv.TimeToPgtype(res.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) ListByOrder(ctx context.Context, tx db.DBTX, orderID uuid.UUID) ([]*reservation.Reservation, error) {
	return r.list(ctx, tx, "failed to list reservations by order", listReservationsByOrderSQL, orderID)
}

func (r *ReservationRepository) Settle(ctx context.Context, tx db.DBTX, id uuid.UUID, status reservation.Status, at time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, settleReservationSQL, id, status.String(), pgconv.TimeToPgtype(at))
	if err != nil {
		return false, infra.WrapRepoErr("failed to settle reservation", err)
	}
	return guardHeld(tag), nil
}

func (r *ReservationRepository) ListExpiredPending(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]*reservation.Reservation, error) {
	return r.list(ctx, tx, "failed to list expired reservations", listExpiredReservationsSQL, pgconv.TimeToPgtype(now), int32(limit))
}

func (r *ReservationRepository) list(ctx context.Context, tx db.DBTX, msg, sql string, args ...any) ([]*reservation.Reservation, error) {
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(msg, err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, infra.WrapRepoErr(msg, err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(msg, err)
	}
	return out, nil
}

func scanReservation(row rowScanner) (*reservation.Reservation, error) {
	var (
		id, orderID, ticketTypeID       uuid.UUID
		tierID                          pgtype.UUID
		quantity                        int64
		status                          string
		expiresAt, createdAt, updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &orderID, &ticketTypeID, &tierID, &quantity, &status, &expiresAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return reservation.ReconstructReservation(
		id, orderID, ticketTypeID, pgconv.UUIDPtrFromPgtype(tierID), quantity,
		reservation.Status(status), expiresAt.Time, createdAt.Time, updatedAt.Time,
	), nil
}
