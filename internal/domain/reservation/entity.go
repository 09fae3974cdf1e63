package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInsufficientInventory = errors.New("INSUFFICIENT_INVENTORY")
	ErrInvalidQuantity       = errors.New("reservation quantity must be positive")
	ErrNotPending            = errors.New("reservation is no longer pending")
)

// Reservation is a hold on inventory (and optionally a tier allocation) for one order line.
type Reservation struct {
	id           uuid.UUID
	orderID      uuid.UUID
	ticketTypeID uuid.UUID
	priceTierID  *uuid.UUID
	quantity     int64
	status       Status
	expiresAt    time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

func NewReservation(orderID, ticketTypeID uuid.UUID, priceTierID *uuid.UUID, quantity int64, now time.Time, ttl time.Duration) (*Reservation, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Reservation{
		id:           uuid.New(),
		orderID:      orderID,
		ticketTypeID: ticketTypeID,
		priceTierID:  priceTierID,
		quantity:     quantity,
		status:       StatusPending,
		expiresAt:    now.Add(ttl),
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

func ReconstructReservation(
	id, orderID, ticketTypeID uuid.UUID,
	priceTierID *uuid.UUID,
	quantity int64,
	status Status,
	expiresAt, createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:           id,
		orderID:      orderID,
		ticketTypeID: ticketTypeID,
		priceTierID:  priceTierID,
		quantity:     quantity,
		status:       status,
		expiresAt:    expiresAt,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (r *Reservation) Commit(now time.Time) error {
	if r.status != StatusPending {
		return ErrNotPending
	}
	r.status = StatusCommitted
	r.updatedAt = now
	return nil
}

func (r *Reservation) Release(now time.Time) error {
	if r.status != StatusPending {
		return ErrNotPending
	}
	r.status = StatusReleased
	r.updatedAt = now
	return nil
}

func (r *Reservation) IsPending() bool {
	return r.status == StatusPending
}

func (r *Reservation) IsExpired(now time.Time) bool {
	return r.status == StatusPending && now.After(r.expiresAt)
}

func (r *Reservation) ID() uuid.UUID           { return r.id }
func (r *Reservation) OrderID() uuid.UUID      { return r.orderID }
func (r *Reservation) TicketTypeID() uuid.UUID { return r.ticketTypeID }
func (r *Reservation) PriceTierID() *uuid.UUID { return r.priceTierID }
func (r *Reservation) Quantity() int64         { return r.quantity }
func (r *Reservation) Status() Status          { return r.status }
func (r *Reservation) ExpiresAt() time.Time    { return r.expiresAt }
func (r *Reservation) CreatedAt() time.Time    { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time    { return r.updatedAt }
