package commands

import (
	"context"

	"event-ticketing/internal/domain/pricing"
	"event-ticketing/internal/domain/reservation"
	"event-ticketing/internal/domain/tickettype"
	"event-ticketing/internal/pkg/clock"
	"event-ticketing/internal/pkg/errs"
	"event-ticketing/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrLedgerOutOfBalance = errs.New("inventory ledger pending balance is inconsistent")

// Hold is a reservation together with the price it was taken at.
type Hold struct {
	Reservation *reservation.Reservation
	Quote       pricing.Quote
}

// InventoryLedger runs inside the caller's transaction so a failed multi-item reserve
// rolls back every counter it touched.
type InventoryLedger struct {
	resolver pricing.Resolver
	clock    clock.Clock
	policy   CheckoutPolicy
}

func NewInventoryLedger(resolver pricing.Resolver, clk clock.Clock, policy CheckoutPolicy) *InventoryLedger {
	return &InventoryLedger{resolver: resolver, clock: clk, policy: policy}
}

// Reserve holds qty units of tt for an order. The unit price is resolved at reserve time.
// An ALLOCATION tier that cannot take the whole quantity is skipped in favour of the next
// best price. tt is the snapshot read in the same transaction; the counter update stays the
// authority on capacity.
func (l *InventoryLedger) Reserve(ctx context.Context, tx shared.Tx, orderID uuid.UUID, tt *tickettype.TicketType, qty int64) (*Hold, error) {
	ok, err := tt.CanReserve(qty)
	if err != nil {
		return nil, reservation.ErrInvalidQuantity
	}
	if !ok {
		return nil, reservation.ErrInsufficientInventory
	}

	ok, err = tx.TicketTypes().TryReservePending(ctx, tx.DB(), tt.ID(), qty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, reservation.ErrInsufficientInventory
	}

	tiers, err := tx.PriceTiers().ListByTicketType(ctx, tx.DB(), tt.ID())
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	var quote pricing.Quote
	var allocationTierID *uuid.UUID
	for {
		quote = l.resolver.Resolve(tt.BasePrice(), tiers, now)
		if quote.Tier == nil || !quote.Tier.IsAllocation() {
			break
		}
		ok, err := tx.PriceTiers().TryReservePending(ctx, tx.DB(), quote.Tier.ID(), qty)
		if err != nil {
			return nil, err
		}
		if ok {
			id := quote.Tier.ID()
			allocationTierID = &id
			break
		}
		tiers = without(tiers, quote.Tier.ID())
	}

	r, err := reservation.NewReservation(orderID, tt.ID(), allocationTierID, qty, now, l.policy.ReservationTTL)
	if err != nil {
		return nil, err
	}
	if err := tx.Reservations().Create(ctx, tx.DB(), r); err != nil {
		return nil, err
	}
	return &Hold{Reservation: r, Quote: quote}, nil
}

// CommitOrder converts every reservation of the order into sold inventory. It fails with
// reservation.ErrNotPending when any of them was already released, so tickets are never minted
// for units the ledger no longer holds.
func (l *InventoryLedger) CommitOrder(ctx context.Context, tx shared.Tx, orderID uuid.UUID) ([]uuid.UUID, error) {
	rs, err := tx.Reservations().ListByOrder(ctx, tx.DB(), orderID)
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, reservation.ErrNotPending
	}
	var touched []uuid.UUID
	for _, r := range rs {
		if !r.IsPending() {
			return nil, reservation.ErrNotPending
		}
		if err := l.Commit(ctx, tx, r); err != nil {
			return nil, err
		}
		touched = append(touched, r.TicketTypeID())
	}
	return touched, nil
}

// ReleaseOrder returns every pending reservation of the order to available inventory.
func (l *InventoryLedger) ReleaseOrder(ctx context.Context, tx shared.Tx, orderID uuid.UUID) ([]uuid.UUID, error) {
	rs, err := tx.Reservations().ListByOrder(ctx, tx.DB(), orderID)
	if err != nil {
		return nil, err
	}
	var touched []uuid.UUID
	for _, r := range rs {
		released, err := l.Release(ctx, tx, r)
		if err != nil {
			return nil, err
		}
		if released {
			touched = append(touched, r.TicketTypeID())
		}
	}
	return touched, nil
}

func (l *InventoryLedger) Commit(ctx context.Context, tx shared.Tx, r *reservation.Reservation) error {
	now := l.clock.Now()
	if err := r.Commit(now); err != nil {
		return err
	}
	settled, err := tx.Reservations().Settle(ctx, tx.DB(), r.ID(), reservation.StatusCommitted, now)
	if err != nil {
		return err
	}
	if !settled {
		return reservation.ErrNotPending
	}
	if err := tx.TicketTypes().CommitPending(ctx, tx.DB(), r.TicketTypeID(), r.Quantity()); err != nil {
		return errs.Mark(err, ErrLedgerOutOfBalance)
	}
	if tierID := r.PriceTierID(); tierID != nil {
		if err := tx.PriceTiers().CommitPending(ctx, tx.DB(), *tierID, r.Quantity()); err != nil {
			return errs.Mark(err, ErrLedgerOutOfBalance)
		}
	}
	return nil
}

// Release reports false when the reservation had already been settled.
func (l *InventoryLedger) Release(ctx context.Context, tx shared.Tx, r *reservation.Reservation) (bool, error) {
	now := l.clock.Now()
	if !r.IsPending() {
		return false, nil
	}
	settled, err := tx.Reservations().Settle(ctx, tx.DB(), r.ID(), reservation.StatusReleased, now)
	if err != nil {
		return false, err
	}
	if !settled {
		return false, nil
	}
	_ = r.Release(now)
	if err := tx.TicketTypes().ReleasePending(ctx, tx.DB(), r.TicketTypeID(), r.Quantity()); err != nil {
		return false, errs.Mark(err, ErrLedgerOutOfBalance)
	}
	if tierID := r.PriceTierID(); tierID != nil {
		if err := tx.PriceTiers().ReleasePending(ctx, tx.DB(), *tierID, r.Quantity()); err != nil {
			return false, errs.Mark(err, ErrLedgerOutOfBalance)
		}
	}
	return true, nil
}

func without(tiers []*pricing.PriceTier, id uuid.UUID) []*pricing.PriceTier {
	out := make([]*pricing.PriceTier, 0, len(tiers))
	for _, t := range tiers {
		if t.ID() != id {
			out = append(out, t)
		}
	}
	return out
}
