package sharedtest

import (
	"time"

	"event-ticketing/internal/domain/cart"
	"event-ticketing/internal/domain/order"
	"event-ticketing/internal/domain/pricing"
	"event-ticketing/internal/domain/promotion"
	"event-ticketing/internal/domain/reservation"
	"event-ticketing/internal/domain/ticket"
	"event-ticketing/internal/domain/tickettype"
	"event-ticketing/internal/usecase/shared"

	"github.com/google/uuid"
)

// Seeding and inspection helpers. They take the store lock, so never call them from inside Within.

func (s *Store) AddTicketType(tt *tickettype.TicketType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.ticketTypes[tt.ID()] = ticketTypeRow{tt: tt, sold: tt.QuantitySold(), pending: tt.QuantityPending()}
}

func (s *Store) AddPriceTier(t *pricing.PriceTier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.tiers[t.ID()] = tierRow{tier: t, sold: t.AllocationSold(), pending: t.AllocationPending()}
}

func (s *Store) AddPromotion(p *promotion.Promotion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.promotions[p.ID()] = promotionRow{p: p, redeemed: p.RedeemedCount()}
}

func (s *Store) AddVoucher(v *promotion.VoucherCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.vouchers[v.ID()] = voucherRow{v: v, redeemed: v.RedeemedCount()}
}

func (s *Store) AddCartItem(item *cart.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.carts[cartKey{item.BuyerID(), item.TicketTypeID()}] = item
}

// AddRedemption records a confirmed redemption from an earlier order.
func (s *Store) AddRedemption(r shared.Redemption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.redemptions = append(s.st.redemptions, r)
}

// Counters returns (sold, pending) for a ticket type.
func (s *Store) Counters(ticketTypeID uuid.UUID) (int64, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.st.ticketTypes[ticketTypeID]
	return row.sold, row.pending
}

// TierCounters returns (sold, pending) for an allocation tier.
func (s *Store) TierCounters(tierID uuid.UUID) (int64, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.st.tiers[tierID]
	return row.sold, row.pending
}

func (s *Store) PromotionRedeemed(id uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.promotions[id].redeemed
}

func (s *Store) VoucherRedeemed(id uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.vouchers[id].redeemed
}

func (s *Store) Redemptions() []shared.Redemption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]shared.Redemption(nil), s.st.redemptions...)
}

func (s *Store) Order(id uuid.UUID) (*order.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.orders[id]
	if !ok {
		return nil, false
	}
	p.Items = append([]order.Item(nil), p.Items...)
	return order.Reconstruct(p), true
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.orders)
}

// ExpireOrder moves an order's expiry into the past relative to now.
func (s *Store) ExpireOrder(id uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.st.orders[id]
	p.ExpiresAt = at
	s.st.orders[id] = p
}

func (s *Store) Reservations(orderID uuid.UUID) []*reservation.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*reservation.Reservation
	for _, row := range s.st.reservations {
		if row.r.OrderID() == orderID {
			out = append(out, row.materialize())
		}
	}
	sortReservations(out)
	return out
}

func (s *Store) Tickets(orderID uuid.UUID) []*ticket.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*ticket.Ticket
	for _, t := range s.st.tickets {
		if t.OrderID() == orderID {
			out = append(out, t)
		}
	}
	return out
}

// CheckInTicket marks a ticket as used at the door.
func (s *Store) CheckInTicket(id uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.st.tickets[id]
	s.st.tickets[id] = ticket.Reconstruct(t.ID(), t.OrderID(), t.OrderItemID(), t.TicketTypeID(), t.HolderID(),
		t.Code(), ticket.StatusCheckedIn, t.CreatedAt(), at)
}

func (s *Store) CartSize(buyerID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.st.carts {
		if k.buyer == buyerID {
			n++
		}
	}
	return n
}

func (s *Store) Jobs() []JobState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]JobState(nil), s.st.jobs...)
}

// JobKinds lists queued and delivered job kinds in creation order.
func (s *Store) JobKinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.st.jobs))
	for _, j := range s.st.jobs {
		out = append(out, j.Kind)
	}
	return out
}

func (s *Store) PaymentEvents() []shared.PaymentEventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]shared.PaymentEventRecord, 0, len(s.st.paymentEvents))
	for _, ev := range s.st.paymentEvents {
		out = append(out, ev)
	}
	return out
}

func (s *Store) IdempotencyRecord(key, buyerID uuid.UUID) (shared.IdempotencyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.st.idempotency[idemKey{key, buyerID}]
	return rec, ok
}
