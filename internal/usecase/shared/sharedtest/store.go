// Package sharedtest provides an in-memory UnitOfWork for use-case tests. Transactions are
// serialized by a single lock and rolled back by restoring a snapshot, which gives the same
// all-or-nothing and conditional-update behaviour the Postgres repositories provide.
package sharedtest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"event-ticketing/internal/domain/cart"
	"event-ticketing/internal/domain/order"
	"event-ticketing/internal/domain/pricing"
	"event-ticketing/internal/domain/promotion"
	"event-ticketing/internal/domain/reservation"
	"event-ticketing/internal/domain/ticket"
	"event-ticketing/internal/domain/tickettype"
	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/db"
	"event-ticketing/internal/usecase/shared"

	"github.com/google/uuid"
)

var errLedgerUnderflow = errors.New("pending counter would go negative")

type ticketTypeRow struct {
	tt      *tickettype.TicketType
	sold    int64
	pending int64
}

type tierRow struct {
	tier    *pricing.PriceTier
	sold    int64
	pending int64
}

type promotionRow struct {
	p        *promotion.Promotion
	redeemed int64
}

type voucherRow struct {
	v        *promotion.VoucherCode
	redeemed int64
}

type reservationRow struct {
	r         *reservation.Reservation
	status    reservation.Status
	updatedAt time.Time
}

type cartKey struct {
	buyer, ticketType uuid.UUID
}

type idemKey struct {
	key, buyer uuid.UUID
}

type paymentEventKey struct {
	provider, eventID string
}

// JobState is the observable state of an outbox job.
type JobState struct {
	shared.NotificationJob
	Status    string
	RunAt     time.Time
	LastError string
}

type state struct {
	ticketTypes   map[uuid.UUID]ticketTypeRow
	tiers         map[uuid.UUID]tierRow
	promotions    map[uuid.UUID]promotionRow
	vouchers      map[uuid.UUID]voucherRow
	redemptions   []shared.Redemption
	reservations  map[uuid.UUID]reservationRow
	orders        map[uuid.UUID]order.ReconstructParams
	tickets       map[uuid.UUID]*ticket.Ticket
	carts         map[cartKey]*cart.Item
	idempotency   map[idemKey]shared.IdempotencyRecord
	paymentEvents map[paymentEventKey]shared.PaymentEventRecord
	jobs          []JobState
}

func newState() *state {
	return &state{
		ticketTypes:   map[uuid.UUID]ticketTypeRow{},
		tiers:         map[uuid.UUID]tierRow{},
		promotions:    map[uuid.UUID]promotionRow{},
		vouchers:      map[uuid.UUID]voucherRow{},
		reservations:  map[uuid.UUID]reservationRow{},
		orders:        map[uuid.UUID]order.ReconstructParams{},
		tickets:       map[uuid.UUID]*ticket.Ticket{},
		carts:         map[cartKey]*cart.Item{},
		idempotency:   map[idemKey]shared.IdempotencyRecord{},
		paymentEvents: map[paymentEventKey]shared.PaymentEventRecord{},
	}
}

// clone copies every table. Rows are values or immutable pointers, so a shallow copy per map is enough.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.ticketTypes {
		c.ticketTypes[k] = v
	}
	for k, v := range s.tiers {
		c.tiers[k] = v
	}
	for k, v := range s.promotions {
		c.promotions[k] = v
	}
	for k, v := range s.vouchers {
		c.vouchers[k] = v
	}
	c.redemptions = append(c.redemptions, s.redemptions...)
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for k, v := range s.idempotency {
		c.idempotency[k] = v
	}
	for k, v := range s.paymentEvents {
		c.paymentEvents[k] = v
	}
	c.jobs = append(c.jobs, s.jobs...)
	return c
}

// Store implements shared.UnitOfWork in memory.
type Store struct {
	mu sync.Mutex
	st *state

	// BeforeCommit, when set, runs at the end of every successful transaction body.
	// Returning an error rolls the transaction back.
	BeforeCommit func() error
}

func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(ctx, &memTx{st: s.st}); err != nil {
		s.st = snapshot
		return err
	}
	if s.BeforeCommit != nil {
		if err := s.BeforeCommit(); err != nil {
			s.st = snapshot
			return err
		}
	}
	return nil
}

func (s *Store) CommandReads() shared.CommandReads {
	return &lockedReads{store: s}
}

type lockedReads struct {
	store *Store
}

func (r *lockedReads) OrderByID(ctx context.Context, id uuid.UUID) (*shared.OrderSnapshot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&memReads{st: r.store.st}).OrderByID(ctx, id)
}

func (r *lockedReads) TicketTypeByID(ctx context.Context, id uuid.UUID) (*shared.TicketTypeSnapshot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&memReads{st: r.store.st}).TicketTypeByID(ctx, id)
}

func (r *lockedReads) IdempotencyByKey(ctx context.Context, key, buyerID uuid.UUID) (*shared.IdempotencyRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&memReads{st: r.store.st}).IdempotencyByKey(ctx, key, buyerID)
}

type memReads struct {
	st *state
}

func (r *memReads) OrderByID(_ context.Context, id uuid.UUID) (*shared.OrderSnapshot, error) {
	p, ok := r.st.orders[id]
	if !ok {
		return nil, notFound("order not found")
	}
	return &shared.OrderSnapshot{
		ID:         p.ID,
		BuyerID:    p.BuyerID,
		EventID:    p.EventID,
		Status:     p.Status.String(),
		Total:      p.Total.Minor(),
		Currency:   p.Currency,
		PaymentRef: p.PaymentRef,
		ExpiresAt:  p.ExpiresAt,
	}, nil
}

func (r *memReads) TicketTypeByID(_ context.Context, id uuid.UUID) (*shared.TicketTypeSnapshot, error) {
	row, ok := r.st.ticketTypes[id]
	if !ok {
		return nil, notFound("ticket type not found")
	}
	return &shared.TicketTypeSnapshot{
		ID:        row.tt.ID(),
		EventID:   row.tt.EventID(),
		Name:      row.tt.Name(),
		Kind:      string(row.tt.Kind()),
		BasePrice: row.tt.BasePrice().Minor(),
	}, nil
}

func (r *memReads) IdempotencyByKey(_ context.Context, key, buyerID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec, ok := r.st.idempotency[idemKey{key, buyerID}]
	if !ok {
		return nil, notFound("idempotency key not found")
	}
	return &rec, nil
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

type memTx struct {
	st *state
}

func (t *memTx) TicketTypes() shared.TicketTypeRepository     { return ticketTypeRepo{t.st} }
func (t *memTx) PriceTiers() shared.PriceTierRepository       { return tierRepo{t.st} }
func (t *memTx) Reservations() shared.ReservationRepository   { return reservationRepo{t.st} }
func (t *memTx) Promotions() shared.PromotionRepository       { return promotionRepo{t.st} }
func (t *memTx) Orders() shared.OrderRepository               { return orderRepo{t.st} }
func (t *memTx) Tickets() shared.TicketRepository             { return ticketRepo{t.st} }
func (t *memTx) Carts() shared.CartRepository                 { return cartRepo{t.st} }
func (t *memTx) Idempotency() shared.IdempotencyRepository    { return idempotencyRepo{t.st} }
func (t *memTx) PaymentEvents() shared.PaymentEventRepository { return paymentEventRepo{t.st} }
func (t *memTx) Notifications() shared.NotificationRepository { return notificationRepo{t.st} }
func (t *memTx) Reads() shared.CommandReads                   { return &memReads{st: t.st} }
func (t *memTx) DB() db.DBTX                                  { return nil }

type ticketTypeRepo struct{ st *state }

func (r ticketTypeRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*tickettype.TicketType, error) {
	row, ok := r.st.ticketTypes[id]
	if !ok {
		return nil, notFound("ticket type not found")
	}
	return row.materialize(), nil
}

func (row ticketTypeRow) materialize() *tickettype.TicketType {
	tt := row.tt
	return tickettype.ReconstructTicketType(tt.ID(), tt.EventID(), tt.Name(), tt.Kind(), tt.BasePrice(),
		tt.QuantityTotal(), row.sold, row.pending, tt.TableID(), tt.CreatedAt())
}

func (r ticketTypeRepo) TryReservePending(_ context.Context, _ db.DBTX, id uuid.UUID, qty int64) (bool, error) {
	row, ok := r.st.ticketTypes[id]
	if !ok {
		return false, nil
	}
	if total := row.tt.QuantityTotal(); total != nil && row.sold+row.pending+qty > *total {
		return false, nil
	}
	row.pending += qty
	r.st.ticketTypes[id] = row
	return true, nil
}

func (r ticketTypeRepo) CommitPending(_ context.Context, _ db.DBTX, id uuid.UUID, qty int64) error {
	row, ok := r.st.ticketTypes[id]
	if !ok || row.pending < qty {
		return infra.WrapRepoErr("failed to commit pending inventory", errLedgerUnderflow, infra.KindConflict)
	}
	row.pending -= qty
	row.sold += qty
	r.st.ticketTypes[id] = row
	return nil
}

func (r ticketTypeRepo) ReleasePending(_ context.Context, _ db.DBTX, id uuid.UUID, qty int64) error {
	row, ok := r.st.ticketTypes[id]
	if !ok || row.pending < qty {
		return infra.WrapRepoErr("failed to release pending inventory", errLedgerUnderflow, infra.KindConflict)
	}
	row.pending -= qty
	r.st.ticketTypes[id] = row
	return nil
}

type tierRepo struct{ st *state }

func (r tierRepo) ListByTicketType(_ context.Context, _ db.DBTX, ticketTypeID uuid.UUID) ([]*pricing.PriceTier, error) {
	var out []*pricing.PriceTier
	for _, row := range r.st.tiers {
		t := row.tier
		if t.TicketTypeID() != ticketTypeID {
			continue
		}
		out = append(out, pricing.ReconstructPriceTier(t.ID(), t.TicketTypeID(), t.Strategy(), t.Price(), t.Priority(),
			t.StartsAt(), t.EndsAt(), t.AllocationTotal(), row.sold, row.pending, t.CreatedAt()))
	}
	return out, nil
}

func (r tierRepo) TryReservePending(_ context.Context, _ db.DBTX, id uuid.UUID, qty int64) (bool, error) {
	row, ok := r.st.tiers[id]
	if !ok {
		return false, nil
	}
	if total := row.tier.AllocationTotal(); total != nil && row.sold+row.pending+qty > *total {
		return false, nil
	}
	row.pending += qty
	r.st.tiers[id] = row
	return true, nil
}

func (r tierRepo) CommitPending(_ context.Context, _ db.DBTX, id uuid.UUID, qty int64) error {
	row, ok := r.st.tiers[id]
	if !ok || row.pending < qty {
		return infra.WrapRepoErr("failed to commit tier allocation", errLedgerUnderflow, infra.KindConflict)
	}
	row.pending -= qty
	row.sold += qty
	r.st.tiers[id] = row
	return nil
}

func (r tierRepo) ReleasePending(_ context.Context, _ db.DBTX, id uuid.UUID, qty int64) error {
	row, ok := r.st.tiers[id]
	if !ok || row.pending < qty {
		return infra.WrapRepoErr("failed to release tier allocation", errLedgerUnderflow, infra.KindConflict)
	}
	row.pending -= qty
	r.st.tiers[id] = row
	return nil
}

type reservationRepo struct{ st *state }

func (r reservationRepo) Create(_ context.Context, _ db.DBTX, res *reservation.Reservation) error {
	r.st.reservations[res.ID()] = reservationRow{r: res, status: res.Status(), updatedAt: res.UpdatedAt()}
	return nil
}

func (row reservationRow) materialize() *reservation.Reservation {
	res := row.r
	return reservation.ReconstructReservation(res.ID(), res.OrderID(), res.TicketTypeID(), res.PriceTierID(),
		res.Quantity(), row.status, res.ExpiresAt(), res.CreatedAt(), row.updatedAt)
}

func (r reservationRepo) ListByOrder(_ context.Context, _ db.DBTX, orderID uuid.UUID) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for _, row := range r.st.reservations {
		if row.r.OrderID() == orderID {
			out = append(out, row.materialize())
		}
	}
	sortReservations(out)
	return out, nil
}

func (r reservationRepo) Settle(_ context.Context, _ db.DBTX, id uuid.UUID, status reservation.Status, at time.Time) (bool, error) {
	row, ok := r.st.reservations[id]
	if !ok || row.status != reservation.StatusPending {
		return false, nil
	}
	row.status = status
	row.updatedAt = at
	r.st.reservations[id] = row
	return true, nil
}

func (r reservationRepo) ListExpiredPending(_ context.Context, _ db.DBTX, now time.Time, limit int) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for _, row := range r.st.reservations {
		if row.status == reservation.StatusPending && row.r.ExpiresAt().Before(now) {
			out = append(out, row.materialize())
		}
	}
	sortReservations(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortReservations(rs []*reservation.Reservation) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].CreatedAt().Equal(rs[j].CreatedAt()) {
			return rs[i].CreatedAt().Before(rs[j].CreatedAt())
		}
		return rs[i].ID().String() < rs[j].ID().String()
	})
}

type promotionRepo struct{ st *state }

func (r promotionRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*promotion.Promotion, error) {
	row, ok := r.st.promotions[id]
	if !ok {
		return nil, notFound("promotion not found")
	}
	return row.materialize(), nil
}

func (row promotionRow) materialize() *promotion.Promotion {
	p := row.p
	return promotion.ReconstructPromotion(p.ID(), p.EventID(), p.Name(), p.Discount(), p.AppliesTo(), p.RequiresCode(),
		p.ValidFrom(), p.ValidUntil(), p.MaxRedemptions(), row.redeemed, p.MaxPerUser(), p.EligibleTicketTypes(), p.CreatedAt())
}

func (row voucherRow) materialize() *promotion.VoucherCode {
	v := row.v
	return promotion.ReconstructVoucherCode(v.ID(), v.PromotionID(), v.Code(), v.MaxRedemptions(), row.redeemed, v.CreatedAt())
}

func (r promotionRepo) FindVoucherByCode(_ context.Context, _ db.DBTX, eventID uuid.UUID, code promotion.Code) (*promotion.VoucherCode, error) {
	for _, row := range r.st.vouchers {
		if row.v.Code() != code {
			continue
		}
		if p, ok := r.st.promotions[row.v.PromotionID()]; ok && p.p.EventID() == eventID {
			return row.materialize(), nil
		}
	}
	return nil, notFound("voucher code not found")
}

func (r promotionRepo) FindVoucherByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*promotion.VoucherCode, error) {
	row, ok := r.st.vouchers[id]
	if !ok {
		return nil, notFound("voucher code not found")
	}
	return row.materialize(), nil
}

func (r promotionRepo) ListAutomaticByEvent(_ context.Context, _ db.DBTX, eventID uuid.UUID) ([]*promotion.Promotion, error) {
	var out []*promotion.Promotion
	for _, row := range r.st.promotions {
		if row.p.EventID() == eventID && !row.p.RequiresCode() {
			out = append(out, row.materialize())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (r promotionRepo) CountConfirmedRedemptions(_ context.Context, _ db.DBTX, promotionID, buyerID uuid.UUID) (int64, error) {
	var n int64
	for _, red := range r.st.redemptions {
		if red.PromotionID == promotionID && red.BuyerID == buyerID {
			n++
		}
	}
	return n, nil
}

func (r promotionRepo) TryIncrementPromotion(_ context.Context, _ db.DBTX, id uuid.UUID) (bool, error) {
	row, ok := r.st.promotions[id]
	if !ok {
		return false, nil
	}
	if limit := row.p.MaxRedemptions(); limit != nil && row.redeemed >= *limit {
		return false, nil
	}
	row.redeemed++
	r.st.promotions[id] = row
	return true, nil
}

func (r promotionRepo) TryIncrementVoucher(_ context.Context, _ db.DBTX, id uuid.UUID) (bool, error) {
	row, ok := r.st.vouchers[id]
	if !ok {
		return false, nil
	}
	if limit := row.v.MaxRedemptions(); limit != nil && row.redeemed >= *limit {
		return false, nil
	}
	row.redeemed++
	r.st.vouchers[id] = row
	return true, nil
}

func (r promotionRepo) RecordRedemption(_ context.Context, _ db.DBTX, red shared.Redemption) error {
	for _, existing := range r.st.redemptions {
		if existing.OrderID == red.OrderID {
			return infra.WrapRepoErr("redemption already recorded", nil, infra.KindDuplicateKey)
		}
	}
	r.st.redemptions = append(r.st.redemptions, red)
	return nil
}

type orderRepo struct{ st *state }

func snapshotOrder(o *order.Order) order.ReconstructParams {
	return order.ReconstructParams{
		ID:             o.ID(),
		BuyerID:        o.BuyerID(),
		EventID:        o.EventID(),
		Items:          o.Items(),
		Status:         o.Status(),
		Currency:       o.Currency(),
		Subtotal:       o.Subtotal(),
		DiscountAmount: o.DiscountAmount(),
		ServiceFee:     o.ServiceFee(),
		Total:          o.Total(),
		RefundedAmount: o.RefundedAmount(),
		Discount:       o.Discount(),
		FeePolicy:      o.FeePolicy(),
		PaymentRef:     o.PaymentRef(),
		ExpiresAt:      o.ExpiresAt(),
		ConfirmedAt:    o.ConfirmedAt(),
		CreatedAt:      o.CreatedAt(),
		UpdatedAt:      o.UpdatedAt(),
	}
}

func (r orderRepo) Create(_ context.Context, _ db.DBTX, o *order.Order) error {
	if _, exists := r.st.orders[o.ID()]; exists {
		return infra.WrapRepoErr("order already exists", nil, infra.KindDuplicateKey)
	}
	r.st.orders[o.ID()] = snapshotOrder(o)
	return nil
}

func (r orderRepo) FindByIDForUpdate(_ context.Context, _ db.DBTX, id uuid.UUID) (*order.Order, error) {
	p, ok := r.st.orders[id]
	if !ok {
		return nil, notFound("order not found")
	}
	p.Items = append([]order.Item(nil), p.Items...)
	return order.Reconstruct(p), nil
}

func (r orderRepo) Update(_ context.Context, _ db.DBTX, o *order.Order) error {
	if _, ok := r.st.orders[o.ID()]; !ok {
		return notFound("order not found")
	}
	r.st.orders[o.ID()] = snapshotOrder(o)
	return nil
}

func (r orderRepo) ListExpiredPending(_ context.Context, _ db.DBTX, now time.Time, limit int) ([]uuid.UUID, error) {
	var rows []order.ReconstructParams
	for _, p := range r.st.orders {
		if p.Status == order.StatusPending && p.ExpiresAt.Before(now) {
			rows = append(rows, p)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ExpiresAt.Before(rows[j].ExpiresAt) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

type ticketRepo struct{ st *state }

func (r ticketRepo) CreateBatch(_ context.Context, _ db.DBTX, tickets []*ticket.Ticket) error {
	for _, t := range tickets {
		for _, existing := range r.st.tickets {
			if existing.Code() == t.Code() {
				return infra.WrapRepoErr("ticket code already issued", nil, infra.KindDuplicateKey)
			}
		}
		r.st.tickets[t.ID()] = t
	}
	return nil
}

func (r ticketRepo) CancelByOrder(_ context.Context, _ db.DBTX, orderID uuid.UUID, at time.Time) (int64, error) {
	var n int64
	for id, t := range r.st.tickets {
		if t.OrderID() != orderID || t.Status() != ticket.StatusActive {
			continue
		}
		r.st.tickets[id] = ticket.Reconstruct(t.ID(), t.OrderID(), t.OrderItemID(), t.TicketTypeID(), t.HolderID(),
			t.Code(), ticket.StatusCancelled, t.CreatedAt(), at)
		n++
	}
	return n, nil
}

type cartRepo struct{ st *state }

func (r cartRepo) Upsert(_ context.Context, _ db.DBTX, item *cart.Item) error {
	r.st.carts[cartKey{item.BuyerID(), item.TicketTypeID()}] = item
	return nil
}

func (r cartRepo) Delete(_ context.Context, _ db.DBTX, buyerID, ticketTypeID uuid.UUID) error {
	delete(r.st.carts, cartKey{buyerID, ticketTypeID})
	return nil
}

func (r cartRepo) ListByBuyerEvent(_ context.Context, _ db.DBTX, buyerID, eventID uuid.UUID) ([]*cart.Item, error) {
	var out []*cart.Item
	for k, item := range r.st.carts {
		if k.buyer == buyerID && item.EventID() == eventID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r cartRepo) ClearEvent(_ context.Context, _ db.DBTX, buyerID, eventID uuid.UUID) error {
	for k, item := range r.st.carts {
		if k.buyer == buyerID && item.EventID() == eventID {
			delete(r.st.carts, k)
		}
	}
	return nil
}

type idempotencyRepo struct{ st *state }

func (r idempotencyRepo) TryInsert(_ context.Context, _ db.DBTX, rec shared.IdempotencyRecord) (bool, error) {
	k := idemKey{rec.Key, rec.BuyerID}
	if _, exists := r.st.idempotency[k]; exists {
		return false, nil
	}
	r.st.idempotency[k] = rec
	return true, nil
}

func (r idempotencyRepo) MarkCompleted(_ context.Context, _ db.DBTX, key, buyerID, orderID uuid.UUID) error {
	k := idemKey{key, buyerID}
	rec, ok := r.st.idempotency[k]
	if !ok {
		return notFound("idempotency key not found")
	}
	rec.Status = shared.IdempotencyStatusCompleted
	rec.ResultOrderID = &orderID
	r.st.idempotency[k] = rec
	return nil
}

func (r idempotencyRepo) ClaimExpired(_ context.Context, _ db.DBTX, rec shared.IdempotencyRecord, now time.Time) (bool, error) {
	k := idemKey{rec.Key, rec.BuyerID}
	existing, ok := r.st.idempotency[k]
	if !ok || !existing.ExpiresAt.Before(now) {
		return false, nil
	}
	r.st.idempotency[k] = rec
	return true, nil
}

func (r idempotencyRepo) DeleteExpired(_ context.Context, _ db.DBTX, now time.Time) (int64, error) {
	var n int64
	for k, rec := range r.st.idempotency {
		if rec.ExpiresAt.Before(now) {
			delete(r.st.idempotency, k)
			n++
		}
	}
	return n, nil
}

type paymentEventRepo struct{ st *state }

func (r paymentEventRepo) TryRecord(_ context.Context, _ db.DBTX, ev shared.PaymentEventRecord) (bool, error) {
	k := paymentEventKey{ev.Provider, ev.EventID}
	if _, exists := r.st.paymentEvents[k]; exists {
		return false, nil
	}
	r.st.paymentEvents[k] = ev
	return true, nil
}

type notificationRepo struct{ st *state }

func (r notificationRepo) CreateJob(_ context.Context, _ db.DBTX, job shared.NewNotificationJob) error {
	r.st.jobs = append(r.st.jobs, JobState{
		NotificationJob: shared.NotificationJob{
			ID:      uuid.New(),
			Kind:    job.Kind,
			Topic:   job.Topic,
			Key:     job.Key,
			Payload: job.Payload,
		},
		Status: shared.NotificationStatusQueued,
		RunAt:  job.RunAt,
	})
	return nil
}

func (r notificationRepo) ClaimBatch(_ context.Context, _ db.DBTX, now time.Time, limit int) ([]shared.NotificationJob, error) {
	var out []shared.NotificationJob
	for _, j := range r.st.jobs {
		if j.Status != shared.NotificationStatusQueued || j.RunAt.After(now) {
			continue
		}
		out = append(out, j.NotificationJob)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r notificationRepo) MarkSent(_ context.Context, _ db.DBTX, id uuid.UUID, _ time.Time) error {
	return r.update(id, func(j *JobState) {
		j.Status = shared.NotificationStatusSent
		j.Attempts++
	})
}

func (r notificationRepo) MarkFailed(_ context.Context, _ db.DBTX, id uuid.UUID, lastError string, retryAt time.Time, maxAttempts int) error {
	return r.update(id, func(j *JobState) {
		j.Attempts++
		j.LastError = lastError
		j.RunAt = retryAt
		if j.Attempts >= maxAttempts {
			j.Status = shared.NotificationStatusFailed
		}
	})
}

func (r notificationRepo) update(id uuid.UUID, fn func(*JobState)) error {
	for i := range r.st.jobs {
		if r.st.jobs[i].ID == id {
			fn(&r.st.jobs[i])
			return nil
		}
	}
	return notFound("notification job not found")
}
