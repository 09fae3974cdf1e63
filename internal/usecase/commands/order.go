package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"event-ticketing/internal/domain/money"
	"event-ticketing/internal/domain/order"
	"event-ticketing/internal/domain/promotion"
	"event-ticketing/internal/domain/ticket"
	"event-ticketing/internal/infra"
	"event-ticketing/internal/pkg/clock"
	"event-ticketing/internal/pkg/errs"
	"event-ticketing/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound         = errs.New("ORDER_NOT_FOUND")
	ErrTicketTypeNotFound    = errs.New("TICKET_TYPE_NOT_FOUND")
	ErrCartEmpty             = errs.New("CART_EMPTY")
	ErrEventMismatch         = errs.New("ticket type does not belong to event")
	ErrOrderExpired          = errs.New("ORDER_EXPIRED")
	ErrIdempotencyKeyReused  = errs.New("IDEMPOTENCY_KEY_REUSED")
	ErrIdempotencyInProgress = errs.New("IDEMPOTENCY_IN_PROGRESS")
)

const createOrderEndpoint = "POST /orders"

type CreateOrderRequest struct {
	EventID     uuid.UUID `json:"event_id"`
	VoucherCode *string   `json:"voucher_code,omitempty"`
}

type CreateOrderResult struct {
	OrderID    uuid.UUID
	IsReplayed bool
}

type RefundResult struct {
	OrderID        uuid.UUID
	Status         string
	Total          int64
	RefundedAmount int64
}

type OrderCommands interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest, buyerID, idempotencyKey uuid.UUID) (*CreateOrderResult, error)
	ApplyVoucher(ctx context.Context, buyerID, orderID uuid.UUID, code string) error
	RemoveVoucher(ctx context.Context, buyerID, orderID uuid.UUID) error
	CancelOrder(ctx context.Context, buyerID, orderID uuid.UUID) error
	// RefundOrder is an operator action and does not check ownership.
	RefundOrder(ctx context.Context, orderID uuid.UUID, amount *int64) (*RefundResult, error)
	ExpireStaleOrders(ctx context.Context) (int, error)
}

type orderUseCaseImpl struct {
	uow         shared.UnitOfWork
	ledger      *InventoryLedger
	codes       ticket.CodeGenerator
	gateway     PaymentGateway
	invalidator AvailabilityInvalidator
	clock       clock.Clock
	policy      CheckoutPolicy
}

func NewOrderUseCase(
	uow shared.UnitOfWork,
	ledger *InventoryLedger,
	codes ticket.CodeGenerator,
	gateway PaymentGateway,
	invalidator AvailabilityInvalidator,
	clk clock.Clock,
	policy CheckoutPolicy,
) OrderCommands {
	return newOrderUseCase(uow, ledger, codes, gateway, invalidator, clk, policy)
}

func newOrderUseCase(
	uow shared.UnitOfWork,
	ledger *InventoryLedger,
	codes ticket.CodeGenerator,
	gateway PaymentGateway,
	invalidator AvailabilityInvalidator,
	clk clock.Clock,
	policy CheckoutPolicy,
) *orderUseCaseImpl {
	return &orderUseCaseImpl{
		uow:         uow,
		ledger:      ledger,
		codes:       codes,
		gateway:     gateway,
		invalidator: invalidator,
		clock:       clk,
		policy:      policy,
	}
}

func (uc *orderUseCaseImpl) CreateOrder(ctx context.Context, req CreateOrderRequest, buyerID, idempotencyKey uuid.UUID) (*CreateOrderResult, error) {
	requestHash := calculateRequestHash(req)

	var result *CreateOrderResult
	var touched []uuid.UUID
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result, touched = nil, nil
		now := uc.clock.Now()

		replay, err := uc.claimIdempotencyKey(ctx, tx, idempotencyKey, buyerID, requestHash, now)
		if err != nil {
			return err
		}
		if replay != nil {
			result = &CreateOrderResult{OrderID: *replay, IsReplayed: true}
			return nil
		}

		o, ids, err := uc.placeOrder(ctx, tx, req, buyerID, now)
		if err != nil {
			return err
		}
		if err := tx.Idempotency().MarkCompleted(ctx, tx.DB(), idempotencyKey, buyerID, o.ID()); err != nil {
			return err
		}
		result = &CreateOrderResult{OrderID: o.ID()}
		touched = ids
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(touched) > 0 {
		uc.invalidator.Invalidate(ctx, touched...)
	}
	return result, nil
}

// claimIdempotencyKey returns the order id of a completed identical request, if any.
func (uc *orderUseCaseImpl) claimIdempotencyKey(ctx context.Context, tx shared.Tx, key, buyerID uuid.UUID, requestHash string, now time.Time) (*uuid.UUID, error) {
	rec := shared.IdempotencyRecord{
		Key:         key,
		BuyerID:     buyerID,
		Endpoint:    createOrderEndpoint,
		RequestHash: requestHash,
		Status:      shared.IdempotencyStatusProcessing,
		ExpiresAt:   now.Add(uc.policy.IdempotencyKeyExpiry),
	}

	inserted, err := tx.Idempotency().TryInsert(ctx, tx.DB(), rec)
	if err != nil {
		return nil, err
	}
	if inserted {
		return nil, nil
	}

	existing, err := tx.Reads().IdempotencyByKey(ctx, key, buyerID)
	if err != nil {
		return nil, err
	}

	if existing.ExpiresAt.Before(now) {
		claimed, err := tx.Idempotency().ClaimExpired(ctx, tx.DB(), rec, now)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return nil, ErrIdempotencyInProgress
		}
		return nil, nil
	}

	if existing.RequestHash != requestHash {
		return nil, ErrIdempotencyKeyReused
	}

	switch existing.Status {
	case shared.IdempotencyStatusCompleted:
		if existing.ResultOrderID == nil {
			return nil, errs.New("completed request missing result order ID")
		}
		return existing.ResultOrderID, nil
	case shared.IdempotencyStatusProcessing:
		return nil, ErrIdempotencyInProgress
	default:
		return nil, errs.New("invalid idempotency key status")
	}
}

// placeOrder snapshots the cart into a PENDING order. Every line is reserved or the
// transaction fails as a whole.
func (uc *orderUseCaseImpl) placeOrder(ctx context.Context, tx shared.Tx, req CreateOrderRequest, buyerID uuid.UUID, now time.Time) (*order.Order, []uuid.UUID, error) {
	cartItems, err := tx.Carts().ListByBuyerEvent(ctx, tx.DB(), buyerID, req.EventID)
	if err != nil {
		return nil, nil, err
	}
	if len(cartItems) == 0 {
		return nil, nil, ErrCartEmpty
	}

	// Lock counters in a stable order so concurrent checkouts cannot deadlock.
	sort.Slice(cartItems, func(i, j int) bool {
		a, b := cartItems[i].TicketTypeID(), cartItems[j].TicketTypeID()
		return a.String() < b.String()
	})

	orderID := uuid.New()
	items := make([]order.Item, 0, len(cartItems))
	touched := make([]uuid.UUID, 0, len(cartItems))
	for _, ci := range cartItems {
		tt, err := tx.TicketTypes().FindByID(ctx, tx.DB(), ci.TicketTypeID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, nil, ErrTicketTypeNotFound
			}
			return nil, nil, err
		}
		if tt.EventID() != req.EventID {
			return nil, nil, ErrEventMismatch
		}

		hold, err := uc.ledger.Reserve(ctx, tx, orderID, tt, ci.Quantity())
		if err != nil {
			return nil, nil, err
		}

		var tierID *uuid.UUID
		if hold.Quote.Tier != nil {
			id := hold.Quote.Tier.ID()
			tierID = &id
		}
		item, err := order.NewItem(tt.ID(), tierID, ci.Quantity(), hold.Quote.Price)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
		touched = append(touched, tt.ID())
	}

	o, err := order.NewOrder(order.NewParams{
		ID:        orderID,
		BuyerID:   buyerID,
		EventID:   req.EventID,
		Items:     items,
		Currency:  uc.policy.Currency,
		FeePolicy: uc.policy.Fee,
		Now:       now,
		TTL:       uc.policy.ReservationTTL,
	})
	if err != nil {
		return nil, nil, err
	}

	if req.VoucherCode != nil && *req.VoucherCode != "" {
		if err := uc.applyVoucher(ctx, tx, o, *req.VoucherCode, now); err != nil {
			return nil, nil, err
		}
	} else if err := uc.applyBestAutomatic(ctx, tx, o, now); err != nil {
		return nil, nil, err
	}

	if err := tx.Orders().Create(ctx, tx.DB(), o); err != nil {
		return nil, nil, err
	}

	slog.Info("order placed",
		"order_id", o.ID().String(),
		"buyer_id", buyerID.String(),
		"items", len(items),
		"total", o.Total().Minor())
	return o, touched, nil
}

func (uc *orderUseCaseImpl) ApplyVoucher(ctx context.Context, buyerID, orderID uuid.UUID, code string) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := loadOwnedOrder(ctx, tx, orderID, buyerID)
		if err != nil {
			return err
		}
		now := uc.clock.Now()
		if err := uc.applyVoucher(ctx, tx, o, code, now); err != nil {
			return err
		}
		return tx.Orders().Update(ctx, tx.DB(), o)
	})
}

func (uc *orderUseCaseImpl) RemoveVoucher(ctx context.Context, buyerID, orderID uuid.UUID) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := loadOwnedOrder(ctx, tx, orderID, buyerID)
		if err != nil {
			return err
		}
		now := uc.clock.Now()
		if err := o.ClearDiscount(now); err != nil {
			return err
		}
		if err := uc.applyBestAutomatic(ctx, tx, o, now); err != nil {
			return err
		}
		return tx.Orders().Update(ctx, tx.DB(), o)
	})
}

// applyVoucher validates a code against the order and prices it in, replacing any earlier discount.
// Redemption counters are left untouched until confirmation.
func (uc *orderUseCaseImpl) applyVoucher(ctx context.Context, tx shared.Tx, o *order.Order, raw string, now time.Time) error {
	if o.Status() != order.StatusPending {
		return order.ErrNotPending
	}
	if o.PaymentRef() != nil {
		return order.ErrPaymentInProgress
	}
	code, err := promotion.NewCode(raw)
	if err != nil {
		return promotion.ErrCodeNotFound
	}

	v, err := tx.Promotions().FindVoucherByCode(ctx, tx.DB(), o.EventID(), code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return promotion.ErrCodeNotFound
		}
		return err
	}
	p, err := tx.Promotions().FindByID(ctx, tx.DB(), v.PromotionID())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return promotion.ErrCodeNotFound
		}
		return err
	}

	prior, err := uc.priorRedemptions(ctx, tx, p, o.BuyerID())
	if err != nil {
		return err
	}

	res, err := promotion.Validate(promotion.ValidationInput{
		Promotion:        p,
		Voucher:          v,
		EventID:          o.EventID(),
		Now:              now,
		PriorRedemptions: prior,
		Lines:            o.PromotionLines(),
	})
	if err != nil {
		return err
	}

	vid := v.ID()
	vcode := v.Code()
	return o.ApplyDiscount(order.AppliedDiscount{PromotionID: p.ID(), VoucherCodeID: &vid, Code: &vcode}, res.Discount, now)
}

func (uc *orderUseCaseImpl) applyBestAutomatic(ctx context.Context, tx shared.Tx, o *order.Order, now time.Time) error {
	candidates, err := tx.Promotions().ListAutomaticByEvent(ctx, tx.DB(), o.EventID())
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	prior := make(map[uuid.UUID]int64, len(candidates))
	for _, p := range candidates {
		n, err := uc.priorRedemptions(ctx, tx, p, o.BuyerID())
		if err != nil {
			return err
		}
		prior[p.ID()] = n
	}

	best, ok := promotion.BestAutomatic(candidates, promotion.ValidationInput{
		EventID: o.EventID(),
		Now:     now,
		Lines:   o.PromotionLines(),
	}, func(id uuid.UUID) int64 { return prior[id] })
	if !ok || best.Discount.IsZero() {
		return nil
	}
	return o.ApplyDiscount(order.AppliedDiscount{PromotionID: best.Promotion.ID()}, best.Discount, now)
}

func (uc *orderUseCaseImpl) priorRedemptions(ctx context.Context, tx shared.Tx, p *promotion.Promotion, buyerID uuid.UUID) (int64, error) {
	if p.MaxPerUser() == nil {
		return 0, nil
	}
	return tx.Promotions().CountConfirmedRedemptions(ctx, tx.DB(), p.ID(), buyerID)
}

func (uc *orderUseCaseImpl) CancelOrder(ctx context.Context, buyerID, orderID uuid.UUID) error {
	var touched []uuid.UUID
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := loadOwnedOrder(ctx, tx, orderID, buyerID)
		if err != nil {
			return err
		}
		touched, err = uc.cancelOrder(ctx, tx, o, "cancelled by buyer")
		return err
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx, touched)
	return nil
}

// cancelOrder is a no-op for an order that is already cancelled.
func (uc *orderUseCaseImpl) cancelOrder(ctx context.Context, tx shared.Tx, o *order.Order, reason string) ([]uuid.UUID, error) {
	now := uc.clock.Now()
	changed, err := o.Cancel(now)
	if err != nil || !changed {
		return nil, err
	}

	touched, err := uc.ledger.ReleaseOrder(ctx, tx, o.ID())
	if err != nil {
		return nil, err
	}
	if err := tx.Orders().Update(ctx, tx.DB(), o); err != nil {
		return nil, err
	}
	if err := enqueueOrderEvent(ctx, tx, uc.policy.Topic, EventOrderCancelled, o, reason, nil, now); err != nil {
		return nil, err
	}

	slog.Info("order cancelled", "order_id", o.ID().String(), "reason", reason)
	return touched, nil
}

// confirmOrder commits inventory, counts the redemption, mints tickets and flips the status in the
// caller's transaction. It reports false when the order was already confirmed.
func (uc *orderUseCaseImpl) confirmOrder(ctx context.Context, tx shared.Tx, o *order.Order) (bool, []uuid.UUID, error) {
	now := uc.clock.Now()
	changed, err := o.Confirm(now)
	if err != nil || !changed {
		return false, nil, err
	}

	touched, err := uc.ledger.CommitOrder(ctx, tx, o.ID())
	if err != nil {
		return false, nil, err
	}

	if err := uc.redeem(ctx, tx, o, now); err != nil {
		return false, nil, err
	}

	tickets, err := ticket.Mint(o, uc.codes, now)
	if err != nil {
		return false, nil, err
	}
	if err := tx.Tickets().CreateBatch(ctx, tx.DB(), tickets); err != nil {
		return false, nil, err
	}

	if err := tx.Orders().Update(ctx, tx.DB(), o); err != nil {
		return false, nil, err
	}
	if err := tx.Carts().ClearEvent(ctx, tx.DB(), o.BuyerID(), o.EventID()); err != nil {
		return false, nil, err
	}
	if err := enqueueOrderEvent(ctx, tx, uc.policy.Topic, EventOrderConfirmed, o, "", tickets, now); err != nil {
		return false, nil, err
	}

	slog.Info("order confirmed",
		"order_id", o.ID().String(),
		"tickets", len(tickets),
		"total", o.Total().Minor())
	return true, touched, nil
}

// redeem increments the promotion and voucher counters with their caps as guards.
func (uc *orderUseCaseImpl) redeem(ctx context.Context, tx shared.Tx, o *order.Order, now time.Time) error {
	d := o.Discount()
	if d == nil {
		return nil
	}

	p, err := tx.Promotions().FindByID(ctx, tx.DB(), d.PromotionID)
	if err != nil {
		return err
	}
	if limit := p.MaxPerUser(); limit != nil {
		prior, err := tx.Promotions().CountConfirmedRedemptions(ctx, tx.DB(), p.ID(), o.BuyerID())
		if err != nil {
			return err
		}
		if prior >= *limit {
			return promotion.ErrPerUserLimitReached
		}
	}

	ok, err := tx.Promotions().TryIncrementPromotion(ctx, tx.DB(), d.PromotionID)
	if err != nil {
		return err
	}
	if !ok {
		return promotion.ErrRedemptionLimitReached
	}
	if d.VoucherCodeID != nil {
		ok, err := tx.Promotions().TryIncrementVoucher(ctx, tx.DB(), *d.VoucherCodeID)
		if err != nil {
			return err
		}
		if !ok {
			return promotion.ErrCodeExhausted
		}
	}

	return tx.Promotions().RecordRedemption(ctx, tx.DB(), shared.Redemption{
		PromotionID:   d.PromotionID,
		VoucherCodeID: d.VoucherCodeID,
		OrderID:       o.ID(),
		BuyerID:       o.BuyerID(),
		RedeemedAt:    now,
	})
}

// RefundOrder returns amount, or everything still refundable when amount is nil. The payment
// collaborator refunds first and the order only changes once it has accepted. A full refund
// cancels the tickets that were not checked in. Inventory is not returned.
func (uc *orderUseCaseImpl) RefundOrder(ctx context.Context, orderID uuid.UUID, amount *int64) (*RefundResult, error) {
	var req RefundRequest
	var refundedBefore money.Money
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := findOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		refundedBefore = o.RefundedAmount()
		refund := refundAmount(o, amount)
		// Dry run on the loaded copy; nothing is written here.
		if err := o.Refund(refund, uc.clock.Now()); err != nil {
			return err
		}
		if o.PaymentRef() == nil {
			return order.ErrInvalidRefund
		}
		req = RefundRequest{
			OrderID:        o.ID(),
			Reference:      *o.PaymentRef(),
			Amount:         refund.Minor(),
			Currency:       o.Currency(),
			IdempotencyKey: fmt.Sprintf("refund-%s-%d-%d", o.ID(), refundedBefore.Minor(), refund.Minor()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// A retry after a failed write below reuses the idempotency key, so the provider refunds once.
	if err := uc.gateway.Refund(ctx, req); err != nil {
		slog.Error("payment refund failed", "order_id", orderID.String(), "amount", req.Amount, "error", err.Error())
		return nil, errs.Mark(err, ErrPaymentUnavailable)
	}

	var result *RefundResult
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := findOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o.RefundedAmount() != refundedBefore {
			return ErrOrderChanged
		}
		now := uc.clock.Now()
		if err := o.Refund(money.New(req.Amount), now); err != nil {
			return err
		}
		if o.Status() == order.StatusRefunded {
			if _, err := tx.Tickets().CancelByOrder(ctx, tx.DB(), o.ID(), now); err != nil {
				return err
			}
		}
		if err := tx.Orders().Update(ctx, tx.DB(), o); err != nil {
			return err
		}
		if err := enqueueOrderEvent(ctx, tx, uc.policy.Topic, EventOrderRefunded, o, "", nil, now); err != nil {
			return err
		}
		result = &RefundResult{
			OrderID:        o.ID(),
			Status:         string(o.Status()),
			Total:          o.Total().Minor(),
			RefundedAmount: o.RefundedAmount().Minor(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("order refunded",
		"order_id", orderID.String(),
		"amount", req.Amount,
		"status", result.Status)
	return result, nil
}

func refundAmount(o *order.Order, amount *int64) money.Money {
	if amount != nil {
		return money.New(*amount)
	}
	return o.Total().Sub(o.RefundedAmount())
}

// ExpireStaleOrders cancels PENDING orders past their expiry, releases any pending reservation
// past its own expiry and drops expired idempotency keys. Each order is handled in its own
// transaction so one failure does not hold back the rest.
func (uc *orderUseCaseImpl) ExpireStaleOrders(ctx context.Context) (int, error) {
	var ids []uuid.UUID
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		ids, err = tx.Orders().ListExpiredPending(ctx, tx.DB(), uc.clock.Now(), uc.policy.SweepBatchSize)
		return err
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		var touched []uuid.UUID
		var cancelled bool
		err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			touched, cancelled = nil, false
			o, err := tx.Orders().FindByIDForUpdate(ctx, tx.DB(), id)
			if err != nil {
				return err
			}
			if !o.IsExpired(uc.clock.Now()) {
				return nil
			}
			if touched, err = uc.cancelOrder(ctx, tx, o, "reservation expired"); err != nil {
				return err
			}
			cancelled = true
			return nil
		})
		if err != nil {
			slog.Warn("failed to expire order", "order_id", id.String(), "error", err.Error())
			continue
		}
		if cancelled {
			expired++
		}
		uc.invalidate(ctx, touched)
	}

	orphans, cancelled, err := uc.releaseExpiredReservations(ctx)
	expired += cancelled
	if err != nil {
		return expired, err
	}
	uc.invalidate(ctx, orphans)

	return expired, nil
}

// releaseExpiredReservations settles lapsed holds the order pass did not reach. A hold whose order
// is still PENDING takes the order down with it, so the order can never be confirmed without
// its inventory.
func (uc *orderUseCaseImpl) releaseExpiredReservations(ctx context.Context) ([]uuid.UUID, int, error) {
	var touched []uuid.UUID
	var cancelled int
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		touched, cancelled = nil, 0
		now := uc.clock.Now()
		rs, err := tx.Reservations().ListExpiredPending(ctx, tx.DB(), now, uc.policy.SweepBatchSize)
		if err != nil {
			return err
		}
		for _, r := range rs {
			o, err := tx.Orders().FindByIDForUpdate(ctx, tx.DB(), r.OrderID())
			switch {
			case err == nil && o.Status() == order.StatusPending:
				ids, err := uc.cancelOrder(ctx, tx, o, "reservation expired")
				if err != nil {
					return err
				}
				touched = append(touched, ids...)
				cancelled++
				continue
			case err != nil && !infra.IsKind(err, infra.KindNotFound):
				return err
			}

			released, err := uc.ledger.Release(ctx, tx, r)
			if err != nil {
				return err
			}
			if released {
				touched = append(touched, r.TicketTypeID())
			}
		}
		_, err = tx.Idempotency().DeleteExpired(ctx, tx.DB(), now)
		return err
	})
	return touched, cancelled, err
}

func (uc *orderUseCaseImpl) invalidate(ctx context.Context, ids []uuid.UUID) {
	if len(ids) > 0 {
		uc.invalidator.Invalidate(ctx, ids...)
	}
}

func findOrder(ctx context.Context, tx shared.Tx, orderID uuid.UUID) (*order.Order, error) {
	o, err := tx.Orders().FindByIDForUpdate(ctx, tx.DB(), orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func loadOwnedOrder(ctx context.Context, tx shared.Tx, orderID, buyerID uuid.UUID) (*order.Order, error) {
	o, err := findOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID() != buyerID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func calculateRequestHash(req CreateOrderRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
