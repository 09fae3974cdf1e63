package commands

import (
	"context"
	"fmt"
	"log/slog"

	"event-ticketing/internal/domain/money"
	"event-ticketing/internal/domain/order"
	"event-ticketing/internal/domain/promotion"
	"event-ticketing/internal/domain/reservation"
	"event-ticketing/internal/domain/ticket"
	"event-ticketing/internal/infra"
	"event-ticketing/internal/pkg/clock"
	"event-ticketing/internal/pkg/errs"
	"event-ticketing/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrPaymentUnavailable = errs.New("PAYMENT_UNAVAILABLE")
	ErrOrderChanged       = errs.New("order changed during checkout")

	errDuplicatePaymentEvent = errs.New("payment event already processed")
)

type CheckoutResult struct {
	OrderID     uuid.UUID
	Status      string
	Confirmed   bool
	RedirectURL string
	PaymentRef  string
}

type CheckoutCommands interface {
	Checkout(ctx context.Context, buyerID, orderID uuid.UUID) (*CheckoutResult, error)
	// HandlePaymentResult returns the outcome recorded for the callback.
	HandlePaymentResult(ctx context.Context, res PaymentResult) (string, error)
}

type checkoutUseCaseImpl struct {
	uow     shared.UnitOfWork
	orders  *orderUseCaseImpl
	gateway PaymentGateway
	clock   clock.Clock
	policy  CheckoutPolicy
}

func NewCheckoutUseCase(
	uow shared.UnitOfWork,
	ledger *InventoryLedger,
	codes ticket.CodeGenerator,
	gateway PaymentGateway,
	invalidator AvailabilityInvalidator,
	clk clock.Clock,
	policy CheckoutPolicy,
) CheckoutCommands {
	return &checkoutUseCaseImpl{
		uow:     uow,
		orders:  newOrderUseCase(uow, ledger, codes, gateway, invalidator, clk, policy),
		gateway: gateway,
		clock:   clk,
		policy:  policy,
	}
}

// Checkout confirms a free order on the spot. Otherwise it opens a payment intent and hands
// back the redirect; confirmation waits for the payment callback.
func (uc *checkoutUseCaseImpl) Checkout(ctx context.Context, buyerID, orderID uuid.UUID) (*CheckoutResult, error) {
	snap, err := uc.uow.CommandReads().OrderByID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if snap.BuyerID != buyerID {
		return nil, ErrOrderNotFound
	}

	switch order.Status(snap.Status) {
	case order.StatusConfirmed:
		return &CheckoutResult{OrderID: orderID, Status: snap.Status, Confirmed: true}, nil
	case order.StatusPending:
	default:
		return nil, order.ErrInvalidTransition
	}
	if uc.clock.Now().After(snap.ExpiresAt) {
		return nil, ErrOrderExpired
	}

	if snap.Total == 0 {
		return uc.confirmFree(ctx, buyerID, orderID)
	}

	intent, err := uc.gateway.CreateIntent(ctx, PaymentIntentRequest{
		OrderID:        orderID,
		BuyerID:        buyerID,
		Amount:         snap.Total,
		Currency:       snap.Currency,
		Description:    fmt.Sprintf("Order %s", orderID),
		IdempotencyKey: fmt.Sprintf("checkout-%s-%d", orderID, snap.Total),
	})
	if err != nil {
		slog.Error("failed to create payment intent", "order_id", orderID.String(), "error", err.Error())
		return nil, errs.Mark(err, ErrPaymentUnavailable)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := loadOwnedOrder(ctx, tx, orderID, buyerID)
		if err != nil {
			return err
		}
		if o.Status() != order.StatusPending {
			return order.ErrInvalidTransition
		}
		if o.Total().Minor() != snap.Total {
			return ErrOrderChanged
		}
		if err := o.AttachPayment(intent.Reference, uc.clock.Now()); err != nil {
			return err
		}
		return tx.Orders().Update(ctx, tx.DB(), o)
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		OrderID:     orderID,
		Status:      string(order.StatusPending),
		RedirectURL: intent.RedirectURL,
		PaymentRef:  intent.Reference,
	}, nil
}

func (uc *checkoutUseCaseImpl) confirmFree(ctx context.Context, buyerID, orderID uuid.UUID) (*CheckoutResult, error) {
	var touched []uuid.UUID
	var status order.Status
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := loadOwnedOrder(ctx, tx, orderID, buyerID)
		if err != nil {
			return err
		}
		if !o.IsFree() {
			return ErrOrderChanged
		}
		_, touched, err = uc.orders.confirmOrder(ctx, tx, o)
		status = o.Status()
		return err
	})
	if errs.Is(err, reservation.ErrNotPending) {
		return nil, ErrOrderExpired
	}
	if err != nil {
		return nil, err
	}
	uc.orders.invalidate(ctx, touched)
	return &CheckoutResult{OrderID: orderID, Status: string(status), Confirmed: true}, nil
}

// HandlePaymentResult treats the callback as untrusted: the order is re-read under lock and the
// reference and amount must match before anything changes. Each provider event is applied once.
func (uc *checkoutUseCaseImpl) HandlePaymentResult(ctx context.Context, res PaymentResult) (string, error) {
	outcome, touched, err := uc.applyPaymentResult(ctx, res)
	if isConfirmRejection(err) {
		slog.Warn("paid order could not be confirmed",
			"order_id", res.OrderID.String(),
			"event_id", res.EventID,
			"reason", err.Error())
		outcome, touched, err = uc.rejectPaidOrder(ctx, res, err)
	}
	if errs.Is(err, errDuplicatePaymentEvent) {
		slog.Info("duplicate payment event ignored", "event_id", res.EventID)
		return "DUPLICATE", nil
	}
	if err != nil {
		return "", err
	}
	uc.orders.invalidate(ctx, touched)
	return outcome, nil
}

func (uc *checkoutUseCaseImpl) applyPaymentResult(ctx context.Context, res PaymentResult) (string, []uuid.UUID, error) {
	var outcome string
	var touched []uuid.UUID
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		outcome, touched = "", nil
		now := uc.clock.Now()

		o, err := tx.Orders().FindByIDForUpdate(ctx, tx.DB(), res.OrderID)
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			slog.Warn("payment callback for unknown order", "order_id", res.OrderID.String())
			outcome = shared.PaymentOutcomeRejected
			return uc.recordEvent(ctx, tx, res, nil, outcome)
		case err != nil:
			return err
		}

		switch {
		case res.Succeeded && o.Status().IsPaid():
			outcome = shared.PaymentOutcomeConfirmed
		case res.Succeeded && o.Status() == order.StatusCancelled:
			slog.Warn("payment succeeded for cancelled order; refund required", "order_id", o.ID().String())
			outcome = shared.PaymentOutcomeIgnored
			if err := enqueueOrderEvent(ctx, tx, uc.policy.Topic, EventOrderRefundRequired, o, "paid after cancellation", nil, now); err != nil {
				return err
			}
		case res.Succeeded:
			err := o.VerifyPayment(res.Reference, money.New(res.Amount))
			if errs.Is(err, order.ErrAmountMismatch) {
				return err
			}
			if err != nil {
				// The money was taken on a session this order no longer points at.
				slog.Warn("payment callback rejected; refund required", "order_id", o.ID().String(), "reason", err.Error())
				outcome = shared.PaymentOutcomeRejected
				if err := enqueueOrderEvent(ctx, tx, uc.policy.Topic, EventOrderRefundRequired, o, err.Error(), nil, now); err != nil {
					return err
				}
				break
			}
			if _, touched, err = uc.orders.confirmOrder(ctx, tx, o); err != nil {
				return err
			}
			outcome = shared.PaymentOutcomeConfirmed
		case o.Status() == order.StatusPending && o.VerifyPayment(res.Reference, o.Total()) == nil:
			if touched, err = uc.orders.cancelOrder(ctx, tx, o, "payment failed"); err != nil {
				return err
			}
			outcome = shared.PaymentOutcomeCancelled
		default:
			outcome = shared.PaymentOutcomeIgnored
		}

		id := o.ID()
		return uc.recordEvent(ctx, tx, res, &id, outcome)
	})
	return outcome, touched, err
}

// rejectPaidOrder cancels an order whose payment went through but could not be honoured, and asks
// for a refund.
func (uc *checkoutUseCaseImpl) rejectPaidOrder(ctx context.Context, res PaymentResult, cause error) (string, []uuid.UUID, error) {
	var touched []uuid.UUID
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		touched = nil
		o, err := tx.Orders().FindByIDForUpdate(ctx, tx.DB(), res.OrderID)
		if err != nil {
			return err
		}
		if touched, err = uc.orders.cancelOrder(ctx, tx, o, cause.Error()); err != nil {
			return err
		}
		if err := enqueueOrderEvent(ctx, tx, uc.policy.Topic, EventOrderRefundRequired, o, cause.Error(), nil, uc.clock.Now()); err != nil {
			return err
		}
		id := o.ID()
		return uc.recordEvent(ctx, tx, res, &id, shared.PaymentOutcomeCancelled)
	})
	return shared.PaymentOutcomeCancelled, touched, err
}

func (uc *checkoutUseCaseImpl) recordEvent(ctx context.Context, tx shared.Tx, res PaymentResult, orderID *uuid.UUID, outcome string) error {
	recorded, err := tx.PaymentEvents().TryRecord(ctx, tx.DB(), shared.PaymentEventRecord{
		Provider:   res.Provider,
		EventID:    res.EventID,
		OrderID:    orderID,
		Outcome:    outcome,
		ReceivedAt: uc.clock.Now(),
	})
	if err != nil {
		return err
	}
	if !recorded {
		return errDuplicatePaymentEvent
	}
	return nil
}

func isConfirmRejection(err error) bool {
	return errs.Is(err, reservation.ErrNotPending) ||
		errs.Is(err, order.ErrAmountMismatch) ||
		errs.Is(err, promotion.ErrRedemptionLimitReached) ||
		errs.Is(err, promotion.ErrCodeExhausted) ||
		errs.Is(err, promotion.ErrPerUserLimitReached)
}
