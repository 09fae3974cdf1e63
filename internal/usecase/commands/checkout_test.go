//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"event-ticketing/internal/domain/money"
	"event-ticketing/internal/domain/order"
	"event-ticketing/internal/domain/reservation"
	commandsmock "event-ticketing/internal/mock/commands"
	"event-ticketing/internal/usecase/commands"
	"event-ticketing/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// startPayment runs checkout against a gateway that hands out ref.
func startPayment(t *testing.T, f *fixture, buyer, orderID uuid.UUID, ref string) commands.CheckoutCommands {
	t.Helper()
	gateway := commandsmock.NewMockPaymentGateway(gomock.NewController(t))
	gateway.EXPECT().CreateIntent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req commands.PaymentIntentRequest) (*commands.PaymentIntent, error) {
			assert.Equal(t, orderID, req.OrderID)
			assert.Equal(t, f.order(orderID).Total().Minor(), req.Amount)
			return &commands.PaymentIntent{Reference: ref, RedirectURL: "https://pay.example/" + ref}, nil
		})
	uc := f.checkout(gateway)
	res, err := uc.Checkout(context.Background(), buyer, orderID)
	require.NoError(t, err)
	require.False(t, res.Confirmed)
	return uc
}

func confirmPaid(t *testing.T, f *fixture, buyer, orderID uuid.UUID) {
	t.Helper()
	ref := "cs_" + orderID.String()
	uc := startPayment(t, f, buyer, orderID, ref)
	outcome, err := uc.HandlePaymentResult(context.Background(), commands.PaymentResult{
		Provider:  "stripe",
		EventID:   "evt_" + orderID.String(),
		OrderID:   orderID,
		Reference: ref,
		Amount:    f.order(orderID).Total().Minor(),
		Succeeded: true,
	})
	require.NoError(t, err)
	require.Equal(t, shared.PaymentOutcomeConfirmed, outcome)
}

func TestCheckout_FreeOrderSkipsGateway(t *testing.T) {
	f := newFixture(t)
	tt := f.ticketType(0, int64Ptr(5))
	buyer := uuid.New()
	orderID := f.placeOrder(buyer, tt, 2, nil)

	// No expectations: any gateway call fails the test.
	uc := f.checkout(commandsmock.NewMockPaymentGateway(gomock.NewController(t)))

	res, err := uc.Checkout(context.Background(), buyer, orderID)
	require.NoError(t, err)
	assert.True(t, res.Confirmed)
	assert.Equal(t, string(order.StatusConfirmed), res.Status)

	sold, pending := f.store.Counters(tt)
	assert.Equal(t, int64(2), sold)
	assert.Zero(t, pending)
	assert.Len(t, f.store.Tickets(orderID), 2)
	assert.Zero(t, f.store.CartSize(buyer))

	t.Run("confirming twice mints nothing new", func(t *testing.T) {
		res, err := uc.Checkout(context.Background(), buyer, orderID)
		require.NoError(t, err)
		assert.True(t, res.Confirmed)
		assert.Len(t, f.store.Tickets(orderID), 2)
		sold, _ := f.store.Counters(tt)
		assert.Equal(t, int64(2), sold)
	})
}

func TestCheckout_FullDiscountIsFree(t *testing.T) {
	f := newFixture(t)
	tt := f.ticketType(4000, nil)
	p := f.promotion(promoOpts{value: 10000, requiresCode: true})
	f.voucher(p, "COMP100", int64Ptr(5))
	buyer := uuid.New()
	code := "COMP100"
	orderID := f.placeOrder(buyer, tt, 1, &code)

	o := f.order(orderID)
	assert.Zero(t, o.ServiceFee().Minor())
	assert.True(t, o.IsFree())

	res, err := f.checkout(commandsmock.NewMockPaymentGateway(gomock.NewController(t))).Checkout(context.Background(), buyer, orderID)
	require.NoError(t, err)
	assert.True(t, res.Confirmed)
	assert.Equal(t, int64(1), f.store.PromotionRedeemed(p.ID()))
	require.Len(t, f.store.Redemptions(), 1)
	assert.Equal(t, orderID, f.store.Redemptions()[0].OrderID)
}

func TestCheckout_GatewayFailure(t *testing.T) {
	f := newFixture(t)
	tt := f.ticketType(5000, nil)
	buyer := uuid.New()
	orderID := f.placeOrder(buyer, tt, 1, nil)

	gateway := commandsmock.NewMockPaymentGateway(gomock.NewController(t))
	gateway.EXPECT().CreateIntent(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	_, err := f.checkout(gateway).Checkout(context.Background(), buyer, orderID)
	assert.ErrorIs(t, err, commands.ErrPaymentUnavailable)
	o := f.order(orderID)
	assert.Equal(t, order.StatusPending, o.Status())
	assert.Nil(t, o.PaymentRef())
}

func TestCheckout_ExpiredOrder(t *testing.T) {
	f := newFixture(t)
	tt := f.ticketType(5000, nil)
	buyer := uuid.New()
	orderID := f.placeOrder(buyer, tt, 1, nil)
	f.clock.Add(f.policy.ReservationTTL + 1)

	_, err := f.checkout(commandsmock.NewMockPaymentGateway(gomock.NewController(t))).Checkout(context.Background(), buyer, orderID)
	assert.ErrorIs(t, err, commands.ErrOrderExpired)
}

func TestHandlePaymentResult(t *testing.T) {
	type setup struct {
		f       *fixture
		uc      commands.CheckoutCommands
		tt      uuid.UUID
		orderID uuid.UUID
		total   int64
	}
	newSetup := func(t *testing.T) setup {
		f := newFixture(t)
		tt := f.ticketType(5000, int64Ptr(3))
		buyer := uuid.New()
		orderID := f.placeOrder(buyer, tt, 2, nil)
		uc := startPayment(t, f, buyer, orderID, "cs_test_1")
		return setup{f: f, uc: uc, tt: tt, orderID: orderID, total: f.order(orderID).Total().Minor()}
	}

	t.Run("success confirms once", func(t *testing.T) {
		s := newSetup(t)
		res := commands.PaymentResult{Provider: "stripe", EventID: "evt_1", OrderID: s.orderID, Reference: "cs_test_1", Amount: s.total, Succeeded: true}

		outcome, err := s.uc.HandlePaymentResult(context.Background(), res)
		require.NoError(t, err)
		assert.Equal(t, shared.PaymentOutcomeConfirmed, outcome)
		assert.Equal(t, order.StatusConfirmed, s.f.order(s.orderID).Status())
		sold, pending := s.f.store.Counters(s.tt)
		assert.Equal(t, int64(2), sold)
		assert.Zero(t, pending)
		assert.Len(t, s.f.store.Tickets(s.orderID), 2)
		assert.Contains(t, s.f.store.JobKinds(), commands.EventOrderConfirmed)

		outcome, err = s.uc.HandlePaymentResult(context.Background(), res)
		require.NoError(t, err)
		assert.Equal(t, "DUPLICATE", outcome)

		res.EventID = "evt_2"
		outcome, err = s.uc.HandlePaymentResult(context.Background(), res)
		require.NoError(t, err)
		assert.Equal(t, shared.PaymentOutcomeConfirmed, outcome)
		assert.Len(t, s.f.store.Tickets(s.orderID), 2)
	})

	t.Run("amount mismatch cancels and asks for a refund", func(t *testing.T) {
		s := newSetup(t)
		outcome, err := s.uc.HandlePaymentResult(context.Background(), commands.PaymentResult{
			Provider: "stripe", EventID: "evt_1", OrderID: s.orderID, Reference: "cs_test_1", Amount: s.total - 1, Succeeded: true,
		})
		require.NoError(t, err)
		assert.Equal(t, shared.PaymentOutcomeCancelled, outcome)
		assert.Equal(t, order.StatusCancelled, s.f.order(s.orderID).Status())
		assert.Empty(t, s.f.store.Tickets(s.orderID))
		_, pending := s.f.store.Counters(s.tt)
		assert.Zero(t, pending)
		assert.Contains(t, s.f.store.JobKinds(), commands.EventOrderRefundRequired)
	})

	t.Run("foreign reference is rejected and refunded", func(t *testing.T) {
		s := newSetup(t)
		outcome, err := s.uc.HandlePaymentResult(context.Background(), commands.PaymentResult{
			Provider: "stripe", EventID: "evt_1", OrderID: s.orderID, Reference: "cs_other", Amount: s.total, Succeeded: true,
		})
		require.NoError(t, err)
		assert.Equal(t, shared.PaymentOutcomeRejected, outcome)
		assert.Equal(t, order.StatusPending, s.f.order(s.orderID).Status())
		assert.Contains(t, s.f.store.JobKinds(), commands.EventOrderRefundRequired)
	})

	t.Run("success with a released hold cancels instead of minting", func(t *testing.T) {
		s := newSetup(t)
		rs := s.f.store.Reservations(s.orderID)
		require.NotEmpty(t, rs)
		err := s.f.store.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
			_, err := s.f.ledger.Release(ctx, tx, rs[0])
			return err
		})
		require.NoError(t, err)

		outcome, err := s.uc.HandlePaymentResult(context.Background(), commands.PaymentResult{
			Provider: "stripe", EventID: "evt_1", OrderID: s.orderID, Reference: "cs_test_1", Amount: s.total, Succeeded: true,
		})
		require.NoError(t, err)
		assert.Equal(t, shared.PaymentOutcomeCancelled, outcome)
		assert.Equal(t, order.StatusCancelled, s.f.order(s.orderID).Status())
		assert.Empty(t, s.f.store.Tickets(s.orderID))
		sold, pending := s.f.store.Counters(s.tt)
		assert.Zero(t, sold)
		assert.Zero(t, pending)
		assert.Contains(t, s.f.store.JobKinds(), commands.EventOrderRefundRequired)
	})

	t.Run("voucher applied after checkout cannot shift the amount", func(t *testing.T) {
		s := newSetup(t)
		p := s.f.promotion(promoOpts{value: 2000, requiresCode: true})
		s.f.voucher(p, "SPRING20", nil)

		err := s.f.orders.ApplyVoucher(context.Background(), s.f.order(s.orderID).BuyerID(), s.orderID, "SPRING20")
		require.ErrorIs(t, err, order.ErrPaymentInProgress)

		outcome, err := s.uc.HandlePaymentResult(context.Background(), commands.PaymentResult{
			Provider: "stripe", EventID: "evt_1", OrderID: s.orderID, Reference: "cs_test_1", Amount: s.total, Succeeded: true,
		})
		require.NoError(t, err)
		assert.Equal(t, shared.PaymentOutcomeConfirmed, outcome)
		assert.Equal(t, money.New(s.total), s.f.order(s.orderID).Total())
	})

	t.Run("failure cancels and releases", func(t *testing.T) {
		s := newSetup(t)
		outcome, err := s.uc.HandlePaymentResult(context.Background(), commands.PaymentResult{
			Provider: "stripe", EventID: "evt_1", OrderID: s.orderID, Reference: "cs_test_1", Succeeded: false,
		})
		require.NoError(t, err)
		assert.Equal(t, shared.PaymentOutcomeCancelled, outcome)
		assert.Equal(t, order.StatusCancelled, s.f.order(s.orderID).Status())
		_, pending := s.f.store.Counters(s.tt)
		assert.Zero(t, pending)
		for _, r := range s.f.store.Reservations(s.orderID) {
			assert.Equal(t, reservation.StatusReleased, r.Status())
		}
	})

	t.Run("success after cancellation asks for a refund", func(t *testing.T) {
		s := newSetup(t)
		s.f.clock.Add(s.f.policy.ReservationTTL + 1)
		_, err := s.f.orders.ExpireStaleOrders(context.Background())
		require.NoError(t, err)

		outcome, err := s.uc.HandlePaymentResult(context.Background(), commands.PaymentResult{
			Provider: "stripe", EventID: "evt_late", OrderID: s.orderID, Reference: "cs_test_1", Amount: s.total, Succeeded: true,
		})
		require.NoError(t, err)
		assert.Equal(t, shared.PaymentOutcomeIgnored, outcome)
		assert.Equal(t, order.StatusCancelled, s.f.order(s.orderID).Status())
		assert.Contains(t, s.f.store.JobKinds(), commands.EventOrderRefundRequired)
	})

	t.Run("unknown order is recorded and rejected", func(t *testing.T) {
		s := newSetup(t)
		outcome, err := s.uc.HandlePaymentResult(context.Background(), commands.PaymentResult{
			Provider: "stripe", EventID: "evt_x", OrderID: uuid.New(), Reference: "cs_x", Amount: 1, Succeeded: true,
		})
		require.NoError(t, err)
		assert.Equal(t, shared.PaymentOutcomeRejected, outcome)
		assert.Len(t, s.f.store.PaymentEvents(), 1)
	})
}

func TestHandlePaymentResult_VoucherExhaustedAtConfirm(t *testing.T) {
	f := newFixture(t)
	tt := f.ticketType(5000, int64Ptr(10))
	p := f.promotion(promoOpts{value: 1000, requiresCode: true})
	v := f.voucher(p, "SINGLE", int64Ptr(1))
	code := "SINGLE"

	first, second := uuid.New(), uuid.New()
	firstOrder := f.placeOrder(first, tt, 1, &code)
	secondOrder := f.placeOrder(second, tt, 1, &code)
	require.NotNil(t, f.order(secondOrder).Discount(), "both orders validate while the voucher is unused")

	confirmPaid(t, f, first, firstOrder)
	assert.Equal(t, int64(1), f.store.VoucherRedeemed(v.ID()))

	ref := "cs_second"
	uc := startPayment(t, f, second, secondOrder, ref)
	outcome, err := uc.HandlePaymentResult(context.Background(), commands.PaymentResult{
		Provider: "stripe", EventID: "evt_second", OrderID: secondOrder, Reference: ref,
		Amount: f.order(secondOrder).Total().Minor(), Succeeded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, shared.PaymentOutcomeCancelled, outcome)

	o := f.order(secondOrder)
	assert.Equal(t, order.StatusCancelled, o.Status())
	assert.Empty(t, f.store.Tickets(secondOrder))
	assert.Equal(t, int64(1), f.store.VoucherRedeemed(v.ID()))
	assert.Equal(t, int64(1), f.store.PromotionRedeemed(p.ID()))
	assert.Contains(t, f.store.JobKinds(), commands.EventOrderRefundRequired)

	sold, pending := f.store.Counters(tt)
	assert.Equal(t, int64(1), sold)
	assert.Zero(t, pending)
	assert.Equal(t, money.New(5000), f.order(firstOrder).Subtotal())
}
