//go:build unit

package order_test

import (
	"testing"
	"time"

	"event-ticketing/internal/domain/money"
	"event-ticketing/internal/domain/order"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

func newOrder(t *testing.T, fee order.FeePolicy, lines ...int64) *order.Order {
	t.Helper()
	items := make([]order.Item, 0, len(lines))
	for _, price := range lines {
		it, err := order.NewItem(uuid.New(), nil, 1, money.New(price))
		require.NoError(t, err)
		items = append(items, it)
	}
	o, err := order.NewOrder(order.NewParams{
		BuyerID:   uuid.New(),
		EventID:   uuid.New(),
		Items:     items,
		Currency:  "usd",
		FeePolicy: fee,
		Now:       now,
		TTL:       15 * time.Minute,
	})
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("totals with service fee", func(t *testing.T) {
		o := newOrder(t, order.FeePolicy{Bps: 500, Fixed: money.New(100)}, 4000, 6000)
		assert.Equal(t, order.StatusPending, o.Status())
		assert.Equal(t, int64(10000), o.Subtotal().Minor())
		assert.Equal(t, int64(600), o.ServiceFee().Minor())
		assert.Equal(t, int64(10600), o.Total().Minor())
		assert.Equal(t, now.Add(15*time.Minute), o.ExpiresAt())
		assert.Equal(t, int64(2), o.TicketCount())
	})

	t.Run("free order has no fee", func(t *testing.T) {
		o := newOrder(t, order.FeePolicy{Bps: 500, Fixed: money.New(100)}, 0)
		assert.True(t, o.IsFree())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := order.NewOrder(order.NewParams{Now: now})
		assert.ErrorIs(t, err, order.ErrEmptyOrder)
	})

	t.Run("duplicate ticket type", func(t *testing.T) {
		id := uuid.New()
		a, _ := order.NewItem(id, nil, 1, money.New(100))
		b, _ := order.NewItem(id, nil, 2, money.New(100))
		_, err := order.NewOrder(order.NewParams{Items: []order.Item{a, b}, Now: now})
		assert.ErrorIs(t, err, order.ErrDuplicateItem)
	})
}

func TestOrder_DiscountRoundTrip(t *testing.T) {
	o := newOrder(t, order.FeePolicy{}, 10000)
	before := o.Total()

	require.NoError(t, o.ApplyDiscount(order.AppliedDiscount{PromotionID: uuid.New()}, money.New(1000), now))
	assert.Equal(t, int64(1000), o.DiscountAmount().Minor())
	assert.Equal(t, int64(9000), o.Total().Minor())

	require.NoError(t, o.ClearDiscount(now))
	assert.Equal(t, before, o.Total())
	assert.Nil(t, o.Discount())
}

func TestOrder_DiscountFrozenOncePaymentStarted(t *testing.T) {
	o := newOrder(t, order.FeePolicy{}, 10000)
	require.NoError(t, o.ApplyDiscount(order.AppliedDiscount{PromotionID: uuid.New()}, money.New(1000), now))
	require.NoError(t, o.AttachPayment("cs_1", now))
	total := o.Total()

	assert.ErrorIs(t, o.ApplyDiscount(order.AppliedDiscount{PromotionID: uuid.New()}, money.New(2000), now), order.ErrPaymentInProgress)
	assert.ErrorIs(t, o.ClearDiscount(now), order.ErrPaymentInProgress)
	assert.Equal(t, total, o.Total())
	assert.NoError(t, o.VerifyPayment("cs_1", total))
}

func TestOrder_FullDiscountMakesOrderFree(t *testing.T) {
	o := newOrder(t, order.FeePolicy{Bps: 1000, Fixed: money.New(250)}, 5000)
	require.NoError(t, o.ApplyDiscount(order.AppliedDiscount{PromotionID: uuid.New()}, money.New(5000), now))
	assert.True(t, o.IsFree())
	assert.True(t, o.ServiceFee().IsZero())

	err := o.ApplyDiscount(order.AppliedDiscount{PromotionID: uuid.New()}, money.New(5001), now)
	assert.ErrorIs(t, err, order.ErrDiscountTooLarge)
}

func TestOrder_StateMachine(t *testing.T) {
	t.Run("confirm is idempotent", func(t *testing.T) {
		o := newOrder(t, order.FeePolicy{}, 100)
		changed, err := o.Confirm(now)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = o.Confirm(now)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.NotNil(t, o.ConfirmedAt())
	})

	t.Run("cancel confirmed fails", func(t *testing.T) {
		o := newOrder(t, order.FeePolicy{}, 100)
		_, _ = o.Confirm(now)
		_, err := o.Cancel(now)
		assert.ErrorIs(t, err, order.ErrInvalidTransition)
	})

	t.Run("confirm cancelled fails", func(t *testing.T) {
		o := newOrder(t, order.FeePolicy{}, 100)
		changed, err := o.Cancel(now)
		require.NoError(t, err)
		assert.True(t, changed)
		_, err = o.Confirm(now)
		assert.ErrorIs(t, err, order.ErrInvalidTransition)
		changed, err = o.Cancel(now)
		assert.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("discount only while pending", func(t *testing.T) {
		o := newOrder(t, order.FeePolicy{}, 100)
		_, _ = o.Confirm(now)
		assert.ErrorIs(t, o.ClearDiscount(now), order.ErrNotPending)
	})

	t.Run("expiry", func(t *testing.T) {
		o := newOrder(t, order.FeePolicy{}, 100)
		assert.False(t, o.IsExpired(now.Add(15*time.Minute)))
		assert.True(t, o.IsExpired(now.Add(16*time.Minute)))
	})
}

func TestOrder_Refund(t *testing.T) {
	tests := []struct {
		name       string
		amounts    []int64
		wantStatus order.Status
		wantErr    error
	}{
		{name: "full", amounts: []int64{1000}, wantStatus: order.StatusRefunded},
		{name: "partial", amounts: []int64{400}, wantStatus: order.StatusPartiallyRefunded},
		{name: "partial then rest", amounts: []int64{400, 600}, wantStatus: order.StatusRefunded},
		{name: "over refund", amounts: []int64{1001}, wantStatus: order.StatusConfirmed, wantErr: order.ErrInvalidRefund},
		{name: "zero", amounts: []int64{0}, wantStatus: order.StatusConfirmed, wantErr: order.ErrInvalidRefund},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrder(t, order.FeePolicy{}, 1000)
			_, err := o.Confirm(now)
			require.NoError(t, err)

			var last error
			for _, a := range tt.amounts {
				last = o.Refund(money.New(a), now)
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, last, tt.wantErr)
			} else {
				assert.NoError(t, last)
			}
			assert.Equal(t, tt.wantStatus, o.Status())
		})
	}

	t.Run("pending cannot be refunded", func(t *testing.T) {
		o := newOrder(t, order.FeePolicy{}, 1000)
		assert.ErrorIs(t, o.Refund(money.New(10), now), order.ErrInvalidTransition)
	})
}

func TestOrder_VerifyPayment(t *testing.T) {
	o := newOrder(t, order.FeePolicy{}, 2500)
	assert.ErrorIs(t, o.VerifyPayment("cs_1", money.New(2500)), order.ErrPaymentRefMismatch)

	require.NoError(t, o.AttachPayment("cs_1", now))
	assert.NoError(t, o.VerifyPayment("cs_1", money.New(2500)))
	assert.ErrorIs(t, o.VerifyPayment("cs_1", money.New(2400)), order.ErrAmountMismatch)
	assert.ErrorIs(t, o.VerifyPayment("cs_2", money.New(2500)), order.ErrPaymentRefMismatch)
}
