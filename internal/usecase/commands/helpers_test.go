//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"event-ticketing/internal/domain/cart"
	"event-ticketing/internal/domain/money"
	"event-ticketing/internal/domain/order"
	"event-ticketing/internal/domain/pricing"
	"event-ticketing/internal/domain/promotion"
	"event-ticketing/internal/domain/ticket"
	"event-ticketing/internal/domain/tickettype"
	commandsmock "event-ticketing/internal/mock/commands"
	"event-ticketing/internal/pkg/clock"
	"event-ticketing/internal/usecase/commands"
	"event-ticketing/internal/usecase/shared/sharedtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testNow = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

func int64Ptr(v int64) *int64 { return &v }

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (r *recordingInvalidator) Invalidate(_ context.Context, ids ...uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, ids...)
}

func (r *recordingInvalidator) Seen() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.ids...)
}

type fixture struct {
	t           *testing.T
	store       *sharedtest.Store
	clock       *clock.MockClock
	policy      commands.CheckoutPolicy
	ledger      *commands.InventoryLedger
	invalidator *recordingInvalidator
	gateway     *commandsmock.MockPaymentGateway
	orders      commands.OrderCommands
	carts       commands.CartCommands
	eventID     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		store: sharedtest.NewStore(),
		clock: clock.NewMockClock(testNow),
		policy: commands.CheckoutPolicy{
			ReservationTTL:       15 * time.Minute,
			Fee:                  order.FeePolicy{Bps: 1000, Fixed: money.New(100)},
			Currency:             "USD",
			MaxQuantityPerItem:   10,
			IdempotencyKeyExpiry: 24 * time.Hour,
			SweepBatchSize:       50,
			Topic:                "ticketing.orders",
			DispatchBatchSize:    10,
			DispatchMaxAttempts:  3,
		},
		invalidator: &recordingInvalidator{},
		gateway:     commandsmock.NewMockPaymentGateway(gomock.NewController(t)),
		eventID:     uuid.New(),
	}
	f.ledger = commands.NewInventoryLedger(pricing.NewDefaultResolver(), f.clock, f.policy)
	f.orders = commands.NewOrderUseCase(f.store, f.ledger, ticket.NewULIDCodeGenerator(), f.gateway, f.invalidator, f.clock, f.policy)
	f.carts = commands.NewCartUseCase(f.store, f.clock, f.policy)
	return f
}

func (f *fixture) checkout(gateway commands.PaymentGateway) commands.CheckoutCommands {
	return commands.NewCheckoutUseCase(f.store, f.ledger, ticket.NewULIDCodeGenerator(), gateway, f.invalidator, f.clock, f.policy)
}

// ticketType seeds a GENERAL ticket type. A nil total means unlimited.
func (f *fixture) ticketType(price int64, total *int64) uuid.UUID {
	f.t.Helper()
	tt, err := tickettype.NewTicketType(tickettype.NewParams{
		EventID:       f.eventID,
		Name:          "General Admission",
		Kind:          tickettype.KindGeneral,
		BasePrice:     money.New(price),
		QuantityTotal: total,
		CreatedAt:     testNow.Add(-24 * time.Hour),
	})
	require.NoError(f.t, err)
	f.store.AddTicketType(tt)
	return tt.ID()
}

func (f *fixture) allocationTier(ticketTypeID uuid.UUID, price int64, priority int, total int64) uuid.UUID {
	f.t.Helper()
	tier, err := pricing.NewAllocationTier(uuid.New(), ticketTypeID, money.New(price), priority, total, testNow.Add(-time.Hour))
	require.NoError(f.t, err)
	f.store.AddPriceTier(tier)
	return tier.ID()
}

func (f *fixture) addToCart(buyer, ticketTypeID uuid.UUID, qty int64) {
	f.t.Helper()
	item, err := cart.NewItem(buyer, f.eventID, ticketTypeID, qty, 0, f.clock.Now())
	require.NoError(f.t, err)
	f.store.AddCartItem(item)
}

type promoOpts struct {
	discountType   promotion.DiscountType
	value          int64
	requiresCode   bool
	maxRedemptions *int64
	maxPerUser     *int64
	createdAt      time.Time
}

func (f *fixture) promotion(o promoOpts) *promotion.Promotion {
	f.t.Helper()
	if o.discountType == "" {
		o.discountType = promotion.DiscountPercent
	}
	if o.createdAt.IsZero() {
		o.createdAt = testNow.Add(-48 * time.Hour)
	}
	p, err := promotion.NewPromotion(promotion.NewPromotionParams{
		EventID:        f.eventID,
		Name:           "Launch",
		DiscountType:   o.discountType,
		DiscountValue:  o.value,
		AppliesTo:      promotion.AppliesToOrder,
		RequiresCode:   o.requiresCode,
		ValidFrom:      testNow.Add(-24 * time.Hour),
		ValidUntil:     testNow.Add(24 * time.Hour),
		MaxRedemptions: o.maxRedemptions,
		MaxPerUser:     o.maxPerUser,
		CreatedAt:      o.createdAt,
	})
	require.NoError(f.t, err)
	f.store.AddPromotion(p)
	return p
}

func (f *fixture) voucher(p *promotion.Promotion, code string, max *int64) *promotion.VoucherCode {
	f.t.Helper()
	v, err := promotion.NewVoucherCode(uuid.New(), p.ID(), code, max, testNow.Add(-48*time.Hour))
	require.NoError(f.t, err)
	f.store.AddVoucher(v)
	return v
}

// placeOrder fills the buyer's cart with one line and creates an order from it.
func (f *fixture) placeOrder(buyer, ticketTypeID uuid.UUID, qty int64, voucher *string) uuid.UUID {
	f.t.Helper()
	f.addToCart(buyer, ticketTypeID, qty)
	res, err := f.orders.CreateOrder(context.Background(), commands.CreateOrderRequest{EventID: f.eventID, VoucherCode: voucher}, buyer, uuid.New())
	require.NoError(f.t, err)
	return res.OrderID
}

func (f *fixture) order(id uuid.UUID) *order.Order {
	f.t.Helper()
	o, ok := f.store.Order(id)
	require.True(f.t, ok, "order %s not stored", id)
	return o
}
