package order

import (
	"errors"
	"time"

	"event-ticketing/internal/domain/money"
	"event-ticketing/internal/domain/promotion"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition  = errors.New("INVALID_TRANSITION")
	ErrEmptyOrder         = errors.New("order must contain at least one item")
	ErrNotPending         = errors.New("order is not pending")
	ErrDiscountTooLarge   = errors.New("discount exceeds subtotal")
	ErrInvalidRefund      = errors.New("refund amount must be positive and within the refundable total")
	ErrPaymentRefMismatch = errors.New("payment reference does not match order")
	ErrAmountMismatch     = errors.New("paid amount does not match order total")
	ErrPaymentInProgress  = errors.New("PAYMENT_IN_PROGRESS")
)

// AppliedDiscount records the promotion (and voucher, when code based) priced into an order.
type AppliedDiscount struct {
	PromotionID   uuid.UUID
	VoucherCodeID *uuid.UUID
	Code          *promotion.Code
}

func (d AppliedDiscount) IsVoucher() bool {
	return d.VoucherCodeID != nil
}

type Order struct {
	id             uuid.UUID
	buyerID        uuid.UUID
	eventID        uuid.UUID
	items          []Item
	status         Status
	currency       string
	subtotal       money.Money
	discountAmount money.Money
	serviceFee     money.Money
	total          money.Money
	refundedAmount money.Money
	discount       *AppliedDiscount
	feePolicy      FeePolicy
	paymentRef     *string
	expiresAt      time.Time
	confirmedAt    *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

type NewParams struct {
	ID        uuid.UUID
	BuyerID   uuid.UUID
	EventID   uuid.UUID
	Items     []Item
	Currency  string
	FeePolicy FeePolicy
	Now       time.Time
	TTL       time.Duration
}

func NewOrder(p NewParams) (*Order, error) {
	if len(p.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	seen := make(map[uuid.UUID]struct{}, len(p.Items))
	for _, it := range p.Items {
		if _, dup := seen[it.ticketTypeID]; dup {
			return nil, ErrDuplicateItem
		}
		seen[it.ticketTypeID] = struct{}{}
	}

	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	o := &Order{
		id:        id,
		buyerID:   p.BuyerID,
		eventID:   p.EventID,
		items:     append([]Item(nil), p.Items...),
		status:    StatusPending,
		currency:  p.Currency,
		feePolicy: p.FeePolicy,
		expiresAt: p.Now.Add(p.TTL),
		createdAt: p.Now,
		updatedAt: p.Now,
	}
	o.recompute()
	return o, nil
}

type ReconstructParams struct {
	ID             uuid.UUID
	BuyerID        uuid.UUID
	EventID        uuid.UUID
	Items          []Item
	Status         Status
	Currency       string
	Subtotal       money.Money
	DiscountAmount money.Money
	ServiceFee     money.Money
	Total          money.Money
	RefundedAmount money.Money
	Discount       *AppliedDiscount
	FeePolicy      FeePolicy
	PaymentRef     *string
	ExpiresAt      time.Time
	ConfirmedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func Reconstruct(p ReconstructParams) *Order {
	return &Order{
		id:             p.ID,
		buyerID:        p.BuyerID,
		eventID:        p.EventID,
		items:          p.Items,
		status:         p.Status,
		currency:       p.Currency,
		subtotal:       p.Subtotal,
		discountAmount: p.DiscountAmount,
		serviceFee:     p.ServiceFee,
		total:          p.Total,
		refundedAmount: p.RefundedAmount,
		discount:       p.Discount,
		feePolicy:      p.FeePolicy,
		paymentRef:     p.PaymentRef,
		expiresAt:      p.ExpiresAt,
		confirmedAt:    p.ConfirmedAt,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
	}
}

func (o *Order) recompute() {
	subtotal := money.Zero()
	for _, it := range o.items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	o.subtotal = subtotal
	base := subtotal.Sub(o.discountAmount).ClampZero()
	o.serviceFee = o.feePolicy.FeeFor(base)
	o.total = base.Add(o.serviceFee).ClampZero()
}

// ApplyDiscount replaces any discount already priced into the order. The total is frozen once a
// payment has been started for it.
func (o *Order) ApplyDiscount(d AppliedDiscount, amount money.Money, now time.Time) error {
	if o.status != StatusPending {
		return ErrNotPending
	}
	if o.paymentRef != nil {
		return ErrPaymentInProgress
	}
	if amount.IsNegative() || amount.GreaterThan(o.subtotal) {
		return ErrDiscountTooLarge
	}
	o.discount = &d
	o.discountAmount = amount
	o.recompute()
	o.updatedAt = now
	return nil
}

func (o *Order) ClearDiscount(now time.Time) error {
	if o.status != StatusPending {
		return ErrNotPending
	}
	if o.paymentRef != nil {
		return ErrPaymentInProgress
	}
	o.discount = nil
	o.discountAmount = money.Zero()
	o.recompute()
	o.updatedAt = now
	return nil
}

// AttachPayment stores the payment collaborator's reference for a pending order.
func (o *Order) AttachPayment(ref string, now time.Time) error {
	if o.status != StatusPending {
		return ErrNotPending
	}
	o.paymentRef = &ref
	o.updatedAt = now
	return nil
}

// VerifyPayment checks a callback against the stored reference and total.
func (o *Order) VerifyPayment(ref string, amount money.Money) error {
	if o.paymentRef == nil || *o.paymentRef != ref {
		return ErrPaymentRefMismatch
	}
	if amount != o.total {
		return ErrAmountMismatch
	}
	return nil
}

// Confirm reports false without error when the order is already confirmed.
func (o *Order) Confirm(now time.Time) (bool, error) {
	if o.status == StatusConfirmed {
		return false, nil
	}
	if !o.status.CanTransitionTo(StatusConfirmed) {
		return false, ErrInvalidTransition
	}
	o.status = StatusConfirmed
	o.confirmedAt = &now
	o.updatedAt = now
	return true, nil
}

// Cancel reports false without error when the order is already cancelled.
func (o *Order) Cancel(now time.Time) (bool, error) {
	if o.status == StatusCancelled {
		return false, nil
	}
	if !o.status.CanTransitionTo(StatusCancelled) {
		return false, ErrInvalidTransition
	}
	o.status = StatusCancelled
	o.updatedAt = now
	return true, nil
}

// Refund accumulates refunded amounts. The order becomes REFUNDED once the whole total is returned.
func (o *Order) Refund(amount money.Money, now time.Time) error {
	refundable := o.total.Sub(o.refundedAmount)
	if !amount.GreaterThan(money.Zero()) || amount.GreaterThan(refundable) {
		return ErrInvalidRefund
	}
	next := StatusPartiallyRefunded
	if amount == refundable {
		next = StatusRefunded
	}
	if !o.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	o.status = next
	o.refundedAmount = o.refundedAmount.Add(amount)
	o.updatedAt = now
	return nil
}

func (o *Order) IsExpired(now time.Time) bool {
	return o.status == StatusPending && now.After(o.expiresAt)
}

func (o *Order) IsFree() bool {
	return o.total.IsZero()
}

// PromotionLines exposes the items in the shape the promotion engine consumes.
func (o *Order) PromotionLines() []promotion.Line {
	lines := make([]promotion.Line, 0, len(o.items))
	for _, it := range o.items {
		lines = append(lines, promotion.Line{
			TicketTypeID: it.ticketTypeID,
			Quantity:     it.quantity,
			LineTotal:    it.LineTotal(),
		})
	}
	return lines
}

func (o *Order) TicketCount() int64 {
	var n int64
	for _, it := range o.items {
		n += it.quantity
	}
	return n
}

func (o *Order) ID() uuid.UUID               { return o.id }
func (o *Order) BuyerID() uuid.UUID          { return o.buyerID }
func (o *Order) EventID() uuid.UUID          { return o.eventID }
func (o *Order) Items() []Item               { return append([]Item(nil), o.items...) }
func (o *Order) Status() Status              { return o.status }
func (o *Order) Currency() string            { return o.currency }
func (o *Order) Subtotal() money.Money       { return o.subtotal }
func (o *Order) DiscountAmount() money.Money { return o.discountAmount }
func (o *Order) ServiceFee() money.Money     { return o.serviceFee }
func (o *Order) Total() money.Money          { return o.total }
func (o *Order) RefundedAmount() money.Money { return o.refundedAmount }
func (o *Order) Discount() *AppliedDiscount  { return o.discount }
func (o *Order) FeePolicy() FeePolicy        { return o.feePolicy }
func (o *Order) PaymentRef() *string         { return o.paymentRef }
func (o *Order) ExpiresAt() time.Time        { return o.expiresAt }
func (o *Order) ConfirmedAt() *time.Time     { return o.confirmedAt }
func (o *Order) CreatedAt() time.Time        { return o.createdAt }
func (o *Order) UpdatedAt() time.Time        { return o.updatedAt }
