package promotion

import (
	"errors"
	"time"

	"event-ticketing/internal/domain/money"

	"github.com/google/uuid"
)

// Validation errors, listed in the order they are checked.
var (
	ErrCodeNotFound           = errors.New("CODE_NOT_FOUND")
	ErrExpired                = errors.New("EXPIRED")
	ErrRedemptionLimitReached = errors.New("REDEMPTION_LIMIT_REACHED")
	ErrCodeExhausted          = errors.New("CODE_EXHAUSTED")
	ErrPerUserLimitReached    = errors.New("PER_USER_LIMIT_REACHED")
	ErrNotApplicable          = errors.New("NOT_APPLICABLE")
)

type ValidationInput struct {
	Promotion *Promotion
	// Voucher is nil for automatic promotions.
	Voucher *VoucherCode
	EventID uuid.UUID
	Now     time.Time
	// PriorRedemptions counts the buyer's confirmed redemptions of this promotion.
	PriorRedemptions int64
	Lines            []Line
}

type Result struct {
	Promotion *Promotion
	Voucher   *VoucherCode
	Discount  money.Money
}

// Validate checks a promotion against an order and returns the discount it grants.
func Validate(in ValidationInput) (Result, error) {
	p := in.Promotion
	if p == nil || p.eventID != in.EventID {
		return Result{}, ErrCodeNotFound
	}
	if in.Voucher != nil && in.Voucher.promotionID != p.id {
		return Result{}, ErrCodeNotFound
	}
	if p.requiresCode && in.Voucher == nil {
		return Result{}, ErrCodeNotFound
	}
	if !p.IsActiveAt(in.Now) {
		return Result{}, ErrExpired
	}
	if !p.HasCapacity() {
		return Result{}, ErrRedemptionLimitReached
	}
	if in.Voucher != nil && !in.Voucher.HasCapacity() {
		return Result{}, ErrCodeExhausted
	}
	if p.maxPerUser != nil && in.PriorRedemptions >= *p.maxPerUser {
		return Result{}, ErrPerUserLimitReached
	}

	applicable := false
	for _, l := range in.Lines {
		if l.Quantity > 0 && p.Covers(l.TicketTypeID) {
			applicable = true
			break
		}
	}
	if !applicable {
		return Result{}, ErrNotApplicable
	}

	return Result{Promotion: p, Voucher: in.Voucher, Discount: p.DiscountFor(in.Lines)}, nil
}

// BestAutomatic picks the automatic promotion granting the largest discount.
// Ties go to the earlier-created promotion.
func BestAutomatic(candidates []*Promotion, base ValidationInput, priorRedemptions func(promotionID uuid.UUID) int64) (Result, bool) {
	var best Result
	found := false
	for _, p := range candidates {
		if p == nil || p.requiresCode {
			continue
		}
		in := base
		in.Promotion = p
		in.Voucher = nil
		if priorRedemptions != nil {
			in.PriorRedemptions = priorRedemptions(p.id)
		}
		res, err := Validate(in)
		if err != nil {
			continue
		}
		if !found || res.Discount.GreaterThan(best.Discount) ||
			(res.Discount == best.Discount && p.createdAt.Before(best.Promotion.createdAt)) {
			best = res
			found = true
		}
	}
	return best, found
}
