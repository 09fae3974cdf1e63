package order

import "event-ticketing/internal/domain/money"

// FeePolicy charges bps of the discounted subtotal plus a fixed amount.
// Nothing is charged when the discounted subtotal is zero.
type FeePolicy struct {
	Bps   int64
	Fixed money.Money
}

func (p FeePolicy) FeeFor(base money.Money) money.Money {
	if !base.GreaterThan(money.Zero()) {
		return money.Zero()
	}
	return base.BasisPoints(p.Bps).Add(p.Fixed).ClampZero()
}
