package pricing

import (
	"bytes"
	"time"

	"event-ticketing/internal/domain/money"
)

// Quote is the outcome of price resolution. Tier is nil when the base price applies.
type Quote struct {
	Price money.Money
	Tier  *PriceTier
}

func (q Quote) IsBasePrice() bool {
	return q.Tier == nil
}

type Resolver interface {
	Resolve(basePrice money.Money, tiers []*PriceTier, at time.Time) Quote
}

type DefaultResolver struct{}

func NewDefaultResolver() *DefaultResolver {
	return &DefaultResolver{}
}

// Resolve picks the eligible tier with the highest priority. Equal priorities go to the
// most recently created tier, then to the greater tier id. With no eligible tier the
// base price applies. Tiers are never mutated.
func (r *DefaultResolver) Resolve(basePrice money.Money, tiers []*PriceTier, at time.Time) Quote {
	var best *PriceTier
	for _, tier := range tiers {
		if tier == nil || !tier.IsEligible(at) {
			continue
		}
		if best == nil || outranks(tier, best) {
			best = tier
		}
	}
	if best == nil {
		return Quote{Price: basePrice}
	}
	return Quote{Price: best.Price(), Tier: best}
}

func outranks(a, b *PriceTier) bool {
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	if !a.createdAt.Equal(b.createdAt) {
		return a.createdAt.After(b.createdAt)
	}
	return bytes.Compare(a.id[:], b.id[:]) > 0
}
