package queries

import (
	"context"
	"time"

	"event-ticketing/internal/domain/money"
	"event-ticketing/internal/domain/pricing"
	"event-ticketing/internal/infra"
	"event-ticketing/internal/pkg/clock"
	"event-ticketing/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrTicketTypeNotFound = errs.New("TICKET_TYPE_NOT_FOUND")

type AvailabilityQueries interface {
	Get(ctx context.Context, ticketTypeID uuid.UUID) (*AvailabilityView, error)
}

type TicketTypeViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TicketTypeView, error)
}

// AvailabilityCache is best effort: a miss or failure falls through to the store.
type AvailabilityCache interface {
	Get(ctx context.Context, ticketTypeID uuid.UUID) (*AvailabilityView, bool)
	Set(ctx context.Context, view *AvailabilityView)
}

type availabilityQueriesImpl struct {
	repo     TicketTypeViewRepo
	cache    AvailabilityCache
	resolver pricing.Resolver
	clock    clock.Clock
}

func NewAvailabilityQueries(repo TicketTypeViewRepo, cache AvailabilityCache, resolver pricing.Resolver, clk clock.Clock) AvailabilityQueries {
	return &availabilityQueriesImpl{repo: repo, cache: cache, resolver: resolver, clock: clk}
}

func (q *availabilityQueriesImpl) Get(ctx context.Context, ticketTypeID uuid.UUID) (*AvailabilityView, error) {
	if view, ok := q.cache.Get(ctx, ticketTypeID); ok {
		return view, nil
	}

	tt, err := q.repo.FindByID(ctx, ticketTypeID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrTicketTypeNotFound
		}
		return nil, err
	}

	view := BuildAvailability(tt, q.resolver, q.clock.Now())
	q.cache.Set(ctx, view)
	return view, nil
}

// BuildAvailability derives remaining stock and the current price quote from a ticket type view.
func BuildAvailability(tt *TicketTypeView, resolver pricing.Resolver, at time.Time) *AvailabilityView {
	tiers := make([]*pricing.PriceTier, 0, len(tt.Tiers))
	for _, t := range tt.Tiers {
		tiers = append(tiers, pricing.ReconstructPriceTier(
			t.ID, tt.ID, pricing.Strategy(t.Strategy), money.New(t.Price), t.Priority,
			t.StartsAt, t.EndsAt, t.AllocationTotal, t.AllocationSold, t.AllocationPending, t.CreatedAt,
		))
	}
	quote := resolver.Resolve(money.New(tt.BasePrice), tiers, at)

	view := &AvailabilityView{
		TicketTypeID: tt.ID,
		EventID:      tt.EventID,
		Name:         tt.Name,
		Kind:         tt.Kind,
		Unlimited:    tt.QuantityTotal == nil,
		Price:        quote.Price.Minor(),
		QuotedAt:     at,
	}
	if quote.Tier != nil {
		id := quote.Tier.ID()
		view.PriceTierID = &id
	}
	if tt.QuantityTotal != nil {
		left := *tt.QuantityTotal - tt.QuantitySold - tt.QuantityPending
		if left < 0 {
			left = 0
		}
		view.Available = &left
		view.SoldOut = left == 0
	}
	return view
}
