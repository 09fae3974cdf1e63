package pricing

import (
	"errors"
	"time"

	"event-ticketing/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrInvalidStrategy      = errors.New("invalid price tier strategy")
	ErrNegativeTierPrice    = errors.New("tier price cannot be negative")
	ErrInvalidWindow        = errors.New("time window start must not be after end")
	ErrInvalidAllocation    = errors.New("allocation total must be positive")
	ErrAllocationOversold   = errors.New("allocation sold exceeds allocation total")
	ErrMissingWindowBounds  = errors.New("time window tier requires start and end")
	ErrUnexpectedAllocation = errors.New("time window tier cannot carry an allocation")
)

type Strategy string

const (
	StrategyTimeWindow Strategy = "TIME_WINDOW"
	StrategyAllocation Strategy = "ALLOCATION"
)

func (s Strategy) IsValid() bool {
	return s == StrategyTimeWindow || s == StrategyAllocation
}

type PriceTier struct {
	id                uuid.UUID
	ticketTypeID      uuid.UUID
	strategy          Strategy
	price             money.Money
	priority          int
	startsAt          *time.Time
	endsAt            *time.Time
	allocationTotal   *int64
	allocationSold    int64
	allocationPending int64
	createdAt         time.Time
}

func NewTimeWindowTier(id, ticketTypeID uuid.UUID, price money.Money, priority int, startsAt, endsAt time.Time, createdAt time.Time) (*PriceTier, error) {
	if price.IsNegative() {
		return nil, ErrNegativeTierPrice
	}
	if startsAt.After(endsAt) {
		return nil, ErrInvalidWindow
	}
	return &PriceTier{
		id:           id,
		ticketTypeID: ticketTypeID,
		strategy:     StrategyTimeWindow,
		price:        price,
		priority:     priority,
		startsAt:     &startsAt,
		endsAt:       &endsAt,
		createdAt:    createdAt,
	}, nil
}

func NewAllocationTier(id, ticketTypeID uuid.UUID, price money.Money, priority int, allocationTotal int64, createdAt time.Time) (*PriceTier, error) {
	if price.IsNegative() {
		return nil, ErrNegativeTierPrice
	}
	if allocationTotal <= 0 {
		return nil, ErrInvalidAllocation
	}
	return &PriceTier{
		id:              id,
		ticketTypeID:    ticketTypeID,
		strategy:        StrategyAllocation,
		price:           price,
		priority:        priority,
		allocationTotal: &allocationTotal,
		createdAt:       createdAt,
	}, nil
}

func ReconstructPriceTier(
	id, ticketTypeID uuid.UUID,
	strategy Strategy,
	price money.Money,
	priority int,
	startsAt, endsAt *time.Time,
	allocationTotal *int64,
	allocationSold, allocationPending int64,
	createdAt time.Time,
) *PriceTier {
	return &PriceTier{
		id:                id,
		ticketTypeID:      ticketTypeID,
		strategy:          strategy,
		price:             price,
		priority:          priority,
		startsAt:          startsAt,
		endsAt:            endsAt,
		allocationTotal:   allocationTotal,
		allocationSold:    allocationSold,
		allocationPending: allocationPending,
		createdAt:         createdAt,
	}
}

func (t *PriceTier) ID() uuid.UUID            { return t.id }
func (t *PriceTier) TicketTypeID() uuid.UUID  { return t.ticketTypeID }
func (t *PriceTier) Strategy() Strategy       { return t.strategy }
func (t *PriceTier) Price() money.Money       { return t.price }
func (t *PriceTier) Priority() int            { return t.priority }
func (t *PriceTier) StartsAt() *time.Time     { return t.startsAt }
func (t *PriceTier) EndsAt() *time.Time       { return t.endsAt }
func (t *PriceTier) AllocationTotal() *int64  { return t.allocationTotal }
func (t *PriceTier) AllocationSold() int64    { return t.allocationSold }
func (t *PriceTier) AllocationPending() int64 { return t.allocationPending }
func (t *PriceTier) CreatedAt() time.Time     { return t.createdAt }

func (t *PriceTier) IsAllocation() bool {
	return t.strategy == StrategyAllocation
}

// IsEligible reports whether the tier applies at the given instant.
// Time windows are inclusive on both ends; an allocation is eligible while sold < total.
func (t *PriceTier) IsEligible(at time.Time) bool {
	switch t.strategy {
	case StrategyTimeWindow:
		if t.startsAt == nil || t.endsAt == nil {
			return false
		}
		return !at.Before(*t.startsAt) && !at.After(*t.endsAt)
	case StrategyAllocation:
		if t.allocationTotal == nil {
			return false
		}
		return t.allocationSold < *t.allocationTotal
	default:
		return false
	}
}

func (t *PriceTier) Validate() error {
	if !t.strategy.IsValid() {
		return ErrInvalidStrategy
	}
	if t.price.IsNegative() {
		return ErrNegativeTierPrice
	}
	switch t.strategy {
	case StrategyTimeWindow:
		if t.startsAt == nil || t.endsAt == nil {
			return ErrMissingWindowBounds
		}
		if t.startsAt.After(*t.endsAt) {
			return ErrInvalidWindow
		}
		if t.allocationTotal != nil {
			return ErrUnexpectedAllocation
		}
	case StrategyAllocation:
		if t.allocationTotal == nil || *t.allocationTotal <= 0 {
			return ErrInvalidAllocation
		}
		if t.allocationSold > *t.allocationTotal {
			return ErrAllocationOversold
		}
	}
	return nil
}
