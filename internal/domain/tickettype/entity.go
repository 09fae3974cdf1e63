package tickettype

import (
	"errors"
	"strings"
	"time"

	"event-ticketing/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrInvalidKind        = errors.New("invalid ticket type kind")
	ErrEmptyName          = errors.New("ticket type name is required")
	ErrNegativePrice      = errors.New("base price cannot be negative")
	ErrInvalidTotal       = errors.New("quantity total must be positive")
	ErrTableRequired      = errors.New("table is required for table and seat ticket types")
	ErrTableNotAllowed    = errors.New("general ticket types cannot reference a table")
	ErrTableModeMismatch  = errors.New("table mode does not match ticket type kind")
	ErrSoldExceedsTotal   = errors.New("quantity sold exceeds quantity total")
	ErrNonPositiveRequest = errors.New("requested quantity must be positive")
)

type TicketType struct {
	id              uuid.UUID
	eventID         uuid.UUID
	name            string
	kind            Kind
	basePrice       money.Money
	quantityTotal   *int64
	quantitySold    int64
	quantityPending int64
	tableID         *uuid.UUID
	createdAt       time.Time
}

type NewParams struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	Name          string
	Kind          Kind
	BasePrice     money.Money
	QuantityTotal *int64
	Table         *Table
	CreatedAt     time.Time
}

func NewTicketType(p NewParams) (*TicketType, error) {
	if !p.Kind.IsValid() {
		return nil, ErrInvalidKind
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if p.BasePrice.IsNegative() {
		return nil, ErrNegativePrice
	}

	total, err := EffectiveQuantityTotal(p.Kind, p.Table, p.QuantityTotal)
	if err != nil {
		return nil, err
	}

	var tableID *uuid.UUID
	if p.Table != nil {
		id := p.Table.ID()
		tableID = &id
	}

	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &TicketType{
		id:            id,
		eventID:       p.EventID,
		name:          name,
		kind:          p.Kind,
		basePrice:     p.BasePrice,
		quantityTotal: total,
		tableID:       tableID,
		createdAt:     p.CreatedAt,
	}, nil
}

// EffectiveQuantityTotal derives the sellable total: one sale per exclusive table,
// one per seat for a shared table, and the declared total (nil = unlimited) otherwise.
func EffectiveQuantityTotal(kind Kind, table *Table, declared *int64) (*int64, error) {
	switch kind {
	case KindGeneral:
		if table != nil {
			return nil, ErrTableNotAllowed
		}
		if declared != nil && *declared <= 0 {
			return nil, ErrInvalidTotal
		}
		return declared, nil
	case KindTable:
		if table == nil {
			return nil, ErrTableRequired
		}
		if table.Mode() != TableModeExclusive {
			return nil, ErrTableModeMismatch
		}
		one := int64(1)
		return &one, nil
	case KindSeat:
		if table == nil {
			return nil, ErrTableRequired
		}
		if table.Mode() != TableModeShared {
			return nil, ErrTableModeMismatch
		}
		capacity := int64(table.Capacity())
		return &capacity, nil
	default:
		return nil, ErrInvalidKind
	}
}

func ReconstructTicketType(
	id, eventID uuid.UUID,
	name string,
	kind Kind,
	basePrice money.Money,
	quantityTotal *int64,
	quantitySold, quantityPending int64,
	tableID *uuid.UUID,
	createdAt time.Time,
) *TicketType {
	return &TicketType{
		id:              id,
		eventID:         eventID,
		name:            name,
		kind:            kind,
		basePrice:       basePrice,
		quantityTotal:   quantityTotal,
		quantitySold:    quantitySold,
		quantityPending: quantityPending,
		tableID:         tableID,
		createdAt:       createdAt,
	}
}

func (t *TicketType) ID() uuid.UUID          { return t.id }
func (t *TicketType) EventID() uuid.UUID     { return t.eventID }
func (t *TicketType) Name() string           { return t.name }
func (t *TicketType) Kind() Kind             { return t.kind }
func (t *TicketType) BasePrice() money.Money { return t.basePrice }
func (t *TicketType) QuantityTotal() *int64  { return t.quantityTotal }
func (t *TicketType) QuantitySold() int64    { return t.quantitySold }
func (t *TicketType) QuantityPending() int64 { return t.quantityPending }
func (t *TicketType) TableID() *uuid.UUID    { return t.tableID }
func (t *TicketType) CreatedAt() time.Time   { return t.createdAt }
func (t *TicketType) IsUnlimited() bool      { return t.quantityTotal == nil }

// Available returns total - sold - pending, or nil when the type is unlimited.
func (t *TicketType) Available() *int64 {
	if t.quantityTotal == nil {
		return nil
	}
	left := *t.quantityTotal - t.quantitySold - t.quantityPending
	if left < 0 {
		left = 0
	}
	return &left
}

func (t *TicketType) CanReserve(quantity int64) (bool, error) {
	if quantity <= 0 {
		return false, ErrNonPositiveRequest
	}
	if t.quantityTotal == nil {
		return true, nil
	}
	return t.quantitySold+t.quantityPending+quantity <= *t.quantityTotal, nil
}

// Validate checks the counter invariant after reconstruction from storage.
func (t *TicketType) Validate() error {
	if t.quantityTotal != nil && t.quantitySold > *t.quantityTotal {
		return ErrSoldExceedsTotal
	}
	return nil
}
