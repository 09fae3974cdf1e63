package order

import (
	"errors"

	"event-ticketing/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrInvalidItemQuantity = errors.New("item quantity must be positive")
	ErrNegativeUnitPrice   = errors.New("unit price cannot be negative")
	ErrDuplicateItem       = errors.New("ticket type appears more than once")
)

// Item is an order line with its unit price snapshot.
type Item struct {
	id           uuid.UUID
	ticketTypeID uuid.UUID
	priceTierID  *uuid.UUID
	quantity     int64
	unitPrice    money.Money
}

func NewItem(ticketTypeID uuid.UUID, priceTierID *uuid.UUID, quantity int64, unitPrice money.Money) (Item, error) {
	if quantity <= 0 {
		return Item{}, ErrInvalidItemQuantity
	}
	if unitPrice.IsNegative() {
		return Item{}, ErrNegativeUnitPrice
	}
	return Item{
		id:           uuid.New(),
		ticketTypeID: ticketTypeID,
		priceTierID:  priceTierID,
		quantity:     quantity,
		unitPrice:    unitPrice,
	}, nil
}

func ReconstructItem(id, ticketTypeID uuid.UUID, priceTierID *uuid.UUID, quantity int64, unitPrice money.Money) Item {
	return Item{id: id, ticketTypeID: ticketTypeID, priceTierID: priceTierID, quantity: quantity, unitPrice: unitPrice}
}

func (i Item) ID() uuid.UUID           { return i.id }
func (i Item) TicketTypeID() uuid.UUID { return i.ticketTypeID }
func (i Item) PriceTierID() *uuid.UUID { return i.priceTierID }
func (i Item) Quantity() int64         { return i.quantity }
func (i Item) UnitPrice() money.Money  { return i.unitPrice }
func (i Item) LineTotal() money.Money  { return i.unitPrice.Times(i.quantity) }
