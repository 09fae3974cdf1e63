// Package cart holds a buyer's pending selection. Cart items never touch inventory.
package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidQuantity = errors.New("cart quantity out of range")

type Item struct {
	buyerID      uuid.UUID
	eventID      uuid.UUID
	ticketTypeID uuid.UUID
	quantity     int64
	updatedAt    time.Time
}

func NewItem(buyerID, eventID, ticketTypeID uuid.UUID, quantity, maxQuantity int64, now time.Time) (*Item, error) {
	if quantity <= 0 || (maxQuantity > 0 && quantity > maxQuantity) {
		return nil, ErrInvalidQuantity
	}
	return &Item{
		buyerID:      buyerID,
		eventID:      eventID,
		ticketTypeID: ticketTypeID,
		quantity:     quantity,
		updatedAt:    now,
	}, nil
}

func ReconstructItem(buyerID, eventID, ticketTypeID uuid.UUID, quantity int64, updatedAt time.Time) *Item {
	return &Item{buyerID: buyerID, eventID: eventID, ticketTypeID: ticketTypeID, quantity: quantity, updatedAt: updatedAt}
}

func (i *Item) BuyerID() uuid.UUID      { return i.buyerID }
func (i *Item) EventID() uuid.UUID      { return i.eventID }
func (i *Item) TicketTypeID() uuid.UUID { return i.ticketTypeID }
func (i *Item) Quantity() int64         { return i.quantity }
func (i *Item) UpdatedAt() time.Time    { return i.updatedAt }
