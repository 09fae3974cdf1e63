package ticket

import (
	"errors"
	"time"

	"event-ticketing/internal/domain/order"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var ErrOrderNotConfirmed = errors.New("tickets can only be minted for confirmed orders")

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCheckedIn Status = "CHECKED_IN"
	StatusCancelled Status = "CANCELLED"
)

const CodePrefix = "TKT-"

type CodeGenerator interface {
	Generate() string
}

// ULIDCodeGenerator produces TKT- prefixed ULIDs. ulid.Make is safe for concurrent use.
type ULIDCodeGenerator struct{}

func NewULIDCodeGenerator() *ULIDCodeGenerator {
	return &ULIDCodeGenerator{}
}

func (ULIDCodeGenerator) Generate() string {
	return CodePrefix + ulid.Make().String()
}

type Ticket struct {
	id           uuid.UUID
	orderID      uuid.UUID
	orderItemID  uuid.UUID
	ticketTypeID uuid.UUID
	holderID     *uuid.UUID
	code         string
	status       Status
	createdAt    time.Time
	updatedAt    time.Time
}

// Mint issues one ticket per unit of every order line.
func Mint(o *order.Order, gen CodeGenerator, now time.Time) ([]*Ticket, error) {
	if o.Status() != order.StatusConfirmed {
		return nil, ErrOrderNotConfirmed
	}
	holder := o.BuyerID()
	tickets := make([]*Ticket, 0, o.TicketCount())
	for _, it := range o.Items() {
		for i := int64(0); i < it.Quantity(); i++ {
			tickets = append(tickets, &Ticket{
				id:           uuid.New(),
				orderID:      o.ID(),
				orderItemID:  it.ID(),
				ticketTypeID: it.TicketTypeID(),
				holderID:     &holder,
				code:         gen.Generate(),
				status:       StatusActive,
				createdAt:    now,
				updatedAt:    now,
			})
		}
	}
	return tickets, nil
}

func Reconstruct(id, orderID, orderItemID, ticketTypeID uuid.UUID, holderID *uuid.UUID, code string, status Status, createdAt, updatedAt time.Time) *Ticket {
	return &Ticket{
		id:           id,
		orderID:      orderID,
		orderItemID:  orderItemID,
		ticketTypeID: ticketTypeID,
		holderID:     holderID,
		code:         code,
		status:       status,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (t *Ticket) ID() uuid.UUID           { return t.id }
func (t *Ticket) OrderID() uuid.UUID      { return t.orderID }
func (t *Ticket) OrderItemID() uuid.UUID  { return t.orderItemID }
func (t *Ticket) TicketTypeID() uuid.UUID { return t.ticketTypeID }
func (t *Ticket) HolderID() *uuid.UUID    { return t.holderID }
func (t *Ticket) Code() string            { return t.code }
func (t *Ticket) Status() Status          { return t.status }
func (t *Ticket) CreatedAt() time.Time    { return t.createdAt }
func (t *Ticket) UpdatedAt() time.Time    { return t.updatedAt }
