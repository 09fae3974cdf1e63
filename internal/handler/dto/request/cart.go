package request

import (
	"event-ticketing/internal/usecase/commands"

	"github.com/google/uuid"
)

type SetCartItemRequest struct {
	TicketTypeID uuid.UUID `json:"ticketTypeId" binding:"required"`
	// Zero removes the line.
	Quantity *int64 `json:"quantity" binding:"required,min=0"`
}

func (r SetCartItemRequest) ToCommand() commands.SetCartItemRequest {
	return commands.SetCartItemRequest{
		TicketTypeID: r.TicketTypeID,
		Quantity:     *r.Quantity,
	}
}

type ListCartQuery struct {
	EventID string `form:"eventId" binding:"required,uuid"`
}
