package response

import (
	"time"

	"event-ticketing/internal/usecase/queries"

	"github.com/google/uuid"
)

type AvailabilityResponse struct {
	TicketTypeID uuid.UUID  `json:"ticketTypeId"`
	EventID      uuid.UUID  `json:"eventId"`
	Name         string     `json:"name"`
	Kind         string     `json:"kind"`
	Unlimited    bool       `json:"unlimited"`
	Available    *int64     `json:"available,omitempty"`
	SoldOut      bool       `json:"soldOut"`
	Price        int64      `json:"price"`
	PriceTierID  *uuid.UUID `json:"priceTierId,omitempty"`
	QuotedAt     time.Time  `json:"quotedAt"`
}

type CartItemResponse struct {
	TicketTypeID   uuid.UUID `json:"ticketTypeId"`
	TicketTypeName string    `json:"ticketTypeName"`
	EventID        uuid.UUID `json:"eventId"`
	Quantity       int64     `json:"quantity"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func FromAvailabilityView(v *queries.AvailabilityView) *AvailabilityResponse {
	return copyAs[AvailabilityResponse](v)
}

func FromCartItemViews(views []*queries.CartItemView) []*CartItemResponse {
	return copyAll[CartItemResponse](views)
}
