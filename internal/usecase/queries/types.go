package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)

type OrderItemView struct {
	ID             uuid.UUID  `json:"id"`
	TicketTypeID   uuid.UUID  `json:"ticket_type_id"`
	TicketTypeName string     `json:"ticket_type_name"`
	PriceTierID    *uuid.UUID `json:"price_tier_id,omitempty"`
	Quantity       int64      `json:"quantity"`
	UnitPrice      int64      `json:"unit_price"`
	LineTotal      int64      `json:"line_total"`
}

type OrderView struct {
	ID             uuid.UUID       `json:"id"`
	BuyerID        uuid.UUID       `json:"buyer_id"`
	EventID        uuid.UUID       `json:"event_id"`
	Status         string          `json:"status"`
	Currency       string          `json:"currency"`
	Subtotal       int64           `json:"subtotal"`
	DiscountAmount int64           `json:"discount_amount"`
	ServiceFee     int64           `json:"service_fee"`
	Total          int64           `json:"total"`
	RefundedAmount int64           `json:"refunded_amount"`
	PromotionID    *uuid.UUID      `json:"promotion_id,omitempty"`
	VoucherCode    *string         `json:"voucher_code,omitempty"`
	PaymentRef     *string         `json:"-"`
	Items          []OrderItemView `json:"items"`
	ExpiresAt      time.Time       `json:"expires_at"`
	ConfirmedAt    *time.Time      `json:"confirmed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type OrderListItem struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	Status    string    `json:"status"`
	Currency  string    `json:"currency"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

type TicketView struct {
	ID           uuid.UUID `json:"id"`
	OrderID      uuid.UUID `json:"order_id"`
	TicketTypeID uuid.UUID `json:"ticket_type_id"`
	Code         string    `json:"code"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type PriceTierView struct {
	ID                uuid.UUID  `json:"id"`
	Strategy          string     `json:"strategy"`
	Price             int64      `json:"price"`
	Priority          int        `json:"priority"`
	StartsAt          *time.Time `json:"starts_at,omitempty"`
	EndsAt            *time.Time `json:"ends_at,omitempty"`
	AllocationTotal   *int64     `json:"allocation_total,omitempty"`
	AllocationSold    int64      `json:"allocation_sold"`
	AllocationPending int64      `json:"allocation_pending"`
	CreatedAt         time.Time  `json:"created_at"`
}

type TicketTypeView struct {
	ID              uuid.UUID       `json:"id"`
	EventID         uuid.UUID       `json:"event_id"`
	Name            string          `json:"name"`
	Kind            string          `json:"kind"`
	BasePrice       int64           `json:"base_price"`
	QuantityTotal   *int64          `json:"quantity_total,omitempty"`
	QuantitySold    int64           `json:"quantity_sold"`
	QuantityPending int64           `json:"quantity_pending"`
	TableID         *uuid.UUID      `json:"table_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Tiers           []PriceTierView `json:"tiers"`
}

// AvailabilityView is cached, so it carries the instant it was computed at.
type AvailabilityView struct {
	TicketTypeID uuid.UUID  `json:"ticket_type_id"`
	EventID      uuid.UUID  `json:"event_id"`
	Name         string     `json:"name"`
	Kind         string     `json:"kind"`
	Unlimited    bool       `json:"unlimited"`
	Available    *int64     `json:"available,omitempty"`
	SoldOut      bool       `json:"sold_out"`
	Price        int64      `json:"price"`
	PriceTierID  *uuid.UUID `json:"price_tier_id,omitempty"`
	QuotedAt     time.Time  `json:"quoted_at"`
}

type CartItemView struct {
	TicketTypeID   uuid.UUID `json:"ticket_type_id"`
	TicketTypeName string    `json:"ticket_type_name"`
	EventID        uuid.UUID `json:"event_id"`
	Quantity       int64     `json:"quantity"`
	UpdatedAt      time.Time `json:"updated_at"`
}
