package response

import (
	"time"

	"event-ticketing/internal/usecase/commands"
	"event-ticketing/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderItemResponse struct {
	ID             uuid.UUID  `json:"id"`
	TicketTypeID   uuid.UUID  `json:"ticketTypeId"`
	TicketTypeName string     `json:"ticketTypeName"`
	PriceTierID    *uuid.UUID `json:"priceTierId,omitempty"`
	Quantity       int64      `json:"quantity"`
	UnitPrice      int64      `json:"unitPrice"`
	LineTotal      int64      `json:"lineTotal"`
}

type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	EventID        uuid.UUID           `json:"eventId"`
	Status         string              `json:"status"`
	Currency       string              `json:"currency"`
	Subtotal       int64               `json:"subtotal"`
	DiscountAmount int64               `json:"discountAmount"`
	ServiceFee     int64               `json:"serviceFee"`
	Total          int64               `json:"total"`
	RefundedAmount int64               `json:"refundedAmount"`
	PromotionID    *uuid.UUID          `json:"promotionId,omitempty"`
	VoucherCode    *string             `json:"voucherCode,omitempty"`
	Items          []OrderItemResponse `json:"items"`
	ExpiresAt      time.Time           `json:"expiresAt"`
	ConfirmedAt    *time.Time          `json:"confirmedAt,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

type RefundResponse struct {
	OrderID        uuid.UUID `json:"orderId"`
	Status         string    `json:"status"`
	Total          int64     `json:"total"`
	RefundedAmount int64     `json:"refundedAmount"`
}

type OrderSummaryResponse struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"eventId"`
	Status    string    `json:"status"`
	Currency  string    `json:"currency"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

type OrderListResponse struct {
	Items      []*OrderSummaryResponse `json:"items"`
	NextCursor *string                 `json:"nextCursor,omitempty"`
}

type TicketResponse struct {
	ID           uuid.UUID `json:"id"`
	OrderID      uuid.UUID `json:"orderId"`
	TicketTypeID uuid.UUID `json:"ticketTypeId"`
	Code         string    `json:"code"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CheckoutResponse struct {
	OrderID     uuid.UUID `json:"orderId"`
	Status      string    `json:"status"`
	Confirmed   bool      `json:"confirmed"`
	RedirectURL string    `json:"redirectUrl,omitempty"`
}

type PaymentCallbackResponse struct {
	Outcome string `json:"outcome"`
}

func FromOrderView(v *queries.OrderView) *OrderResponse {
	resp := copyAs[OrderResponse](v)
	if resp.Items == nil {
		resp.Items = []OrderItemResponse{}
	}
	return resp
}

func FromOrderList(items []*queries.OrderListItem, next *queries.Cursor) *OrderListResponse {
	resp := &OrderListResponse{Items: copyAll[OrderSummaryResponse](items)}
	if next != nil && next.After != "" {
		after := next.After
		resp.NextCursor = &after
	}
	return resp
}

func FromTicketViews(views []*queries.TicketView) []*TicketResponse {
	return copyAll[TicketResponse](views)
}

func FromCheckoutResult(r *commands.CheckoutResult) *CheckoutResponse {
	return copyAs[CheckoutResponse](r)
}

func FromRefundResult(r *commands.RefundResult) *RefundResponse {
	return copyAs[RefundResponse](r)
}
