package request

import (
	"strings"

	"event-ticketing/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateOrderRequest struct {
	EventID     uuid.UUID `json:"eventId" binding:"required"`
	VoucherCode *string   `json:"voucherCode,omitempty" binding:"omitempty,max=64"`
}

func (r CreateOrderRequest) GetVoucherCode() *string {
	if r.VoucherCode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.VoucherCode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (r CreateOrderRequest) ToCommand() commands.CreateOrderRequest {
	return commands.CreateOrderRequest{
		EventID:     r.EventID,
		VoucherCode: r.GetVoucherCode(),
	}
}

type ApplyVoucherRequest struct {
	Code string `json:"code" binding:"required,max=64"`
}

// RefundOrderRequest refunds the full remaining total when Amount is omitted.
type RefundOrderRequest struct {
	Amount *int64 `json:"amount,omitempty" binding:"omitempty,min=1"`
}

type ListOrdersQuery struct {
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
	After string `form:"after"`
}
