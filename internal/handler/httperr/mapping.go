package httperr

import (
	"net/http"

	"event-ticketing/internal/domain/cart"
	"event-ticketing/internal/domain/order"
	"event-ticketing/internal/domain/promotion"
	"event-ticketing/internal/domain/reservation"
	"event-ticketing/internal/pkg/errs"
	"event-ticketing/internal/usecase/commands"
	"event-ticketing/internal/usecase/queries"
)

const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeInternal         = "INTERNAL"
)

type Mapping struct {
	Status  int
	Code    string
	Message string
}

type rule struct {
	target error
	Mapping
}

// First match wins.
var rules = []rule{
	{reservation.ErrInsufficientInventory, Mapping{http.StatusConflict, "INSUFFICIENT_INVENTORY", "Not enough tickets left"}},

	{promotion.ErrCodeNotFound, Mapping{http.StatusNotFound, "CODE_NOT_FOUND", "Voucher code not found"}},
	{promotion.ErrExpired, Mapping{http.StatusUnprocessableEntity, "EXPIRED", "Promotion is not active"}},
	{promotion.ErrRedemptionLimitReached, Mapping{http.StatusConflict, "REDEMPTION_LIMIT_REACHED", "Promotion has no redemptions left"}},
	{promotion.ErrCodeExhausted, Mapping{http.StatusConflict, "CODE_EXHAUSTED", "Voucher code has no uses left"}},
	{promotion.ErrPerUserLimitReached, Mapping{http.StatusConflict, "PER_USER_LIMIT_REACHED", "Promotion already used the maximum number of times"}},
	{promotion.ErrNotApplicable, Mapping{http.StatusUnprocessableEntity, "NOT_APPLICABLE", "Promotion does not apply to this order"}},
	{promotion.ErrInvalidCode, Mapping{http.StatusBadRequest, CodeValidationFailed, "Invalid voucher code"}},

	{commands.ErrOrderNotFound, Mapping{http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found"}},
	{queries.ErrOrderNotFound, Mapping{http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found"}},
	{commands.ErrTicketTypeNotFound, Mapping{http.StatusNotFound, "TICKET_TYPE_NOT_FOUND", "Ticket type not found"}},
	{queries.ErrTicketTypeNotFound, Mapping{http.StatusNotFound, "TICKET_TYPE_NOT_FOUND", "Ticket type not found"}},
	{order.ErrInvalidTransition, Mapping{http.StatusConflict, "INVALID_TRANSITION", "Order status does not allow this operation"}},
	{order.ErrPaymentInProgress, Mapping{http.StatusConflict, "PAYMENT_IN_PROGRESS", "Payment already started for this order"}},
	{commands.ErrOrderExpired, Mapping{http.StatusConflict, "ORDER_EXPIRED", "Order hold has expired"}},
	{commands.ErrOrderChanged, Mapping{http.StatusConflict, "ORDER_CHANGED", "Order changed, retry checkout"}},
	{order.ErrInvalidRefund, Mapping{http.StatusUnprocessableEntity, "INVALID_REFUND", "Refund amount is out of range"}},
	{commands.ErrCartEmpty, Mapping{http.StatusUnprocessableEntity, "CART_EMPTY", "Cart has no items for this event"}},
	{commands.ErrEventMismatch, Mapping{http.StatusUnprocessableEntity, "EVENT_MISMATCH", "Ticket type belongs to another event"}},
	{cart.ErrInvalidQuantity, Mapping{http.StatusBadRequest, CodeValidationFailed, "Quantity out of range"}},

	{commands.ErrIdempotencyKeyReused, Mapping{http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED", "Idempotency key was used with a different request"}},
	{commands.ErrIdempotencyInProgress, Mapping{http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "Request with this idempotency key is still being processed"}},

	{commands.ErrCallbackInvalid, Mapping{http.StatusBadRequest, "PAYMENT_CALLBACK_INVALID", "Payment callback could not be verified"}},
	{commands.ErrPaymentUnavailable, Mapping{http.StatusServiceUnavailable, "PAYMENT_UNAVAILABLE", "Payment provider unavailable"}},
	{queries.ErrInvalidCursor, Mapping{http.StatusBadRequest, "INVALID_CURSOR", "Invalid pagination cursor"}},
}

var internalMapping = Mapping{http.StatusInternalServerError, CodeInternal, "Internal server error"}

func Classify(err error) Mapping {
	for _, r := range rules {
		if errs.Is(err, r.target) {
			return r.Mapping
		}
	}
	return internalMapping
}
