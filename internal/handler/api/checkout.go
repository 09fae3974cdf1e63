package api

import (
	"io"
	"log/slog"
	"net/http"

	resdto "event-ticketing/internal/handler/dto/response"
	"event-ticketing/internal/handler/httperr"
	"event-ticketing/internal/pkg/errs"
	"event-ticketing/internal/usecase/commands"
	"event-ticketing/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

const maxCallbackBytes = 64 << 10

type CheckoutHandler struct {
	cmds     commands.CheckoutCommands
	verifier commands.PaymentCallbackVerifier
}

func NewCheckoutHandler(cmds commands.CheckoutCommands, verifier commands.PaymentCallbackVerifier) *CheckoutHandler {
	return &CheckoutHandler{cmds: cmds, verifier: verifier}
}

// @Summary Checkout order
// @Description Confirms a free order immediately; otherwise opens a payment and returns its redirect
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.CheckoutResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /api/orders/{id}/checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	buyerID, ok := requireBuyer(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.cmds.Checkout(c.Request.Context(), buyerID, orderID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCheckoutResult(result))
}

// @Summary Payment callback
// @Description Signed asynchronous result from the payment provider
// @Tags payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Provider signature"
// @Success 200 {object} resdto.PaymentCallbackResponse
// @Failure 400 {object} httperr.Response
// @Router /webhooks/payments [post]
func (h *CheckoutHandler) PaymentCallback(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxCallbackBytes))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "Unreadable payload", nil)
		return
	}

	res, err := h.verifier.Parse(payload, c.GetHeader("Stripe-Signature"))
	if errs.Is(err, commands.ErrCallbackIgnored) {
		c.JSON(http.StatusOK, resdto.PaymentCallbackResponse{Outcome: shared.PaymentOutcomeIgnored})
		return
	}
	if err != nil {
		slog.Warn("payment callback rejected", "error", err.Error())
		httperr.Abort(c, err)
		return
	}

	outcome, err := h.cmds.HandlePaymentResult(c.Request.Context(), *res)
	if err != nil {
		// non-2xx makes the provider redeliver
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.PaymentCallbackResponse{Outcome: outcome})
}
