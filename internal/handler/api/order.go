package api

import (
	"net/http"

	reqdto "event-ticketing/internal/handler/dto/request"
	resdto "event-ticketing/internal/handler/dto/response"
	"event-ticketing/internal/handler/httperr"
	"event-ticketing/internal/usecase/commands"
	"event-ticketing/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	cmds commands.OrderCommands
	q    queries.OrderQueries
}

func NewOrderHandler(cmds commands.OrderCommands, q queries.OrderQueries) *OrderHandler {
	return &OrderHandler{cmds: cmds, q: q}
}

// @Summary Create order
// @Description Turn the buyer's cart for an event into a PENDING order holding inventory
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.CreateOrderRequest true "Create order request"
// @Success 201 {object} resdto.OrderResponse
// @Success 200 {object} resdto.OrderResponse "Replayed request"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	buyerID, ok := requireBuyer(c)
	if !ok {
		return
	}
	key, ok := idempotencyKey(c)
	if !ok {
		return
	}
	var req reqdto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.cmds.CreateOrder(c.Request.Context(), req.ToCommand(), buyerID, key)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), buyerID, result.OrderID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
		c.Header("Idempotent-Replayed", "true")
	}
	c.Header("Location", "/api/orders/"+result.OrderID.String())
	c.JSON(status, resdto.FromOrderView(view))
}

// @Summary List own orders
// @Description Newest first, keyset paginated
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (1-100)"
// @Param after query string false "Cursor from a previous page"
// @Success 200 {object} resdto.OrderListResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /api/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	buyerID, ok := requireBuyer(c)
	if !ok {
		return
	}
	var query reqdto.ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "Invalid query", nil)
		return
	}

	var after *queries.Cursor
	if query.After != "" {
		after = &queries.Cursor{After: query.After}
	}
	items, next, err := h.q.ListByBuyer(c.Request.Context(), buyerID, after, query.Limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrderList(items, next))
}

// @Summary Get order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	buyerID, orderID, ok := h.target(c)
	if !ok {
		return
	}
	h.respondWithOrder(c, buyerID, orderID)
}

// @Summary Apply voucher
// @Description Replace any automatic promotion on a PENDING order with a voucher code
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.ApplyVoucherRequest true "Voucher code"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/orders/{id}/voucher [post]
func (h *OrderHandler) ApplyVoucher(c *gin.Context) {
	buyerID, orderID, ok := h.target(c)
	if !ok {
		return
	}
	var req reqdto.ApplyVoucherRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.cmds.ApplyVoucher(c.Request.Context(), buyerID, orderID, req.Code); err != nil {
		httperr.Abort(c, err)
		return
	}
	h.respondWithOrder(c, buyerID, orderID)
}

// @Summary Remove voucher
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/orders/{id}/voucher [delete]
func (h *OrderHandler) RemoveVoucher(c *gin.Context) {
	buyerID, orderID, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.cmds.RemoveVoucher(c.Request.Context(), buyerID, orderID); err != nil {
		httperr.Abort(c, err)
		return
	}
	h.respondWithOrder(c, buyerID, orderID)
}

// @Summary Cancel order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	buyerID, orderID, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.cmds.CancelOrder(c.Request.Context(), buyerID, orderID); err != nil {
		httperr.Abort(c, err)
		return
	}
	h.respondWithOrder(c, buyerID, orderID)
}

// @Summary Refund order
// @Description Operator only. Full refund when amount is omitted or equals the remaining total, partial otherwise
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.RefundOrderRequest false "Refund amount in minor units"
// @Success 200 {object} resdto.RefundResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /api/orders/{id}/refund [post]
func (h *OrderHandler) Refund(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req reqdto.RefundOrderRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	result, err := h.cmds.RefundOrder(c.Request.Context(), orderID, req.Amount)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRefundResult(result))
}

// @Summary List order tickets
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {array} resdto.TicketResponse
// @Failure 404 {object} httperr.Response
// @Router /api/orders/{id}/tickets [get]
func (h *OrderHandler) Tickets(c *gin.Context) {
	buyerID, orderID, ok := h.target(c)
	if !ok {
		return
	}
	tickets, err := h.q.ListTickets(c.Request.Context(), buyerID, orderID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTicketViews(tickets))
}

func (h *OrderHandler) target(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	buyerID, ok := requireBuyer(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return buyerID, orderID, true
}

func (h *OrderHandler) respondWithOrder(c *gin.Context, buyerID, orderID uuid.UUID) {
	view, err := h.q.GetByID(c.Request.Context(), buyerID, orderID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}
