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

type CartHandler struct {
	cmds commands.CartCommands
	q    queries.CartQueries
}

func NewCartHandler(cmds commands.CartCommands, q queries.CartQueries) *CartHandler {
	return &CartHandler{cmds: cmds, q: q}
}

// @Summary List cart
// @Description Cart lines of the current buyer for one event
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param eventId query string true "Event ID"
// @Success 200 {array} resdto.CartItemResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /api/cart [get]
func (h *CartHandler) List(c *gin.Context) {
	buyerID, ok := requireBuyer(c)
	if !ok {
		return
	}
	var query reqdto.ListCartQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "eventId is required", nil)
		return
	}
	eventID := uuid.MustParse(query.EventID)

	items, err := h.q.List(c.Request.Context(), buyerID, eventID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartItemViews(items))
}

// @Summary Set cart item
// @Description Add a ticket type to the cart or overwrite its quantity; zero removes it
// @Tags cart
// @Accept json
// @Security BearerAuth
// @Param request body reqdto.SetCartItemRequest true "Cart line"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/cart/items [put]
func (h *CartHandler) SetItem(c *gin.Context) {
	buyerID, ok := requireBuyer(c)
	if !ok {
		return
	}
	var req reqdto.SetCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.cmds.SetItem(c.Request.Context(), buyerID, req.ToCommand()); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Remove cart item
// @Tags cart
// @Security BearerAuth
// @Param ticketTypeId path string true "Ticket type ID"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /api/cart/items/{ticketTypeId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	buyerID, ok := requireBuyer(c)
	if !ok {
		return
	}
	ticketTypeID, ok := pathUUID(c, "ticketTypeId")
	if !ok {
		return
	}
	if err := h.cmds.RemoveItem(c.Request.Context(), buyerID, ticketTypeID); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
