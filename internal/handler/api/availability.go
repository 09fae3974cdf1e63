package api

import (
	"net/http"

	resdto "event-ticketing/internal/handler/dto/response"
	"event-ticketing/internal/handler/httperr"
	"event-ticketing/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	q queries.AvailabilityQueries
}

func NewAvailabilityHandler(q queries.AvailabilityQueries) *AvailabilityHandler {
	return &AvailabilityHandler{q: q}
}

// @Summary Ticket type availability
// @Description Remaining stock and the current price quote for a ticket type
// @Tags catalog
// @Produce json
// @Param id path string true "Ticket type ID"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/ticket-types/{id}/availability [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	view, err := h.q.Get(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}
