package api

import (
	"errors"
	"net/http"

	"event-ticketing/internal/handler/httperr"
	"event-ticketing/internal/handler/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	errMissingBuyer          = errors.New("buyer identity missing from context")
	errIdempotencyKeyMissing = errors.New("idempotency key required")
)

func requireBuyer(c *gin.Context) (uuid.UUID, bool) {
	buyerID, ok := middleware.GetBuyerID(c)
	if !ok {
		// RequireAuth must run first
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingBuyer, httperr.CodeUnauthorized, "Unauthorized", nil)
		return uuid.Nil, false
	}
	return buyerID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "Invalid request", nil)
		return false
	}
	return true
}

func idempotencyKey(c *gin.Context) (uuid.UUID, bool) {
	keyStr := c.GetHeader("Idempotency-Key")
	if keyStr == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, errIdempotencyKeyMissing, httperr.CodeValidationFailed, "Idempotency-Key header required", nil)
		return uuid.Nil, false
	}
	key, err := uuid.Parse(keyStr)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationFailed, "Invalid Idempotency-Key format", nil)
		return uuid.Nil, false
	}
	return key, true
}
