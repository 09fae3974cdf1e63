package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"event-ticketing/internal/handler/httperr"
	"event-ticketing/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TokenValidator resolves a bearer token to the buyer it was issued for and that caller's role.
type TokenValidator interface {
	ValidateToken(token string) (uuid.UUID, jwt.Role, error)
}

type AuthMiddleware struct {
	tokenValidator TokenValidator
}

const (
	ctxBuyerIDKey = "buyer_id"
	ctxRoleKey    = "role"
	ctxClaimsKey  = "jwt_claims"
)

var roleHierarchy = map[jwt.Role]int{
	jwt.RoleBuyer:    1,
	jwt.RoleOperator: 2,
}

func NewAuthMiddleware(tokenValidator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "Access token required")
			return
		}

		buyerID, role, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(ctxBuyerIDKey, buyerID)
		c.Set(ctxRoleKey, role)
		c.Set(ctxClaimsKey, map[string]any{
			"buyer_id": buyerID.String(),
			"role":     string(role),
		})
		c.Next()
	}
}

func hasMinimumRole(role, minRole jwt.Role) bool {
	level, ok := roleHierarchy[role]
	minLevel, minOk := roleHierarchy[minRole]
	return ok && minOk && level >= minLevel
}

// RequireRoleAtLeast must run after RequireAuth.
func (m *AuthMiddleware) RequireRoleAtLeast(minRole jwt.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			slog.Error("role check without authenticated caller", "path", c.FullPath())
			resp := httperr.Response{Status: http.StatusInternalServerError}
			resp.Error.Code = httperr.CodeInternal
			resp.Error.Message = "Internal server error"
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			return
		}
		if !hasMinimumRole(role, minRole) {
			resp := httperr.Response{Status: http.StatusForbidden}
			resp.Error.Code = httperr.CodeForbidden
			resp.Error.Message = "Insufficient permissions"
			c.AbortWithStatusJSON(http.StatusForbidden, resp)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	resp := httperr.Response{Status: http.StatusUnauthorized}
	resp.Error.Code = httperr.CodeUnauthorized
	resp.Error.Message = msg
	c.AbortWithStatusJSON(http.StatusUnauthorized, resp)
}

func GetBuyerID(c *gin.Context) (uuid.UUID, bool) {
	buyerID, exists := c.Get(ctxBuyerIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := buyerID.(uuid.UUID)
	return id, ok
}

func GetRole(c *gin.Context) (jwt.Role, bool) {
	v, exists := c.Get(ctxRoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(jwt.Role)
	return role, ok
}

// SetBuyerID is used by handler tests that bypass token validation.
func SetBuyerID(c *gin.Context, id uuid.UUID) {
	c.Set(ctxBuyerIDKey, id)
}
