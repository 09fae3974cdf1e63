//go:build unit

package middleware_test

import (
	"net/http"
	nethttptest "net/http/httptest"
	"testing"
	"time"

	"event-ticketing/internal/handler/middleware"
	"event-ticketing/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := jwt.NewService("test-secret", "")
	buyerID := uuid.New()

	valid, err := svc.GenerateToken(buyerID, jwt.RoleBuyer, time.Hour)
	require.NoError(t, err)
	expired, err := svc.GenerateToken(buyerID, jwt.RoleBuyer, -time.Minute)
	require.NoError(t, err)
	foreign, err := jwt.NewService("other-secret", "").GenerateToken(buyerID, jwt.RoleBuyer, time.Hour)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", middleware.NewAuthMiddleware(svc).RequireAuth(), func(c *gin.Context) {
		id, ok := middleware.GetBuyerID(c)
		require.True(t, ok)
		c.String(http.StatusOK, id.String())
	})

	testCases := []struct {
		name       string
		header     string
		expectCode int
	}{
		{name: "valid token", header: "Bearer " + valid, expectCode: http.StatusOK},
		{name: "missing header", header: "", expectCode: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + valid, expectCode: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + expired, expectCode: http.StatusUnauthorized},
		{name: "token signed with another key", header: "Bearer " + foreign, expectCode: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := nethttptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := nethttptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectCode, rec.Code)
			if tc.expectCode == http.StatusOK {
				assert.Equal(t, buyerID.String(), rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}

func TestRequireRoleAtLeast(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := jwt.NewService("test-secret", "")
	auth := middleware.NewAuthMiddleware(svc)

	buyer, err := svc.GenerateToken(uuid.New(), jwt.RoleBuyer, time.Hour)
	require.NoError(t, err)
	operator, err := svc.GenerateToken(uuid.New(), jwt.RoleOperator, time.Hour)
	require.NoError(t, err)

	router := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	router.POST("/refund", auth.RequireAuth(), auth.RequireRoleAtLeast(jwt.RoleOperator), ok)
	router.POST("/unguarded", auth.RequireRoleAtLeast(jwt.RoleOperator), ok)

	testCases := []struct {
		name       string
		path       string
		token      string
		expectCode int
		expectBody string
	}{
		{name: "operator passes", path: "/refund", token: operator, expectCode: http.StatusNoContent},
		{name: "buyer is forbidden", path: "/refund", token: buyer, expectCode: http.StatusForbidden, expectBody: "FORBIDDEN"},
		{name: "no token", path: "/refund", expectCode: http.StatusUnauthorized, expectBody: "UNAUTHORIZED"},
		{name: "role check without auth is a wiring error", path: "/unguarded", token: operator, expectCode: http.StatusInternalServerError, expectBody: "INTERNAL"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := nethttptest.NewRequest(http.MethodPost, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := nethttptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectCode, rec.Code)
			if tc.expectBody != "" {
				assert.Contains(t, rec.Body.String(), tc.expectBody)
			}
		})
	}
}
