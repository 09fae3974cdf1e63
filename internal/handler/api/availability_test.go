//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"event-ticketing/internal/handler/api"
	resdto "event-ticketing/internal/handler/dto/response"
	"event-ticketing/internal/handler/httperr"
	"event-ticketing/internal/handler/middleware"
	queriesmock "event-ticketing/internal/mock/queries"
	"event-ticketing/internal/testutil/httptest"
	"event-ticketing/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAvailabilityHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.New()
	available := int64(7)

	testCases := []struct {
		name         string
		path         string
		setupMock    func(m *queriesmock.MockAvailabilityQueries)
		expectStatus int
		expectCode   string
	}{
		{
			name: "success",
			path: "/api/ticket-types/" + id.String() + "/availability",
			setupMock: func(m *queriesmock.MockAvailabilityQueries) {
				m.EXPECT().Get(gomock.Any(), id).Return(&queries.AvailabilityView{
					TicketTypeID: id,
					Name:         "GA",
					Kind:         "GENERAL",
					Available:    &available,
					Price:        2500,
					QuotedAt:     time.Now().UTC(),
				}, nil)
			},
			expectStatus: http.StatusOK,
		},
		{
			name: "error: unknown ticket type",
			path: "/api/ticket-types/" + id.String() + "/availability",
			setupMock: func(m *queriesmock.MockAvailabilityQueries) {
				m.EXPECT().Get(gomock.Any(), id).Return(nil, queries.ErrTicketTypeNotFound)
			},
			expectStatus: http.StatusNotFound,
			expectCode:   "TICKET_TYPE_NOT_FOUND",
		},
		{
			name:         "error: malformed id",
			path:         "/api/ticket-types/xyz/availability",
			setupMock:    func(*queriesmock.MockAvailabilityQueries) {},
			expectStatus: http.StatusBadRequest,
			expectCode:   httperr.CodeValidationFailed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockQueries := queriesmock.NewMockAvailabilityQueries(ctrl)
			tc.setupMock(mockQueries)

			router := gin.New()
			router.Use(middleware.ErrorHandler())
			router.GET("/api/ticket-types/:id/availability", api.NewAvailabilityHandler(mockQueries).Get)

			rec := httptest.PerformRequest(t, router, http.MethodGet, tc.path, nil, "")

			if tc.expectCode != "" {
				httptest.AssertErrorCode(t, rec, tc.expectStatus, tc.expectCode)
				return
			}
			var body resdto.AvailabilityResponse
			httptest.AssertSuccessResponse(t, rec, tc.expectStatus, &body)
			require.NotNil(t, body.Available)
			assert.Equal(t, available, *body.Available)
			assert.Equal(t, int64(2500), body.Price)
		})
	}
}
