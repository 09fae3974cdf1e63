//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	resdto "event-ticketing/internal/handler/dto/response"
	"event-ticketing/internal/handler/httperr"
	"event-ticketing/internal/testutil/dbtest"
	"event-ticketing/internal/testutil/httptest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82/webhook"
)

type OrderE2ETestSuite struct {
	SharedSuite
}

func TestOrderE2ESuite(t *testing.T) {
	suite.Run(t, new(OrderE2ETestSuite))
}

func (s *OrderE2ETestSuite) addToCart(token string, ticketTypeID uuid.UUID, qty int64) {
	rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPut, "/api/cart/items",
		map[string]any{"ticketTypeId": ticketTypeID.String(), "quantity": qty}, token)
	s.Require().Equal(http.StatusNoContent, rec.Code, rec.Body.String())
}

func (s *OrderE2ETestSuite) createOrder(token string, eventID, key uuid.UUID) (int, resdto.OrderResponse) {
	rec := httptest.PerformRequestWithHeaders(s.T(), s.Router, http.MethodPost, "/api/orders",
		map[string]any{"eventId": eventID.String()}, token, map[string]string{"Idempotency-Key": key.String()})
	var body resdto.OrderResponse
	if rec.Code < 300 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body
}

func (s *OrderE2ETestSuite) postWebhook(eventType string, session map[string]any) resdto.PaymentCallbackResponse {
	payload, err := json.Marshal(map[string]any{
		"id":          "evt_" + uuid.NewString(),
		"object":      "event",
		"type":        eventType,
		"api_version": "2020-08-27",
		"data":        map[string]any{"object": session},
	})
	s.Require().NoError(err)
	return s.deliver(payload)
}

func (s *OrderE2ETestSuite) deliver(payload []byte) resdto.PaymentCallbackResponse {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	var raw json.RawMessage = signed.Payload
	rec := httptest.PerformRequestWithHeaders(s.T(), s.Router, http.MethodPost, "/webhooks/payments", raw, "",
		map[string]string{"Stripe-Signature": signed.Header})

	var body resdto.PaymentCallbackResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	return body
}

// ================================================================================
// Inventory ledger under contention
// ================================================================================

func (s *OrderE2ETestSuite) TestConcurrentOrdersNeverOversell() {
	s.Run("only capacity many orders succeed", func() {
		const capacity, buyers = 5, 20
		eventID := uuid.New()
		ticketTypeID := dbtest.CreateTicketType(s.T(), s.DB, eventID, "GA", 2500, dbtest.Int64Ptr(capacity))

		tokens := make([]string, buyers)
		for i := range tokens {
			tokens[i] = s.TokenFor(uuid.New())
			s.addToCart(tokens[i], ticketTypeID, 1)
		}

		statuses := make([]int, buyers)
		var wg sync.WaitGroup
		for i := range tokens {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rec := httptest.PerformRequestWithHeaders(s.T(), s.Router, http.MethodPost, "/api/orders",
					map[string]any{"eventId": eventID.String()}, tokens[i], map[string]string{"Idempotency-Key": uuid.NewString()})
				statuses[i] = rec.Code
			}(i)
		}
		wg.Wait()

		var created, conflicts int
		for _, code := range statuses {
			switch code {
			case http.StatusCreated:
				created++
			case http.StatusConflict:
				conflicts++
			}
		}
		s.Equal(capacity, created)
		s.Equal(buyers-capacity, conflicts)
		s.Equal(dbtest.Counters{Sold: 0, Pending: capacity}, dbtest.TicketTypeCounters(s.T(), s.DB, ticketTypeID))
	})

	s.Run("cancel releases held inventory", func() {
		eventID := uuid.New()
		ticketTypeID := dbtest.CreateTicketType(s.T(), s.DB, eventID, "GA", 2500, dbtest.Int64Ptr(3))
		token := s.TokenFor(uuid.New())
		s.addToCart(token, ticketTypeID, 3)

		code, order := s.createOrder(token, eventID, uuid.New())
		s.Require().Equal(http.StatusCreated, code)
		s.Equal(dbtest.Counters{Pending: 3}, dbtest.TicketTypeCounters(s.T(), s.DB, ticketTypeID))

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/orders/"+order.ID.String()+"/cancel", nil, token)
		var cancelled resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &cancelled)
		s.Equal("CANCELLED", cancelled.Status)
		s.Equal(dbtest.Counters{}, dbtest.TicketTypeCounters(s.T(), s.DB, ticketTypeID))

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/ticket-types/"+ticketTypeID.String()+"/availability", nil, "")
		var avail resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &avail)
		s.Require().NotNil(avail.Available)
		s.Equal(int64(3), *avail.Available)
	})
}

// ================================================================================
// Paid order: checkout, signed callback, refund
// ================================================================================

func (s *OrderE2ETestSuite) TestPaidOrderLifecycle() {
	s.Run("webhook confirms, duplicate is ignored, refund settles", func() {
		eventID := uuid.New()
		ticketTypeID := dbtest.CreateTicketType(s.T(), s.DB, eventID, "GA", 2500, dbtest.Int64Ptr(10))
		token := s.TokenFor(uuid.New())
		s.addToCart(token, ticketTypeID, 2)

		key := uuid.New()
		code, order := s.createOrder(token, eventID, key)
		s.Require().Equal(http.StatusCreated, code)
		s.Equal(int64(5000), order.Total)

		replayCode, replay := s.createOrder(token, eventID, key)
		s.Equal(http.StatusOK, replayCode)
		s.Equal(order.ID, replay.ID)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/orders/"+order.ID.String()+"/checkout", nil, token)
		var checkout resdto.CheckoutResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &checkout)
		s.False(checkout.Confirmed)
		s.NotEmpty(checkout.RedirectURL)

		session := map[string]any{
			"id":                  "cs_test_" + order.ID.String(),
			"object":              "checkout.session",
			"amount_total":        5000,
			"payment_status":      "paid",
			"client_reference_id": order.ID.String(),
			"metadata":            map[string]string{"order_id": order.ID.String()},
		}
		payload, err := json.Marshal(map[string]any{
			"id":          "evt_" + uuid.NewString(),
			"object":      "event",
			"type":        "checkout.session.completed",
			"api_version": "2020-08-27",
			"data":        map[string]any{"object": session},
		})
		s.Require().NoError(err)

		s.Equal("CONFIRMED", s.deliver(payload).Outcome)
		s.Equal("DUPLICATE", s.deliver(payload).Outcome)
		s.Equal(dbtest.Counters{Sold: 2}, dbtest.TicketTypeCounters(s.T(), s.DB, ticketTypeID))

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/orders/"+order.ID.String()+"/tickets", nil, token)
		var tickets []resdto.TicketResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &tickets)
		s.Len(tickets, 2)

		refundURL := "/api/orders/" + order.ID.String() + "/refund"
		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, refundURL, map[string]any{"amount": 1000}, token)
		httptest.AssertErrorCode(s.T(), rec, http.StatusForbidden, httperr.CodeForbidden)

		operator := s.OperatorToken()
		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, refundURL, map[string]any{"amount": 1000}, operator)
		var partial resdto.RefundResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &partial)
		s.Equal("PARTIALLY_REFUNDED", partial.Status)
		s.Equal(int64(1000), partial.RefundedAmount)

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, refundURL, nil, operator)
		var full resdto.RefundResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &full)
		s.Equal("REFUNDED", full.Status)
		s.Equal(full.Total, full.RefundedAmount)

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, refundURL, nil, operator)
		httptest.AssertErrorCode(s.T(), rec, http.StatusUnprocessableEntity, "INVALID_REFUND")
	})

	s.Run("failed payment cancels and releases", func() {
		eventID := uuid.New()
		ticketTypeID := dbtest.CreateTicketType(s.T(), s.DB, eventID, "GA", 2500, dbtest.Int64Ptr(10))
		token := s.TokenFor(uuid.New())
		s.addToCart(token, ticketTypeID, 1)

		code, order := s.createOrder(token, eventID, uuid.New())
		s.Require().Equal(http.StatusCreated, code)
		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/orders/"+order.ID.String()+"/checkout", nil, token)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		resp := s.postWebhook("checkout.session.expired", map[string]any{
			"id":             "cs_test_" + order.ID.String(),
			"object":         "checkout.session",
			"amount_total":   2500,
			"payment_status": "unpaid",
			"metadata":       map[string]string{"order_id": order.ID.String()},
		})

		s.Equal("CANCELLED", resp.Outcome)
		s.Equal(dbtest.Counters{}, dbtest.TicketTypeCounters(s.T(), s.DB, ticketTypeID))
	})

	s.Run("callback with a forged amount cancels the order", func() {
		eventID := uuid.New()
		ticketTypeID := dbtest.CreateTicketType(s.T(), s.DB, eventID, "GA", 2500, dbtest.Int64Ptr(10))
		token := s.TokenFor(uuid.New())
		s.addToCart(token, ticketTypeID, 1)

		code, order := s.createOrder(token, eventID, uuid.New())
		s.Require().Equal(http.StatusCreated, code)
		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/orders/"+order.ID.String()+"/checkout", nil, token)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		resp := s.postWebhook("checkout.session.completed", map[string]any{
			"id":             "cs_test_" + order.ID.String(),
			"object":         "checkout.session",
			"amount_total":   1,
			"payment_status": "paid",
			"metadata":       map[string]string{"order_id": order.ID.String()},
		})

		s.Equal("CANCELLED", resp.Outcome)
		s.Equal(dbtest.Counters{}, dbtest.TicketTypeCounters(s.T(), s.DB, ticketTypeID))
	})
}

// ================================================================================
// Vouchers
// ================================================================================

func (s *OrderE2ETestSuite) TestVoucherRedemption() {
	s.Run("free order confirms at checkout and exhausts the code", func() {
		eventID := uuid.New()
		ticketTypeID := dbtest.CreateTicketType(s.T(), s.DB, eventID, "GA", 4000, nil)
		promotionID := dbtest.CreatePromotion(s.T(), s.DB, dbtest.PromotionFixture{
			EventID:       eventID,
			DiscountType:  "PERCENT",
			DiscountValue: 10000,
			RequiresCode:  true,
		})
		dbtest.CreateVoucherCode(s.T(), s.DB, promotionID, "FREEPASS", dbtest.Int64Ptr(1))

		first := s.TokenFor(uuid.New())
		s.addToCart(first, ticketTypeID, 1)
		code, order := s.createOrder(first, eventID, uuid.New())
		s.Require().Equal(http.StatusCreated, code)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/orders/"+order.ID.String()+"/voucher", map[string]any{"code": "freepass"}, first)
		var priced resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &priced)
		s.Equal(int64(0), priced.Total)

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/orders/"+order.ID.String()+"/checkout", nil, first)
		var checkout resdto.CheckoutResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &checkout)
		s.True(checkout.Confirmed)
		s.Equal(1, dbtest.CountRows(s.T(), s.DB, "redemptions", "order_id = $1", order.ID))

		second := s.TokenFor(uuid.New())
		s.addToCart(second, ticketTypeID, 1)
		code, other := s.createOrder(second, eventID, uuid.New())
		s.Require().Equal(http.StatusCreated, code)

		rec = httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/orders/"+other.ID.String()+"/voucher", map[string]any{"code": "FREEPASS"}, second)
		httptest.AssertErrorCode(s.T(), rec, http.StatusConflict, "CODE_EXHAUSTED")
	})

	s.Run("unknown code", func() {
		eventID := uuid.New()
		ticketTypeID := dbtest.CreateTicketType(s.T(), s.DB, eventID, "GA", 4000, nil)
		token := s.TokenFor(uuid.New())
		s.addToCart(token, ticketTypeID, 1)
		code, order := s.createOrder(token, eventID, uuid.New())
		s.Require().Equal(http.StatusCreated, code)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/orders/"+order.ID.String()+"/voucher", map[string]any{"code": "NOPE1234"}, token)

		httptest.AssertErrorCode(s.T(), rec, http.StatusNotFound, "CODE_NOT_FOUND")
	})
}
