//go:build unit

package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"event-ticketing/internal/pkg/config"
	"event-ticketing/internal/pkg/errs"
	"event-ticketing/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type stubSessions struct {
	got     *stripe.CheckoutSessionParams
	gotID   string
	session *stripe.CheckoutSession
	err     error
}

func (s *stubSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.got = params
	return s.session, s.err
}

func (s *stubSessions) Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.gotID = id
	s.got = params
	return s.session, s.err
}

type stubRefunds struct {
	got *stripe.RefundParams
	err error
}

func (s *stubRefunds) New(params *stripe.RefundParams) (*stripe.Refund, error) {
	s.got = params
	if s.err != nil {
		return nil, s.err
	}
	return &stripe.Refund{ID: "re_1", Amount: *params.Amount}, nil
}

func TestStripeGateway_CreateIntent(t *testing.T) {
	cfg := config.NewTestConfig()
	orderID := uuid.New()
	buyerID := uuid.New()
	req := commands.PaymentIntentRequest{
		OrderID:        orderID,
		BuyerID:        buyerID,
		Amount:         4250,
		Currency:       "USD",
		Description:    "Order " + orderID.String(),
		IdempotencyKey: "checkout-" + orderID.String() + "-4250",
	}

	t.Run("success: builds a single line checkout session", func(t *testing.T) {
		stub := &stubSessions{session: &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}}
		g := newStripeGateway(stub, &stubRefunds{}, cfg.Stripe)

		intent, err := g.CreateIntent(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "cs_test_1", intent.Reference)
		assert.Equal(t, "https://checkout.stripe.test/cs_test_1", intent.RedirectURL)

		p := stub.got
		require.NotNil(t, p)
		require.Len(t, p.LineItems, 1)
		assert.Equal(t, int64(4250), *p.LineItems[0].PriceData.UnitAmount)
		assert.Equal(t, "usd", *p.LineItems[0].PriceData.Currency)
		assert.Equal(t, int64(1), *p.LineItems[0].Quantity)
		assert.Equal(t, "http://localhost:3000/checkout/success?order="+orderID.String(), *p.SuccessURL)
		assert.Equal(t, orderID.String(), p.Metadata[metadataOrderID])
		assert.Equal(t, buyerID.String(), p.Metadata[metadataBuyerID])
		assert.Equal(t, req.IdempotencyKey, *p.IdempotencyKey)
	})

	t.Run("error: provider failure is wrapped", func(t *testing.T) {
		boom := errors.New("card_declined")
		g := newStripeGateway(&stubSessions{err: boom}, &stubRefunds{}, cfg.Stripe)

		_, err := g.CreateIntent(context.Background(), req)

		require.Error(t, err)
		assert.True(t, errs.Is(err, boom))
	})

	t.Run("error: no secret key yields a disabled gateway", func(t *testing.T) {
		_, err := NewStripeGateway(cfg).CreateIntent(context.Background(), req)

		assert.True(t, errs.Is(err, ErrGatewayDisabled))
	})
}

func TestStripeGateway_Refund(t *testing.T) {
	cfg := config.NewTestConfig()
	orderID := uuid.New()
	req := commands.RefundRequest{
		OrderID:        orderID,
		Reference:      "cs_test_1",
		Amount:         1200,
		Currency:       "USD",
		IdempotencyKey: "refund-" + orderID.String() + "-0-1200",
	}

	t.Run("success: refunds the session's payment intent", func(t *testing.T) {
		sessions := &stubSessions{session: &stripe.CheckoutSession{ID: "cs_test_1", PaymentIntent: &stripe.PaymentIntent{ID: "pi_1"}}}
		refunds := &stubRefunds{}
		g := newStripeGateway(sessions, refunds, cfg.Stripe)

		require.NoError(t, g.Refund(context.Background(), req))

		assert.Equal(t, "cs_test_1", sessions.gotID)
		require.NotNil(t, refunds.got)
		assert.Equal(t, "pi_1", *refunds.got.PaymentIntent)
		assert.Equal(t, int64(1200), *refunds.got.Amount)
		assert.Equal(t, req.IdempotencyKey, *refunds.got.IdempotencyKey)
		assert.Equal(t, orderID.String(), refunds.got.Metadata[metadataOrderID])
	})

	t.Run("error: session without payment intent", func(t *testing.T) {
		refunds := &stubRefunds{}
		g := newStripeGateway(&stubSessions{session: &stripe.CheckoutSession{ID: "cs_test_1"}}, refunds, cfg.Stripe)

		err := g.Refund(context.Background(), req)

		assert.True(t, errs.Is(err, ErrNoPaymentIntent))
		assert.Nil(t, refunds.got)
	})

	t.Run("error: provider refusal is wrapped", func(t *testing.T) {
		boom := errors.New("charge_already_refunded")
		sessions := &stubSessions{session: &stripe.CheckoutSession{ID: "cs_test_1", PaymentIntent: &stripe.PaymentIntent{ID: "pi_1"}}}
		g := newStripeGateway(sessions, &stubRefunds{err: boom}, cfg.Stripe)

		err := g.Refund(context.Background(), req)

		assert.True(t, errs.Is(err, boom))
	})

	t.Run("error: no secret key yields a disabled gateway", func(t *testing.T) {
		assert.True(t, errs.Is(NewStripeGateway(cfg).Refund(context.Background(), req), ErrGatewayDisabled))
	})
}

const testWebhookSecret = "whsec_test"

func signedEvent(t *testing.T, eventType string, session map[string]any) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":          "evt_" + uuid.NewString(),
		"object":      "event",
		"type":        eventType,
		"api_version": "2020-08-27",
		"data":        map[string]any{"object": session},
	})
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestWebhookVerifier_Parse(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Stripe.WebhookSecret = testWebhookSecret
	v := NewWebhookVerifier(cfg)
	orderID := uuid.New()

	session := func(paymentStatus string) map[string]any {
		return map[string]any{
			"id":             "cs_test_9",
			"object":         "checkout.session",
			"amount_total":   1500,
			"payment_status": paymentStatus,
			"metadata":       map[string]string{metadataOrderID: orderID.String()},
		}
	}

	testCases := []struct {
		name          string
		eventType     string
		paymentStatus string
		expectSuccess bool
		expectErr     error
	}{
		{name: "completed and paid", eventType: "checkout.session.completed", paymentStatus: "paid", expectSuccess: true},
		{name: "async payment succeeded", eventType: "checkout.session.async_payment_succeeded", paymentStatus: "paid", expectSuccess: true},
		{name: "async payment failed", eventType: "checkout.session.async_payment_failed", paymentStatus: "unpaid"},
		{name: "session expired", eventType: "checkout.session.expired", paymentStatus: "unpaid"},
		{name: "completed but still unpaid", eventType: "checkout.session.completed", paymentStatus: "unpaid", expectErr: commands.ErrCallbackIgnored},
		{name: "unrelated event", eventType: "customer.created", paymentStatus: "paid", expectErr: commands.ErrCallbackIgnored},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			payload, header := signedEvent(t, tc.eventType, session(tc.paymentStatus))

			res, err := v.Parse(payload, header)

			if tc.expectErr != nil {
				assert.True(t, errs.Is(err, tc.expectErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ProviderStripe, res.Provider)
			assert.Equal(t, orderID, res.OrderID)
			assert.Equal(t, "cs_test_9", res.Reference)
			assert.Equal(t, int64(1500), res.Amount)
			assert.Equal(t, tc.expectSuccess, res.Succeeded)
			assert.NotEmpty(t, res.EventID)
		})
	}

	t.Run("error: no webhook secret configured", func(t *testing.T) {
		payload, header := signedEvent(t, "checkout.session.completed", session("paid"))

		_, err := NewWebhookVerifier(config.NewTestConfig()).Parse(payload, header)

		assert.True(t, errs.Is(err, commands.ErrPaymentUnavailable))
	})

	t.Run("error: tampered signature", func(t *testing.T) {
		payload, _ := signedEvent(t, "checkout.session.completed", session("paid"))

		_, err := v.Parse(payload, "t=1,v1=deadbeef")

		assert.True(t, errs.Is(err, commands.ErrCallbackInvalid))
	})

	t.Run("error: missing order reference", func(t *testing.T) {
		s := session("paid")
		delete(s, "metadata")
		payload, header := signedEvent(t, "checkout.session.completed", s)

		_, err := v.Parse(payload, header)

		assert.True(t, errs.Is(err, commands.ErrCallbackInvalid))
	})
}
