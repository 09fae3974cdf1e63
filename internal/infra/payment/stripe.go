package payment

import (
	"context"
	"encoding/json"
	"strings"

	"event-ticketing/internal/pkg/config"
	"event-ticketing/internal/pkg/errs"
	"event-ticketing/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	ProviderStripe = "stripe"

	orderIDPlaceholder = "{ORDER_ID}"
	metadataOrderID    = "order_id"
	metadataBuyerID    = "buyer_id"
)

var ErrGatewayDisabled = errs.New("payment gateway is not configured")

var ErrNoPaymentIntent = errs.New("checkout session has no payment intent")

type sessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type refundAPI interface {
	New(params *stripe.RefundParams) (*stripe.Refund, error)
}

type StripeGateway struct {
	sessions   sessionAPI
	refunds    refundAPI
	successURL string
	cancelURL  string
}

// NewStripeGateway falls back to a gateway that refuses every intent when no secret key is set,
// so a local stack can still confirm free orders.
func NewStripeGateway(cfg config.Config) commands.PaymentGateway {
	key := strings.TrimSpace(cfg.Stripe.SecretKey)
	if key == "" {
		return disabledGateway{}
	}
	sc := client.New(key, nil)
	return newStripeGateway(sc.CheckoutSessions, sc.Refunds, cfg.Stripe)
}

func newStripeGateway(sessions sessionAPI, refunds refundAPI, cfg config.StripeConfig) *StripeGateway {
	return &StripeGateway{
		sessions:   sessions,
		refunds:    refunds,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req commands.PaymentIntentRequest) (*commands.PaymentIntent, error) {
	orderID := req.OrderID.String()
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(strings.ReplaceAll(g.successURL, orderIDPlaceholder, orderID)),
		CancelURL:         stripe.String(strings.ReplaceAll(g.cancelURL, orderIDPlaceholder, orderID)),
		ClientReferenceID: stripe.String(orderID),
	}
	params.Context = ctx
	params.AddMetadata(metadataOrderID, orderID)
	params.AddMetadata(metadataBuyerID, req.BuyerID.String())
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	session, err := g.sessions.New(params)
	if err != nil {
		return nil, errs.Wrapf(err, "stripe: create checkout session for order %s", orderID)
	}
	return &commands.PaymentIntent{Reference: session.ID, RedirectURL: session.URL}, nil
}

// Refund resolves the session's payment intent and refunds against it.
func (g *StripeGateway) Refund(ctx context.Context, req commands.RefundRequest) error {
	getParams := &stripe.CheckoutSessionParams{}
	getParams.Context = ctx
	session, err := g.sessions.Get(req.Reference, getParams)
	if err != nil {
		return errs.Wrapf(err, "stripe: get checkout session %s", req.Reference)
	}
	if session.PaymentIntent == nil || session.PaymentIntent.ID == "" {
		return errs.Wrapf(ErrNoPaymentIntent, "stripe: session %s", req.Reference)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(session.PaymentIntent.ID),
		Amount:        stripe.Int64(req.Amount),
	}
	params.Context = ctx
	params.AddMetadata(metadataOrderID, req.OrderID.String())
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	if _, err := g.refunds.New(params); err != nil {
		return errs.Wrapf(err, "stripe: refund order %s", req.OrderID)
	}
	return nil
}

type disabledGateway struct{}

func (disabledGateway) CreateIntent(context.Context, commands.PaymentIntentRequest) (*commands.PaymentIntent, error) {
	return nil, ErrGatewayDisabled
}

func (disabledGateway) Refund(context.Context, commands.RefundRequest) error {
	return ErrGatewayDisabled
}

// WebhookVerifier turns signed Stripe callbacks into payment results.
type WebhookVerifier struct {
	secret string
}

func NewWebhookVerifier(cfg config.Config) *WebhookVerifier {
	return &WebhookVerifier{secret: cfg.Stripe.WebhookSecret}
}

func (v *WebhookVerifier) Parse(payload []byte, signature string) (*commands.PaymentResult, error) {
	if v.secret == "" {
		return nil, errs.Mark(ErrGatewayDisabled, commands.ErrPaymentUnavailable)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "stripe: verify webhook"), commands.ErrCallbackInvalid)
	}

	var succeeded bool
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		succeeded = true
	case stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		succeeded = true
	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed, stripe.EventTypeCheckoutSessionExpired:
		succeeded = false
	default:
		return nil, commands.ErrCallbackIgnored
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "stripe: decode checkout session"), commands.ErrCallbackInvalid)
	}
	// A completed session with delayed payment methods is settled later by async_payment_succeeded.
	if event.Type == stripe.EventTypeCheckoutSessionCompleted &&
		session.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
		return nil, commands.ErrCallbackIgnored
	}

	rawOrderID := session.Metadata[metadataOrderID]
	if rawOrderID == "" {
		rawOrderID = session.ClientReferenceID
	}
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		return nil, errs.Mark(errs.Wrapf(err, "stripe: order reference %q", rawOrderID), commands.ErrCallbackInvalid)
	}

	return &commands.PaymentResult{
		Provider:  ProviderStripe,
		EventID:   event.ID,
		OrderID:   orderID,
		Reference: session.ID,
		Amount:    session.AmountTotal,
		Succeeded: succeeded,
	}, nil
}
