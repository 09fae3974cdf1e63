package commands

import (
	"context"
	"time"

	"event-ticketing/internal/domain/money"
	"event-ticketing/internal/domain/order"
	"event-ticketing/internal/pkg/config"
	"event-ticketing/internal/pkg/errs"

	"github.com/google/uuid"
)

// Outbound collaborators. Implementations live in infra.

type PaymentIntentRequest struct {
	OrderID        uuid.UUID
	BuyerID        uuid.UUID
	Amount         int64
	Currency       string
	Description    string
	IdempotencyKey string
}

type PaymentIntent struct {
	Reference   string
	RedirectURL string
}

// RefundRequest returns money taken under Reference. IdempotencyKey makes a retried refund safe.
type RefundRequest struct {
	OrderID        uuid.UUID
	Reference      string
	Amount         int64
	Currency       string
	IdempotencyKey string
}

type PaymentGateway interface {
	CreateIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	Refund(ctx context.Context, req RefundRequest) error
}

// PaymentResult is a verified asynchronous callback from the payment collaborator.
type PaymentResult struct {
	Provider  string
	EventID   string
	OrderID   uuid.UUID
	Reference string
	Amount    int64
	Succeeded bool
}

var (
	ErrCallbackInvalid = errs.New("PAYMENT_CALLBACK_INVALID")
	ErrCallbackIgnored = errs.New("payment callback carries no outcome")
)

// PaymentCallbackVerifier authenticates a raw provider callback. Callbacks that carry no
// payment outcome return ErrCallbackIgnored.
type PaymentCallbackVerifier interface {
	Parse(payload []byte, signature string) (*PaymentResult, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

// AvailabilityInvalidator drops cached availability after ledger changes. It never fails the caller.
type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context, ticketTypeIDs ...uuid.UUID)
}

type CheckoutPolicy struct {
	ReservationTTL       time.Duration
	Fee                  order.FeePolicy
	Currency             string
	MaxQuantityPerItem   int64
	IdempotencyKeyExpiry time.Duration
	SweepBatchSize       int
	Topic                string
	DispatchBatchSize    int
	DispatchMaxAttempts  int
}

func NewCheckoutPolicy(cfg config.Config) CheckoutPolicy {
	return CheckoutPolicy{
		ReservationTTL:       cfg.Checkout.ReservationTTL,
		Fee:                  order.FeePolicy{Bps: cfg.Checkout.ServiceFeeBps, Fixed: money.New(cfg.Checkout.ServiceFeeFixed)},
		Currency:             cfg.Checkout.Currency,
		MaxQuantityPerItem:   int64(cfg.Checkout.MaxQuantityPerItem),
		IdempotencyKeyExpiry: cfg.Checkout.IdempotencyKeyExpiry,
		SweepBatchSize:       cfg.Checkout.SweepBatchSize,
		Topic:                cfg.Kafka.Topic,
		DispatchBatchSize:    cfg.Kafka.BatchSize,
		DispatchMaxAttempts:  cfg.Kafka.MaxAttempts,
	}
}
