package shared

import (
	"time"

	"github.com/google/uuid"
)

type OrderSnapshot struct {
	ID         uuid.UUID
	BuyerID    uuid.UUID
	EventID    uuid.UUID
	Status     string
	Total      int64
	Currency   string
	PaymentRef *string
	ExpiresAt  time.Time
}

type TicketTypeSnapshot struct {
	ID        uuid.UUID
	EventID   uuid.UUID
	Name      string
	Kind      string
	BasePrice int64
}

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
)

type IdempotencyRecord struct {
	Key           uuid.UUID
	BuyerID       uuid.UUID
	Endpoint      string
	RequestHash   string
	Status        string
	ResultOrderID *uuid.UUID
	ExpiresAt     time.Time
}

type Redemption struct {
	PromotionID   uuid.UUID
	VoucherCodeID *uuid.UUID
	OrderID       uuid.UUID
	BuyerID       uuid.UUID
	RedeemedAt    time.Time
}

const (
	PaymentOutcomeConfirmed = "CONFIRMED"
	PaymentOutcomeCancelled = "CANCELLED"
	PaymentOutcomeIgnored   = "IGNORED"
	PaymentOutcomeRejected  = "REJECTED"
)

type PaymentEventRecord struct {
	Provider   string
	EventID    string
	OrderID    *uuid.UUID
	Outcome    string
	ReceivedAt time.Time
}

const (
	NotificationStatusQueued = "queued"
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

type NewNotificationJob struct {
	Kind    string
	Topic   string
	Key     string
	Payload []byte
	RunAt   time.Time
}

type NotificationJob struct {
	ID       uuid.UUID
	Kind     string
	Topic    string
	Key      string
	Payload  []byte
	Attempts int
}
