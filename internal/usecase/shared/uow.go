package shared

import (
	"context"
	"time"

	"event-ticketing/internal/domain/cart"
	"event-ticketing/internal/domain/order"
	"event-ticketing/internal/domain/pricing"
	"event-ticketing/internal/domain/promotion"
	"event-ticketing/internal/domain/reservation"
	"event-ticketing/internal/domain/ticket"
	"event-ticketing/internal/domain/tickettype"
	"event-ticketing/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	TicketTypes() TicketTypeRepository
	PriceTiers() PriceTierRepository
	Reservations() ReservationRepository
	Promotions() PromotionRepository
	Orders() OrderRepository
	Tickets() TicketRepository
	Carts() CartRepository
	Idempotency() IdempotencyRepository
	PaymentEvents() PaymentEventRepository
	Notifications() NotificationRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	OrderByID(ctx context.Context, id uuid.UUID) (*OrderSnapshot, error)
	TicketTypeByID(ctx context.Context, id uuid.UUID) (*TicketTypeSnapshot, error)
	IdempotencyByKey(ctx context.Context, key, buyerID uuid.UUID) (*IdempotencyRecord, error)
}

// Counter updates below are single conditional statements. A false result means the guard
// (capacity, pending balance, redemption cap) did not hold and nothing was written.

type TicketTypeRepository interface {
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*tickettype.TicketType, error)
	TryReservePending(ctx context.Context, tx db.DBTX, id uuid.UUID, qty int64) (bool, error)
	CommitPending(ctx context.Context, tx db.DBTX, id uuid.UUID, qty int64) error
	ReleasePending(ctx context.Context, tx db.DBTX, id uuid.UUID, qty int64) error
}

type PriceTierRepository interface {
	ListByTicketType(ctx context.Context, tx db.DBTX, ticketTypeID uuid.UUID) ([]*pricing.PriceTier, error)
	TryReservePending(ctx context.Context, tx db.DBTX, id uuid.UUID, qty int64) (bool, error)
	CommitPending(ctx context.Context, tx db.DBTX, id uuid.UUID, qty int64) error
	ReleasePending(ctx context.Context, tx db.DBTX, id uuid.UUID, qty int64) error
}

type ReservationRepository interface {
	Create(ctx context.Context, tx db.DBTX, r *reservation.Reservation) error
	ListByOrder(ctx context.Context, tx db.DBTX, orderID uuid.UUID) ([]*reservation.Reservation, error)
	// Settle moves a PENDING reservation to the given final status.
	Settle(ctx context.Context, tx db.DBTX, id uuid.UUID, status reservation.Status, at time.Time) (bool, error)
	ListExpiredPending(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]*reservation.Reservation, error)
}

type PromotionRepository interface {
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*promotion.Promotion, error)
	FindVoucherByCode(ctx context.Context, tx db.DBTX, eventID uuid.UUID, code promotion.Code) (*promotion.VoucherCode, error)
	FindVoucherByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*promotion.VoucherCode, error)
	ListAutomaticByEvent(ctx context.Context, tx db.DBTX, eventID uuid.UUID) ([]*promotion.Promotion, error)
	CountConfirmedRedemptions(ctx context.Context, tx db.DBTX, promotionID, buyerID uuid.UUID) (int64, error)
	TryIncrementPromotion(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error)
	TryIncrementVoucher(ctx context.Context, tx db.DBTX, id uuid.UUID) (bool, error)
	RecordRedemption(ctx context.Context, tx db.DBTX, r Redemption) error
}

type OrderRepository interface {
	Create(ctx context.Context, tx db.DBTX, o *order.Order) error
	// FindByIDForUpdate locks the order row for the rest of the transaction.
	FindByIDForUpdate(ctx context.Context, tx db.DBTX, id uuid.UUID) (*order.Order, error)
	Update(ctx context.Context, tx db.DBTX, o *order.Order) error
	ListExpiredPending(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]uuid.UUID, error)
}

type TicketRepository interface {
	CreateBatch(ctx context.Context, tx db.DBTX, tickets []*ticket.Ticket) error
	CancelByOrder(ctx context.Context, tx db.DBTX, orderID uuid.UUID, at time.Time) (int64, error)
}

type CartRepository interface {
	Upsert(ctx context.Context, tx db.DBTX, item *cart.Item) error
	Delete(ctx context.Context, tx db.DBTX, buyerID, ticketTypeID uuid.UUID) error
	ListByBuyerEvent(ctx context.Context, tx db.DBTX, buyerID, eventID uuid.UUID) ([]*cart.Item, error)
	ClearEvent(ctx context.Context, tx db.DBTX, buyerID, eventID uuid.UUID) error
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, tx db.DBTX, rec IdempotencyRecord) (bool, error)
	MarkCompleted(ctx context.Context, tx db.DBTX, key, buyerID, orderID uuid.UUID) error
	// ClaimExpired takes over an expired key for a new request.
	ClaimExpired(ctx context.Context, tx db.DBTX, rec IdempotencyRecord, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, tx db.DBTX, now time.Time) (int64, error)
}

type PaymentEventRepository interface {
	// TryRecord returns false when the provider event was already processed.
	TryRecord(ctx context.Context, tx db.DBTX, ev PaymentEventRecord) (bool, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, job NewNotificationJob) error
	// ClaimBatch locks due jobs with SKIP LOCKED so concurrent dispatchers never share a job.
	ClaimBatch(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]NotificationJob, error)
	MarkSent(ctx context.Context, tx db.DBTX, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, tx db.DBTX, id uuid.UUID, lastError string, retryAt time.Time, maxAttempts int) error
}
