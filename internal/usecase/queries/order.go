package queries

import (
	"context"
	"time"

	"event-ticketing/internal/infra"
	"event-ticketing/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errs.New("ORDER_NOT_FOUND")
	ErrInvalidCursor = errs.New("invalid cursor")
)

type OrderQueries interface {
	GetByID(ctx context.Context, actor, id uuid.UUID) (*OrderView, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error)
	ListTickets(ctx context.Context, actor, orderID uuid.UUID) ([]*TicketView, error)
}

type OrderViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	ListByBuyerFirstPage(ctx context.Context, buyerID uuid.UUID, limit int32) ([]*OrderListItem, error)
	ListByBuyerKeyset(ctx context.Context, buyerID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*OrderListItem, error)
	ListTickets(ctx context.Context, orderID uuid.UUID) ([]*TicketView, error)
}

type orderQueriesImpl struct {
	repo OrderViewRepo
}

func NewOrderQueries(repo OrderViewRepo) OrderQueries {
	return &orderQueriesImpl{repo: repo}
}

// GetByID hides other buyers' orders behind ORDER_NOT_FOUND.
func (q *orderQueriesImpl) GetByID(ctx context.Context, actor, id uuid.UUID) (*OrderView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if view.BuyerID != actor {
		return nil, ErrOrderNotFound
	}
	return view, nil
}

func (q *orderQueriesImpl) ListByBuyer(ctx context.Context, buyerID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error) {
	limit = ValidateLimit(limit)
	// One extra row tells whether another page exists.
	fetch := int32(limit + 1)

	var rows []*OrderListItem
	var err error
	if after == nil || after.After == "" {
		rows, err = q.repo.ListByBuyerFirstPage(ctx, buyerID, fetch)
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(after.After)
		if derr != nil {
			return nil, nil, ErrInvalidCursor
		}
		rows, err = q.repo.ListByBuyerKeyset(ctx, buyerID, lastCreatedAt, lastID, fetch)
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		last := rows[limit-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
		rows = rows[:limit]
	}
	return rows, next, nil
}

func (q *orderQueriesImpl) ListTickets(ctx context.Context, actor, orderID uuid.UUID) ([]*TicketView, error) {
	if _, err := q.GetByID(ctx, actor, orderID); err != nil {
		return nil, err
	}
	return q.repo.ListTickets(ctx, orderID)
}
