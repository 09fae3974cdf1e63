package queries

import (
	"context"

	"github.com/google/uuid"
)

type CartQueries interface {
	List(ctx context.Context, buyerID, eventID uuid.UUID) ([]*CartItemView, error)
}

type CartViewRepo interface {
	ListByBuyerEvent(ctx context.Context, buyerID, eventID uuid.UUID) ([]*CartItemView, error)
}

type cartQueriesImpl struct {
	repo CartViewRepo
}

func NewCartQueries(repo CartViewRepo) CartQueries {
	return &cartQueriesImpl{repo: repo}
}

func (q *cartQueriesImpl) List(ctx context.Context, buyerID, eventID uuid.UUID) ([]*CartItemView, error) {
	items, err := q.repo.ListByBuyerEvent(ctx, buyerID, eventID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*CartItemView{}
	}
	return items, nil
}
