//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"event-ticketing/internal/infra"
	"event-ticketing/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderViews struct {
	views   map[uuid.UUID]*queries.OrderView
	list    []*queries.OrderListItem
	tickets []*queries.TicketView

	lastLimit int32
	lastAfter uuid.UUID
}

func (s *stubOrderViews) FindByID(_ context.Context, id uuid.UUID) (*queries.OrderView, error) {
	v, ok := s.views[id]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return v, nil
}

func (s *stubOrderViews) ListByBuyerFirstPage(_ context.Context, _ uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	s.lastLimit = limit
	return s.page(0, limit), nil
}

func (s *stubOrderViews) ListByBuyerKeyset(_ context.Context, _ uuid.UUID, _ time.Time, lastID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	s.lastLimit = limit
	s.lastAfter = lastID
	for i, item := range s.list {
		if item.ID == lastID {
			return s.page(i+1, limit), nil
		}
	}
	return nil, nil
}

func (s *stubOrderViews) ListTickets(_ context.Context, _ uuid.UUID) ([]*queries.TicketView, error) {
	return s.tickets, nil
}

func (s *stubOrderViews) page(from int, limit int32) []*queries.OrderListItem {
	end := from + int(limit)
	if end > len(s.list) {
		end = len(s.list)
	}
	return s.list[from:end]
}

func TestOrderQueries_GetByID(t *testing.T) {
	buyer := uuid.New()
	orderID := uuid.New()
	repo := &stubOrderViews{views: map[uuid.UUID]*queries.OrderView{
		orderID: {ID: orderID, BuyerID: buyer, Status: "PENDING"},
	}}
	q := queries.NewOrderQueries(repo)

	t.Run("owner sees the order", func(t *testing.T) {
		v, err := q.GetByID(context.Background(), buyer, orderID)
		require.NoError(t, err)
		assert.Equal(t, orderID, v.ID)
	})

	t.Run("another buyer gets not found", func(t *testing.T) {
		_, err := q.GetByID(context.Background(), uuid.New(), orderID)
		assert.ErrorIs(t, err, queries.ErrOrderNotFound)
	})

	t.Run("missing order maps to not found", func(t *testing.T) {
		_, err := q.GetByID(context.Background(), buyer, uuid.New())
		assert.ErrorIs(t, err, queries.ErrOrderNotFound)
	})
}

func TestOrderQueries_ListByBuyer(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubOrderViews{}
	for i := 0; i < 5; i++ {
		repo.list = append(repo.list, &queries.OrderListItem{ID: uuid.New(), CreatedAt: base.Add(-time.Duration(i) * time.Minute)})
	}
	q := queries.NewOrderQueries(repo)
	buyer := uuid.New()

	first, next, err := q.ListByBuyer(context.Background(), buyer, nil, 2)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, int32(3), repo.lastLimit)
	require.NotNil(t, next)

	second, next, err := q.ListByBuyer(context.Background(), buyer, next, 2)
	require.NoError(t, err)
	assert.Equal(t, repo.list[1].ID, repo.lastAfter)
	assert.Equal(t, repo.list[2].ID, second[0].ID)
	require.NotNil(t, next)

	third, next, err := q.ListByBuyer(context.Background(), buyer, next, 2)
	require.NoError(t, err)
	assert.Len(t, third, 1)
	assert.Nil(t, next)

	_, _, err = q.ListByBuyer(context.Background(), buyer, &queries.Cursor{After: "garbage"}, 2)
	assert.ErrorIs(t, err, queries.ErrInvalidCursor)
}

func TestOrderQueries_ListTickets(t *testing.T) {
	buyer := uuid.New()
	orderID := uuid.New()
	repo := &stubOrderViews{
		views:   map[uuid.UUID]*queries.OrderView{orderID: {ID: orderID, BuyerID: buyer}},
		tickets: []*queries.TicketView{{ID: uuid.New(), OrderID: orderID, Code: "TKT-1"}},
	}
	q := queries.NewOrderQueries(repo)

	got, err := q.ListTickets(context.Background(), buyer, orderID)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = q.ListTickets(context.Background(), uuid.New(), orderID)
	assert.ErrorIs(t, err, queries.ErrOrderNotFound)
}
