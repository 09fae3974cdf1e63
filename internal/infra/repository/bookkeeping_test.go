//go:build unit

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"event-ticketing/internal/domain/money"
	"event-ticketing/internal/domain/order"
	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/repository"
	dbmock "event-ticketing/internal/mock/db"
	"event-ticketing/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

func TestIdempotencyRepository_TryInsert(t *testing.T) {
	ctx := context.Background()
	rec := shared.IdempotencyRecord{
		Key:         uuid.New(),
		BuyerID:     uuid.New(),
		Endpoint:    "POST /orders",
		RequestHash: "abc",
		Status:      shared.IdempotencyStatusProcessing,
		ExpiresAt:   fixedNow.Add(24 * time.Hour),
	}

	testCases := []struct {
		name          string
		result        string
		dbErr         error
		expectFresh   bool
		expectedError bool
		expectKind    infra.RepositoryErrorKind
	}{
		{name: "success: first use of key", result: "INSERT 0 1", expectFresh: true},
		{name: "success: key already held", result: "INSERT 0 0", expectFresh: false},
		{name: "error: database failure", dbErr: errors.New("timeout"), expectedError: true, expectKind: infra.KindDBFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockDB := dbmock.NewMockDBTX(ctrl)
			mockDB.EXPECT().
				Exec(ctx, gomock.Any(), rec.Key, rec.BuyerID, rec.Endpoint, rec.RequestHash, rec.Status, gomock.Any(), gomock.Any()).
				Return(tag(tc.result), tc.dbErr)

			fresh, err := repository.NewIdempotencyRepository().TryInsert(ctx, mockDB, rec)

			assertRepoErr(t, err, tc.expectedError, tc.expectKind)
			assert.Equal(t, tc.expectFresh, fresh)
		})
	}
}

func TestIdempotencyRepository_MarkCompleted_MissingKey(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockDB := dbmock.NewMockDBTX(ctrl)
	key, buyer, orderID := uuid.New(), uuid.New(), uuid.New()
	mockDB.EXPECT().Exec(ctx, gomock.Any(), key, buyer, orderID).Return(tag("UPDATE 0"), nil)

	err := repository.NewIdempotencyRepository().MarkCompleted(ctx, mockDB, key, buyer, orderID)

	assertRepoErr(t, err, true, infra.KindNotFound)
}

func TestPaymentEventRepository_TryRecord(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	ev := shared.PaymentEventRecord{Provider: "stripe", EventID: "evt_1", OrderID: &orderID, Outcome: shared.PaymentOutcomeConfirmed, ReceivedAt: fixedNow}

	testCases := []struct {
		name        string
		result      string
		expectFresh bool
	}{
		{name: "success: new provider event", result: "INSERT 0 1", expectFresh: true},
		{name: "success: replayed provider event", result: "INSERT 0 0", expectFresh: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockDB := dbmock.NewMockDBTX(ctrl)
			mockDB.EXPECT().Exec(ctx, gomock.Any(), "stripe", "evt_1", gomock.Any(), shared.PaymentOutcomeConfirmed, gomock.Any()).
				Return(tag(tc.result), nil)

			fresh, err := repository.NewPaymentEventRepository().TryRecord(ctx, mockDB, ev)

			require.NoError(t, err)
			assert.Equal(t, tc.expectFresh, fresh)
		})
	}
}

func TestPromotionRepository_TryIncrement(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	testCases := []struct {
		name       string
		call       func(*repository.PromotionRepository, *dbmock.MockDBTX) (bool, error)
		result     string
		expectHeld bool
	}{
		{
			name: "success: promotion below cap",
			call: func(r *repository.PromotionRepository, m *dbmock.MockDBTX) (bool, error) {
				return r.TryIncrementPromotion(ctx, m, id)
			},
			result:     "UPDATE 1",
			expectHeld: true,
		},
		{
			name: "success: promotion at cap",
			call: func(r *repository.PromotionRepository, m *dbmock.MockDBTX) (bool, error) {
				return r.TryIncrementPromotion(ctx, m, id)
			},
			result: "UPDATE 0",
		},
		{
			name: "success: voucher exhausted",
			call: func(r *repository.PromotionRepository, m *dbmock.MockDBTX) (bool, error) {
				return r.TryIncrementVoucher(ctx, m, id)
			},
			result: "UPDATE 0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockDB := dbmock.NewMockDBTX(ctrl)
			mockDB.EXPECT().Exec(ctx, gomock.Any(), id).Return(tag(tc.result), nil)

			held, err := tc.call(repository.NewPromotionRepository(), mockDB)

			require.NoError(t, err)
			assert.Equal(t, tc.expectHeld, held)
		})
	}
}

func TestOrderRepository_Update_MissingOrder(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockDB := dbmock.NewMockDBTX(ctrl)

	item, err := order.NewItem(uuid.New(), nil, 2, money.New(1000))
	require.NoError(t, err)
	o, err := order.NewOrder(order.NewParams{
		BuyerID: uuid.New(), EventID: uuid.New(), Items: []order.Item{item},
		Currency: "USD", Now: fixedNow, TTL: 15 * time.Minute,
	})
	require.NoError(t, err)

	mockDB.EXPECT().Exec(ctx, gomock.Any(), anyArgs(12)...).Return(tag("UPDATE 0"), nil)

	err = repository.NewOrderRepository().Update(ctx, mockDB, o)

	assertRepoErr(t, err, true, infra.KindNotFound)
}

func TestOrderRepository_Create_DuplicateID(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockDB := dbmock.NewMockDBTX(ctrl)

	item, err := order.NewItem(uuid.New(), nil, 1, money.New(1000))
	require.NoError(t, err)
	o, err := order.NewOrder(order.NewParams{
		BuyerID: uuid.New(), EventID: uuid.New(), Items: []order.Item{item},
		Currency: "USD", Now: fixedNow, TTL: 15 * time.Minute,
	})
	require.NoError(t, err)

	mockDB.EXPECT().Exec(ctx, gomock.Any(), anyArgs(19)...).Return(tag(""), pgErr("23505"))

	err = repository.NewOrderRepository().Create(ctx, mockDB, o)

	assertRepoErr(t, err, true, infra.KindDuplicateKey)
}

func TestNotificationRepository_MarkFailed(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	testCases := []struct {
		name          string
		result        string
		expectedError bool
		expectKind    infra.RepositoryErrorKind
	}{
		{name: "success: attempt recorded", result: "UPDATE 1"},
		{name: "error: job vanished", result: "UPDATE 0", expectedError: true, expectKind: infra.KindConflict},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockDB := dbmock.NewMockDBTX(ctrl)
			mockDB.EXPECT().Exec(ctx, gomock.Any(), id, "broker down", gomock.Any(), int32(5)).Return(tag(tc.result), nil)

			err := repository.NewNotificationRepository().MarkFailed(ctx, mockDB, id, "broker down", fixedNow.Add(time.Second), 5)

			assertRepoErr(t, err, tc.expectedError, tc.expectKind)
		})
	}
}

func TestTicketRepository_CreateBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDB := dbmock.NewMockDBTX(ctrl)

	err := repository.NewTicketRepository().CreateBatch(context.Background(), mockDB, nil)

	assert.NoError(t, err)
}
