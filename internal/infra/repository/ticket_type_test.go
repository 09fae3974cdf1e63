//go:build unit

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"event-ticketing/internal/infra"
	"event-ticketing/internal/infra/repository"
	dbmock "event-ticketing/internal/mock/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestTicketTypeRepository_TryReservePending(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	testCases := []struct {
		name          string
		setupMock     func(*dbmock.MockDBTX)
		expectHeld    bool
		expectedError bool
		expectKind    infra.RepositoryErrorKind
	}{
		{
			name: "success: capacity guard holds",
			setupMock: func(m *dbmock.MockDBTX) {
				m.EXPECT().Exec(ctx, gomock.Any(), id, int64(2)).Return(tag("UPDATE 1"), nil)
			},
			expectHeld: true,
		},
		{
			name: "success: guard fails without writing",
			setupMock: func(m *dbmock.MockDBTX) {
				m.EXPECT().Exec(ctx, gomock.Any(), id, int64(2)).Return(tag("UPDATE 0"), nil)
			},
			expectHeld: false,
		},
		{
			name: "error: database failure",
			setupMock: func(m *dbmock.MockDBTX) {
				m.EXPECT().Exec(ctx, gomock.Any(), id, int64(2)).Return(tag(""), errors.New("connection reset"))
			},
			expectedError: true,
			expectKind:    infra.KindDBFailure,
		},
		{
			name: "error: check constraint rejects the counter",
			setupMock: func(m *dbmock.MockDBTX) {
				m.EXPECT().Exec(ctx, gomock.Any(), id, int64(2)).Return(tag(""), pgErr("23514"))
			},
			expectedError: true,
			expectKind:    infra.KindConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockDB := dbmock.NewMockDBTX(ctrl)
			tc.setupMock(mockDB)

			held, err := repository.NewTicketTypeRepository().TryReservePending(ctx, mockDB, id, 2)

			assertRepoErr(t, err, tc.expectedError, tc.expectKind)
			assert.Equal(t, tc.expectHeld, held)
		})
	}
}

func TestTicketTypeRepository_CommitAndRelease(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	testCases := []struct {
		name          string
		call          func(*repository.TicketTypeRepository, *dbmock.MockDBTX) error
		affected      string
		expectedError bool
		expectKind    infra.RepositoryErrorKind
	}{
		{
			name: "success: commit moves pending to sold",
			call: func(r *repository.TicketTypeRepository, m *dbmock.MockDBTX) error {
				return r.CommitPending(ctx, m, id, 3)
			},
			affected: "UPDATE 1",
		},
		{
			name: "error: commit larger than pending balance",
			call: func(r *repository.TicketTypeRepository, m *dbmock.MockDBTX) error {
				return r.CommitPending(ctx, m, id, 3)
			},
			affected:      "UPDATE 0",
			expectedError: true,
			expectKind:    infra.KindConflict,
		},
		{
			name: "success: release returns pending units",
			call: func(r *repository.TicketTypeRepository, m *dbmock.MockDBTX) error {
				return r.ReleasePending(ctx, m, id, 3)
			},
			affected: "UPDATE 1",
		},
		{
			name: "error: release never drives pending negative",
			call: func(r *repository.TicketTypeRepository, m *dbmock.MockDBTX) error {
				return r.ReleasePending(ctx, m, id, 3)
			},
			affected:      "UPDATE 0",
			expectedError: true,
			expectKind:    infra.KindConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockDB := dbmock.NewMockDBTX(ctrl)
			mockDB.EXPECT().Exec(ctx, gomock.Any(), id, int64(3)).Return(tag(tc.affected), nil)

			err := tc.call(repository.NewTicketTypeRepository(), mockDB)

			assertRepoErr(t, err, tc.expectedError, tc.expectKind)
		})
	}
}

func TestTicketTypeRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	eventID := uuid.New()
	createdAt := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("success: row is reconstructed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := dbmock.NewMockDBTX(ctrl)
		mockDB.EXPECT().QueryRow(ctx, gomock.Any(), id).Return(fakeRow{values: []any{
			id, eventID, "General Admission", "GENERAL", int64(5000),
			pgtype.Int8{Int64: 100, Valid: true}, int64(10), int64(5),
			pgtype.UUID{}, pgtype.Timestamptz{Time: createdAt, Valid: true},
		}})

		tt, err := repository.NewTicketTypeRepository().FindByID(ctx, mockDB, id)

		require.NoError(t, err)
		assert.Equal(t, id, tt.ID())
		assert.Equal(t, int64(5000), tt.BasePrice().Minor())
		require.NotNil(t, tt.Available())
		assert.Equal(t, int64(85), *tt.Available())
		assert.Nil(t, tt.TableID())
	})

	t.Run("error: missing row maps to not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := dbmock.NewMockDBTX(ctrl)
		mockDB.EXPECT().QueryRow(ctx, gomock.Any(), id).Return(fakeRow{err: pgx.ErrNoRows})

		_, err := repository.NewTicketTypeRepository().FindByID(ctx, mockDB, id)

		assertRepoErr(t, err, true, infra.KindNotFound)
	})

	t.Run("error: oversold row is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := dbmock.NewMockDBTX(ctrl)
		mockDB.EXPECT().QueryRow(ctx, gomock.Any(), id).Return(fakeRow{values: []any{
			id, eventID, "GA", "GENERAL", int64(5000),
			pgtype.Int8{Int64: 10, Valid: true}, int64(11), int64(0),
			pgtype.UUID{}, pgtype.Timestamptz{Time: createdAt, Valid: true},
		}})

		_, err := repository.NewTicketTypeRepository().FindByID(ctx, mockDB, id)

		assertRepoErr(t, err, true, infra.KindDBFailure)
	})
}
