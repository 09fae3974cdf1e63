//go:build unit

package pgconv_test

import (
	"testing"
	"time"

	"event-ticketing/internal/pkg/errs"
	"event-ticketing/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestNullableRoundTrip(t *testing.T) {
	id := uuid.New()
	total := int64(42)
	code := "VIP"
	at := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, &id, pgconv.UUIDPtrFromPgtype(pgconv.UUIDPtrToPgtype(&id)))
	assert.Equal(t, &total, pgconv.Int64PtrFromPgtype(pgconv.Int64PtrToPgtype(&total)))
	assert.Equal(t, &code, pgconv.StringPtrFromPgtype(pgconv.StringPtrToPgtype(&code)))
	assert.Equal(t, &at, pgconv.TimePtrFromPgtype(pgconv.TimePtrToPgtype(&at)))
}

func TestNullValues(t *testing.T) {
	assert.Nil(t, pgconv.UUIDPtrFromPgtype(pgtype.UUID{}))
	assert.Nil(t, pgconv.Int64PtrFromPgtype(pgtype.Int8{}))
	assert.Nil(t, pgconv.StringPtrFromPgtype(pgtype.Text{}))
	assert.Nil(t, pgconv.TimePtrFromPgtype(pgtype.Timestamptz{}))
	assert.False(t, pgconv.Int64PtrToPgtype(nil).Valid)
	assert.False(t, pgconv.UUIDPtrToPgtype(nil).Valid)
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, pgconv.IsNoRows(pgx.ErrNoRows))
	assert.True(t, pgconv.IsNoRows(errs.Wrap(pgx.ErrNoRows, "find order")))
	assert.False(t, pgconv.IsNoRows(errs.New("other")))
}
