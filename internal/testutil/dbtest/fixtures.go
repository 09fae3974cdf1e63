//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// CreateTicketType inserts a GENERAL ticket type. A nil total means unlimited.
func CreateTicketType(t *testing.T, db DBLike, eventID uuid.UUID, name string, basePrice int64, total *int64) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(),
		`INSERT INTO ticket_types (id, event_id, name, kind, base_price, quantity_total) VALUES ($1, $2, $3, 'GENERAL', $4, $5)`,
		id, eventID, name, basePrice, total)
	require.NoError(t, err)
	return id
}

func CreateAllocationTier(t *testing.T, db DBLike, ticketTypeID uuid.UUID, price int64, priority int, allocation int64) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(),
		`INSERT INTO price_tiers (id, ticket_type_id, strategy, price, priority, allocation_total) VALUES ($1, $2, 'ALLOCATION', $3, $4, $5)`,
		id, ticketTypeID, price, priority, allocation)
	require.NoError(t, err)
	return id
}

type PromotionFixture struct {
	EventID        uuid.UUID
	Name           string
	DiscountType   string // PERCENT | FIXED
	DiscountValue  int64
	AppliesTo      string // ORDER | ITEM
	RequiresCode   bool
	MaxRedemptions *int64
	MaxPerUser     *int64
}

// CreatePromotion inserts a promotion valid from an hour ago until tomorrow.
func CreatePromotion(t *testing.T, db DBLike, p PromotionFixture) uuid.UUID {
	t.Helper()

	if p.Name == "" {
		p.Name = "Test Promotion"
	}
	if p.AppliesTo == "" {
		p.AppliesTo = "ORDER"
	}
	now := time.Now().UTC()
	id := uuid.New()
	_, err := db.Exec(context.Background(), `
		INSERT INTO promotions (id, event_id, name, discount_type, discount_value, applies_to, requires_code,
		                        valid_from, valid_until, max_redemptions, max_per_user)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, p.EventID, p.Name, p.DiscountType, p.DiscountValue, p.AppliesTo, p.RequiresCode,
		now.Add(-time.Hour), now.Add(24*time.Hour), p.MaxRedemptions, p.MaxPerUser)
	require.NoError(t, err)
	return id
}

func CreateVoucherCode(t *testing.T, db DBLike, promotionID uuid.UUID, code string, maxRedemptions *int64) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(),
		`INSERT INTO voucher_codes (id, promotion_id, code, max_redemptions) VALUES ($1, $2, $3, $4)`,
		id, promotionID, strings.ToUpper(code), maxRedemptions)
	require.NoError(t, err)
	return id
}

// Counters is the ledger state of one ticket type.
type Counters struct {
	Sold    int64
	Pending int64
}

func TicketTypeCounters(t *testing.T, db DBLike, ticketTypeID uuid.UUID) Counters {
	t.Helper()

	var c Counters
	err := db.QueryRow(context.Background(),
		`SELECT quantity_sold, quantity_pending FROM ticket_types WHERE id = $1`, ticketTypeID).Scan(&c.Sold, &c.Pending)
	require.NoError(t, err)
	return c
}

func CountRows(t *testing.T, db DBLike, table, where string, args ...any) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), fmt.Sprintf("SELECT count(*) FROM %s WHERE %s", table, where), args...).Scan(&n)
	require.NoError(t, err)
	return n
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('atlas_schema_revisions')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}

func Int64Ptr(v int64) *int64 { return &v }
