//go:build unit

package ticket_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"event-ticketing/internal/domain/money"
	"event-ticketing/internal/domain/order"
	"event-ticketing/internal/domain/ticket"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedOrder(t *testing.T, quantities ...int64) *order.Order {
	t.Helper()
	now := time.Now().UTC()
	var items []order.Item
	for _, q := range quantities {
		it, err := order.NewItem(uuid.New(), nil, q, money.New(1000))
		require.NoError(t, err)
		items = append(items, it)
	}
	o, err := order.NewOrder(order.NewParams{BuyerID: uuid.New(), EventID: uuid.New(), Items: items, Now: now, TTL: time.Minute})
	require.NoError(t, err)
	_, err = o.Confirm(now)
	require.NoError(t, err)
	return o
}

func TestMint(t *testing.T) {
	o := confirmedOrder(t, 2, 3)

	tickets, err := ticket.Mint(o, ticket.NewULIDCodeGenerator(), time.Now())
	require.NoError(t, err)
	require.Len(t, tickets, 5)

	codes := map[string]struct{}{}
	for _, tk := range tickets {
		assert.Equal(t, o.ID(), tk.OrderID())
		assert.Equal(t, ticket.StatusActive, tk.Status())
		assert.True(t, strings.HasPrefix(tk.Code(), ticket.CodePrefix))
		assert.Len(t, tk.Code(), len(ticket.CodePrefix)+26)
		codes[tk.Code()] = struct{}{}
	}
	assert.Len(t, codes, 5)
}

func TestMint_RequiresConfirmedOrder(t *testing.T) {
	it, _ := order.NewItem(uuid.New(), nil, 1, money.New(1))
	o, err := order.NewOrder(order.NewParams{Items: []order.Item{it}, Now: time.Now()})
	require.NoError(t, err)

	_, err = ticket.Mint(o, ticket.NewULIDCodeGenerator(), time.Now())
	assert.ErrorIs(t, err, ticket.ErrOrderNotConfirmed)
}

func TestULIDCodeGenerator_Concurrent(t *testing.T) {
	gen := ticket.NewULIDCodeGenerator()
	var mu sync.Mutex
	seen := map[string]struct{}{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c := gen.Generate()
				mu.Lock()
				seen[c] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 1000)
}
