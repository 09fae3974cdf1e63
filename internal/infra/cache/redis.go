package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"event-ticketing/internal/pkg/config"
	"event-ticketing/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const availabilityKeyPrefix = "availability:"

type keyValueStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewRedisClient returns nil when caching is disabled or the server does not answer,
// and callers run without a cache.
func NewRedisClient(cfg config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, availability cache disabled", "addr", cfg.Redis.Addr, "error", err.Error())
		_ = client.Close()
		return nil
	}
	slog.Info("redis connected", "addr", cfg.Redis.Addr)
	return client
}

// AvailabilityCache keeps short-lived availability snapshots. Every failure degrades to a miss.
type AvailabilityCache struct {
	store keyValueStore
	ttl   time.Duration
}

func NewAvailabilityCache(client *redis.Client, cfg config.Config) *AvailabilityCache {
	c := &AvailabilityCache{ttl: cfg.Redis.AvailabilityTTL}
	if client != nil {
		c.store = client
	}
	return c
}

func availabilityKey(id uuid.UUID) string {
	return availabilityKeyPrefix + id.String()
}

func (c *AvailabilityCache) Get(ctx context.Context, ticketTypeID uuid.UUID) (*queries.AvailabilityView, bool) {
	if c.store == nil {
		return nil, false
	}
	raw, err := c.store.Get(ctx, availabilityKey(ticketTypeID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("availability cache read failed", "ticket_type_id", ticketTypeID.String(), "error", err.Error())
		}
		return nil, false
	}

	var view queries.AvailabilityView
	if err := json.Unmarshal(raw, &view); err != nil {
		slog.Warn("availability cache entry unreadable", "ticket_type_id", ticketTypeID.String(), "error", err.Error())
		return nil, false
	}
	return &view, true
}

func (c *AvailabilityCache) Set(ctx context.Context, view *queries.AvailabilityView) {
	if c.store == nil || view == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, availabilityKey(view.TicketTypeID), raw, c.ttl).Err(); err != nil {
		slog.Warn("availability cache write failed", "ticket_type_id", view.TicketTypeID.String(), "error", err.Error())
	}
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, ticketTypeIDs ...uuid.UUID) {
	if c.store == nil || len(ticketTypeIDs) == 0 {
		return
	}
	keys := make([]string, len(ticketTypeIDs))
	for i, id := range ticketTypeIDs {
		keys[i] = availabilityKey(id)
	}
	if err := c.store.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("availability cache invalidation failed", "keys", len(keys), "error", err.Error())
	}
}
