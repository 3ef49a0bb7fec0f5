package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk/internal/domain"
	"github.com/fluxdesk/helpdesk/internal/events"
	"github.com/fluxdesk/helpdesk/internal/repository"
)

// TicketListCache memoizes ticket list queries in Redis for a short window,
// keyed by the full filter. Invalidation is a version bump: every ticket
// mutation increments a generation counter that is part of each key, so stale
// entries simply age out without scanning.
type TicketListCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

const versionKey = "tickets:list:version"

// NewTicketListCache builds the cache. A nil client disables caching.
func NewTicketListCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *TicketListCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &TicketListCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached result for the filter, or false on a miss.
func (c *TicketListCache) Get(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, bool) {
	if c == nil {
		return nil, false
	}
	key, err := c.key(ctx, filter)
	if err != nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var tickets []domain.Ticket
	if err := json.Unmarshal(raw, &tickets); err != nil {
		c.logger.Warn("corrupt ticket cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return tickets, true
}

// Put stores a query result under the current generation.
func (c *TicketListCache) Put(ctx context.Context, filter repository.TicketFilter, tickets []domain.Ticket) {
	if c == nil {
		return
	}
	key, err := c.key(ctx, filter)
	if err != nil {
		return
	}
	raw, err := json.Marshal(tickets)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("ticket cache write failed", zap.Error(err))
	}
}

// Invalidate bumps the generation so all existing entries become unreachable.
func (c *TicketListCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		c.logger.Debug("ticket cache invalidation failed", zap.Error(err))
	}
}

// RegisterInvalidation subscribes the cache to every ticket mutation event.
func (c *TicketListCache) RegisterInvalidation(dispatcher events.Dispatcher) {
	if c == nil || dispatcher == nil {
		return
	}
	handler := func(ctx context.Context, _ events.Event) error {
		c.Invalidate(ctx)
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventCommentAdded,
		events.EventTicketAssigned,
		events.EventAssignmentCleared,
		events.EventTicketStatusChanged,
		events.EventTicketFinalized,
		events.EventTicketReopened,
		events.EventTicketDeleted,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}

func (c *TicketListCache) key(ctx context.Context, filter repository.TicketFilter) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("tickets:list:v%d:%s", version, hex.EncodeToString(sum[:16])), nil
}
