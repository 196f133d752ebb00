package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/classpulse/support-service/internal/domain"
)

// TicketSnapshot is the cached ticket detail: the ticket plus its ordered
// response thread.
type TicketSnapshot struct {
	Ticket    domain.Ticket     `json:"ticket"`
	Responses []domain.Response `json:"responses"`
}

// TicketCache is a thin get/set/invalidate wrapper over Redis for ticket
// detail reads. A nil cache is valid and disables caching entirely.
type TicketCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewTicketCache builds the cache. A nil client yields a disabled cache.
func NewTicketCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *TicketCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TicketCache{client: client, ttl: ttl, logger: logger}
}

func ticketKey(id string) string {
	return "support:ticket:" + id
}

// Get returns the cached snapshot, or nil on miss or cache failure.
func (c *TicketCache) Get(ctx context.Context, ticketID string) *TicketSnapshot {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, ticketKey(ticketID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("ticket cache get failed", zap.Error(err), zap.String("ticket_id", ticketID))
		}
		return nil
	}
	var snap TicketSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		c.logger.Warn("ticket cache entry corrupt", zap.Error(err), zap.String("ticket_id", ticketID))
		_ = c.client.Del(ctx, ticketKey(ticketID)).Err()
		return nil
	}
	return &snap
}

// Set stores the snapshot, best-effort.
func (c *TicketCache) Set(ctx context.Context, snap TicketSnapshot) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, ticketKey(snap.Ticket.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("ticket cache set failed", zap.Error(err), zap.String("ticket_id", snap.Ticket.ID))
	}
}

// Invalidate drops the cached snapshot after a mutation.
func (c *TicketCache) Invalidate(ctx context.Context, ticketID string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, ticketKey(ticketID)).Err(); err != nil {
		c.logger.Debug("ticket cache invalidate failed", zap.Error(err), zap.String("ticket_id", ticketID))
	}
}
