package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for cached profiles.
	profileKeyPrefix = "enrich:profile:"

	defaultCacheTTL = 24 * time.Hour
)

// Cache is a Redis-backed read-through wrapper around a Lookup. Profile data
// changes rarely, so cached hits spare the upstream one call per batch per
// domain. Cache failures degrade to a direct lookup; they never surface.
//
// Only successful lookups are cached. Failures (including not-found) pass
// through so a recovering upstream is retried on the next batch.
type Cache struct {
	next   Lookup
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL overrides the cache retention period.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets a logger for degraded cache operations.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache wraps a Lookup with a Redis read-through cache.
func NewCache(next Lookup, client *redis.Client, opts ...CacheOption) *Cache {
	c := &Cache{
		next:   next,
		client: client,
		ttl:    defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup serves from Redis when possible, falling back to the wrapped Lookup.
func (c *Cache) Lookup(ctx context.Context, domain string) (Profile, error) {
	if domain == "" {
		return c.next.Lookup(ctx, domain)
	}

	key := profileKeyPrefix + domain
	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var profile Profile
		if jsonErr := json.Unmarshal([]byte(raw), &profile); jsonErr == nil {
			return profile, nil
		}
		// Corrupt entry: drop it and fall through to the upstream.
		_ = c.client.Del(ctx, key).Err()
	case !errors.Is(err, redis.Nil):
		if c.logger != nil {
			c.logger.DebugContext(ctx, "enrichment cache read failed", "domain", domain, "error", err)
		}
	}

	profile, err := c.next.Lookup(ctx, domain)
	if err != nil {
		return Profile{}, err
	}

	if payload, jsonErr := json.Marshal(profile); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil && c.logger != nil {
			c.logger.DebugContext(ctx, "enrichment cache write failed", "domain", domain, "error", setErr)
		}
	}
	return profile, nil
}
