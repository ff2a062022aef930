// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"scholarsite/internal/metrics"
)

const (
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a public response stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache stores public JSON responses keyed by request URI. A nil
// client turns every operation into a miss or no-op, so the site keeps
// working without Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache returns a cache over client. A zero ttl uses DefaultPageTTL.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get returns the cached body for key.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if pc == nil || pc.client == nil {
		return nil, false
	}
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return val, true
}

// Set stores body under key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, body []byte) {
	if pc == nil || pc.client == nil {
		return
	}
	if err := pc.client.Set(ctx, pageKeyPrefix+key, body, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidateAll drops every cached response. Admin writes call it since a
// single document can appear in several listings.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	if pc == nil || pc.client == nil {
		return
	}
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("page cache cleared", "deleted", deleted)
	}
}
