// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// tree.go provides a Valkey-backed cache of assembled tree forests. Each tree
// instance (categories, menu) caches its JSON-encoded nested forest under one
// key; every successful mutation invalidates the key, so readers either get
// the current forest or rebuild it from the table.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// treeKeyPrefix is the Valkey key prefix for cached forests.
	treeKeyPrefix = "tree:"

	// DefaultTreeTTL bounds staleness if an invalidation is ever lost.
	DefaultTreeTTL = 5 * time.Minute
)

// TreeCache manages assembled-forest caching in Valkey. Cache errors are
// logged and treated as misses; the store always has the table to fall back on.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTreeCache creates a tree cache backed by the given Valkey client.
func NewTreeCache(client *redis.Client, ttl time.Duration) *TreeCache {
	if ttl == 0 {
		ttl = DefaultTreeTTL
	}
	return &TreeCache{client: client, ttl: ttl}
}

// Get retrieves the cached forest for a tree key. Returns false on miss.
func (tc *TreeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := tc.client.Get(ctx, treeKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("tree cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("tree cache hit", "key", key)
	return val, true
}

// Set stores an encoded forest for a tree key with the configured TTL.
func (tc *TreeCache) Set(ctx context.Context, key string, data []byte) {
	if err := tc.client.Set(ctx, treeKeyPrefix+key, data, tc.ttl).Err(); err != nil {
		slog.Warn("tree cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a tree's cached forest after a mutation.
func (tc *TreeCache) Invalidate(ctx context.Context, key string) {
	if err := tc.client.Del(ctx, treeKeyPrefix+key).Err(); err != nil {
		slog.Warn("tree cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("tree cache invalidated", "key", key)
}
