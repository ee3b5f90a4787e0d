// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryCache is an in-process cache with per-entry expiry and an optional
// capacity bound. The least recently used entry is evicted when full.
type MemoryCache struct {
	items      *ttlcache.Cache[string, []byte]
	defaultTTL time.Duration
	closed     atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// MemoryCacheOptions configures the memory cache.
type MemoryCacheOptions struct {
	DefaultTTL time.Duration
	MaxSize    int // 0 means unbounded
}

// NewMemoryCache starts a memory cache. Close stops its expiry goroutine.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	ttlOpts := []ttlcache.Option[string, []byte]{
		ttlcache.WithTTL[string, []byte](opts.DefaultTTL),
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	}
	if opts.MaxSize > 0 {
		ttlOpts = append(ttlOpts, ttlcache.WithCapacity[string, []byte](uint64(opts.MaxSize)))
	}

	c := &MemoryCache{
		items:      ttlcache.New(ttlOpts...),
		defaultTTL: opts.DefaultTTL,
	}
	go c.items.Start()
	return c
}

// Get retrieves a value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}
	item := c.items.Get(key)
	if item == nil || item.IsExpired() {
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}
	c.hits.Add(1)
	return item.Value(), nil
}

// Set stores a value.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl == 0 {
		ttl = ttlcache.DefaultTTL
	}
	c.items.Set(key, value, ttl)
	c.sets.Add(1)
	return nil
}

// Delete removes a key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.items.Delete(key)
	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(_ context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.items.DeleteAll()
	return nil
}

// Close stops the expiry loop. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.items.Stop()
	}
	return nil
}

// Stats returns the current counters.
func (c *MemoryCache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{
		Hits:   hits,
		Misses: misses,
		Sets:   c.sets.Load(),
		Items:  c.items.Len(),
		HitPct: hitPct(hits, misses),
	}
}

var (
	_ Cacher        = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
