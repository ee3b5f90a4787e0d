// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Typed stores JSON-encoded values of T in a Cacher.
type Typed[T any] struct {
	cache Cacher
	ttl   time.Duration
}

// NewTyped wraps c. A non-positive ttl disables caching, so every
// GetOrLoad call runs the loader.
func NewTyped[T any](c Cacher, ttl time.Duration) *Typed[T] {
	return &Typed[T]{cache: c, ttl: ttl}
}

// Enabled reports whether values are cached at all.
func (t *Typed[T]) Enabled() bool {
	return t.cache != nil && t.ttl > 0
}

// Get returns the cached value for key.
func (t *Typed[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	if !t.Enabled() {
		return zero, false
	}
	data, err := t.cache.Get(ctx, key)
	if err != nil {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, false
	}
	return v, true
}

// Set stores value under key.
func (t *Typed[T]) Set(ctx context.Context, key string, value T) error {
	if !t.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return t.cache.Set(ctx, key, data, t.ttl)
}

// Delete drops key.
func (t *Typed[T]) Delete(ctx context.Context, key string) error {
	if t.cache == nil {
		return nil
	}
	return t.cache.Delete(ctx, key)
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Loader errors are returned and never cached.
func (t *Typed[T]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := t.Get(ctx, key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	_ = t.Set(ctx, key, v)
	return v, nil
}
