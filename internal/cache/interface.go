// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the byte-oriented cache used for ERP snapshots and
// band feed pages. A Redis backend is used when configured, with an
// in-memory fallback.
package cache

import (
	"context"
	"time"
)

// Cacher is implemented by every backend. Implementations are safe for
// concurrent use.
type Cacher interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value. A zero ttl uses the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Stats holds hit and miss counters.
type Stats struct {
	Hits   int64   `json:"hits"`
	Misses int64   `json:"misses"`
	Sets   int64   `json:"sets"`
	Items  int     `json:"items"`
	HitPct float64 `json:"hit_pct"`
}

// StatsProvider is implemented by backends that count hits.
type StatsProvider interface {
	Stats() Stats
}

// Error is a sentinel cache error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrCacheMiss   Error = "cache miss"
	ErrCacheClosed Error = "cache closed"
)

func hitPct(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}
