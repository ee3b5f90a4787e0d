// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"log/slog"
	"time"
)

// Config selects and sizes the backend.
type Config struct {
	RedisURL   string
	Prefix     string
	DefaultTTL time.Duration
	MaxSize    int
}

// New returns a Redis cache when RedisURL is set and reachable, and a memory
// cache otherwise. A failed Redis connection is logged, not returned.
func New(cfg Config, logger *slog.Logger) Cacher {
	if cfg.RedisURL != "" {
		rc, err := NewRedisCache(RedisCacheOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.Prefix,
			DefaultTTL: cfg.DefaultTTL,
		})
		if err == nil {
			logger.Info("using redis cache", "prefix", cfg.Prefix)
			return rc
		}
		logger.Warn("redis cache unavailable, falling back to memory", "error", err)
	}
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL: cfg.DefaultTTL,
		MaxSize:    cfg.MaxSize,
	})
}
