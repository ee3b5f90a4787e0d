// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package erp

import (
	"context"
	"errors"
	"time"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/cache"
	"github.com/olegiv/heavyfix/internal/result"
)

// BalanceFetcher is implemented by Client.
type BalanceFetcher interface {
	Balances(ctx context.Context, baseDate time.Time) ([]Balance, error)
}

// Snapshot is the merged inventory for one base date.
type Snapshot struct {
	BaseDate  string          `json:"base_date"`
	Items     []InventoryItem `json:"items"`
	Summary   Summary         `json:"summary"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Service builds inventory snapshots, caching them per base date.
type Service struct {
	fetcher BalanceFetcher
	catalog Catalog
	cache   *cache.Typed[Snapshot]
	now     func() time.Time
}

// NewService creates a Service. A nil cacher or non-positive ttl disables
// caching.
func NewService(fetcher BalanceFetcher, catalog Catalog, cacher cache.Cacher, ttl time.Duration) *Service {
	return &Service{
		fetcher: fetcher,
		catalog: catalog,
		cache:   cache.NewTyped[Snapshot](cacher, ttl),
		now:     time.Now,
	}
}

// Snapshot returns the inventory as of today. The caller needs
// ViewInventory.
func (s *Service) Snapshot(ctx context.Context, p authz.Principal, today time.Time) (*Snapshot, error) {
	if err := p.Require(authz.ViewInventory); err != nil {
		return nil, err
	}

	baseDate := today.Format("2006-01-02")
	snap, err := s.cache.GetOrLoad(ctx, "erp:snapshot:"+baseDate, func(ctx context.Context) (Snapshot, error) {
		balances, err := s.fetcher.Balances(ctx, today)
		if err != nil {
			return Snapshot{}, err
		}
		items := Merge(s.catalog, balances)
		return Snapshot{
			BaseDate:  baseDate,
			Items:     items,
			Summary:   Summarize(items),
			FetchedAt: s.now(),
		}, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, &result.Error{Code: result.CodeServer, Message: "ERP integration is not configured", Err: err}
		}
		return nil, &result.Error{Code: result.CodeServer, Message: "failed to load inventory", Err: err}
	}
	return &snap, nil
}
