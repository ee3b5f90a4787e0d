// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/naverads"
	"github.com/olegiv/heavyfix/internal/store"
)

// AdStatsDays is the window shown in the admin console.
const AdStatsDays = 30

// AdStatsTotals sums a window of daily rows.
type AdStatsTotals struct {
	Impressions int64
	Clicks      int64
	Cost        int64
	Conversions int64
	CTR         float64
	CPC         float64
}

// AdStatsService stores and reads daily search-ad snapshots.
type AdStatsService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewAdStatsService creates a new AdStatsService.
func NewAdStatsService(db *sql.DB) *AdStatsService {
	return &AdStatsService{queries: store.New(db), now: func() time.Time { return time.Now().UTC() }}
}

// Upsert stores the snapshot for stat.Date, replacing any earlier one.
func (s *AdStatsService) Upsert(ctx context.Context, p authz.Principal, stat naverads.DailyStat) (store.NaverAdsStat, error) {
	if err := p.Require(authz.ViewAdStats); err != nil {
		return store.NaverAdsStat{}, err
	}
	row, err := s.queries.UpsertNaverAdsStat(ctx, store.UpsertNaverAdsStatParams{
		StatDate:    stat.Date,
		Impressions: stat.Impressions,
		Clicks:      stat.Clicks,
		Cost:        stat.Cost,
		Conversions: stat.Conversions,
		Ctr:         round2(stat.CTR()),
		Cpc:         round2(stat.CPC()),
		UpdatedAt:   s.now(),
	})
	return row, dbError(err)
}

// Recent returns the last days snapshots, newest first, with their totals.
func (s *AdStatsService) Recent(ctx context.Context, p authz.Principal, days int) ([]store.NaverAdsStat, AdStatsTotals, error) {
	if err := p.Require(authz.ViewAdStats); err != nil {
		return nil, AdStatsTotals{}, err
	}
	rows, err := s.queries.ListNaverAdsStats(ctx, int64(days))
	if err != nil {
		return nil, AdStatsTotals{}, dbError(err)
	}
	var sum naverads.DailyStat
	for _, r := range rows {
		sum.Impressions += r.Impressions
		sum.Clicks += r.Clicks
		sum.Cost += r.Cost
		sum.Conversions += r.Conversions
	}
	return rows, AdStatsTotals{
		Impressions: sum.Impressions,
		Clicks:      sum.Clicks,
		Cost:        sum.Cost,
		Conversions: sum.Conversions,
		CTR:         round2(sum.CTR()),
		CPC:         round2(sum.CPC()),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
