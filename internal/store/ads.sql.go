// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const naverAdsStatColumns = `id, stat_date, impressions, clicks, cost, conversions, ctr, cpc, updated_at`

func scanNaverAdsStat(row interface{ Scan(...any) error }) (NaverAdsStat, error) {
	var i NaverAdsStat
	err := row.Scan(
		&i.ID,
		&i.StatDate,
		&i.Impressions,
		&i.Clicks,
		&i.Cost,
		&i.Conversions,
		&i.Ctr,
		&i.Cpc,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertNaverAdsStat = `-- name: UpsertNaverAdsStat :one
INSERT INTO naver_ads_stats (stat_date, impressions, clicks, cost, conversions, ctr, cpc, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (stat_date) DO UPDATE SET
    impressions = excluded.impressions,
    clicks = excluded.clicks,
    cost = excluded.cost,
    conversions = excluded.conversions,
    ctr = excluded.ctr,
    cpc = excluded.cpc,
    updated_at = excluded.updated_at
RETURNING ` + naverAdsStatColumns

type UpsertNaverAdsStatParams struct {
	StatDate    string    `json:"stat_date"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Cost        int64     `json:"cost"`
	Conversions int64     `json:"conversions"`
	Ctr         float64   `json:"ctr"`
	Cpc         float64   `json:"cpc"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpsertNaverAdsStat keeps exactly one row per stat_date.
func (q *Queries) UpsertNaverAdsStat(ctx context.Context, arg UpsertNaverAdsStatParams) (NaverAdsStat, error) {
	row := q.db.QueryRowContext(ctx, upsertNaverAdsStat,
		arg.StatDate,
		arg.Impressions,
		arg.Clicks,
		arg.Cost,
		arg.Conversions,
		arg.Ctr,
		arg.Cpc,
		arg.UpdatedAt,
	)
	return scanNaverAdsStat(row)
}

const getNaverAdsStatByDate = `-- name: GetNaverAdsStatByDate :one
SELECT ` + naverAdsStatColumns + ` FROM naver_ads_stats WHERE stat_date = ?`

func (q *Queries) GetNaverAdsStatByDate(ctx context.Context, statDate string) (NaverAdsStat, error) {
	return scanNaverAdsStat(q.db.QueryRowContext(ctx, getNaverAdsStatByDate, statDate))
}

const listNaverAdsStats = `-- name: ListNaverAdsStats :many
SELECT ` + naverAdsStatColumns + ` FROM naver_ads_stats
ORDER BY stat_date DESC
LIMIT ?`

func (q *Queries) ListNaverAdsStats(ctx context.Context, limit int64) ([]NaverAdsStat, error) {
	rows, err := q.db.QueryContext(ctx, listNaverAdsStats, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []NaverAdsStat{}
	for rows.Next() {
		i, err := scanNaverAdsStat(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
