// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package naverads

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	a := Sign("secret", "1700000000000", "GET", "/stats")
	assert.Equal(t, a, Sign("secret", "1700000000000", "GET", "/stats"))
	assert.NotEqual(t, a, Sign("secret", "1700000000001", "GET", "/stats"))
	assert.NotEqual(t, a, Sign("other", "1700000000000", "GET", "/stats"))
}

func TestDailyStat_Ratios(t *testing.T) {
	s := DailyStat{Impressions: 1000, Clicks: 25, Cost: 12500}
	assert.InDelta(t, 2.5, s.CTR(), 0.0001)
	assert.InDelta(t, 500, s.CPC(), 0.0001)

	var zero DailyStat
	assert.Zero(t, zero.CTR())
	assert.Zero(t, zero.CPC())
}

func TestClient_Stats(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, StatsPath, r.URL.Path)
		assert.Equal(t, "key", r.Header.Get(HeaderAPIKey))
		assert.Equal(t, "cust", r.Header.Get(HeaderCustomer))
		assert.Equal(t, "1700000000000", r.Header.Get(HeaderTimestamp))
		assert.Equal(t, Sign("sec", "1700000000000", "GET", StatsPath), r.Header.Get(HeaderSignature))
		assert.Equal(t, "cmp-1,cmp-2", r.URL.Query().Get("ids"))

		var tr map[string]string
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("timeRange")), &tr))
		assert.Equal(t, "2026-03-08", tr["since"])

		_, _ = w.Write([]byte(`{"data":[
			{"id":"cmp-1","impCnt":1000,"clkCnt":20,"salesAmt":10000,"ccnt":2},
			{"id":"cmp-2","impCnt":500,"clkCnt":5,"salesAmt":2500.7,"ccnt":0}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{
		BaseURL: srv.URL, APIKey: "key", Secret: "sec", CustomerID: "cust",
		CampaignIDs: []string{"cmp-1", "cmp-2"},
	})
	c.now = func() time.Time { return fixed }

	stat, err := c.Stats(context.Background(), "2026-03-08")
	require.NoError(t, err)
	assert.Equal(t, DailyStat{Date: "2026-03-08", Impressions: 1500, Clicks: 25, Cost: 12500, Conversions: 2}, stat)
}

func TestClient_StatsErrors(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "http://unused"}).Stats(context.Background(), "2026-03-08")
	assert.ErrorIs(t, err, ErrNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":1018,"title":"Not enough permission"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k", Secret: "s", CustomerID: "c", CampaignIDs: []string{"x"}})
	_, err = c.Stats(context.Background(), "2026-03-08")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 403")
}
