// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package naverads fetches daily campaign statistics from the Naver
// SearchAd API.
package naverads

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StatsPath is the statistics endpoint.
const StatsPath = "/stats"

// Request headers.
const (
	HeaderTimestamp = "X-Timestamp"
	HeaderAPIKey    = "X-API-KEY"
	HeaderCustomer  = "X-Customer"
	HeaderSignature = "X-Signature"
)

// statFields are the metrics requested per campaign.
var statFields = []string{"impCnt", "clkCnt", "salesAmt", "ccnt"}

// ErrNotConfigured is returned when credentials or campaigns are missing.
var ErrNotConfigured = errors.New("naver ads client not configured")

// DailyStat is the sum over all configured campaigns for one day.
type DailyStat struct {
	Date        string // YYYY-MM-DD
	Impressions int64
	Clicks      int64
	Cost        int64
	Conversions int64
}

// CTR returns clicks per impression in percent.
func (s DailyStat) CTR() float64 {
	if s.Impressions == 0 {
		return 0
	}
	return float64(s.Clicks) / float64(s.Impressions) * 100
}

// CPC returns cost per click.
func (s DailyStat) CPC() float64 {
	if s.Clicks == 0 {
		return 0
	}
	return float64(s.Cost) / float64(s.Clicks)
}

// ClientConfig configures Client.
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Secret      string
	CustomerID  string
	CampaignIDs []string
	UserAgent   string
	Timeout     time.Duration
}

// Client is a signed SearchAd API client.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a SearchAd client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}, now: time.Now}
}

// Sign returns the base64 HMAC-SHA256 of "timestamp.method.uri".
func Sign(secret, timestamp, method, uri string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + method + "." + uri))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type statsResponse struct {
	Data []struct {
		ID       string      `json:"id"`
		ImpCnt   json.Number `json:"impCnt"`
		ClkCnt   json.Number `json:"clkCnt"`
		SalesAmt json.Number `json:"salesAmt"`
		Ccnt     json.Number `json:"ccnt"`
	} `json:"data"`
}

// Stats returns the summed statistics for date (YYYY-MM-DD).
func (c *Client) Stats(ctx context.Context, date string) (DailyStat, error) {
	if c.cfg.APIKey == "" || c.cfg.Secret == "" || c.cfg.CustomerID == "" || len(c.cfg.CampaignIDs) == 0 {
		return DailyStat{}, ErrNotConfigured
	}

	fields, _ := json.Marshal(statFields)
	timeRange, _ := json.Marshal(map[string]string{"since": date, "until": date})
	query := url.Values{
		"ids":       {strings.Join(c.cfg.CampaignIDs, ",")},
		"fields":    {string(fields)},
		"timeRange": {string(timeRange)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+StatsPath+"?"+query.Encode(), nil)
	if err != nil {
		return DailyStat{}, fmt.Errorf("creating request: %w", err)
	}
	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	req.Header.Set(HeaderTimestamp, ts)
	req.Header.Set(HeaderAPIKey, c.cfg.APIKey)
	req.Header.Set(HeaderCustomer, c.cfg.CustomerID)
	req.Header.Set(HeaderSignature, Sign(c.cfg.Secret, ts, http.MethodGet, StatsPath))
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return DailyStat{}, fmt.Errorf("calling stats: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return DailyStat{}, fmt.Errorf("stats returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed statsResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, 1<<20))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return DailyStat{}, fmt.Errorf("decoding stats: %w", err)
	}

	stat := DailyStat{Date: date}
	for _, row := range parsed.Data {
		stat.Impressions += toInt(row.ImpCnt)
		stat.Clicks += toInt(row.ClkCnt)
		stat.Cost += toInt(row.SalesAmt)
		stat.Conversions += toInt(row.Ccnt)
	}
	return stat, nil
}

// toInt reads integral and fractional API numbers; fractions are truncated.
func toInt(n json.Number) int64 {
	if n == "" {
		return 0
	}
	if v, err := n.Int64(); err == nil {
		return v
	}
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	return int64(f)
}
