// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package erp reads stock balances from the ERP system, merges them into
// the static product catalog and classifies each product as safe, low or
// out of stock.
package erp

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BalancesPath is the signed endpoint returning per-product balances.
const BalancesPath = "/inventory/balances"

// Signature headers.
const (
	HeaderKey       = "X-ERP-Key"
	HeaderTimestamp = "X-ERP-Timestamp"
	HeaderSignature = "X-ERP-Signature"
)

// ErrNotConfigured is returned by a client without credentials.
var ErrNotConfigured = errors.New("erp client not configured")

// Balance is one balance row. The ERP may return several rows per product
// (one per warehouse).
type Balance struct {
	ProdCode string          `json:"prod_cd"`
	Qty      decimal.Decimal `json:"bal_qty"`
}

// Client calls the ERP balances API.
type Client struct {
	baseURL    string
	comCode    string
	apiKey     string
	secret     []byte
	userAgent  string
	httpClient *http.Client
	now        func() time.Time
}

// ClientConfig configures Client.
type ClientConfig struct {
	BaseURL   string
	ComCode   string
	APIKey    string
	Secret    string
	UserAgent string
	Timeout   time.Duration
}

// NewClient creates an ERP client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		comCode:    cfg.ComCode,
		apiKey:     cfg.APIKey,
		secret:     []byte(cfg.Secret),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

type balancesRequest struct {
	BaseDate string `json:"base_date"`
	ComCode  string `json:"com_code"`
}

type balancesResponse struct {
	Status string    `json:"status"`
	Data   []Balance `json:"data"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Balances fetches balances as of baseDate.
func (c *Client) Balances(ctx context.Context, baseDate time.Time) ([]Balance, error) {
	if c.baseURL == "" || c.apiKey == "" || len(c.secret) == 0 {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(balancesRequest{
		BaseDate: baseDate.Format("20060102"),
		ComCode:  c.comCode,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+BalancesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	ts := strconv.FormatInt(c.now().Unix(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderKey, c.apiKey)
	req.Header.Set(HeaderTimestamp, ts)
	req.Header.Set(HeaderSignature, Sign(c.secret, http.MethodPost, BalancesPath, ts, body))
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling erp: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("reading erp response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("erp returned HTTP %d", resp.StatusCode)
	}

	var out balancesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding erp response: %w", err)
	}
	if out.Error != nil && (out.Error.Code != "" || out.Error.Message != "") {
		return nil, fmt.Errorf("erp error %s: %s", out.Error.Code, out.Error.Message)
	}
	if out.Status != "200" {
		return nil, fmt.Errorf("erp status %q", out.Status)
	}
	return out.Data, nil
}

// Sign returns hex HMAC-SHA256 over METHOD, PATH, TIMESTAMP and the hex
// SHA-256 of the body, joined by newlines.
func Sign(secret []byte, method, path, timestamp string, body []byte) string {
	sum := sha256.Sum256(body)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(method + "\n" + path + "\n" + timestamp + "\n" + hex.EncodeToString(sum[:])))
	return hex.EncodeToString(mac.Sum(nil))
}
