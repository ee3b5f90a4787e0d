// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package band reads the company's social band feed: the profile, the list
// of bands the token can see and the posts of the selected band.
package band

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API paths.
const (
	ProfilePath = "/v2/profile"
	BandsPath   = "/v2.1/bands"
	PostsPath   = "/v2/band/posts"
)

// ErrNotConfigured is returned when no access token is set.
var ErrNotConfigured = errors.New("band client not configured")

// Profile is the token owner.
type Profile struct {
	UserKey string `json:"user_key"`
	Name    string `json:"name"`
	Image   string `json:"profile_image_url"`
}

// Band is one band visible to the token.
type Band struct {
	Key         string `json:"band_key"`
	Name        string `json:"name"`
	Cover       string `json:"cover"`
	MemberCount int    `json:"member_count"`
}

// RawPost is a post as returned by the API.
type RawPost struct {
	PostKey string `json:"post_key"`
	Content string `json:"content"`
	Author  struct {
		Name  string `json:"name"`
		Image string `json:"profile_image_url"`
	} `json:"author"`
	CreatedAt    int64 `json:"created_at"`
	CommentCount int   `json:"comment_count"`
	EmotionCount int   `json:"emotion_count"`
	Photos       []struct {
		URL string `json:"url"`
	} `json:"photos"`
}

type envelope struct {
	ResultCode int             `json:"result_code"`
	ResultData json.RawMessage `json:"result_data"`
}

// Client calls the band open API.
type Client struct {
	baseURL    string
	token      string
	maxPages   int
	userAgent  string
	httpClient *http.Client
}

// ClientConfig configures Client.
type ClientConfig struct {
	BaseURL     string
	AccessToken string
	MaxPages    int
	UserAgent   string
	Timeout     time.Duration
}

// NewClient creates a band client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.MaxPages < 1 {
		cfg.MaxPages = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.AccessToken,
		maxPages:   cfg.MaxPages,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// get calls path with query plus the access token and decodes result_data
// into out. A result_code other than 1 is an error.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.token == "" {
		return ErrNotConfigured
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned HTTP %d", path, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	if env.ResultCode != 1 {
		return fmt.Errorf("%s result_code %d", path, env.ResultCode)
	}
	if err := json.Unmarshal(env.ResultData, out); err != nil {
		return fmt.Errorf("decoding %s result_data: %w", path, err)
	}
	return nil
}

// Profile returns the token owner.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.get(ctx, ProfilePath, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Bands lists the bands the token can read.
func (c *Client) Bands(ctx context.Context) ([]Band, error) {
	var data struct {
		Bands []Band `json:"bands"`
	}
	if err := c.get(ctx, BandsPath, nil, &data); err != nil {
		return nil, err
	}
	return data.Bands, nil
}

// Posts returns the band's posts newest first, following
// paging.next_params for at most MaxPages requests.
func (c *Client) Posts(ctx context.Context, bandKey string) ([]RawPost, error) {
	query := url.Values{"band_key": {bandKey}, "locale": {"ko_KR"}}
	var all []RawPost

	for page := 0; page < c.maxPages; page++ {
		var data struct {
			Items  []RawPost `json:"items"`
			Paging struct {
				NextParams map[string]any `json:"next_params"`
			} `json:"paging"`
		}
		if err := c.get(ctx, PostsPath, query, &data); err != nil {
			return nil, err
		}
		all = append(all, data.Items...)

		if len(data.Paging.NextParams) == 0 {
			break
		}
		query = url.Values{}
		for k, v := range data.Paging.NextParams {
			if k == "access_token" {
				continue
			}
			query.Set(k, fmt.Sprint(v))
		}
	}
	return all, nil
}
