// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package band

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/olegiv/heavyfix/internal/cache"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/result"
)

// ErrNoBands is returned when the token cannot see any band.
var ErrNoBands = errors.New("no bands available")

// Post is a normalized feed post.
type Post struct {
	Key          string   `json:"key"`
	Content      string   `json:"content"`
	Author       string   `json:"author"`
	AuthorImage  string   `json:"authorImage"`
	CreatedAt    string   `json:"createdAt"`
	Photos       []string `json:"photos"`
	CommentCount int      `json:"commentCount"`
	EmotionCount int      `json:"emotionCount"`
}

// Feed is the selected band with all fetched posts.
type Feed struct {
	Band  Band   `json:"band"`
	Posts []Post `json:"posts"`
}

// Page is one window of the feed.
type Page struct {
	Items    []Post `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Band     string `json:"band"`
}

// SelectBand picks target from bands: exact name, then trimmed
// case-insensitive name, then case-insensitive substring, then the first
// band.
func SelectBand(bands []Band, target string) (Band, error) {
	if len(bands) == 0 {
		return Band{}, ErrNoBands
	}
	for _, b := range bands {
		if b.Name == target {
			return b, nil
		}
	}
	want := strings.ToLower(strings.TrimSpace(target))
	if want != "" {
		for _, b := range bands {
			if strings.ToLower(strings.TrimSpace(b.Name)) == want {
				return b, nil
			}
		}
		for _, b := range bands {
			if strings.Contains(strings.ToLower(b.Name), want) {
				return b, nil
			}
		}
	}
	return bands[0], nil
}

// Normalize converts a raw post. rewrite maps photo URLs (e.g. through the
// image proxy) and may be nil.
func Normalize(raw RawPost, rewrite func(string) string) Post {
	if rewrite == nil {
		rewrite = func(s string) string { return s }
	}
	photos := make([]string, 0, len(raw.Photos))
	for _, ph := range raw.Photos {
		if ph.URL != "" {
			photos = append(photos, rewrite(ph.URL))
		}
	}
	created := ""
	if raw.CreatedAt > 0 {
		created = time.UnixMilli(raw.CreatedAt).UTC().Format(time.RFC3339)
	}
	author := raw.Author.Image
	if author != "" {
		author = rewrite(author)
	}
	return Post{
		Key:          raw.PostKey,
		Content:      raw.Content,
		Author:       raw.Author.Name,
		AuthorImage:  author,
		CreatedAt:    created,
		Photos:       photos,
		CommentCount: raw.CommentCount,
		EmotionCount: raw.EmotionCount,
	}
}

// API is implemented by Client.
type API interface {
	Profile(ctx context.Context) (*Profile, error)
	Bands(ctx context.Context) ([]Band, error)
	Posts(ctx context.Context, bandKey string) ([]RawPost, error)
}

// Service aggregates the feed of the configured band.
type Service struct {
	api     API
	target  string
	rewrite func(string) string
	cache   *cache.Typed[Feed]
}

// NewService creates a Service. A non-positive ttl leaves the feed uncached.
func NewService(api API, target string, rewrite func(string) string, cacher cache.Cacher, ttl time.Duration) *Service {
	return &Service{
		api:     api,
		target:  target,
		rewrite: rewrite,
		cache:   cache.NewTyped[Feed](cacher, ttl),
	}
}

// Feed runs profile, bands and posts in sequence.
func (s *Service) Feed(ctx context.Context) (Feed, error) {
	return s.cache.GetOrLoad(ctx, "band:feed", s.load)
}

func (s *Service) load(ctx context.Context) (Feed, error) {
	if _, err := s.api.Profile(ctx); err != nil {
		return Feed{}, err
	}
	bands, err := s.api.Bands(ctx)
	if err != nil {
		return Feed{}, err
	}
	selected, err := SelectBand(bands, s.target)
	if err != nil {
		return Feed{}, err
	}
	raw, err := s.api.Posts(ctx, selected.Key)
	if err != nil {
		return Feed{}, err
	}
	posts := make([]Post, 0, len(raw))
	for _, r := range raw {
		posts = append(posts, Normalize(r, s.rewrite))
	}
	return Feed{Band: selected, Posts: posts}, nil
}

// Page returns items [(page-1)*size, page*size) of the feed.
func (s *Service) Page(ctx context.Context, p paging.Params) (*Page, error) {
	feed, err := s.Feed(ctx)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, &result.Error{Code: result.CodeServer, Message: "band feed is not configured", Err: err}
		}
		return nil, &result.Error{Code: result.CodeServer, Message: "failed to load band feed", Err: err}
	}
	return &Page{
		Items:    paging.Slice(feed.Posts, p),
		Total:    len(feed.Posts),
		Page:     p.Page,
		PageSize: p.PageSize,
		Band:     feed.Band.Name,
	}, nil
}
