// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/seo"
	"github.com/olegiv/heavyfix/internal/service"
	"github.com/olegiv/heavyfix/internal/util"
)

// maxSitemapPosts caps the posts listed per kind.
const maxSitemapPosts = 1000

// SEOHandler serves /sitemap.xml and /robots.txt.
type SEOHandler struct {
	posts   *service.PostService
	siteURL string
	isDev   bool
}

// NewSEOHandler creates a new SEOHandler. Development sites ask crawlers
// to stay away.
func NewSEOHandler(posts *service.PostService, siteURL string, isDev bool) *SEOHandler {
	return &SEOHandler{posts: posts, siteURL: siteURL, isDev: isDev}
}

// Sitemap handles GET /sitemap.xml.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	b := seo.NewSitemapBuilder(h.siteURL)
	b.Add(RouteRoot, time.Time{}, seo.ChangeFreqDaily, "1.0")
	b.Add(RouteBusiness, time.Time{}, seo.ChangeFreqMonthly, "0.5")
	b.Add(RouteCases, time.Time{}, seo.ChangeFreqWeekly, "0.8")
	b.Add(RouteSupport, time.Time{}, seo.ChangeFreqWeekly, "0.6")

	params := paging.Params{Page: 1, PageSize: maxSitemapPosts}
	cases, err := h.posts.List(r.Context(), authz.Anonymous, model.KindRepairCase, "", params)
	if err != nil {
		slog.Error("sitemap: listing repair cases", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	for _, post := range cases.Items {
		path := RouteCases + "/" + strconv.FormatInt(post.ID, 10)
		if slug := util.Slugify(post.Title); slug != "" {
			path += "/" + slug
		}
		b.Add(path, post.UpdatedAt, seo.ChangeFreqMonthly, "0.7")
	}

	notices, err := h.posts.List(r.Context(), authz.Anonymous, model.KindNotice, "", params)
	if err != nil {
		slog.Error("sitemap: listing notices", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	for _, post := range notices.Items {
		b.Add(RouteNotices+"/"+strconv.FormatInt(post.ID, 10), post.UpdatedAt, seo.ChangeFreqMonthly, "0.4")
	}

	data, err := b.Build()
	if err != nil {
		slog.Error("sitemap: building xml", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}

// Robots handles GET /robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(seo.Robots(seo.RobotsConfig{
		SiteURL:     h.siteURL,
		DisallowAll: h.isDev,
	})))
}
