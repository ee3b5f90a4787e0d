// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/heavyfix/internal/band"
	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/jobs"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/service"
)

// FeedPager pages through the aggregated band feed.
type FeedPager interface {
	Page(ctx context.Context, p paging.Params) (*band.Page, error)
}

// APIHandler serves the JSON endpoints used by the site scripts and the
// admin console.
type APIHandler struct {
	inventory jobs.InventorySource
	feed      FeedPager
	users     *service.UserService
	loc       *time.Location
	now       func() time.Time
}

// NewAPIHandler creates a new APIHandler. inventory is nil when the ERP is
// not configured.
func NewAPIHandler(inventory jobs.InventorySource, feed FeedPager, users *service.UserService, loc *time.Location) *APIHandler {
	if loc == nil {
		loc = time.Local
	}
	return &APIHandler{inventory: inventory, feed: feed, users: users, loc: loc, now: time.Now}
}

// Inventory handles GET /api/inventory.
func (h *APIHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	if h.inventory == nil {
		writeUnavailable(w, r)
		return
	}
	snap, err := h.inventory.Snapshot(r.Context(), middleware.GetPrincipal(r), h.now().In(h.loc))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteResult(w, http.StatusOK, result.OK(i18n.T(middleware.GetLang(r), "result.success")).WithData(snap))
}

// BandPosts handles GET /api/band/posts?page=&pageSize=. The body is the
// bare page object the feed widget consumes, not the result envelope.
func (h *APIHandler) BandPosts(w http.ResponseWriter, r *http.Request) {
	page, err := h.feed.Page(r.Context(), paging.FromRequest(r, paging.BandPosts))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	if err := json.NewEncoder(w).Encode(page); err != nil {
		slog.Debug("writing band page", "error", err)
	}
}

// Users handles GET /api/admin/users.
func (h *APIHandler) Users(w http.ResponseWriter, r *http.Request) {
	page, err := h.users.List(r.Context(), middleware.GetPrincipal(r), paging.FromRequest(r, paging.Users))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteResult(w, http.StatusOK, result.OK(i18n.T(middleware.GetLang(r), "result.success")).WithData(page))
}

// writeUnavailable answers 503 for a feature whose integration is not
// configured.
func writeUnavailable(w http.ResponseWriter, r *http.Request) {
	middleware.WriteResult(w, http.StatusServiceUnavailable, result.Result{
		Code:    result.CodeServer,
		Message: i18n.T(middleware.GetLang(r), "error.unavailable"),
	})
}
