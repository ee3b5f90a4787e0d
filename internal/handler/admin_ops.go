// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/heavyfix/internal/erp"
	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/render"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/scheduler"
	"github.com/olegiv/heavyfix/internal/service"
	"github.com/olegiv/heavyfix/internal/store"
	"github.com/olegiv/heavyfix/internal/uikit"
)

// adStatsDays is the window shown on the ads page.
const adStatsDays = 30

// InventoryData is passed to the inventory page.
type InventoryData struct {
	Enabled  bool
	Snapshot *erp.Snapshot
	Items    []erp.InventoryItem
	Status   erp.Status
	Statuses []erp.Status
	Error    string
}

// Inventory handles GET /admin/inventory?status=. An unreachable ERP is
// shown on the page rather than failing it.
func (h *AdminHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	data := InventoryData{
		Enabled:  h.inventory != nil,
		Statuses: []erp.Status{erp.StatusSafe, erp.StatusLow, erp.StatusOut},
	}
	data.Status, _ = erp.ParseStatus(r.URL.Query().Get("status"))

	if data.Enabled {
		snap, err := h.inventory.Snapshot(r.Context(), middleware.GetPrincipal(r), h.today())
		switch {
		case err == nil:
			data.Snapshot = snap
			data.Items = erp.Filter(snap.Items, data.Status)
		case result.Is(err, result.CodeForbidden):
			h.serverError(w, r, err)
			return
		default:
			_, res := middleware.ErrorResult(r, err)
			data.Error = res.Message
		}
	}

	h.page(w, r, "admin/inventory", render.TemplateData{
		Title: title(r, "admin.inventory"),
		Data:  data,
	})
}

// AdsData is passed to the ads page.
type AdsData struct {
	Days   int
	Stats  []store.NaverAdsStat
	Totals service.AdStatsTotals
}

// Ads handles GET /admin/ads.
func (h *AdminHandler) Ads(w http.ResponseWriter, r *http.Request) {
	stats, totals, err := h.adStats.Recent(r.Context(), middleware.GetPrincipal(r), adStatsDays)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.page(w, r, "admin/ads", render.TemplateData{
		Title: title(r, "admin.ads"),
		Data:  AdsData{Days: adStatsDays, Stats: stats, Totals: totals},
	})
}

// EventsData is passed to the event log page.
type EventsData struct {
	Events     []store.Event
	Pagination uikit.Pagination
}

// Events handles GET /admin/events.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	page, err := h.events.List(r.Context(), middleware.GetPrincipal(r), paging.FromRequest(r, paging.Events))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.page(w, r, "admin/events", render.TemplateData{
		Title: title(r, "admin.events"),
		Data: EventsData{
			Events:     page.Items,
			Pagination: uikit.BuildPagination(page.Page, page.Total, page.PageSize, "/admin/events", r.URL.Query()),
		},
	})
}

// JobRow is one line of the jobs page.
type JobRow struct {
	Name     string
	Schedule string
	LastRun  time.Time
	NextRun  time.Time
}

// JobsData is passed to the jobs page.
type JobsData struct {
	Jobs             []JobRow
	SchedulerEnabled bool
}

// Jobs handles GET /admin/jobs.
func (h *AdminHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	scheduled := map[string]scheduler.JobInfo{}
	if h.registry != nil {
		for _, info := range h.registry.List() {
			scheduled[info.Name] = info
		}
	}

	var rows []JobRow
	for _, name := range h.jobs.Names() {
		row := JobRow{Name: name}
		if info, ok := scheduled[name]; ok {
			row.Schedule = info.Schedule
			row.LastRun = info.LastRun
			row.NextRun = info.NextRun
		}
		rows = append(rows, row)
	}

	h.page(w, r, "admin/jobs", render.TemplateData{
		Title: title(r, "admin.jobs"),
		Data:  JobsData{Jobs: rows, SchedulerEnabled: h.registry != nil},
	})
}

// RunJob handles POST /admin/jobs/{job}/run. A scheduled job is handed to
// the scheduler and runs in the background; otherwise it runs inline.
func (h *AdminHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "job")
	if !h.jobs.Has(name) {
		h.notFound(w, r)
		return
	}
	lang := middleware.GetLang(r)

	if h.registry != nil {
		if err := h.registry.TriggerNow(name); err == nil {
			h.respond(w, r, result.OK(i18n.T(lang, "job.triggered")).
				WithRedirect(redirectAdminJobs).
				WithData(map[string]any{"job": name}))
			return
		}
	}

	data, err := h.jobs.Run(r.Context(), name)
	if err != nil {
		h.fail(w, r, err, redirectAdminJobs)
		return
	}
	h.respond(w, r, result.OK(i18n.T(lang, "job.ran")).WithRedirect(redirectAdminJobs).WithData(data))
}
