// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/jobs"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/render"
	"github.com/olegiv/heavyfix/internal/scheduler"
	"github.com/olegiv/heavyfix/internal/service"
)

// JobRunner runs the named background jobs.
type JobRunner interface {
	Names() []string
	Has(name string) bool
	Run(ctx context.Context, name string) (jobs.Data, error)
}

// AdminDeps groups the services behind the admin console.
type AdminDeps struct {
	Renderer  *render.Renderer
	Dashboard *service.Dashboard
	Users     *service.UserService
	Posts     *service.PostService
	Questions *service.InquiryService
	Customers *service.CustomerInquiryService
	Schedules *service.ScheduleService
	AdStats   *service.AdStatsService
	Events    *service.EventService
	// Inventory is nil when the ERP is not configured.
	Inventory jobs.InventorySource
	Jobs      JobRunner
	// Registry is nil when the in-process scheduler is disabled.
	Registry *scheduler.Registry
	Location *time.Location
}

// AdminHandler serves the admin console.
type AdminHandler struct {
	responder
	dashboard *service.Dashboard
	users     *service.UserService
	posts     *service.PostService
	questions *service.InquiryService
	customers *service.CustomerInquiryService
	schedules *service.ScheduleService
	adStats   *service.AdStatsService
	events    *service.EventService
	inventory jobs.InventorySource
	jobs      JobRunner
	registry  *scheduler.Registry
	loc       *time.Location
	now       func() time.Time
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(deps AdminDeps) *AdminHandler {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	return &AdminHandler{
		responder: responder{renderer: deps.Renderer},
		dashboard: deps.Dashboard,
		users:     deps.Users,
		posts:     deps.Posts,
		questions: deps.Questions,
		customers: deps.Customers,
		schedules: deps.Schedules,
		adStats:   deps.AdStats,
		events:    deps.Events,
		inventory: deps.Inventory,
		jobs:      deps.Jobs,
		registry:  deps.Registry,
		loc:       loc,
		now:       time.Now,
	}
}

// today returns the current time in the business time zone.
func (h *AdminHandler) today() time.Time {
	return h.now().In(h.loc)
}

// title translates an admin page heading.
func title(r *http.Request, key string) string {
	return i18n.T(middleware.GetLang(r), key)
}

// Dashboard handles GET /admin.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.Load(r.Context(), middleware.GetPrincipal(r), h.today())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.page(w, r, "admin/dashboard", render.TemplateData{
		Title: title(r, "admin.dashboard"),
		Data:  data,
	})
}
