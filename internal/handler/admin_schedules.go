// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/olegiv/heavyfix/internal/calendar"
	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/render"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/service"
)

// ScheduleFormData is passed to the schedule editor.
type ScheduleFormData struct {
	ID    int64
	Input service.ScheduleInput
}

// scheduleMonthURL is the calendar for the month of a YYYY-MM-DD date.
func scheduleMonthURL(date string) string {
	if t, err := time.Parse(calendar.DateLayout, date); err == nil {
		return redirectAdminSchedules + "?month=" + t.Format(calendar.MonthLayout)
	}
	return redirectAdminSchedules
}

// Schedules handles GET /admin/schedules?month=YYYY-MM.
func (h *AdminHandler) Schedules(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	first := calendar.ParseMonth(r.URL.Query().Get("month"), today)

	month, err := h.schedules.Month(r.Context(), middleware.GetPrincipal(r), first, today)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.page(w, r, "admin/schedules", render.TemplateData{
		Title: title(r, "admin.schedules"),
		Data:  month,
	})
}

// NewSchedule handles GET /admin/schedules/new?date=YYYY-MM-DD.
func (h *AdminHandler) NewSchedule(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := time.Parse(calendar.DateLayout, date); err != nil {
		date = h.today().Format(calendar.DateLayout)
	}
	h.page(w, r, "admin/schedule_form", render.TemplateData{
		Title: title(r, "admin.schedules"),
		Data:  ScheduleFormData{Input: service.ScheduleInput{Date: date}},
	})
}

// CreateSchedule handles POST /admin/schedules.
func (h *AdminHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var in service.ScheduleInput
	if err := decodeForm(r, &in); err != nil {
		h.fail(w, r, err, redirectAdminSchedules+RouteSuffixNew)
		return
	}

	sc, err := h.schedules.Create(r.Context(), middleware.GetPrincipal(r), in)
	if err != nil {
		h.fail(w, r, err, redirectAdminSchedules+RouteSuffixNew+"?date="+url.QueryEscape(in.Date))
		return
	}
	h.respond(w, r, result.OK(i18n.T(middleware.GetLang(r), "schedule.saved")).
		WithRedirect(scheduleMonthURL(sc.ScheduleDate)).
		WithData(sc))
}

// EditSchedule handles GET /admin/schedules/{id}.
func (h *AdminHandler) EditSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	sc, err := h.schedules.Get(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.page(w, r, "admin/schedule_form", render.TemplateData{
		Title: title(r, "admin.schedules"),
		Data: ScheduleFormData{
			ID: sc.ID,
			Input: service.ScheduleInput{
				Date:       sc.ScheduleDate,
				Region:     sc.Region,
				DriverName: sc.DriverName,
				Memo:       sc.Memo,
			},
		},
	})
}

// UpdateSchedule handles POST /admin/schedules/{id}.
func (h *AdminHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	back := redirectAdminSchedules + "/" + strconv.FormatInt(id, 10)

	var in service.ScheduleInput
	if err := decodeForm(r, &in); err != nil {
		h.fail(w, r, err, back)
		return
	}
	sc, err := h.schedules.Update(r.Context(), middleware.GetPrincipal(r), id, in)
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	h.respond(w, r, result.OK(i18n.T(middleware.GetLang(r), "schedule.saved")).
		WithRedirect(scheduleMonthURL(sc.ScheduleDate)).
		WithData(sc))
}

// DeleteSchedule handles POST /admin/schedules/{id}/delete.
func (h *AdminHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	p := middleware.GetPrincipal(r)

	target := redirectAdminSchedules
	if sc, err := h.schedules.Get(r.Context(), p, id); err == nil {
		target = scheduleMonthURL(sc.ScheduleDate)
	}
	if err := h.schedules.Delete(r.Context(), p, id); err != nil {
		h.fail(w, r, err, target)
		return
	}
	h.respond(w, r, result.OK(i18n.T(middleware.GetLang(r), "schedule.deleted")).WithRedirect(target))
}
