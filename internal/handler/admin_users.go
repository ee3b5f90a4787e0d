// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/render"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/store"
	"github.com/olegiv/heavyfix/internal/uikit"
)

// UsersData is passed to the user management page.
type UsersData struct {
	Users      []store.User
	Roles      []string
	Pagination uikit.Pagination
}

// Users handles GET /admin/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	page, err := h.users.List(r.Context(), middleware.GetPrincipal(r), paging.FromRequest(r, paging.Users))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.page(w, r, "admin/users", render.TemplateData{
		Title: title(r, "admin.users"),
		Data: UsersData{
			Users:      page.Items,
			Roles:      []string{model.RoleAdmin, model.RoleUser},
			Pagination: uikit.BuildPagination(page.Page, page.Total, page.PageSize, redirectAdminUsers, r.URL.Query()),
		},
	})
}

// ChangeRole handles POST /admin/users/{id}/role.
func (h *AdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, result.Wrap(result.CodeValidation, err), redirectAdminUsers)
		return
	}

	user, err := h.users.ChangeRole(r.Context(), middleware.GetPrincipal(r), id, r.FormValue("role"))
	if err != nil {
		h.fail(w, r, err, redirectAdminUsers)
		return
	}
	h.respond(w, r, result.OK(i18n.T(middleware.GetLang(r), "user.role_updated")).
		WithRedirect(redirectAdminUsers).
		WithData(user))
}

// DeleteUser handles POST /admin/users/{id}/delete.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	if err := h.users.Delete(r.Context(), middleware.GetPrincipal(r), id); err != nil {
		h.fail(w, r, err, redirectAdminUsers)
		return
	}
	h.respond(w, r, result.OK(i18n.T(middleware.GetLang(r), "user.deleted")).WithRedirect(redirectAdminUsers))
}
