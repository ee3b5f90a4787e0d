// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/render"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/service"
	"github.com/olegiv/heavyfix/internal/uikit"
)

// PostsData is passed to the post management list.
type PostsData struct {
	Posts      []model.Post
	Kind       model.PostKind
	Kinds      []model.PostKind
	Pagination uikit.Pagination
}

// PostFormData is passed to the post editor.
type PostFormData struct {
	ID               int64
	Input            service.PostInput
	Kinds            []model.PostKind
	RepairCategories []string
	FAQCategories    []string
}

func newPostFormData(id int64, in service.PostInput) PostFormData {
	return PostFormData{
		ID:               id,
		Input:            in,
		Kinds:            model.PostKinds,
		RepairCategories: model.RepairCategories,
		FAQCategories:    model.FAQCategories,
	}
}

// postsURL is the listing for one kind.
func postsURL(kind model.PostKind) string {
	return redirectAdminPosts + "?kind=" + url.QueryEscape(string(kind))
}

// Posts handles GET /admin/posts?kind=.
func (h *AdminHandler) Posts(w http.ResponseWriter, r *http.Request) {
	kind, ok := model.ParsePostKind(r.URL.Query().Get("kind"))
	if !ok {
		kind = model.KindRepairCase
	}

	page, err := h.posts.List(r.Context(), middleware.GetPrincipal(r), kind, r.URL.Query().Get("category"), paging.FromRequest(r, paging.AdminPosts))
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.page(w, r, "admin/posts", render.TemplateData{
		Title: title(r, "admin.posts"),
		Data: PostsData{
			Posts:      page.Items,
			Kind:       kind,
			Kinds:      model.PostKinds,
			Pagination: uikit.BuildPagination(page.Page, page.Total, page.PageSize, redirectAdminPosts, r.URL.Query()),
		},
	})
}

// NewPost handles GET /admin/posts/new?kind=.
func (h *AdminHandler) NewPost(w http.ResponseWriter, r *http.Request) {
	kind, ok := model.ParsePostKind(r.URL.Query().Get("kind"))
	if !ok {
		kind = model.KindRepairCase
	}
	h.page(w, r, "admin/post_form", render.TemplateData{
		Title: title(r, "admin.posts"),
		Data:  newPostFormData(0, service.PostInput{Kind: string(kind)}),
	})
}

// CreatePost handles POST /admin/posts.
func (h *AdminHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in service.PostInput
	if err := decodeForm(r, &in); err != nil {
		h.fail(w, r, err, redirectAdminPosts+RouteSuffixNew)
		return
	}

	post, err := h.posts.Create(r.Context(), middleware.GetPrincipal(r), in)
	if err != nil {
		h.failPostForm(w, r, err, 0, in)
		return
	}
	h.respond(w, r, result.OK(i18n.T(middleware.GetLang(r), "post.saved")).
		WithRedirect(postsURL(post.Kind())).
		WithData(post))
}

// EditPost handles GET /admin/posts/{id}.
func (h *AdminHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	post, err := h.posts.Get(r.Context(), middleware.GetPrincipal(r), id, "")
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.page(w, r, "admin/post_form", render.TemplateData{
		Title: post.Title,
		Data:  newPostFormData(post.ID, service.InputFromPost(post)),
	})
}

// UpdatePost handles POST /admin/posts/{id}.
func (h *AdminHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	var in service.PostInput
	if err := decodeForm(r, &in); err != nil {
		h.fail(w, r, err, redirectAdminPosts+"/"+strconv.FormatInt(id, 10))
		return
	}

	post, err := h.posts.Update(r.Context(), middleware.GetPrincipal(r), id, in)
	if err != nil {
		h.failPostForm(w, r, err, id, in)
		return
	}
	h.respond(w, r, result.OK(i18n.T(middleware.GetLang(r), "post.saved")).
		WithRedirect(postsURL(post.Kind())).
		WithData(post))
}

// failPostForm re-renders the editor with field errors so the typed
// contents survive a validation failure.
func (h *AdminHandler) failPostForm(w http.ResponseWriter, r *http.Request, err error, id int64, in service.PostInput) {
	if middleware.WantsJSON(r) || !result.Is(err, result.CodeValidation) || isNotFound(err) {
		back := redirectAdminPosts
		if id > 0 {
			back += "/" + strconv.FormatInt(id, 10)
		}
		h.fail(w, r, err, back)
		return
	}
	status, res := middleware.ErrorResult(r, err)
	h.pageStatus(w, r, status, "admin/post_form", render.TemplateData{
		Title:     title(r, "admin.posts"),
		Flash:     res.Message,
		FlashType: render.FlashError,
		Errors:    result.FieldsOf(err),
		Data:      newPostFormData(id, in),
	})
}

// DeletePost handles POST /admin/posts/{id}/delete.
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	p := middleware.GetPrincipal(r)

	target := redirectAdminPosts
	if post, err := h.posts.Get(r.Context(), p, id, ""); err == nil {
		target = postsURL(post.Kind())
	}
	if err := h.posts.Delete(r.Context(), p, id); err != nil {
		h.fail(w, r, err, target)
		return
	}
	h.respond(w, r, result.OK(i18n.T(middleware.GetLang(r), "post.deleted")).WithRedirect(target))
}
