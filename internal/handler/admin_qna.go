// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/render"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/service"
	"github.com/olegiv/heavyfix/internal/store"
	"github.com/olegiv/heavyfix/internal/uikit"
)

// QuestionsData is passed to the member question list.
type QuestionsData struct {
	Questions  []store.Inquiry
	Pagination uikit.Pagination
}

// AnswerData is passed to the answer form.
type AnswerData struct {
	Question store.Inquiry
	Answer   template.HTML
}

// CustomerInquiriesData is passed to the customer inquiry list.
type CustomerInquiriesData struct {
	Inquiries  []store.CustomerInquiry
	Status     string
	Statuses   []string
	Pending    int64
	Pagination uikit.Pagination
}

// Questions handles GET /admin/qna.
func (h *AdminHandler) Questions(w http.ResponseWriter, r *http.Request) {
	page, err := h.questions.List(r.Context(), middleware.GetPrincipal(r), paging.FromRequest(r, paging.AdminPosts))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.page(w, r, "admin/qna", render.TemplateData{
		Title: title(r, "admin.qna"),
		Data: QuestionsData{
			Questions:  page.Items,
			Pagination: uikit.BuildPagination(page.Page, page.Total, page.PageSize, redirectAdminQnA, r.URL.Query()),
		},
	})
}

// AnswerForm handles GET /admin/qna/{id}.
func (h *AdminHandler) AnswerForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	inq, err := h.questions.Get(r.Context(), middleware.GetPrincipal(r), id)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.page(w, r, "admin/qna_answer", render.TemplateData{
		Title: inq.Title,
		Data:  AnswerData{Question: inq, Answer: template.HTML(inq.Answer)},
	})
}

// Answer handles POST /admin/qna/{id}.
func (h *AdminHandler) Answer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	back := redirectAdminQnA + "/" + strconv.FormatInt(id, 10)

	var in service.AnswerInput
	if err := decodeForm(r, &in); err != nil {
		h.fail(w, r, err, back)
		return
	}
	inq, err := h.questions.Answer(r.Context(), middleware.GetPrincipal(r), id, in)
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	h.respond(w, r, result.OK(i18n.T(middleware.GetLang(r), "inquiry.answered")).
		WithRedirect(redirectAdminQnA).
		WithData(inq))
}

// CustomerInquiries handles GET /admin/inquiries?status=.
func (h *AdminHandler) CustomerInquiries(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r)
	status := r.URL.Query().Get("status")
	if status != model.InquiryStatusPending && status != model.InquiryStatusNotified {
		status = ""
	}

	page, err := h.customers.List(r.Context(), p, status, paging.FromRequest(r, paging.AdminPosts))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	pending, err := h.customers.CountPending(r.Context(), p)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.page(w, r, "admin/inquiries", render.TemplateData{
		Title: title(r, "admin.inquiries"),
		Data: CustomerInquiriesData{
			Inquiries:  page.Items,
			Status:     status,
			Statuses:   []string{model.InquiryStatusPending, model.InquiryStatusNotified},
			Pending:    pending,
			Pagination: uikit.BuildPagination(page.Page, page.Total, page.PageSize, "/admin/inquiries", r.URL.Query()),
		},
	})
}
