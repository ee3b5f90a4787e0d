// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/render"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/service"
	"github.com/olegiv/heavyfix/internal/store"
	"github.com/olegiv/heavyfix/internal/uikit"
	"github.com/olegiv/heavyfix/internal/util"
)

// Counts for the home page teasers.
const (
	homeCases   = 6
	homeNotices = 5
)

// PublicHandler serves the public site pages.
type PublicHandler struct {
	responder
	posts     *service.PostService
	inquiries *service.InquiryService
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(renderer *render.Renderer, posts *service.PostService, inquiries *service.InquiryService) *PublicHandler {
	return &PublicHandler{
		responder: responder{renderer: renderer},
		posts:     posts,
		inquiries: inquiries,
	}
}

// NotFound is the router's fallback handler.
func (h *PublicHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r)
}

// HomeData is passed to the home template.
type HomeData struct {
	Cases   []model.Post
	Notices []model.Post
}

// Home handles GET /.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r)

	cases, err := h.posts.Latest(r.Context(), p, model.KindRepairCase, homeCases)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	notices, err := h.posts.Latest(r.Context(), p, model.KindNotice, homeNotices)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.page(w, r, "public/home", render.TemplateData{
		Title: i18n.T(middleware.GetLang(r), "site.name"),
		Data:  HomeData{Cases: cases, Notices: notices},
	})
}

// BusinessArea is one block of the business page.
type BusinessArea struct {
	Title       string
	Description string
	Items       []string
}

// businessAreas is the fixed content of the business page.
var businessAreas = []BusinessArea{
	{
		Title:       "중장비 정비",
		Description: "굴삭기, 로더, 크레인, 지게차 등 건설기계 전 기종의 정기 점검과 고장 수리를 수행합니다.",
		Items:       []string{"엔진 오버홀", "유압 계통 수리", "전기 및 전자 장치 진단", "하부 주행체 정비"},
	},
	{
		Title:       "출장 정비",
		Description: "현장에서 장비를 옮기기 어려울 때 정비 차량이 직접 방문합니다.",
		Items:       []string{"긴급 출장 수리", "현장 예방 점검", "정기 방문 계약"},
	},
	{
		Title:       "부품 공급",
		Description: "순정 및 호환 부품을 재고로 보유하고 있어 빠르게 공급합니다.",
		Items:       []string{"유압 실린더 씰 키트", "필터 및 소모품", "엔진 부품", "하부 부품"},
	},
	{
		Title:       "기술 상담",
		Description: "장비 이상 증상에 대한 진단과 정비 견적을 상담해 드립니다.",
		Items:       []string{"증상 진단", "정비 견적", "장비 구매 전 점검"},
	},
}

// Business handles GET /business.
func (h *PublicHandler) Business(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "public/business", render.TemplateData{
		Title: i18n.T(middleware.GetLang(r), "nav.business"),
		Data:  businessAreas,
	})
}

// CasesData is passed to the repair case listing.
type CasesData struct {
	Posts      []model.Post
	Category   string
	Categories []string
	Pagination uikit.Pagination
}

// Cases handles GET /cases.
func (h *PublicHandler) Cases(w http.ResponseWriter, r *http.Request) {
	params := paging.FromRequest(r, paging.Cases)
	category := r.URL.Query().Get("category")

	page, err := h.posts.List(r.Context(), middleware.GetPrincipal(r), model.KindRepairCase, category, params)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.page(w, r, "public/cases", render.TemplateData{
		Title: i18n.T(middleware.GetLang(r), "nav.cases"),
		Data: CasesData{
			Posts:      page.Items,
			Category:   category,
			Categories: model.RepairCategories,
			Pagination: uikit.BuildPagination(page.Page, page.Total, page.PageSize, RouteCases, r.URL.Query()),
		},
	})
}

// Case handles GET /cases/{id} and /cases/{id}/{slug}. A missing or stale
// slug redirects to the canonical URL.
func (h *PublicHandler) Case(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	post, err := h.posts.Get(r.Context(), middleware.GetPrincipal(r), id, model.KindRepairCase)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if slug := util.Slugify(post.Title); slug != "" && chi.URLParam(r, "slug") != slug {
		http.Redirect(w, r, RouteCases+"/"+strconv.FormatInt(post.ID, 10)+"/"+slug, http.StatusMovedPermanently)
		return
	}

	lang := middleware.GetLang(r)
	h.page(w, r, "public/case", render.TemplateData{
		Title: post.Title,
		Breadcrumbs: []uikit.Breadcrumb{
			{Label: i18n.T(lang, "nav.home"), URL: "/"},
			{Label: i18n.T(lang, "nav.cases"), URL: RouteCases},
			{Label: post.Title, Active: true},
		},
		Data: post,
	})
}

// SupportData is passed to the support page.
type SupportData struct {
	Notices    []model.Post
	FAQ        []service.FAQGroup
	Pagination uikit.Pagination
}

// Support handles GET /support: paged notices plus the FAQ.
func (h *PublicHandler) Support(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r)
	params := paging.FromRequest(r, paging.AdminPosts)

	notices, err := h.posts.List(r.Context(), p, model.KindNotice, "", params)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	faq, err := h.posts.FAQGroups(r.Context(), p)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.page(w, r, "public/support", render.TemplateData{
		Title: i18n.T(middleware.GetLang(r), "nav.support"),
		Data: SupportData{
			Notices:    notices.Items,
			FAQ:        faq,
			Pagination: uikit.BuildPagination(notices.Page, notices.Total, notices.PageSize, RouteSupport, r.URL.Query()),
		},
	})
}

// Notice handles GET /support/notices/{id}.
func (h *PublicHandler) Notice(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	post, err := h.posts.Get(r.Context(), middleware.GetPrincipal(r), id, model.KindNotice)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	lang := middleware.GetLang(r)
	h.page(w, r, "public/notice", render.TemplateData{
		Title: post.Title,
		Breadcrumbs: []uikit.Breadcrumb{
			{Label: i18n.T(lang, "nav.support"), URL: RouteSupport},
			{Label: post.Title, Active: true},
		},
		Data: post,
	})
}

// QnAData is passed to the member question page.
type QnAData struct {
	Questions []store.Inquiry
	Selected  *store.Inquiry
	Answer    template.HTML
}

// QnA handles GET /support/qna and GET /support/qna/{id}.
func (h *PublicHandler) QnA(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r)

	questions, err := h.inquiries.Mine(r.Context(), p)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	data := QnAData{Questions: questions}
	if chi.URLParam(r, "id") != "" {
		id, ok := parseIDParam(r)
		if !ok {
			h.notFound(w, r)
			return
		}
		inq, err := h.inquiries.Get(r.Context(), p, id)
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		data.Selected = &inq
		// answers are stored as sanitized HTML
		data.Answer = template.HTML(inq.Answer)
	}

	h.page(w, r, "public/qna", render.TemplateData{
		Title: i18n.T(middleware.GetLang(r), "nav.qna"),
		Data:  data,
	})
}

// Ask handles POST /support/qna.
func (h *PublicHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var in service.QuestionInput
	if err := decodeForm(r, &in); err != nil {
		h.fail(w, r, err, RouteQnA)
		return
	}

	author := ""
	if user := middleware.GetUser(r); user != nil {
		author = user.Name
	}
	inq, err := h.inquiries.Ask(r.Context(), middleware.GetPrincipal(r), author, in)
	if err != nil {
		h.fail(w, r, err, RouteQnA)
		return
	}

	h.respond(w, r, result.OK(i18n.T(middleware.GetLang(r), "inquiry.submitted")).
		WithRedirect(RouteQnA+"/"+strconv.FormatInt(inq.ID, 10)).
		WithData(inq))
}
