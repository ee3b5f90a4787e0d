// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/service"
	"github.com/olegiv/heavyfix/internal/webhook"
)

// WebhookHandler accepts customer inquiries posted by the contact form
// provider.
type WebhookHandler struct {
	customers *service.CustomerInquiryService
	secret    string
}

// NewWebhookHandler creates a new WebhookHandler. With an empty secret
// requests are accepted unsigned.
func NewWebhookHandler(customers *service.CustomerInquiryService, secret string) *WebhookHandler {
	return &WebhookHandler{customers: customers, secret: secret}
}

// Inquiry handles POST /api/webhooks/inquiry.
func (h *WebhookHandler) Inquiry(w http.ResponseWriter, r *http.Request) {
	body, err := webhook.ReadBody(r, h.secret)
	switch {
	case errors.Is(err, webhook.ErrMissingSignature), errors.Is(err, webhook.ErrInvalidSignature):
		slog.Warn("inquiry webhook rejected", "ip", middleware.ClientIP(r), "error", err)
		middleware.WriteError(w, r, result.Wrap(result.CodeAuth, err))
		return
	case errors.Is(err, webhook.ErrBodyTooLarge):
		middleware.WriteError(w, r, result.Validation(map[string]string{"body": "Payload too large"}))
		return
	case err != nil:
		middleware.WriteError(w, r, result.Wrap(result.CodeValidation, err))
		return
	}

	var in service.InquiryPayload
	if err := json.Unmarshal(body, &in); err != nil {
		middleware.WriteError(w, r, result.Validation(map[string]string{"body": "Invalid JSON"}))
		return
	}

	row, err := h.customers.Receive(r.Context(), in, service.ReceiveMeta{
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteResult(w, http.StatusOK, result.OK(i18n.T(middleware.GetLang(r), "inquiry.submitted")).
		WithData(map[string]any{"id": row.ID, "status": row.Status}))
}

// CronHandler runs jobs for the external scheduler.
type CronHandler struct {
	jobs JobRunner
}

// NewCronHandler creates a new CronHandler.
func NewCronHandler(runner JobRunner) *CronHandler {
	return &CronHandler{jobs: runner}
}

// Run handles GET /api/cron/{job}. Auth is enforced by middleware.CronAuth.
func (h *CronHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "job")
	if !h.jobs.Has(name) {
		middleware.WriteResult(w, http.StatusNotFound, result.Result{
			Code:    result.CodeValidation,
			Message: i18n.T(middleware.GetLang(r), "error.not_found"),
		})
		return
	}

	data, err := h.jobs.Run(r.Context(), name)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteResult(w, http.StatusOK, result.OK(i18n.T(middleware.GetLang(r), "job.ran")).WithData(data))
}
