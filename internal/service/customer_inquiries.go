// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/metrics"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/notify"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/store"
)

// InquiryPayload is the body of the inbound inquiry webhook.
type InquiryPayload struct {
	Type      string `json:"type" validate:"required,oneof=부품문의 출장문의 기술문의"`
	Name      string `json:"name" validate:"required,max=100"`
	Contact   string `json:"contact" validate:"required,max=100"`
	Equipment string `json:"equipment" validate:"max=200"`
}

// Normalize trims every field.
func (in InquiryPayload) Normalize() InquiryPayload {
	return InquiryPayload{
		Type:      strings.TrimSpace(in.Type),
		Name:      strings.TrimSpace(in.Name),
		Contact:   strings.TrimSpace(in.Contact),
		Equipment: strings.TrimSpace(in.Equipment),
	}
}

// ReceiveMeta describes the inbound request for the audit event.
type ReceiveMeta struct {
	IP        string
	UserAgent string
}

// CustomerInquiryService stores inbound customer inquiries and notifies
// staff about them.
type CustomerInquiryService struct {
	queries  *store.Queries
	notifier notify.Notifier
	metrics  *metrics.Metrics
	events   *EventService
	logger   *slog.Logger
	now      func() time.Time
}

// NewCustomerInquiryService creates a new CustomerInquiryService.
func NewCustomerInquiryService(db *sql.DB, notifier notify.Notifier, m *metrics.Metrics, events *EventService, logger *slog.Logger) *CustomerInquiryService {
	return &CustomerInquiryService{
		queries:  store.New(db),
		notifier: notifier,
		metrics:  m,
		events:   events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Receive validates and stores an inquiry as pending, makes one
// notification attempt and flips the row to notified when the notifier
// reports success. A failed notification leaves the row pending and does
// not fail the call.
func (s *CustomerInquiryService) Receive(ctx context.Context, in InquiryPayload, meta ReceiveMeta) (store.CustomerInquiry, error) {
	in = in.Normalize()
	if err := validateStruct(in); err != nil {
		return store.CustomerInquiry{}, err
	}

	row, err := s.queries.CreateCustomerInquiry(ctx, store.CreateCustomerInquiryParams{
		InquiryType:  in.Type,
		CustomerName: in.Name,
		Contact:      in.Contact,
		Equipment:    in.Equipment,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return store.CustomerInquiry{}, dbError(err)
	}
	s.metrics.InquiryReceived(row.InquiryType)

	ua := useragent.Parse(meta.UserAgent)
	s.events.LogInfo(ctx, model.EventCategoryInquiry, "Customer inquiry received", 0, map[string]any{
		"inquiry_id": row.ID,
		"type":       row.InquiryType,
		"ip":         meta.IP,
		"device":     deviceClass(ua),
		"browser":    ua.Name,
	})

	if s.notifyOne(ctx, row) {
		row.Status = model.InquiryStatusNotified
	}
	return row, nil
}

// notifyOne sends the notification for row and marks it notified when the
// attempt succeeded. It reports whether the row is now notified.
func (s *CustomerInquiryService) notifyOne(ctx context.Context, row store.CustomerInquiry) bool {
	if s.notifier == nil {
		return false
	}
	if err := s.notifier.Notify(ctx, notify.NewCustomerInquiry(row)); err != nil {
		if !errors.Is(err, notify.ErrDisabled) {
			s.logger.Warn("customer inquiry notification failed", "inquiry_id", row.ID, "error", err)
		}
		return false
	}
	if err := s.queries.MarkCustomerInquiryNotified(ctx, row.ID); err != nil {
		s.logger.Error("failed to mark customer inquiry notified", "inquiry_id", row.ID, "error", err)
		return false
	}
	return true
}

// NotifyPending retries every pending inquiry once. It returns how many
// were sent and how many are still pending.
func (s *CustomerInquiryService) NotifyPending(ctx context.Context, p authz.Principal) (sent, pending int, err error) {
	if err := p.Require(authz.ViewCustomerInquiries); err != nil {
		return 0, 0, err
	}
	rows, err := s.queries.ListPendingCustomerInquiries(ctx)
	if err != nil {
		return 0, 0, dbError(err)
	}
	for _, row := range rows {
		if ctx.Err() != nil {
			return sent, len(rows) - sent, result.Wrap(result.CodeServer, ctx.Err())
		}
		if s.notifyOne(ctx, row) {
			sent++
		}
	}
	return sent, len(rows) - sent, nil
}

// List returns inquiries newest first, optionally filtered by status.
func (s *CustomerInquiryService) List(ctx context.Context, p authz.Principal, status string, params paging.Params) (*Page[store.CustomerInquiry], error) {
	if err := p.Require(authz.ViewCustomerInquiries); err != nil {
		return nil, err
	}
	if status != "" && status != model.InquiryStatusPending && status != model.InquiryStatusNotified {
		status = ""
	}
	total, err := s.queries.CountCustomerInquiries(ctx, status)
	if err != nil {
		return nil, dbError(err)
	}
	items, err := s.queries.ListCustomerInquiries(ctx, store.ListCustomerInquiriesParams{
		Status: status,
		Limit:  int64(params.Limit()),
		Offset: int64(params.Offset()),
	})
	if err != nil {
		return nil, dbError(err)
	}
	return &Page[store.CustomerInquiry]{Items: items, Total: total, Page: params.Page, PageSize: params.PageSize}, nil
}

// CountPending returns the number of pending inquiries.
func (s *CustomerInquiryService) CountPending(ctx context.Context, p authz.Principal) (int64, error) {
	if err := p.Require(authz.ViewCustomerInquiries); err != nil {
		return 0, err
	}
	n, err := s.queries.CountCustomerInquiries(ctx, model.InquiryStatusPending)
	return n, dbError(err)
}

// deviceClass reduces a parsed user agent to mobile, tablet, desktop or bot.
func deviceClass(ua useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return "bot"
	case ua.Tablet:
		return "tablet"
	case ua.Mobile:
		return "mobile"
	case ua.Desktop:
		return "desktop"
	default:
		return "unknown"
	}
}
