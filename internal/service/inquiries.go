// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/notify"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/store"
	"github.com/olegiv/heavyfix/internal/util"
)

// QuestionInput is the Q&A form.
type QuestionInput struct {
	Title    string `form:"title" validate:"required,max=200"`
	Question string `form:"question" validate:"required,max=5000"`
}

// AnswerInput is the admin answer form; Answer is Markdown.
type AnswerInput struct {
	Answer string `form:"answer" validate:"required,max=20000"`
}

// RenderMarkdown converts Markdown to sanitized HTML.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(htmlSanitizer.Sanitize(buf.String())), nil //nolint:gosec // sanitized above
}

// InquiryService handles the signed-in users' Q&A.
type InquiryService struct {
	queries  *store.Queries
	notifier notify.Notifier
	events   *EventService
	logger   *slog.Logger
	now      func() time.Time
}

// NewInquiryService creates a new InquiryService.
func NewInquiryService(db *sql.DB, notifier notify.Notifier, events *EventService, logger *slog.Logger) *InquiryService {
	return &InquiryService{
		queries:  store.New(db),
		notifier: notifier,
		events:   events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Ask stores a question from the caller and sends a best-effort
// notification. authorName is shown in the notification.
func (s *InquiryService) Ask(ctx context.Context, p authz.Principal, authorName string, in QuestionInput) (store.Inquiry, error) {
	if err := p.Require(authz.AskInquiry); err != nil {
		return store.Inquiry{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Question = strings.TrimSpace(in.Question)
	if err := validateStruct(in); err != nil {
		return store.Inquiry{}, err
	}

	inq, err := s.queries.CreateInquiry(ctx, store.CreateInquiryParams{
		UserID:    p.UserID,
		Title:     in.Title,
		Question:  in.Question,
		CreatedAt: s.now(),
	})
	if err != nil {
		return store.Inquiry{}, dbError(err)
	}

	if s.notifier != nil {
		if nerr := s.notifier.Notify(ctx, notify.NewQuestion(inq, authorName)); nerr != nil && !errors.Is(nerr, notify.ErrDisabled) {
			s.logger.Warn("question notification failed", "inquiry_id", inq.ID, "error", nerr)
		}
	}
	return inq, nil
}

// Mine lists the caller's own questions, newest first.
func (s *InquiryService) Mine(ctx context.Context, p authz.Principal) ([]store.Inquiry, error) {
	if err := p.Require(authz.AskInquiry); err != nil {
		return nil, err
	}
	items, err := s.queries.ListInquiriesByUser(ctx, p.UserID)
	return items, dbError(err)
}

// Get returns an inquiry visible to its owner and to admins only.
func (s *InquiryService) Get(ctx context.Context, p authz.Principal, id int64) (store.Inquiry, error) {
	if !p.Authenticated() {
		return store.Inquiry{}, result.New(result.CodeAuth, "sign-in required")
	}
	inq, err := s.queries.GetInquiry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Inquiry{}, notFound("inquiry")
	}
	if err != nil {
		return store.Inquiry{}, dbError(err)
	}
	if !p.OwnsOr(inq.UserID, authz.AnswerInquiries) {
		return store.Inquiry{}, result.New(result.CodeForbidden, "not your inquiry")
	}
	return inq, nil
}

// List returns every inquiry with unanswered ones first.
func (s *InquiryService) List(ctx context.Context, p authz.Principal, params paging.Params) (*Page[store.Inquiry], error) {
	if err := p.Require(authz.AnswerInquiries); err != nil {
		return nil, err
	}
	total, err := s.queries.CountInquiries(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	items, err := s.queries.ListInquiries(ctx, store.ListInquiriesParams{
		Limit:  int64(params.Limit()),
		Offset: int64(params.Offset()),
	})
	if err != nil {
		return nil, dbError(err)
	}
	return &Page[store.Inquiry]{Items: items, Total: total, Page: params.Page, PageSize: params.PageSize}, nil
}

// CountUnanswered returns the number of questions without an answer.
func (s *InquiryService) CountUnanswered(ctx context.Context, p authz.Principal) (int64, error) {
	if err := p.Require(authz.AnswerInquiries); err != nil {
		return 0, err
	}
	n, err := s.queries.CountUnansweredInquiries(ctx)
	return n, dbError(err)
}

// Answer renders the Markdown answer and stores it, overwriting any
// previous answer.
func (s *InquiryService) Answer(ctx context.Context, p authz.Principal, id int64, in AnswerInput) (store.Inquiry, error) {
	if err := p.Require(authz.AnswerInquiries); err != nil {
		return store.Inquiry{}, err
	}
	in.Answer = strings.TrimSpace(in.Answer)
	if err := validateStruct(in); err != nil {
		return store.Inquiry{}, err
	}
	html, err := RenderMarkdown(in.Answer)
	if err != nil {
		return store.Inquiry{}, result.Wrap(result.CodeServer, err)
	}

	inq, err := s.queries.AnswerInquiry(ctx, store.AnswerInquiryParams{
		Answer:     string(html),
		AdminID:    util.NullInt64IfPositive(p.UserID),
		AnsweredAt: util.NullTimeFromValue(s.now()),
		ID:         id,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return store.Inquiry{}, notFound("inquiry")
	}
	if err != nil {
		return store.Inquiry{}, dbError(err)
	}
	s.events.LogInfo(ctx, model.EventCategoryInquiry, "Inquiry answered", p.UserID, map[string]any{"inquiry_id": id})
	return inq, nil
}
