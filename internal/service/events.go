// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/store"
	"github.com/olegiv/heavyfix/internal/util"
)

// EventService records and lists audit events.
type EventService struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB, logger *slog.Logger) *EventService {
	return &EventService{
		queries: store.New(db),
		logger:  logger,
	}
}

// LogEvent creates a new event log entry. Failures are logged, never
// returned, so auditing cannot fail the action being audited.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID int64, metadata map[string]any) {
	if s == nil {
		return
	}
	metadataJSON := "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}
	err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    util.NullInt64IfPositive(userID),
		Metadata:  metadataJSON,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to log event", "error", err, "message", message)
	}
}

// LogInfo logs an info-level event.
func (s *EventService) LogInfo(ctx context.Context, category, message string, userID int64, metadata map[string]any) {
	s.LogEvent(ctx, model.EventLevelInfo, category, message, userID, metadata)
}

// LogWarning logs a warning-level event.
func (s *EventService) LogWarning(ctx context.Context, category, message string, userID int64, metadata map[string]any) {
	s.LogEvent(ctx, model.EventLevelWarning, category, message, userID, metadata)
}

// List returns the event log newest first.
func (s *EventService) List(ctx context.Context, p authz.Principal, params paging.Params) (*Page[store.Event], error) {
	if err := p.Require(authz.ViewEvents); err != nil {
		return nil, err
	}
	total, err := s.queries.CountEvents(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	items, err := s.queries.ListEvents(ctx, store.ListEventsParams{
		Limit:  int64(params.Limit()),
		Offset: int64(params.Offset()),
	})
	if err != nil {
		return nil, dbError(err)
	}
	return &Page[store.Event]{Items: items, Total: total, Page: params.Page, PageSize: params.PageSize}, nil
}

// Recent returns the latest n events for the dashboard.
func (s *EventService) Recent(ctx context.Context, p authz.Principal, n int) ([]store.Event, error) {
	page, err := s.List(ctx, p, paging.Params{Page: 1, PageSize: n})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// DeleteOldEvents removes events older than olderThan.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.queries.DeleteEventsBefore(ctx, time.Now().UTC().Add(-olderThan))
	return n, dbError(err)
}
