// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors warnings and errors
// into the events table, where the admin console lists them.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/store"
)

type requestPathKey struct{}

// WithRequestPath stores the request path for events logged under ctx.
func WithRequestPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, requestPathKey{}, path)
}

// RequestPath returns the path stored by WithRequestPath.
func RequestPath(ctx context.Context) string {
	path, _ := ctx.Value(requestPathKey{}).(string)
	return path
}

// EventLogHandler wraps another handler and also writes records at or above
// its level to the events table.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
	attrs   []slog.Attr
}

// NewEventLogHandler forwards WARN and above to the event log.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a handler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.write(ctx, r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &EventLogHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
		attrs:   merged,
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
		attrs:   h.attrs,
	}
}

func (h *EventLogHandler) write(ctx context.Context, r slog.Record) {
	all := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	all = append(all, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		all = append(all, a)
		return true
	})

	category := ""
	var userID sql.NullInt64
	meta := make(map[string]string, len(all))
	for _, a := range all {
		switch a.Key {
		case "category":
			category = a.Value.String()
		case "user_id":
			if a.Value.Kind() == slog.KindInt64 {
				userID = sql.NullInt64{Int64: a.Value.Int64(), Valid: true}
			}
			meta[a.Key] = a.Value.String()
		default:
			meta[a.Key] = a.Value.String()
		}
	}
	if category == "" {
		category = inferCategory(r.Message)
	}
	if path := RequestPath(ctx); path != "" {
		meta["path"] = path
	}

	metadata := "{}"
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			metadata = string(b)
		}
	}

	// Background context: the request may already be cancelled.
	_ = h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  category,
		Message:   r.Message,
		UserID:    userID,
		Metadata:  metadata,
		CreatedAt: r.Time,
	})
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

func inferCategory(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") || strings.Contains(msg, "auth"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "inquiry"):
		return model.EventCategoryInquiry
	case strings.Contains(msg, "schedule"):
		return model.EventCategorySchedule
	case strings.Contains(msg, "post"):
		return model.EventCategoryPost
	case strings.Contains(msg, "user"):
		return model.EventCategoryUser
	case strings.Contains(msg, "erp") || strings.Contains(msg, "band") ||
		strings.Contains(msg, "slack") || strings.Contains(msg, "ads"):
		return model.EventCategoryIntegration
	default:
		return model.EventCategorySystem
	}
}
