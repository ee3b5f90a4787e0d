// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/logging"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/service"
	"github.com/olegiv/heavyfix/internal/session"
	"github.com/olegiv/heavyfix/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for user data.
const (
	ContextKeyUser      ContextKey = "user"
	ContextKeyPrincipal ContextKey = "principal"
)

// LoadUser creates middleware that loads the signed-in user into the
// request context together with its authz.Principal. A session pointing at
// a deleted user is destroyed and the request continues anonymously.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), session.KeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, sql.ErrNoRows) {
					slog.Error("loading session user", "user_id", userID, "error", err)
				}
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser stores user and its principal in ctx.
func WithUser(ctx context.Context, user store.User) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUser, user)
	return context.WithValue(ctx, ContextKeyPrincipal, authz.ForUser(user.ID, user.Role))
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *store.User {
	user, ok := r.Context().Value(ContextKeyUser).(store.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the current user's ID from context, or 0 if not found.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}

// GetPrincipal returns the caller's principal, authz.Anonymous when no
// user is signed in.
func GetPrincipal(r *http.Request) authz.Principal {
	if p, ok := r.Context().Value(ContextKeyPrincipal).(authz.Principal); ok {
		return p
	}
	return authz.Anonymous
}

// RequestPath stores the request path in the context for the event log handler.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logging.WithRequestPath(r.Context(), r.URL.Path)))
	})
}

// RequireAuth rejects anonymous requests: JSON clients get an Auth
// envelope, browsers are sent to the login page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r) == nil {
			denyAnonymous(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin requires the admin role. Denials are logged and, when
// events is set, recorded in the event log.
func RequireAdmin(events *service.EventService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				denyAnonymous(w, r)
				return
			}

			if !GetPrincipal(r).IsAdmin() {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
					"user_role", user.Role,
					"remote_addr", r.RemoteAddr,
				)
				if events != nil {
					events.LogWarning(r.Context(), model.EventCategoryAuth, "Access denied: admin role required", user.ID, map[string]any{
						"method":    r.Method,
						"user_role": user.Role,
					})
				}
				if WantsJSON(r) {
					WriteError(w, r, result.New(result.CodeForbidden, "admin role required"))
					return
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func denyAnonymous(w http.ResponseWriter, r *http.Request) {
	if WantsJSON(r) {
		WriteError(w, r, result.New(result.CodeAuth, "login required"))
		return
	}
	http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
}
