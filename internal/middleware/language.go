// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/session"
)

// ContextKeyLanguage holds the resolved UI language code.
const ContextKeyLanguage ContextKey = "language"

// Language creates middleware that resolves the UI language.
// Priority order:
// 1. Query parameter ?lang=XX (explicit switch, saved in the session)
// 2. Session preference
// 3. Accept-Language header
// 4. i18n.DefaultLanguage
func Language(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := resolveLanguage(sm, r)
			ctx := context.WithValue(r.Context(), ContextKeyLanguage, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveLanguage(sm *scs.SessionManager, r *http.Request) string {
	if q := strings.ToLower(r.URL.Query().Get("lang")); q != "" && i18n.IsSupported(q) {
		if sm != nil {
			sm.Put(r.Context(), session.KeyLanguage, q)
		}
		return q
	}
	if sm != nil {
		if saved := sm.GetString(r.Context(), session.KeyLanguage); saved != "" && i18n.IsSupported(saved) {
			return saved
		}
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return i18n.MatchLanguage(accept)
	}
	return i18n.DefaultLanguage
}

// GetLang returns the language resolved by Language. Requests that did not
// pass through it fall back to Accept-Language, then the default.
func GetLang(r *http.Request) string {
	if lang, ok := r.Context().Value(ContextKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return i18n.MatchLanguage(accept)
	}
	return i18n.DefaultLanguage
}
