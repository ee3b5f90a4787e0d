// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/result"
)

// CronAuth guards the cron endpoints with "Authorization: Bearer <secret>".
// With no secret configured the endpoints answer 503 so that an unset
// variable never leaves them open.
func CronAuth(secret string) func(http.Handler) http.Handler {
	want := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(want) == 0 {
				WriteResult(w, http.StatusServiceUnavailable, result.Result{
					Code:    result.CodeServer,
					Message: i18n.T(GetLang(r), "error.unavailable"),
				})
				return
			}

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), want) != 1 {
				slog.Warn("cron request rejected", "path", r.URL.Path, "ip", ClientIP(r))
				WriteError(w, r, result.New(result.CodeAuth, "invalid cron token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
