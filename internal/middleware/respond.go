// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/result"
)

// WantsJSON reports whether the client expects a JSON envelope instead of
// an HTML page or redirect.
func WantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// WriteResult writes res as JSON with the given status.
func WriteResult(w http.ResponseWriter, status int, res result.Result) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("encoding result", "error", err)
	}
}

// ErrorResult converts err into a localized envelope and its HTTP status.
// Field messages travel in data.fields. The detail message is only exposed
// for client-side codes; server and database failures stay generic.
func ErrorResult(r *http.Request, err error) (int, result.Result) {
	code := result.CodeOf(err)
	res := result.Result{Code: code, Message: i18n.T(GetLang(r), code.MessageKey())}

	data := map[string]any{}
	if fields := result.FieldsOf(err); len(fields) > 0 {
		data["fields"] = fields
	}
	if msg := result.MessageOf(err); msg != "" && code != result.CodeServer && code != result.CodeDB {
		data["detail"] = msg
	}
	if len(data) > 0 {
		res.Data = data
	}
	return code.HTTPStatus(), res
}

// WriteError writes err as a JSON envelope. Server-side failures are logged.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, res := ErrorResult(r, err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", res.Code.String(),
			"error", err,
		)
	}
	WriteResult(w, status, res)
}
