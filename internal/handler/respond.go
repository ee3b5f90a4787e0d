// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/render"
	"github.com/olegiv/heavyfix/internal/result"
)

// maxFormMemory bounds multipart parsing for forms and uploads.
const maxFormMemory = 12 << 20

// responder is shared by the page handlers. It bridges service results to
// either a JSON envelope or a flash message plus redirect.
type responder struct {
	renderer *render.Renderer
}

// respond writes res as a JSON envelope for JSON clients. Browsers get the
// message as a success flash and a 303 to res.Redirect.
func (rs responder) respond(w http.ResponseWriter, r *http.Request, res result.Result) {
	if middleware.WantsJSON(r) {
		middleware.WriteResult(w, http.StatusOK, res)
		return
	}
	target := res.Redirect
	if target == "" {
		target = backURL(r, "/")
	}
	rs.flashAndRedirect(w, r, target, res.Message, render.FlashSuccess)
}

// fail reports err. JSON clients get the error envelope; browsers get an
// error flash and a 303 back to back.
func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	if middleware.WantsJSON(r) {
		middleware.WriteError(w, r, err)
		return
	}
	status, res := middleware.ErrorResult(r, err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "error", err)
	}
	rs.flashAndRedirect(w, r, back, flashMessage(res), render.FlashError)
}

// flashMessage appends the offending field names of a validation envelope.
func flashMessage(res result.Result) string {
	data, ok := res.Data.(map[string]any)
	if !ok {
		return res.Message
	}
	fields, ok := data["fields"].(map[string]string)
	if !ok || len(fields) == 0 {
		return res.Message
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return res.Message + " (" + strings.Join(names, ", ") + ")"
}

// flashAndRedirect sets a flash message and redirects with 303.
func (rs responder) flashAndRedirect(w http.ResponseWriter, r *http.Request, target, message, flashType string) {
	if rs.renderer != nil && message != "" {
		rs.renderer.SetFlash(r, message, flashType)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// page renders a page template, falling back to a bare 500 when the
// template itself fails.
func (rs responder) page(w http.ResponseWriter, r *http.Request, name string, data render.TemplateData) {
	rs.pageStatus(w, r, http.StatusOK, name, data)
}

func (rs responder) pageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data render.TemplateData) {
	if err := rs.renderer.RenderStatus(w, r, status, name, data); err != nil {
		logAndInternalError(w, "failed to render template", "template", name, "error", err)
	}
}

// notFound renders the 404 page, or a Validation envelope for JSON clients.
func (rs responder) notFound(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	if middleware.WantsJSON(r) {
		middleware.WriteResult(w, http.StatusNotFound, result.Result{
			Code:    result.CodeValidation,
			Message: i18n.T(lang, "error.not_found"),
		})
		return
	}
	rs.pageStatus(w, r, http.StatusNotFound, "errors/404", render.TemplateData{
		Title: i18n.T(lang, "error.not_found"),
	})
}

// serverError renders the error page for err, or its envelope for JSON
// clients. Not-found errors from the services become a 404.
func (rs responder) serverError(w http.ResponseWriter, r *http.Request, err error) {
	if isNotFound(err) {
		rs.notFound(w, r)
		return
	}
	if middleware.WantsJSON(r) {
		middleware.WriteError(w, r, err)
		return
	}
	status, res := middleware.ErrorResult(r, err)
	if status >= http.StatusInternalServerError {
		slog.Error("page failed", "path", r.URL.Path, "error", err)
	}
	rs.pageStatus(w, r, status, "errors/error", render.TemplateData{
		Title: res.Message,
		Data:  res,
	})
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// isNotFound reports whether err wraps sql.ErrNoRows.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// parseIDParam parses the {id} URL parameter.
func parseIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// backURL returns the same-origin Referer path, or fallback.
func backURL(r *http.Request, fallback string) string {
	ref := r.Header.Get("Referer")
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return fallback
	}
	target := u.EscapedPath()
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	if !safeRedirect(target) {
		return fallback
	}
	return target
}

// safeRedirect accepts only local absolute paths.
func safeRedirect(target string) bool {
	return strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.HasPrefix(target, "/\\")
}

// decodeForm parses the request form into the string fields of dst that
// carry a `form` tag.
func decodeForm(r *http.Request, dst any) error {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return result.Wrap(result.CodeValidation, err)
	}

	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" || v.Field(i).Kind() != reflect.String {
			continue
		}
		v.Field(i).SetString(r.FormValue(name))
	}
	return nil
}

// formValues flattens the submitted form for re-rendering.
func formValues(r *http.Request) map[string]string {
	values := make(map[string]string, len(r.Form))
	for k := range r.Form {
		values[k] = r.Form.Get(k)
	}
	return values
}
