// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render executes the embedded html/template pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/session"
	"github.com/olegiv/heavyfix/internal/store"
	"github.com/olegiv/heavyfix/internal/uikit"
	"github.com/olegiv/heavyfix/internal/util"
)

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

const (
	baseLayout  = "layouts/base.html"
	adminLayout = "layouts/admin.html"
)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	loc            *time.Location
	isDev          bool
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	Location       *time.Location
	IsDev          bool
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		loc:            cfg.Location,
		isDev:          cfg.IsDev,
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses every page directory. Admin pages are nested in the
// admin layout; every other page only gets the base layout.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := templateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	for _, dir := range []string{"public", "auth", "admin", "errors"} {
		pages, err := templateFiles(templatesFS, dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", dir, err)
		}

		for _, tmplPath := range pages {
			name := dir + "/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

			files := []string{baseLayout}
			if dir == "admin" {
				files = append(files, adminLayout)
			}
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}

	return nil
}

// templateFiles returns all .html files in a directory. A missing directory
// yields no files.
func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		return nil, nil
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// templateFuncs returns the shared uikit helpers plus translation and post
// variant accessors.
func (r *Renderer) templateFuncs() template.FuncMap {
	funcs := uikit.TemplateFuncs(r.loc)
	funcs["T"] = func(lang, key string, args ...any) string {
		return i18n.T(lang, key, args...)
	}
	funcs["postCategory"] = func(body model.PostBody) string {
		_, category, _ := model.PostColumns(body)
		return category
	}
	funcs["slugify"] = util.Slugify
	funcs["postCompany"] = func(body model.PostBody) string {
		_, _, company := model.PostColumns(body)
		return company
	}
	return funcs
}

// Has reports whether a page template is registered.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Lang        string
	User        *store.User
	IsAdmin     bool
	CurrentPath string
	Flash       string
	FlashType   string
	CurrentYear int
	Breadcrumbs []uikit.Breadcrumb
	Data        any
	Form        map[string]string
	Errors      map[string]string
}

// Render renders a template with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a template with the given status code. The page is
// executed into a buffer first so a template error never leaves a partial
// response behind.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().In(r.loc).Year()
	data.CurrentPath = req.URL.Path
	if data.Lang == "" {
		data.Lang = middleware.GetLang(req)
	}
	if user := middleware.GetUser(req); user != nil {
		data.User = user
		data.IsAdmin = user.Role == model.RoleAdmin
	}

	if r.sessionManager != nil {
		if flash := r.popString(req, session.KeyFlash); flash != "" {
			data.Flash = flash
			data.FlashType = r.popString(req, session.KeyFlashType)
			if data.FlashType == "" {
				data.FlashType = FlashInfo
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("writing rendered page", "template", name, "error", err)
	}
	return nil
}

// popString reads and removes a session value. Requests that bypassed the
// session middleware have no session data, which scs reports by panicking.
func (r *Renderer) popString(req *http.Request, key string) (value string) {
	defer func() {
		if rec := recover(); rec != nil {
			value = ""
		}
	}()
	return r.sessionManager.PopString(req.Context(), key)
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), session.KeyFlash, message)
		r.sessionManager.Put(req.Context(), session.KeyFlashType, flashType)
	}
}
