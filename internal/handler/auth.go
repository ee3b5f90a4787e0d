// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/heavyfix/internal/auth"
	"github.com/olegiv/heavyfix/internal/i18n"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/render"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/service"
	"github.com/olegiv/heavyfix/internal/session"
	"github.com/olegiv/heavyfix/internal/store"
)

// AuthHandler handles login, logout, registration and OAuth sign-in.
type AuthHandler struct {
	responder
	sm              *scs.SessionManager
	users           *service.UserService
	events          *service.EventService
	loginProtection *middleware.LoginProtection
	oauth           *auth.OAuth
}

// NewAuthHandler creates a new AuthHandler. oauth may be nil when no
// provider is configured.
func NewAuthHandler(renderer *render.Renderer, sm *scs.SessionManager, users *service.UserService, events *service.EventService, lp *middleware.LoginProtection, oauth *auth.OAuth) *AuthHandler {
	return &AuthHandler{
		responder:       responder{renderer: renderer},
		sm:              sm,
		users:           users,
		events:          events,
		loginProtection: lp,
		oauth:           oauth,
	}
}

// LoginData is passed to the login template.
type LoginData struct {
	Next      string
	Email     string
	Providers []string
}

// LoginForm handles GET /login.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, nextURL(r.URL.Query().Get("next"), "/"), http.StatusSeeOther)
		return
	}
	h.page(w, r, "auth/login", render.TemplateData{
		Title: i18n.T(middleware.GetLang(r), "nav.login"),
		Data:  LoginData{Next: r.URL.Query().Get("next"), Providers: h.providers()},
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, result.Wrap(result.CodeValidation, err), RouteLogin)
		return
	}
	email := r.FormValue("email")
	password := r.FormValue("password")
	next := r.FormValue("next")
	back := loginURL(next)

	if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
		h.fail(w, r, result.New(result.CodeAuth, i18n.T(lang, "auth.locked", minutes(remaining))), back)
		return
	}

	user, err := h.users.Authenticate(r.Context(), email, password)
	if err != nil {
		if !result.Is(err, result.CodeAuth) {
			h.fail(w, r, err, back)
			return
		}
		meta := map[string]any{"email": email, "ip": middleware.ClientIP(r)}
		if locked, d := h.loginProtection.RecordFailedAttempt(email); locked {
			h.events.LogWarning(r.Context(), model.EventCategoryAuth, "Account locked", 0, meta)
			h.fail(w, r, result.New(result.CodeAuth, i18n.T(lang, "auth.locked", minutes(d))), back)
			return
		}
		h.events.LogWarning(r.Context(), model.EventCategoryAuth, "Login failed", 0, meta)
		h.fail(w, r, result.New(result.CodeAuth, i18n.T(lang, "auth.login_failed")), back)
		return
	}

	h.loginProtection.RecordSuccessfulLogin(email)
	if !h.signIn(w, r, user) {
		return
	}
	h.events.LogInfo(r.Context(), model.EventCategoryAuth, "User logged in", user.ID, map[string]any{"ip": middleware.ClientIP(r)})

	fallback := "/"
	if user.Role == model.RoleAdmin {
		fallback = redirectAdmin
	}
	h.respond(w, r, result.OK(i18n.T(lang, "auth.welcome", user.Name)).WithRedirect(nextURL(next, fallback)))
}

// signIn rotates the session token and stores the user id.
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, user store.User) bool {
	if err := h.sm.RenewToken(r.Context()); err != nil {
		slog.Error("failed to renew session token", "error", err)
		h.fail(w, r, result.Wrap(result.CodeServer, err), RouteLogin)
		return false
	}
	h.sm.Put(r.Context(), session.KeyUserID, user.ID)
	return true
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if user := middleware.GetUser(r); user != nil {
		h.events.LogInfo(r.Context(), model.EventCategoryAuth, "User logged out", user.ID, nil)
	}
	lang := middleware.GetLang(r)
	if err := h.sm.Destroy(r.Context()); err != nil {
		slog.Error("failed to destroy session", "error", err)
	}
	h.sm.Put(r.Context(), session.KeyLanguage, lang)
	h.respond(w, r, result.OK(i18n.T(lang, "auth.logged_out")).WithRedirect("/"))
}

// RegisterForm handles GET /register.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "auth/register", render.TemplateData{
		Title: i18n.T(middleware.GetLang(r), "nav.register"),
		Data:  LoginData{Providers: h.providers()},
	})
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeForm(r, &in); err != nil {
		h.fail(w, r, err, RouteRegister)
		return
	}

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, RouteRegister)
		return
	}
	if !h.signIn(w, r, user) {
		return
	}
	h.respond(w, r, result.OK(i18n.T(middleware.GetLang(r), "auth.registered")).WithRedirect("/"))
}

// OAuthStart handles GET /auth/oauth/{provider}.
func (h *AuthHandler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		h.notFound(w, r)
		return
	}
	provider := chi.URLParam(r, "provider")

	nonce, err := auth.NewNonce()
	if err != nil {
		h.fail(w, r, result.Wrap(result.CodeServer, err), RouteLogin)
		return
	}
	target, err := h.oauth.AuthCodeURL(provider, nonce)
	if errors.Is(err, auth.ErrUnknownProvider) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, r, result.Wrap(result.CodeServer, err), RouteLogin)
		return
	}

	h.sm.Put(r.Context(), session.KeyOAuthNonce, nonce)
	http.Redirect(w, r, target, http.StatusFound)
}

// OAuthCallback handles GET /auth/oauth/{provider}/callback.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		h.notFound(w, r)
		return
	}
	lang := middleware.GetLang(r)
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()
	nonce := h.sm.PopString(r.Context(), session.KeyOAuthNonce)

	failed := func(err error) {
		slog.Warn("oauth sign-in failed", "provider", provider, "error", err)
		h.events.LogWarning(r.Context(), model.EventCategoryAuth, "OAuth sign-in failed", 0,
			map[string]any{"provider": provider, "error": err.Error()})
		h.fail(w, r, result.New(result.CodeAuth, i18n.T(lang, "auth.oauth_failed")), RouteLogin)
	}

	if e := q.Get("error"); e != "" {
		failed(errors.New(e))
		return
	}
	if err := h.oauth.VerifyState(q.Get("state"), provider, nonce); err != nil {
		failed(err)
		return
	}
	identity, err := h.oauth.Exchange(r.Context(), provider, q.Get("code"))
	if err != nil {
		failed(err)
		return
	}
	user, err := h.users.ResolveOAuth(r.Context(), identity)
	if err != nil {
		failed(err)
		return
	}
	if !h.signIn(w, r, user) {
		return
	}
	h.events.LogInfo(r.Context(), model.EventCategoryAuth, "User logged in", user.ID, map[string]any{"provider": provider})
	h.respond(w, r, result.OK(i18n.T(lang, "auth.welcome", user.Name)).WithRedirect("/"))
}

func (h *AuthHandler) providers() []string {
	if h.oauth == nil {
		return nil
	}
	return h.oauth.Enabled()
}

// nextURL returns next when it is a local path, otherwise fallback.
func nextURL(next, fallback string) string {
	if next == "" || !safeRedirect(next) {
		return fallback
	}
	return next
}

func loginURL(next string) string {
	if next == "" || !safeRedirect(next) {
		return RouteLogin
	}
	return RouteLogin + "?next=" + url.QueryEscape(next)
}

// minutes rounds a lockout up to whole minutes.
func minutes(d time.Duration) int {
	return int(math.Ceil(d.Minutes()))
}
