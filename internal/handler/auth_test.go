// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/heavyfix/internal/auth"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/render"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/session"
)

func newTestAuthHandler(t *testing.T, env *testEnv, cfg middleware.LoginProtectionConfig, oauth *auth.OAuth) *AuthHandler {
	t.Helper()
	lp := middleware.NewLoginProtection(cfg)
	t.Cleanup(lp.Close)
	return NewAuthHandler(env.renderer, env.sm, env.users, env.events, lp, oauth)
}

func loginForm(email, password, next string) url.Values {
	v := url.Values{"email": {email}, "password": {password}}
	if next != "" {
		v.Set("next", next)
	}
	return v
}

func TestAuthHandler_LoginForm(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(t, env, middleware.DefaultLoginProtectionConfig(), nil)

	t.Run("renders", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.LoginForm(w, httptest.NewRequest(http.MethodGet, "/login?next=/support/qna", nil))

		assertStatus(t, w.Code, http.StatusOK)
		if !strings.Contains(w.Body.String(), `name="password"`) {
			t.Error("login form missing password field")
		}
		if !strings.Contains(w.Body.String(), `value="/support/qna"`) {
			t.Error("login form should carry next")
		}
	})

	t.Run("signed in user is redirected", func(t *testing.T) {
		user := env.userWithPassword(t, "member@example.com", model.RoleUser, "correct-horse-1")
		w := httptest.NewRecorder()
		h.LoginForm(w, asUser(httptest.NewRequest(http.MethodGet, "/login", nil), user))

		assertStatus(t, w.Code, http.StatusSeeOther)
		assertLocation(t, w, "/")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(t, env, middleware.DefaultLoginProtectionConfig(), nil)
	admin := env.userWithPassword(t, "admin@example.com", model.RoleAdmin, "correct-horse-1")
	member := env.userWithPassword(t, "member@example.com", model.RoleUser, "correct-horse-2")

	tests := []struct {
		name     string
		form     url.Values
		wantLoc  string
		wantUser int64
		wantType string
	}{
		{"admin lands on console", loginForm("admin@example.com", "correct-horse-1", ""), "/admin", admin.ID, render.FlashSuccess},
		{"member follows next", loginForm("Member@Example.com", "correct-horse-2", "/support/qna"), "/support/qna", member.ID, render.FlashSuccess},
		{"external next ignored", loginForm("member@example.com", "correct-horse-2", "//evil.example"), "/", member.ID, render.FlashSuccess},
		{"wrong password", loginForm("member@example.com", "nope", "/support/qna"), "/login?next=%2Fsupport%2Fqna", 0, render.FlashError},
		{"unknown email", loginForm("ghost@example.com", "whatever", ""), "/login", 0, render.FlashError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := requestWithSession(env.sm, formRequest("/login", tt.form))
			w := httptest.NewRecorder()
			h.Login(w, r)

			assertStatus(t, w.Code, http.StatusSeeOther)
			assertLocation(t, w, tt.wantLoc)
			if got := env.sm.GetInt64(r.Context(), session.KeyUserID); got != tt.wantUser {
				t.Errorf("session user = %d; want %d", got, tt.wantUser)
			}
			if _, typ := flash(env.sm, r); typ != tt.wantType {
				t.Errorf("flash type = %q; want %q", typ, tt.wantType)
			}
		})
	}
}

func TestAuthHandler_Login_JSON(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(t, env, middleware.DefaultLoginProtectionConfig(), nil)
	env.userWithPassword(t, "member@example.com", model.RoleUser, "correct-horse-2")

	r := requestWithSession(env.sm, asJSON(formRequest("/login", loginForm("member@example.com", "bad", ""))))
	w := httptest.NewRecorder()
	h.Login(w, r)

	assertStatus(t, w.Code, http.StatusUnauthorized)
	if res := decodeEnvelope(t, w); res.Code != result.CodeAuth {
		t.Errorf("code = %v; want auth", res.Code)
	}
}

func TestAuthHandler_Login_Lockout(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(t, env, middleware.LoginProtectionConfig{
		MaxFailedAttempts: 2,
		LockoutDuration:   time.Minute,
	}, nil)
	env.userWithPassword(t, "member@example.com", model.RoleUser, "correct-horse-2")

	attempt := func(password string) (*httptest.ResponseRecorder, *http.Request) {
		r := requestWithSession(env.sm, asJSON(formRequest("/login", loginForm("member@example.com", password, ""))))
		w := httptest.NewRecorder()
		h.Login(w, r)
		return w, r
	}

	attempt("bad-1")
	attempt("bad-2")

	w, r := attempt("correct-horse-2")
	assertStatus(t, w.Code, http.StatusUnauthorized)
	if env.sm.GetInt64(r.Context(), session.KeyUserID) != 0 {
		t.Error("locked account must not sign in")
	}

	var events int
	if err := env.db.QueryRow(`SELECT COUNT(*) FROM events WHERE message = 'Account locked'`).Scan(&events); err != nil {
		t.Fatalf("counting events: %v", err)
	}
	if events != 1 {
		t.Errorf("lock events = %d; want 1", events)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(t, env, middleware.DefaultLoginProtectionConfig(), nil)
	user := env.userWithPassword(t, "member@example.com", model.RoleUser, "correct-horse-2")

	r := requestWithSession(env.sm, httptest.NewRequest(http.MethodPost, "/logout", nil))
	env.sm.Put(r.Context(), session.KeyUserID, user.ID)
	env.sm.Put(r.Context(), session.KeyLanguage, "en")
	r = asUser(r, user)

	w := httptest.NewRecorder()
	h.Logout(w, r)

	assertStatus(t, w.Code, http.StatusSeeOther)
	assertLocation(t, w, "/")
	if env.sm.Exists(r.Context(), session.KeyUserID) {
		t.Error("user id should be cleared")
	}
}

func TestAuthHandler_Register(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(t, env, middleware.DefaultLoginProtectionConfig(), nil)

	form := url.Values{
		"name":             {"Kim"},
		"email":            {"kim@example.com"},
		"password":         {"Str0ng-passphrase"},
		"password_confirm": {"Str0ng-passphrase"},
	}

	t.Run("creates and signs in", func(t *testing.T) {
		r := requestWithSession(env.sm, formRequest("/register", form))
		w := httptest.NewRecorder()
		h.Register(w, r)

		assertStatus(t, w.Code, http.StatusSeeOther)
		assertLocation(t, w, "/")
		if env.sm.GetInt64(r.Context(), session.KeyUserID) == 0 {
			t.Error("registered user should be signed in")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		r := requestWithSession(env.sm, asJSON(formRequest("/register", form)))
		w := httptest.NewRecorder()
		h.Register(w, r)

		assertStatus(t, w.Code, http.StatusConflict)
		if res := decodeEnvelope(t, w); res.Code != result.CodeEmailExists {
			t.Errorf("code = %v; want email exists", res.Code)
		}
	})

	t.Run("validation", func(t *testing.T) {
		bad := url.Values{"name": {""}, "email": {"not-an-email"}}
		r := requestWithSession(env.sm, formRequest("/register", bad))
		w := httptest.NewRecorder()
		h.Register(w, r)

		assertStatus(t, w.Code, http.StatusSeeOther)
		assertLocation(t, w, RouteRegister)
	})
}

func TestAuthHandler_OAuth(t *testing.T) {
	env := newTestEnv(t)

	t.Run("disabled is not found", func(t *testing.T) {
		h := newTestAuthHandler(t, env, middleware.DefaultLoginProtectionConfig(), nil)
		r := requestWithURLParams(httptest.NewRequest(http.MethodGet, "/auth/oauth/google", nil), map[string]string{"provider": "google"})
		w := httptest.NewRecorder()
		h.OAuthStart(w, r)
		assertStatus(t, w.Code, http.StatusNotFound)
	})

	oauth := auth.NewOAuth([]byte("0123456789abcdef0123456789abcdef"),
		auth.GoogleProvider("client-id", "client-secret", "http://localhost:8080/auth/oauth/google/callback"))
	h := newTestAuthHandler(t, env, middleware.DefaultLoginProtectionConfig(), oauth)

	t.Run("start redirects with state", func(t *testing.T) {
		r := requestWithSession(env.sm, httptest.NewRequest(http.MethodGet, "/auth/oauth/google", nil))
		r = requestWithURLParams(r, map[string]string{"provider": "google"})
		w := httptest.NewRecorder()
		h.OAuthStart(w, r)

		assertStatus(t, w.Code, http.StatusFound)
		loc, err := url.Parse(w.Header().Get("Location"))
		if err != nil {
			t.Fatalf("parsing Location: %v", err)
		}
		if loc.Host != "accounts.google.com" || loc.Query().Get("state") == "" {
			t.Errorf("Location = %s", loc)
		}
		if env.sm.GetString(r.Context(), session.KeyOAuthNonce) == "" {
			t.Error("nonce should be stored in the session")
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		r := requestWithSession(env.sm, httptest.NewRequest(http.MethodGet, "/auth/oauth/naver", nil))
		r = requestWithURLParams(r, map[string]string{"provider": "naver"})
		w := httptest.NewRecorder()
		h.OAuthStart(w, r)
		assertStatus(t, w.Code, http.StatusNotFound)
	})

	t.Run("callback with bad state", func(t *testing.T) {
		r := requestWithSession(env.sm, httptest.NewRequest(http.MethodGet, "/auth/oauth/google/callback?state=forged&code=x", nil))
		r = requestWithURLParams(r, map[string]string{"provider": "google"})
		env.sm.Put(r.Context(), session.KeyOAuthNonce, "nonce")
		w := httptest.NewRecorder()
		h.OAuthCallback(w, r)

		assertStatus(t, w.Code, http.StatusSeeOther)
		assertLocation(t, w, RouteLogin)
		if env.sm.Exists(r.Context(), session.KeyOAuthNonce) {
			t.Error("nonce should be single use")
		}
	})

	t.Run("callback with provider error", func(t *testing.T) {
		r := requestWithSession(env.sm, httptest.NewRequest(http.MethodGet, "/auth/oauth/google/callback?error=access_denied", nil))
		r = requestWithURLParams(r, map[string]string{"provider": "google"})
		w := httptest.NewRecorder()
		h.OAuthCallback(w, r)

		assertStatus(t, w.Code, http.StatusSeeOther)
		if _, typ := flash(env.sm, r); typ != render.FlashError {
			t.Errorf("flash type = %q; want error", typ)
		}
	})
}
