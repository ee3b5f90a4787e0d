// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/heavyfix/internal/session"
)

func TestLanguage(t *testing.T) {
	_, sm := newSessionDB(t)

	var got string
	h := sm.LoadAndSave(Language(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetLang(r)
	})))

	serve := func(target, accept string, cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if accept != "" {
			req.Header.Set("Accept-Language", accept)
		}
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	tests := []struct {
		name   string
		target string
		accept string
		want   string
	}{
		{"default", "/", "", "ko"},
		{"accept-language english", "/", "en-US,en;q=0.9", "en"},
		{"unsupported accept-language", "/", "fr-FR", "ko"},
		{"query wins", "/?lang=en", "ko-KR", "en"},
		{"unsupported query ignored", "/?lang=ja", "en", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serve(tt.target, tt.accept, nil)
			if got != tt.want {
				t.Errorf("lang = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("query choice is remembered", func(t *testing.T) {
		rec := serve("/?lang=en", "", nil)
		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == sm.Cookie.Name {
				cookie = c
			}
		}
		if cookie == nil {
			t.Fatal("session cookie not set")
		}

		serve("/cases", "ko-KR", cookie)
		if got != "en" {
			t.Errorf("lang = %q, want session value en", got)
		}
	})
}

func TestGetLang_WithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetLang(req); got != "ko" {
		t.Errorf("GetLang() = %q, want ko", got)
	}
	req.Header.Set("Accept-Language", "en")
	if got := GetLang(req); got != "en" {
		t.Errorf("GetLang() = %q, want en", got)
	}
}

func TestSessionLanguageKey(t *testing.T) {
	if session.KeyLanguage != "lang" {
		t.Errorf("session.KeyLanguage = %q, want lang", session.KeyLanguage)
	}
}
