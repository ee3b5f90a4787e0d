// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveWithHeaders(cfg SecurityHeadersConfig, path string) http.Header {
	h := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Header()
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		isDev    bool
		wantHSTS string
	}{
		{"production sends HSTS", false, "max-age=31536000; includeSubDomains"},
		{"development omits HSTS", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := serveWithHeaders(DefaultSecurityHeadersConfig(tt.isDev), "/")

			if got := h.Get("Strict-Transport-Security"); got != tt.wantHSTS {
				t.Errorf("HSTS = %q, want %q", got, tt.wantHSTS)
			}
			if h.Get("X-Content-Type-Options") != "nosniff" {
				t.Error("X-Content-Type-Options missing")
			}
			if h.Get("X-Frame-Options") != "SAMEORIGIN" {
				t.Errorf("X-Frame-Options = %q", h.Get("X-Frame-Options"))
			}
			if h.Get("Permissions-Policy") == "" {
				t.Error("Permissions-Policy missing")
			}
		})
	}
}

func TestDefaultCSP(t *testing.T) {
	prod := DefaultSecurityHeadersConfig(false).ContentSecurityPolicy
	if !strings.HasPrefix(prod, "default-src 'self'; script-src") {
		t.Errorf("CSP should start with default-src then script-src: %q", prod)
	}
	if !strings.Contains(prod, "img-src 'self' data: blob: https:") {
		t.Errorf("CSP should allow https images: %q", prod)
	}
	if !strings.Contains(prod, "object-src 'none'") {
		t.Errorf("CSP should forbid objects: %q", prod)
	}
	if strings.Contains(prod, "unsafe-eval") {
		t.Error("production CSP must not allow unsafe-eval")
	}
	if !strings.Contains(DefaultSecurityHeadersConfig(true).ContentSecurityPolicy, "unsafe-eval") {
		t.Error("development CSP should allow unsafe-eval")
	}
}

func TestSecurityHeaders_ExcludePaths(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)
	cfg.ExcludePaths = []string{"/api/image-proxy"}

	if h := serveWithHeaders(cfg, "/api/image-proxy"); h.Get("Content-Security-Policy") != "" {
		t.Error("excluded path should not get CSP")
	}
	if h := serveWithHeaders(cfg, "/cases"); h.Get("Content-Security-Policy") == "" {
		t.Error("other paths should get CSP")
	}
}
