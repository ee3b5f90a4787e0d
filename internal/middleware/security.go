// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	// IsDevelopment disables HSTS.
	IsDevelopment bool

	// ContentSecurityPolicy is the CSP header value.
	ContentSecurityPolicy string

	// HSTSMaxAge is the Strict-Transport-Security max-age in seconds; 0 disables it.
	HSTSMaxAge int

	HSTSIncludeSubDomains bool

	// FrameOptions is "DENY", "SAMEORIGIN", or empty to omit the header.
	FrameOptions string

	ReferrerPolicy string

	PermissionsPolicy string

	// ExcludePaths are path prefixes that skip the headers.
	ExcludePaths []string
}

// cspDirective is one ordered CSP entry.
type cspDirective struct {
	name  string
	value string
}

// DefaultSecurityHeadersConfig returns the site's policy. Images may come
// from any https origin because band posts are rendered through the proxy
// and kakao/google avatars load directly.
func DefaultSecurityHeadersConfig(isDev bool) SecurityHeadersConfig {
	scriptSrc := "'self' 'unsafe-inline' https://t1.kakaocdn.net https://dapi.kakao.com"
	if isDev {
		scriptSrc += " 'unsafe-eval'"
	}

	cfg := SecurityHeadersConfig{
		IsDevelopment:  isDev,
		HSTSMaxAge:     31536000,
		FrameOptions:   "SAMEORIGIN",
		ReferrerPolicy: "strict-origin-when-cross-origin",
		ContentSecurityPolicy: buildCSP([]cspDirective{
			{"default-src", "'self'"},
			{"script-src", scriptSrc},
			{"style-src", "'self' 'unsafe-inline'"},
			{"img-src", "'self' data: blob: https:"},
			{"font-src", "'self' data:"},
			{"connect-src", "'self'"},
			{"frame-src", "'self' https://www.youtube.com https://map.kakao.com"},
			{"object-src", "'none'"},
			{"base-uri", "'self'"},
			{"form-action", "'self' https://accounts.google.com https://kauth.kakao.com"},
		}),
		PermissionsPolicy: strings.Join([]string{
			"accelerometer=()",
			"camera=()",
			"geolocation=()",
			"gyroscope=()",
			"microphone=()",
			"payment=()",
			"usb=()",
			"browsing-topics=()",
		}, ", "),
	}
	cfg.HSTSIncludeSubDomains = !isDev
	return cfg
}

func buildCSP(directives []cspDirective) string {
	parts := make([]string, 0, len(directives))
	for _, d := range directives {
		parts = append(parts, d.name+" "+d.value)
	}
	return strings.Join(parts, "; ")
}

// SecurityHeaders returns a middleware that adds security headers to responses.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	hsts := ""
	if !cfg.IsDevelopment && cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubDomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range cfg.ExcludePaths {
				if strings.HasPrefix(r.URL.Path, p) {
					next.ServeHTTP(w, r)
					return
				}
			}

			h := w.Header()
			if cfg.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			}
			if hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			if cfg.FrameOptions != "" {
				h.Set("X-Frame-Options", cfg.FrameOptions)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			if cfg.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", cfg.ReferrerPolicy)
			}
			if cfg.PermissionsPolicy != "" {
				h.Set("Permissions-Policy", cfg.PermissionsPolicy)
			}

			next.ServeHTTP(w, r)
		})
	}
}
