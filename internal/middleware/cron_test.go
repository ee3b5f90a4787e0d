// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/heavyfix/internal/result"
)

func TestCronAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		secret   string
		header   string
		wantCode int
		wantRes  result.Code
	}{
		{"valid token", "s3cret", "Bearer s3cret", http.StatusOK, result.CodeSuccess},
		{"wrong token", "s3cret", "Bearer nope", http.StatusUnauthorized, result.CodeAuth},
		{"missing header", "s3cret", "", http.StatusUnauthorized, result.CodeAuth},
		{"basic scheme", "s3cret", "Basic s3cret", http.StatusUnauthorized, result.CodeAuth},
		{"prefix of secret", "s3cret", "Bearer s3c", http.StatusUnauthorized, result.CodeAuth},
		{"unset secret disables", "", "Bearer ", http.StatusServiceUnavailable, result.CodeServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cron/daily-schedule", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			CronAuth(tt.secret)(ok).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				if res := decodeResult(t, rec); res.Code != tt.wantRes {
					t.Errorf("code = %v, want %v", res.Code, tt.wantRes)
				}
			}
		})
	}
}
