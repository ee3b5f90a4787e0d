// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/heavyfix/internal/band"
	"github.com/olegiv/heavyfix/internal/erp"
	"github.com/olegiv/heavyfix/internal/jobs"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/store"
	"github.com/olegiv/heavyfix/internal/webhook"
)

type fakeFeed struct {
	page *band.Page
	err  error
	got  paging.Params
}

func (f *fakeFeed) Page(_ context.Context, p paging.Params) (*band.Page, error) {
	f.got = p
	return f.page, f.err
}

func TestAPIHandler_Inventory(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)

	t.Run("unconfigured", func(t *testing.T) {
		h := NewAPIHandler(nil, &fakeFeed{}, env.users, time.UTC)
		w := httptest.NewRecorder()
		h.Inventory(w, asUser(httptest.NewRequest(http.MethodGet, "/api/inventory", nil), admin))

		assertStatus(t, w.Code, http.StatusServiceUnavailable)
		if res := decodeEnvelope(t, w); res.Code != result.CodeServer {
			t.Errorf("code = %v; want server", res.Code)
		}
	})

	snap := &erp.Snapshot{BaseDate: "20260302", Summary: erp.Summary{Total: 0}}
	h := NewAPIHandler(fakeInventory{snap: snap}, &fakeFeed{}, env.users, time.UTC)

	t.Run("admin", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Inventory(w, asUser(httptest.NewRequest(http.MethodGet, "/api/inventory", nil), admin))

		assertStatus(t, w.Code, http.StatusOK)
		if !strings.Contains(w.Body.String(), `"base_date":"20260302"`) {
			t.Errorf("body = %s", w.Body.String())
		}
	})

	t.Run("member", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Inventory(w, asUser(httptest.NewRequest(http.MethodGet, "/api/inventory", nil), store.User{ID: 99, Role: model.RoleUser}))

		assertStatus(t, w.Code, http.StatusForbidden)
	})
}

func TestAPIHandler_BandPosts(t *testing.T) {
	env := newTestEnv(t)

	t.Run("page", func(t *testing.T) {
		feed := &fakeFeed{page: &band.Page{
			Items:    []band.Post{{Key: "p1", Content: "Dispatch to Ulsan", Photos: []string{"/api/image-proxy?url=x"}}},
			Total:    11,
			Page:     2,
			PageSize: 10,
			Band:     "HeavyFix",
		}}
		h := NewAPIHandler(nil, feed, env.users, time.UTC)
		w := httptest.NewRecorder()
		h.BandPosts(w, httptest.NewRequest(http.MethodGet, "/api/band/posts?page=2", nil))

		assertStatus(t, w.Code, http.StatusOK)
		if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=60" {
			t.Errorf("Cache-Control = %q", cc)
		}
		var got band.Page
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Total != 11 || len(got.Items) != 1 || got.Items[0].Key != "p1" {
			t.Errorf("page = %+v", got)
		}
		if feed.got.Page != 2 || feed.got.PageSize != paging.BandPosts.PageSize {
			t.Errorf("params = %+v", feed.got)
		}
	})

	t.Run("error", func(t *testing.T) {
		h := NewAPIHandler(nil, &fakeFeed{err: result.Wrap(result.CodeServer, errors.New("band down"))}, env.users, time.UTC)
		w := httptest.NewRecorder()
		h.BandPosts(w, httptest.NewRequest(http.MethodGet, "/api/band/posts", nil))

		assertStatus(t, w.Code, http.StatusInternalServerError)
	})
}

func TestAPIHandler_Users(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)
	h := NewAPIHandler(nil, &fakeFeed{}, env.users, time.UTC)

	w := httptest.NewRecorder()
	h.Users(w, asUser(httptest.NewRequest(http.MethodGet, "/api/admin/users?page=1&pageSize=5", nil), admin))

	assertStatus(t, w.Code, http.StatusOK)
	res := decodeEnvelope(t, w)
	data, _ := res.Data.(map[string]any)
	if total, _ := data["total"].(float64); total != 1 {
		t.Errorf("data = %v", res.Data)
	}
}

func TestWebhookHandler_Inquiry(t *testing.T) {
	env := newTestEnv(t)
	const secret = "shared-secret"
	h := NewWebhookHandler(env.customers, secret)

	valid := `{"type":"부품문의","name":"Choi","contact":"010-1234-5678","equipment":"DX225"}`

	post := func(body, signature string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/webhooks/inquiry", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		if signature != "" {
			r.Header.Set(webhook.SignatureHeader, signature)
		}
		w := httptest.NewRecorder()
		h.Inquiry(w, r)
		return w
	}

	t.Run("stores pending inquiry", func(t *testing.T) {
		w := post(valid, webhook.HeaderValue([]byte(valid), secret))

		assertStatus(t, w.Code, http.StatusOK)
		res := decodeEnvelope(t, w)
		data, _ := res.Data.(map[string]any)
		if data["status"] != model.InquiryStatusPending {
			t.Errorf("data = %v", res.Data)
		}
	})

	tests := []struct {
		name     string
		body     string
		sig      string
		wantCode int
		wantRes  result.Code
	}{
		{"missing signature", valid, "", http.StatusUnauthorized, result.CodeAuth},
		{"bad signature", valid, "sha256=deadbeef", http.StatusUnauthorized, result.CodeAuth},
		{"invalid json", `{"type":`, webhook.HeaderValue([]byte(`{"type":`), secret), http.StatusUnprocessableEntity, result.CodeValidation},
		{"unknown type", `{"type":"견적","name":"Choi","contact":"010"}`, webhook.HeaderValue([]byte(`{"type":"견적","name":"Choi","contact":"010"}`), secret), http.StatusUnprocessableEntity, result.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(tt.body, tt.sig)
			assertStatus(t, w.Code, tt.wantCode)
			if res := decodeEnvelope(t, w); res.Code != tt.wantRes {
				t.Errorf("code = %v; want %v", res.Code, tt.wantRes)
			}
		})
	}

	t.Run("body too large", func(t *testing.T) {
		big := `{"name":"` + strings.Repeat("x", webhook.MaxBodyBytes) + `"}`
		w := post(big, "")
		assertStatus(t, w.Code, http.StatusUnprocessableEntity)
	})
}

func TestCronHandler_Run(t *testing.T) {
	runner := &fakeRunner{names: []string{"pending-inquiries"}, data: jobs.Data{"sent": 2, "pending": 0}}
	h := NewCronHandler(runner)

	t.Run("runs job", func(t *testing.T) {
		r := requestWithURLParams(httptest.NewRequest(http.MethodPost, "/api/cron/pending-inquiries", nil), map[string]string{"job": "pending-inquiries"})
		w := httptest.NewRecorder()
		h.Run(w, r)

		assertStatus(t, w.Code, http.StatusOK)
		res := decodeEnvelope(t, w)
		data, _ := res.Data.(map[string]any)
		if sent, _ := data["sent"].(float64); sent != 2 {
			t.Errorf("data = %v", res.Data)
		}
	})

	t.Run("unknown job", func(t *testing.T) {
		r := requestWithURLParams(httptest.NewRequest(http.MethodPost, "/api/cron/nope", nil), map[string]string{"job": "nope"})
		w := httptest.NewRecorder()
		h.Run(w, r)

		assertStatus(t, w.Code, http.StatusNotFound)
		if len(runner.ran) != 1 {
			t.Errorf("ran = %v", runner.ran)
		}
	})
}
