// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/olegiv/heavyfix/internal/service"
)

func TestSEOHandler_Sitemap(t *testing.T) {
	env := newTestEnv(t)
	h := NewSEOHandler(env.posts, "https://heavyfix.example", false)

	repair := createPost(t, env, service.PostInput{Kind: "repair-case", Title: "Crane Winch Repair", Contents: "<p>x</p>", Category: "crane"})
	notice := createPost(t, env, service.PostInput{Kind: "notice", Title: "Price update", Contents: "<p>x</p>"})
	createPost(t, env, service.PostInput{Kind: "admin-notice", Title: "Internal", Contents: "<p>x</p>"})

	w := httptest.NewRecorder()
	h.Sitemap(w, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))

	assertStatus(t, w.Code, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{
		"<loc>https://heavyfix.example/</loc>",
		"<loc>https://heavyfix.example/cases/" + strconv.FormatInt(repair.ID, 10) + "/crane-winch-repair</loc>",
		"<loc>https://heavyfix.example/support/notices/" + strconv.FormatInt(notice.ID, 10) + "</loc>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %q", want)
		}
	}
	if strings.Count(body, "<url>") != 6 {
		t.Errorf("want 4 static pages and 2 posts, got %d urls", strings.Count(body, "<url>"))
	}
}

func TestSEOHandler_Robots(t *testing.T) {
	env := newTestEnv(t)

	t.Run("production", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewSEOHandler(env.posts, "https://heavyfix.example", false).Robots(w, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))

		assertStatus(t, w.Code, http.StatusOK)
		if !strings.Contains(w.Body.String(), "Sitemap: https://heavyfix.example/sitemap.xml") {
			t.Errorf("body = %q", w.Body.String())
		}
	})

	t.Run("development", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewSEOHandler(env.posts, "http://localhost:8080", true).Robots(w, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))

		if !strings.Contains(w.Body.String(), "Disallow: /\n") {
			t.Errorf("body = %q", w.Body.String())
		}
	})
}
