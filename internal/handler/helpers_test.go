// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/heavyfix/internal/auth"
	"github.com/olegiv/heavyfix/internal/jobs"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/render"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/service"
	"github.com/olegiv/heavyfix/internal/session"
	"github.com/olegiv/heavyfix/internal/store"
	"github.com/olegiv/heavyfix/internal/testutil"
	"github.com/olegiv/heavyfix/web"
)

// testEnv wires the real services over an in-memory database.
type testEnv struct {
	db        *sql.DB
	sm        *scs.SessionManager
	renderer  *render.Renderer
	events    *service.EventService
	users     *service.UserService
	posts     *service.PostService
	questions *service.InquiryService
	customers *service.CustomerInquiryService
	schedules *service.ScheduleService
	adStats   *service.AdStatsService

	adminUser *store.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.MemoryDB(t)
	sm := testSessionManager(t)
	renderer, err := render.New(render.Config{
		TemplatesFS:    web.TemplatesFS(),
		SessionManager: sm,
		Location:       time.UTC,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	logger := testutil.TestLogger()
	events := service.NewEventService(db, logger)
	return &testEnv{
		db:        db,
		sm:        sm,
		renderer:  renderer,
		events:    events,
		users:     service.NewUserService(db, events, logger),
		posts:     service.NewPostService(db, events, logger),
		questions: service.NewInquiryService(db, nil, events, logger),
		customers: service.NewCustomerInquiryService(db, nil, nil, events, logger),
		schedules: service.NewScheduleService(db, events, logger),
		adStats:   service.NewAdStatsService(db),
	}
}

// adminHandler builds the admin console with optional integrations.
func (e *testEnv) adminHandler(inventory jobs.InventorySource, runner JobRunner) *AdminHandler {
	if runner == nil {
		runner = &fakeRunner{}
	}
	return NewAdminHandler(AdminDeps{
		Renderer: e.renderer,
		Dashboard: &service.Dashboard{
			Users:     e.users,
			Posts:     e.posts,
			Customers: e.customers,
			Questions: e.questions,
			Schedules: e.schedules,
			Events:    e.events,
		},
		Users:     e.users,
		Posts:     e.posts,
		Questions: e.questions,
		Customers: e.customers,
		Schedules: e.schedules,
		AdStats:   e.adStats,
		Events:    e.events,
		Inventory: inventory,
		Jobs:      runner,
		Location:  time.UTC,
	})
}

// admin returns the environment's admin account, creating it on first use.
func (e *testEnv) admin(t *testing.T) store.User {
	t.Helper()
	if e.adminUser == nil {
		u := testutil.CreateUser(t, e.db, "admin@heavyfix.test", model.RoleAdmin)
		e.adminUser = &u
	}
	return *e.adminUser
}

// userWithPassword creates a user that can sign in with password.
func (e *testEnv) userWithPassword(t *testing.T, email, role, password string) store.User {
	t.Helper()

	u := testutil.CreateUser(t, e.db, email, role)
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := store.New(e.db).UpdateUserPassword(context.Background(), store.UpdateUserPasswordParams{
		PasswordHash: hash,
		UpdatedAt:    time.Now(),
		ID:           u.ID,
	}); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}
	u.PasswordHash = hash
	return u
}

// testSessionManager creates an in-memory session manager for testing.
func testSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	return sm
}

// fakeRunner records job runs.
type fakeRunner struct {
	names []string
	data  jobs.Data
	err   error
	ran   []string
}

func (f *fakeRunner) Names() []string { return f.names }

func (f *fakeRunner) Has(name string) bool {
	for _, n := range f.names {
		if n == name {
			return true
		}
	}
	return false
}

func (f *fakeRunner) Run(_ context.Context, name string) (jobs.Data, error) {
	f.ran = append(f.ran, name)
	return f.data, f.err
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithSession wraps a request with session context.
func requestWithSession(sm *scs.SessionManager, r *http.Request) *http.Request {
	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		return r
	}
	return r.WithContext(ctx)
}

// asUser signs the request in as u.
func asUser(r *http.Request, u store.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), u))
}

// asJSON makes the request prefer the JSON envelope.
func asJSON(r *http.Request) *http.Request {
	r.Header.Set("Accept", "application/json")
	return r
}

// formRequest builds a urlencoded POST.
func formRequest(target string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// flash returns the pending flash message of the request's session.
func flash(sm *scs.SessionManager, r *http.Request) (message, flashType string) {
	return sm.GetString(r.Context(), session.KeyFlash), sm.GetString(r.Context(), session.KeyFlashType)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) result.Result {
	t.Helper()
	var res result.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decoding envelope: %v (body %q)", err, w.Body.String())
	}
	return res
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

func assertLocation(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()
	if got := w.Header().Get("Location"); got != want {
		t.Errorf("Location = %q; want %q", got, want)
	}
}
