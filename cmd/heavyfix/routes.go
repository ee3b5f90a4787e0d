// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/heavyfix/internal/auth"
	"github.com/olegiv/heavyfix/internal/config"
	"github.com/olegiv/heavyfix/internal/handler"
	"github.com/olegiv/heavyfix/internal/jobs"
	"github.com/olegiv/heavyfix/internal/metrics"
	"github.com/olegiv/heavyfix/internal/middleware"
	"github.com/olegiv/heavyfix/internal/render"
	"github.com/olegiv/heavyfix/internal/scheduler"
	"github.com/olegiv/heavyfix/internal/service"
	"github.com/olegiv/heavyfix/internal/storage"
	"github.com/olegiv/heavyfix/web"
)

// services groups the domain services shared by the handlers.
type services struct {
	events    *service.EventService
	users     *service.UserService
	posts     *service.PostService
	questions *service.InquiryService
	customers *service.CustomerInquiryService
	schedules *service.ScheduleService
	adStats   *service.AdStatsService
}

type routerDeps struct {
	cfg             *config.Config
	db              *sql.DB
	sessionManager  *scs.SessionManager
	renderer        *render.Renderer
	svc             services
	oauth           *auth.OAuth
	loginProtection *middleware.LoginProtection
	inventory       jobs.InventorySource
	feed            handler.FeedPager
	proxy           http.Handler
	uploads         storage.Storage
	runner          *jobs.Runner
	registry        *scheduler.Registry
	metrics         *metrics.Metrics
	health          map[string]handler.Pinger
}

// crudHandlers defines the handler methods of an admin resource.
type crudHandlers struct {
	List     http.HandlerFunc
	NewForm  http.HandlerFunc
	Create   http.HandlerFunc
	EditForm http.HandlerFunc
	Update   http.HandlerFunc
	Delete   http.HandlerFunc
}

// registerCRUD registers GET /, GET /new, POST /, GET /{id}, POST /{id} and
// POST /{id}/delete under base. HTML forms cannot send PUT or DELETE.
func registerCRUD(r chi.Router, base string, h crudHandlers) {
	r.Get(base, h.List)
	r.Get(base+handler.RouteSuffixNew, h.NewForm)
	r.Post(base, h.Create)
	r.Get(base+handler.RouteParamID, h.EditForm)
	r.Post(base+handler.RouteParamID, h.Update)
	r.Post(base+handler.RouteParamID+handler.RouteSuffixDelete, h.Delete)
}

func newRouter(d routerDeps) http.Handler {
	cfg := d.cfg
	svc := d.svc

	publicHandler := handler.NewPublicHandler(d.renderer, svc.posts, svc.questions)
	authHandler := handler.NewAuthHandler(d.renderer, d.sessionManager, svc.users, svc.events, d.loginProtection, d.oauth)
	adminHandler := handler.NewAdminHandler(handler.AdminDeps{
		Renderer: d.renderer,
		Dashboard: &service.Dashboard{
			Users:     svc.users,
			Posts:     svc.posts,
			Customers: svc.customers,
			Questions: svc.questions,
			Schedules: svc.schedules,
			Events:    svc.events,
		},
		Users:     svc.users,
		Posts:     svc.posts,
		Questions: svc.questions,
		Customers: svc.customers,
		Schedules: svc.schedules,
		AdStats:   svc.adStats,
		Events:    svc.events,
		Inventory: d.inventory,
		Jobs:      d.runner,
		Registry:  d.registry,
		Location:  cfg.Location(),
	})
	uploadHandler := handler.NewUploadHandler(d.uploads, svc.events)
	apiHandler := handler.NewAPIHandler(d.inventory, d.feed, svc.users, cfg.Location())
	webhookHandler := handler.NewWebhookHandler(svc.customers, cfg.InquiryWebhookSecret)
	cronHandler := handler.NewCronHandler(d.runner)
	healthHandler := handler.NewHealthHandler(d.db, d.health)
	seoHandler := handler.NewSEOHandler(svc.posts, cfg.BaseURL, cfg.IsDevelopment())

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(chimw.RedirectSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)
	r.Use(d.sessionManager.LoadAndSave)
	// Machine endpoints authenticate with a signature or bearer token.
	r.Use(middleware.SkipCSRF("/api/webhooks/", "/api/cron/"))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())))
	r.Use(middleware.Language(d.sessionManager))
	r.Use(middleware.LoadUser(d.sessionManager, d.db))

	// Health and metrics
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.With(middleware.CronAuth(cfg.CronSecret)).Handle("/metrics", d.metrics.Handler())

	// Static assets are fingerprint-free, so they get a day of caching.
	static := http.StripPrefix("/static/dist/", http.FileServer(http.FS(web.StaticFS())))
	r.Handle("/static/dist/*", cacheFor(86400, static))
	if !cfg.S3Enabled() {
		uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
		r.Handle("/uploads/*", cacheFor(604800, uploads))
	}

	// Public site
	r.Get("/sitemap.xml", seoHandler.Sitemap)
	r.Get("/robots.txt", seoHandler.Robots)
	r.Get(handler.RouteRoot, publicHandler.Home)
	r.Get(handler.RouteBusiness, publicHandler.Business)
	r.Get(handler.RouteCases, publicHandler.Cases)
	r.Get(handler.RouteCases+handler.RouteParamID, publicHandler.Case)
	r.Get(handler.RouteCases+handler.RouteParamIDSlug, publicHandler.Case)
	r.Get(handler.RouteSupport, publicHandler.Support)
	r.Get(handler.RouteNotices+handler.RouteParamID, publicHandler.Notice)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get(handler.RouteQnA, publicHandler.QnA)
		r.Post(handler.RouteQnA, publicHandler.Ask)
		r.Get(handler.RouteQnA+handler.RouteParamID, publicHandler.QnA)
	})

	// Sign-in
	r.Get(handler.RouteLogin, authHandler.LoginForm)
	r.With(d.loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
	r.Post(handler.RouteLogout, authHandler.Logout)
	r.Get(handler.RouteRegister, authHandler.RegisterForm)
	r.With(middleware.PerMinute(10).Middleware()).Post(handler.RouteRegister, authHandler.Register)
	r.Get(handler.RouteOAuth+handler.RouteParamProvider, authHandler.OAuthStart)
	r.Get(handler.RouteOAuthCallback, authHandler.OAuthCallback)

	// Admin console
	r.Route(handler.RouteAdmin, func(r chi.Router) {
		r.Use(middleware.RequireAdmin(svc.events))

		r.Get(handler.RouteRoot, adminHandler.Dashboard)

		r.Get(handler.RouteUsers, adminHandler.Users)
		r.Post(handler.RouteUsers+handler.RouteParamID+handler.RouteSuffixRole, adminHandler.ChangeRole)
		r.Post(handler.RouteUsers+handler.RouteParamID+handler.RouteSuffixDelete, adminHandler.DeleteUser)

		registerCRUD(r, handler.RoutePosts, crudHandlers{
			List:     adminHandler.Posts,
			NewForm:  adminHandler.NewPost,
			Create:   adminHandler.CreatePost,
			EditForm: adminHandler.EditPost,
			Update:   adminHandler.UpdatePost,
			Delete:   adminHandler.DeletePost,
		})
		registerCRUD(r, handler.RouteSchedules, crudHandlers{
			List:     adminHandler.Schedules,
			NewForm:  adminHandler.NewSchedule,
			Create:   adminHandler.CreateSchedule,
			EditForm: adminHandler.EditSchedule,
			Update:   adminHandler.UpdateSchedule,
			Delete:   adminHandler.DeleteSchedule,
		})

		r.Get(handler.RouteQuestions, adminHandler.Questions)
		r.Get(handler.RouteQuestions+handler.RouteParamID, adminHandler.AnswerForm)
		r.Post(handler.RouteQuestions+handler.RouteParamID, adminHandler.Answer)
		r.Get(handler.RouteInquiries, adminHandler.CustomerInquiries)

		r.Get(handler.RouteInventory, adminHandler.Inventory)
		r.Get(handler.RouteAds, adminHandler.Ads)
		r.Get(handler.RouteEvents, adminHandler.Events)
		r.Get(handler.RouteJobs, adminHandler.Jobs)
		r.Post(handler.RouteJobs+handler.RouteParamJob+handler.RouteSuffixRun, adminHandler.RunJob)

		r.Post(handler.RouteUploads, uploadHandler.Upload)
	})

	// JSON API
	r.With(middleware.PerMinute(10).Middleware()).Post(handler.RouteWebhook, webhookHandler.Inquiry)
	r.With(middleware.PerMinute(120).Middleware()).Get(handler.RouteImageProxy, d.proxy.ServeHTTP)
	r.With(middleware.PerMinute(60).Middleware()).Get(handler.RouteBandPosts, apiHandler.BandPosts)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(svc.events))
		r.Get(handler.RouteAPIStock, apiHandler.Inventory)
		r.Get(handler.RouteAPIAdmin+handler.RouteUsers, apiHandler.Users)
	})
	r.Route(handler.RouteCron, func(r chi.Router) {
		r.Use(middleware.CronAuth(cfg.CronSecret))
		r.Get(handler.RouteParamJob, cronHandler.Run)
		r.Post(handler.RouteParamJob, cronHandler.Run)
	})

	r.NotFound(publicHandler.NotFound)

	return r
}

// cacheFor sets a public Cache-Control max-age on every response.
func cacheFor(seconds int, next http.Handler) http.Handler {
	value := "public, max-age=" + strconv.Itoa(seconds)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", value)
		next.ServeHTTP(w, r)
	})
}
