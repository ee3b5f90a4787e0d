// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixDelete is the suffix for delete routes; HTML forms cannot send DELETE.
	RouteSuffixDelete = "/delete"
	// RouteSuffixRole is the suffix for the user role route.
	RouteSuffixRole = "/role"
	// RouteSuffixRun is the suffix for triggering a job.
	RouteSuffixRun = "/run"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteParamIDSlug is the ID plus decorative slug pattern.
	RouteParamIDSlug = "/{id}/{slug}"
	// RouteParamProvider is the OAuth provider pattern.
	RouteParamProvider = "/{provider}"
	// RouteParamJob is the job name pattern.
	RouteParamJob = "/{job}"

	RouteLogin         = "/login"
	RouteLogout        = "/logout"
	RouteRegister      = "/register"
	RouteOAuth         = "/auth/oauth"
	RouteOAuthCallback = "/auth/oauth/{provider}/callback"

	RouteBusiness = "/business"
	RouteCases    = "/cases"
	RouteSupport  = "/support"
	RouteNotices  = "/support/notices"
	RouteQnA      = "/support/qna"

	RouteAdmin      = "/admin"
	RouteUsers      = "/users"
	RoutePosts      = "/posts"
	RouteQuestions  = "/qna"
	RouteInquiries  = "/inquiries"
	RouteSchedules  = "/schedules"
	RouteInventory  = "/inventory"
	RouteAds        = "/ads"
	RouteEvents     = "/events"
	RouteJobs       = "/jobs"
	RouteUploads    = "/uploads"
	RouteImageProxy = "/api/image-proxy"
	RouteBandPosts  = "/api/band/posts"
	RouteWebhook    = "/api/webhooks/inquiry"
	RouteCron       = "/api/cron"
	RouteAPIAdmin   = "/api/admin"
	RouteAPIStock   = "/api/inventory"
)

// Admin redirect targets.
const (
	redirectAdmin          = "/admin"
	redirectAdminUsers     = "/admin/users"
	redirectAdminPosts     = "/admin/posts"
	redirectAdminQnA       = "/admin/qna"
	redirectAdminSchedules = "/admin/schedules"
	redirectAdminJobs      = "/admin/jobs"
)
