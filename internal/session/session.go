// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the SQLite-backed session manager.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys.
const (
	KeyUserID     = "user_id"
	KeyOAuthNonce = "oauth_nonce"
	KeyFlash      = "flash"
	KeyFlashType  = "flash_type"
	KeyLanguage   = "lang"
)

// Lifetimes.
const (
	Lifetime    = 24 * time.Hour
	IdleTimeout = 2 * time.Hour
)

// New creates a session manager stored in the sessions table.
// Production cookies use the __Host- prefix and require HTTPS.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = Lifetime
	sm.IdleTimeout = IdleTimeout
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}
