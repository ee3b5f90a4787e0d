// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain types shared across heavyfix: roles,
// the post variants, inquiry kinds and statuses, and event constants.
package model

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// OAuth provider identifiers.
const (
	ProviderGoogle = "google"
	ProviderKakao  = "kakao"
)
