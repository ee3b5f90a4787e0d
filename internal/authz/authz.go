// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package authz holds the authorization context handed to every service
// call. A Principal is built once per request and checked against a
// Capability at the start of each action.
package authz

import (
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/result"
)

// Capability names a single permitted action.
type Capability string

// Capabilities.
const (
	ManageUsers           Capability = "manage_users"
	ManagePosts           Capability = "manage_posts"
	AnswerInquiries       Capability = "answer_inquiries"
	ViewCustomerInquiries Capability = "view_customer_inquiries"
	ManageSchedules       Capability = "manage_schedules"
	ViewInventory         Capability = "view_inventory"
	ViewAdStats           Capability = "view_ad_stats"
	ViewEvents            Capability = "view_events"
	AskInquiry            Capability = "ask_inquiry"
)

var roleCapabilities = map[string]map[Capability]bool{
	model.RoleAdmin: {
		ManageUsers:           true,
		ManagePosts:           true,
		AnswerInquiries:       true,
		ViewCustomerInquiries: true,
		ManageSchedules:       true,
		ViewInventory:         true,
		ViewAdStats:           true,
		ViewEvents:            true,
		AskInquiry:            true,
	},
	model.RoleUser: {
		AskInquiry: true,
	},
}

// Principal is the caller of a service operation. The zero value is an
// anonymous caller.
type Principal struct {
	UserID int64
	Role   string
}

// Anonymous is the principal of an unauthenticated request.
var Anonymous = Principal{}

// System is the principal used by scheduled jobs and inbound webhooks.
var System = Principal{Role: model.RoleAdmin}

// ForUser builds a principal from a user's id and role.
func ForUser(id int64, role string) Principal {
	return Principal{UserID: id, Role: role}
}

// Authenticated reports whether the principal is a signed-in user.
func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

// Can reports whether the principal holds capability c.
func (p Principal) Can(c Capability) bool {
	if !p.Authenticated() && p != System {
		return false
	}
	return roleCapabilities[p.Role][c]
}

// Require returns nil when the principal holds c. Otherwise it returns a
// result error: CodeAuth for anonymous callers and CodeForbidden for
// signed-in users lacking the capability.
func (p Principal) Require(c Capability) error {
	if p.Can(c) {
		return nil
	}
	if !p.Authenticated() {
		return result.New(result.CodeAuth, "sign-in required")
	}
	return result.Errorf(result.CodeForbidden, "missing capability %s", c)
}

// OwnsOr reports whether the principal is ownerID or holds capability c.
func (p Principal) OwnsOr(ownerID int64, c Capability) bool {
	return (p.Authenticated() && p.UserID == ownerID) || p.Can(c)
}
