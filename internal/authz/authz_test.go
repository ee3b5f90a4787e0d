// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/result"
)

var adminCapabilities = []Capability{
	ManageUsers, ManagePosts, AnswerInquiries, ViewCustomerInquiries,
	ManageSchedules, ViewInventory, ViewAdStats, ViewEvents,
}

func TestAdminHoldsEveryCapability(t *testing.T) {
	p := ForUser(1, model.RoleAdmin)
	for _, c := range append(adminCapabilities, AskInquiry) {
		assert.True(t, p.Can(c), "admin should hold %s", c)
		assert.NoError(t, p.Require(c))
	}
}

func TestUserIsForbiddenFromAdminCapabilities(t *testing.T) {
	p := ForUser(2, model.RoleUser)
	assert.True(t, p.Can(AskInquiry))
	for _, c := range adminCapabilities {
		err := p.Require(c)
		assert.Equal(t, result.CodeForbidden, result.CodeOf(err), "capability %s", c)
	}
}

func TestAnonymousGetsAuthCode(t *testing.T) {
	for _, c := range append(adminCapabilities, AskInquiry) {
		err := Anonymous.Require(c)
		assert.Equal(t, result.CodeAuth, result.CodeOf(err), "capability %s", c)
	}
}

func TestUnknownRoleHoldsNothing(t *testing.T) {
	p := ForUser(3, "editor")
	assert.False(t, p.Can(AskInquiry))
	assert.Equal(t, result.CodeForbidden, result.CodeOf(p.Require(ManagePosts)))
}

func TestSystemPrincipal(t *testing.T) {
	assert.False(t, System.Authenticated())
	assert.True(t, System.Can(ViewInventory))
	assert.NoError(t, System.Require(ManageSchedules))
}

func TestOwnsOr(t *testing.T) {
	owner := ForUser(5, model.RoleUser)
	other := ForUser(6, model.RoleUser)
	admin := ForUser(1, model.RoleAdmin)

	assert.True(t, owner.OwnsOr(5, AnswerInquiries))
	assert.False(t, other.OwnsOr(5, AnswerInquiries))
	assert.True(t, admin.OwnsOr(5, AnswerInquiries))
	assert.False(t, Anonymous.OwnsOr(0, AnswerInquiries))
}
