// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/testutil"
)

func newDashboard(f *fixture) *Dashboard {
	logger := testutil.TestLogger()
	return &Dashboard{
		Users:     NewUserService(f.db, f.events, logger),
		Posts:     NewPostService(f.db, f.events, logger),
		Customers: NewCustomerInquiryService(f.db, nil, nil, f.events, logger),
		Questions: NewInquiryService(f.db, nil, f.events, logger),
		Schedules: NewScheduleService(f.db, f.events, logger),
		Events:    f.events,
	}
}

func TestDashboardLoad(t *testing.T) {
	f := newFixture(t)
	d := newDashboard(f)
	ctx := context.Background()

	_, err := d.Customers.Receive(ctx, validPayload(), ReceiveMeta{})
	require.NoError(t, err)
	_, err = d.Questions.Ask(ctx, f.user, "user", QuestionInput{Title: "t", Question: "q"})
	require.NoError(t, err)
	_, err = d.Posts.Create(ctx, f.admin, PostInput{Kind: "notice", Title: "공지", Contents: "본문"})
	require.NoError(t, err)
	_, err = d.Schedules.Create(ctx, f.admin, ScheduleInput{Date: "2026-03-09", Region: "평택", DriverName: "김"})
	require.NoError(t, err)

	data, err := d.Load(ctx, f.admin, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 2, data.Users)
	assert.EqualValues(t, 1, data.Posts)
	assert.EqualValues(t, 1, data.PendingInquiries, "no notifier leaves the inquiry pending")
	assert.EqualValues(t, 1, data.OpenQuestions)
	assert.Len(t, data.TodaySchedules, 1)
	assert.NotEmpty(t, data.RecentEvents)

	_, err = d.Load(ctx, f.user, time.Now())
	assertCode(t, result.CodeForbidden, err)
}

func TestEventList_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.events.LogInfo(ctx, model.EventCategorySystem, "first", 0, nil)
	f.events.LogWarning(ctx, model.EventCategoryAuth, "second", f.user.UserID, map[string]any{"email": "user@example.com"})

	page, err := f.events.List(ctx, f.admin, paging.Params{Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "second", page.Items[0].Message)
	assert.Equal(t, model.EventLevelWarning, page.Items[0].Level)
	assert.JSONEq(t, `{"email":"user@example.com"}`, page.Items[0].Metadata)

	n, err := f.events.DeleteOldEvents(ctx, -time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
