// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"time"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/store"
)

// DashboardData is the admin landing page.
type DashboardData struct {
	Users            int64
	Posts            int64
	PendingInquiries int64
	OpenQuestions    int64
	TodaySchedules   []store.Schedule
	RecentEvents     []store.Event
}

// Dashboard gathers the admin landing page from the other services.
type Dashboard struct {
	Users     *UserService
	Posts     *PostService
	Customers *CustomerInquiryService
	Questions *InquiryService
	Schedules *ScheduleService
	Events    *EventService
}

// Load returns the counts, today's schedules and the latest events.
func (d *Dashboard) Load(ctx context.Context, p authz.Principal, today time.Time) (*DashboardData, error) {
	var (
		data DashboardData
		err  error
	)
	if data.Users, err = d.Users.Count(ctx, p); err != nil {
		return nil, err
	}
	if data.Posts, err = d.Posts.Count(ctx, p); err != nil {
		return nil, err
	}
	if data.PendingInquiries, err = d.Customers.CountPending(ctx, p); err != nil {
		return nil, err
	}
	if data.OpenQuestions, err = d.Questions.CountUnanswered(ctx, p); err != nil {
		return nil, err
	}
	if data.TodaySchedules, err = d.Schedules.On(ctx, p, today); err != nil {
		return nil, err
	}
	if data.RecentEvents, err = d.Events.Recent(ctx, p, 10); err != nil {
		return nil, err
	}
	return &data, nil
}
