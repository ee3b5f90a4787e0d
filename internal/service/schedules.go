// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/calendar"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/store"
)

// ScheduleInput is the schedule form.
type ScheduleInput struct {
	Date       string `form:"schedule_date" validate:"required,datetime=2006-01-02"`
	Region     string `form:"region" validate:"required,max=100"`
	DriverName string `form:"driver_name" validate:"required,max=50"`
	Memo       string `form:"memo" validate:"max=500"`
}

// ScheduleService manages dispatch schedules.
type ScheduleService struct {
	queries *store.Queries
	events  *EventService
	logger  *slog.Logger
	now     func() time.Time
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(db *sql.DB, events *EventService, logger *slog.Logger) *ScheduleService {
	return &ScheduleService{
		queries: store.New(db),
		events:  events,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (in ScheduleInput) normalize() ScheduleInput {
	return ScheduleInput{
		Date:       strings.TrimSpace(in.Date),
		Region:     strings.TrimSpace(in.Region),
		DriverName: strings.TrimSpace(in.DriverName),
		Memo:       strings.TrimSpace(in.Memo),
	}
}

// Between returns schedules in the inclusive date range, ordered by date.
func (s *ScheduleService) Between(ctx context.Context, p authz.Principal, from, to time.Time) ([]store.Schedule, error) {
	if err := p.Require(authz.ManageSchedules); err != nil {
		return nil, err
	}
	items, err := s.queries.ListSchedulesBetween(ctx, store.ListSchedulesBetweenParams{
		FromDate: from.Format(calendar.DateLayout),
		ToDate:   to.Format(calendar.DateLayout),
	})
	return items, dbError(err)
}

// On returns the schedules of one day.
func (s *ScheduleService) On(ctx context.Context, p authz.Principal, day time.Time) ([]store.Schedule, error) {
	return s.Between(ctx, p, day, day)
}

// Month builds the calendar grid for the month containing first, with
// every schedule shown in the grid attached.
func (s *ScheduleService) Month(ctx context.Context, p authz.Principal, first, today time.Time) (calendar.Month, error) {
	if err := p.Require(authz.ManageSchedules); err != nil {
		return calendar.Month{}, err
	}
	grid := calendar.Build(first, today, nil)
	items, err := s.Between(ctx, p, grid.GridStart(), grid.GridEnd())
	if err != nil {
		return calendar.Month{}, err
	}
	return calendar.Build(first, today, items), nil
}

// Get returns one schedule.
func (s *ScheduleService) Get(ctx context.Context, p authz.Principal, id int64) (store.Schedule, error) {
	if err := p.Require(authz.ManageSchedules); err != nil {
		return store.Schedule{}, err
	}
	sc, err := s.queries.GetSchedule(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Schedule{}, notFound("schedule")
	}
	return sc, dbError(err)
}

// Create stores a schedule.
func (s *ScheduleService) Create(ctx context.Context, p authz.Principal, in ScheduleInput) (store.Schedule, error) {
	if err := p.Require(authz.ManageSchedules); err != nil {
		return store.Schedule{}, err
	}
	in = in.normalize()
	if err := validateStruct(in); err != nil {
		return store.Schedule{}, err
	}
	sc, err := s.queries.CreateSchedule(ctx, store.CreateScheduleParams{
		ScheduleDate: in.Date,
		Region:       in.Region,
		DriverName:   in.DriverName,
		Memo:         in.Memo,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return store.Schedule{}, dbError(err)
	}
	s.events.LogInfo(ctx, model.EventCategorySchedule, "Schedule created", p.UserID, map[string]any{"schedule_id": sc.ID, "date": sc.ScheduleDate})
	return sc, nil
}

// Update replaces a schedule's fields.
func (s *ScheduleService) Update(ctx context.Context, p authz.Principal, id int64, in ScheduleInput) (store.Schedule, error) {
	if err := p.Require(authz.ManageSchedules); err != nil {
		return store.Schedule{}, err
	}
	in = in.normalize()
	if err := validateStruct(in); err != nil {
		return store.Schedule{}, err
	}
	sc, err := s.queries.UpdateSchedule(ctx, store.UpdateScheduleParams{
		ScheduleDate: in.Date,
		Region:       in.Region,
		DriverName:   in.DriverName,
		Memo:         in.Memo,
		ID:           id,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return store.Schedule{}, notFound("schedule")
	}
	if err != nil {
		return store.Schedule{}, dbError(err)
	}
	s.events.LogInfo(ctx, model.EventCategorySchedule, "Schedule updated", p.UserID, map[string]any{"schedule_id": id})
	return sc, nil
}

// Delete removes a schedule.
func (s *ScheduleService) Delete(ctx context.Context, p authz.Principal, id int64) error {
	if err := p.Require(authz.ManageSchedules); err != nil {
		return err
	}
	n, err := s.queries.DeleteSchedule(ctx, id)
	if err != nil {
		return dbError(err)
	}
	if n == 0 {
		return notFound("schedule")
	}
	s.events.LogInfo(ctx, model.EventCategorySchedule, "Schedule deleted", p.UserID, map[string]any{"schedule_id": id})
	return nil
}
