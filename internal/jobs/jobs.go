// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package jobs implements the scheduled notification and sync jobs. The
// same Runner serves the bearer-guarded cron endpoints and the in-process
// scheduler.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/calendar"
	"github.com/olegiv/heavyfix/internal/erp"
	"github.com/olegiv/heavyfix/internal/metrics"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/naverads"
	"github.com/olegiv/heavyfix/internal/notify"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/service"
	"github.com/olegiv/heavyfix/internal/store"
)

// Job names, used in /api/cron/{job} and as metric labels.
const (
	DailySchedule    = "daily-schedule"
	WeeklySchedule   = "weekly-schedule"
	PendingInquiries = "pending-inquiries"
	NaverAds         = "naver-ads"
	LowStock         = "low-stock"
)

// ErrUnknownJob is returned by Run for a name that is not registered.
var ErrUnknownJob = errors.New("unknown job")

// ErrNotConfigured is returned when a job's integration is missing.
var ErrNotConfigured = errors.New("integration not configured")

// Data is the job result returned in the response envelope.
type Data map[string]any

// ScheduleSource lists dispatch schedules.
type ScheduleSource interface {
	Between(ctx context.Context, p authz.Principal, from, to time.Time) ([]store.Schedule, error)
}

// PendingSender retries pending customer inquiries.
type PendingSender interface {
	NotifyPending(ctx context.Context, p authz.Principal) (sent, pending int, err error)
}

// StatsFetcher fetches one day of search-ad statistics.
type StatsFetcher interface {
	Stats(ctx context.Context, date string) (naverads.DailyStat, error)
}

// StatsStore persists daily ad statistics.
type StatsStore interface {
	Upsert(ctx context.Context, p authz.Principal, stat naverads.DailyStat) (store.NaverAdsStat, error)
}

// InventorySource takes an ERP snapshot.
type InventorySource interface {
	Snapshot(ctx context.Context, p authz.Principal, today time.Time) (*erp.Snapshot, error)
}

// Deps are the collaborators of the jobs. Nil integrations make their
// job fail with ErrNotConfigured.
type Deps struct {
	Schedules ScheduleSource
	Inquiries PendingSender
	Ads       StatsFetcher
	AdStats   StatsStore
	Inventory InventorySource
	Notifier  notify.Notifier
	Metrics   *metrics.Metrics
	Events    *service.EventService
	Logger    *slog.Logger
	Location  *time.Location
	Now       func() time.Time
}

type jobFunc func(ctx context.Context, today time.Time) (Data, error)

// Runner runs jobs by name.
type Runner struct {
	deps Deps
	jobs map[string]jobFunc
}

// New creates a Runner with every job registered.
func New(deps Deps) *Runner {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	r := &Runner{deps: deps}
	r.jobs = map[string]jobFunc{
		DailySchedule:    r.dailySchedule,
		WeeklySchedule:   r.weeklySchedule,
		PendingInquiries: r.pendingInquiries,
		NaverAds:         r.naverAds,
		LowStock:         r.lowStock,
	}
	return r
}

// Names returns the registered job names, sorted.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is a registered job.
func (r *Runner) Has(name string) bool {
	_, ok := r.jobs[name]
	return ok
}

// Run executes one job. A failure is logged, recorded as an event and
// reported through a best-effort fallback notification, and comes back
// as a Server result error.
func (r *Runner) Run(ctx context.Context, name string) (Data, error) {
	job, ok := r.jobs[name]
	if !ok {
		return nil, &result.Error{Code: result.CodeValidation, Message: "unknown job: " + name, Err: ErrUnknownJob}
	}

	today := r.deps.Now().In(r.deps.Location)
	start := time.Now()
	data, err := job(ctx, today)
	if err != nil {
		r.fail(ctx, name, err)
		return nil, &result.Error{Code: result.CodeServer, Message: "job " + name + " failed", Err: err}
	}

	r.deps.Metrics.JobRun(name, metrics.OutcomeOK)
	r.deps.Logger.Info("job completed", "job", name, "duration_ms", time.Since(start).Milliseconds())
	data["job"] = name
	return data, nil
}

func (r *Runner) fail(ctx context.Context, name string, err error) {
	r.deps.Metrics.JobRun(name, metrics.OutcomeFailed)
	r.deps.Logger.Error("job failed", "job", name, "error", err)
	r.deps.Events.LogEvent(ctx, model.EventLevelError, model.EventCategorySystem, "Scheduled job failed: "+name, 0, map[string]any{
		"job":   name,
		"error": err.Error(),
	})
	if r.deps.Notifier == nil {
		return
	}
	if nerr := r.deps.Notifier.Notify(ctx, notify.JobFailure(name, err)); nerr != nil && !errors.Is(nerr, notify.ErrDisabled) {
		r.deps.Logger.Warn("job failure notification failed", "job", name, "error", nerr)
	}
}

func (r *Runner) notify(ctx context.Context, msg notify.Message) error {
	if r.deps.Notifier == nil {
		return notify.ErrDisabled
	}
	if err := r.deps.Notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("sending %s: %w", msg.Kind, err)
	}
	return nil
}

// dailySchedule sends today's schedules. Running it twice sends twice.
func (r *Runner) dailySchedule(ctx context.Context, today time.Time) (Data, error) {
	if r.deps.Schedules == nil {
		return nil, ErrNotConfigured
	}
	items, err := r.deps.Schedules.Between(ctx, authz.System, today, today)
	if err != nil {
		return nil, err
	}
	if err := r.notify(ctx, notify.DailySchedule(today, items)); err != nil {
		return nil, err
	}
	return Data{"date": today.Format(calendar.DateLayout), "schedules": len(items), "sent": 1}, nil
}

// weeklySchedule sends Monday to Sunday of the current week.
func (r *Runner) weeklySchedule(ctx context.Context, today time.Time) (Data, error) {
	if r.deps.Schedules == nil {
		return nil, ErrNotConfigured
	}
	monday, sunday := calendar.WeekBounds(today)
	items, err := r.deps.Schedules.Between(ctx, authz.System, monday, sunday)
	if err != nil {
		return nil, err
	}
	if err := r.notify(ctx, notify.WeeklySchedule(monday, sunday, items)); err != nil {
		return nil, err
	}
	return Data{
		"from":      monday.Format(calendar.DateLayout),
		"to":        sunday.Format(calendar.DateLayout),
		"schedules": len(items),
		"sent":      1,
	}, nil
}

func (r *Runner) pendingInquiries(ctx context.Context, _ time.Time) (Data, error) {
	if r.deps.Inquiries == nil {
		return nil, ErrNotConfigured
	}
	sent, pending, err := r.deps.Inquiries.NotifyPending(ctx, authz.System)
	if err != nil {
		return nil, err
	}
	return Data{"sent": sent, "pending": pending}, nil
}

// naverAds stores yesterday's totals; today's numbers are still moving.
func (r *Runner) naverAds(ctx context.Context, today time.Time) (Data, error) {
	if r.deps.Ads == nil || r.deps.AdStats == nil {
		return nil, ErrNotConfigured
	}
	date := today.AddDate(0, 0, -1).Format(calendar.DateLayout)
	stat, err := r.deps.Ads.Stats(ctx, date)
	if err != nil {
		return nil, err
	}
	row, err := r.deps.AdStats.Upsert(ctx, authz.System, stat)
	if err != nil {
		return nil, err
	}
	return Data{
		"date":        row.StatDate,
		"upserted":    1,
		"impressions": row.Impressions,
		"clicks":      row.Clicks,
		"cost":        row.Cost,
	}, nil
}

func (r *Runner) lowStock(ctx context.Context, today time.Time) (Data, error) {
	if r.deps.Inventory == nil {
		return nil, ErrNotConfigured
	}
	snap, err := r.deps.Inventory.Snapshot(ctx, authz.System, today)
	if err != nil {
		return nil, err
	}
	if err := r.notify(ctx, notify.LowStock(today, snap.Items)); err != nil {
		return nil, err
	}
	return Data{"date": snap.BaseDate, "low": snap.Summary.Low, "out": snap.Summary.Out, "sent": 1}, nil
}
