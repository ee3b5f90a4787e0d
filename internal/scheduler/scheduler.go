// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the notification and sync jobs in-process on cron
// specs, as an alternative to an external caller hitting /api/cron/{job}.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/heavyfix/internal/jobs"
)

// DefaultJobTimeout bounds one scheduled run.
const DefaultJobTimeout = 2 * time.Minute

// JobRunner runs a job by name. Implemented by jobs.Runner.
type JobRunner interface {
	Run(ctx context.Context, name string) (jobs.Data, error)
}

// Scheduler wraps a cron instance whose entries call a JobRunner.
type Scheduler struct {
	cron     *cron.Cron
	runner   JobRunner
	registry *Registry
	logger   *slog.Logger
	timeout  time.Duration
}

// New creates a scheduler evaluating specs in loc. A job still running when
// its next tick arrives is skipped.
func New(runner JobRunner, loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return &Scheduler{
		cron:     c,
		runner:   runner,
		registry: NewRegistry(c, logger),
		logger:   logger,
		timeout:  DefaultJobTimeout,
	}
}

// Registry returns the job registry.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Add schedules job on spec. An empty spec leaves the job unscheduled.
func (s *Scheduler) Add(job, spec string) error {
	if spec == "" {
		return nil
	}
	run := func() { s.run(job) }
	entryID, err := s.cron.AddFunc(spec, run)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, job, err)
	}
	s.registry.Register(job, spec, entryID, run)
	return nil
}

func (s *Scheduler) run(job string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	// Runner logs and reports failures itself.
	if _, err := s.runner.Run(ctx, job); err != nil {
		return
	}
	s.logger.Debug("scheduled job finished", "job", job)
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
