// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// registeredJob holds metadata about a scheduled job.
type registeredJob struct {
	name     string
	schedule string
	entryID  cron.EntryID
	jobFunc  func()
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name     string
	Schedule string
	LastRun  time.Time
	NextRun  time.Time
}

// Registry tracks the jobs added to one cron instance.
type Registry struct {
	cron   *cron.Cron
	logger *slog.Logger
	mu     sync.RWMutex
	jobs   map[string]*registeredJob
}

// NewRegistry creates an empty registry over c.
func NewRegistry(c *cron.Cron, logger *slog.Logger) *Registry {
	return &Registry{
		cron:   c,
		logger: logger,
		jobs:   make(map[string]*registeredJob),
	}
}

// Register records a job after it has been added to the cron instance.
func (r *Registry) Register(name, schedule string, entryID cron.EntryID, jobFunc func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs[name] = &registeredJob{
		name:     name,
		schedule: schedule,
		entryID:  entryID,
		jobFunc:  jobFunc,
	}
	r.logger.Debug("registered scheduled job", "name", name, "schedule", schedule)
}

// List returns all registered jobs sorted by name.
func (r *Registry) List() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]JobInfo, 0, len(r.jobs))
	for _, job := range r.jobs {
		entry := r.cron.Entry(job.entryID)
		result = append(result, JobInfo{
			Name:     job.name,
			Schedule: job.schedule,
			LastRun:  entry.Prev,
			NextRun:  entry.Next,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// TriggerNow runs a registered job in the background right away.
func (r *Registry) TriggerNow(name string) error {
	r.mu.RLock()
	job, ok := r.jobs[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job not found: %s", name)
	}

	r.logger.Info("manually triggering job", "name", name)
	go job.jobFunc()
	return nil
}
