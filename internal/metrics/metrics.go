// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes Prometheus counters for notifications, inbound
// inquiries, scheduled jobs and the image proxy.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Notification outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeFailed   = "failed"
	OutcomeDisabled = "disabled"
)

// Proxy and job outcomes.
const (
	OutcomeServed    = "served"
	OutcomeForbidden = "forbidden"
	OutcomeBadInput  = "bad_request"
	OutcomeUpstream  = "upstream_error"
)

// Metrics holds the application collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	notifications *prometheus.CounterVec
	inquiries     *prometheus.CounterVec
	jobRuns       *prometheus.CounterVec
	imageProxy    *prometheus.CounterVec
}

// New registers all collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heavyfix_notifications_total",
			Help: "Chat notifications by message kind and outcome.",
		}, []string{"kind", "outcome"}),
		inquiries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heavyfix_inquiries_received_total",
			Help: "Customer inquiries accepted by the inbound webhook.",
		}, []string{"type"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heavyfix_job_runs_total",
			Help: "Scheduled job runs by job and outcome.",
		}, []string{"job", "outcome"}),
		imageProxy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heavyfix_image_proxy_requests_total",
			Help: "Image proxy requests by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.notifications,
		m.inquiries,
		m.jobRuns,
		m.imageProxy,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Notification counts one notification attempt.
func (m *Metrics) Notification(kind, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, outcome).Inc()
}

// InquiryReceived counts one stored customer inquiry.
func (m *Metrics) InquiryReceived(inquiryType string) {
	if m == nil {
		return
	}
	m.inquiries.WithLabelValues(inquiryType).Inc()
}

// JobRun counts one job run.
func (m *Metrics) JobRun(job, outcome string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
}

// ImageProxy counts one proxy request.
func (m *Metrics) ImageProxy(outcome string) {
	if m == nil {
		return
	}
	m.imageProxy.WithLabelValues(outcome).Inc()
}
