// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify sends chat notifications to a Slack-compatible incoming
// webhook. Each send is attempted once with Block Kit and, on failure, once
// more as plain text. There is no queue and no backoff.
package notify

//go:generate mockgen -destination=mocknotify/mock_notifier.go -package=mocknotify github.com/olegiv/heavyfix/internal/notify Notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"github.com/olegiv/heavyfix/internal/metrics"
)

// ErrDisabled is returned when no webhook URL is configured.
var ErrDisabled = errors.New("notifications disabled")

// Message kinds, used as metric labels.
const (
	KindDailySchedule   = "daily-schedule"
	KindWeeklySchedule  = "weekly-schedule"
	KindCustomerInquiry = "customer-inquiry"
	KindQuestion        = "question"
	KindLowStock        = "low-stock"
	KindJobFailure      = "job-failure"
)

// Message is one chat notification.
type Message struct {
	Kind string
	// Text is the summary shown in push notifications and clients
	// without Block Kit support.
	Text   string
	Blocks []slack.Block
	// Fallback is sent alone when the block payload is rejected.
	// Text is used when empty.
	Fallback string
}

// Notifier delivers messages.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// SlackNotifier posts to an incoming webhook.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewSlack creates a notifier. An empty webhookURL yields a notifier that
// always returns ErrDisabled.
func NewSlack(webhookURL string, m *metrics.Metrics, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		metrics:    m,
		logger:     logger,
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *SlackNotifier) Enabled() bool {
	return n.webhookURL != ""
}

// Notify implements Notifier. It returns nil when either the block payload
// or the plain-text fallback was accepted.
func (n *SlackNotifier) Notify(ctx context.Context, msg Message) error {
	if !n.Enabled() {
		n.metrics.Notification(msg.Kind, metrics.OutcomeDisabled)
		return ErrDisabled
	}

	payload := &slack.WebhookMessage{Text: msg.Text}
	if len(msg.Blocks) > 0 {
		payload.Blocks = &slack.Blocks{BlockSet: msg.Blocks}
	}
	err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.client, payload)
	if err == nil {
		n.metrics.Notification(msg.Kind, metrics.OutcomeOK)
		return nil
	}
	n.logger.Warn("slack block message rejected, sending plain text",
		"category", "integration", "kind", msg.Kind, "error", err)

	fallback := msg.Fallback
	if fallback == "" {
		fallback = msg.Text
	}
	fbErr := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.client, &slack.WebhookMessage{
		Text: fallback,
	})
	if fbErr == nil {
		n.metrics.Notification(msg.Kind, metrics.OutcomeFallback)
		return nil
	}

	n.metrics.Notification(msg.Kind, metrics.OutcomeFailed)
	return fmt.Errorf("sending %s notification: %w", msg.Kind, errors.Join(err, fbErr))
}

var _ Notifier = (*SlackNotifier)(nil)
