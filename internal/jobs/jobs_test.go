// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/erp"
	"github.com/olegiv/heavyfix/internal/metrics"
	"github.com/olegiv/heavyfix/internal/naverads"
	"github.com/olegiv/heavyfix/internal/notify"
	"github.com/olegiv/heavyfix/internal/notify/mocknotify"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/service"
	"github.com/olegiv/heavyfix/internal/testutil"
)

// Monday 2026-03-09 10:00 in Seoul.
var seoul = time.FixedZone("KST", 9*60*60)

func fixedNow() time.Time { return time.Date(2026, 3, 9, 10, 0, 0, 0, seoul) }

type fakeStats struct {
	gotDate string
	err     error
}

func (f *fakeStats) Stats(_ context.Context, date string) (naverads.DailyStat, error) {
	f.gotDate = date
	if f.err != nil {
		return naverads.DailyStat{}, f.err
	}
	return naverads.DailyStat{Date: date, Impressions: 500, Clicks: 10, Cost: 4000}, nil
}

type fakeInventory struct{ snap *erp.Snapshot }

func (f fakeInventory) Snapshot(context.Context, authz.Principal, time.Time) (*erp.Snapshot, error) {
	return f.snap, nil
}

type env struct {
	runner    *Runner
	notifier  *mocknotify.MockNotifier
	schedules *service.ScheduleService
	adStats   *service.AdStatsService
	stats     *fakeStats
	metrics   *metrics.Metrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.MemoryDB(t)
	logger := testutil.TestLogger()
	events := service.NewEventService(db, logger)
	ctrl := gomock.NewController(t)

	e := &env{
		notifier:  mocknotify.NewMockNotifier(ctrl),
		schedules: service.NewScheduleService(db, events, logger),
		adStats:   service.NewAdStatsService(db),
		stats:     &fakeStats{},
		metrics:   metrics.New(),
	}
	items := erp.Merge(erp.Catalog{
		{Code: "P-1", Name: "유압 필터", Unit: "EA", SafeQty: decimal.NewFromInt(5)},
		{Code: "P-2", Name: "버킷 핀", Unit: "EA"},
	}, []erp.Balance{{ProdCode: "P-1", Qty: decimal.NewFromInt(2)}})
	e.runner = New(Deps{
		Schedules: e.schedules,
		Inquiries: service.NewCustomerInquiryService(db, e.notifier, e.metrics, events, logger),
		Ads:       e.stats,
		AdStats:   e.adStats,
		Inventory: fakeInventory{snap: &erp.Snapshot{BaseDate: "2026-03-09", Items: items, Summary: erp.Summarize(items)}},
		Notifier:  e.notifier,
		Metrics:   e.metrics,
		Events:    events,
		Logger:    logger,
		Location:  seoul,
		Now:       fixedNow,
	})
	return e
}

func (e *env) addSchedule(t *testing.T, date, region string) {
	t.Helper()
	_, err := e.schedules.Create(context.Background(), authz.System, service.ScheduleInput{Date: date, Region: region, DriverName: "김기사"})
	require.NoError(t, err)
}

func TestNames(t *testing.T) {
	r := New(Deps{})
	assert.Equal(t, []string{DailySchedule, LowStock, NaverAds, PendingInquiries, WeeklySchedule}, r.Names())
	assert.True(t, r.Has(NaverAds))
	assert.False(t, r.Has("cleanup"))
}

func TestRun_UnknownJob(t *testing.T) {
	_, err := New(Deps{}).Run(context.Background(), "nope")
	assert.Equal(t, result.CodeValidation, result.CodeOf(err))
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestDailySchedule_UsesLocalToday(t *testing.T) {
	e := newEnv(t)
	e.addSchedule(t, "2026-03-09", "평택")
	e.addSchedule(t, "2026-03-10", "안성")

	var got notify.Message
	e.notifier.EXPECT().Notify(gomock.Any(), mocknotify.KindIs(notify.KindDailySchedule)).
		DoAndReturn(func(_ context.Context, msg notify.Message) error {
			got = msg
			return nil
		})

	data, err := e.runner.Run(context.Background(), DailySchedule)
	require.NoError(t, err)
	assert.Equal(t, DailySchedule, data["job"])
	assert.Equal(t, "2026-03-09", data["date"])
	assert.Equal(t, 1, data["schedules"])
	assert.Contains(t, got.Fallback, "평택")
	assert.NotContains(t, got.Fallback, "안성")
}

// Running the same notification job twice in one window sends twice.
// Nothing records that a day was already announced.
func TestScheduleJobs_DuplicateRunSendsTwice(t *testing.T) {
	for _, job := range []string{DailySchedule, WeeklySchedule} {
		t.Run(job, func(t *testing.T) {
			e := newEnv(t)
			e.addSchedule(t, "2026-03-09", "평택")

			e.notifier.EXPECT().Notify(gomock.Any(), mocknotify.KindIs(job)).Return(nil).Times(2)

			for range 2 {
				data, err := e.runner.Run(context.Background(), job)
				require.NoError(t, err)
				assert.Equal(t, 1, data["sent"])
			}
		})
	}
}

func TestWeeklySchedule_MondayToSunday(t *testing.T) {
	e := newEnv(t)
	e.addSchedule(t, "2026-03-08", "지난주")
	e.addSchedule(t, "2026-03-11", "수요일")
	e.addSchedule(t, "2026-03-15", "일요일")

	e.notifier.EXPECT().Notify(gomock.Any(), mocknotify.KindIs(notify.KindWeeklySchedule)).Return(nil)

	data, err := e.runner.Run(context.Background(), WeeklySchedule)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", data["from"])
	assert.Equal(t, "2026-03-15", data["to"])
	assert.Equal(t, 2, data["schedules"])
}

func TestNaverAds_UpsertsYesterday(t *testing.T) {
	e := newEnv(t)

	data, err := e.runner.Run(context.Background(), NaverAds)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-08", e.stats.gotDate)
	assert.Equal(t, 1, data["upserted"])

	_, totals, err := e.adStats.Recent(context.Background(), authz.System, 30)
	require.NoError(t, err)
	assert.EqualValues(t, 500, totals.Impressions)
	assert.Equal(t, 2.0, totals.CTR)
}

func TestLowStock_SendsSummary(t *testing.T) {
	e := newEnv(t)

	var got notify.Message
	e.notifier.EXPECT().Notify(gomock.Any(), mocknotify.KindIs(notify.KindLowStock)).
		DoAndReturn(func(_ context.Context, msg notify.Message) error {
			got = msg
			return nil
		})

	data, err := e.runner.Run(context.Background(), LowStock)
	require.NoError(t, err)
	assert.Equal(t, 1, data["low"])
	assert.Equal(t, 1, data["out"])
	assert.Contains(t, got.Fallback, "유압 필터")
	assert.Contains(t, got.Fallback, "버킷 핀")
}

func TestPendingInquiries_Sweep(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	data, err := e.runner.Run(ctx, PendingInquiries)
	require.NoError(t, err)
	assert.Equal(t, 0, data["sent"])
	assert.Equal(t, 0, data["pending"])
}

func TestRun_FailureSendsFallbackAndReturnsServer(t *testing.T) {
	e := newEnv(t)
	e.stats.err = errors.New("upstream 500")

	e.notifier.EXPECT().
		Notify(gomock.Any(), mocknotify.KindIs(notify.KindJobFailure)).
		DoAndReturn(func(_ context.Context, msg notify.Message) error {
			assert.Contains(t, msg.Text, NaverAds)
			return nil
		})

	_, err := e.runner.Run(context.Background(), NaverAds)
	require.Error(t, err)
	assert.Equal(t, result.CodeServer, result.CodeOf(err))

	rec := httptest.NewRecorder()
	e.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `heavyfix_job_runs_total{job="naver-ads",outcome="failed"} 1`)
}

func TestRun_NotificationFailureFailsJob(t *testing.T) {
	e := newEnv(t)

	gomock.InOrder(
		e.notifier.EXPECT().Notify(gomock.Any(), mocknotify.KindIs(notify.KindDailySchedule)).Return(errors.New("webhook 500")),
		e.notifier.EXPECT().Notify(gomock.Any(), mocknotify.KindIs(notify.KindJobFailure)).Return(notify.ErrDisabled),
	)

	_, err := e.runner.Run(context.Background(), DailySchedule)
	assert.Equal(t, result.CodeServer, result.CodeOf(err))
}

func TestRun_MissingIntegration(t *testing.T) {
	r := New(Deps{Logger: testutil.TestLogger()})
	for _, job := range []string{DailySchedule, NaverAds, LowStock, PendingInquiries} {
		_, err := r.Run(context.Background(), job)
		assert.ErrorIs(t, err, ErrNotConfigured, job)
	}
}
