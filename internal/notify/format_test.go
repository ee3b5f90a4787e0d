// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/heavyfix/internal/erp"
	"github.com/olegiv/heavyfix/internal/store"
)

var monday = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

func blocksJSON(t *testing.T, msg Message) string {
	t.Helper()
	b, err := json.Marshal(msg.Blocks)
	require.NoError(t, err)
	return string(b)
}

func TestKoDate(t *testing.T) {
	assert.Equal(t, "3월 9일 (월)", koDate(monday))
}

func TestDailySchedule(t *testing.T) {
	msg := DailySchedule(monday, []store.Schedule{
		{ScheduleDate: "2026-03-09", Region: "평택", DriverName: "김기사", Memo: "굴삭기 유압"},
		{ScheduleDate: "2026-03-09", Region: "안성", DriverName: "이기사"},
	})

	assert.Equal(t, KindDailySchedule, msg.Kind)
	assert.Contains(t, msg.Text, "2건")
	js := blocksJSON(t, msg)
	assert.Contains(t, js, "평택 / 김기사 - 굴삭기 유압")
	assert.Contains(t, js, "안성 / 이기사")
	assert.Contains(t, msg.Fallback, "평택")
}

func TestDailySchedule_Empty(t *testing.T) {
	msg := DailySchedule(monday, nil)
	assert.Contains(t, blocksJSON(t, msg), "등록된 일정이 없습니다.")
	assert.Contains(t, msg.Text, "0건")
}

func TestWeeklySchedule_GroupsByDate(t *testing.T) {
	msg := WeeklySchedule(monday, monday.AddDate(0, 0, 6), []store.Schedule{
		{ScheduleDate: "2026-03-09", Region: "평택", DriverName: "김기사"},
		{ScheduleDate: "2026-03-09", Region: "오산", DriverName: "박기사"},
		{ScheduleDate: "2026-03-11", Region: "화성", DriverName: "김기사"},
	})

	js := blocksJSON(t, msg)
	assert.Contains(t, js, "3월 9일 (월)")
	assert.Contains(t, js, "3월 11일 (수)")
	assert.Contains(t, msg.Fallback, "[3월 9일 (월)]\n• 평택 / 김기사\n• 오산 / 박기사")
	assert.Contains(t, msg.Text, "3건")
}

func TestNewCustomerInquiry(t *testing.T) {
	msg := NewCustomerInquiry(store.CustomerInquiry{
		ID: 7, InquiryType: "부품문의", CustomerName: "홍길동", Contact: "010-1234-5678",
		CreatedAt: monday,
	})
	js := blocksJSON(t, msg)
	assert.Contains(t, js, "홍길동")
	assert.Contains(t, js, "010-1234-5678")
	assert.Contains(t, js, "#7")
	assert.Contains(t, msg.Fallback, "장비: -")
}

func TestNewQuestion(t *testing.T) {
	msg := NewQuestion(store.Inquiry{Title: "견적 문의", Question: "버킷 교체 비용?"}, "kim@example.com")
	assert.Equal(t, KindQuestion, msg.Kind)
	assert.Contains(t, blocksJSON(t, msg), "버킷 교체 비용?")
}

func TestLowStock(t *testing.T) {
	item := func(code string, qty string, st erp.Status) erp.InventoryItem {
		return erp.InventoryItem{
			Product:  erp.Product{Code: code, Name: code, Unit: "EA", SafeQty: decimal.NewFromInt(10)},
			Quantity: decimal.RequireFromString(qty),
			Status:   st,
		}
	}
	msg := LowStock(monday, []erp.InventoryItem{
		item("A", "0", erp.StatusOut),
		item("B", "3", erp.StatusLow),
		item("C", "30", erp.StatusSafe),
	})

	assert.Contains(t, msg.Text, "품절 1건, 부족 1건")
	assert.Contains(t, msg.Fallback, "A (A) 0 EA")
	assert.Contains(t, msg.Fallback, "B (B) 3 EA / 안전재고 10")
	assert.NotContains(t, msg.Fallback, "C (C)")

	none := LowStock(monday, []erp.InventoryItem{item("C", "30", erp.StatusSafe)})
	assert.Contains(t, none.Fallback, "부족한 품목이 없습니다.")
}

func TestJobFailure(t *testing.T) {
	msg := JobFailure("daily-schedule", errors.New("db locked"))
	assert.Empty(t, msg.Blocks)
	assert.Contains(t, msg.Text, "daily-schedule")
	assert.Equal(t, msg.Text, msg.Fallback)
}
