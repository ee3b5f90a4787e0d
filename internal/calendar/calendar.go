// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package calendar builds the month grid of the admin schedule view.
package calendar

import (
	"fmt"
	"time"

	"github.com/olegiv/heavyfix/internal/store"
)

// DateLayout is the persisted schedule date format.
const DateLayout = "2006-01-02"

// MonthLayout is the ?month= query format.
const MonthLayout = "2006-01"

// Day is one cell of the grid.
type Day struct {
	Date      time.Time
	Key       string // YYYY-MM-DD
	InMonth   bool
	Today     bool
	Schedules []store.Schedule
}

// Month is a Sunday-first grid covering a whole month, padded with days
// from the adjacent months.
type Month struct {
	First time.Time
	Weeks [][7]Day
}

// Title returns "2026년 3월" style month heading.
func (m Month) Title() string {
	return fmt.Sprintf("%d년 %d월", m.First.Year(), int(m.First.Month()))
}

// Key returns the month as YYYY-MM.
func (m Month) Key() string { return m.First.Format(MonthLayout) }

// PrevKey returns the previous month as YYYY-MM.
func (m Month) PrevKey() string { return m.First.AddDate(0, -1, 0).Format(MonthLayout) }

// NextKey returns the next month as YYYY-MM.
func (m Month) NextKey() string { return m.First.AddDate(0, 1, 0).Format(MonthLayout) }

// GridStart returns the first day shown.
func (m Month) GridStart() time.Time { return m.Weeks[0][0].Date }

// GridEnd returns the last day shown.
func (m Month) GridEnd() time.Time { return m.Weeks[len(m.Weeks)-1][6].Date }

// ParseMonth parses YYYY-MM. An empty or invalid value yields the month
// containing now.
func ParseMonth(s string, now time.Time) time.Time {
	if t, err := time.ParseInLocation(MonthLayout, s, now.Location()); err == nil {
		return t
	}
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// Build lays out the month containing first. today marks the current day
// and schedules are attached to their cells by date.
func Build(first, today time.Time, schedules []store.Schedule) Month {
	loc := first.Location()
	first = time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	byDate := make(map[string][]store.Schedule, len(schedules))
	for _, s := range schedules {
		byDate[s.ScheduleDate] = append(byDate[s.ScheduleDate], s)
	}
	todayKey := today.In(loc).Format(DateLayout)

	m := Month{First: first}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 7) {
		var week [7]Day
		for i := range week {
			d := day.AddDate(0, 0, i)
			key := d.Format(DateLayout)
			week[i] = Day{
				Date:      d,
				Key:       key,
				InMonth:   d.Month() == first.Month(),
				Today:     key == todayKey,
				Schedules: byDate[key],
			}
		}
		m.Weeks = append(m.Weeks, week)
	}
	return m
}

// WeekBounds returns Monday and Sunday of the week containing t.
func WeekBounds(t time.Time) (monday, sunday time.Time) {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(t.Weekday()) + 6) % 7
	monday = t.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}
