// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/olegiv/heavyfix/internal/erp"
	"github.com/olegiv/heavyfix/internal/store"
)

const dateLayout = "2006-01-02"

var weekdays = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// koDate renders 2026-03-09 as "3월 9일 (월)".
func koDate(t time.Time) string {
	return fmt.Sprintf("%d월 %d일 (%s)", int(t.Month()), t.Day(), weekdays[t.Weekday()])
}

func header(text string) slack.Block {
	return slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, text, true, false))
}

func section(markdown string) slack.Block {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, markdown, false, false), nil, nil)
}

func fields(pairs ...string) slack.Block {
	var fs []*slack.TextBlockObject
	for i := 0; i+1 < len(pairs); i += 2 {
		fs = append(fs, slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*%s*\n%s", pairs[i], pairs[i+1]), false, false))
	}
	return slack.NewSectionBlock(nil, fs, nil)
}

func contextLine(text string) slack.Block {
	return slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, text, false, false))
}

func scheduleLine(s store.Schedule) string {
	line := fmt.Sprintf("• %s / %s", s.Region, s.DriverName)
	if s.Memo != "" {
		line += " - " + s.Memo
	}
	return line
}

// DailySchedule lists one day's dispatches. An empty list still produces a
// message saying there is nothing scheduled.
func DailySchedule(date time.Time, schedules []store.Schedule) Message {
	title := fmt.Sprintf("📅 오늘의 출장 일정 - %s", koDate(date))

	var body strings.Builder
	for _, s := range schedules {
		body.WriteString(scheduleLine(s))
		body.WriteString("\n")
	}
	text := strings.TrimSpace(body.String())
	if len(schedules) == 0 {
		text = "등록된 일정이 없습니다."
	}

	return Message{
		Kind: KindDailySchedule,
		Text: fmt.Sprintf("%s: %d건", title, len(schedules)),
		Blocks: []slack.Block{
			header(title),
			section(text),
			contextLine(fmt.Sprintf("총 %d건", len(schedules))),
		},
		Fallback: title + "\n" + text,
	}
}

// WeeklySchedule lists a week's dispatches grouped by date in ascending
// order. Days without schedules are omitted.
func WeeklySchedule(from, to time.Time, schedules []store.Schedule) Message {
	title := fmt.Sprintf("🗓️ 주간 출장 일정 - %s ~ %s", koDate(from), koDate(to))

	blocks := []slack.Block{header(title)}
	var fallback strings.Builder
	fallback.WriteString(title)

	if len(schedules) == 0 {
		blocks = append(blocks, section("등록된 일정이 없습니다."))
		fallback.WriteString("\n등록된 일정이 없습니다.")
	}

	var current string
	var day strings.Builder
	flush := func() {
		if current == "" {
			return
		}
		label := current
		if d, err := time.Parse(dateLayout, current); err == nil {
			label = koDate(d)
		}
		blocks = append(blocks, slack.NewDividerBlock(), section(fmt.Sprintf("*%s*\n%s", label, strings.TrimSpace(day.String()))))
		fallback.WriteString("\n[" + label + "]\n" + strings.TrimSpace(day.String()))
		day.Reset()
	}
	for _, s := range schedules {
		if s.ScheduleDate != current {
			flush()
			current = s.ScheduleDate
		}
		day.WriteString(scheduleLine(s))
		day.WriteString("\n")
	}
	flush()

	blocks = append(blocks, contextLine(fmt.Sprintf("총 %d건", len(schedules))))
	return Message{
		Kind:     KindWeeklySchedule,
		Text:     fmt.Sprintf("%s: %d건", title, len(schedules)),
		Blocks:   blocks,
		Fallback: fallback.String(),
	}
}

// NewCustomerInquiry announces an inquiry received through the webhook.
func NewCustomerInquiry(ci store.CustomerInquiry) Message {
	equipment := ci.Equipment
	if equipment == "" {
		equipment = "-"
	}
	title := fmt.Sprintf("📞 새 고객 문의 [%s]", ci.InquiryType)
	return Message{
		Kind: KindCustomerInquiry,
		Text: fmt.Sprintf("%s %s", title, ci.CustomerName),
		Blocks: []slack.Block{
			header(title),
			fields(
				"고객명", ci.CustomerName,
				"연락처", ci.Contact,
				"장비", equipment,
				"문의유형", ci.InquiryType,
			),
			contextLine(fmt.Sprintf("접수번호 #%d · %s", ci.ID, ci.CreatedAt.Format("2006-01-02 15:04"))),
		},
		Fallback: fmt.Sprintf("%s\n고객명: %s\n연락처: %s\n장비: %s", title, ci.CustomerName, ci.Contact, equipment),
	}
}

// NewQuestion announces a Q&A question from a signed-in user.
func NewQuestion(q store.Inquiry, author string) Message {
	title := "💬 새 1:1 문의"
	return Message{
		Kind: KindQuestion,
		Text: fmt.Sprintf("%s: %s", title, q.Title),
		Blocks: []slack.Block{
			header(title),
			fields("작성자", author, "제목", q.Title),
			section(">>> " + q.Question),
		},
		Fallback: fmt.Sprintf("%s\n%s (%s)", title, q.Title, author),
	}
}

// LowStock summarizes items that are low or out of stock. Safe items are
// skipped.
func LowStock(date time.Time, items []erp.InventoryItem) Message {
	title := fmt.Sprintf("📦 재고 부족 알림 - %s", koDate(date))

	var out, low []string
	for _, it := range items {
		line := fmt.Sprintf("• %s (%s) %s %s", it.Name, it.Code, it.Quantity.String(), it.Unit)
		switch it.Status {
		case erp.StatusOut:
			out = append(out, line)
		case erp.StatusLow:
			low = append(low, line+fmt.Sprintf(" / 안전재고 %s", it.SafeQty.String()))
		}
	}

	blocks := []slack.Block{header(title)}
	fallback := title
	if len(out) == 0 && len(low) == 0 {
		blocks = append(blocks, section("부족한 품목이 없습니다."))
		fallback += "\n부족한 품목이 없습니다."
	}
	if len(out) > 0 {
		text := strings.Join(out, "\n")
		blocks = append(blocks, section("*🔴 품절*\n"+text))
		fallback += "\n[품절]\n" + text
	}
	if len(low) > 0 {
		text := strings.Join(low, "\n")
		blocks = append(blocks, section("*🟡 부족*\n"+text))
		fallback += "\n[부족]\n" + text
	}

	return Message{
		Kind:     KindLowStock,
		Text:     fmt.Sprintf("%s: 품절 %d건, 부족 %d건", title, len(out), len(low)),
		Blocks:   blocks,
		Fallback: fallback,
	}
}

// JobFailure is a plain-text alert for a failed scheduled job.
func JobFailure(job string, err error) Message {
	text := fmt.Sprintf("⚠️ 예약 작업 실패: %s (%v)", job, err)
	return Message{Kind: KindJobFailure, Text: text, Fallback: text}
}
