// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"bytes"
	"database/sql"
	"html/template"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var seoul = time.FixedZone("KST", 9*60*60)

func TestFormatDate_Locales(t *testing.T) {
	funcs := TemplateFuncs(seoul)
	formatDate := funcs["formatDate"].(func(any, string) string)
	formatDateTime := funcs["formatDateTime"].(func(any, string) string)

	// 2025-03-15 23:30 UTC is already the 16th in Seoul.
	ts := time.Date(2025, time.March, 15, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ko date", formatDate(ts, "ko"), "2025년 3월 16일"},
		{"en date", formatDate(ts, "en"), "Mar 16, 2025"},
		{"ko datetime", formatDateTime(ts, "ko"), "2025년 3월 16일 08:30"},
		{"en datetime", formatDateTime(ts, "en"), "Mar 16, 2025 08:30"},
		{"pointer", formatDate(&ts, "en"), "Mar 16, 2025"},
		{"nil pointer", formatDate((*time.Time)(nil), "en"), ""},
		{"zero time", formatDate(time.Time{}, "en"), ""},
		{"null time", formatDate(sql.NullTime{}, "en"), ""},
		{"valid null time", formatDate(sql.NullTime{Time: ts, Valid: true}, "en"), "Mar 16, 2025"},
		{"unsupported", formatDate("2025-03-15", "en"), ""},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestTruncate_CountsRunes(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"hello world", 5, "hello..."},
		{"hello", 5, "hello"},
		{"굴삭기 유압 정비", 3, "굴삭기..."},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.input, tt.length); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText("<p>버킷 <strong>핀</strong> 교체</p>\n<p>A &amp; B</p>")
	if got != "버킷 핀 교체 A & B" {
		t.Errorf("PlainText() = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-9000000: "-9,000,000",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatQty(t *testing.T) {
	formatQty := TemplateFuncs(nil)["formatQty"].(func(decimal.Decimal) string)
	if got := formatQty(decimal.NewFromInt(12000)); got != "12,000" {
		t.Errorf("formatQty(12000) = %q", got)
	}
	if got := formatQty(decimal.RequireFromString("2.5")); got != "2.50" {
		t.Errorf("formatQty(2.5) = %q", got)
	}
}

func TestTemplateFuncs_InTemplate(t *testing.T) {
	tmpl := template.Must(template.New("t").Funcs(TemplateFuncs(seoul)).Parse(
		`{{with dict "n" 3}}{{add .n 1}}{{end}}|{{range seq 1 3}}{{.}}{{end}}|{{excerpt "<p>a <b>b</b></p>" 10}}|{{formatWon 9000}}`))
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := buf.String(); got != "4|123|a b|9,000원" {
		t.Errorf("output = %q", got)
	}
}
