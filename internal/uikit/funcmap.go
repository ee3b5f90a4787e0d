// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package uikit provides template helpers, pagination view models and
// breadcrumbs shared by the public and admin pages.
package uikit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

var textPolicy = bluemonday.StrictPolicy()

// TemplateFuncs returns the helper functions available to every template.
// Dates are shown in loc.
//
// Callers can merge request-specific functions on top:
//
//	funcs := uikit.TemplateFuncs(loc)
//	funcs["T"] = translate
func TemplateFuncs(loc *time.Location) template.FuncMap {
	if loc == nil {
		loc = time.UTC
	}
	return template.FuncMap{
		// Strings
		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"hasPrefix": strings.HasPrefix,
		"truncate":  Truncate,
		"excerpt": func(htmlText string, length int) string {
			return Truncate(PlainText(htmlText), length)
		},
		"contains": func(collection, element any) bool {
			switch c := collection.(type) {
			case []string:
				elem, ok := element.(string)
				if !ok {
					return false
				}
				for _, s := range c {
					if s == elem {
						return true
					}
				}
			case string:
				if substr, ok := element.(string); ok {
					return strings.Contains(c, substr)
				}
			}
			return false
		},

		// Sanitized HTML produced by the services
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
		"safeURL": func(s string) template.URL {
			return template.URL(s)
		},

		// Math
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"seq": func(start, end int) []int {
			var out []int
			for i := start; i <= end; i++ {
				out = append(out, i)
			}
			return out
		},

		// Time
		"formatDate": func(t any, lang string) string {
			return ApplyTimeFormatter(t, lang, loc, FormatDateForLocale)
		},
		"formatDateTime": func(t any, lang string) string {
			return ApplyTimeFormatter(t, lang, loc, FormatDateTimeForLocale)
		},
		"isoDate": func(t time.Time) string {
			return t.In(loc).Format(time.DateOnly)
		},

		// Numbers
		"formatNumber": FormatNumber,
		"formatQty": func(d decimal.Decimal) string {
			if d.IsInteger() {
				return FormatNumber(d.IntPart())
			}
			return d.StringFixed(2)
		},
		"formatWon": func(v int64) string {
			return FormatNumber(v) + "원"
		},
		"percent": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 2, 64) + "%"
		},

		// JSON
		"toJSON": func(v any) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return "null"
			}
			return template.JS(b)
		},

		// Data structures
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				dict[key] = values[i+1]
			}
			return dict
		},
	}
}

// Truncate shortens s to length runes, appending "..." when cut.
func Truncate(s string, length int) string {
	if utf8.RuneCountInString(s) <= length {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:length])) + "..."
}

// PlainText strips markup from sanitized HTML for previews.
func PlainText(htmlText string) string {
	text := html.UnescapeString(textPolicy.Sanitize(htmlText))
	return strings.Join(strings.Fields(text), " ")
}

// FormatNumber groups thousands with commas.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatDateForLocale formats a date for the UI language.
func FormatDateForLocale(t time.Time, lang string) string {
	if lang == "ko" {
		return fmt.Sprintf("%d년 %d월 %d일", t.Year(), t.Month(), t.Day())
	}
	return t.Format("Jan 2, 2006")
}

// FormatDateTimeForLocale formats a timestamp for the UI language.
func FormatDateTimeForLocale(t time.Time, lang string) string {
	if lang == "ko" {
		return fmt.Sprintf("%d년 %d월 %d일 %02d:%02d", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute())
	}
	return t.Format("Jan 2, 2006 15:04")
}

// ApplyTimeFormatter formats a time.Time, *time.Time or sql.NullTime-like
// value in loc. Unsupported values and nil pointers give "".
func ApplyTimeFormatter(t any, lang string, loc *time.Location, formatter func(time.Time, string) string) string {
	switch v := t.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return formatter(v.In(loc), lang)
	case *time.Time:
		if v == nil || v.IsZero() {
			return ""
		}
		return formatter(v.In(loc), lang)
	case driver.Valuer:
		val, err := v.Value()
		if err != nil {
			return ""
		}
		if tt, ok := val.(time.Time); ok {
			return formatter(tt.In(loc), lang)
		}
		return ""
	default:
		return ""
	}
}
