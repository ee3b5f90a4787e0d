// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package paging parses page/pageSize parameters and computes the slice
// of an ordered result set a page covers.
package paging

import (
	"math"
	"net/http"
	"strconv"
)

// Defaults describe the fallback values for a listing.
type Defaults struct {
	PageSize    int
	MaxPageSize int
}

// Listing defaults.
var (
	Users      = Defaults{PageSize: 20, MaxPageSize: 100}
	BandPosts  = Defaults{PageSize: 10, MaxPageSize: 50}
	AdminPosts = Defaults{PageSize: 20, MaxPageSize: 100}
	Cases      = Defaults{PageSize: 12, MaxPageSize: 48}
	Events     = Defaults{PageSize: 50, MaxPageSize: 200}
)

// MaxPage bounds the page number so offsets cannot overflow.
const MaxPage = 1_000_000

// Params is a validated page request. Page is 1-based.
type Params struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Parse validates raw page and pageSize strings. Missing, non-numeric or
// non-positive values fall back to page 1 and d.PageSize; a pageSize above
// d.MaxPageSize also falls back to d.PageSize. Pages above MaxPage are
// clamped to MaxPage, which lies past the end of any listing.
func Parse(page, pageSize string, d Defaults) Params {
	p := parseInt(page, 1, 0)
	if p > MaxPage {
		p = MaxPage
	}
	return Params{
		Page:     p,
		PageSize: parseInt(pageSize, d.PageSize, d.MaxPageSize),
	}
}

// FromRequest reads "page" and "pageSize" from the query string.
func FromRequest(r *http.Request, d Defaults) Params {
	q := r.URL.Query()
	return Parse(q.Get("page"), q.Get("pageSize"), d)
}

func parseInt(s string, defaultVal, maxVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return defaultVal
	}
	return v
}

// Offset returns the index of the first item on the page. Page and
// PageSize below 1 count as 1; the result saturates at math.MaxInt.
func (p Params) Offset() int {
	page, size := max(p.Page, 1), max(p.PageSize, 1)
	if page-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (page - 1) * size
}

// Limit returns the page size, for LIMIT clauses.
func (p Params) Limit() int {
	return p.PageSize
}

// Window returns the half-open range [start, end) of a total-length set
// covered by the page. Pages past the end yield an empty range at total.
func (p Params) Window(total int) (start, end int) {
	start = p.Offset()
	if start >= total {
		return total, total
	}
	end = total
	if size := max(p.PageSize, 1); size < total-start {
		end = start + size
	}
	return start, end
}

// Slice returns the items of the page from an ordered slice.
func Slice[T any](items []T, p Params) []T {
	start, end := p.Window(len(items))
	return items[start:end]
}

// TotalPages returns the number of pages for totalItems, at least 1.
func TotalPages(totalItems, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	pages := (totalItems + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	return pages
}
