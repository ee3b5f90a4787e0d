// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"net/url"
	"strconv"

	"github.com/olegiv/heavyfix/internal/paging"
)

// Pagination holds pagination links for list templates.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	PerPage     int
	HasPrev     bool
	HasNext     bool
	PrevURL     string
	NextURL     string
	Pages       []PaginationPage
}

// PaginationPage represents a single page link.
type PaginationPage struct {
	Number     int
	URL        string
	IsCurrent  bool
	IsEllipsis bool
}

// ShouldShow reports whether there is more than one page.
func (p Pagination) ShouldShow() bool {
	return p.TotalPages > 1
}

// BuildPagination creates pagination links for baseURL. Query parameters
// other than "page" (filters, pageSize) are preserved in every link.
func BuildPagination(currentPage int, totalItems int64, perPage int, baseURL string, query url.Values) Pagination {
	totalPages := paging.TotalPages(int(totalItems), perPage)

	params := make(url.Values)
	for k, v := range query {
		if k != "page" && len(v) > 0 && v[0] != "" {
			params[k] = v
		}
	}
	buildURL := func(page int) string {
		p := make(url.Values, len(params)+1)
		for k, v := range params {
			p[k] = v
		}
		p.Set("page", strconv.Itoa(page))
		return baseURL + "?" + p.Encode()
	}

	pg := Pagination{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		PerPage:     perPage,
		HasPrev:     currentPage > 1,
		HasNext:     currentPage < totalPages,
	}
	if pg.HasPrev {
		pg.PrevURL = buildURL(min(currentPage-1, totalPages))
	}
	if pg.HasNext {
		pg.NextURL = buildURL(currentPage + 1)
	}
	pg.Pages = buildPages(currentPage, totalPages, buildURL)
	return pg
}

// buildPages shows 5 page numbers centered on the current page, with
// ellipses for gaps, and always includes the first and last pages.
func buildPages(currentPage, totalPages int, buildURL func(int) string) []PaginationPage {
	var pages []PaginationPage

	start := currentPage - 2
	end := currentPage + 2
	if start < 1 {
		start = 1
		end = 5
	}
	if end > totalPages {
		end = totalPages
		start = max(end-4, 1)
	}

	if start > 1 {
		pages = append(pages, PaginationPage{Number: 1, URL: buildURL(1)})
		if start > 2 {
			pages = append(pages, PaginationPage{IsEllipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		pages = append(pages, PaginationPage{Number: i, URL: buildURL(i), IsCurrent: i == currentPage})
	}
	if end < totalPages {
		if end < totalPages-1 {
			pages = append(pages, PaginationPage{IsEllipsis: true})
		}
		pages = append(pages, PaginationPage{Number: totalPages, URL: buildURL(totalPages)})
	}
	return pages
}
