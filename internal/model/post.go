// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"time"
)

// PostKind identifies a post variant. The string values are the tags
// persisted in posts.tag.
type PostKind string

// Post kinds.
const (
	KindRepairCase  PostKind = "repair-case"
	KindNotice      PostKind = "notice"
	KindFAQ         PostKind = "faq"
	KindAdminNotice PostKind = "admin-notice"
)

// PostKinds lists every kind in display order.
var PostKinds = []PostKind{KindRepairCase, KindNotice, KindFAQ, KindAdminNotice}

// ParsePostKind validates a tag string.
func ParsePostKind(s string) (PostKind, bool) {
	for _, k := range PostKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Internal reports whether posts of this kind are visible only to admins.
func (k PostKind) Internal() bool {
	return k == KindAdminNotice
}

// Post is a piece of site content. Body holds the kind-specific fields.
type Post struct {
	ID        int64
	Title     string
	Contents  string
	CreatedAt time.Time
	UpdatedAt time.Time
	Body      PostBody
}

// Kind returns the post's kind.
func (p Post) Kind() PostKind {
	if p.Body == nil {
		return ""
	}
	return p.Body.Kind()
}

// PostBody is implemented only by the four post variants below.
type PostBody interface {
	Kind() PostKind
	isPostBody()
}

// RepairCase is a finished repair shown in the gallery.
type RepairCase struct {
	Category string // equipment category, e.g. "excavator"
	Company  string // customer company, may be empty
}

// Notice is a public announcement.
type Notice struct{}

// FAQ is a question/answer pair; Title is the question.
type FAQ struct {
	Category string
}

// AdminNotice is an announcement visible only in the admin console.
type AdminNotice struct{}

func (RepairCase) Kind() PostKind  { return KindRepairCase }
func (Notice) Kind() PostKind      { return KindNotice }
func (FAQ) Kind() PostKind         { return KindFAQ }
func (AdminNotice) Kind() PostKind { return KindAdminNotice }

func (RepairCase) isPostBody()  {}
func (Notice) isPostBody()      {}
func (FAQ) isPostBody()         {}
func (AdminNotice) isPostBody() {}

// PostBodyFromColumns decodes the stored tag, category and company columns.
func PostBodyFromColumns(tag, category, company string) (PostBody, error) {
	kind, ok := ParsePostKind(tag)
	if !ok {
		return nil, fmt.Errorf("unknown post tag %q", tag)
	}
	switch kind {
	case KindRepairCase:
		return RepairCase{Category: category, Company: company}, nil
	case KindFAQ:
		return FAQ{Category: category}, nil
	case KindNotice:
		return Notice{}, nil
	default:
		return AdminNotice{}, nil
	}
}

// PostColumns encodes a body into the stored columns. Fields that do not
// belong to the variant are returned empty.
func PostColumns(body PostBody) (tag, category, company string) {
	switch b := body.(type) {
	case RepairCase:
		return string(KindRepairCase), b.Category, b.Company
	case FAQ:
		return string(KindFAQ), b.Category, ""
	case Notice:
		return string(KindNotice), "", ""
	case AdminNotice:
		return string(KindAdminNotice), "", ""
	}
	return "", "", ""
}

// RepairCategories are the equipment categories offered for repair cases.
var RepairCategories = []string{"excavator", "loader", "crane", "forklift", "hydraulic", "engine", "etc"}

// FAQCategories group FAQ entries on the support page.
var FAQCategories = []string{"service", "parts", "payment", "etc"}
