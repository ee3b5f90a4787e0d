// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/testutil"
)

func newPostService(f *fixture) *PostService {
	return NewPostService(f.db, f.events, testutil.TestLogger())
}

func TestCreatePost_Variants(t *testing.T) {
	f := newFixture(t)
	svc := newPostService(f)
	ctx := context.Background()

	rc, err := svc.Create(ctx, f.admin, PostInput{
		Kind: "repair-case", Title: "굴삭기 유압펌프 교체", Contents: "<p>done</p>", Category: "excavator", Company: "대한건설",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RepairCase{Category: "excavator", Company: "대한건설"}, rc.Body)

	// Fields that do not belong to the variant are dropped.
	n, err := svc.Create(ctx, f.admin, PostInput{Kind: "notice", Title: "휴무 안내", Contents: "x", Category: "ignored", Company: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, model.Notice{}, n.Body)

	got, err := svc.Get(ctx, authz.Anonymous, rc.ID, model.KindRepairCase)
	require.NoError(t, err)
	assert.Equal(t, rc.Title, got.Title)

	_, err = svc.Get(ctx, authz.Anonymous, n.ID, model.KindRepairCase)
	assertCode(t, result.CodeValidation, err)
}

func TestCreatePost_Validation(t *testing.T) {
	f := newFixture(t)
	svc := newPostService(f)

	long := make([]rune, 201)
	for i := range long {
		long[i] = '가'
	}
	tests := []struct {
		name  string
		in    PostInput
		field string
	}{
		{"missing title", PostInput{Kind: "notice", Contents: "c"}, "title"},
		{"title too long", PostInput{Kind: "notice", Title: string(long), Contents: "c"}, "title"},
		{"empty after sanitizing", PostInput{Kind: "notice", Title: "t", Contents: "<script>alert(1)</script>"}, "contents"},
		{"unknown kind", PostInput{Kind: "blog", Title: "t", Contents: "c"}, "kind"},
		{"repair case without category", PostInput{Kind: "repair-case", Title: "t", Contents: "c"}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), f.admin, tt.in)
			assertCode(t, result.CodeValidation, err)
			assert.Contains(t, result.FieldsOf(err), tt.field)
		})
	}
	assert.Equal(t, 0, countRows(t, f.db, "posts"))
}

func TestCreatePost_SanitizesContents(t *testing.T) {
	f := newFixture(t)
	svc := newPostService(f)

	p, err := svc.Create(context.Background(), f.admin, PostInput{
		Kind: "notice", Title: "t", Contents: `<p onclick="x()">hi<script>bad()</script><a href="javascript:alert(1)">l</a></p>`,
	})
	require.NoError(t, err)
	assert.NotContains(t, p.Contents, "script")
	assert.NotContains(t, p.Contents, "onclick")
	assert.NotContains(t, p.Contents, "javascript:")
	assert.Contains(t, p.Contents, "hi")
}

func TestAdminNoticesAreInternal(t *testing.T) {
	f := newFixture(t)
	svc := newPostService(f)
	ctx := context.Background()

	an, err := svc.Create(ctx, f.admin, PostInput{Kind: "admin-notice", Title: "내부 공지", Contents: "c"})
	require.NoError(t, err)

	_, err = svc.List(ctx, f.user, model.KindAdminNotice, "", paging.Params{Page: 1, PageSize: 10})
	assertCode(t, result.CodeForbidden, err)
	_, err = svc.Get(ctx, authz.Anonymous, an.ID, "")
	assertCode(t, result.CodeAuth, err)

	page, err := svc.List(ctx, f.admin, model.KindAdminNotice, "", paging.Params{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestUpdateAndDeletePost(t *testing.T) {
	f := newFixture(t)
	svc := newPostService(f)
	ctx := context.Background()

	p, err := svc.Create(ctx, f.admin, PostInput{Kind: "faq", Title: "Q", Contents: "A", Category: "parts"})
	require.NoError(t, err)

	in := InputFromPost(p)
	in.Kind = "notice"
	updated, err := svc.Update(ctx, f.admin, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, model.KindNotice, updated.Kind())

	_, err = svc.Update(ctx, f.admin, 4242, in)
	assertCode(t, result.CodeValidation, err)

	require.NoError(t, svc.Delete(ctx, f.admin, p.ID))
	assertCode(t, result.CodeValidation, svc.Delete(ctx, f.admin, p.ID))
}

func TestListPosts_CategoryAndPaging(t *testing.T) {
	f := newFixture(t)
	svc := newPostService(f)
	ctx := context.Background()

	for i, c := range []string{"excavator", "crane", "excavator", "loader", "excavator"} {
		_, err := svc.Create(ctx, f.admin, PostInput{Kind: "repair-case", Title: c + string(rune('0'+i)), Contents: "c", Category: c})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, authz.Anonymous, model.KindRepairCase, "excavator", paging.Params{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Items, 2)

	latest, err := svc.Latest(ctx, authz.Anonymous, model.KindRepairCase, 6)
	require.NoError(t, err)
	assert.Len(t, latest, 5)
}

func TestFAQGroups(t *testing.T) {
	f := newFixture(t)
	svc := newPostService(f)
	ctx := context.Background()

	for _, c := range []string{"etc", "custom", "service", "service"} {
		_, err := svc.Create(ctx, f.admin, PostInput{Kind: "faq", Title: "q", Contents: "a", Category: c})
		require.NoError(t, err)
	}

	groups, err := svc.FAQGroups(ctx, authz.Anonymous)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "service", groups[0].Category)
	assert.Len(t, groups[0].Posts, 2)
	assert.Equal(t, "etc", groups[1].Category)
	assert.Equal(t, "custom", groups[2].Category)
}

func TestFAQGroups_ReadsEveryBatch(t *testing.T) {
	f := newFixture(t)
	svc := newPostService(f)
	ctx := context.Background()

	orig := faqBatchSize
	faqBatchSize = 2
	t.Cleanup(func() { faqBatchSize = orig })

	for range 5 {
		_, err := svc.Create(ctx, f.admin, PostInput{Kind: "faq", Title: "q", Contents: "a", Category: "service"})
		require.NoError(t, err)
	}

	groups, err := svc.FAQGroups(ctx, authz.Anonymous)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Posts, 5)
}
