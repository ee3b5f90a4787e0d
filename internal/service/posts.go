// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/store"
)

// htmlSanitizer provides a reusable HTML sanitization policy for post and
// answer content. UGCPolicy keeps formatting, links and images while
// stripping scripts and event handlers.
var htmlSanitizer = bluemonday.UGCPolicy()

// PostInput is the admin post form.
type PostInput struct {
	Kind     string `form:"kind" validate:"required,oneof=repair-case notice faq admin-notice"`
	Title    string `form:"title" validate:"required,max=200"`
	Contents string `form:"contents" validate:"required"`
	Category string `form:"category" validate:"max=50"`
	Company  string `form:"company" validate:"max=100"`
}

// Body converts the flat form into the post variant for its kind.
func (in PostInput) Body() (model.PostBody, error) {
	kind, ok := model.ParsePostKind(in.Kind)
	if !ok {
		return nil, result.Validation(map[string]string{"kind": "Unknown post kind"})
	}
	switch kind {
	case model.KindRepairCase:
		if in.Category == "" {
			return nil, result.Validation(map[string]string{"category": "This field is required"})
		}
		return model.RepairCase{Category: in.Category, Company: in.Company}, nil
	case model.KindFAQ:
		return model.FAQ{Category: in.Category}, nil
	case model.KindNotice:
		return model.Notice{}, nil
	default:
		return model.AdminNotice{}, nil
	}
}

// InputFromPost fills the edit form from an existing post.
func InputFromPost(p model.Post) PostInput {
	tag, category, company := model.PostColumns(p.Body)
	return PostInput{Kind: tag, Title: p.Title, Contents: p.Contents, Category: category, Company: company}
}

// PostService manages site content.
type PostService struct {
	queries *store.Queries
	events  *EventService
	logger  *slog.Logger
	now     func() time.Time
}

// NewPostService creates a new PostService.
func NewPostService(db *sql.DB, events *EventService, logger *slog.Logger) *PostService {
	return &PostService{
		queries: store.New(db),
		events:  events,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// postFromRow is the only place a stored tag is interpreted.
func postFromRow(row store.Post) (model.Post, error) {
	body, err := model.PostBodyFromColumns(row.Tag, row.Category, row.Company)
	if err != nil {
		return model.Post{}, result.Wrap(result.CodeDB, err)
	}
	return model.Post{
		ID:        row.ID,
		Title:     row.Title,
		Contents:  row.Contents,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		Body:      body,
	}, nil
}

func canRead(p authz.Principal, kind model.PostKind) error {
	if kind.Internal() {
		return p.Require(authz.ManagePosts)
	}
	return nil
}

// List returns posts of one kind newest first. category filters repair
// cases and FAQ entries; empty matches all. Admin notices require
// ManagePosts.
func (s *PostService) List(ctx context.Context, p authz.Principal, kind model.PostKind, category string, params paging.Params) (*Page[model.Post], error) {
	if _, ok := model.ParsePostKind(string(kind)); !ok {
		return nil, result.Validation(map[string]string{"kind": "Unknown post kind"})
	}
	if err := canRead(p, kind); err != nil {
		return nil, err
	}

	total, err := s.queries.CountPostsByTag(ctx, store.CountPostsByTagParams{Tag: string(kind), Category: category})
	if err != nil {
		return nil, dbError(err)
	}
	rows, err := s.queries.ListPostsByTag(ctx, store.ListPostsByTagParams{
		Tag:      string(kind),
		Category: category,
		Limit:    int64(params.Limit()),
		Offset:   int64(params.Offset()),
	})
	if err != nil {
		return nil, dbError(err)
	}

	items := make([]model.Post, 0, len(rows))
	for _, row := range rows {
		post, err := postFromRow(row)
		if err != nil {
			return nil, err
		}
		items = append(items, post)
	}
	return &Page[model.Post]{Items: items, Total: total, Page: params.Page, PageSize: params.PageSize}, nil
}

// Latest returns up to n newest posts of kind.
func (s *PostService) Latest(ctx context.Context, p authz.Principal, kind model.PostKind, n int) ([]model.Post, error) {
	page, err := s.List(ctx, p, kind, "", paging.Params{Page: 1, PageSize: n})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// faqBatchSize is the page size FAQGroups reads all FAQ rows with.
var faqBatchSize = 200

// FAQGroups returns FAQ entries grouped by category in FAQCategories
// order, followed by any other categories in first-seen order.
func (s *PostService) FAQGroups(ctx context.Context, p authz.Principal) ([]FAQGroup, error) {
	var faqs []model.Post
	for n := 1; ; n++ {
		page, err := s.List(ctx, p, model.KindFAQ, "", paging.Params{Page: n, PageSize: faqBatchSize})
		if err != nil {
			return nil, err
		}
		faqs = append(faqs, page.Items...)
		if len(page.Items) < faqBatchSize || int64(len(faqs)) >= page.Total {
			break
		}
	}
	byCategory := make(map[string][]model.Post)
	var order []string
	for _, post := range faqs {
		c := post.Body.(model.FAQ).Category
		if _, ok := byCategory[c]; !ok {
			order = append(order, c)
		}
		byCategory[c] = append(byCategory[c], post)
	}
	slices.SortStableFunc(order, func(a, b string) int {
		return faqRank(a) - faqRank(b)
	})
	groups := make([]FAQGroup, 0, len(order))
	for _, c := range order {
		groups = append(groups, FAQGroup{Category: c, Posts: byCategory[c]})
	}
	return groups, nil
}

// FAQGroup is one category block on the support page.
type FAQGroup struct {
	Category string
	Posts    []model.Post
}

func faqRank(category string) int {
	if i := slices.Index(model.FAQCategories, category); i >= 0 {
		return i
	}
	return len(model.FAQCategories)
}

// Get returns a post. expected, when non-empty, must match the post's
// kind; a mismatch reads as not found.
func (s *PostService) Get(ctx context.Context, p authz.Principal, id int64, expected model.PostKind) (model.Post, error) {
	row, err := s.queries.GetPost(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, notFound("post")
	}
	if err != nil {
		return model.Post{}, dbError(err)
	}
	post, err := postFromRow(row)
	if err != nil {
		return model.Post{}, err
	}
	if expected != "" && post.Kind() != expected {
		return model.Post{}, notFound("post")
	}
	if err := canRead(p, post.Kind()); err != nil {
		return model.Post{}, err
	}
	return post, nil
}

func (s *PostService) prepare(in PostInput) (PostInput, model.PostBody, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Company = strings.TrimSpace(in.Company)
	in.Contents = strings.TrimSpace(htmlSanitizer.Sanitize(in.Contents))
	if err := validateStruct(in); err != nil {
		return in, nil, err
	}
	body, err := in.Body()
	return in, body, err
}

// Create stores a new post.
func (s *PostService) Create(ctx context.Context, p authz.Principal, in PostInput) (model.Post, error) {
	if err := p.Require(authz.ManagePosts); err != nil {
		return model.Post{}, err
	}
	in, body, err := s.prepare(in)
	if err != nil {
		return model.Post{}, err
	}
	tag, category, company := model.PostColumns(body)
	now := s.now()
	row, err := s.queries.CreatePost(ctx, store.CreatePostParams{
		Title:     in.Title,
		Contents:  in.Contents,
		Tag:       tag,
		Category:  category,
		Company:   company,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.Post{}, dbError(err)
	}
	s.events.LogInfo(ctx, model.EventCategoryPost, "Post created", p.UserID, map[string]any{"post_id": row.ID, "kind": tag})
	return postFromRow(row)
}

// Update replaces a post's fields. The kind may change.
func (s *PostService) Update(ctx context.Context, p authz.Principal, id int64, in PostInput) (model.Post, error) {
	if err := p.Require(authz.ManagePosts); err != nil {
		return model.Post{}, err
	}
	in, body, err := s.prepare(in)
	if err != nil {
		return model.Post{}, err
	}
	tag, category, company := model.PostColumns(body)
	row, err := s.queries.UpdatePost(ctx, store.UpdatePostParams{
		Title:     in.Title,
		Contents:  in.Contents,
		Tag:       tag,
		Category:  category,
		Company:   company,
		UpdatedAt: s.now(),
		ID:        id,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, notFound("post")
	}
	if err != nil {
		return model.Post{}, dbError(err)
	}
	s.events.LogInfo(ctx, model.EventCategoryPost, "Post updated", p.UserID, map[string]any{"post_id": id, "kind": tag})
	return postFromRow(row)
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, p authz.Principal, id int64) error {
	if err := p.Require(authz.ManagePosts); err != nil {
		return err
	}
	n, err := s.queries.DeletePost(ctx, id)
	if err != nil {
		return dbError(err)
	}
	if n == 0 {
		return notFound("post")
	}
	s.events.LogInfo(ctx, model.EventCategoryPost, "Post deleted", p.UserID, map[string]any{"post_id": id})
	return nil
}

// Count returns the number of posts.
func (s *PostService) Count(ctx context.Context, p authz.Principal) (int64, error) {
	if err := p.Require(authz.ManagePosts); err != nil {
		return 0, err
	}
	n, err := s.queries.CountPosts(ctx)
	return n, dbError(err)
}
