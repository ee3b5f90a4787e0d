// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const postColumns = `id, title, contents, tag, category, company, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (Post, error) {
	var i Post
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Contents,
		&i.Tag,
		&i.Category,
		&i.Company,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) queryPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Post{}
	for rows.Next() {
		i, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createPost = `-- name: CreatePost :one
INSERT INTO posts (title, contents, tag, category, company, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + postColumns

type CreatePostParams struct {
	Title     string    `json:"title"`
	Contents  string    `json:"contents"`
	Tag       string    `json:"tag"`
	Category  string    `json:"category"`
	Company   string    `json:"company"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (Post, error) {
	row := q.db.QueryRowContext(ctx, createPost,
		arg.Title,
		arg.Contents,
		arg.Tag,
		arg.Category,
		arg.Company,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanPost(row)
}

const getPost = `-- name: GetPost :one
SELECT ` + postColumns + ` FROM posts WHERE id = ?`

func (q *Queries) GetPost(ctx context.Context, id int64) (Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPost, id))
}

const updatePost = `-- name: UpdatePost :one
UPDATE posts
SET title = ?, contents = ?, tag = ?, category = ?, company = ?, updated_at = ?
WHERE id = ?
RETURNING ` + postColumns

type UpdatePostParams struct {
	Title     string    `json:"title"`
	Contents  string    `json:"contents"`
	Tag       string    `json:"tag"`
	Category  string    `json:"category"`
	Company   string    `json:"company"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
}

func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (Post, error) {
	row := q.db.QueryRowContext(ctx, updatePost,
		arg.Title,
		arg.Contents,
		arg.Tag,
		arg.Category,
		arg.Company,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanPost(row)
}

const deletePost = `-- name: DeletePost :execrows
DELETE FROM posts WHERE id = ?`

func (q *Queries) DeletePost(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePost, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listPostsByTag = `-- name: ListPostsByTag :many
SELECT ` + postColumns + ` FROM posts
WHERE tag = ?1 AND (?2 = '' OR category = ?2)
ORDER BY created_at DESC, id DESC
LIMIT ?3 OFFSET ?4`

type ListPostsByTagParams struct {
	Tag      string `json:"tag"`
	Category string `json:"category"`
	Limit    int64  `json:"limit"`
	Offset   int64  `json:"offset"`
}

// ListPostsByTag lists posts of one tag, newest first. An empty Category
// matches every category.
func (q *Queries) ListPostsByTag(ctx context.Context, arg ListPostsByTagParams) ([]Post, error) {
	return q.queryPosts(ctx, listPostsByTag, arg.Tag, arg.Category, arg.Limit, arg.Offset)
}

const countPostsByTag = `-- name: CountPostsByTag :one
SELECT COUNT(*) FROM posts WHERE tag = ?1 AND (?2 = '' OR category = ?2)`

type CountPostsByTagParams struct {
	Tag      string `json:"tag"`
	Category string `json:"category"`
}

func (q *Queries) CountPostsByTag(ctx context.Context, arg CountPostsByTagParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPostsByTag, arg.Tag, arg.Category).Scan(&count)
	return count, err
}

const countPosts = `-- name: CountPosts :one
SELECT COUNT(*) FROM posts`

func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPosts).Scan(&count)
	return count, err
}
