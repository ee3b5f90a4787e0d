// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const inquiryColumns = `id, user_id, title, question, answer, admin_id, answered_at, created_at`

func scanInquiry(row interface{ Scan(...any) error }) (Inquiry, error) {
	var i Inquiry
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Title,
		&i.Question,
		&i.Answer,
		&i.AdminID,
		&i.AnsweredAt,
		&i.CreatedAt,
	)
	return i, err
}

func (q *Queries) queryInquiries(ctx context.Context, query string, args ...any) ([]Inquiry, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Inquiry{}
	for rows.Next() {
		i, err := scanInquiry(rows)
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

const createInquiry = `-- name: CreateInquiry :one
INSERT INTO inquiries (user_id, title, question, created_at)
VALUES (?, ?, ?, ?)
RETURNING ` + inquiryColumns

type CreateInquiryParams struct {
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateInquiry(ctx context.Context, arg CreateInquiryParams) (Inquiry, error) {
	row := q.db.QueryRowContext(ctx, createInquiry, arg.UserID, arg.Title, arg.Question, arg.CreatedAt)
	return scanInquiry(row)
}

const getInquiry = `-- name: GetInquiry :one
SELECT ` + inquiryColumns + ` FROM inquiries WHERE id = ?`

func (q *Queries) GetInquiry(ctx context.Context, id int64) (Inquiry, error) {
	return scanInquiry(q.db.QueryRowContext(ctx, getInquiry, id))
}

const listInquiriesByUser = `-- name: ListInquiriesByUser :many
SELECT ` + inquiryColumns + ` FROM inquiries
WHERE user_id = ?
ORDER BY created_at DESC, id DESC`

func (q *Queries) ListInquiriesByUser(ctx context.Context, userID int64) ([]Inquiry, error) {
	return q.queryInquiries(ctx, listInquiriesByUser, userID)
}

const listInquiries = `-- name: ListInquiries :many
SELECT ` + inquiryColumns + ` FROM inquiries
ORDER BY answered_at IS NOT NULL, created_at DESC, id DESC
LIMIT ? OFFSET ?`

type ListInquiriesParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

// ListInquiries lists every inquiry with unanswered ones first.
func (q *Queries) ListInquiries(ctx context.Context, arg ListInquiriesParams) ([]Inquiry, error) {
	return q.queryInquiries(ctx, listInquiries, arg.Limit, arg.Offset)
}

const countInquiries = `-- name: CountInquiries :one
SELECT COUNT(*) FROM inquiries`

func (q *Queries) CountInquiries(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countInquiries).Scan(&count)
	return count, err
}

const countUnansweredInquiries = `-- name: CountUnansweredInquiries :one
SELECT COUNT(*) FROM inquiries WHERE answered_at IS NULL`

func (q *Queries) CountUnansweredInquiries(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUnansweredInquiries).Scan(&count)
	return count, err
}

const answerInquiry = `-- name: AnswerInquiry :one
UPDATE inquiries SET answer = ?, admin_id = ?, answered_at = ?
WHERE id = ?
RETURNING ` + inquiryColumns

type AnswerInquiryParams struct {
	Answer     string        `json:"answer"`
	AdminID    sql.NullInt64 `json:"admin_id"`
	AnsweredAt sql.NullTime  `json:"answered_at"`
	ID         int64         `json:"id"`
}

// AnswerInquiry overwrites any previous answer.
func (q *Queries) AnswerInquiry(ctx context.Context, arg AnswerInquiryParams) (Inquiry, error) {
	row := q.db.QueryRowContext(ctx, answerInquiry, arg.Answer, arg.AdminID, arg.AnsweredAt, arg.ID)
	return scanInquiry(row)
}
