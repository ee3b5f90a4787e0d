// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const customerInquiryColumns = `id, inquiry_type, customer_name, contact, equipment, status, created_at`

func scanCustomerInquiry(row interface{ Scan(...any) error }) (CustomerInquiry, error) {
	var i CustomerInquiry
	err := row.Scan(
		&i.ID,
		&i.InquiryType,
		&i.CustomerName,
		&i.Contact,
		&i.Equipment,
		&i.Status,
		&i.CreatedAt,
	)
	return i, err
}

func (q *Queries) queryCustomerInquiries(ctx context.Context, query string, args ...any) ([]CustomerInquiry, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CustomerInquiry{}
	for rows.Next() {
		i, err := scanCustomerInquiry(rows)
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

const createCustomerInquiry = `-- name: CreateCustomerInquiry :one
INSERT INTO customer_inquiries (inquiry_type, customer_name, contact, equipment, status, created_at)
VALUES (?, ?, ?, ?, 'pending', ?)
RETURNING ` + customerInquiryColumns

type CreateCustomerInquiryParams struct {
	InquiryType  string    `json:"inquiry_type"`
	CustomerName string    `json:"customer_name"`
	Contact      string    `json:"contact"`
	Equipment    string    `json:"equipment"`
	CreatedAt    time.Time `json:"created_at"`
}

func (q *Queries) CreateCustomerInquiry(ctx context.Context, arg CreateCustomerInquiryParams) (CustomerInquiry, error) {
	row := q.db.QueryRowContext(ctx, createCustomerInquiry,
		arg.InquiryType,
		arg.CustomerName,
		arg.Contact,
		arg.Equipment,
		arg.CreatedAt,
	)
	return scanCustomerInquiry(row)
}

const getCustomerInquiry = `-- name: GetCustomerInquiry :one
SELECT ` + customerInquiryColumns + ` FROM customer_inquiries WHERE id = ?`

func (q *Queries) GetCustomerInquiry(ctx context.Context, id int64) (CustomerInquiry, error) {
	return scanCustomerInquiry(q.db.QueryRowContext(ctx, getCustomerInquiry, id))
}

const markCustomerInquiryNotified = `-- name: MarkCustomerInquiryNotified :exec
UPDATE customer_inquiries SET status = 'notified' WHERE id = ?`

func (q *Queries) MarkCustomerInquiryNotified(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markCustomerInquiryNotified, id)
	return err
}

const listPendingCustomerInquiries = `-- name: ListPendingCustomerInquiries :many
SELECT ` + customerInquiryColumns + ` FROM customer_inquiries
WHERE status = 'pending'
ORDER BY created_at, id`

func (q *Queries) ListPendingCustomerInquiries(ctx context.Context) ([]CustomerInquiry, error) {
	return q.queryCustomerInquiries(ctx, listPendingCustomerInquiries)
}

const listCustomerInquiries = `-- name: ListCustomerInquiries :many
SELECT ` + customerInquiryColumns + ` FROM customer_inquiries
WHERE (?1 = '' OR status = ?1)
ORDER BY created_at DESC, id DESC
LIMIT ?2 OFFSET ?3`

type ListCustomerInquiriesParams struct {
	Status string `json:"status"`
	Limit  int64  `json:"limit"`
	Offset int64  `json:"offset"`
}

// ListCustomerInquiries lists inquiries newest first. An empty Status
// matches every status.
func (q *Queries) ListCustomerInquiries(ctx context.Context, arg ListCustomerInquiriesParams) ([]CustomerInquiry, error) {
	return q.queryCustomerInquiries(ctx, listCustomerInquiries, arg.Status, arg.Limit, arg.Offset)
}

const countCustomerInquiries = `-- name: CountCustomerInquiries :one
SELECT COUNT(*) FROM customer_inquiries WHERE (?1 = '' OR status = ?1)`

func (q *Queries) CountCustomerInquiries(ctx context.Context, status string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countCustomerInquiries, status).Scan(&count)
	return count, err
}
