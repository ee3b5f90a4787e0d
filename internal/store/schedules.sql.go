// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const scheduleColumns = `id, schedule_date, region, driver_name, memo, created_at`

func scanSchedule(row interface{ Scan(...any) error }) (Schedule, error) {
	var i Schedule
	err := row.Scan(
		&i.ID,
		&i.ScheduleDate,
		&i.Region,
		&i.DriverName,
		&i.Memo,
		&i.CreatedAt,
	)
	return i, err
}

const createSchedule = `-- name: CreateSchedule :one
INSERT INTO schedules (schedule_date, region, driver_name, memo, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + scheduleColumns

type CreateScheduleParams struct {
	ScheduleDate string    `json:"schedule_date"`
	Region       string    `json:"region"`
	DriverName   string    `json:"driver_name"`
	Memo         string    `json:"memo"`
	CreatedAt    time.Time `json:"created_at"`
}

func (q *Queries) CreateSchedule(ctx context.Context, arg CreateScheduleParams) (Schedule, error) {
	row := q.db.QueryRowContext(ctx, createSchedule,
		arg.ScheduleDate,
		arg.Region,
		arg.DriverName,
		arg.Memo,
		arg.CreatedAt,
	)
	return scanSchedule(row)
}

const getSchedule = `-- name: GetSchedule :one
SELECT ` + scheduleColumns + ` FROM schedules WHERE id = ?`

func (q *Queries) GetSchedule(ctx context.Context, id int64) (Schedule, error) {
	return scanSchedule(q.db.QueryRowContext(ctx, getSchedule, id))
}

const updateSchedule = `-- name: UpdateSchedule :one
UPDATE schedules SET schedule_date = ?, region = ?, driver_name = ?, memo = ?
WHERE id = ?
RETURNING ` + scheduleColumns

type UpdateScheduleParams struct {
	ScheduleDate string `json:"schedule_date"`
	Region       string `json:"region"`
	DriverName   string `json:"driver_name"`
	Memo         string `json:"memo"`
	ID           int64  `json:"id"`
}

func (q *Queries) UpdateSchedule(ctx context.Context, arg UpdateScheduleParams) (Schedule, error) {
	row := q.db.QueryRowContext(ctx, updateSchedule,
		arg.ScheduleDate,
		arg.Region,
		arg.DriverName,
		arg.Memo,
		arg.ID,
	)
	return scanSchedule(row)
}

const deleteSchedule = `-- name: DeleteSchedule :execrows
DELETE FROM schedules WHERE id = ?`

func (q *Queries) DeleteSchedule(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteSchedule, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listSchedulesBetween = `-- name: ListSchedulesBetween :many
SELECT ` + scheduleColumns + ` FROM schedules
WHERE schedule_date >= ? AND schedule_date <= ?
ORDER BY schedule_date, region, id`

type ListSchedulesBetweenParams struct {
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

// ListSchedulesBetween returns schedules in the inclusive date range.
// Dates are YYYY-MM-DD strings, so lexical order is date order.
func (q *Queries) ListSchedulesBetween(ctx context.Context, arg ListSchedulesBetweenParams) ([]Schedule, error) {
	rows, err := q.db.QueryContext(ctx, listSchedulesBetween, arg.FromDate, arg.ToDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Schedule{}
	for rows.Next() {
		i, err := scanSchedule(rows)
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
