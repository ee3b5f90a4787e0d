// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/testutil"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func TestDriverFailureMapsToDB(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM events").WillReturnError(errors.New("disk I/O error"))

	svc := NewEventService(db, testutil.TestLogger())
	_, err := svc.List(context.Background(), authz.System, paging.Params{Page: 1, PageSize: 10})
	assertCode(t, result.CodeDB, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMissingRowMapsToValidation(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM schedules WHERE id").WithArgs(int64(42)).WillReturnError(sql.ErrNoRows)

	svc := NewScheduleService(db, nil, testutil.TestLogger())
	_, err := svc.Get(context.Background(), authz.System, 42)
	assertCode(t, result.CodeValidation, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventLogFailureIsSwallowed(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO events").WillReturnError(errors.New("database is locked"))

	svc := NewEventService(db, testutil.TestLogger())
	svc.LogInfo(context.Background(), "system", "boot", 0, nil)
	require.NoError(t, mock.ExpectationsWereMet())

	var nilSvc *EventService
	nilSvc.LogInfo(context.Background(), "system", "ignored", 0, nil)
}
