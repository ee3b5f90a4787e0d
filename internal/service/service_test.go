// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/store"
	"github.com/olegiv/heavyfix/internal/testutil"
)

type fixture struct {
	db     *sql.DB
	events *EventService
	admin  authz.Principal
	user   authz.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.MemoryDB(t)
	admin := testutil.CreateUser(t, db, "admin@example.com", model.RoleAdmin)
	user := testutil.CreateUser(t, db, "user@example.com", model.RoleUser)
	return &fixture{
		db:     db,
		events: NewEventService(db, testutil.TestLogger()),
		admin:  authz.ForUser(admin.ID, admin.Role),
		user:   authz.ForUser(user.ID, user.Role),
	}
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func assertCode(t *testing.T, want result.Code, err error) {
	t.Helper()
	assert.Equal(t, want, result.CodeOf(err), "error: %v", err)
}

func TestDBError(t *testing.T) {
	assert.NoError(t, dbError(nil))
	assertCode(t, result.CodeValidation, dbError(sql.ErrNoRows))
	assertCode(t, result.CodeEmailExists, dbError(errString("UNIQUE constraint failed: users.email")))
	assertCode(t, result.CodeDB, dbError(errString("UNIQUE constraint failed: naver_ads_stats.stat_date")))
	assertCode(t, result.CodeDB, dbError(errString("database is locked")))
	assertCode(t, result.CodeForbidden, dbError(result.New(result.CodeForbidden, "x")))
}

type errString string

func (e errString) Error() string { return string(e) }

func TestValidateStruct_FieldNames(t *testing.T) {
	err := validateStruct(InquiryPayload{Type: "잡담"})
	require.Error(t, err)
	fields := result.FieldsOf(err)
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "contact")
	assert.NotContains(t, fields, "equipment")
	assert.Equal(t, "Must be one of: 부품문의 출장문의 기술문의", fields["type"])
}

// Every gated mutation called by a non-admin must fail before writing.
func TestNonAdminCannotMutate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := NewUserService(f.db, f.events, testutil.TestLogger())
	posts := NewPostService(f.db, f.events, testutil.TestLogger())
	schedules := NewScheduleService(f.db, f.events, testutil.TestLogger())
	questions := NewInquiryService(f.db, nil, f.events, testutil.TestLogger())
	ads := NewAdStatsService(f.db)

	adminRow, err := store.New(f.db).GetUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)

	actions := map[string]func(p authz.Principal) error{
		"change role": func(p authz.Principal) error {
			_, err := users.ChangeRole(ctx, p, adminRow.ID, model.RoleUser)
			return err
		},
		"delete user": func(p authz.Principal) error { return users.Delete(ctx, p, adminRow.ID) },
		"create post": func(p authz.Principal) error {
			_, err := posts.Create(ctx, p, PostInput{Kind: "notice", Title: "t", Contents: "c"})
			return err
		},
		"create schedule": func(p authz.Principal) error {
			_, err := schedules.Create(ctx, p, ScheduleInput{Date: "2026-03-09", Region: "평택", DriverName: "김"})
			return err
		},
		"answer inquiry": func(p authz.Principal) error {
			_, err := questions.Answer(ctx, p, 1, AnswerInput{Answer: "a"})
			return err
		},
		"upsert ads": func(p authz.Principal) error {
			_, err := ads.Upsert(ctx, p, naveradsStat("2026-03-08"))
			return err
		},
	}

	before := map[string]int{}
	tables := []string{"users", "posts", "schedules", "inquiries", "naver_ads_stats", "events"}
	for _, tbl := range tables {
		before[tbl] = countRows(t, f.db, tbl)
	}

	for name, action := range actions {
		t.Run(name+"/user", func(t *testing.T) {
			assertCode(t, result.CodeForbidden, action(f.user))
		})
		t.Run(name+"/anonymous", func(t *testing.T) {
			assertCode(t, result.CodeAuth, action(authz.Anonymous))
		})
	}

	for _, tbl := range tables {
		assert.Equal(t, before[tbl], countRows(t, f.db, tbl), "table %s changed", tbl)
	}
	u, err := store.New(f.db).GetUserByID(ctx, adminRow.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
}
