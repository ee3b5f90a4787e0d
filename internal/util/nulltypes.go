// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"time"
)

// NullInt64IfPositive is valid only for val > 0. User ID 0 is the system
// principal and is stored as NULL.
func NullInt64IfPositive(val int64) sql.NullInt64 {
	return sql.NullInt64{Int64: val, Valid: val > 0}
}

// NullTimeFromValue is valid only for non-zero times.
func NullTimeFromValue(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
