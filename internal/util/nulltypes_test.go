// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"testing"
	"time"
)

func TestNullInt64IfPositive(t *testing.T) {
	if NullInt64IfPositive(0).Valid {
		t.Error("0 should be NULL")
	}
	if NullInt64IfPositive(-1).Valid {
		t.Error("negative should be NULL")
	}
	if got := NullInt64IfPositive(5); !got.Valid || got.Int64 != 5 {
		t.Errorf("NullInt64IfPositive(5) = %+v", got)
	}
}

func TestNullTimeFromValue(t *testing.T) {
	if NullTimeFromValue(time.Time{}).Valid {
		t.Error("zero time should be NULL")
	}
	if !NullTimeFromValue(time.Now()).Valid {
		t.Error("non-zero time should be valid")
	}
}
