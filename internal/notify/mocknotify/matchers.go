// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mocknotify

import (
	"go.uber.org/mock/gomock"

	"github.com/olegiv/heavyfix/internal/notify"
)

type kindMatcher string

// KindIs matches a notify.Message by its Kind.
func KindIs(kind string) gomock.Matcher { return kindMatcher(kind) }

func (k kindMatcher) Matches(x any) bool {
	msg, ok := x.(notify.Message)
	return ok && msg.Kind == string(k)
}

func (k kindMatcher) String() string { return "message of kind " + string(k) }
